package env

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultName(t *testing.T) {
	name := DefaultName()
	assert.True(t, strings.HasPrefix(name, appID), name)
	if id, err := MachineID(); err == nil {
		assert.Equal(t, appID+"-"+id[:8], name)
	}
}
