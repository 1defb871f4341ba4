package bus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenUnknownScheme(t *testing.T) {
	_, err := Open("gopher://localhost/bus")
	assert.True(t, errors.Is(err, ErrUnknownScheme))
}

func TestOpenInvalidURL(t *testing.T) {
	_, err := Open("://")
	assert.Error(t, err)
}

func TestNewConfigCopiesDefault(t *testing.T) {
	conf := NewConfig()
	conf.BusURL = "tcp://localhost:4000"
	assert.NotEqual(t, conf.BusURL, Default().BusURL)
}
