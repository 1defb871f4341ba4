package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/cymbal/pkg/l1/comm/mqtt"
	"github.com/robotalks/cymbal/pkg/l1/msgs"
)

func TestNewEnvWithoutBroker(t *testing.T) {
	e, err := (&Config{}).NewEnv("")
	require.NoError(t, err)
	assert.NotEmpty(t, e.Config.Name)
	assert.Nil(t, e.Status)
	assert.NoError(t, e.PublishStatus(&msgs.Status{}))
}

func TestNewEnvWithBroker(t *testing.T) {
	e, err := (&Config{Name: "bell"}).NewEnv("mqtt://localhost:1883/cymbal")
	require.NoError(t, err)
	require.NotNil(t, e.Status)
	assert.Equal(t, "bell", e.Status.Name)
	assert.Equal(t, "cymbal/", e.Status.Queue.TopicPrefix)
	assert.Equal(t, "bell/status", mqtt.StatusTopic(e.Status.Name))
}
