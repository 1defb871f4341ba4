package sh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/cymbal/pkg/l0/frame"
	"github.com/robotalks/cymbal/pkg/l1/msgs"
)

func TestParseAddress(t *testing.T) {
	for s, expected := range map[string]byte{
		"all":  frame.BroadcastAddress,
		"*":    frame.BroadcastAddress,
		"7":    7,
		"0x10": 16,
		"255":  255,
	} {
		addr, err := ParseAddress(s)
		require.NoError(t, err, s)
		assert.Equal(t, expected, addr, s)
	}
	for _, s := range []string{"256", "-1", "one", ""} {
		_, err := ParseAddress(s)
		assert.Error(t, err, s)
	}
}

func TestFormatStatus(t *testing.T) {
	assert.Equal(t,
		"bell: address=2 inert duty=45 output=high frames=3 checksum-errors=1",
		FormatStatus(&msgs.Status{Name: "bell", Address: 2, Inert: true, Duty: 45, Output: true, Frames: 3, ChecksumErrors: 1}))
}
