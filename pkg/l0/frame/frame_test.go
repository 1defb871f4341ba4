package frame

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameBytes(t *testing.T) {
	testCases := []struct {
		name   string
		frame  Frame
		expect []byte
	}{
		{"set duty", New(1, CmdSetDuty, 40), []byte{Sentinel, 1, 1, 40, 42}},
		{"broadcast strike", New(BroadcastAddress, CmdSetOutput, 2), []byte{Sentinel, 0xff, 6, 2, 7}},
		{"program duty wraps", New(0xf0, CmdProgramDuty, 0x30), []byte{Sentinel, 0xf0, 60, 0x30, 0x5c}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, tc.frame.Valid())
			require.Equal(t, tc.expect, tc.frame.Bytes())
			var buf bytes.Buffer
			n, err := tc.frame.WriteTo(&buf)
			require.NoError(t, err)
			require.EqualValues(t, WireSize, n)
			require.Equal(t, tc.expect, buf.Bytes())
		})
	}
}

func TestParse(t *testing.T) {
	f, err := Parse([]byte{Sentinel, 2, 5, 7, 14})
	require.NoError(t, err)
	require.Equal(t, New(2, CmdProgramID, 7), f)

	_, err = Parse([]byte{Sentinel, 2, 5})
	require.Equal(t, ErrShortFrame, err)

	_, err = Parse([]byte{0, 2, 5, 7, 14})
	require.Equal(t, ErrNoSentinel, err)

	_, err = Parse([]byte{Sentinel, 2, 5, 7, 15})
	require.Equal(t, &ChecksumError{Expected: 14, Actual: 15}, err)
}

func TestAddressedTo(t *testing.T) {
	require.True(t, New(BroadcastAddress, CmdStop, 0).AddressedTo(3))
	require.True(t, New(BroadcastAddress, CmdStop, 0).AddressedTo(0))
	require.True(t, New(3, CmdStop, 0).AddressedTo(3))
	require.False(t, New(3, CmdStop, 0).AddressedTo(4))
	require.True(t, New(0, CmdStop, 0).AddressedTo(0))
}

func TestCommandString(t *testing.T) {
	require.Equal(t, "SET_OUTPUT", CmdSetOutput.String())
	require.Equal(t, "CMD(77)", Command(77).String())
	require.True(t, CmdProgramDuty.IsKnown())
	require.False(t, Command(2).IsKnown())
}

func TestParseCommand(t *testing.T) {
	for _, s := range []string{"SET_OUTPUT", "set_output", "6", "0x06"} {
		cmd, err := ParseCommand(s)
		require.NoError(t, err, s)
		require.Equal(t, CmdSetOutput, cmd, s)
	}
	cmd, err := ParseCommand("200")
	require.NoError(t, err)
	require.False(t, cmd.IsKnown())
	_, err = ParseCommand("JUMP")
	require.ErrorIs(t, err, ErrUnknownCommand)
	_, err = ParseCommand("256")
	require.ErrorIs(t, err, ErrUnknownCommand)
}
