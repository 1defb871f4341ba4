package stream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufferConn struct {
	bytes.Buffer
	out bytes.Buffer
}

func (c *bufferConn) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

func (c *bufferConn) Close() error {
	return nil
}

func TestReadWriter(t *testing.T) {
	conn := &bufferConn{}
	conn.WriteString("0123456789")
	rw := New(conn)
	rw.ReadSize = 4

	pkt, err := rw.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, []byte("0123"), pkt)
	rw.ReadPacket()
	pkt, err = rw.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, []byte("89"), pkt)
	_, err = rw.ReadPacket()
	assert.Equal(t, io.EOF, err)

	require.NoError(t, rw.WritePacket([]byte{1, 2}))
	assert.Equal(t, []byte{1, 2}, conn.out.Bytes())
}
