// Package stream carries the bus over a plain byte stream such as a
// TCP connection or a serial port.
package stream

import (
	"io"
	"net"
)

// DefaultReadSize is the read buffer size of a ReadWriter.
const DefaultReadSize = 64

// ReadWriter implements PacketReadWriter.
// A packet is whatever a single Read returns; nothing is added on the wire.
type ReadWriter struct {
	io.ReadWriteCloser
	ReadSize int
}

// New creates a ReadWriter with io.ReadWriteCloser.
func New(s io.ReadWriteCloser) *ReadWriter {
	return &ReadWriter{ReadWriteCloser: s, ReadSize: DefaultReadSize}
}

// Dial connects to a TCP bus bridge.
func Dial(addr string) (*ReadWriter, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	size := p.ReadSize
	if size <= 0 {
		size = DefaultReadSize
	}
	buf := make([]byte, size)
	for {
		n, err := p.Read(buf)
		if n > 0 {
			return buf[:n], nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	_, err := p.Write(pkt)
	return err
}
