package comm

import "io"

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// Conn is an open bus transport. Packet boundaries carry no meaning on
// the bus: the receiving side reassembles frames from the bytes.
type Conn interface {
	PacketReadWriter
	io.Closer
}
