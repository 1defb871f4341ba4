// Package websocket carries the bus over websocket binary messages.
package websocket

import (
	"net/http"
	"net/url"

	"golang.org/x/net/websocket"
)

// ReadWriter implements PacketReadWriter.
type ReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// Dial connects to a websocket bus endpoint, e.g. ws://localhost:8080/bus.
func Dial(busURL string) (*ReadWriter, error) {
	u, err := url.Parse(busURL)
	if err != nil {
		return nil, err
	}
	origin := "http://" + u.Host + "/"
	conn, err := websocket.Dial(busURL, "", origin)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// Handler serves websocket bus connections. serve owns the connection
// until it returns.
func Handler(serve func(*ReadWriter)) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		conn.PayloadType = websocket.BinaryFrame
		serve(New(conn))
	})
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &pkt)
	return
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), pkt)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return (*websocket.Conn)(p).Close()
}
