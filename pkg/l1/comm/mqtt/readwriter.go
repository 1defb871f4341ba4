package mqtt

import (
	"io"
	"net/url"
	"sync"

	"github.com/golang/glog"
)

// DefaultBusTopic is the bus topic under the prefix.
const DefaultBusTopic = "bus"

// ReadWriter implements PacketReadWriter on a bus topic.
type ReadWriter struct {
	Queue *Queue
	Topic string

	sub       *Subscription
	packetCh  chan []byte
	closeOnce sync.Once
	closed    chan struct{}
}

// NewPacketReadWriter subscribes to topic on q.
func NewPacketReadWriter(q *Queue, topic string) *ReadWriter {
	p := &ReadWriter{
		Queue:    q,
		Topic:    topic,
		packetCh: make(chan []byte, 64),
		closed:   make(chan struct{}),
	}
	p.sub = q.Sub(topic, Handler(p.handleMsg))
	return p
}

// Dial connects to the broker and opens the bus topic, e.g.
// mqtt://localhost:1883/cymbal/?topic=bus.
func Dial(brokerURL string) (*ReadWriter, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, err
	}
	topic := u.Query().Get("topic")
	if topic == "" {
		topic = DefaultBusTopic
	}
	q, err := NewQueueFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	if err := q.ConnectAndWait(); err != nil {
		return nil, err
	}
	return NewPacketReadWriter(q, topic), nil
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.closed:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.PubWith(p.Topic, pkt, 1, false)
	token.Wait()
	return token.Error()
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.closed)
		err = p.sub.Close()
		p.Queue.Close()
	})
	return err
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	select {
	case p.packetCh <- payload:
	default:
		glog.Warningf("bus %q: reader behind, %d bytes dropped", p.Topic, len(payload))
	}
}
