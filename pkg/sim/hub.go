package sim

import (
	"context"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/cymbal/pkg/l1/comm"
)

// Hub joins bus connections into one bus: bytes from a connection are
// delivered to the Link and relayed to every other connection.
type Hub struct {
	Link *Link

	lock  sync.Mutex
	peers map[*hubPeer]struct{}
}

// NewHub creates a Hub on link.
func NewHub(link *Link) *Hub {
	return &Hub{Link: link, peers: make(map[*hubPeer]struct{})}
}

// Serve joins rw to the bus until it fails or ctx is done.
func (h *Hub) Serve(ctx context.Context, rw comm.PacketReadWriter) error {
	p := &hubPeer{PacketReadWriter: rw, hub: h}
	h.lock.Lock()
	h.peers[p] = struct{}{}
	h.lock.Unlock()
	defer func() {
		h.lock.Lock()
		delete(h.peers, p)
		h.lock.Unlock()
	}()
	return h.Link.Serve(ctx, p)
}

// Peers returns the number of joined connections.
func (h *Hub) Peers() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.peers)
}

func (h *Hub) relay(from *hubPeer, pkt []byte) {
	h.lock.Lock()
	peers := make([]*hubPeer, 0, len(h.peers))
	for p := range h.peers {
		if p != from {
			peers = append(peers, p)
		}
	}
	h.lock.Unlock()
	for _, p := range peers {
		if err := p.WritePacket(pkt); err != nil {
			glog.V(2).Infof("relay: %v", err)
		}
	}
}

type hubPeer struct {
	comm.PacketReadWriter
	hub *Hub
}

func (p *hubPeer) ReadPacket() ([]byte, error) {
	pkt, err := p.PacketReadWriter.ReadPacket()
	if err == nil {
		p.hub.relay(p, pkt)
	}
	return pkt, err
}
