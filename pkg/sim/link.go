package sim

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/cymbal/pkg/l1/comm"
)

// Interrupter receives bus bytes in interrupt context.
type Interrupter interface {
	Interrupt(b byte)
}

// Link delivers bytes from any number of bus connections to a device,
// one at a time from a single goroutine like a receive interrupt.
type Link struct {
	Target Interrupter
	// ByteTime paces delivery like a serial line, 0 delivers at once.
	ByteTime time.Duration

	byteCh chan []byte
	bytes  atomic.Uint64
}

// NewLink creates a Link to target.
func NewLink(target Interrupter) *Link {
	return &Link{Target: target, byteCh: make(chan []byte, 16)}
}

// Feed queues bytes for delivery. It blocks while the queue is full.
func (l *Link) Feed(ctx context.Context, data []byte) error {
	select {
	case l.byteCh <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Bytes returns the number of bytes delivered.
func (l *Link) Bytes() uint64 {
	return l.bytes.Load()
}

// Name implements framework.Named.
func (l *Link) Name() string {
	return "link"
}

// Run implements Runnable.
func (l *Link) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data := <-l.byteCh:
			for _, b := range data {
				l.Target.Interrupt(b)
				l.bytes.Add(1)
				if l.ByteTime > 0 {
					time.Sleep(l.ByteTime)
				}
			}
		}
	}
}

// Serve reads a bus connection and feeds the Link until the connection
// fails or ctx is done.
func (l *Link) Serve(ctx context.Context, r comm.PacketReader) error {
	pktCh, errCh := make(chan []byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go readLoop(subCtx, r, pktCh, errCh)
	for {
		select {
		case pkt := <-pktCh:
			if err := l.Feed(ctx, pkt); err != nil {
				return err
			}
		case err := <-errCh:
			if err == io.EOF {
				return nil
			}
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func readLoop(ctx context.Context, r comm.PacketReader, pktCh chan []byte, errCh chan error) {
	for {
		pkt, err := r.ReadPacket()
		if err != nil {
			errCh <- err
			return
		}
		glog.V(3).Infof("RCV % x", pkt)
		select {
		case pktCh <- pkt:
		case <-ctx.Done():
			return
		}
	}
}
