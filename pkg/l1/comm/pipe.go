package comm

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/cymbal/pkg/framework"
	"github.com/robotalks/cymbal/pkg/l0/frame"
	"github.com/robotalks/cymbal/pkg/l1"
)

// Pipe sends frames to and decodes frames from a bus transport.
type Pipe struct {
	ReadWriter PacketReadWriter
	Handler    l1.FrameHandler

	rx       *frame.Receiver
	sendLock sync.Mutex
}

// NewPipe creates a Pipe with given PacketReadWriter.
func NewPipe(rw PacketReadWriter) *Pipe {
	p := &Pipe{ReadWriter: rw}
	p.rx = frame.NewReceiver(nil)
	// a host sees every frame on the bus, so it resyncs on sentinels only
	p.rx.Strict = true
	return p
}

// SendFrame implements l1.FrameSender.
func (p *Pipe) SendFrame(f frame.Frame) error {
	return p.SendBytes(f.Bytes())
}

// SendBytes writes raw bytes to the bus.
func (p *Pipe) SendBytes(data []byte) error {
	p.sendLock.Lock()
	defer p.sendLock.Unlock()
	if glog.V(3) {
		glog.Infof("SND % x", data)
	}
	return p.ReadWriter.WritePacket(data)
}

// Run implements Runnable. Without a Handler, received bytes are dropped.
func (p *Pipe) Run(ctx context.Context) error {
	return fx.RunWithContextCloser(ctx, p, func() error {
		return p.readLoop(ctx)
	})
}

func (p *Pipe) readLoop(ctx context.Context) error {
	p.rx.Out = &handlerPublisher{ctx: ctx, handler: p.Handler}
	for {
		pkt, err := p.ReadWriter.ReadPacket()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if p.Handler == nil {
			continue
		}
		for _, b := range pkt {
			if ev := p.rx.Receive(b); ev == frame.EventChecksum {
				glog.V(2).Info("bad frame checksum")
			}
		}
	}
}

// Close implements Closer.
func (p *Pipe) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// AddToLoop implements LoopAdder.
func (p *Pipe) AddToLoop(loop *fx.Loop) {
	if adder, ok := p.ReadWriter.(fx.LoopAdder); ok {
		loop.Add(adder)
	} else if runnable, ok := p.ReadWriter.(fx.Runnable); ok {
		loop.AddRunnable(runnable)
	}
	loop.AddRunnable(p)
}

// handlerPublisher hands every frame straight to the handler, so the
// receiver never sees a pending slot.
type handlerPublisher struct {
	ctx     context.Context
	handler l1.FrameHandler
}

func (h *handlerPublisher) Pending() bool {
	return false
}

func (h *handlerPublisher) Publish(f frame.Frame) bool {
	h.handler.HandleFrame(h.ctx, f)
	return true
}
