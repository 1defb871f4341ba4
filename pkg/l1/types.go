package l1

import (
	"context"

	"github.com/robotalks/cymbal/pkg/l0/frame"
)

// FrameSender puts frames on the bus.
type FrameSender interface {
	SendFrame(frame.Frame) error
}

// FrameHandler receives frames decoded from the bus.
type FrameHandler interface {
	HandleFrame(context.Context, frame.Frame)
}

// HandleFrameFunc is the func form of FrameHandler.
type HandleFrameFunc func(context.Context, frame.Frame)

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, fr frame.Frame) {
	f(ctx, fr)
}
