package framework

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopPriorities(t *testing.T) {
	loop := NewLoop()
	loop.Interval = time.Hour
	var order []int
	record := func(n int) Controller {
		return ControlFunc(func(cc ControlContext) error {
			order = append(order, n)
			return nil
		})
	}
	loop.AddController(PrLvPostProc, record(3))
	loop.AddController(PrLvSense, record(1))
	loop.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		order = append(order, 2)
		cc.PostRun(record(20))
		return errors.New("ignored")
	}))
	loop.PreRunAt(PrLvTop, record(0))

	loop.runIteration(context.Background())
	loop.runIteration(context.Background())
	assert.Equal(t, []int{0, 1, 2, 20, 3, 1, 2, 20, 3}, order)
}

func TestLoopRunsRunnablesAndTriggers(t *testing.T) {
	loop := NewLoop()
	loop.Interval = time.Hour
	var iterations atomic.Int32
	started := make(chan struct{})
	loop.AddController(PrLvNormal, ControlFunc(func(cc ControlContext) error {
		iterations.Add(1)
		return nil
	}))
	loop.AddRunnable(RunFunc(func(ctx context.Context) error {
		LoopCtlFrom(ctx).TriggerNext()
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	<-started
	assert.Eventually(t, func() bool { return iterations.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	assert.Equal(t, context.Canceled, <-done)
}

func TestRunnerAggregatesErrors(t *testing.T) {
	errA, errB := errors.New("a"), errors.New("b")
	err := NewRunner().Go(
		RunFunc(func(context.Context) error { return errA }),
		NamedRun("b", RunFunc(func(context.Context) error { return errB })),
		RunFunc(func(context.Context) error { return nil }),
		RunFunc(func(context.Context) error { return context.Canceled }),
	).Wait()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errA))
	assert.True(t, errors.Is(err, errB))
	assert.Len(t, err.(*AggregatedError).Errors, 2)

	assert.NoError(t, NewRunner().Wait())
}

func TestRunnerStop(t *testing.T) {
	r := NewRunner().Go(RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	r.Stop()
	assert.NoError(t, r.Wait())
}

type closer struct {
	closed atomic.Int32
	ch     chan struct{}
}

func (c *closer) Close() error {
	if c.closed.Add(1) == 1 {
		close(c.ch)
	}
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	c := &closer{ch: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunWithContextCloser(ctx, c, func() error {
		<-c.ch
		return errors.New("closed")
	})
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, int32(1), c.closed.Load())

	c = &closer{ch: make(chan struct{})}
	assert.NoError(t, RunWithContextCloser(context.Background(), c, func() error { return nil }))
	assert.Equal(t, int32(1), c.closed.Load())
}

func TestAggregatedErrorMessage(t *testing.T) {
	var errs AggregatedError
	assert.NoError(t, errs.Add(nil).Aggregate())
	errs.Add(errors.New("one"))
	assert.Equal(t, "one", errs.Aggregate().Error())
	errs.Add(errors.New("two"))
	assert.Equal(t, "Multiple errors:\none\ntwo", errs.Error())
}
