package mqtt

import (
	"context"
	"strings"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/cymbal/pkg/framework"
	"github.com/robotalks/cymbal/pkg/l1/msgs"
)

// StatusTopic returns the status topic of a device.
func StatusTopic(name string) string {
	return name + "/status"
}

// StatusPublisher publishes retained device status. The retained status
// is cleared when the publisher stops or its connection is lost.
type StatusPublisher struct {
	Queue *Queue
	Name  string
}

// NewStatusPublisher creates a StatusPublisher.
func NewStatusPublisher(brokerURL, name string) (*StatusPublisher, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+StatusTopic(name), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("cymbal:" + name)
	}
	return &StatusPublisher{Queue: NewQueue(opts, topicPrefix), Name: name}, nil
}

// Publish publishes a status. It doesn't wait for delivery.
func (p *StatusPublisher) Publish(status *msgs.Status) error {
	data, err := status.Encode()
	if err != nil {
		return err
	}
	p.Queue.PubWith(StatusTopic(p.Name), data, 1, true)
	return nil
}

// AddToLoop implements LoopAdder.
func (p *StatusPublisher) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(p)
}

// Run implements Runnable.
func (p *StatusPublisher) Run(ctx context.Context) error {
	p.Queue.Connect()
	<-ctx.Done()
	p.Queue.PubWith(StatusTopic(p.Name), nil, 1, true).WaitTimeout(time.Second)
	p.Queue.Close()
	return nil
}

// SubStatus subscribes to status of all devices. handler gets nil when a
// device is gone.
func SubStatus(q *Queue, handler func(name string, status *msgs.Status)) *Subscription {
	return q.Sub(StatusTopic("+"), Handler(func(topic string, payload []byte) {
		name := strings.TrimSuffix(topic, "/status")
		status, err := msgs.DecodeStatus(payload)
		if err != nil && err != msgs.ErrEmptyStatus {
			glog.Warningf("%s: bad status: %v", topic, err)
			return
		}
		handler(name, status)
	}))
}

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// Discover collects the retained status of running devices.
func Discover(ctx context.Context, brokerURL string, timeout time.Duration) (res []*msgs.Status, err error) {
	q, err := NewQueueFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	if err = q.ConnectAndWait(); err != nil {
		return nil, err
	}
	defer q.Close()
	resCh := make(chan *msgs.Status, 1)
	sub := SubStatus(q, func(name string, status *msgs.Status) {
		if status == nil {
			return
		}
		status.Name = name
		select {
		case resCh <- status:
		case <-time.After(time.Second):
		}
	})
	defer sub.Close()

	if timeout <= 0 {
		timeout = DefaultDiscoverTimeout
	}
	expire := time.After(timeout)
	for {
		select {
		case status := <-resCh:
			res = append(res, status)
		case <-expire:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}
