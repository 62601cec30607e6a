package realtime

import (
	"context"
	"sync"
)

const subscriptionBuffer = 64

type (
	Subscriber interface {
		Subscribe(ctx context.Context, threadID string) (*Subscription, error)
	}

	// Subscription delivers the events of one thread until Close is called or
	// the context given to Subscribe is done.
	Subscription struct {
		threadID string
		events   chan Event

		send      func(ctx context.Context, ev Event) error
		closer    func()
		closeOnce sync.Once
		stop      func() bool
	}
)

func newSubscription(threadID string) *Subscription {
	return &Subscription{
		threadID: threadID,
		events:   make(chan Event, subscriptionBuffer),
	}
}

func (s *Subscription) bind(ctx context.Context) {
	s.stop = context.AfterFunc(ctx, s.Close)
}

func (s *Subscription) ThreadID() string {
	return s.threadID
}

// Events is closed once the subscription is released.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Send publishes an ephemeral signal on the subscribed thread.
func (s *Subscription) Send(ctx context.Context, ev Event) error {
	ev.ThreadID = s.threadID
	return s.send(ctx, ev)
}

func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		if s.stop != nil {
			s.stop()
		}
		s.closer()
	})
}
