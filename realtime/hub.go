package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/internal/metrics"
	"github.com/habiliai/edudash/internal/mylog"
	"github.com/jcooky/go-din"
)

type (
	Publisher interface {
		Publish(ctx context.Context, ev Event) error
	}

	// Hub fans out events to the subscribers of each thread. Publish never
	// blocks: a subscriber whose buffer is full is dropped.
	Hub struct {
		logger *slog.Logger

		mu          sync.RWMutex
		subscribers map[string]map[*Subscription]struct{}
	}
)

var (
	_ Publisher  = (*Hub)(nil)
	_ Subscriber = (*Hub)(nil)
)

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = mylog.Discard()
	}
	return &Hub{
		logger:      logger,
		subscribers: make(map[string]map[*Subscription]struct{}),
	}
}

func (h *Hub) Subscribe(ctx context.Context, threadID string) (*Subscription, error) {
	if threadID == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "thread id is required")
	}

	sub := newSubscription(threadID)
	sub.send = h.Publish
	sub.closer = func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.removeLocked(sub)
	}

	h.mu.Lock()
	subs, ok := h.subscribers[threadID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.subscribers[threadID] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()

	metrics.RealtimeSubscribers.Inc()
	h.logger.Debug("realtime subscribe", "thread_id", threadID)

	sub.bind(ctx)
	return sub, nil
}

func (h *Hub) removeLocked(sub *Subscription) {
	subs, ok := h.subscribers[sub.threadID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.subscribers, sub.threadID)
	}
	close(sub.events)
	metrics.RealtimeSubscribers.Dec()
}

func (h *Hub) Publish(_ context.Context, ev Event) error {
	if ev.ThreadID == "" {
		return errors.Wrapf(errors.ErrInvalidParams, "event without thread id")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subscribers[ev.ThreadID] {
		select {
		case sub.events <- ev:
		default:
			h.logger.Warn("drop slow realtime subscriber", "thread_id", ev.ThreadID)
			metrics.RealtimeDropped.Inc()
			h.removeLocked(sub)
		}
	}
	metrics.RealtimeEvents.WithLabelValues(string(ev.Type)).Inc()

	return nil
}

// NumSubscribers reports the open subscriptions of a thread.
func (h *Hub) NumSubscribers(threadID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[threadID])
}

func init() {
	din.RegisterT(func(c *din.Container) (*Hub, error) {
		logger, err := din.Get[*mylog.Logger](c, mylog.Key)
		if err != nil {
			return nil, err
		}
		return NewHub(logger.With("component", "realtime")), nil
	})
}
