package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edudash",
		Name:      "messages_sent_total",
		Help:      "Messages inserted into threads.",
	})
	RealtimeEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edudash",
		Subsystem: "realtime",
		Name:      "events_published_total",
		Help:      "Realtime events published to subscribers, by event type.",
	}, []string{"type"})
	RealtimeSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "edudash",
		Subsystem: "realtime",
		Name:      "subscribers",
		Help:      "Open realtime subscriptions.",
	})
	RealtimeDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edudash",
		Subsystem: "realtime",
		Name:      "slow_subscribers_dropped_total",
		Help:      "Subscriptions closed because their buffer was full.",
	})
	AICompletions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edudash",
		Subsystem: "ai",
		Name:      "completions_total",
		Help:      "AI completion calls, by provider and result.",
	}, []string{"provider", "result"})
	PushQueued = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edudash",
		Subsystem: "notify",
		Name:      "push_queued_total",
		Help:      "Push notifications queued for dispatch.",
	})
)

// Registry holds every edudash collector; the server exposes it on /metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		MessagesSent,
		RealtimeEvents,
		RealtimeSubscribers,
		RealtimeDropped,
		AICompletions,
		PushQueued,
	)
}
