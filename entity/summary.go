package entity

// ThreadSummary is the per-thread aggregation for one viewer: the latest
// visible message and how many messages from others arrived after the
// viewer last read the thread.
type ThreadSummary struct {
	ThreadID    string   `json:"thread_id"`
	LastMessage *Message `json:"last_message,omitempty"`
	UnreadCount int      `json:"unread_count"`
}
