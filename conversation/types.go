// Package conversation is the client-side view model of parent and educator
// messaging. It keeps a deduplicated thread list and the open thread's
// messages consistent with the backend, the realtime feed and the local
// assistant lane.
package conversation

import (
	"time"

	"github.com/habiliai/edudash/aichat"
	"github.com/habiliai/edudash/entity"
)

type (
	// ThreadItem is either a RemoteThread or a VirtualThread.
	ThreadItem interface {
		ItemID() string
		Title() string
		Recency() time.Time
		threadItem()
	}

	RemoteThread struct {
		Thread      entity.Thread
		LastMessage *entity.Message
		UnreadCount int
	}

	// VirtualThread is the assistant lane shown at the top of the list.
	VirtualThread struct {
		ID        string
		Name      string
		Preview   string
		PreviewAt time.Time
		Loading   bool
	}
)

var (
	_ ThreadItem = RemoteThread{}
	_ ThreadItem = VirtualThread{}
)

func (t RemoteThread) threadItem() {}

func (t RemoteThread) ItemID() string {
	return t.Thread.ID
}

// Title is the counterpart's name, or the subject when there is none.
func (t RemoteThread) Title() string {
	if p := t.Thread.Counterpart(); p != nil {
		if name := p.Profile.DisplayName(); name != "" {
			return name
		}
	}
	return t.Thread.Subject
}

// Recency is the last message time, else the thread's last activity, else
// the zero time.
func (t RemoteThread) Recency() time.Time {
	if t.LastMessage != nil {
		return t.LastMessage.CreatedAt
	}
	if t.Thread.LastMessageAt != nil {
		return *t.Thread.LastMessageAt
	}
	return time.Time{}
}

// DedupKey collapses threads that share the same non-parent participant.
func (t RemoteThread) DedupKey() string {
	if p := t.Thread.Counterpart(); p != nil {
		return "user:" + p.UserID
	}
	return "thread:" + t.Thread.ID
}

func (t VirtualThread) threadItem() {}

func (t VirtualThread) ItemID() string {
	return t.ID
}

func (t VirtualThread) Title() string {
	return t.Name
}

func (t VirtualThread) Recency() time.Time {
	return t.PreviewAt
}

func newVirtualThread(store *aichat.Store) VirtualThread {
	vt := VirtualThread{
		ID:      aichat.ThreadID,
		Name:    store.AssistantName(),
		Loading: store.Loading(),
	}
	if last, ok := store.Preview(); ok {
		vt.Preview = last.Content
		vt.PreviewAt = last.CreatedAt
	}
	return vt
}

type SendStatus string

const (
	StatusSent    SendStatus = "sent"
	StatusPending SendStatus = "pending"
	StatusFailed  SendStatus = "failed"
)

type (
	MessageView struct {
		entity.Message

		SenderName string
		Reply      *ReplyPreview
		Reactions  []ReactionGroup
		Status     SendStatus
	}

	ReplyPreview struct {
		MessageID  string
		SenderID   string
		SenderName string
		Content    string
	}

	ReactionGroup struct {
		Emoji       string
		Count       int
		UserIDs     []string
		UserNames   []string
		ReactedByMe bool
	}
)

// Route tells the caller where a selection is shown.
type Route int

const (
	RouteInline Route = iota
	RouteAIChat
)

type KeyEvent struct {
	Key   string
	Ctrl  bool
	Alt   bool
	Meta  bool
	Shift bool
}

const (
	KeyEscape = "esc"
	KeyClear  = "q"
)
