package entity

import (
	"time"
)

// Notification is an outbound push request waiting for a device gateway.
type Notification struct {
	ID           string     `gorm:"primarykey;size:64" json:"id"`
	RecipientID  string     `gorm:"size:64;index" json:"recipient_id"`
	ThreadID     string     `gorm:"size:64" json:"thread_id"`
	MessageID    string     `gorm:"size:64" json:"message_id"`
	Title        string     `json:"title"`
	Body         string     `gorm:"type:text" json:"body"`
	CreatedAt    time.Time  `json:"created_at"`
	DispatchedAt *time.Time `json:"dispatched_at,omitempty"`
}
