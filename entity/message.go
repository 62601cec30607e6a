package entity

import (
	"slices"
	"time"

	"github.com/habiliai/edudash/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
	ContentTypeVoice ContentType = "voice"
	ContentTypeFile  ContentType = "file"
)

type Message struct {
	ID          string      `gorm:"primarykey;size:64" json:"id" mapstructure:"id"`
	ThreadID    string      `gorm:"size:64;index:idx_messages_thread,priority:1" json:"thread_id" mapstructure:"thread_id"`
	SenderID    string      `gorm:"size:64;index" json:"sender_id" mapstructure:"sender_id"`
	Content     string      `gorm:"type:text" json:"content" mapstructure:"content"`
	ContentType ContentType `gorm:"size:16;default:text" json:"content_type" mapstructure:"content_type"`

	CreatedAt   time.Time                   `gorm:"index:idx_messages_thread,priority:2" json:"created_at" mapstructure:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at" mapstructure:"updated_at"`
	DeliveredAt *time.Time                  `json:"delivered_at,omitempty" mapstructure:"delivered_at"`
	ReadBy      datatypes.JSONSlice[string] `json:"read_by" mapstructure:"read_by"`
	EditedAt    *time.Time                  `json:"edited_at,omitempty" mapstructure:"edited_at"`
	// DeletedAt marks a soft delete. It is a plain column so that callers
	// decide themselves how deleted rows are treated.
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty" mapstructure:"deleted_at"`

	ReplyToID       *string `gorm:"size:64" json:"reply_to_id,omitempty" mapstructure:"reply_to_id"`
	ForwardedFromID *string `gorm:"size:64" json:"forwarded_from_id,omitempty" mapstructure:"forwarded_from_id"`
}

func (m *Message) IsDeleted() bool {
	return m.DeletedAt != nil
}

func (m *Message) IsReadBy(userID string) bool {
	return slices.Contains(m.ReadBy, userID)
}

func (m *Message) Save(db *gorm.DB) error {
	return errors.Wrapf(db.Save(m).Error, "failed to save message")
}
