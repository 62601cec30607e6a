package entity

import (
	"time"

	"github.com/habiliai/edudash/errors"
	"gorm.io/gorm"
)

// MessageReaction is unique per (message, user, emoji).
type MessageReaction struct {
	MessageID string `gorm:"primarykey;size:64" json:"message_id"`
	UserID    string `gorm:"primarykey;size:64" json:"user_id"`
	Emoji     string `gorm:"primarykey;size:32" json:"emoji"`

	CreatedAt time.Time `json:"created_at"`
}

func (r *MessageReaction) Delete(db *gorm.DB) error {
	return errors.Wrapf(
		db.Where("message_id = ? AND user_id = ? AND emoji = ?", r.MessageID, r.UserID, r.Emoji).Delete(&MessageReaction{}).Error,
		"failed to delete reaction",
	)
}
