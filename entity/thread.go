package entity

import (
	"time"

	"github.com/habiliai/edudash/errors"
	"gorm.io/gorm"
)

type ThreadType string

const (
	ThreadTypeParentTeacher   ThreadType = "parent-teacher"
	ThreadTypeParentPrincipal ThreadType = "parent-principal"
	ThreadTypeGeneral         ThreadType = "general"
)

type Thread struct {
	ID      string     `gorm:"primarykey;size:64" json:"id"`
	Subject string     `json:"subject"`
	Type    ThreadType `gorm:"size:32" json:"type"`

	StudentID *string  `gorm:"size:64;index" json:"student_id,omitempty"`
	Student   *Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`

	Participants []ThreadParticipant `gorm:"foreignKey:ThreadID" json:"participants"`

	// LastMessageAt is the last-activity timestamp of the thread.
	LastMessageAt *time.Time `gorm:"index" json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Counterpart returns the first participant whose role is not parent.
func (t *Thread) Counterpart() *ThreadParticipant {
	for i := range t.Participants {
		if t.Participants[i].Role != RoleParent {
			return &t.Participants[i]
		}
	}
	return nil
}

func (t *Thread) Participant(userID string) *ThreadParticipant {
	for i := range t.Participants {
		if t.Participants[i].UserID == userID {
			return &t.Participants[i]
		}
	}
	return nil
}

func (t *Thread) Save(db *gorm.DB) error {
	return errors.Wrapf(db.Save(t).Error, "failed to save thread")
}

type ThreadParticipant struct {
	ThreadID   string     `gorm:"primarykey;size:64" json:"thread_id"`
	UserID     string     `gorm:"primarykey;size:64;index" json:"user_id"`
	Role       Role       `gorm:"size:32" json:"role"`
	LastReadAt *time.Time `json:"last_read_at,omitempty"`

	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
