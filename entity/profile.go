package entity

import (
	"strings"
	"time"

	"github.com/habiliai/edudash/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Role string

const (
	RoleParent    Role = "parent"
	RoleTeacher   Role = "teacher"
	RolePrincipal Role = "principal"
	RoleAdmin     Role = "admin"
	// RoleAssistant is used only by the local AI lane.
	RoleAssistant Role = "assistant"
)

type Profile struct {
	ID        string `gorm:"primarykey;size:64" json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `gorm:"size:32" json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Profile) Save(db *gorm.DB) error {
	return errors.Wrapf(db.Clauses(clause.OnConflict{UpdateAll: true}).Create(p).Error, "failed to save profile")
}

type Student struct {
	ID        string `gorm:"primarykey;size:64" json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	CreatedAt time.Time `json:"created_at"`
}

func (s *Student) DisplayName() string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

func (s *Student) Save(db *gorm.DB) error {
	return errors.Wrapf(db.Clauses(clause.OnConflict{UpdateAll: true}).Create(s).Error, "failed to save student")
}
