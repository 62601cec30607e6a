package db

import (
	"context"
	"fmt"

	"github.com/habiliai/edudash/entity"
	"github.com/habiliai/edudash/errors"
	"gorm.io/gorm"
)

var (
	schema = "edudash"
)

func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	// Only create schema for PostgreSQL databases (SQLite doesn't support schemas)
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return errors.Wrapf(err, "failed to create schema")
		}
	}

	_, tx := OpenSession(ctx, db)

	return errors.WithStack(tx.AutoMigrate(
		&entity.Profile{},
		&entity.Student{},
		&entity.Thread{},
		&entity.ThreadParticipant{},
		&entity.Message{},
		&entity.MessageReaction{},
		&entity.Notification{},
	))
}

func DropAll(ctx context.Context, db *gorm.DB) error {
	_, tx := OpenSession(ctx, db)
	return errors.WithStack(tx.Migrator().DropTable(
		&entity.Notification{},
		&entity.MessageReaction{},
		&entity.Message{},
		&entity.ThreadParticipant{},
		&entity.Thread{},
		&entity.Student{},
		&entity.Profile{},
	))
}
