// Package notify queues outbound push requests and raises local alerts for
// incoming messages.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/habiliai/edudash/entity"
	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/internal/db"
	"github.com/habiliai/edudash/internal/metrics"
	"github.com/habiliai/edudash/internal/mylog"
	"github.com/jcooky/go-din"
	"gorm.io/gorm"
)

type (
	Push struct {
		RecipientID string `json:"recipient_id" validate:"required"`
		ThreadID    string `json:"thread_id" validate:"required"`
		MessageID   string `json:"message_id"`
		Title       string `json:"title" validate:"required"`
		Body        string `json:"body"`
	}

	Dispatcher interface {
		Dispatch(ctx context.Context, push Push) error
	}

	// Queue stores pushes in the notifications table until a device gateway
	// picks them up.
	Queue interface {
		Dispatcher
		Pending(ctx context.Context, limit int) ([]entity.Notification, error)
		MarkDispatched(ctx context.Context, ids []string) error
	}

	queue struct {
		logger *mylog.Logger
		db     *gorm.DB
	}
)

func NewQueue(logger *mylog.Logger, gormDB *gorm.DB) Queue {
	return &queue{
		logger: logger,
		db:     gormDB,
	}
}

func (q *queue) Dispatch(ctx context.Context, push Push) error {
	_, tx := db.OpenSession(ctx, q.db)

	notification := entity.Notification{
		ID:          uuid.NewString(),
		RecipientID: push.RecipientID,
		ThreadID:    push.ThreadID,
		MessageID:   push.MessageID,
		Title:       push.Title,
		Body:        push.Body,
	}
	if err := tx.Create(&notification).Error; err != nil {
		return errors.Wrapf(err, "failed to queue notification")
	}

	metrics.PushQueued.Inc()
	q.logger.Debug("push queued", "recipient_id", push.RecipientID, "thread_id", push.ThreadID)
	return nil
}

func (q *queue) Pending(ctx context.Context, limit int) ([]entity.Notification, error) {
	_, tx := db.OpenSession(ctx, q.db)
	if limit <= 0 {
		limit = 100
	}

	var notifications []entity.Notification
	if err := tx.
		Where("dispatched_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to find notifications")
	}

	return notifications, nil
}

func (q *queue) MarkDispatched(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, tx := db.OpenSession(ctx, q.db)

	return errors.Wrapf(
		tx.Model(&entity.Notification{}).Where("id IN ?", ids).Update("dispatched_at", time.Now()).Error,
		"failed to mark notifications dispatched",
	)
}

func init() {
	din.RegisterT(func(c *din.Container) (Queue, error) {
		logger, err := din.Get[*mylog.Logger](c, mylog.Key)
		if err != nil {
			return nil, err
		}

		return NewQueue(logger, din.MustGet[*gorm.DB](c, db.Key)), nil
	})
}
