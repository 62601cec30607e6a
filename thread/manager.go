package thread

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/habiliai/edudash/entity"
	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/internal/db"
	"github.com/habiliai/edudash/internal/metrics"
	"github.com/habiliai/edudash/internal/mylog"
	"github.com/habiliai/edudash/internal/stringutils"
	"github.com/habiliai/edudash/realtime"
	"github.com/jcooky/go-din"
	"github.com/mokiat/gog"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type (
	Manager interface {
		CreateThread(ctx context.Context, thread *entity.Thread) (*entity.Thread, error)
		SaveProfile(ctx context.Context, profile *entity.Profile) error
		SaveStudent(ctx context.Context, student *entity.Student) error

		ListThreadsForUser(ctx context.Context, userID string) ([]entity.Thread, error)
		ThreadSummaries(ctx context.Context, userID string, threadIDs []string) ([]entity.ThreadSummary, error)
		ListMessages(ctx context.Context, threadID string) ([]entity.Message, error)
		GetMessagesByIDs(ctx context.Context, messageIDs []string) ([]entity.Message, error)
		ListReactions(ctx context.Context, messageIDs []string) ([]entity.MessageReaction, error)
		GetProfiles(ctx context.Context, userIDs []string) ([]entity.Profile, error)

		InsertMessage(ctx context.Context, msg *entity.Message) (*entity.Message, error)
		EditMessage(ctx context.Context, messageID, userID, content string) (*entity.Message, error)
		SoftDeleteMessage(ctx context.Context, messageID, userID string) (*entity.Message, error)
		ToggleReaction(ctx context.Context, messageID, userID, emoji string) (bool, error)
		TouchThread(ctx context.Context, threadID string, at time.Time) error
		MarkThreadRead(ctx context.Context, threadID, userID string) error
		MarkMessagesDelivered(ctx context.Context, threadID, userID string) error
	}

	manager struct {
		logger    *mylog.Logger
		db        *gorm.DB
		publisher realtime.Publisher
	}
)

func NewManager(logger *mylog.Logger, gormDB *gorm.DB, publisher realtime.Publisher) Manager {
	return &manager{
		logger:    logger,
		db:        gormDB,
		publisher: publisher,
	}
}

func (s *manager) CreateThread(ctx context.Context, thread *entity.Thread) (*entity.Thread, error) {
	_, tx := db.OpenSession(ctx, s.db)

	if thread.ID == "" {
		thread.ID = uuid.NewString()
	}
	if thread.Type == "" {
		thread.Type = entity.ThreadTypeGeneral
	}
	for i := range thread.Participants {
		thread.Participants[i].ThreadID = thread.ID
	}

	if err := tx.Create(thread).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to create thread")
	}

	return thread, nil
}

func (s *manager) SaveProfile(ctx context.Context, profile *entity.Profile) error {
	_, tx := db.OpenSession(ctx, s.db)
	return profile.Save(tx)
}

func (s *manager) SaveStudent(ctx context.Context, student *entity.Student) error {
	_, tx := db.OpenSession(ctx, s.db)
	return student.Save(tx)
}

func (s *manager) ListThreadsForUser(ctx context.Context, userID string) ([]entity.Thread, error) {
	_, tx := db.OpenSession(ctx, s.db)

	var threads []entity.Thread
	if err := tx.
		Preload("Participants.Profile").
		Preload("Student").
		Where("id IN (?)", tx.Model(&entity.ThreadParticipant{}).Select("thread_id").Where("user_id = ?", userID)).
		Order("last_message_at DESC").
		Find(&threads).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to find threads")
	}

	return threads, nil
}

type unreadCount struct {
	ThreadID string
	Unread   int
}

// ThreadSummaries aggregates the latest visible message and the viewer's
// unread count of every thread in two queries.
func (s *manager) ThreadSummaries(ctx context.Context, userID string, threadIDs []string) ([]entity.ThreadSummary, error) {
	if len(threadIDs) == 0 {
		return []entity.ThreadSummary{}, nil
	}
	_, tx := db.OpenSession(ctx, s.db)

	var last []entity.Message
	if err := tx.
		Where("thread_id IN ? AND deleted_at IS NULL", threadIDs).
		Where(`NOT EXISTS (
			SELECT 1 FROM messages newer
			WHERE newer.thread_id = messages.thread_id
				AND newer.deleted_at IS NULL
				AND (newer.created_at > messages.created_at
					OR (newer.created_at = messages.created_at AND newer.id > messages.id))
		)`).
		Find(&last).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to find last messages")
	}

	var unread []unreadCount
	if err := tx.
		Table("messages").
		Select("messages.thread_id AS thread_id, COUNT(*) AS unread").
		Joins("LEFT JOIN thread_participants p ON p.thread_id = messages.thread_id AND p.user_id = ?", userID).
		Where("messages.thread_id IN ? AND messages.deleted_at IS NULL AND messages.sender_id <> ?", threadIDs, userID).
		Where("(p.last_read_at IS NULL OR messages.created_at > p.last_read_at)").
		Group("messages.thread_id").
		Scan(&unread).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to count unread messages")
	}

	lastByThread := lo.KeyBy(last, func(m entity.Message) string { return m.ThreadID })
	unreadByThread := lo.SliceToMap(unread, func(r unreadCount) (string, int) {
		return r.ThreadID, r.Unread
	})

	return gog.Map(threadIDs, func(threadID string) entity.ThreadSummary {
		summary := entity.ThreadSummary{
			ThreadID:    threadID,
			UnreadCount: unreadByThread[threadID],
		}
		if m, ok := lastByThread[threadID]; ok {
			summary.LastMessage = &m
		}
		return summary
	}), nil
}

// ListMessages returns every row of the thread, soft-deleted ones included.
func (s *manager) ListMessages(ctx context.Context, threadID string) ([]entity.Message, error) {
	_, tx := db.OpenSession(ctx, s.db)

	var messages []entity.Message
	if err := tx.
		Where("thread_id = ?", threadID).
		Order("created_at ASC").Order("id ASC").
		Find(&messages).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to find messages")
	}

	return messages, nil
}

func (s *manager) GetMessagesByIDs(ctx context.Context, messageIDs []string) ([]entity.Message, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	_, tx := db.OpenSession(ctx, s.db)

	var messages []entity.Message
	if err := tx.Where("id IN ?", messageIDs).Find(&messages).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to find messages")
	}

	return messages, nil
}

func (s *manager) ListReactions(ctx context.Context, messageIDs []string) ([]entity.MessageReaction, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	_, tx := db.OpenSession(ctx, s.db)

	var reactions []entity.MessageReaction
	if err := tx.
		Where("message_id IN ?", messageIDs).
		Order("created_at ASC").
		Find(&reactions).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to find reactions")
	}

	return reactions, nil
}

func (s *manager) GetProfiles(ctx context.Context, userIDs []string) ([]entity.Profile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	_, tx := db.OpenSession(ctx, s.db)

	var profiles []entity.Profile
	if err := tx.Where("id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to find profiles")
	}

	return profiles, nil
}

// InsertMessage stores a message sent by a participant of its thread. An id
// that already exists returns the stored row when thread and sender match.
func (s *manager) InsertMessage(ctx context.Context, msg *entity.Message) (*entity.Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.ContentType == "" {
		msg.ContentType = entity.ContentTypeText
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if msg.ReadBy == nil {
		msg.ReadBy = []string{}
	}
	msg.Content = stringutils.CleanText(msg.Content)
	if msg.Content == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "message content is empty")
	}

	inserted := true
	if err := db.InTransaction(ctx, s.db, func(_ context.Context, tx *gorm.DB) error {
		var participant entity.ThreadParticipant
		if r := tx.Where("thread_id = ? AND user_id = ?", msg.ThreadID, msg.SenderID).Limit(1).Find(&participant); r.Error != nil {
			return errors.Wrapf(r.Error, "failed to find participant")
		} else if r.RowsAffected == 0 {
			return errors.Wrapf(errors.ErrForbidden, "user %s is not a participant of thread %s", msg.SenderID, msg.ThreadID)
		}

		var existing []entity.Message
		if err := tx.Where("id = ?", msg.ID).Limit(1).Find(&existing).Error; err != nil {
			return errors.Wrapf(err, "failed to find message")
		}
		if len(existing) > 0 {
			if existing[0].ThreadID != msg.ThreadID || existing[0].SenderID != msg.SenderID {
				return errors.Wrapf(errors.ErrForbidden, "message %s belongs to another thread or sender", msg.ID)
			}
			inserted = false
			*msg = existing[0]
			return nil
		}

		return errors.Wrapf(tx.Create(msg).Error, "failed to create message")
	}); err != nil {
		return nil, err
	}

	if inserted {
		metrics.MessagesSent.Inc()
		s.publish(ctx, realtime.EventInsert, msg)
	}

	return msg, nil
}

func (s *manager) findOwnMessage(tx *gorm.DB, messageID, userID string) (*entity.Message, error) {
	var msg entity.Message
	if r := tx.Where("id = ?", messageID).Limit(1).Find(&msg); r.Error != nil {
		return nil, errors.Wrapf(r.Error, "failed to find message")
	} else if r.RowsAffected == 0 || msg.IsDeleted() {
		return nil, errors.Wrapf(errors.ErrNotFound, "message %s not found", messageID)
	}
	if msg.SenderID != userID {
		return nil, errors.Wrapf(errors.ErrForbidden, "message %s is not sent by %s", messageID, userID)
	}

	return &msg, nil
}

func (s *manager) EditMessage(ctx context.Context, messageID, userID, content string) (*entity.Message, error) {
	_, tx := db.OpenSession(ctx, s.db)

	content = stringutils.CleanText(content)
	if content == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "message content is empty")
	}

	msg, err := s.findOwnMessage(tx, messageID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	msg.Content = content
	msg.EditedAt = &now
	if err := msg.Save(tx); err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.EventUpdate, msg)
	return msg, nil
}

func (s *manager) SoftDeleteMessage(ctx context.Context, messageID, userID string) (*entity.Message, error) {
	_, tx := db.OpenSession(ctx, s.db)

	msg, err := s.findOwnMessage(tx, messageID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	msg.DeletedAt = &now
	if err := msg.Save(tx); err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.EventUpdate, msg)
	return msg, nil
}

// ToggleReaction removes the (message, user, emoji) reaction if present and
// adds it otherwise. It reports whether the reaction now exists.
func (s *manager) ToggleReaction(ctx context.Context, messageID, userID, emoji string) (added bool, err error) {
	err = db.InTransaction(ctx, s.db, func(_ context.Context, tx *gorm.DB) error {
		reaction := entity.MessageReaction{
			MessageID: messageID,
			UserID:    userID,
			Emoji:     emoji,
		}

		var n int64
		if err := tx.Model(&entity.MessageReaction{}).
			Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
			Count(&n).Error; err != nil {
			return errors.Wrapf(err, "failed to count reactions")
		}
		if n > 0 {
			return reaction.Delete(tx)
		}

		var count int64
		if err := tx.Model(&entity.Message{}).Where("id = ? AND deleted_at IS NULL", messageID).Count(&count).Error; err != nil {
			return errors.Wrapf(err, "failed to find message")
		} else if count == 0 {
			return errors.Wrapf(errors.ErrNotFound, "message %s not found", messageID)
		}

		added = true
		return errors.Wrapf(tx.Create(&reaction).Error, "failed to create reaction")
	})

	return
}

func (s *manager) TouchThread(ctx context.Context, threadID string, at time.Time) error {
	_, tx := db.OpenSession(ctx, s.db)

	r := tx.Model(&entity.Thread{}).Where("id = ?", threadID).Update("last_message_at", at)
	if r.Error != nil {
		return errors.Wrapf(r.Error, "failed to update thread")
	} else if r.RowsAffected == 0 {
		return errors.Wrapf(errors.ErrNotFound, "thread %s not found", threadID)
	}

	return nil
}

func (s *manager) MarkThreadRead(ctx context.Context, threadID, userID string) error {
	var changed []entity.Message
	if err := db.InTransaction(ctx, s.db, func(_ context.Context, tx *gorm.DB) error {
		now := time.Now()
		r := tx.Model(&entity.ThreadParticipant{}).
			Where("thread_id = ? AND user_id = ?", threadID, userID).
			Update("last_read_at", now)
		if r.Error != nil {
			return errors.Wrapf(r.Error, "failed to update participant")
		} else if r.RowsAffected == 0 {
			return errors.Wrapf(errors.ErrNotFound, "user %s is not a participant of thread %s", userID, threadID)
		}

		var messages []entity.Message
		if err := tx.
			Where("thread_id = ? AND deleted_at IS NULL AND sender_id <> ?", threadID, userID).
			Find(&messages).Error; err != nil {
			return errors.Wrapf(err, "failed to find messages")
		}

		for _, msg := range messages {
			if msg.IsReadBy(userID) {
				continue
			}
			msg.ReadBy = append(slices.Clone(msg.ReadBy), userID)
			if err := tx.Model(&msg).Update("read_by", msg.ReadBy).Error; err != nil {
				return errors.Wrapf(err, "failed to mark message read")
			}
			changed = append(changed, msg)
		}

		return nil
	}); err != nil {
		return err
	}

	s.publishBatch(ctx, threadID, changed)
	return nil
}

func (s *manager) MarkMessagesDelivered(ctx context.Context, threadID, userID string) error {
	var changed []entity.Message
	if err := db.InTransaction(ctx, s.db, func(_ context.Context, tx *gorm.DB) error {
		if err := tx.
			Where("thread_id = ? AND deleted_at IS NULL AND delivered_at IS NULL AND sender_id <> ?", threadID, userID).
			Find(&changed).Error; err != nil {
			return errors.Wrapf(err, "failed to find messages")
		}
		if len(changed) == 0 {
			return nil
		}

		now := time.Now()
		ids := make([]string, 0, len(changed))
		for i := range changed {
			changed[i].DeliveredAt = &now
			ids = append(ids, changed[i].ID)
		}

		return errors.Wrapf(
			tx.Model(&entity.Message{}).Where("id IN ?", ids).Update("delivered_at", now).Error,
			"failed to mark messages delivered",
		)
	}); err != nil {
		return err
	}

	s.publishBatch(ctx, threadID, changed)
	return nil
}

func (s *manager) publish(ctx context.Context, eventType realtime.EventType, msg *entity.Message) {
	if s.publisher == nil {
		return
	}

	ev, err := realtime.NewMessageEvent(eventType, msg)
	if err != nil {
		s.logger.Warn("failed to build realtime event", "message_id", msg.ID, mylog.Err(err))
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish realtime event", "message_id", msg.ID, mylog.Err(err))
	}
}

// publishBatch sends the receipt changes of a thread as one UPDATE event.
func (s *manager) publishBatch(ctx context.Context, threadID string, msgs []entity.Message) {
	if s.publisher == nil || len(msgs) == 0 {
		return
	}

	ev, err := realtime.NewMessagesEvent(realtime.EventUpdate, threadID, msgs)
	if err != nil {
		s.logger.Warn("failed to build realtime event", "thread_id", threadID, mylog.Err(err))
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish realtime event", "thread_id", threadID, mylog.Err(err))
	}
}

func init() {
	din.RegisterT(func(c *din.Container) (Manager, error) {
		logger, err := din.Get[*mylog.Logger](c, mylog.Key)
		if err != nil {
			return nil, err
		}

		return NewManager(
			logger,
			din.MustGet[*gorm.DB](c, db.Key),
			din.MustGetT[*realtime.Hub](c),
		), nil
	})
}
