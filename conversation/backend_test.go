package conversation_test

import (
	"context"
	"sync/atomic"

	"github.com/habiliai/edudash/conversation"
	"github.com/habiliai/edudash/entity"
	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/thread"
)

var errUnavailable = errors.New("backend unavailable")

// faultyBackend wraps a thread manager and fails selected calls.
type faultyBackend struct {
	conversation.Backend

	failList      atomic.Bool
	failMessages  atomic.Bool
	failProfiles  atomic.Bool
	failReactions atomic.Bool
	failReplies   atomic.Bool
	failInsert    atomic.Bool
	// staleUnread, when positive, replaces every unread count the server
	// reports, as a lagging aggregation would.
	staleUnread atomic.Int64
}

var _ conversation.Backend = (*faultyBackend)(nil)

func newFaultyBackend(manager thread.Manager) *faultyBackend {
	return &faultyBackend{Backend: manager}
}

func (b *faultyBackend) ListThreadsForUser(ctx context.Context, userID string) ([]entity.Thread, error) {
	if b.failList.Load() {
		return nil, errUnavailable
	}
	return b.Backend.ListThreadsForUser(ctx, userID)
}

func (b *faultyBackend) ThreadSummaries(ctx context.Context, userID string, threadIDs []string) ([]entity.ThreadSummary, error) {
	summaries, err := b.Backend.ThreadSummaries(ctx, userID, threadIDs)
	if err != nil {
		return nil, err
	}
	if stale := b.staleUnread.Load(); stale > 0 {
		for i := range summaries {
			summaries[i].UnreadCount = int(stale)
		}
	}
	return summaries, nil
}

func (b *faultyBackend) ListMessages(ctx context.Context, threadID string) ([]entity.Message, error) {
	if b.failMessages.Load() {
		return nil, errUnavailable
	}
	return b.Backend.ListMessages(ctx, threadID)
}

func (b *faultyBackend) GetMessagesByIDs(ctx context.Context, messageIDs []string) ([]entity.Message, error) {
	if b.failReplies.Load() {
		return nil, errUnavailable
	}
	return b.Backend.GetMessagesByIDs(ctx, messageIDs)
}

func (b *faultyBackend) ListReactions(ctx context.Context, messageIDs []string) ([]entity.MessageReaction, error) {
	if b.failReactions.Load() {
		return nil, errUnavailable
	}
	return b.Backend.ListReactions(ctx, messageIDs)
}

func (b *faultyBackend) GetProfiles(ctx context.Context, userIDs []string) ([]entity.Profile, error) {
	if b.failProfiles.Load() {
		return nil, errUnavailable
	}
	return b.Backend.GetProfiles(ctx, userIDs)
}

func (b *faultyBackend) InsertMessage(ctx context.Context, msg *entity.Message) (*entity.Message, error) {
	if b.failInsert.Load() {
		return nil, errUnavailable
	}
	return b.Backend.InsertMessage(ctx, msg)
}
