package conversation

import (
	"context"
	"time"

	"github.com/habiliai/edudash/entity"
)

// Backend is the thread and message store the view reads and mutates.
type Backend interface {
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
