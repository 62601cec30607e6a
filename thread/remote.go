package thread

import (
	"context"
	"time"

	"github.com/habiliai/edudash/entity"
	"github.com/habiliai/edudash/errors"
	"github.com/jcooky/go-din"
)

// RemoteBackend exposes the Manager operations over a JsonRpcClient.
type RemoteBackend struct {
	client JsonRpcClient
}

func NewRemoteBackend(client JsonRpcClient) *RemoteBackend {
	return &RemoteBackend{client: client}
}

func (b *RemoteBackend) ListThreadsForUser(ctx context.Context, userID string) ([]entity.Thread, error) {
	res, err := b.client.ListThreads(ctx, &ListThreadsRequest{UserID: userID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list threads")
	}
	return res.Threads, nil
}

func (b *RemoteBackend) ThreadSummaries(ctx context.Context, userID string, threadIDs []string) ([]entity.ThreadSummary, error) {
	res, err := b.client.GetThreadSummaries(ctx, &GetThreadSummariesRequest{UserID: userID, ThreadIDs: threadIDs})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get thread summaries")
	}
	return res.Summaries, nil
}

func (b *RemoteBackend) ListMessages(ctx context.Context, threadID string) ([]entity.Message, error) {
	res, err := b.client.ListMessages(ctx, &ListMessagesRequest{ThreadID: threadID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list messages")
	}
	return res.Messages, nil
}

func (b *RemoteBackend) GetMessagesByIDs(ctx context.Context, messageIDs []string) ([]entity.Message, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	res, err := b.client.GetMessagesByIds(ctx, &GetMessagesByIdsRequest{MessageIDs: messageIDs})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get messages")
	}
	return res.Messages, nil
}

func (b *RemoteBackend) ListReactions(ctx context.Context, messageIDs []string) ([]entity.MessageReaction, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	res, err := b.client.ListReactions(ctx, &ListReactionsRequest{MessageIDs: messageIDs})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list reactions")
	}
	return res.Reactions, nil
}

func (b *RemoteBackend) GetProfiles(ctx context.Context, userIDs []string) ([]entity.Profile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	res, err := b.client.GetProfiles(ctx, &GetProfilesRequest{UserIDs: userIDs})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get profiles")
	}
	return res.Profiles, nil
}

func (b *RemoteBackend) InsertMessage(ctx context.Context, msg *entity.Message) (*entity.Message, error) {
	res, err := b.client.InsertMessage(ctx, &InsertMessageRequest{
		ID:              msg.ID,
		ThreadID:        msg.ThreadID,
		SenderID:        msg.SenderID,
		Content:         msg.Content,
		ContentType:     msg.ContentType,
		CreatedAt:       msg.CreatedAt,
		ReplyToID:       msg.ReplyToID,
		ForwardedFromID: msg.ForwardedFromID,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to insert message")
	}
	return &res.Message, nil
}

func (b *RemoteBackend) EditMessage(ctx context.Context, messageID, userID, content string) (*entity.Message, error) {
	res, err := b.client.EditMessage(ctx, &EditMessageRequest{MessageID: messageID, UserID: userID, Content: content})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to edit message")
	}
	return &res.Message, nil
}

func (b *RemoteBackend) SoftDeleteMessage(ctx context.Context, messageID, userID string) (*entity.Message, error) {
	res, err := b.client.DeleteMessage(ctx, &DeleteMessageRequest{MessageID: messageID, UserID: userID})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete message")
	}
	return &res.Message, nil
}

func (b *RemoteBackend) ToggleReaction(ctx context.Context, messageID, userID, emoji string) (bool, error) {
	res, err := b.client.ToggleReaction(ctx, &ToggleReactionRequest{MessageID: messageID, UserID: userID, Emoji: emoji})
	if err != nil {
		return false, errors.Wrapf(err, "failed to toggle reaction")
	}
	return res.Added, nil
}

func (b *RemoteBackend) TouchThread(ctx context.Context, threadID string, at time.Time) error {
	return errors.Wrapf(b.client.TouchThread(ctx, &TouchThreadRequest{ThreadID: threadID, At: at}), "failed to touch thread")
}

func (b *RemoteBackend) MarkThreadRead(ctx context.Context, threadID, userID string) error {
	return errors.Wrapf(b.client.MarkThreadRead(ctx, &ThreadUserRequest{ThreadID: threadID, UserID: userID}), "failed to mark thread read")
}

func (b *RemoteBackend) MarkMessagesDelivered(ctx context.Context, threadID, userID string) error {
	return errors.Wrapf(b.client.MarkMessagesDelivered(ctx, &ThreadUserRequest{ThreadID: threadID, UserID: userID}), "failed to mark messages delivered")
}

func init() {
	din.RegisterT(func(c *din.Container) (*RemoteBackend, error) {
		return NewRemoteBackend(din.MustGetT[JsonRpcClient](c)), nil
	})
}
