package conversation

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/habiliai/edudash/entity"
	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/internal/mylog"
	"github.com/mokiat/gog"
	"github.com/samber/lo"
)

// Reconciler turns the raw rows of a thread into display-ready messages.
// Only the message fetch is fatal; sender names, reply previews and
// reactions are filled in when their lookups succeed.
type Reconciler struct {
	backend Backend
	logger  *slog.Logger
}

func NewReconciler(backend Backend, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = mylog.Discard()
	}
	return &Reconciler{backend: backend, logger: logger}
}

func (r *Reconciler) Reconcile(ctx context.Context, threadID, viewerID string) ([]MessageView, error) {
	rows, err := r.backend.ListMessages(ctx, threadID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list messages of thread %s", threadID)
	}
	rows = lo.Filter(rows, func(m entity.Message, _ int) bool {
		return !m.IsDeleted()
	})
	if len(rows) == 0 {
		return []MessageView{}, nil
	}

	replies := r.replyTargets(ctx, rows)
	reactions := r.reactions(ctx, rows)

	userIDs := gog.Map(rows, func(m entity.Message) string { return m.SenderID })
	for _, target := range replies {
		userIDs = append(userIDs, target.SenderID)
	}
	for _, rs := range reactions {
		userIDs = append(userIDs, gog.Map(rs, func(r entity.MessageReaction) string { return r.UserID })...)
	}
	names := r.names(ctx, lo.Uniq(userIDs))

	out := gog.Map(rows, func(m entity.Message) MessageView {
		view := MessageView{
			Message:    m,
			SenderName: names[m.SenderID],
			Status:     StatusSent,
			Reactions:  GroupReactions(reactions[m.ID], viewerID, names),
		}
		if m.ReplyToID != nil {
			if target, ok := replies[*m.ReplyToID]; ok {
				view.Reply = newReplyPreview(target, names)
			}
		}
		return view
	})
	SortMessages(out)

	return out, nil
}

func (r *Reconciler) replyTargets(ctx context.Context, rows []entity.Message) map[string]entity.Message {
	ids := lo.Uniq(lo.FilterMap(rows, func(m entity.Message, _ int) (string, bool) {
		if m.ReplyToID == nil {
			return "", false
		}
		return *m.ReplyToID, true
	}))
	if len(ids) == 0 {
		return nil
	}

	targets, err := r.backend.GetMessagesByIDs(ctx, ids)
	if err != nil {
		r.logger.Warn("failed to resolve reply targets", mylog.Err(err))
		return nil
	}
	return lo.KeyBy(targets, func(m entity.Message) string { return m.ID })
}

func (r *Reconciler) reactions(ctx context.Context, rows []entity.Message) map[string][]entity.MessageReaction {
	ids := gog.Map(rows, func(m entity.Message) string { return m.ID })
	reactions, err := r.backend.ListReactions(ctx, ids)
	if err != nil {
		r.logger.Warn("failed to list reactions", mylog.Err(err))
		return nil
	}
	return lo.GroupBy(reactions, func(r entity.MessageReaction) string { return r.MessageID })
}

func (r *Reconciler) names(ctx context.Context, userIDs []string) map[string]string {
	profiles, err := r.backend.GetProfiles(ctx, userIDs)
	if err != nil {
		r.logger.Warn("failed to resolve profiles", mylog.Err(err))
		return map[string]string{}
	}
	return profileNames(profiles)
}

func profileNames(profiles []entity.Profile) map[string]string {
	names := make(map[string]string, len(profiles))
	for i := range profiles {
		names[profiles[i].ID] = profiles[i].DisplayName()
	}
	return names
}

func newReplyPreview(target entity.Message, names map[string]string) *ReplyPreview {
	content := target.Content
	if target.IsDeleted() {
		content = ""
	}
	return &ReplyPreview{
		MessageID:  target.ID,
		SenderID:   target.SenderID,
		SenderName: names[target.SenderID],
		Content:    content,
	}
}

// GroupReactions groups the reactions of one message by emoji, in order of
// each emoji's first reaction. Reacting users without a known name are
// counted but not named.
func GroupReactions(reactions []entity.MessageReaction, viewerID string, names map[string]string) []ReactionGroup {
	if len(reactions) == 0 {
		return nil
	}
	reactions = slices.Clone(reactions)
	slices.SortStableFunc(reactions, func(a, b entity.MessageReaction) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	var groups []ReactionGroup
	index := map[string]int{}
	for _, r := range reactions {
		i, ok := index[r.Emoji]
		if !ok {
			i = len(groups)
			index[r.Emoji] = i
			groups = append(groups, ReactionGroup{Emoji: r.Emoji})
		}
		g := &groups[i]
		g.Count++
		g.UserIDs = append(g.UserIDs, r.UserID)
		if name, ok := names[r.UserID]; ok && name != "" {
			g.UserNames = append(g.UserNames, name)
		}
		if r.UserID == viewerID {
			g.ReactedByMe = true
		}
	}

	return groups
}

// SortMessages orders messages by creation time, then id.
func SortMessages(messages []MessageView) {
	slices.SortStableFunc(messages, func(a, b MessageView) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
