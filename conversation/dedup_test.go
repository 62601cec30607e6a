package conversation_test

import (
	"testing"
	"time"

	"github.com/habiliai/edudash/conversation"
	"github.com/habiliai/edudash/entity"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func remoteThread(id, counterpartID string, lastAt time.Time) conversation.RemoteThread {
	participants := []entity.ThreadParticipant{{ThreadID: id, UserID: "parent-1", Role: entity.RoleParent}}
	if counterpartID != "" {
		participants = append(participants, entity.ThreadParticipant{ThreadID: id, UserID: counterpartID, Role: entity.RoleTeacher})
	}
	t := conversation.RemoteThread{
		Thread: entity.Thread{ID: id, Participants: participants},
	}
	if !lastAt.IsZero() {
		t.LastMessage = &entity.Message{ID: id + "-last", ThreadID: id, CreatedAt: lastAt}
	}
	return t
}

func threadIDs(threads []conversation.RemoteThread) []string {
	return lo.Map(threads, func(t conversation.RemoteThread, _ int) string { return t.Thread.ID })
}

func TestDedupThreadsKeepsMostRecentPerCounterpart(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	threads := []conversation.RemoteThread{
		remoteThread("b", "teacher-1", base),
		remoteThread("a", "teacher-1", base.Add(time.Hour)),
		remoteThread("c", "teacher-2", base.Add(30*time.Minute)),
		remoteThread("d", "", base.Add(2*time.Hour)),
		remoteThread("e", "", time.Time{}),
	}

	deduped := conversation.DedupThreads(threads)
	require.Equal(t, []string{"d", "a", "c", "e"}, threadIDs(deduped))

	keys := lo.Map(deduped, func(t conversation.RemoteThread, _ int) string { return t.DedupKey() })
	assert.Len(t, lo.Uniq(keys), len(keys))

	for i := 1; i < len(deduped); i++ {
		assert.False(t, deduped[i].Recency().After(deduped[i-1].Recency()))
	}
}

func TestDedupThreadsIsIdempotent(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	threads := []conversation.RemoteThread{
		remoteThread("x", "teacher-1", base),
		remoteThread("y", "teacher-1", base),
		remoteThread("z", "teacher-2", base),
		remoteThread("w", "", base.Add(-time.Minute)),
	}

	once := conversation.DedupThreads(threads)
	twice := conversation.DedupThreads(once)
	assert.Equal(t, threadIDs(once), threadIDs(twice))

	// equal recency resolves to the greater id
	assert.Equal(t, []string{"z", "y", "w"}, threadIDs(once))
}

func TestDedupThreadsRecencyFallsBackToLastActivity(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	withActivity := remoteThread("old", "teacher-1", time.Time{})
	withActivity.Thread.LastMessageAt = lo.ToPtr(base.Add(time.Hour))
	withMessage := remoteThread("new", "teacher-1", base)

	deduped := conversation.DedupThreads([]conversation.RemoteThread{withActivity, withMessage})
	require.Len(t, deduped, 1)
	assert.Equal(t, "old", deduped[0].Thread.ID)
}

func TestDedupThreadsEmpty(t *testing.T) {
	assert.Empty(t, conversation.DedupThreads(nil))
}
