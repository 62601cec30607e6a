package conversation

import (
	"context"
	"time"

	"github.com/habiliai/edudash/aichat"
	"github.com/habiliai/edudash/internal/mylog"
)

// MarkDelivered acknowledges delivery of the thread's messages from others.
// Failures are only logged.
func (v *View) MarkDelivered(ctx context.Context, threadID string) {
	if threadID == "" || threadID == aichat.ThreadID {
		return
	}

	if err := v.backend.MarkMessagesDelivered(ctx, threadID, v.conf.UserID); err != nil {
		v.logger.Warn("failed to mark messages delivered", "thread_id", threadID, mylog.Err(err))
	}
}

// MarkRead acknowledges reading the thread. The unread count is zeroed
// locally right away and the thread list is refetched after RefreshDelay,
// so a lagging summary on the server does not bring the count back.
func (v *View) MarkRead(ctx context.Context, threadID string) {
	if threadID == "" || threadID == aichat.ThreadID {
		return
	}

	if err := v.backend.MarkThreadRead(ctx, threadID, v.conf.UserID); err != nil {
		v.logger.Warn("failed to mark thread read", "thread_id", threadID, mylog.Err(err))
		return
	}

	v.mu.Lock()
	if i := v.threadIndexLocked(threadID); i >= 0 {
		v.threads[i].UnreadCount = 0
	}
	v.scheduleRefreshLocked(v.conf.RefreshDelay)
	v.mu.Unlock()
	v.notify()
}

func (v *View) scheduleRefreshLocked(delay time.Duration) {
	if v.closed {
		return
	}
	if v.refreshTimer != nil {
		v.refreshTimer.Stop()
	}
	v.refreshTimer = time.AfterFunc(delay, v.Refresh)
}
