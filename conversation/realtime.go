package conversation

import (
	"context"
	"slices"
	"time"

	"github.com/habiliai/edudash/entity"
	"github.com/habiliai/edudash/internal/mylog"
	"github.com/habiliai/edudash/realtime"
)

// consume applies the events of sub until its channel closes. A
// subscription that closes while it is still the view's own was dropped by
// the transport and is replaced.
func (v *View) consume(sub *realtime.Subscription) {
	for ev := range sub.Events() {
		v.ApplyEvent(v.ctx, ev)
	}

	v.mu.Lock()
	lost := v.sub == sub && !v.closed
	v.mu.Unlock()
	if !lost {
		return
	}

	v.logger.Warn("realtime subscription lost", "thread_id", sub.ThreadID())
	v.resubscribe(sub)
}

// resubscribe opens a new subscription for the thread of lost, retrying
// with backoff, then reconciles the messages missed in between. It gives up
// as soon as the selection moves away from lost.
func (v *View) resubscribe(lost *realtime.Subscription) {
	threadID := lost.ThreadID()
	delay := v.conf.ResubscribeDelay

	var sub *realtime.Subscription
	for {
		v.mu.Lock()
		current := v.sub == lost && !v.closed
		v.mu.Unlock()
		if !current {
			return
		}

		var err error
		if sub, err = v.subscriber.Subscribe(v.ctx, threadID); err == nil {
			break
		}
		v.logger.Warn("failed to resubscribe", "thread_id", threadID, "retry_in", delay, mylog.Err(err))

		timer := time.NewTimer(delay)
		select {
		case <-v.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		delay = min(delay*2, maxResubscribeDelay)
	}

	messages, err := v.reconciler.Reconcile(v.ctx, threadID, v.conf.UserID)

	v.mu.Lock()
	if v.sub != lost || v.closed {
		v.mu.Unlock()
		sub.Close()
		return
	}
	v.sub = sub
	if err != nil {
		v.logger.Warn("failed to reload messages after resubscribe", "thread_id", threadID, mylog.Err(err))
	} else {
		v.messages = keepUnsent(messages, v.messages)
		for _, m := range messages {
			if m.SenderName != "" {
				v.names[m.SenderID] = m.SenderName
			}
		}
	}
	v.mu.Unlock()
	v.notify()

	v.goTracked(func() { v.consume(sub) })
	v.Refresh()
	v.MarkDelivered(v.ctx, threadID)
	v.MarkRead(v.ctx, threadID)
}

// keepUnsent returns fresh plus the pending and failed messages of current
// that the backend does not know yet.
func keepUnsent(fresh, current []MessageView) []MessageView {
	out := slices.Clone(fresh)
	for _, m := range current {
		if m.Status == StatusSent {
			continue
		}
		if slices.ContainsFunc(fresh, func(f MessageView) bool { return f.ID == m.ID }) {
			continue
		}
		out = append(out, m)
	}
	SortMessages(out)
	return out
}

// ApplyEvent applies one realtime event to the view. Events for a thread
// other than the open one only touch the thread list.
func (v *View) ApplyEvent(ctx context.Context, ev realtime.Event) {
	switch ev.Type {
	case realtime.EventTyping:
		v.applyTyping(ev)
	case realtime.EventInsert, realtime.EventUpdate:
		if !ev.IsMessageChange() {
			return
		}
		msgs, err := ev.Messages()
		if err != nil {
			v.logger.Warn("failed to decode realtime record", "type", ev.Type, mylog.Err(err))
			return
		}
		if ev.Type == realtime.EventUpdate {
			v.applyUpdates(msgs)
			return
		}
		for _, msg := range msgs {
			v.applyInsert(ctx, msg)
		}
	default:
		v.logger.Debug("ignoring realtime event", "type", ev.Type)
	}
}

func (v *View) applyInsert(ctx context.Context, msg entity.Message) {
	if msg.IsDeleted() {
		return
	}

	v.mu.Lock()
	v.patchSummaryLocked(msg)
	if !v.state.isOpen(msg.ThreadID) {
		v.mu.Unlock()
		v.notify()
		return
	}
	if i := v.indexLocked(msg.ID); i >= 0 {
		// our own optimistic message echoed back
		if v.messages[i].Status != StatusSent {
			v.messages[i].Message = msg
			v.messages[i].Status = StatusSent
		}
		v.mu.Unlock()
		v.notify()
		return
	}
	v.messages = append(v.messages, v.enrichLocked(msg))
	SortMessages(v.messages)
	senderName := v.names[msg.SenderID]
	v.mu.Unlock()
	v.notify()

	if msg.SenderID == v.conf.UserID {
		return
	}

	if senderName == "" {
		senderName = "New message"
	}
	if err := v.alerter.Alert(ctx, senderName, msg.Content); err != nil {
		v.logger.Debug("failed to alert", mylog.Err(err))
	}
	v.MarkDelivered(ctx, msg.ThreadID)
	v.MarkRead(ctx, msg.ThreadID)
}

func (v *View) applyUpdates(msgs []entity.Message) {
	reload := false

	v.mu.Lock()
	for _, msg := range msgs {
		known, last := v.patchMessageLocked(msg)
		if !known && !last {
			v.logger.Debug("dropping update for unknown message", "message_id", msg.ID)
		}
		reload = reload || last
	}
	v.mu.Unlock()

	v.notify()
	if reload {
		v.Refresh()
	}
}

func (v *View) applyTyping(ev realtime.Event) {
	if ev.UserID == v.conf.UserID {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.state.isOpen(ev.ThreadID) {
		return
	}

	v.state = v.state.withTyping(true)
	if v.typingTimer != nil {
		v.typingTimer.Stop()
	}
	gen := v.selection
	v.typingTimer = time.AfterFunc(v.conf.TypingTimeout, func() {
		v.mu.Lock()
		if v.selection == gen {
			v.state = v.state.withTyping(false)
		}
		v.mu.Unlock()
		v.notify()
	})
	v.notify()
}
