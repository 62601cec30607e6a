package conversation

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/habiliai/edudash/aichat"
	"github.com/habiliai/edudash/config"
	"github.com/habiliai/edudash/entity"
	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/internal/mylog"
	"github.com/habiliai/edudash/localstore"
	"github.com/habiliai/edudash/notify"
	"github.com/habiliai/edudash/realtime"
	"github.com/habiliai/edudash/thread"
	"github.com/jcooky/go-din"
	"github.com/mokiat/gog"
	"github.com/samber/lo"
	"golang.org/x/time/rate"
)

const (
	defaultRefreshDelay   = 1500 * time.Millisecond
	defaultTypingInterval = 2 * time.Second
	defaultTypingTimeout  = 4 * time.Second
	defaultResubscribe    = 500 * time.Millisecond
	maxResubscribeDelay   = 30 * time.Second
	pushTimeout           = 10 * time.Second
)

func wallpaperKey(userID string) string {
	return "chat_wallpaper/" + userID
}

type (
	Config struct {
		UserID string
		// RefreshDelay is how long after a read acknowledgement the thread
		// list is refetched.
		RefreshDelay   time.Duration
		TypingInterval time.Duration
		TypingTimeout  time.Duration
		// ResubscribeDelay is the first backoff step after a lost realtime
		// subscription.
		ResubscribeDelay time.Duration
	}

	Deps struct {
		Backend    Backend
		Subscriber realtime.Subscriber
		AI         *aichat.Store
		Local      localstore.Store
		Dispatcher notify.Dispatcher
		Alerter    notify.Alerter
		Logger     *slog.Logger
	}

	// View is the conversation view model of one signed-in user. It is safe
	// for concurrent use; Changes signals every visible change.
	View struct {
		conf       Config
		backend    Backend
		subscriber realtime.Subscriber
		ai         *aichat.Store
		kv         localstore.Store
		dispatcher notify.Dispatcher
		alerter    notify.Alerter
		reconciler *Reconciler
		logger     *slog.Logger
		typing     *rate.Limiter

		ctx       context.Context
		cancel    context.CancelFunc
		changes   chan struct{}
		refreshes chan struct{}
		wg        sync.WaitGroup

		mu           sync.Mutex
		closed       bool
		started      bool
		state        State
		selection    uint64
		threads      []RemoteThread
		messages     []MessageView
		names        map[string]string
		wallpaper    string
		refreshCount uint64
		sub          *realtime.Subscription
		typingTimer  *time.Timer
		refreshTimer *time.Timer
	}
)

func NewView(deps Deps, conf Config) *View {
	if conf.RefreshDelay <= 0 {
		conf.RefreshDelay = defaultRefreshDelay
	}
	if conf.TypingInterval <= 0 {
		conf.TypingInterval = defaultTypingInterval
	}
	if conf.TypingTimeout <= 0 {
		conf.TypingTimeout = defaultTypingTimeout
	}
	if conf.ResubscribeDelay <= 0 {
		conf.ResubscribeDelay = defaultResubscribe
	}
	if deps.Logger == nil {
		deps.Logger = mylog.Discard()
	}
	if deps.Alerter == nil {
		deps.Alerter = notify.NoopAlerter{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	v := &View{
		conf:       conf,
		backend:    deps.Backend,
		subscriber: deps.Subscriber,
		ai:         deps.AI,
		kv:         deps.Local,
		dispatcher: deps.Dispatcher,
		alerter:    deps.Alerter,
		reconciler: NewReconciler(deps.Backend, deps.Logger),
		logger:     deps.Logger,
		typing:     rate.NewLimiter(rate.Every(conf.TypingInterval), 1),
		ctx:        ctx,
		cancel:     cancel,
		changes:    make(chan struct{}, 1),
		refreshes:  make(chan struct{}, 1),
		state:      State{Selection: SelectionNone},
		names:      map[string]string{},
	}
	if v.ai != nil {
		v.ai.OnChange(v.notify)
	}

	return v
}

// Start loads the user's profile, wallpaper and thread list, and starts
// serving Refresh requests until ctx is done or the view is closed.
func (v *View) Start(ctx context.Context) error {
	v.mu.Lock()
	if v.closed || v.started {
		v.mu.Unlock()
		return nil
	}
	v.started = true
	v.mu.Unlock()

	v.loadIdentity(ctx)
	v.loadWallpaper(ctx)
	if v.ai != nil {
		if err := v.ai.Open(ctx); err != nil {
			v.logger.Warn("failed to open assistant history", mylog.Err(err))
		}
	}

	v.goTracked(func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-v.ctx.Done():
				return
			case <-v.refreshes:
				if err := v.LoadThreads(ctx); err != nil {
					v.logger.Warn("failed to refresh threads", mylog.Err(err))
				}
			}
		}
	})

	return v.LoadThreads(ctx)
}

// Close releases the realtime subscription and waits for background work.
func (v *View) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	sub := v.sub
	v.sub = nil
	v.stopTimersLocked()
	v.mu.Unlock()

	v.cancel()
	if sub != nil {
		sub.Close()
	}
	v.wg.Wait()
}

func (v *View) stopTimersLocked() {
	if v.typingTimer != nil {
		v.typingTimer.Stop()
		v.typingTimer = nil
	}
	if v.refreshTimer != nil {
		v.refreshTimer.Stop()
		v.refreshTimer = nil
	}
}

// goTracked runs fn in a goroutine that Close waits for. It does nothing
// once the view is closed.
func (v *View) goTracked(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		fn()
	}()
}

// Changes is signalled after every change. Signals coalesce.
func (v *View) Changes() <-chan struct{} {
	return v.changes
}

func (v *View) notify() {
	select {
	case v.changes <- struct{}{}:
	default:
	}
}

// Refresh requests a full reload of the thread list.
func (v *View) Refresh() {
	v.mu.Lock()
	v.refreshCount++
	v.mu.Unlock()

	select {
	case v.refreshes <- struct{}{}:
	default:
	}
}

func (v *View) RefreshCount() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.refreshCount
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *View) Messages() []MessageView {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.messages)
}

// Threads returns the assistant lane followed by the deduplicated remote
// threads, most recent first.
func (v *View) Threads() []ThreadItem {
	var items []ThreadItem
	if v.ai != nil {
		items = append(items, newVirtualThread(v.ai))
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for _, t := range v.threads {
		items = append(items, t)
	}
	return items
}

func (v *View) loadIdentity(ctx context.Context) {
	profiles, err := v.backend.GetProfiles(ctx, []string{v.conf.UserID})
	if err != nil || len(profiles) == 0 {
		v.logger.Warn("failed to load own profile", "user_id", v.conf.UserID, mylog.Err(err))
		return
	}

	me := profiles[0]
	v.mu.Lock()
	v.names[me.ID] = me.DisplayName()
	v.mu.Unlock()

	if v.ai != nil {
		v.ai.SetPersona(aichat.Persona{
			UserName: me.DisplayName(),
			Role:     string(me.Role),
		})
	}
}

// LoadThreads fetches the thread list with its summaries. A failure is kept
// in State.Err and returned.
func (v *View) LoadThreads(ctx context.Context) error {
	items, err := v.fetchThreads(ctx)

	v.mu.Lock()
	v.state.Err = err
	if err == nil {
		for i := range items {
			if v.state.isOpen(items[i].Thread.ID) {
				items[i].UnreadCount = 0
			}
			for _, p := range items[i].Thread.Participants {
				if p.Profile != nil {
					v.names[p.UserID] = p.Profile.DisplayName()
				}
			}
		}
		v.threads = items
	}
	v.mu.Unlock()
	v.notify()

	return err
}

func (v *View) fetchThreads(ctx context.Context) ([]RemoteThread, error) {
	threads, err := v.backend.ListThreadsForUser(ctx, v.conf.UserID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list threads")
	}
	if len(threads) == 0 {
		return []RemoteThread{}, nil
	}

	summaries, err := v.backend.ThreadSummaries(
		ctx,
		v.conf.UserID,
		gog.Map(threads, func(t entity.Thread) string { return t.ID }),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to summarize threads")
	}
	byThread := lo.KeyBy(summaries, func(s entity.ThreadSummary) string { return s.ThreadID })

	return DedupThreads(gog.Map(threads, func(t entity.Thread) RemoteThread {
		s := byThread[t.ID]
		return RemoteThread{
			Thread:      t,
			LastMessage: s.LastMessage,
			UnreadCount: s.UnreadCount,
		}
	})), nil
}

// SelectThread opens a thread. The assistant lane is shown on its own
// surface, so selecting it only reports RouteAIChat. For a remote thread
// the messages are loaded, the realtime subscription is moved to it, and
// delivery and read are acknowledged.
func (v *View) SelectThread(ctx context.Context, threadID string) (Route, error) {
	if threadID == "" {
		return RouteInline, errors.Wrapf(errors.ErrInvalidParams, "thread id is required")
	}

	if threadID == aichat.ThreadID {
		v.changeSelection(func(s State) State { return s.selectThread(threadID, SelectionAI) })
		if v.ai != nil {
			if err := v.ai.Open(ctx); err != nil {
				v.logger.Warn("failed to open assistant history", mylog.Err(err))
			}
		}
		return RouteAIChat, nil
	}

	gen := v.changeSelection(func(s State) State { return s.selectThread(threadID, SelectionNormal) })

	var sub *realtime.Subscription
	if v.subscriber != nil {
		var err error
		if sub, err = v.subscriber.Subscribe(v.ctx, threadID); err != nil {
			v.logger.Warn("failed to subscribe to thread", "thread_id", threadID, mylog.Err(err))
		}
	}

	messages, err := v.reconciler.Reconcile(ctx, threadID, v.conf.UserID)

	v.mu.Lock()
	if v.selection != gen || v.closed {
		v.mu.Unlock()
		if sub != nil {
			sub.Close()
		}
		return RouteInline, nil
	}
	v.sub = sub
	v.state = v.state.loaded()
	v.state.Err = err
	if err == nil {
		v.messages = messages
		for _, m := range messages {
			if m.SenderName != "" {
				v.names[m.SenderID] = m.SenderName
			}
		}
	}
	if i := v.threadIndexLocked(threadID); i >= 0 {
		v.threads[i].UnreadCount = 0
	}
	v.mu.Unlock()
	v.notify()

	if sub != nil {
		v.goTracked(func() { v.consume(sub) })
	}
	if err != nil {
		return RouteInline, err
	}

	v.MarkDelivered(ctx, threadID)
	v.MarkRead(ctx, threadID)

	return RouteInline, nil
}

// changeSelection applies a selection transition, drops the loaded
// messages and releases the realtime subscription. It returns the new
// selection generation.
func (v *View) changeSelection(transition func(State) State) uint64 {
	v.mu.Lock()
	sub := v.sub
	v.sub = nil
	v.selection++
	gen := v.selection
	v.state = transition(v.state)
	v.messages = nil
	if v.typingTimer != nil {
		v.typingTimer.Stop()
		v.typingTimer = nil
	}
	v.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
	v.notify()

	return gen
}

func (v *View) ClearSelection() {
	v.changeSelection(State.clearSelection)
}

// HandleKey clears the selection on Escape or q pressed without modifiers.
// It reports whether the key was consumed.
func (v *View) HandleKey(key KeyEvent) bool {
	if key.Ctrl || key.Alt || key.Meta || key.Shift {
		return false
	}
	if key.Key != KeyEscape && key.Key != KeyClear {
		return false
	}
	if v.State().Selection == SelectionNone {
		return false
	}

	v.ClearSelection()
	return true
}

func (v *View) SetComposeText(ctx context.Context, text string) {
	v.mu.Lock()
	v.state = v.state.withComposeText(text)
	v.mu.Unlock()
	v.notify()

	if text != "" {
		v.NotifyTyping(ctx)
	}
}

// SetReplyTo makes the next sent message a reply to messageID. An empty id
// clears it.
func (v *View) SetReplyTo(messageID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if messageID != "" && v.indexLocked(messageID) < 0 {
		return errors.Wrapf(errors.ErrNotFound, "message %s is not in the open thread", messageID)
	}
	v.state.ReplyToID = messageID
	v.notify()
	return nil
}

// NotifyTyping tells the counterpart that the user is typing, at most once
// per typing interval.
func (v *View) NotifyTyping(ctx context.Context) {
	v.mu.Lock()
	sub := v.sub
	threadID := v.state.ThreadID
	open := v.state.Selection == SelectionNormal
	v.mu.Unlock()

	if !open || sub == nil || !v.typing.Allow() {
		return
	}
	if err := sub.Send(ctx, realtime.NewTypingEvent(threadID, v.conf.UserID)); err != nil {
		v.logger.Debug("failed to send typing", "thread_id", threadID, mylog.Err(err))
	}
}

func (v *View) checkSendableLocked() error {
	switch {
	case v.state.Selection == SelectionAI:
		return errors.WithStack(errors.ErrVirtualThread)
	case v.state.Selection != SelectionNormal:
		return errors.WithStack(errors.ErrNoThreadSelected)
	case v.state.Uploading:
		return errors.WithStack(errors.ErrUploadInProgress)
	}
	return nil
}

// Send sends the composed text to the open thread. The message is shown
// immediately as pending; if the backend rejects it, it stays in place
// marked failed and can be retried with RetrySend.
func (v *View) Send(ctx context.Context) error {
	v.mu.Lock()
	if err := v.checkSendableLocked(); err != nil {
		v.mu.Unlock()
		return err
	}
	content := strings.TrimSpace(v.state.ComposeText)
	if content == "" {
		v.mu.Unlock()
		return errors.WithStack(errors.ErrEmptyMessage)
	}

	msg := entity.Message{
		ID:          uuid.NewString(),
		ThreadID:    v.state.ThreadID,
		SenderID:    v.conf.UserID,
		Content:     content,
		ContentType: entity.ContentTypeText,
		CreatedAt:   time.Now(),
		ReadBy:      []string{},
	}
	if v.state.ReplyToID != "" {
		msg.ReplyToID = lo.ToPtr(v.state.ReplyToID)
	}
	pending := v.enrichLocked(msg)
	pending.Status = StatusPending
	v.messages = append(v.messages, pending)
	v.state = v.state.sent()
	v.mu.Unlock()
	v.notify()

	return v.deliver(ctx, msg)
}

// RetrySend resends a failed message with its original id.
func (v *View) RetrySend(ctx context.Context, messageID string) error {
	v.mu.Lock()
	if err := v.checkSendableLocked(); err != nil {
		v.mu.Unlock()
		return err
	}
	i := v.indexLocked(messageID)
	if i < 0 {
		v.mu.Unlock()
		return errors.Wrapf(errors.ErrNotFound, "message %s not found", messageID)
	}
	if v.messages[i].Status != StatusFailed {
		v.mu.Unlock()
		return errors.Wrapf(errors.ErrInvalidRequest, "message %s has not failed", messageID)
	}
	v.messages[i].Status = StatusPending
	msg := v.messages[i].Message
	v.mu.Unlock()
	v.notify()

	return v.deliver(ctx, msg)
}

func (v *View) deliver(ctx context.Context, msg entity.Message) error {
	stored, err := v.backend.InsertMessage(ctx, &msg)
	if err != nil {
		v.mu.Lock()
		if i := v.indexLocked(msg.ID); i >= 0 {
			v.messages[i].Status = StatusFailed
		}
		v.mu.Unlock()
		v.notify()
		return errors.Wrapf(err, "failed to send message")
	}

	v.mu.Lock()
	if i := v.indexLocked(stored.ID); i >= 0 {
		v.messages[i].Message = *stored
		v.messages[i].Status = StatusSent
	}
	v.patchSummaryLocked(*stored)
	t := v.threadLocked(stored.ThreadID)
	v.mu.Unlock()
	v.notify()

	v.touch(ctx, *stored)
	v.dispatchPush(t, *stored)

	return nil
}

func (v *View) touch(ctx context.Context, msg entity.Message) {
	if err := v.backend.TouchThread(ctx, msg.ThreadID, msg.CreatedAt); err != nil {
		v.logger.Warn("failed to touch thread", "thread_id", msg.ThreadID, mylog.Err(err))
	}
}

// dispatchPush notifies every other participant of t without waiting.
func (v *View) dispatchPush(t *entity.Thread, msg entity.Message) {
	if v.dispatcher == nil || t == nil {
		return
	}

	v.mu.Lock()
	title := v.names[v.conf.UserID]
	v.mu.Unlock()
	if title == "" {
		title = "New message"
	}
	body := msg.Content
	if msg.ContentType != entity.ContentTypeText && msg.ContentType != "" {
		body = "[" + string(msg.ContentType) + "]"
	}

	recipients := lo.FilterMap(t.Participants, func(p entity.ThreadParticipant, _ int) (string, bool) {
		return p.UserID, p.UserID != v.conf.UserID
	})
	v.goTracked(func() {
		ctx, cancel := context.WithTimeout(v.ctx, pushTimeout)
		defer cancel()

		for _, recipientID := range recipients {
			if err := v.dispatcher.Dispatch(ctx, notify.Push{
				RecipientID: recipientID,
				ThreadID:    msg.ThreadID,
				MessageID:   msg.ID,
				Title:       title,
				Body:        body,
			}); err != nil {
				v.logger.Warn("failed to dispatch push", "recipient_id", recipientID, mylog.Err(err))
			}
		}
	})
}

func (v *View) EditMessage(ctx context.Context, messageID, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return errors.WithStack(errors.ErrEmptyMessage)
	}

	updated, err := v.backend.EditMessage(ctx, messageID, v.conf.UserID, content)
	if err != nil {
		return errors.Wrapf(err, "failed to edit message")
	}

	v.mu.Lock()
	_, reload := v.patchMessageLocked(*updated)
	v.mu.Unlock()
	v.notify()
	if reload {
		v.Refresh()
	}

	return nil
}

// DeleteMessage soft deletes one of the user's messages and removes it from
// the open thread.
func (v *View) DeleteMessage(ctx context.Context, messageID string) error {
	deleted, err := v.backend.SoftDeleteMessage(ctx, messageID, v.conf.UserID)
	if err != nil {
		return errors.Wrapf(err, "failed to delete message")
	}

	v.mu.Lock()
	_, reload := v.patchMessageLocked(*deleted)
	v.mu.Unlock()
	v.notify()
	if reload {
		v.Refresh()
	}

	return nil
}

// ToggleReaction adds the user's emoji reaction, or removes it when it is
// already there. It reports whether the reaction now exists.
func (v *View) ToggleReaction(ctx context.Context, messageID, emoji string) (bool, error) {
	if emoji == "" {
		return false, errors.Wrapf(errors.ErrInvalidParams, "emoji is required")
	}

	added, err := v.backend.ToggleReaction(ctx, messageID, v.conf.UserID, emoji)
	if err != nil {
		return false, errors.Wrapf(err, "failed to toggle reaction")
	}

	v.mu.Lock()
	if i := v.indexLocked(messageID); i >= 0 {
		v.messages[i].Reactions = toggleReaction(
			v.messages[i].Reactions,
			emoji,
			v.conf.UserID,
			v.names[v.conf.UserID],
			added,
		)
	}
	v.mu.Unlock()
	v.notify()

	return added, nil
}

// ForwardMessage copies a message of the open thread into another thread.
func (v *View) ForwardMessage(ctx context.Context, messageID, targetThreadID string) error {
	if targetThreadID == aichat.ThreadID {
		return errors.WithStack(errors.ErrVirtualThread)
	}

	v.mu.Lock()
	i := v.indexLocked(messageID)
	if i < 0 {
		v.mu.Unlock()
		return errors.Wrapf(errors.ErrNotFound, "message %s not found", messageID)
	}
	src := v.messages[i].Message
	v.mu.Unlock()

	stored, err := v.backend.InsertMessage(ctx, &entity.Message{
		ID:              uuid.NewString(),
		ThreadID:        targetThreadID,
		SenderID:        v.conf.UserID,
		Content:         src.Content,
		ContentType:     src.ContentType,
		CreatedAt:       time.Now(),
		ReadBy:          []string{},
		ForwardedFromID: lo.ToPtr(src.ID),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to forward message")
	}

	v.mu.Lock()
	if v.state.isOpen(targetThreadID) && v.indexLocked(stored.ID) < 0 {
		v.messages = append(v.messages, v.enrichLocked(*stored))
	}
	if v.state.Modal == ModalForward {
		v.state = v.state.closeModal()
	}
	t := v.threadLocked(targetThreadID)
	v.mu.Unlock()
	v.notify()

	v.touch(ctx, *stored)
	v.dispatchPush(t, *stored)
	v.Refresh()

	return nil
}

func (v *View) BeginUpload() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case v.state.Selection != SelectionNormal:
		return errors.WithStack(errors.ErrNoThreadSelected)
	case v.state.Uploading:
		return errors.WithStack(errors.ErrUploadInProgress)
	}
	v.state = v.state.withUploading(true)
	v.notify()
	return nil
}

// FinishUpload ends the upload started by BeginUpload, successful or not.
func (v *View) FinishUpload(err error) {
	if err != nil {
		v.logger.Warn("attachment upload failed", mylog.Err(err))
	}
	v.mu.Lock()
	v.state = v.state.withUploading(false)
	v.mu.Unlock()
	v.notify()
}

// OpenModal opens a modal over the selected thread. target is the message
// the modal acts on and may be empty.
func (v *View) OpenModal(kind ModalKind, target string) error {
	if kind == ModalNone {
		return errors.Wrapf(errors.ErrInvalidParams, "modal kind is required")
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state.Selection == SelectionNone {
		return errors.WithStack(errors.ErrNoThreadSelected)
	}
	v.state = v.state.openModal(kind, target)
	v.notify()
	return nil
}

// CloseModal returns to the thread the modal was opened over, or to no
// selection at all when clearSelection is set.
func (v *View) CloseModal(clearSelection bool) {
	if clearSelection {
		v.ClearSelection()
		return
	}

	v.mu.Lock()
	v.state = v.state.closeModal()
	v.mu.Unlock()
	v.notify()
}

func (v *View) Wallpaper() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.wallpaper
}

func (v *View) loadWallpaper(ctx context.Context) {
	if v.kv == nil {
		return
	}
	value, ok, err := v.kv.Get(ctx, wallpaperKey(v.conf.UserID))
	if err != nil {
		v.logger.Warn("failed to load wallpaper", mylog.Err(err))
		return
	}
	if ok {
		v.mu.Lock()
		v.wallpaper = value
		v.mu.Unlock()
	}
}

// SetWallpaper stores the chat background locally and closes the wallpaper
// modal if it is open.
func (v *View) SetWallpaper(ctx context.Context, value string) error {
	if v.kv != nil {
		if err := v.kv.Set(ctx, wallpaperKey(v.conf.UserID), value); err != nil {
			return err
		}
	}

	v.mu.Lock()
	v.wallpaper = value
	if v.state.Modal == ModalWallpaper {
		v.state = v.state.closeModal()
	}
	v.mu.Unlock()
	v.notify()

	return nil
}

func (v *View) indexLocked(messageID string) int {
	return slices.IndexFunc(v.messages, func(m MessageView) bool { return m.ID == messageID })
}

func (v *View) threadIndexLocked(threadID string) int {
	return slices.IndexFunc(v.threads, func(t RemoteThread) bool { return t.Thread.ID == threadID })
}

func (v *View) threadLocked(threadID string) *entity.Thread {
	if i := v.threadIndexLocked(threadID); i >= 0 {
		t := v.threads[i].Thread
		return &t
	}
	return nil
}

// enrichLocked builds the view of a message from what is already known
// locally, without backend lookups.
func (v *View) enrichLocked(m entity.Message) MessageView {
	view := MessageView{
		Message:    m,
		SenderName: v.names[m.SenderID],
		Status:     StatusSent,
	}
	if m.ReplyToID != nil {
		if i := v.indexLocked(*m.ReplyToID); i >= 0 {
			view.Reply = newReplyPreview(v.messages[i].Message, v.names)
		}
	}
	return view
}

// patchSummaryLocked makes m the last message of its thread when it is at
// least as recent as the current one.
func (v *View) patchSummaryLocked(m entity.Message) {
	i := v.threadIndexLocked(m.ThreadID)
	if i < 0 {
		return
	}

	t := v.threads[i]
	if t.LastMessage == nil || t.LastMessage.ID == m.ID || !m.CreatedAt.Before(t.LastMessage.CreatedAt) {
		t.LastMessage = lo.ToPtr(m)
	}
	if v.state.isOpen(m.ThreadID) {
		t.UnreadCount = 0
	}
	v.threads[i] = t
	v.threads = DedupThreads(v.threads)
}

// patchMessageLocked applies a changed row to the open thread and to the
// thread summaries. It reports whether the message was loaded, and whether
// the thread list needs a reload because the change cannot be patched.
func (v *View) patchMessageLocked(m entity.Message) (known bool, reload bool) {
	if i := v.indexLocked(m.ID); i >= 0 {
		known = true
		if m.IsDeleted() {
			v.messages = slices.Delete(v.messages, i, i+1)
		} else {
			v.messages[i].Message = m
		}
	}

	if i := v.threadIndexLocked(m.ThreadID); i >= 0 {
		if last := v.threads[i].LastMessage; last != nil && last.ID == m.ID {
			if m.IsDeleted() {
				reload = true
			} else {
				v.threads[i].LastMessage = lo.ToPtr(m)
			}
		}
	}

	return known, reload
}

// toggleReaction returns a copy of groups with userID's emoji reaction
// added or removed.
func toggleReaction(groups []ReactionGroup, emoji, userID, userName string, added bool) []ReactionGroup {
	out := make([]ReactionGroup, 0, len(groups)+1)
	found := false
	for _, g := range groups {
		if g.Emoji != emoji {
			out = append(out, g)
			continue
		}
		found = true

		has := slices.Contains(g.UserIDs, userID)
		switch {
		case added && !has:
			g.UserIDs = append(slices.Clone(g.UserIDs), userID)
			if userName != "" {
				g.UserNames = append(slices.Clone(g.UserNames), userName)
			}
			g.Count++
			g.ReactedByMe = true
		case !added && has:
			g.UserIDs = slices.DeleteFunc(slices.Clone(g.UserIDs), func(id string) bool { return id == userID })
			if j := slices.Index(g.UserNames, userName); userName != "" && j >= 0 {
				g.UserNames = slices.Delete(slices.Clone(g.UserNames), j, j+1)
			}
			g.Count--
			g.ReactedByMe = false
		}
		if g.Count > 0 {
			out = append(out, g)
		}
	}

	if added && !found {
		g := ReactionGroup{
			Emoji:       emoji,
			Count:       1,
			UserIDs:     []string{userID},
			ReactedByMe: true,
		}
		if userName != "" {
			g.UserNames = []string{userName}
		}
		out = append(out, g)
	}
	if len(out) == 0 {
		return nil
	}

	return out
}

func init() {
	din.RegisterT(func(c *din.Container) (*View, error) {
		conf, err := din.GetT[*config.ClientConfig](c)
		if err != nil {
			return nil, err
		}
		logger, err := din.Get[*mylog.Logger](c, mylog.Key)
		if err != nil {
			return nil, err
		}
		backend, err := din.GetT[*thread.RemoteBackend](c)
		if err != nil {
			return nil, err
		}
		store, err := din.GetT[*aichat.Store](c)
		if err != nil {
			return nil, err
		}
		kv, err := din.GetT[localstore.Store](c)
		if err != nil {
			return nil, err
		}
		dispatcher, err := din.GetT[*notify.RemoteDispatcher](c)
		if err != nil {
			return nil, err
		}
		alerter, err := din.GetT[notify.Alerter](c)
		if err != nil {
			return nil, err
		}
		logger = logger.With("component", "conversation", "user_id", conf.UserID)

		v := NewView(Deps{
			Backend:    backend,
			Subscriber: realtime.NewClient(conf.RealtimeUrl(), logger),
			AI:         store,
			Local:      kv,
			Dispatcher: dispatcher,
			Alerter:    alerter,
			Logger:     logger,
		}, Config{
			UserID:       conf.UserID,
			RefreshDelay: conf.RefreshDelay(),
		})
		go func() {
			<-c.Done()
			v.Close()
		}()

		return v, nil
	})
}
