package conversation_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/habiliai/edudash/conversation"
	"github.com/habiliai/edudash/internal/mylog"
	"github.com/habiliai/edudash/jsonrpc"
	"github.com/habiliai/edudash/realtime"
	"github.com/habiliai/edudash/thread"
)

// trackingSubscriber remembers every subscription it hands out, so a test
// can cut one off the way a transport failure would.
type trackingSubscriber struct {
	realtime.Subscriber

	mu   sync.Mutex
	subs []*realtime.Subscription
}

func (t *trackingSubscriber) Subscribe(ctx context.Context, threadID string) (*realtime.Subscription, error) {
	sub, err := t.Subscriber.Subscribe(ctx, threadID)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs = append(t.subs, sub)
	return sub, nil
}

func (t *trackingSubscriber) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

func (t *trackingSubscriber) last() *realtime.Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.subs[len(t.subs)-1]
}

func (s *ViewTestSuite) replaceView(view *conversation.View) {
	s.view.Close()
	s.view = view
}

func (s *ViewTestSuite) TestLargeUnreadBacklogKeepsLiveFeed() {
	s.seedThread("thread-a", "teacher-1", nil)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 150; i++ {
		s.insert("thread-a", "teacher-1", fmt.Sprintf("note %d", i), base.Add(time.Duration(i)*time.Second))
	}

	s.start()
	s.selectThread("thread-a")
	s.Len(s.view.Messages(), 150)

	s.Eventually(func() bool {
		messages := s.view.Messages()
		return messages[len(messages)-1].IsReadBy("parent-1")
	}, waitFor, tick)
	s.Equal(1, s.hub.NumSubscribers("thread-a"))

	s.insert("thread-a", "teacher-1", "live", time.Now())
	s.Eventually(func() bool {
		return slices.Contains(s.contents(), "live")
	}, waitFor, tick)
}

func (s *ViewTestSuite) TestLostSubscriptionIsReplaced() {
	s.seedThread("thread-a", "teacher-1", nil)
	s.insert("thread-a", "teacher-1", "before", time.Now().Add(-time.Minute))

	tracker := &trackingSubscriber{Subscriber: s.hub}
	s.replaceView(s.newViewWith(s.backend, tracker))
	s.start()
	s.selectThread("thread-a")

	s.backend.failInsert.Store(true)
	s.view.SetComposeText(s, "unsent")
	s.Require().ErrorIs(s.view.Send(s), errUnavailable)
	s.backend.failInsert.Store(false)

	s.Require().Equal(1, tracker.count())
	dropped := tracker.last()
	dropped.Close()
	s.insert("thread-a", "teacher-1", "missed", time.Now())

	s.Eventually(func() bool {
		return tracker.count() == 2 && s.hub.NumSubscribers("thread-a") == 1
	}, waitFor, tick)
	s.Eventually(func() bool {
		return slices.Contains(s.contents(), "missed")
	}, waitFor, tick)

	var failed []conversation.MessageView
	for _, m := range s.view.Messages() {
		if m.Status == conversation.StatusFailed {
			failed = append(failed, m)
		}
	}
	s.Require().Len(failed, 1)
	s.Equal("unsent", failed[0].Content)

	s.insert("thread-a", "teacher-1", "live", time.Now())
	s.Eventually(func() bool {
		return slices.Contains(s.contents(), "live")
	}, waitFor, tick)
}

func (s *ViewTestSuite) TestSubscriptionClosedByViewIsNotReplaced() {
	s.seedThread("thread-a", "teacher-1", nil)
	s.seedThread("thread-b", "teacher-2", nil)

	tracker := &trackingSubscriber{Subscriber: s.hub}
	s.replaceView(s.newViewWith(s.backend, tracker))
	s.start()
	s.selectThread("thread-a")
	s.selectThread("thread-b")

	s.Never(func() bool {
		return tracker.count() > 2
	}, 100*time.Millisecond, tick)
	s.Equal(0, s.hub.NumSubscribers("thread-a"))
	s.Equal(1, s.hub.NumSubscribers("thread-b"))
}

func (s *ViewTestSuite) TestViewOverRemoteTransports() {
	s.seedThread("thread-a", "teacher-1", nil)
	s.insert("thread-a", "teacher-1", "Hello", time.Now().Add(-time.Minute))

	router := mux.NewRouter()
	router.Handle("/rpc", jsonrpc.NewHandler(s.Container, jsonrpc.WithThread()))
	router.Handle("/realtime", realtime.NewHandler(s.hub, mylog.Discard()))
	server := httptest.NewServer(router)
	defer server.Close()

	backend := thread.NewRemoteBackend(thread.NewJsonRpcClientWithHttpClient(server.URL+"/rpc", server.Client()))
	subscriber := realtime.NewClient("ws"+strings.TrimPrefix(server.URL, "http")+"/realtime", mylog.Discard())
	s.replaceView(s.newViewWith(backend, subscriber))

	s.start()
	t, ok := s.remote("thread-a")
	s.Require().True(ok)
	s.Equal("Tess Teacher", t.Title())

	s.selectThread("thread-a")
	s.Equal([]string{"Hello"}, s.contents())
	s.Equal("Tess Teacher", s.view.Messages()[0].SenderName)
	s.Eventually(func() bool {
		return s.hub.NumSubscribers("thread-a") == 1
	}, waitFor, tick)

	s.view.SetComposeText(s, "Is the bus at 8?")
	s.Require().NoError(s.view.Send(s))

	s.insert("thread-a", "teacher-1", "Yes", time.Now())
	s.Eventually(func() bool {
		messages := s.view.Messages()
		last := messages[len(messages)-1]
		return last.Content == "Yes" && last.IsReadBy("parent-1")
	}, waitFor, tick)

	contents := s.contents()
	s.Equal([]string{"Hello", "Is the bus at 8?", "Yes"}, contents)
	for _, m := range s.view.Messages() {
		s.Equal(conversation.StatusSent, m.Status)
	}

	s.view.Close()
	s.Eventually(func() bool {
		return s.hub.NumSubscribers("thread-a") == 0
	}, waitFor, tick)
}
