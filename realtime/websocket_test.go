package realtime_test

import (
	"net/http/httptest"
	"strings"
	"time"

	"github.com/habiliai/edudash/entity"
	"github.com/habiliai/edudash/internal/mylog"
	"github.com/habiliai/edudash/realtime"
)

func (s *HubTestSuite) TestWebsocketRelaysEvents() {
	server := httptest.NewServer(realtime.NewHandler(s.hub, mylog.Discard()))
	defer server.Close()

	client := realtime.NewClient("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	sub, err := client.Subscribe(s, "thread-a")
	s.Require().NoError(err)
	defer sub.Close()

	s.Eventually(func() bool {
		return s.hub.NumSubscribers("thread-a") == 1
	}, time.Second, 10*time.Millisecond)

	ev, err := realtime.NewMessageEvent(realtime.EventInsert, &entity.Message{
		ID:        "msg-1",
		ThreadID:  "thread-a",
		SenderID:  "teacher-1",
		Content:   "Hello",
		CreatedAt: time.Now(),
	})
	s.Require().NoError(err)
	s.Require().NoError(s.hub.Publish(s, ev))

	got := s.receive(sub)
	s.Equal(realtime.EventInsert, got.Type)
	msg, err := got.Message()
	s.Require().NoError(err)
	s.Equal("Hello", msg.Content)
}

func (s *HubTestSuite) TestWebsocketForwardsOnlyTyping() {
	server := httptest.NewServer(realtime.NewHandler(s.hub, mylog.Discard()))
	defer server.Close()

	local, err := s.hub.Subscribe(s, "thread-a")
	s.Require().NoError(err)
	defer local.Close()

	client := realtime.NewClient("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	sub, err := client.Subscribe(s, "thread-a")
	s.Require().NoError(err)
	defer sub.Close()

	s.Eventually(func() bool {
		return s.hub.NumSubscribers("thread-a") == 2
	}, time.Second, 10*time.Millisecond)

	s.Require().NoError(sub.Send(s, realtime.Event{Type: realtime.EventInsert, Table: realtime.TableMessages}))
	s.Require().NoError(sub.Send(s, realtime.NewTypingEvent("other-thread", "parent-1")))

	got := s.receive(local)
	s.Equal(realtime.EventTyping, got.Type)
	s.Equal("thread-a", got.ThreadID)
	s.Equal("parent-1", got.UserID)
}

func (s *HubTestSuite) TestWebsocketCloseReleasesServerSubscription() {
	server := httptest.NewServer(realtime.NewHandler(s.hub, mylog.Discard()))
	defer server.Close()

	client := realtime.NewClient("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	sub, err := client.Subscribe(s, "thread-a")
	s.Require().NoError(err)

	s.Eventually(func() bool {
		return s.hub.NumSubscribers("thread-a") == 1
	}, time.Second, 10*time.Millisecond)

	sub.Close()

	s.Eventually(func() bool {
		return s.hub.NumSubscribers("thread-a") == 0
	}, time.Second, 10*time.Millisecond)
}
