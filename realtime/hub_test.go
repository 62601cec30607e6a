package realtime_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/habiliai/edudash/entity"
	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/internal/mytesting"
	"github.com/habiliai/edudash/realtime"
	"github.com/jcooky/go-din"
	"github.com/stretchr/testify/suite"
	"gorm.io/datatypes"
)

type HubTestSuite struct {
	mytesting.Suite

	hub *realtime.Hub
}

func (s *HubTestSuite) SetupTest() {
	s.Suite.SetupTest()

	s.hub = din.MustGetT[*realtime.Hub](s.Container)
}

func (s *HubTestSuite) receive(sub *realtime.Subscription) realtime.Event {
	select {
	case ev, ok := <-sub.Events():
		s.Require().True(ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		s.FailNow("timed out waiting for event")
	}
	return realtime.Event{}
}

func (s *HubTestSuite) TestPublishFansOutToThreadSubscribers() {
	a1, err := s.hub.Subscribe(s, "thread-a")
	s.Require().NoError(err)
	defer a1.Close()
	a2, err := s.hub.Subscribe(s, "thread-a")
	s.Require().NoError(err)
	defer a2.Close()
	b, err := s.hub.Subscribe(s, "thread-b")
	s.Require().NoError(err)
	defer b.Close()

	s.Require().NoError(s.hub.Publish(s, realtime.NewTypingEvent("thread-a", "teacher-1")))

	s.Equal("teacher-1", s.receive(a1).UserID)
	s.Equal("teacher-1", s.receive(a2).UserID)
	s.Len(b.Events(), 0)
}

func (s *HubTestSuite) TestCloseIsIdempotent() {
	sub, err := s.hub.Subscribe(s, "thread-a")
	s.Require().NoError(err)
	s.Equal(1, s.hub.NumSubscribers("thread-a"))

	sub.Close()
	sub.Close()

	s.Equal(0, s.hub.NumSubscribers("thread-a"))
	_, ok := <-sub.Events()
	s.False(ok)
	s.Require().NoError(s.hub.Publish(s, realtime.NewTypingEvent("thread-a", "teacher-1")))
}

func (s *HubTestSuite) TestContextCancelReleasesSubscription() {
	ctx, cancel := context.WithCancel(s)
	_, err := s.hub.Subscribe(ctx, "thread-a")
	s.Require().NoError(err)

	cancel()

	s.Eventually(func() bool {
		return s.hub.NumSubscribers("thread-a") == 0
	}, time.Second, 10*time.Millisecond)
}

func (s *HubTestSuite) TestSlowSubscriberIsDropped() {
	slow, err := s.hub.Subscribe(s, "thread-a")
	s.Require().NoError(err)
	defer slow.Close()

	for i := 0; i < 100; i++ {
		s.Require().NoError(s.hub.Publish(s, realtime.NewTypingEvent("thread-a", "teacher-1")))
	}

	s.Equal(0, s.hub.NumSubscribers("thread-a"))
	n := 0
	for range slow.Events() {
		n++
	}
	s.Less(n, 100)
}

func (s *HubTestSuite) TestSubscribeRequiresThread() {
	_, err := s.hub.Subscribe(s, "")
	s.Require().Error(err)
}

func (s *HubTestSuite) TestMessageEventRoundTrip() {
	now := time.Now().UTC().Truncate(time.Millisecond)
	replyTo := "msg-0"
	msg := &entity.Message{
		ID:          "msg-1",
		ThreadID:    "thread-a",
		SenderID:    "teacher-1",
		Content:     "Hello",
		ContentType: entity.ContentTypeText,
		CreatedAt:   now,
		DeliveredAt: &now,
		ReadBy:      datatypes.JSONSlice[string]{"parent-1"},
		ReplyToID:   &replyTo,
	}

	ev, err := realtime.NewMessageEvent(realtime.EventInsert, msg)
	s.Require().NoError(err)
	s.True(ev.IsMessageChange())
	s.Equal("thread-a", ev.ThreadID)

	decoded, err := ev.Message()
	s.Require().NoError(err)
	s.Equal(msg.ID, decoded.ID)
	s.Equal(msg.Content, decoded.Content)
	s.Equal(msg.ContentType, decoded.ContentType)
	s.True(msg.CreatedAt.Equal(decoded.CreatedAt))
	s.Require().NotNil(decoded.DeliveredAt)
	s.True(now.Equal(*decoded.DeliveredAt))
	s.Equal([]string{"parent-1"}, []string(decoded.ReadBy))
	s.Require().NotNil(decoded.ReplyToID)
	s.Equal("msg-0", *decoded.ReplyToID)
	s.Nil(decoded.DeletedAt)
}

func (s *HubTestSuite) TestMessagesEventCarriesBatch() {
	now := time.Now()
	msgs := make([]entity.Message, 0, 100)
	for i := 0; i < 100; i++ {
		msgs = append(msgs, entity.Message{
			ID:          fmt.Sprintf("msg-%d", i),
			ThreadID:    "thread-a",
			SenderID:    "teacher-1",
			Content:     "Hello",
			DeliveredAt: &now,
		})
	}

	sub, err := s.hub.Subscribe(s, "thread-a")
	s.Require().NoError(err)
	defer sub.Close()

	ev, err := realtime.NewMessagesEvent(realtime.EventUpdate, "thread-a", msgs)
	s.Require().NoError(err)
	s.Require().NoError(s.hub.Publish(s, ev))
	s.Equal(1, s.hub.NumSubscribers("thread-a"))

	got := s.receive(sub)
	decoded, err := got.Messages()
	s.Require().NoError(err)
	s.Require().Len(decoded, 100)
	s.Equal("msg-99", decoded[99].ID)
	s.NotNil(decoded[0].DeliveredAt)

	first, err := got.Message()
	s.Require().NoError(err)
	s.Equal("msg-0", first.ID)

	_, err = realtime.NewMessagesEvent(realtime.EventUpdate, "thread-b", msgs)
	s.Require().ErrorIs(err, errors.ErrInvalidParams)

	empty, err := realtime.NewMessagesEvent(realtime.EventUpdate, "thread-a", nil)
	s.Require().NoError(err)
	_, err = empty.Messages()
	s.Require().Error(err)
}

func (s *HubTestSuite) TestTypingEventCarriesNoMessage() {
	_, err := realtime.NewTypingEvent("thread-a", "teacher-1").Message()
	s.Require().Error(err)
}

func (s *HubTestSuite) TestEventSchema() {
	schema := realtime.EventSchema()
	s.Require().NotNil(schema)
}

func TestHub(t *testing.T) {
	suite.Run(t, new(HubTestSuite))
}
