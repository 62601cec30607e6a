package aichat_test

import (
	"context"
	"testing"

	"github.com/habiliai/edudash/aichat"
	aichattest "github.com/habiliai/edudash/aichat/test"
	"github.com/habiliai/edudash/config"
	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/internal/mytesting"
	"github.com/habiliai/edudash/localstore"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	mytesting.Suite

	kv        localstore.Store
	completer *aichattest.Completer
	assistant config.AssistantConfig
	store     *aichat.Store
}

func (s *StoreTestSuite) SetupTest() {
	s.Suite.SetupTest()

	var err error
	s.kv, err = localstore.Open("")
	s.Require().NoError(err)

	s.completer = &aichattest.Completer{}
	s.assistant = config.DefaultAssistant()
	s.store = aichat.NewStore(s.kv, s.completer, s.assistant, nil, "parent-1")
}

func (s *StoreTestSuite) TearDownTest() {
	s.Require().NoError(s.kv.Close())
	s.Suite.TearDownTest()
}

func (s *StoreTestSuite) TestOpenSeedsGreetingOnce() {
	s.Require().NoError(s.store.Open(s))
	s.Require().NoError(s.store.Open(s))

	messages := s.store.Messages()
	s.Require().Len(messages, 1)
	s.Equal(aichat.RoleAssistant, messages[0].Role)
	s.Equal(s.assistant.Greeting, messages[0].Content)

	value, ok, err := s.kv.Get(s, "ai_chat/parent-1/messages")
	s.Require().NoError(err)
	s.True(ok)
	s.Contains(value, messages[0].ID)
}

func (s *StoreTestSuite) TestSendAppendsReply() {
	s.completer.On("Complete", mock.Anything, mock.MatchedBy(func(req *aichat.CompletionRequest) bool {
		return req.Prompt == "Homework ideas?" && len(req.History) == 1 && req.History[0].Role == aichat.RoleAssistant
	})).Return("Try a reading log.", nil).Once()
	defer s.completer.AssertExpectations(s.T())

	reply, err := s.store.Send(s, "  Homework ideas?  ")
	s.Require().NoError(err)
	s.Equal("Try a reading log.", reply.Content)

	messages := s.store.Messages()
	s.Require().Len(messages, 3)
	s.Equal(aichat.RoleUser, messages[1].Role)
	s.Equal("Homework ideas?", messages[1].Content)
	s.Equal(aichat.RoleAssistant, messages[2].Role)
	s.False(s.store.Loading())

	preview, ok := s.store.Preview()
	s.True(ok)
	s.Equal("Try a reading log.", preview.Content)

	// history survives a new store over the same local data
	reopened := aichat.NewStore(s.kv, s.completer, s.assistant, nil, "parent-1")
	s.Require().NoError(reopened.Open(s))
	s.Len(reopened.Messages(), 3)
}

func (s *StoreTestSuite) TestSendFailureAppendsFallback() {
	s.Require().NoError(s.store.Open(s))
	before := len(s.store.Messages())

	var loadingDuringCall bool
	s.completer.On("Complete", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			loadingDuringCall = s.store.Loading()
		}).
		Return("", errors.New("network down")).Once()

	reply, err := s.store.Send(s, "Hello?")
	s.Require().NoError(err)
	s.Equal(s.assistant.Fallback, reply.Content)

	messages := s.store.Messages()
	s.Require().Len(messages, before+2)
	s.Equal(aichat.RoleUser, messages[before].Role)
	s.Equal("Hello?", messages[before].Content)
	s.Equal(aichat.RoleAssistant, messages[before+1].Role)
	s.Equal(s.assistant.Fallback, messages[before+1].Content)
	s.True(loadingDuringCall)
	s.False(s.store.Loading())
}

func (s *StoreTestSuite) TestSendLimitsHistory() {
	s.completer.On("Complete", mock.Anything, mock.Anything).Return("ok", nil)

	for i := 0; i < 8; i++ {
		_, err := s.store.Send(s, "question")
		s.Require().NoError(err)
	}

	var got *aichat.CompletionRequest
	s.completer.ExpectedCalls = nil
	s.completer.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			got = args.Get(1).(*aichat.CompletionRequest)
		}).
		Return("ok", nil).Once()

	_, err := s.store.Send(s, "last one")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Len(got.History, 10)
	s.Equal("last one", got.Prompt)
}

func (s *StoreTestSuite) TestSendRejectsEmptyText() {
	_, err := s.store.Send(s, "   ")
	s.Require().ErrorIs(err, errors.ErrEmptyMessage)
	s.completer.AssertNotCalled(s.T(), "Complete", mock.Anything, mock.Anything)
}

func (s *StoreTestSuite) TestClearResetsToGreeting() {
	s.completer.On("Complete", mock.Anything, mock.Anything).Return("ok", nil)
	_, err := s.store.Send(s, "hi")
	s.Require().NoError(err)

	changes := 0
	s.store.OnChange(func() { changes++ })
	s.Require().NoError(s.store.Clear(s))

	messages := s.store.Messages()
	s.Require().Len(messages, 1)
	s.Equal(s.assistant.Greeting, messages[0].Content)
	s.Equal(1, changes)
}

func (s *StoreTestSuite) TestHistoryIsPerUser() {
	s.completer.On("Complete", mock.Anything, mock.Anything).Return("ok", nil)
	_, err := s.store.Send(s, "hi")
	s.Require().NoError(err)

	other := aichat.NewStore(s.kv, s.completer, s.assistant, nil, "parent-2")
	s.Require().NoError(other.Open(context.Background()))
	s.Len(other.Messages(), 1)
}

func TestStore(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
