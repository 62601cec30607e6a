package aichat_test

import (
	"net/http/httptest"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/habiliai/edudash/aichat"
	aichattest "github.com/habiliai/edudash/aichat/test"
	"github.com/habiliai/edudash/errors"
	"github.com/stretchr/testify/mock"
)

func (s *StoreTestSuite) newProxy(server *aichattest.Completer) (*aichat.ProxyCompleter, func()) {
	rpcServer := rpc.NewServer()
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json")
	s.Require().NoError(rpcServer.RegisterService(aichat.NewJsonRpcService(server), "EdudashAIV1"))

	httpServer := httptest.NewServer(rpcServer)
	client := aichat.NewJsonRpcClientWithHttpClient(httpServer.URL, httpServer.Client())
	return aichat.NewProxyCompleter(client), httpServer.Close
}

func (s *StoreTestSuite) TestProxyCompleter() {
	server := &aichattest.Completer{}
	server.On("Complete", mock.Anything, mock.MatchedBy(func(req *aichat.CompletionRequest) bool {
		return req.Prompt == "hi" && req.UserName == "Pat" && len(req.History) == 1
	})).Return("hello Pat", nil).Once()
	defer server.AssertExpectations(s.T())

	proxy, closeServer := s.newProxy(server)
	defer closeServer()

	reply, err := proxy.Complete(s, &aichat.CompletionRequest{
		Prompt:  "hi",
		History: []aichat.Turn{{Role: aichat.RoleAssistant, Content: "greeting"}},
		Persona: aichat.Persona{UserName: "Pat"},
	})
	s.Require().NoError(err)
	s.Equal("hello Pat", reply)
}

func (s *StoreTestSuite) TestProxyFailureFallsBackInStore() {
	server := &aichattest.Completer{}
	server.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("provider down")).Once()

	proxy, closeServer := s.newProxy(server)
	defer closeServer()

	store := aichat.NewStore(s.kv, proxy, s.assistant, nil, "parent-9")
	reply, err := store.Send(s, "hi")
	s.Require().NoError(err)
	s.Equal(s.assistant.Fallback, reply.Content)
	s.Len(store.Messages(), 3)
}

func (s *StoreTestSuite) TestProxyRejectsEmptyPrompt() {
	proxy, closeServer := s.newProxy(&aichattest.Completer{})
	defer closeServer()

	_, err := proxy.Complete(s, &aichat.CompletionRequest{})
	s.Require().Error(err)
}
