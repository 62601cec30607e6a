package thread_test

import (
	"net/http/httptest"
	"time"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/habiliai/edudash/conversation"
	"github.com/habiliai/edudash/entity"
	"github.com/habiliai/edudash/jsonrpc"
	"github.com/habiliai/edudash/thread"
	rpcclient "github.com/ybbus/jsonrpc/v3"
)

var (
	_ conversation.Backend = thread.Manager(nil)
	_ conversation.Backend = (*thread.RemoteBackend)(nil)
)

func (s *ThreadManagerTestSuite) newRemoteBackend() (*thread.RemoteBackend, func()) {
	httpServer := httptest.NewServer(jsonrpc.NewHandler(s.Container, jsonrpc.WithThread()))
	client := thread.NewJsonRpcClientWithHttpClient(httpServer.URL, httpServer.Client())
	return thread.NewRemoteBackend(client), httpServer.Close
}

func (s *ThreadManagerTestSuite) TestRemoteBackendRoundTrip() {
	s.seedThread("thread-a", nil)
	backend, closeServer := s.newRemoteBackend()
	defer closeServer()

	msg, err := backend.InsertMessage(s, &entity.Message{
		ID:        "msg-1",
		ThreadID:  "thread-a",
		SenderID:  "parent-1",
		Content:   "Hello",
		CreatedAt: time.Now(),
	})
	s.Require().NoError(err)
	s.Equal("msg-1", msg.ID)

	threads, err := backend.ListThreadsForUser(s, "teacher-1")
	s.Require().NoError(err)
	s.Require().Len(threads, 1)
	s.Len(threads[0].Participants, 2)

	summaries, err := backend.ThreadSummaries(s, "teacher-1", []string{"thread-a"})
	s.Require().NoError(err)
	s.Require().Len(summaries, 1)
	s.Equal(1, summaries[0].UnreadCount)
	s.Require().NotNil(summaries[0].LastMessage)
	s.Equal("Hello", summaries[0].LastMessage.Content)

	added, err := backend.ToggleReaction(s, "msg-1", "teacher-1", "❤️")
	s.Require().NoError(err)
	s.True(added)

	s.Require().NoError(backend.MarkMessagesDelivered(s, "thread-a", "teacher-1"))
	s.Require().NoError(backend.MarkThreadRead(s, "thread-a", "teacher-1"))

	messages, err := backend.ListMessages(s, "thread-a")
	s.Require().NoError(err)
	s.Require().Len(messages, 1)
	s.NotNil(messages[0].DeliveredAt)
	s.Equal([]string{"teacher-1"}, []string(messages[0].ReadBy))
}

func (s *ThreadManagerTestSuite) TestRemoteBackendRejectsInvalidParams() {
	backend, closeServer := s.newRemoteBackend()
	defer closeServer()

	_, err := backend.ListMessages(s, "")
	s.Require().Error(err)

	var rpcErr *rpcclient.RPCError
	s.Require().ErrorAs(err, &rpcErr)
	s.Equal(int(json2.E_BAD_PARAMS), rpcErr.Code)
}
