package jsonrpc_test

import (
	"net/http/httptest"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/habiliai/edudash/aichat"
	"github.com/habiliai/edudash/entity"
	"github.com/habiliai/edudash/notify"
	"github.com/habiliai/edudash/thread"
	rpcclient "github.com/ybbus/jsonrpc/v3"
)

func (s *Suite) rpcCode(err error) int {
	var rpcErr *rpcclient.RPCError
	s.Require().ErrorAs(err, &rpcErr)
	return rpcErr.Code
}

func (s *Suite) TestCreateThreadAndSend() {
	server := httptest.NewServer(s.handler)
	defer server.Close()

	client := thread.NewJsonRpcClientWithHttpClient(server.URL, server.Client())
	created, err := client.CreateThread(s, &thread.CreateThreadRequest{
		Thread: entity.Thread{
			Subject: "Field trip",
			Participants: []entity.ThreadParticipant{
				{UserID: "parent-1", Role: entity.RoleParent},
				{UserID: "teacher-1", Role: entity.RoleTeacher},
			},
		},
	})
	s.Require().NoError(err)
	s.NotEmpty(created.Thread.ID)
	s.Equal(entity.ThreadTypeGeneral, created.Thread.Type)

	sent, err := client.InsertMessage(s, &thread.InsertMessageRequest{
		ThreadID: created.Thread.ID,
		SenderID: "parent-1",
		Content:  "Is the bus at 8?",
	})
	s.Require().NoError(err)
	s.NotEmpty(sent.Message.ID)
}

func (s *Suite) TestErrorMapping() {
	server := httptest.NewServer(s.handler)
	defer server.Close()

	client := thread.NewJsonRpcClientWithHttpClient(server.URL, server.Client())

	_, err := client.ListMessages(s, &thread.ListMessagesRequest{})
	s.Equal(int(json2.E_BAD_PARAMS), s.rpcCode(err))

	_, err = client.EditMessage(s, &thread.EditMessageRequest{MessageID: "missing", UserID: "parent-1", Content: "x"})
	s.Equal(int(json2.E_SERVER), s.rpcCode(err))

	_, err = client.InsertMessage(s, &thread.InsertMessageRequest{ThreadID: "missing", SenderID: "parent-1", Content: "x"})
	s.Equal(int(json2.E_INVALID_REQ), s.rpcCode(err))
}

func (s *Suite) TestAIProxyWithoutProvider() {
	server := httptest.NewServer(s.handler)
	defer server.Close()

	client := aichat.NewJsonRpcClientWithHttpClient(server.URL, server.Client())
	_, err := client.Complete(s, &aichat.CompletionRequest{Prompt: "hi"})
	s.Equal(int(json2.E_INTERNAL), s.rpcCode(err))
}

func (s *Suite) TestNotifyQueueRoundTrip() {
	server := httptest.NewServer(s.handler)
	defer server.Close()

	client := notify.NewJsonRpcClientWithHttpClient(server.URL, server.Client())
	s.Require().NoError(notify.NewRemoteDispatcher(client).Dispatch(s, notify.Push{
		RecipientID: "teacher-1",
		ThreadID:    "thread-a",
		Title:       "Pat Parent",
		Body:        "Is the bus at 8?",
	}))

	pending, err := client.Pending(s, &notify.PendingRequest{Limit: 10})
	s.Require().NoError(err)
	s.Require().Len(pending.Notifications, 1)
	s.Equal("teacher-1", pending.Notifications[0].RecipientID)

	s.Require().NoError(client.MarkDispatched(s, &notify.MarkDispatchedRequest{IDs: []string{pending.Notifications[0].ID}}))

	pending, err = client.Pending(s, &notify.PendingRequest{Limit: 10})
	s.Require().NoError(err)
	s.Empty(pending.Notifications)
}
