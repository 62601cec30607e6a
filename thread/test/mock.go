package threadtest

import (
	"context"

	"github.com/habiliai/edudash/thread"
	"github.com/stretchr/testify/mock"
)

type JsonRpcClient struct {
	mock.Mock
}

func (t *JsonRpcClient) ListThreads(ctx context.Context, request *thread.ListThreadsRequest) (*thread.ListThreadsResponse, error) {
	args := t.Called(ctx, request)
	return args.Get(0).(*thread.ListThreadsResponse), args.Error(1)
}

func (t *JsonRpcClient) GetThreadSummaries(ctx context.Context, request *thread.GetThreadSummariesRequest) (*thread.GetThreadSummariesResponse, error) {
	args := t.Called(ctx, request)
	return args.Get(0).(*thread.GetThreadSummariesResponse), args.Error(1)
}

func (t *JsonRpcClient) ListMessages(ctx context.Context, request *thread.ListMessagesRequest) (*thread.MessagesResponse, error) {
	args := t.Called(ctx, request)
	return args.Get(0).(*thread.MessagesResponse), args.Error(1)
}

func (t *JsonRpcClient) GetMessagesByIds(ctx context.Context, request *thread.GetMessagesByIdsRequest) (*thread.MessagesResponse, error) {
	args := t.Called(ctx, request)
	return args.Get(0).(*thread.MessagesResponse), args.Error(1)
}

func (t *JsonRpcClient) ListReactions(ctx context.Context, request *thread.ListReactionsRequest) (*thread.ListReactionsResponse, error) {
	args := t.Called(ctx, request)
	return args.Get(0).(*thread.ListReactionsResponse), args.Error(1)
}

func (t *JsonRpcClient) GetProfiles(ctx context.Context, request *thread.GetProfilesRequest) (*thread.GetProfilesResponse, error) {
	args := t.Called(ctx, request)
	return args.Get(0).(*thread.GetProfilesResponse), args.Error(1)
}

func (t *JsonRpcClient) InsertMessage(ctx context.Context, request *thread.InsertMessageRequest) (*thread.MessageResponse, error) {
	args := t.Called(ctx, request)
	return args.Get(0).(*thread.MessageResponse), args.Error(1)
}

func (t *JsonRpcClient) EditMessage(ctx context.Context, request *thread.EditMessageRequest) (*thread.MessageResponse, error) {
	args := t.Called(ctx, request)
	return args.Get(0).(*thread.MessageResponse), args.Error(1)
}

func (t *JsonRpcClient) DeleteMessage(ctx context.Context, request *thread.DeleteMessageRequest) (*thread.MessageResponse, error) {
	args := t.Called(ctx, request)
	return args.Get(0).(*thread.MessageResponse), args.Error(1)
}

func (t *JsonRpcClient) ToggleReaction(ctx context.Context, request *thread.ToggleReactionRequest) (*thread.ToggleReactionResponse, error) {
	args := t.Called(ctx, request)
	return args.Get(0).(*thread.ToggleReactionResponse), args.Error(1)
}

func (t *JsonRpcClient) TouchThread(ctx context.Context, request *thread.TouchThreadRequest) error {
	return t.Called(ctx, request).Error(0)
}

func (t *JsonRpcClient) MarkThreadRead(ctx context.Context, request *thread.ThreadUserRequest) error {
	return t.Called(ctx, request).Error(0)
}

func (t *JsonRpcClient) MarkMessagesDelivered(ctx context.Context, request *thread.ThreadUserRequest) error {
	return t.Called(ctx, request).Error(0)
}

func (t *JsonRpcClient) CreateThread(ctx context.Context, request *thread.CreateThreadRequest) (*thread.CreateThreadResponse, error) {
	args := t.Called(ctx, request)
	return args.Get(0).(*thread.CreateThreadResponse), args.Error(1)
}

func (t *JsonRpcClient) SaveProfile(ctx context.Context, request *thread.SaveProfileRequest) error {
	return t.Called(ctx, request).Error(0)
}

func (t *JsonRpcClient) SaveStudent(ctx context.Context, request *thread.SaveStudentRequest) error {
	return t.Called(ctx, request).Error(0)
}

var (
	_ thread.JsonRpcClient = (*JsonRpcClient)(nil)
)
