package aichattest

import (
	"context"

	"github.com/habiliai/edudash/aichat"
	"github.com/stretchr/testify/mock"
)

type Completer struct {
	mock.Mock
}

func (c *Completer) Complete(ctx context.Context, req *aichat.CompletionRequest) (string, error) {
	args := c.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type JsonRpcClient struct {
	mock.Mock
}

func (c *JsonRpcClient) Complete(ctx context.Context, request *aichat.CompletionRequest) (*aichat.CompleteResponse, error) {
	args := c.Called(ctx, request)
	return args.Get(0).(*aichat.CompleteResponse), args.Error(1)
}

var (
	_ aichat.Completer     = (*Completer)(nil)
	_ aichat.JsonRpcClient = (*JsonRpcClient)(nil)
)
