package notify

import (
	"context"
	"net/http"

	"github.com/habiliai/edudash/config"
	"github.com/habiliai/edudash/errors"
	"github.com/jcooky/go-din"
	"github.com/ybbus/jsonrpc/v3"
)

type (
	JsonRpcClient interface {
		Dispatch(ctx context.Context, push *Push) error
		Pending(ctx context.Context, request *PendingRequest) (*PendingResponse, error)
		MarkDispatched(ctx context.Context, request *MarkDispatchedRequest) error
	}

	jsonRpcClient struct {
		client jsonrpc.RPCClient
	}

	// RemoteDispatcher hands pushes to the server queue.
	RemoteDispatcher struct {
		client JsonRpcClient
	}
)

var _ Dispatcher = (*RemoteDispatcher)(nil)

func NewJsonRpcClient(url string) JsonRpcClient {
	return &jsonRpcClient{
		client: jsonrpc.NewClient(url),
	}
}

func NewJsonRpcClientWithHttpClient(url string, httpClient *http.Client) JsonRpcClient {
	return &jsonRpcClient{
		client: jsonrpc.NewClientWithOpts(url, &jsonrpc.RPCClientOpts{
			HTTPClient: httpClient,
		}),
	}
}

func (c *jsonRpcClient) Dispatch(ctx context.Context, push *Push) error {
	var response Empty
	return c.client.CallFor(ctx, &response, servicePrefix+".Dispatch", push)
}

func (c *jsonRpcClient) Pending(ctx context.Context, request *PendingRequest) (*PendingResponse, error) {
	var response PendingResponse
	if err := c.client.CallFor(ctx, &response, servicePrefix+".Pending", request); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *jsonRpcClient) MarkDispatched(ctx context.Context, request *MarkDispatchedRequest) error {
	var response Empty
	return c.client.CallFor(ctx, &response, servicePrefix+".MarkDispatched", request)
}

func NewRemoteDispatcher(client JsonRpcClient) *RemoteDispatcher {
	return &RemoteDispatcher{client: client}
}

func (d *RemoteDispatcher) Dispatch(ctx context.Context, push Push) error {
	return errors.Wrapf(d.client.Dispatch(ctx, &push), "failed to dispatch push")
}

func init() {
	din.RegisterT(func(c *din.Container) (JsonRpcClient, error) {
		clientConfig := din.MustGetT[*config.ClientConfig](c)

		return NewJsonRpcClient(clientConfig.RpcUrl()), nil
	})
	din.RegisterT(func(c *din.Container) (*RemoteDispatcher, error) {
		return NewRemoteDispatcher(din.MustGetT[JsonRpcClient](c)), nil
	})
}
