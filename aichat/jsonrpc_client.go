package aichat

import (
	"context"
	"net/http"

	"github.com/habiliai/edudash/config"
	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/internal/metrics"
	"github.com/jcooky/go-din"
	"github.com/ybbus/jsonrpc/v3"
)

type (
	JsonRpcClient interface {
		Complete(ctx context.Context, request *CompletionRequest) (*CompleteResponse, error)
	}

	jsonRpcClient struct {
		client jsonrpc.RPCClient
	}

	// ProxyCompleter asks the server to run the completion, so that provider
	// keys never leave the server.
	ProxyCompleter struct {
		client JsonRpcClient
	}
)

var _ Completer = (*ProxyCompleter)(nil)

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

func (c *jsonRpcClient) Complete(ctx context.Context, request *CompletionRequest) (*CompleteResponse, error) {
	var response CompleteResponse
	err := c.client.CallFor(ctx, &response, servicePrefix+".Complete", request)
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func NewProxyCompleter(client JsonRpcClient) *ProxyCompleter {
	return &ProxyCompleter{client: client}
}

func (c *ProxyCompleter) Complete(ctx context.Context, req *CompletionRequest) (reply string, err error) {
	defer func() {
		metrics.AICompletions.WithLabelValues(config.AIProviderProxy, resultLabel(err)).Inc()
	}()

	res, err := c.client.Complete(ctx, req)
	if err != nil {
		return "", errors.Wrapf(err, "failed to call ai proxy")
	}

	return res.Reply, nil
}

func init() {
	din.RegisterT(func(c *din.Container) (JsonRpcClient, error) {
		clientConfig := din.MustGetT[*config.ClientConfig](c)

		return NewJsonRpcClient(clientConfig.RpcUrl()), nil
	})
}
