package thread

import (
	"context"
	"net/http"

	"github.com/habiliai/edudash/config"
	"github.com/jcooky/go-din"
	"github.com/ybbus/jsonrpc/v3"
)

type (
	JsonRpcClient interface {
		ListThreads(ctx context.Context, request *ListThreadsRequest) (*ListThreadsResponse, error)
		GetThreadSummaries(ctx context.Context, request *GetThreadSummariesRequest) (*GetThreadSummariesResponse, error)
		ListMessages(ctx context.Context, request *ListMessagesRequest) (*MessagesResponse, error)
		GetMessagesByIds(ctx context.Context, request *GetMessagesByIdsRequest) (*MessagesResponse, error)
		ListReactions(ctx context.Context, request *ListReactionsRequest) (*ListReactionsResponse, error)
		GetProfiles(ctx context.Context, request *GetProfilesRequest) (*GetProfilesResponse, error)
		InsertMessage(ctx context.Context, request *InsertMessageRequest) (*MessageResponse, error)
		EditMessage(ctx context.Context, request *EditMessageRequest) (*MessageResponse, error)
		DeleteMessage(ctx context.Context, request *DeleteMessageRequest) (*MessageResponse, error)
		ToggleReaction(ctx context.Context, request *ToggleReactionRequest) (*ToggleReactionResponse, error)
		TouchThread(ctx context.Context, request *TouchThreadRequest) error
		MarkThreadRead(ctx context.Context, request *ThreadUserRequest) error
		MarkMessagesDelivered(ctx context.Context, request *ThreadUserRequest) error
		CreateThread(ctx context.Context, request *CreateThreadRequest) (*CreateThreadResponse, error)
		SaveProfile(ctx context.Context, request *SaveProfileRequest) error
		SaveStudent(ctx context.Context, request *SaveStudentRequest) error
	}

	jsonRpcClient struct {
		client jsonrpc.RPCClient
	}
)

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

func callFor[T any](ctx context.Context, c jsonrpc.RPCClient, method string, request any) (*T, error) {
	var response T
	if err := c.CallFor(ctx, &response, servicePrefix+"."+method, request); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *jsonRpcClient) ListThreads(ctx context.Context, request *ListThreadsRequest) (*ListThreadsResponse, error) {
	return callFor[ListThreadsResponse](ctx, c.client, "ListThreads", request)
}

func (c *jsonRpcClient) GetThreadSummaries(ctx context.Context, request *GetThreadSummariesRequest) (*GetThreadSummariesResponse, error) {
	return callFor[GetThreadSummariesResponse](ctx, c.client, "GetThreadSummaries", request)
}

func (c *jsonRpcClient) ListMessages(ctx context.Context, request *ListMessagesRequest) (*MessagesResponse, error) {
	return callFor[MessagesResponse](ctx, c.client, "ListMessages", request)
}

func (c *jsonRpcClient) GetMessagesByIds(ctx context.Context, request *GetMessagesByIdsRequest) (*MessagesResponse, error) {
	return callFor[MessagesResponse](ctx, c.client, "GetMessagesByIds", request)
}

func (c *jsonRpcClient) ListReactions(ctx context.Context, request *ListReactionsRequest) (*ListReactionsResponse, error) {
	return callFor[ListReactionsResponse](ctx, c.client, "ListReactions", request)
}

func (c *jsonRpcClient) GetProfiles(ctx context.Context, request *GetProfilesRequest) (*GetProfilesResponse, error) {
	return callFor[GetProfilesResponse](ctx, c.client, "GetProfiles", request)
}

func (c *jsonRpcClient) InsertMessage(ctx context.Context, request *InsertMessageRequest) (*MessageResponse, error) {
	return callFor[MessageResponse](ctx, c.client, "InsertMessage", request)
}

func (c *jsonRpcClient) EditMessage(ctx context.Context, request *EditMessageRequest) (*MessageResponse, error) {
	return callFor[MessageResponse](ctx, c.client, "EditMessage", request)
}

func (c *jsonRpcClient) DeleteMessage(ctx context.Context, request *DeleteMessageRequest) (*MessageResponse, error) {
	return callFor[MessageResponse](ctx, c.client, "DeleteMessage", request)
}

func (c *jsonRpcClient) ToggleReaction(ctx context.Context, request *ToggleReactionRequest) (*ToggleReactionResponse, error) {
	return callFor[ToggleReactionResponse](ctx, c.client, "ToggleReaction", request)
}

func (c *jsonRpcClient) TouchThread(ctx context.Context, request *TouchThreadRequest) error {
	_, err := callFor[Empty](ctx, c.client, "TouchThread", request)
	return err
}

func (c *jsonRpcClient) MarkThreadRead(ctx context.Context, request *ThreadUserRequest) error {
	_, err := callFor[Empty](ctx, c.client, "MarkThreadRead", request)
	return err
}

func (c *jsonRpcClient) MarkMessagesDelivered(ctx context.Context, request *ThreadUserRequest) error {
	_, err := callFor[Empty](ctx, c.client, "MarkMessagesDelivered", request)
	return err
}

func (c *jsonRpcClient) CreateThread(ctx context.Context, request *CreateThreadRequest) (*CreateThreadResponse, error) {
	return callFor[CreateThreadResponse](ctx, c.client, "CreateThread", request)
}

func (c *jsonRpcClient) SaveProfile(ctx context.Context, request *SaveProfileRequest) error {
	_, err := callFor[Empty](ctx, c.client, "SaveProfile", request)
	return err
}

func (c *jsonRpcClient) SaveStudent(ctx context.Context, request *SaveStudentRequest) error {
	_, err := callFor[Empty](ctx, c.client, "SaveStudent", request)
	return err
}

func init() {
	din.RegisterT(func(c *din.Container) (JsonRpcClient, error) {
		clientConfig := din.MustGetT[*config.ClientConfig](c)

		return NewJsonRpcClient(clientConfig.RpcUrl()), nil
	})
}
