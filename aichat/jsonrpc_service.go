package aichat

import (
	"net/http"

	"github.com/gorilla/rpc/v2"
	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/internal/validation"
	"github.com/jcooky/go-din"
)

type (
	JsonRpcService struct {
		completer Completer
	}

	CompleteResponse struct {
		Reply string `json:"reply"`
	}
)

func NewJsonRpcService(completer Completer) *JsonRpcService {
	return &JsonRpcService{completer: completer}
}

func (s *JsonRpcService) Complete(r *http.Request, args *CompletionRequest, reply *CompleteResponse) error {
	if err := validation.Struct(args); err != nil {
		return err
	}

	text, err := s.completer.Complete(r.Context(), args)
	if err != nil {
		return errors.Wrapf(errors.ErrInternal, "completion failed: %v", err)
	}

	reply.Reply = text
	return nil
}

var (
	servicePrefix = "EdudashAIV1"
)

func RegisterJsonRpcService(c *din.Container, server *rpc.Server) error {
	svc := NewJsonRpcService(din.MustGet[Completer](c, ServerCompleterKey))
	return errors.Wrapf(server.RegisterService(svc, servicePrefix), "failed to register jsonrpc service")
}
