package notify

import (
	"net/http"

	"github.com/gorilla/rpc/v2"
	"github.com/habiliai/edudash/entity"
	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/internal/validation"
	"github.com/jcooky/go-din"
)

type (
	JsonRpcService struct {
		queue Queue
	}

	Empty struct{}

	PendingRequest struct {
		Limit int `json:"limit" validate:"gte=0,lte=1000"`
	}

	PendingResponse struct {
		Notifications []entity.Notification `json:"notifications"`
	}

	MarkDispatchedRequest struct {
		IDs []string `json:"ids" validate:"required,dive,required"`
	}
)

func (s *JsonRpcService) Dispatch(r *http.Request, args *Push, _ *Empty) error {
	if err := validation.Struct(args); err != nil {
		return err
	}

	return s.queue.Dispatch(r.Context(), *args)
}

func (s *JsonRpcService) Pending(r *http.Request, args *PendingRequest, reply *PendingResponse) error {
	if err := validation.Struct(args); err != nil {
		return err
	}

	notifications, err := s.queue.Pending(r.Context(), args.Limit)
	if err != nil {
		return err
	}

	reply.Notifications = notifications
	return nil
}

func (s *JsonRpcService) MarkDispatched(r *http.Request, args *MarkDispatchedRequest, _ *Empty) error {
	if err := validation.Struct(args); err != nil {
		return err
	}

	return s.queue.MarkDispatched(r.Context(), args.IDs)
}

var (
	servicePrefix = "EdudashNotifyV1"
)

func RegisterJsonRpcService(c *din.Container, server *rpc.Server) error {
	svc := &JsonRpcService{
		queue: din.MustGetT[Queue](c),
	}
	return errors.Wrapf(server.RegisterService(svc, servicePrefix), "failed to register jsonrpc service")
}
