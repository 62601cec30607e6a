package thread

import (
	"net/http"
	"time"

	"github.com/gorilla/rpc/v2"
	"github.com/habiliai/edudash/entity"
	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/internal/validation"
	"github.com/jcooky/go-din"
)

type (
	JsonRpcService struct {
		manager Manager
	}

	Empty struct{}

	ListThreadsRequest struct {
		UserID string `json:"user_id" validate:"required"`
	}

	ListThreadsResponse struct {
		Threads []entity.Thread `json:"threads"`
	}

	GetThreadSummariesRequest struct {
		UserID    string   `json:"user_id" validate:"required"`
		ThreadIDs []string `json:"thread_ids" validate:"dive,required"`
	}

	GetThreadSummariesResponse struct {
		Summaries []entity.ThreadSummary `json:"summaries"`
	}

	ListMessagesRequest struct {
		ThreadID string `json:"thread_id" validate:"required"`
	}

	MessagesResponse struct {
		Messages []entity.Message `json:"messages"`
	}

	GetMessagesByIdsRequest struct {
		MessageIDs []string `json:"message_ids" validate:"dive,required"`
	}

	ListReactionsRequest struct {
		MessageIDs []string `json:"message_ids" validate:"dive,required"`
	}

	ListReactionsResponse struct {
		Reactions []entity.MessageReaction `json:"reactions"`
	}

	GetProfilesRequest struct {
		UserIDs []string `json:"user_ids" validate:"dive,required"`
	}

	GetProfilesResponse struct {
		Profiles []entity.Profile `json:"profiles"`
	}

	InsertMessageRequest struct {
		ID              string             `json:"id" validate:"omitempty,max=64"`
		ThreadID        string             `json:"thread_id" validate:"required"`
		SenderID        string             `json:"sender_id" validate:"required"`
		Content         string             `json:"content" validate:"required"`
		ContentType     entity.ContentType `json:"content_type" validate:"omitempty,oneof=text image voice file"`
		CreatedAt       time.Time          `json:"created_at"`
		ReplyToID       *string            `json:"reply_to_id,omitempty"`
		ForwardedFromID *string            `json:"forwarded_from_id,omitempty"`
	}

	MessageResponse struct {
		Message entity.Message `json:"message"`
	}

	EditMessageRequest struct {
		MessageID string `json:"message_id" validate:"required"`
		UserID    string `json:"user_id" validate:"required"`
		Content   string `json:"content" validate:"required"`
	}

	DeleteMessageRequest struct {
		MessageID string `json:"message_id" validate:"required"`
		UserID    string `json:"user_id" validate:"required"`
	}

	ToggleReactionRequest struct {
		MessageID string `json:"message_id" validate:"required"`
		UserID    string `json:"user_id" validate:"required"`
		Emoji     string `json:"emoji" validate:"required"`
	}

	ToggleReactionResponse struct {
		Added bool `json:"added"`
	}

	TouchThreadRequest struct {
		ThreadID string    `json:"thread_id" validate:"required"`
		At       time.Time `json:"at"`
	}

	ThreadUserRequest struct {
		ThreadID string `json:"thread_id" validate:"required"`
		UserID   string `json:"user_id" validate:"required"`
	}

	CreateThreadRequest struct {
		Thread entity.Thread `json:"thread"`
	}

	CreateThreadResponse struct {
		Thread entity.Thread `json:"thread"`
	}

	SaveProfileRequest struct {
		Profile entity.Profile `json:"profile"`
	}

	SaveStudentRequest struct {
		Student entity.Student `json:"student"`
	}
)

func (s *JsonRpcService) ListThreads(r *http.Request, args *ListThreadsRequest, reply *ListThreadsResponse) error {
	if err := validation.Struct(args); err != nil {
		return err
	}

	threads, err := s.manager.ListThreadsForUser(r.Context(), args.UserID)
	if err != nil {
		return err
	}

	reply.Threads = threads
	return nil
}

func (s *JsonRpcService) GetThreadSummaries(r *http.Request, args *GetThreadSummariesRequest, reply *GetThreadSummariesResponse) error {
	if err := validation.Struct(args); err != nil {
		return err
	}

	summaries, err := s.manager.ThreadSummaries(r.Context(), args.UserID, args.ThreadIDs)
	if err != nil {
		return err
	}

	reply.Summaries = summaries
	return nil
}

func (s *JsonRpcService) ListMessages(r *http.Request, args *ListMessagesRequest, reply *MessagesResponse) error {
	if err := validation.Struct(args); err != nil {
		return err
	}

	messages, err := s.manager.ListMessages(r.Context(), args.ThreadID)
	if err != nil {
		return err
	}

	reply.Messages = messages
	return nil
}

func (s *JsonRpcService) GetMessagesByIds(r *http.Request, args *GetMessagesByIdsRequest, reply *MessagesResponse) error {
	if err := validation.Struct(args); err != nil {
		return err
	}

	messages, err := s.manager.GetMessagesByIDs(r.Context(), args.MessageIDs)
	if err != nil {
		return err
	}

	reply.Messages = messages
	return nil
}

func (s *JsonRpcService) ListReactions(r *http.Request, args *ListReactionsRequest, reply *ListReactionsResponse) error {
	if err := validation.Struct(args); err != nil {
		return err
	}

	reactions, err := s.manager.ListReactions(r.Context(), args.MessageIDs)
	if err != nil {
		return err
	}

	reply.Reactions = reactions
	return nil
}

func (s *JsonRpcService) GetProfiles(r *http.Request, args *GetProfilesRequest, reply *GetProfilesResponse) error {
	if err := validation.Struct(args); err != nil {
		return err
	}

	profiles, err := s.manager.GetProfiles(r.Context(), args.UserIDs)
	if err != nil {
		return err
	}

	reply.Profiles = profiles
	return nil
}

func (s *JsonRpcService) InsertMessage(r *http.Request, args *InsertMessageRequest, reply *MessageResponse) error {
	if err := validation.Struct(args); err != nil {
		return err
	}

	msg, err := s.manager.InsertMessage(r.Context(), &entity.Message{
		ID:              args.ID,
		ThreadID:        args.ThreadID,
		SenderID:        args.SenderID,
		Content:         args.Content,
		ContentType:     args.ContentType,
		CreatedAt:       args.CreatedAt,
		ReplyToID:       args.ReplyToID,
		ForwardedFromID: args.ForwardedFromID,
	})
	if err != nil {
		return err
	}

	reply.Message = *msg
	return nil
}

func (s *JsonRpcService) EditMessage(r *http.Request, args *EditMessageRequest, reply *MessageResponse) error {
	if err := validation.Struct(args); err != nil {
		return err
	}

	msg, err := s.manager.EditMessage(r.Context(), args.MessageID, args.UserID, args.Content)
	if err != nil {
		return err
	}

	reply.Message = *msg
	return nil
}

func (s *JsonRpcService) DeleteMessage(r *http.Request, args *DeleteMessageRequest, reply *MessageResponse) error {
	if err := validation.Struct(args); err != nil {
		return err
	}

	msg, err := s.manager.SoftDeleteMessage(r.Context(), args.MessageID, args.UserID)
	if err != nil {
		return err
	}

	reply.Message = *msg
	return nil
}

func (s *JsonRpcService) ToggleReaction(r *http.Request, args *ToggleReactionRequest, reply *ToggleReactionResponse) error {
	if err := validation.Struct(args); err != nil {
		return err
	}

	added, err := s.manager.ToggleReaction(r.Context(), args.MessageID, args.UserID, args.Emoji)
	if err != nil {
		return err
	}

	reply.Added = added
	return nil
}

func (s *JsonRpcService) TouchThread(r *http.Request, args *TouchThreadRequest, _ *Empty) error {
	if err := validation.Struct(args); err != nil {
		return err
	}

	at := args.At
	if at.IsZero() {
		at = time.Now()
	}
	return s.manager.TouchThread(r.Context(), args.ThreadID, at)
}

func (s *JsonRpcService) MarkThreadRead(r *http.Request, args *ThreadUserRequest, _ *Empty) error {
	if err := validation.Struct(args); err != nil {
		return err
	}

	return s.manager.MarkThreadRead(r.Context(), args.ThreadID, args.UserID)
}

func (s *JsonRpcService) MarkMessagesDelivered(r *http.Request, args *ThreadUserRequest, _ *Empty) error {
	if err := validation.Struct(args); err != nil {
		return err
	}

	return s.manager.MarkMessagesDelivered(r.Context(), args.ThreadID, args.UserID)
}

func (s *JsonRpcService) CreateThread(r *http.Request, args *CreateThreadRequest, reply *CreateThreadResponse) error {
	if len(args.Thread.Participants) == 0 {
		return errors.Wrapf(errors.ErrInvalidParams, "thread requires participants")
	}

	thr, err := s.manager.CreateThread(r.Context(), &args.Thread)
	if err != nil {
		return err
	}

	reply.Thread = *thr
	return nil
}

func (s *JsonRpcService) SaveProfile(r *http.Request, args *SaveProfileRequest, _ *Empty) error {
	if args.Profile.ID == "" {
		return errors.Wrapf(errors.ErrInvalidParams, "profile id is required")
	}

	return s.manager.SaveProfile(r.Context(), &args.Profile)
}

func (s *JsonRpcService) SaveStudent(r *http.Request, args *SaveStudentRequest, _ *Empty) error {
	if args.Student.ID == "" {
		return errors.Wrapf(errors.ErrInvalidParams, "student id is required")
	}

	return s.manager.SaveStudent(r.Context(), &args.Student)
}

var (
	servicePrefix = "EdudashThreadV1"
)

func RegisterJsonRpcService(c *din.Container, server *rpc.Server) error {
	svc := &JsonRpcService{
		manager: din.MustGetT[Manager](c),
	}
	return errors.Wrapf(server.RegisterService(svc, servicePrefix), "failed to register jsonrpc service")
}
