package aichat

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/habiliai/edudash/config"
	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/internal/mylog"
	"github.com/habiliai/edudash/internal/sliceutils"
	"github.com/habiliai/edudash/localstore"
	"github.com/jcooky/go-din"
	"github.com/samber/lo"
)

const maxHistory = 10

func historyKey(userID string) string {
	return "ai_chat/" + userID + "/messages"
}

// Store holds the assistant conversation of one user. The history is written
// to the local store after every change; the last write wins.
type Store struct {
	kv        localstore.Store
	completer Completer
	assistant config.AssistantConfig
	logger    *slog.Logger
	userID    string

	mu        sync.Mutex
	opened    bool
	messages  []Message
	loading   bool
	persona   Persona
	listeners []func()
}

func NewStore(
	kv localstore.Store,
	completer Completer,
	assistant config.AssistantConfig,
	logger *slog.Logger,
	userID string,
) *Store {
	if logger == nil {
		logger = mylog.Discard()
	}
	return &Store{
		kv:        kv,
		completer: completer,
		assistant: assistant,
		logger:    logger,
		userID:    userID,
	}
}

// OnChange registers fn to run after every change of the history or the
// loading flag. fn must not call back into the store.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) SetPersona(persona Persona) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persona = persona
}

func (s *Store) changed() {
	s.mu.Lock()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

func (s *Store) greeting() Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   s.assistant.Greeting,
		CreatedAt: time.Now(),
	}
}

// Open loads the history, seeding it with the greeting when nothing is
// stored yet. It is a no-op once the store is open.
func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opened {
		return nil
	}

	value, ok, err := s.kv.Get(ctx, historyKey(s.userID))
	if err != nil {
		return err
	}

	var messages []Message
	if ok {
		if err := json.Unmarshal([]byte(value), &messages); err != nil {
			s.logger.Warn("discard unreadable ai history", mylog.Err(err))
			messages = nil
		}
	}
	if len(messages) == 0 {
		messages = []Message{s.greeting()}
		s.messages = messages
		if err := s.persistLocked(ctx); err != nil {
			return err
		}
	}

	s.messages = messages
	s.opened = true
	return nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	bytes, err := json.Marshal(s.messages)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal ai history")
	}
	return s.kv.Set(ctx, historyKey(s.userID), string(bytes))
}

func (s *Store) persist(ctx context.Context) {
	if err := s.persistLocked(ctx); err != nil {
		s.logger.Warn("failed to persist ai history", mylog.Err(err))
	}
}

// Send appends the user's text, asks the completer for a reply and appends
// either the reply or the fallback text. A completion failure is never
// returned; the loading flag is cleared on every path.
func (s *Store) Send(ctx context.Context, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.ErrEmptyMessage
	}
	if err := s.Open(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	limit := s.assistant.HistoryLimit
	if limit <= 0 || limit > maxHistory {
		limit = maxHistory
	}
	history := lo.Map(sliceutils.Tail(s.messages, limit), func(m Message, _ int) Turn {
		return Turn{Role: m.Role, Content: m.Content}
	})
	s.messages = append(s.messages, Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   text,
		CreatedAt: time.Now(),
	})
	s.persist(ctx)
	s.loading = true
	req := &CompletionRequest{
		Prompt:  text,
		History: history,
		Persona: s.persona,
	}
	s.mu.Unlock()
	s.changed()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		s.changed()
	}()

	content, err := s.completer.Complete(ctx, req)
	if err != nil {
		s.logger.Warn("ai completion failed", mylog.Err(err))
		content = s.assistant.Fallback
	}

	reply := Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.messages = append(s.messages, reply)
	s.persist(ctx)
	s.mu.Unlock()

	return &reply, nil
}

// Clear resets the history to the single greeting.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.messages = []Message{s.greeting()}
	s.opened = true
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.changed()
	return err
}

func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages)
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Preview returns the last message for the thread list.
func (s *Store) Preview() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

func (s *Store) AssistantName() string {
	return s.assistant.Name
}

func init() {
	din.RegisterT(func(c *din.Container) (*Store, error) {
		logger, err := din.Get[*mylog.Logger](c, mylog.Key)
		if err != nil {
			return nil, err
		}
		kv, err := din.GetT[localstore.Store](c)
		if err != nil {
			return nil, err
		}
		completer, err := din.GetT[Completer](c)
		if err != nil {
			return nil, err
		}
		clientConfig := din.MustGetT[*config.ClientConfig](c)

		return NewStore(
			kv,
			completer,
			din.MustGetT[config.AssistantConfig](c),
			logger.With("component", "aichat"),
			clientConfig.UserID,
		), nil
	})
}
