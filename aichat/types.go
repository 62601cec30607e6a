// Package aichat is the local assistant lane. Its history lives only in the
// client-local store and never reaches the thread backend.
package aichat

import (
	"context"
	"time"
)

// ThreadID identifies the virtual assistant thread in thread lists.
const ThreadID = "dash-ai-assistant"

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type (
	Message struct {
		ID        string      `json:"id"`
		Role      MessageRole `json:"role"`
		Content   string      `json:"content"`
		CreatedAt time.Time   `json:"created_at"`
	}

	Turn struct {
		Role    MessageRole `json:"role" validate:"oneof=user assistant"`
		Content string      `json:"content"`
	}

	// Persona is the role and context metadata sent along with every prompt.
	Persona struct {
		UserName string            `json:"user_name,omitempty"`
		Role     string            `json:"role,omitempty"`
		Children []string          `json:"children,omitempty"`
		Context  map[string]string `json:"context,omitempty"`
	}

	CompletionRequest struct {
		Prompt  string `json:"prompt" validate:"required"`
		History []Turn `json:"history" validate:"max=10,dive"`
		Persona
	}

	Completer interface {
		Complete(ctx context.Context, req *CompletionRequest) (string, error)
	}
)
