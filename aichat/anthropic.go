package aichat

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/habiliai/edudash/config"
	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/internal/metrics"
)

type AnthropicCompleter struct {
	newMessage func(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
	assistant  config.AssistantConfig
}

var _ Completer = (*AnthropicCompleter)(nil)

func NewAnthropicCompleter(apiKey string, assistant config.AssistantConfig) *AnthropicCompleter {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &AnthropicCompleter{
		newMessage: client.Messages.New,
		assistant:  assistant,
	}
}

func (c *AnthropicCompleter) Complete(ctx context.Context, req *CompletionRequest) (reply string, err error) {
	defer func() {
		metrics.AICompletions.WithLabelValues(config.AIProviderAnthropic, resultLabel(err)).Inc()
	}()

	system, err := RenderSystemPrompt(c.assistant, req.Persona)
	if err != nil {
		return "", err
	}

	messages := make([]anthropic.MessageParam, 0, len(req.History)+1)
	for _, turn := range req.History {
		switch turn.Role {
		case RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)))

	res, err := c.newMessage(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.assistant.Model.Anthropic),
		MaxTokens: c.assistant.MaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: messages,
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to create message")
	}

	var buf strings.Builder
	for _, content := range res.Content {
		switch block := content.AsAny().(type) {
		case anthropic.TextBlock:
			buf.WriteString(block.Text)
		}
	}
	if buf.Len() == 0 {
		return "", errors.Wrapf(errors.ErrInternal, "empty message")
	}

	return buf.String(), nil
}
