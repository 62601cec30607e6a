package aichat

import (
	"context"

	"github.com/habiliai/edudash/config"
	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/internal/metrics"
	goopenai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type OpenAICompleter struct {
	newCompletion func(ctx context.Context, body goopenai.ChatCompletionNewParams, opts ...option.RequestOption) (*goopenai.ChatCompletion, error)
	assistant     config.AssistantConfig
}

var _ Completer = (*OpenAICompleter)(nil)

func NewOpenAICompleter(apiKey string, assistant config.AssistantConfig) *OpenAICompleter {
	client := goopenai.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &OpenAICompleter{
		newCompletion: client.Chat.Completions.New,
		assistant:     assistant,
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, req *CompletionRequest) (reply string, err error) {
	defer func() {
		metrics.AICompletions.WithLabelValues(config.AIProviderOpenAI, resultLabel(err)).Inc()
	}()

	system, err := RenderSystemPrompt(c.assistant, req.Persona)
	if err != nil {
		return "", err
	}

	messages := []goopenai.ChatCompletionMessageParamUnion{
		goopenai.SystemMessage(system),
	}
	for _, turn := range req.History {
		switch turn.Role {
		case RoleAssistant:
			messages = append(messages, goopenai.AssistantMessage(turn.Content))
		default:
			messages = append(messages, goopenai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, goopenai.UserMessage(req.Prompt))

	res, err := c.newCompletion(ctx, goopenai.ChatCompletionNewParams{
		Model:     goopenai.String(c.assistant.Model.OpenAI),
		Messages:  goopenai.F(messages),
		MaxTokens: goopenai.Int(c.assistant.MaxTokens),
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to create chat completion")
	}
	if len(res.Choices) == 0 || res.Choices[0].Message.Content == "" {
		return "", errors.Wrapf(errors.ErrInternal, "empty chat completion")
	}

	return res.Choices[0].Message.Content, nil
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
