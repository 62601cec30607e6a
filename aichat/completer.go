package aichat

import (
	"context"

	"github.com/habiliai/edudash/config"
	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/internal/mylog"
	"github.com/jcooky/go-din"
)

var (
	// ServerCompleterKey is the completer the server runs behind its AI proxy.
	ServerCompleterKey = din.NewRandomName()
)

type unavailableCompleter struct{}

func (unavailableCompleter) Complete(context.Context, *CompletionRequest) (string, error) {
	return "", errors.Wrapf(errors.ErrInvalidConfig, "no ai provider configured")
}

// NewCompleter builds the client-side completer selected by conf.Provider.
func NewCompleter(conf *config.AIConfig, clientConfig *config.ClientConfig, assistant config.AssistantConfig) (Completer, error) {
	switch conf.Provider {
	case config.AIProviderOpenAI:
		if conf.OpenAIAPIKey == "" {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "OPENAI_API_KEY is required")
		}
		return NewOpenAICompleter(conf.OpenAIAPIKey, assistant), nil
	case config.AIProviderAnthropic:
		if conf.AnthropicAPIKey == "" {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "ANTHROPIC_API_KEY is required")
		}
		return NewAnthropicCompleter(conf.AnthropicAPIKey, assistant), nil
	case config.AIProviderProxy, "":
		return NewProxyCompleter(NewJsonRpcClient(clientConfig.RpcUrl())), nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "unknown ai provider %q", conf.Provider)
	}
}

// NewServerCompleter prefers OpenAI, then Anthropic, by configured key.
func NewServerCompleter(conf *config.AIConfig, assistant config.AssistantConfig) Completer {
	switch {
	case conf.OpenAIAPIKey != "":
		return NewOpenAICompleter(conf.OpenAIAPIKey, assistant)
	case conf.AnthropicAPIKey != "":
		return NewAnthropicCompleter(conf.AnthropicAPIKey, assistant)
	default:
		return unavailableCompleter{}
	}
}

func init() {
	din.RegisterT(func(c *din.Container) (config.AssistantConfig, error) {
		conf := din.MustGetT[*config.AIConfig](c)
		return config.LoadAssistantFromFile(conf.AssistantFile)
	})
	din.RegisterT(func(c *din.Container) (Completer, error) {
		return NewCompleter(
			din.MustGetT[*config.AIConfig](c),
			din.MustGetT[*config.ClientConfig](c),
			din.MustGetT[config.AssistantConfig](c),
		)
	})
	din.Register(ServerCompleterKey, func(c *din.Container) (any, error) {
		conf := din.MustGetT[*config.AIConfig](c)
		completer := NewServerCompleter(conf, din.MustGetT[config.AssistantConfig](c))
		if _, ok := completer.(unavailableCompleter); ok {
			logger := din.MustGet[*mylog.Logger](c, mylog.Key)
			logger.Warn("no ai provider key configured, ai proxy will answer with errors")
		}
		return completer, nil
	})
}
