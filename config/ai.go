package config

import (
	"github.com/jcooky/go-din"
)

const (
	AIProviderOpenAI    = "openai"
	AIProviderAnthropic = "anthropic"
	AIProviderProxy     = "proxy"
)

type AIConfig struct {
	// Provider selects the completer: openai, anthropic or proxy.
	Provider        string `env:"AI_PROVIDER"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	// AssistantFile optionally overrides the built-in assistant persona.
	AssistantFile string `env:"AI_ASSISTANT_FILE"`
}

func init() {
	din.RegisterT(func(c *din.Container) (*AIConfig, error) {
		conf := &AIConfig{
			Provider: AIProviderProxy,
		}
		if err := resolveConfig(conf, c.Env == din.EnvTest); err != nil {
			return nil, err
		}
		if c.Env == din.EnvTest {
			// tests never reach a real provider
			conf.OpenAIAPIKey = ""
			conf.AnthropicAPIKey = ""
		}
		return conf, nil
	})
}
