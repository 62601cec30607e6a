package config

import (
	_ "embed"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/habiliai/edudash/errors"
)

var (
	//go:embed data/assistant.yaml
	defaultAssistantYaml []byte
)

type AssistantConfig struct {
	Name         string `yaml:"name"`
	Greeting     string `yaml:"greeting"`
	Fallback     string `yaml:"fallback"`
	HistoryLimit int    `yaml:"historyLimit"`
	System       string `yaml:"system"`
	MaxTokens    int64  `yaml:"maxTokens"`
	Model        struct {
		OpenAI    string `yaml:"openai"`
		Anthropic string `yaml:"anthropic"`
	} `yaml:"model"`
}

func DefaultAssistant() AssistantConfig {
	var conf AssistantConfig
	if err := yaml.Unmarshal(defaultAssistantYaml, &conf); err != nil {
		panic(err)
	}
	return conf
}

// LoadAssistantFromFile overlays the yaml file onto the built-in persona.
func LoadAssistantFromFile(file string) (conf AssistantConfig, err error) {
	conf = DefaultAssistant()
	if file == "" {
		return
	}

	var yamlBytes []byte
	if yamlBytes, err = os.ReadFile(file); err != nil {
		err = errors.Wrapf(err, "failed to read file %s", file)
		return
	}

	if err = yaml.Unmarshal(yamlBytes, &conf); err != nil {
		err = errors.Wrapf(err, "failed to unmarshal file %s", file)
		return
	}

	if conf.HistoryLimit <= 0 || conf.HistoryLimit > 10 {
		conf.HistoryLimit = 10
	}

	return
}
