package aichat

import (
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/habiliai/edudash/config"
	"github.com/habiliai/edudash/errors"
)

type systemPromptValues struct {
	Name string
	Persona
}

func RenderSystemPrompt(assistant config.AssistantConfig, persona Persona) (string, error) {
	tmpl, err := template.New("system").Funcs(sprig.TxtFuncMap()).Parse(assistant.System)
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse system prompt")
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, systemPromptValues{
		Name:    assistant.Name,
		Persona: persona,
	}); err != nil {
		return "", errors.Wrapf(err, "failed to execute template")
	}

	return strings.TrimSpace(buf.String()), nil
}
