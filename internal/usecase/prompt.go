package usecase

import (
	"fmt"
	"strings"
	"text/template"

	"job-insight-chat/internal/domain"
	"job-insight-chat/internal/domain/model"
	"job-insight-chat/internal/domain/ports/adapter"
)

var _ adapter.PromptAssembler = (*TemplatePromptAssembler)(nil)

const defaultSystemPrompt = `You are a career assistant helping a candidate understand one job posting.

Job title: {{if .Title}}{{.Title}}{{else}}(untitled){{end}}
{{- if .ProcessedDescription}}

Job description:
{{.ProcessedDescription}}
{{- end}}

Answer the candidate's questions about this job. Be concise and specific.
If the description does not cover something, say so instead of guessing.`

// TemplatePromptAssembler renders the job context into a system instruction
// and passes the history through as prior turns.
type TemplatePromptAssembler struct {
	tmpl  *template.Template
	model string
}

func NewTemplatePromptAssembler(model string) *TemplatePromptAssembler {
	return &TemplatePromptAssembler{
		tmpl:  template.Must(template.New("system").Parse(defaultSystemPrompt)),
		model: model,
	}
}

// NewTemplatePromptAssemblerFrom parses a custom system template.
func NewTemplatePromptAssemblerFrom(model, text string) (*TemplatePromptAssembler, error) {
	t, err := template.New("system").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPromptAssembly, err)
	}
	return &TemplatePromptAssembler{tmpl: t, model: model}, nil
}

func (p *TemplatePromptAssembler) Assemble(job model.JobContext, history []model.Turn, message string) (adapter.Prompt, error) {
	var sb strings.Builder
	if err := p.tmpl.Execute(&sb, job); err != nil {
		return adapter.Prompt{}, fmt.Errorf("%w: %v", domain.ErrPromptAssembly, err)
	}

	// The triggering user message is already stored when history is read,
	// so it usually shows up as the newest turn.
	if n := len(history); n > 0 && history[n-1].Role == model.RoleUser.TurnRole() && history[n-1].Content == message {
		history = history[:n-1]
	}
	msgs := make([]adapter.Message, 0, len(history))
	for _, t := range history {
		msgs = append(msgs, adapter.Message{Role: t.Role, Content: t.Content})
	}

	return adapter.Prompt{
		Model:   p.model,
		System:  sb.String(),
		History: msgs,
		Message: message,
	}, nil
}
