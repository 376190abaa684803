// File: internal/infra/adapters/ai/gemini_source.go
package ai

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"job-insight-chat/internal/domain/ports/adapter"
)

var _ adapter.GenerationSource = (*GeminiSource)(nil)

type GeminiSource struct {
	client       *genai.Client
	defaultModel string
	maxOut       int
	temperature  float32
}

// NewGeminiSource creates a streaming Gemini source using the official SDK.
func NewGeminiSource(ctx context.Context, apiKey, baseURL, defaultModel string, maxOut int, temperature float64) (*GeminiSource, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiSource{client: c, defaultModel: defaultModel, maxOut: maxOut, temperature: float32(temperature)}, nil
}

func (g *GeminiSource) Stream(ctx context.Context, prompt adapter.Prompt) adapter.FragmentStream {
	return func(yield func(adapter.Fragment, error) bool) {
		if strings.TrimSpace(prompt.Message) == "" {
			yield(adapter.Fragment{}, errors.New("gemini: empty message"))
			return
		}
		contents := toGenAIHistory(prompt.History)
		contents = append(contents, genai.NewContentFromText(prompt.Message, genai.RoleUser))

		cfg := &genai.GenerateContentConfig{
			MaxOutputTokens: int32(g.maxOut),
			Temperature:     &g.temperature,
		}
		if prompt.System != "" {
			cfg.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
		}

		for resp, err := range g.client.Models.GenerateContentStream(ctx, modelOrDefault(prompt.Model, g.defaultModel), contents, cfg) {
			if err != nil {
				yield(adapter.Fragment{}, err)
				return
			}
			text := chunkText(resp)
			if text == "" {
				continue
			}
			if !yield(adapter.Fragment{Text: text}, nil) {
				return
			}
		}
	}
}

func chunkText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && !p.Thought {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

func toGenAIHistory(msgs []adapter.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		var role genai.Role = genai.RoleUser
		switch strings.ToLower(m.Role) {
		case "assistant", "model":
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(m.Content, role))
	}
	return out
}

func modelOrDefault(model, def string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}
	return def
}
