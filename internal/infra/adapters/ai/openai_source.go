package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"job-insight-chat/internal/domain/ports/adapter"
)

var (
	_ adapter.GenerationSource  = (*OpenAISource)(nil)
	_ adapter.ResponseGenerator = (*OpenAISource)(nil)
)

// OpenAISource talks to the Chat Completions API or any compatible gateway
// reachable through baseURL.
type OpenAISource struct {
	client      openai.Client
	model       string
	maxOut      int64
	temperature float64
}

func NewOpenAISource(apiKey, baseURL, model string, maxOut int, temperature float64) (*OpenAISource, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}
	return &OpenAISource{
		client:      openai.NewClient(opts...),
		model:       model,
		maxOut:      int64(maxOut),
		temperature: temperature,
	}, nil
}

func (o *OpenAISource) params(prompt adapter.Prompt) openai.ChatCompletionNewParams {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(prompt.History)+2)
	if prompt.System != "" {
		msgs = append(msgs, openai.SystemMessage(prompt.System))
	}
	for _, m := range prompt.History {
		switch strings.ToLower(m.Role) {
		case "model", "assistant":
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	msgs = append(msgs, openai.UserMessage(prompt.Message))

	return openai.ChatCompletionNewParams{
		Messages:            msgs,
		Model:               openai.ChatModel(modelOrDefault(prompt.Model, o.model)),
		MaxCompletionTokens: openai.Int(o.maxOut),
		Temperature:         openai.Float(o.temperature),
	}
}

func (o *OpenAISource) Stream(ctx context.Context, prompt adapter.Prompt) adapter.FragmentStream {
	return func(yield func(adapter.Fragment, error) bool) {
		stream := o.client.Chat.Completions.NewStreaming(ctx, o.params(prompt))
		defer stream.Close()
		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}
			if !yield(adapter.Fragment{Text: chunk.Choices[0].Delta.Content}, nil) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			yield(adapter.Fragment{}, err)
		}
	}
}

// Generate is the non-streaming call, used for gateways that do not support
// server-sent events.
func (o *OpenAISource) Generate(ctx context.Context, prompt adapter.Prompt) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, o.params(prompt))
	if err != nil {
		return "", err
	}
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", errors.New("no choice content")
}
