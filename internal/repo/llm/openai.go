package llm

import (
	"context"
	"fmt"
	"strings"

	log "github.com/nguyentranbao-ct/smart-cart/pkg/logger/logctx"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = "gpt-4o-mini"

type openaiExtractor struct {
	client openai.Client
	model  string
}

func NewOpenAIExtractor(apiKey, baseURL, model string) Extractor {
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(apiKey)),
	}
	if trimmed := strings.TrimRight(baseURL, "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &openaiExtractor{client: openai.NewClient(opts...), model: model}
}

func (e *openaiExtractor) Extract(ctx context.Context, text string, sources []string) (*Extraction, error) {
	prompt, err := buildSystemPrompt(sources)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt),
			openai.UserMessage(userPrompt(text)),
		},
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(500),
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	reply := resp.Choices[0].Message.Content
	out, err := parseExtraction(reply)
	if err != nil {
		log.Debugw(ctx, "Unusable openai reply", "reply", reply, "error", err)
		return nil, err
	}
	return out, nil
}
