package llm

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	log "github.com/nguyentranbao-ct/smart-cart/pkg/logger/logctx"
)

const defaultGenkitModel = "googleai/gemini-2.5-flash"

type genkitExtractor struct {
	genkit *genkit.Genkit
	model  string
}

func NewGenkitExtractor(ctx context.Context, apiKey, model string) Extractor {
	googleAI := &googlegenai.GoogleAI{
		APIKey: apiKey,
	}
	g := genkit.Init(ctx, genkit.WithPlugins(googleAI))

	if model == "" {
		model = defaultGenkitModel
	}
	return &genkitExtractor{genkit: g, model: model}
}

func (e *genkitExtractor) Extract(ctx context.Context, text string, sources []string) (*Extraction, error) {
	prompt, err := buildSystemPrompt(sources)
	if err != nil {
		return nil, err
	}

	resp, err := genkit.Generate(ctx, e.genkit,
		ai.WithModelName(e.model),
		ai.WithMessages(
			ai.NewSystemTextMessage(prompt),
			ai.NewUserTextMessage(userPrompt(text)),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("genkit generate: %w", err)
	}

	out, err := parseExtraction(resp.Text())
	if err != nil {
		log.Debugw(ctx, "Unusable genkit reply", "reply", resp.Text(), "error", err)
		return nil, err
	}
	return out, nil
}
