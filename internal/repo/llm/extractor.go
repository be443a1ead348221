package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentranbao-ct/smart-cart/internal/models"
	"github.com/nguyentranbao-ct/smart-cart/pkg/tmplx"
	"github.com/tidwall/gjson"
)

// Extraction is the structured reading of one shopping message.
type Extraction struct {
	ProductName        string
	Quantity           int
	Category           string
	Brand              string
	MaxPrice           *float64
	MinRating          *float64
	DeliveryPreference string
	Sources            []string
}

type Extractor interface {
	Extract(ctx context.Context, text string, sources []string) (*Extraction, error)
}

type noopExtractor struct{}

// NewNoopExtractor is used when no provider is configured; callers fall back
// to heuristics.
func NewNoopExtractor() Extractor {
	return noopExtractor{}
}

func (noopExtractor) Extract(context.Context, string, []string) (*Extraction, error) {
	return nil, models.ErrInterpreterUnavailable
}

type promptData struct {
	Sources []string
}

var systemPrompt = tmplx.MustParse("extract_system", `You extract shopping intent from one user message.
Always extract the product the user mentions, keeping descriptive words ("black sock", "gaming laptop").
Known sources: {{ join ", " .Sources }}.
Reply with JSON only:
{"products":[{"product_name":"string","quantity":1,"category":"string","brand":"string","max_price":0,"min_rating":0}],
 "constraints":{"delivery_preference":"fast|cheap","preferred_platforms":["string"]}}
Omit fields you cannot infer. "laptop under 50k" means max_price 50000.`)

func buildSystemPrompt(sources []string) (string, error) {
	buf, err := systemPrompt.Render(promptData{Sources: sources})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

func userPrompt(text string) string {
	return "Parse this shopping query: " + text
}

var errNoProduct = errors.New("extraction has no product name")

// parseExtraction reads a model reply, tolerating code fences and prose around
// the JSON object.
func parseExtraction(reply string) (*Extraction, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no json object in reply: %w", models.ErrInterpreterUnavailable)
	}
	raw := reply[start : end+1]
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("invalid json in reply: %w", models.ErrInterpreterUnavailable)
	}

	root := gjson.Parse(raw)
	item := root.Get("products.0")
	if !item.Exists() {
		item = root
	}

	out := &Extraction{
		ProductName:        strings.TrimSpace(first(item, root, "product_name", "name", "product_terms")),
		Quantity:           int(item.Get("quantity").Int()),
		Category:           item.Get("category").String(),
		Brand:              item.Get("brand").String(),
		DeliveryPreference: strings.ToLower(first(root, root, "constraints.delivery_preference", "delivery_preference")),
	}
	if out.ProductName == "" {
		return nil, errNoProduct
	}
	out.MaxPrice = positive(item, root, "max_price", "constraints.max_price", "constraints.total_budget")
	out.MinRating = positive(item, root, "min_rating", "constraints.min_rating")
	for _, s := range root.Get("constraints.preferred_platforms").Array() {
		if v := strings.TrimSpace(s.String()); v != "" {
			out.Sources = append(out.Sources, v)
		}
	}
	return out, nil
}

func first(item, root gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := item.Get(p).String(); v != "" {
			return v
		}
		if v := root.Get(p).String(); v != "" {
			return v
		}
	}
	return ""
}

func positive(item, root gjson.Result, paths ...string) *float64 {
	for _, p := range paths {
		for _, r := range []gjson.Result{item.Get(p), root.Get(p)} {
			if v := r.Float(); v > 0 {
				return &v
			}
		}
	}
	return nil
}
