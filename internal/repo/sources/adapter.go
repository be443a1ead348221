package sources

import (
	"context"
	"strings"

	"github.com/nguyentranbao-ct/smart-cart/internal/models"
)

// Adapter searches one commerce source. Implementations stamp every product with
// their own source name and report failures as one of models.ErrAdapterTimeout,
// models.ErrAdapterBlocked or models.ErrAdapterParse.
type Adapter interface {
	Name() string
	Search(ctx context.Context, term string, limit int, constraints models.Constraints) ([]models.Product, error)
}

type Variant string

const (
	VariantLive      Variant = "live"
	VariantSynthetic Variant = "synthetic"
)

type SourceInfo struct {
	Name    string            `json:"name"`
	Type    models.SourceType `json:"type"`
	BaseURL string            `json:"base_url"`
	ETA     string            `json:"eta"`
}

var knownSources = map[string]SourceInfo{
	"amazon":   {Type: models.SourceTypeEcommerce, BaseURL: "https://www.amazon.in", ETA: "2-3 days"},
	"flipkart": {Type: models.SourceTypeEcommerce, BaseURL: "https://www.flipkart.com", ETA: "2-5 days"},
	"meesho":   {Type: models.SourceTypeEcommerce, BaseURL: "https://www.meesho.com", ETA: "2-5 days"},
	"nykaa":    {Type: models.SourceTypeEcommerce, BaseURL: "https://www.nykaa.com", ETA: "2-3 days"},
	"blinkit":  {Type: models.SourceTypeQuickCommerce, BaseURL: "https://blinkit.com", ETA: "10-30 mins"},
	"zepto":    {Type: models.SourceTypeQuickCommerce, BaseURL: "https://www.zeptonow.com", ETA: "10-30 mins"},
}

// Catalog holds static metadata for the configured sources.
type Catalog struct {
	quick map[string]struct{}
}

func NewCatalog(quickCommerce []string) *Catalog {
	c := &Catalog{quick: make(map[string]struct{}, len(quickCommerce))}
	for _, name := range quickCommerce {
		c.quick[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	return c
}

// Info never fails: unknown sources are treated as e-commerce with a generic ETA.
// A non-empty quick-commerce list overrides the built-in source types.
func (c *Catalog) Info(name string) SourceInfo {
	name = strings.ToLower(strings.TrimSpace(name))
	info, ok := knownSources[name]
	if !ok {
		info = SourceInfo{Type: models.SourceTypeEcommerce, BaseURL: "https://" + name + ".example", ETA: "3-5 days"}
	}
	info.Name = name
	if _, quick := c.quick[name]; quick {
		info.Type = models.SourceTypeQuickCommerce
		if !strings.HasSuffix(info.ETA, "mins") {
			info.ETA = "10-30 mins"
		}
	} else if len(c.quick) > 0 && info.Type == models.SourceTypeQuickCommerce {
		info.Type = models.SourceTypeEcommerce
		info.ETA = "2-3 days"
	}
	return info
}

func (c *Catalog) IsQuickCommerce(name string) bool {
	return c.Info(name).Type == models.SourceTypeQuickCommerce
}
