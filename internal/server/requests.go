package server

import (
	"strings"

	"github.com/nguyentranbao-ct/smart-cart/internal/models"
)

type SearchRequest struct {
	Query         string   `json:"query" query:"query" validate:"required,max=500"`
	Limit         int      `json:"limit" query:"limit" validate:"gte=0,lte=200"`
	Sources       []string `json:"sources" query:"sources" validate:"sourcenames"`
	HeaderSources []string `header:"x-sources" validate:"sourcenames"`
	MaxPrice      *float64 `json:"max_price" query:"max_price" validate:"omitempty,gt=0"`
	MinRating     *float64 `json:"min_rating" query:"min_rating" validate:"omitempty,gte=0,lte=5"`
}

// sources merges body/query sources with the X-Sources header. Query values
// may also be comma separated.
func (r SearchRequest) sources() []string {
	var out []string
	for _, s := range append(r.Sources, r.HeaderSources...) {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (r SearchRequest) constraints() models.Constraints {
	return models.Constraints{MaxPrice: r.MaxPrice, MinRating: r.MinRating}
}

type SearchResponse struct {
	Success  bool                 `json:"success"`
	Products []models.Product     `json:"products"`
	Groups   []models.SourceGroup `json:"groups"`
	Tier     models.Tier          `json:"tier"`
	Partial  bool                 `json:"partial"`
	Sources  []string             `json:"sources"`
}

type SourceView struct {
	Name string            `json:"name"`
	Type models.SourceType `json:"type"`
	ETA  string            `json:"eta"`
	URL  string            `json:"url"`
	Live bool              `json:"live"`
}

type ParseQueryRequest struct {
	Query   string   `json:"query" validate:"required,max=500"`
	Sources []string `json:"sources" validate:"sourcenames"`
}

type KeywordsResponse struct {
	Keywords []string `json:"keywords"`
	Count    int      `json:"count"`
}

type EmptyRequest struct{}

type CartRequest struct {
	CartID string `param:"id" validate:"required"`
}

type AddItemRequest struct {
	CartID   string         `param:"id" validate:"required"`
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity" validate:"gte=0,lte=999"`
	Source   string         `json:"source"`
}

type ItemRequest struct {
	CartID string `param:"id" validate:"required"`
	Index  int    `param:"index"`
}

type UpdateItemRequest struct {
	CartID   string `param:"id" validate:"required"`
	Index    int    `param:"index"`
	Quantity int    `json:"quantity"`
}

type OptimizeRequest struct {
	CartID     string `param:"id" validate:"required"`
	Mode       string `json:"mode" validate:"optmode"`
	PreferFast bool   `json:"prefer_fast"`
}
