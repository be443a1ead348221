package models

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

type DeliveryPreference string

const (
	DeliveryFast  DeliveryPreference = "fast"
	DeliveryCheap DeliveryPreference = "cheap"
)

type Constraints struct {
	MaxPrice           *float64           `json:"max_price,omitempty"`
	MinRating          *float64           `json:"min_rating,omitempty"`
	DeliveryPreference DeliveryPreference `json:"delivery_preference,omitempty"`
}

// Allows reports whether p satisfies the price ceiling and rating floor.
// Products without a rating never satisfy a rating floor.
func (c Constraints) Allows(p Product) bool {
	if c.MaxPrice != nil && p.Price.Current > *c.MaxPrice {
		return false
	}
	if c.MinRating != nil && (p.Rating == nil || p.Rating.Score < *c.MinRating) {
		return false
	}
	return true
}

type Intent struct {
	ProductTerms  string      `json:"product_terms"`
	Quantity      int         `json:"quantity"`
	Category      string      `json:"category,omitempty"`
	Brand         string      `json:"brand,omitempty"`
	Constraints   Constraints `json:"constraints"`
	TargetSources []string    `json:"target_sources"`
	Interpreted   bool        `json:"interpreted"`
}

// Fingerprint is a stable key for (terms, constraints, sources). Two turns that
// would run the same aggregation share a fingerprint.
func (i Intent) Fingerprint() string {
	var b strings.Builder
	b.WriteString(strings.Join(strings.Fields(strings.ToLower(i.ProductTerms)), " "))
	b.WriteByte('|')
	if i.Constraints.MaxPrice != nil {
		b.WriteString(strconv.FormatFloat(*i.Constraints.MaxPrice, 'f', 2, 64))
	}
	b.WriteByte('|')
	if i.Constraints.MinRating != nil {
		b.WriteString(strconv.FormatFloat(*i.Constraints.MinRating, 'f', 2, 64))
	}
	b.WriteByte('|')
	b.WriteString(strings.Join(i.TargetSources, ","))
	return strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}
