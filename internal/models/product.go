package models

import (
	"slices"
	"strings"
)

type SourceType string

const (
	SourceTypeEcommerce     SourceType = "ecommerce"
	SourceTypeQuickCommerce SourceType = "quick_commerce"
)

type Price struct {
	Current  float64  `json:"current" bson:"current" validate:"gte=0"`
	Original *float64 `json:"original,omitempty" bson:"original,omitempty"`
	Currency string   `json:"currency,omitempty" bson:"currency,omitempty"`
}

type Rating struct {
	Score       float64 `json:"score" bson:"score" validate:"gte=0,lte=5"`
	ReviewCount int     `json:"review_count" bson:"review_count"`
}

type Delivery struct {
	ETAText      string   `json:"eta_text" bson:"eta_text"`
	Fee          *float64 `json:"fee,omitempty" bson:"fee,omitempty"`
	FreeDelivery bool     `json:"free_delivery" bson:"free_delivery"`
}

// Product is a listing returned by one source. Values handed out by adapters are
// never mutated afterwards; carts keep their own copy.
type Product struct {
	ID         string     `json:"id,omitempty" bson:"id,omitempty"`
	Name       string     `json:"name" bson:"name" validate:"required"`
	Brand      string     `json:"brand,omitempty" bson:"brand,omitempty"`
	Category   string     `json:"category,omitempty" bson:"category,omitempty"`
	SourceID   string     `json:"source_id" bson:"source_id" validate:"required"`
	SourceType SourceType `json:"source_type,omitempty" bson:"source_type,omitempty"`
	SourceURL  string     `json:"source_url,omitempty" bson:"source_url,omitempty"`
	Price      Price      `json:"price" bson:"price"`
	Rating     *Rating    `json:"rating,omitempty" bson:"rating,omitempty"`
	Delivery   *Delivery  `json:"delivery,omitempty" bson:"delivery,omitempty"`
	Images     []string   `json:"images,omitempty" bson:"images,omitempty"`
}

// Key identifies a listing within its source: the source-native id when present,
// otherwise the url, otherwise the normalized name.
func (p Product) Key() string {
	id := p.ID
	if id == "" {
		id = p.SourceURL
	}
	if id == "" {
		id = strings.ToLower(strings.TrimSpace(p.Name))
	}
	return p.SourceID + "|" + id
}

func (p Product) Clone() Product {
	out := p
	if p.Price.Original != nil {
		v := *p.Price.Original
		out.Price.Original = &v
	}
	if p.Rating != nil {
		r := *p.Rating
		out.Rating = &r
	}
	if p.Delivery != nil {
		d := *p.Delivery
		if d.Fee != nil {
			fee := *d.Fee
			d.Fee = &fee
		}
		out.Delivery = &d
	}
	out.Images = slices.Clone(p.Images)
	return out
}

func (p Product) ETAText() string {
	if p.Delivery == nil {
		return ""
	}
	return p.Delivery.ETAText
}
