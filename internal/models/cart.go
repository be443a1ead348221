package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ID             string    `json:"id" bson:"id"`
	Product        Product   `json:"product" bson:"product"`
	Quantity       int       `json:"quantity" bson:"quantity"`
	SelectedSource string    `json:"selected_source" bson:"selected_source"`
	AddedAt        time.Time `json:"added_at" bson:"added_at"`
}

func (i CartItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Product.Price.Current).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OriginalSubtotal prices the line at its list price, or its current price
// when the listing shows none.
func (i CartItem) OriginalSubtotal() decimal.Decimal {
	price := i.Product.Price.Current
	if i.Product.Price.Original != nil {
		price = *i.Product.Price.Original
	}
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart totals are derived from Items. Stored totals are never trusted; call
// Recompute after loading or mutating.
type Cart struct {
	ID         string     `json:"id" bson:"_id"`
	Items      []CartItem `json:"items" bson:"items"`
	TotalItems int        `json:"total_items" bson:"-"`
	TotalPrice float64    `json:"total_price" bson:"-"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" bson:"updated_at"`
}

func (c *Cart) Recompute() {
	items := 0
	total := decimal.Zero
	for _, it := range c.Items {
		items += it.Quantity
		total = total.Add(it.Subtotal())
	}
	c.TotalItems = items
	c.TotalPrice = total.Round(2).InexactFloat64()
}

func (c *Cart) Clone() *Cart {
	out := *c
	out.Items = make([]CartItem, len(c.Items))
	for i, it := range c.Items {
		it.Product = it.Product.Clone()
		out.Items[i] = it
	}
	return &out
}

// FindLine returns the index of the line holding the same listing from the same source.
func (c *Cart) FindLine(p Product, source string) int {
	key := p.Key()
	for i, it := range c.Items {
		if it.SelectedSource == source && it.Product.Key() == key {
			return i
		}
	}
	return -1
}

type OptimizationMode string

const (
	OptimizeBestPrice      OptimizationMode = "best_price"
	OptimizeFastest        OptimizationMode = "fastest_delivery"
	OptimizeMinimumSources OptimizationMode = "minimum_sources"
	OptimizeBalanced       OptimizationMode = "balanced"
)

// CartOptimization is a proposal; it never changes the stored cart.
type CartOptimization struct {
	Mode           OptimizationMode `json:"mode"`
	OriginalTotal  float64          `json:"original_total"`
	OptimizedTotal float64          `json:"optimized_total"`
	Savings        float64          `json:"savings"`
	DeliveryETA    string           `json:"delivery_eta"`
	SourcesUsed    []string         `json:"sources_used"`
	Notes          []string         `json:"notes"`
	Items          []CartItem       `json:"items"`
}

type DeliverySummary struct {
	BySource map[string][]string `json:"platforms"`
	Fastest  string              `json:"fastest_delivery"`
}

type CartSummary struct {
	TotalItems         int             `json:"total_items"`
	TotalPrice         float64         `json:"total_price"`
	TotalOriginalPrice float64         `json:"total_original_price"`
	TotalSavings       float64         `json:"total_savings"`
	PlatformsUsed      []string        `json:"platforms_used"`
	DeliverySummary    DeliverySummary `json:"delivery_summary"`
	ItemCount          int             `json:"item_count"`
}
