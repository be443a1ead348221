package models

import "fmt"

// Tier is the fallback level that produced a search result.
type Tier uint8

const (
	TierLive Tier = iota + 1
	TierSynthetic
	TierTemplate
)

func (t Tier) String() string {
	switch t {
	case TierLive:
		return "live"
	case TierSynthetic:
		return "synthetic"
	case TierTemplate:
		return "template"
	case 0:
		return ""
	default:
		return fmt.Sprintf("tier(%d)", uint8(t))
	}
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

type SourceGroup struct {
	SourceID string    `json:"source_id"`
	Products []Product `json:"products"`
}

// SearchResult groups products by source in the order the sources were requested.
type SearchResult struct {
	Groups  []SourceGroup `json:"groups"`
	Tier    Tier          `json:"tier"`
	Partial bool          `json:"partial"`
}

func (r SearchResult) Total() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Products)
	}
	return n
}

// Products flattens the groups, keeping source order then adapter order.
func (r SearchResult) Products() []Product {
	out := make([]Product, 0, r.Total())
	for _, g := range r.Groups {
		out = append(out, g.Products...)
	}
	return out
}

func (r SearchResult) Group(sourceID string) (SourceGroup, bool) {
	for _, g := range r.Groups {
		if g.SourceID == sourceID {
			return g, true
		}
	}
	return SourceGroup{}, false
}

func (t *Tier) UnmarshalText(text []byte) error {
	for _, v := range []Tier{0, TierLive, TierSynthetic, TierTemplate} {
		if v.String() == string(text) {
			*t = v
			return nil
		}
	}
	return fmt.Errorf("unknown tier %q", text)
}
