package cache

import (
	"context"

	"github.com/nguyentranbao-ct/smart-cart/internal/models"
)

// CandidateCache remembers the candidate list shown to a user, keyed by intent
// fingerprint, so a follow-up selection resolves against the same list.
type CandidateCache interface {
	Get(ctx context.Context, fingerprint string) ([]models.Product, bool)
	Set(ctx context.Context, fingerprint string, products []models.Product) error
	Close() error
}

func cloneProducts(in []models.Product) []models.Product {
	out := make([]models.Product, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
