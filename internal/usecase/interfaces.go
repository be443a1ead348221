package usecase

import (
	"context"

	"github.com/nguyentranbao-ct/smart-cart/internal/models"
)

// CartRepository is the persistence boundary for carts. Implementations return
// copies; Get fails with models.ErrCartNotFound.
type CartRepository interface {
	Create(ctx context.Context, cart *models.Cart) error
	Get(ctx context.Context, id string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, id string) error
}

type Interpreter interface {
	Parse(ctx context.Context, text string, sources []string) models.Intent
	Resolve(text string, sources []string, constraints models.Constraints) models.Intent
	IsReadOnly(text string) bool
	Quantity(text string) int
	Keywords(text string) []string
}

type Aggregator interface {
	Aggregate(ctx context.Context, intent models.Intent, limit int) models.SearchResult
}

type CartUsecase interface {
	Create(ctx context.Context) (*models.Cart, error)
	Get(ctx context.Context, id string) (*models.Cart, error)
	AddItem(ctx context.Context, id string, product models.Product, quantity int, source string) (*models.Cart, error)
	RemoveItem(ctx context.Context, id string, index int) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, id string, index, quantity int) (*models.Cart, error)
	Clear(ctx context.Context, id string) (*models.Cart, error)
	Delete(ctx context.Context, id string) error
	Optimize(ctx context.Context, id string, mode models.OptimizationMode, preferFast bool) (*models.CartOptimization, error)
	Summary(ctx context.Context, id string) (*models.CartSummary, error)
}

type DialogUsecase interface {
	Interact(ctx context.Context, req models.DialogRequest) models.DialogResponse
}
