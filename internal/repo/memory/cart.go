package memory

import (
	"context"
	"sync"

	"github.com/nguyentranbao-ct/smart-cart/internal/models"
)

// CartRepository keeps carts in process memory. It stores and hands out
// copies, so callers never share item slices with the store.
type CartRepository struct {
	mu    sync.RWMutex
	carts map[string]*models.Cart
}

func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[string]*models.Cart)}
}

func (r *CartRepository) Create(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[cart.ID] = cart.Clone()
	return nil
}

func (r *CartRepository) Get(_ context.Context, id string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[id]
	if !ok {
		return nil, models.ErrCartNotFound
	}
	out := cart.Clone()
	out.Recompute()
	return out, nil
}

func (r *CartRepository) Save(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[cart.ID] = cart.Clone()
	return nil
}

func (r *CartRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[id]; !ok {
		return models.ErrCartNotFound
	}
	delete(r.carts, id)
	return nil
}
