package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nguyentranbao-ct/smart-cart/internal/models"
	log "github.com/nguyentranbao-ct/smart-cart/pkg/logger/logctx"
)

type cartUsecase struct {
	repo  CartRepository
	locks *keyedMutex
	now   func() time.Time
}

func NewCartUsecase(repo CartRepository) CartUsecase {
	return &cartUsecase{
		repo:  repo,
		locks: newKeyedMutex(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (uc *cartUsecase) Create(ctx context.Context) (*models.Cart, error) {
	now := uc.now()
	cart := &models.Cart{
		ID:        uuid.NewString(),
		Items:     []models.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	log.Infow(ctx, "Cart created", "cart_id", cart.ID)
	return cart, nil
}

func (uc *cartUsecase) Get(ctx context.Context, id string) (*models.Cart, error) {
	cart, err := uc.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cart.Recompute()
	return cart, nil
}

// AddItem merges into an existing line holding the same listing from the same
// source; otherwise it appends a new line with its own copy of the product.
func (uc *cartUsecase) AddItem(ctx context.Context, id string, product models.Product, quantity int, source string) (*models.Cart, error) {
	if quantity < 1 {
		return nil, models.ErrInvalidQuantity
	}
	if source == "" {
		source = product.SourceID
	}
	return uc.mutate(ctx, id, func(cart *models.Cart) error {
		if i := cart.FindLine(product, source); i >= 0 {
			cart.Items[i].Quantity += quantity
			return nil
		}
		cart.Items = append(cart.Items, models.CartItem{
			ID:             uuid.NewString(),
			Product:        product.Clone(),
			Quantity:       quantity,
			SelectedSource: source,
			AddedAt:        uc.now(),
		})
		return nil
	})
}

func (uc *cartUsecase) RemoveItem(ctx context.Context, id string, index int) (*models.Cart, error) {
	return uc.mutate(ctx, id, func(cart *models.Cart) error {
		if index < 0 || index >= len(cart.Items) {
			return models.ErrInvalidIndex
		}
		cart.Items = append(cart.Items[:index], cart.Items[index+1:]...)
		return nil
	})
}

func (uc *cartUsecase) UpdateQuantity(ctx context.Context, id string, index, quantity int) (*models.Cart, error) {
	return uc.mutate(ctx, id, func(cart *models.Cart) error {
		if index < 0 || index >= len(cart.Items) {
			return models.ErrInvalidIndex
		}
		if quantity < 1 {
			return models.ErrInvalidQuantity
		}
		cart.Items[index].Quantity = quantity
		return nil
	})
}

func (uc *cartUsecase) Clear(ctx context.Context, id string) (*models.Cart, error) {
	return uc.mutate(ctx, id, func(cart *models.Cart) error {
		cart.Items = []models.CartItem{}
		return nil
	})
}

func (uc *cartUsecase) Delete(ctx context.Context, id string) error {
	unlock := uc.locks.Lock(id)
	defer unlock()

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Infow(ctx, "Cart deleted", "cart_id", id)
	return nil
}

// mutate runs fn on a fresh copy of the cart under the cart's lock. When fn
// fails nothing is saved.
func (uc *cartUsecase) mutate(ctx context.Context, id string, fn func(*models.Cart) error) (*models.Cart, error) {
	unlock := uc.locks.Lock(id)
	defer unlock()

	cart, err := uc.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	cart.UpdatedAt = uc.now()
	cart.Recompute()
	if err := uc.repo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return cart, nil
}

// Optimize proposes a cheaper, faster or more consolidated version of the cart.
// The stored cart is never modified.
func (uc *cartUsecase) Optimize(ctx context.Context, id string, mode models.OptimizationMode, preferFast bool) (*models.CartOptimization, error) {
	cart, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, models.ErrEmptyCart
	}

	var items []models.CartItem
	switch mode {
	case models.OptimizeBestPrice:
		items = pickPerProduct(cart.Items, cheaperLine)
	case models.OptimizeFastest:
		items = pickPerProduct(cart.Items, fasterLine)
	case models.OptimizeMinimumSources:
		items = largestSource(cart.Items)
	case models.OptimizeBalanced, "":
		mode = models.OptimizeBalanced
		if preferFast {
			items = pickPerProduct(cart.Items, fasterLine)
		} else {
			items = pickPerProduct(cart.Items, cheaperLine)
		}
	default:
		return nil, models.ErrUnknownMode
	}

	optimized := decimal.Zero
	for _, it := range items {
		optimized = optimized.Add(it.Subtotal())
	}
	original := decimal.NewFromFloat(cart.TotalPrice)

	return &models.CartOptimization{
		Mode:           mode,
		OriginalTotal:  cart.TotalPrice,
		OptimizedTotal: optimized.Round(2).InexactFloat64(),
		Savings:        original.Sub(optimized).Round(2).InexactFloat64(),
		DeliveryETA:    bottleneckETA(items),
		SourcesUsed:    sourcesOf(items),
		Notes:          optimizationNotes(cart.Items, items, original, optimized),
		Items:          items,
	}, nil
}

// pickPerProduct groups lines by lower-cased product name and keeps one line per
// group, replacing the pick only when better says so. Group order follows first
// appearance.
func pickPerProduct(items []models.CartItem, better func(a, b models.CartItem) bool) []models.CartItem {
	index := map[string]int{}
	var out []models.CartItem
	for _, it := range items {
		key := strings.ToLower(it.Product.Name)
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, it)
			continue
		}
		if better(it, out[i]) {
			out[i] = it
		}
	}
	return out
}

// Summary totals the cart at current and list prices and groups delivery
// estimates by source. Savings never go negative.
func (uc *cartUsecase) Summary(ctx context.Context, id string) (*models.CartSummary, error) {
	cart, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	original := decimal.Zero
	current := decimal.Zero
	bySource := map[string][]string{}
	fastest := ""
	for _, it := range cart.Items {
		current = current.Add(it.Subtotal())
		original = original.Add(decimal.Max(it.OriginalSubtotal(), it.Subtotal()))
		eta := it.Product.ETAText()
		bySource[it.SelectedSource] = append(bySource[it.SelectedSource], eta)
		if eta != "" && (fastest == "" || etaMinutes(eta) < etaMinutes(fastest)) {
			fastest = eta
		}
	}
	if fastest == "" {
		fastest = "N/A"
	}

	return &models.CartSummary{
		TotalItems:         cart.TotalItems,
		TotalPrice:         cart.TotalPrice,
		TotalOriginalPrice: original.Round(2).InexactFloat64(),
		TotalSavings:       original.Sub(current).Round(2).InexactFloat64(),
		PlatformsUsed:      append([]string{}, sourcesOf(cart.Items)...),
		DeliverySummary:    models.DeliverySummary{BySource: bySource, Fastest: fastest},
		ItemCount:          len(cart.Items),
	}, nil
}

func cheaperLine(a, b models.CartItem) bool {
	return a.Subtotal().LessThan(b.Subtotal())
}

func fasterLine(a, b models.CartItem) bool {
	return etaMinutes(a.Product.ETAText()) < etaMinutes(b.Product.ETAText())
}

// largestSource keeps only the lines of the source holding the most lines.
func largestSource(items []models.CartItem) []models.CartItem {
	counts := map[string]int{}
	best := ""
	for _, it := range items {
		counts[it.SelectedSource]++
		if best == "" || counts[it.SelectedSource] > counts[best] {
			best = it.SelectedSource
		}
	}
	var out []models.CartItem
	for _, it := range items {
		if it.SelectedSource == best {
			out = append(out, it)
		}
	}
	return out
}

var etaNumber = regexp.MustCompile(`\d+`)

const unknownETA = 999

// etaMinutes reads the first number of an ETA text like "10-30 mins" or
// "2 days". Unrecognized texts sort last.
func etaMinutes(text string) int {
	lower := strings.ToLower(text)
	n, err := strconv.Atoi(etaNumber.FindString(lower))
	if err != nil {
		return unknownETA
	}
	switch {
	case strings.Contains(lower, "min"):
		return n
	case strings.Contains(lower, "hour"):
		return n * 60
	case strings.Contains(lower, "day"):
		return n * 1440
	default:
		return unknownETA
	}
}

func bottleneckETA(items []models.CartItem) string {
	if len(items) == 0 {
		return "N/A"
	}
	worst := 0
	for _, it := range items {
		worst = max(worst, etaMinutes(it.Product.ETAText()))
	}
	switch {
	case worst < 60:
		return fmt.Sprintf("%d mins", worst)
	case worst < 1440:
		return fmt.Sprintf("%d hours", worst/60)
	default:
		return fmt.Sprintf("%d days", worst/1440)
	}
}

func sourcesOf(items []models.CartItem) []string {
	var out []string
	seen := map[string]bool{}
	for _, it := range items {
		if !seen[it.SelectedSource] {
			seen[it.SelectedSource] = true
			out = append(out, it.SelectedSource)
		}
	}
	return out
}

func optimizationNotes(original, optimized []models.CartItem, originalTotal, optimizedTotal decimal.Decimal) []string {
	notes := []string{}
	if before, after := len(sourcesOf(original)), len(sourcesOf(optimized)); after < before {
		notes = append(notes, fmt.Sprintf("Reduced sources from %d to %d", before, after))
	}
	quick := 0
	for _, it := range optimized {
		if it.Product.SourceType == models.SourceTypeQuickCommerce {
			quick++
		}
	}
	if quick > 0 {
		notes = append(notes, fmt.Sprintf("Using %d items from quick commerce for faster delivery", quick))
	}
	if optimizedTotal.LessThan(originalTotal) {
		notes = append(notes, fmt.Sprintf("Saved ₹%s through optimization", originalTotal.Sub(optimizedTotal).StringFixed(2)))
	}
	return notes
}
