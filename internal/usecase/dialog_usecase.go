package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/nguyentranbao-ct/smart-cart/internal/config"
	"github.com/nguyentranbao-ct/smart-cart/internal/models"
	"github.com/nguyentranbao-ct/smart-cart/internal/repo/cache"
	log "github.com/nguyentranbao-ct/smart-cart/pkg/logger/logctx"
)

type dialogUsecase struct {
	interpreter   Interpreter
	aggregator    Aggregator
	carts         CartUsecase
	candidates    cache.CandidateCache
	maxCandidates int
}

func NewDialogUsecase(
	interpreter Interpreter,
	aggregator Aggregator,
	carts CartUsecase,
	candidates cache.CandidateCache,
	conf config.DialogConfig,
) DialogUsecase {
	return &dialogUsecase{
		interpreter:   interpreter,
		aggregator:    aggregator,
		carts:         carts,
		candidates:    candidates,
		maxCandidates: max(1, conf.MaxCandidates),
	}
}

// Interact runs one dialog turn. The controller keeps no session: the caller
// echoes back the previous action, fingerprint and query, and the cart id is
// the only anchor across turns. Failures become an error action.
func (uc *dialogUsecase) Interact(ctx context.Context, req models.DialogRequest) (resp models.DialogResponse) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw(ctx, "Dialog turn panicked", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			resp = errorResponse()
		}
	}()

	resp, err := uc.interact(ctx, req)
	if err != nil {
		log.Errorw(ctx, "Dialog turn failed", "error", err, "last_action", req.LastAction.String())
		return errorResponse()
	}
	resp.Success = resp.Action.Success()
	if resp.Data == nil {
		resp.Data = []models.Product{}
	}
	return resp
}

func errorResponse() models.DialogResponse {
	return models.DialogResponse{
		Success: false,
		Action:  models.ActionError,
		Message: msgError,
		Data:    []models.Product{},
	}
}

func (uc *dialogUsecase) interact(ctx context.Context, req models.DialogRequest) (models.DialogResponse, error) {
	text := strings.TrimSpace(req.UserMessage)

	if req.SelectedProduct != nil {
		product := *req.SelectedProduct
		if strings.TrimSpace(product.Name) == "" || product.SourceID == "" {
			return models.DialogResponse{Action: models.ActionInvalidSelection, Message: msgInvalidSelection.RenderString(messageData{}, "Invalid product selection.")}, nil
		}
		return uc.add(ctx, req.CartID, product, chooseQuantity(req.Quantity, uc.interpreter.Quantity(text)))
	}

	if req.LastAction == models.ActionConfirmCheapest {
		switch {
		case isAffirmative(text):
			return uc.confirmCheapest(ctx, req)
		case isNegative(text):
			return models.DialogResponse{Action: models.ActionNoResults, Message: msgDeclined}, nil
		}
	}

	selection := req.ProductSelection
	if selection == nil && req.LastAction == models.ActionSelectProduct {
		if idx, ok := parseSelection(text); ok {
			selection = &idx
		}
	}

	if selection != nil {
		return uc.selectCandidate(ctx, req, text, *selection)
	}

	intent := uc.interpreter.Parse(ctx, text, req.Sources)
	if intent.ProductTerms == "" {
		return models.DialogResponse{Action: models.ActionNoResults, Message: msgNotUnderstood}, nil
	}

	if uc.interpreter.IsReadOnly(text) {
		return uc.showResults(ctx, intent)
	}

	cands := uc.derive(ctx, intent)
	fp := intent.Fingerprint()
	resp := models.DialogResponse{Data: cands, Fingerprint: fp, Query: text}
	switch len(cands) {
	case 0:
		resp.Action = models.ActionNoResults
		resp.Message = msgNoResults.RenderString(messageData{Query: intent.ProductTerms}, "No products found.")
		return resp, nil
	case 1:
		resp.Action = models.ActionConfirmCheapest
		resp.Message = msgConfirm.RenderString(messageData{
			Name:   cands[0].Name,
			Price:  cands[0].Price.Current,
			Source: cands[0].SourceID,
		}, "Should I add it to your cart?")
	default:
		resp.Action = models.ActionSelectProduct
		resp.Message = msgSelect.RenderString(messageData{Count: len(cands)}, "Please select which product to add to your cart:")
	}
	if err := uc.candidates.Set(ctx, fp, cands); err != nil {
		log.Warnw(ctx, "Failed to remember candidates", "fingerprint", fp, "error", err)
	}
	return resp, nil
}

func (uc *dialogUsecase) showResults(ctx context.Context, intent models.Intent) (models.DialogResponse, error) {
	result := uc.aggregator.Aggregate(ctx, intent, 0)
	if result.Total() == 0 {
		return models.DialogResponse{
			Action:  models.ActionNoResults,
			Message: msgNoResults.RenderString(messageData{Query: intent.ProductTerms}, "No products found."),
			Query:   intent.ProductTerms,
			Tier:    result.Tier,
		}, nil
	}
	return models.DialogResponse{
		Action:  models.ActionShowResults,
		Message: msgResults.RenderString(messageData{Query: intent.ProductTerms}, "Here are the results:"),
		Data:    result.Products(),
		Groups:  result.Groups,
		Query:   intent.ProductTerms,
		Tier:    result.Tier,
	}, nil
}

// confirmCheapest adds the cheapest candidate of the list the previous turn
// proposed. The first candidate wins price ties.
func (uc *dialogUsecase) confirmCheapest(ctx context.Context, req models.DialogRequest) (models.DialogResponse, error) {
	cands, parsed, ok := uc.recall(ctx, req)
	if !ok {
		return models.DialogResponse{Action: models.ActionNoResults, Message: msgLostTrack}, nil
	}
	if len(cands) == 0 {
		return models.DialogResponse{
			Action:  models.ActionNoResults,
			Message: msgNoResults.RenderString(messageData{Query: req.LastQuery}, "No products found."),
		}, nil
	}
	cheapest := cands[0]
	for _, p := range cands[1:] {
		if p.Price.Current < cheapest.Price.Current {
			cheapest = p
		}
	}
	return uc.add(ctx, req.CartID, cheapest, chooseQuantity(req.Quantity, parsed))
}

func (uc *dialogUsecase) selectCandidate(ctx context.Context, req models.DialogRequest, text string, index int) (models.DialogResponse, error) {
	cands, parsed, ok := uc.recall(ctx, req)
	if !ok {
		intent := uc.interpreter.Parse(ctx, text, req.Sources)
		if intent.ProductTerms == "" {
			intent.ProductTerms = text
		}
		cands, parsed = uc.derive(ctx, intent), intent.Quantity
	}
	if index < 0 || index >= len(cands) {
		return models.DialogResponse{
			Action:  models.ActionInvalidSelection,
			Message: msgInvalidSelection.RenderString(messageData{Count: len(cands)}, "Invalid product selection."),
			Data:    cands,
		}, nil
	}
	return uc.add(ctx, req.CartID, cands[index], chooseQuantity(req.Quantity, parsed))
}

// chooseQuantity prefers the quantity the caller sent over the one its query
// stated.
func chooseQuantity(requested, parsed int) int {
	if requested > 0 {
		return requested
	}
	return max(1, parsed)
}

// recall rebuilds the candidate list a previous turn showed, with the quantity
// its query asked for: the fingerprint cache first, then a fresh derivation
// from the previous query.
func (uc *dialogUsecase) recall(ctx context.Context, req models.DialogRequest) ([]models.Product, int, bool) {
	if req.Fingerprint != "" {
		if cands, ok := uc.candidates.Get(ctx, req.Fingerprint); ok {
			return cands, uc.interpreter.Quantity(req.LastQuery), true
		}
	}
	if q := strings.TrimSpace(req.LastQuery); q != "" {
		intent := uc.interpreter.Parse(ctx, q, req.Sources)
		return uc.derive(ctx, intent), intent.Quantity, true
	}
	return nil, 0, false
}

// derive searches for the intent and keeps the best name matches. When no name
// matches, the unfiltered top results stand in.
func (uc *dialogUsecase) derive(ctx context.Context, intent models.Intent) []models.Product {
	products := uc.aggregator.Aggregate(ctx, intent, 0).Products()
	if matched := looseMatch(intent.ProductTerms, products, uc.maxCandidates); len(matched) > 0 {
		return matched
	}
	return products[:min(len(products), uc.maxCandidates)]
}

func (uc *dialogUsecase) add(ctx context.Context, cartID string, product models.Product, quantity int) (models.DialogResponse, error) {
	cart, err := uc.ensureCart(ctx, cartID)
	if err != nil {
		return models.DialogResponse{}, err
	}
	if _, err := uc.carts.AddItem(ctx, cart.ID, product, quantity, product.SourceID); err != nil {
		return models.DialogResponse{}, fmt.Errorf("add item: %w", err)
	}
	id := cart.ID
	return models.DialogResponse{
		Action:  models.ActionAddedToCart,
		Message: msgAdded.RenderString(messageData{Name: product.Name, Quantity: quantity}, "Added to your cart."),
		CartID:  &id,
		Data:    []models.Product{product},
	}, nil
}

// ensureCart returns the caller's cart, creating one when the id is empty or
// unknown.
func (uc *dialogUsecase) ensureCart(ctx context.Context, cartID string) (*models.Cart, error) {
	if cartID != "" {
		cart, err := uc.carts.Get(ctx, cartID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, models.ErrCartNotFound) {
			return nil, err
		}
		log.Infow(ctx, "Unknown cart id, creating a new cart", "cart_id", cartID)
	}
	return uc.carts.Create(ctx)
}

var wordSplit = regexp.MustCompile(`[^\p{L}\p{N}]+`)

func tokens(s string) []string {
	var out []string
	for _, t := range wordSplit.Split(strings.ToLower(s), -1) {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// looseMatch keeps the products sharing the most query tokens with their name,
// in their original order, capped at limit. Products sharing none are dropped.
func looseMatch(terms string, products []models.Product, limit int) []models.Product {
	want := tokens(terms)
	best := 0
	scores := make([]int, len(products))
	for i, p := range products {
		name := " " + strings.Join(tokens(p.Name), " ") + " "
		for _, t := range want {
			if strings.Contains(name, " "+t+" ") {
				scores[i]++
			}
		}
		best = max(best, scores[i])
	}
	if best == 0 {
		return []models.Product{}
	}

	out := make([]models.Product, 0, limit)
	for i, p := range products {
		if scores[i] == best {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

var (
	affirmatives = wordSet("yes", "y", "yeah", "yep", "yup", "sure", "ok", "okay", "confirm", "please", "go", "ahead", "add", "it", "do")
	negatives    = wordSet("no", "n", "nope", "nah", "cancel", "don't", "dont", "not", "never", "stop", "skip")
)

func wordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// isAffirmative accepts short replies made only of agreeing words that start
// with a clear yes.
func isAffirmative(text string) bool {
	words := strings.Fields(strings.ToLower(strings.Trim(text, ".!? ")))
	if len(words) == 0 || len(words) > 5 {
		return false
	}
	switch strings.Trim(words[0], ",.!") {
	case "yes", "y", "yeah", "yep", "yup", "sure", "ok", "okay", "confirm":
	default:
		return false
	}
	for _, w := range words {
		if _, ok := affirmatives[strings.Trim(w, ",.!")]; !ok {
			return false
		}
	}
	return true
}

func isNegative(text string) bool {
	words := strings.Fields(strings.ToLower(strings.Trim(text, ".!? ")))
	if len(words) == 0 {
		return false
	}
	_, ok := negatives[strings.Trim(words[0], ",.!")]
	return ok
}

var (
	selectionPattern = regexp.MustCompile(`^(?:(?:select|choose|pick|take|option|number|item|no\.?|#)\s*)*#?(\d{1,2})(?:st|nd|rd|th)?(?:\s+(?:one|option|please))*$`)
	ordinalPattern   = regexp.MustCompile(`^(?:(?:select|choose|pick|take|the|option|number|item)\s+)*(first|second|third|fourth|fifth)(?:\s+(?:one|option|item|product|please))*$`)
	ordinals         = map[string]int{"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5}
)

// parseSelection maps "2", "select 2", "#2" or "the second one" to a
// zero-based index. The whole message must be the selection phrase.
func parseSelection(text string) (int, bool) {
	lower := strings.ToLower(strings.Trim(strings.TrimSpace(text), ".!"))
	if m := selectionPattern.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n - 1, true
		}
	}
	if m := ordinalPattern.FindStringSubmatch(strings.Join(strings.Fields(lower), " ")); m != nil {
		return ordinals[m[1]] - 1, true
	}
	return 0, false
}
