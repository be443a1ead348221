package usecase

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nguyentranbao-ct/smart-cart/internal/models"
	"github.com/nguyentranbao-ct/smart-cart/internal/repo/llm"
	"github.com/nguyentranbao-ct/smart-cart/pkg/util"
	log "github.com/nguyentranbao-ct/smart-cart/pkg/logger/logctx"
)

type interpreter struct {
	extractor llm.Extractor
	enabled   []string
	timeout   time.Duration
	mentions  *regexp.Regexp
}

func NewInterpreter(extractor llm.Extractor, enabled []string, timeout time.Duration) Interpreter {
	enabled = util.NormalizeNames(enabled)
	quoted := make([]string, len(enabled))
	for i, s := range enabled {
		quoted[i] = regexp.QuoteMeta(s)
	}
	return &interpreter{
		extractor: extractor,
		enabled:   enabled,
		timeout:   timeout,
		mentions:  regexp.MustCompile(`(?:\b(?:on|from|at|via|in)\s+)?\b(` + strings.Join(quoted, "|") + `)\b`),
	}
}

// Parse never fails: the extractor is tried first under a timeout, and any
// failure falls back to the heuristic reading.
func (i *interpreter) Parse(ctx context.Context, text string, sources []string) models.Intent {
	text = strings.TrimSpace(text)
	h, mentioned := i.heuristic(text)
	if text == "" {
		h.TargetSources = i.targets(sources, nil)
		return h
	}

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	ext, err := i.extractor.Extract(ctx, text, i.enabled)
	if err != nil {
		log.Debugw(ctx, "Interpreter falling back to heuristics", "error", err)
		h.TargetSources = i.targets(sources, mentioned)
		return h
	}

	intent := models.Intent{
		ProductTerms: strings.Join(strings.Fields(ext.ProductName), " "),
		Quantity:     h.Quantity,
		Category:     ext.Category,
		Brand:        ext.Brand,
		Constraints:  h.Constraints,
		Interpreted:  true,
	}
	if intent.ProductTerms == "" {
		intent.ProductTerms = h.ProductTerms
	}
	if intent.Category == "" {
		intent.Category = h.Category
	}
	if ext.Quantity > 0 {
		intent.Quantity = ext.Quantity
	}
	if ext.MaxPrice != nil {
		intent.Constraints.MaxPrice = ext.MaxPrice
	}
	if ext.MinRating != nil && *ext.MinRating <= 5 {
		intent.Constraints.MinRating = ext.MinRating
	}
	switch pref := models.DeliveryPreference(ext.DeliveryPreference); pref {
	case models.DeliveryFast, models.DeliveryCheap:
		intent.Constraints.DeliveryPreference = pref
	}
	if len(ext.Sources) > 0 {
		mentioned = append(util.NormalizeNames(ext.Sources), mentioned...)
	}
	intent.TargetSources = i.targets(sources, mentioned)
	return intent
}

func (i *interpreter) Resolve(text string, sources []string, constraints models.Constraints) models.Intent {
	return models.Intent{
		ProductTerms:  strings.Join(strings.Fields(text), " "),
		Quantity:      1,
		Constraints:   constraints,
		TargetSources: i.targets(sources, nil),
	}
}

var readOnlyVerbs = regexp.MustCompile(`(?i)\b(?:check|show|search|find|look\s+for)\b`)

func (i *interpreter) IsReadOnly(text string) bool {
	return readOnlyVerbs.MatchString(text)
}

// Keywords lists the search words of text once quantities, budgets, source
// mentions and filler words are removed.
func (i *interpreter) Keywords(text string) []string {
	h, _ := i.heuristic(strings.TrimSpace(text))
	return append([]string{}, strings.Fields(h.ProductTerms)...)
}

// Quantity reads the stated quantity from text without calling the extractor.
// It is 1 when the text names none.
func (i *interpreter) Quantity(text string) int {
	h, _ := i.heuristic(strings.TrimSpace(text))
	return h.Quantity
}

// targets resolves the sources to query: caller sources when given, else
// sources mentioned in the text, else every enabled source. Unknown names are
// dropped.
func (i *interpreter) targets(caller, mentioned []string) []string {
	if len(caller) > 0 {
		return i.onlyEnabled(caller)
	}
	if m := i.onlyEnabled(mentioned); len(m) > 0 {
		return m
	}
	return append([]string(nil), i.enabled...)
}

func (i *interpreter) onlyEnabled(names []string) []string {
	out := []string{}
	for _, n := range util.NormalizeNames(names) {
		if util.SliceIncludes(i.enabled, n) {
			out = append(out, n)
		}
	}
	return out
}

var (
	budgetPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:under|below|less\s+than|upto|up\s+to|max|maximum|within|budget(?:\s+of)?)\s*(?:rs\.?|inr|₹)?\s*(\d[\d,]*(?:\.\d+)?)\s*(k)?\b`),
		regexp.MustCompile(`₹\s*(\d[\d,]*(?:\.\d+)?)\s*(k)?\b`),
		regexp.MustCompile(`\b(\d[\d,]*(?:\.\d+)?)\s*(k)?\s*(?:rupees?|rs)\b`),
		regexp.MustCompile(`\b(\d+(?:\.\d+)?)(k)\b`),
	}
	ratingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:rating|rated)\s*(?:of|above|over|at\s+least|>=?)?\s*(\d(?:\.\d)?)\s*(?:\+|stars?)?`),
		regexp.MustCompile(`\b(?:at\s+least|min(?:imum)?)\s*(\d(?:\.\d)?)\s*(?:stars?|rating)`),
		regexp.MustCompile(`\b(\d(?:\.\d)?)\s*\+?\s*(?:stars?|star\s+rating|rating|rated)\b`),
		regexp.MustCompile(`\b(\d(?:\.\d)?)\s*\+`),
	}
	quantityPattern = regexp.MustCompile(`(?:^|\b(?:add|buy|get|need|want|order)\s+)(\d{1,3})\s*(?:x|kg|kgs|g|gm|l|ltr|litres?|liters?|packs?|packets?|pcs|pieces?|units?|bottles?|dozen)?\s+[\p{L}]`)
	wordPattern     = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}\-'.]*`)
	fastWords       = regexp.MustCompile(`\b(?:fast|quick|quickly|urgent|urgently|immediate|asap)\b`)
	cheapWords      = regexp.MustCompile(`\b(?:cheap|cheapest|economical|budget|affordable)\b`)
)

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`i need want buy get find search for and or the a an with under over less than more
		rupees rs ₹ can could please to in cart add looking look show check me my some of is it on from at via
		below upto up max maximum within budget order give would like fast quick urgent cheap cheapest
		economical affordable delivery rating rated star stars above least minimum x select`) {
		stopwords[w] = struct{}{}
	}
}

var categoryKeywords = map[string][]string{
	"grocery":     {"milk", "bread", "rice", "sugar", "salt", "oil", "flour", "eggs", "butter", "tea", "coffee", "cheese", "atta", "dal"},
	"electronics": {"laptop", "phone", "smartphone", "iphone", "headphones", "charger", "cable", "mouse", "keyboard", "monitor", "tablet"},
	"clothing":    {"kurti", "shirt", "t-shirt", "tshirt", "dress", "jeans", "pants", "trousers", "saree", "jacket", "sock", "socks", "shoes", "sneakers"},
}

// heuristic reads constraints out of the text, then keeps the remaining
// non-stopword tokens as product terms.
func (i *interpreter) heuristic(text string) (models.Intent, []string) {
	intent := models.Intent{Quantity: 1}
	rest := strings.ToLower(text)

	var price *float64
	price, rest = extractNumber(rest, budgetPatterns, func(v float64) bool { return v > 0 })
	intent.Constraints.MaxPrice = price
	var rating *float64
	rating, rest = extractNumber(rest, ratingPatterns, func(v float64) bool { return v > 0 && v <= 5 })
	intent.Constraints.MinRating = rating

	switch {
	case fastWords.MatchString(rest):
		intent.Constraints.DeliveryPreference = models.DeliveryFast
	case cheapWords.MatchString(rest):
		intent.Constraints.DeliveryPreference = models.DeliveryCheap
	}

	var mentioned []string
	if len(i.enabled) > 0 {
		for _, m := range i.mentions.FindAllStringSubmatch(rest, -1) {
			mentioned = append(mentioned, m[1])
		}
		rest = i.mentions.ReplaceAllString(rest, " ")
	}

	if m := quantityPattern.FindStringSubmatchIndex(rest); m != nil {
		if n, err := strconv.Atoi(rest[m[2]:m[3]]); err == nil && n >= 1 && n <= 99 {
			intent.Quantity = n
			_, size := utf8.DecodeLastRuneInString(rest[:m[1]])
			rest = rest[:m[2]] + " " + rest[m[1]-size:]
		}
	}

	var terms []string
	for _, w := range wordPattern.FindAllString(rest, -1) {
		w = strings.TrimRight(w, ".'")
		if _, stop := stopwords[w]; stop || w == "" {
			continue
		}
		terms = append(terms, w)
	}
	intent.ProductTerms = strings.Join(terms, " ")
	if intent.ProductTerms == "" {
		intent.ProductTerms = strings.Join(strings.Fields(text), " ")
	}
	intent.Category = categoryOf(terms)
	return intent, mentioned
}

func extractNumber(text string, patterns []*regexp.Regexp, valid func(float64) bool) (*float64, string) {
	for _, re := range patterns {
		m := re.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(text[m[2]:m[3]], ",", ""), 64)
		if err != nil {
			continue
		}
		if len(m) > 4 && m[4] >= 0 {
			v *= 1000
		}
		if !valid(v) {
			continue
		}
		return &v, text[:m[0]] + " " + text[m[1]:]
	}
	return nil, text
}

func categoryOf(terms []string) string {
	for _, t := range terms {
		for cat, words := range categoryKeywords {
			if util.SliceIncludes(words, t) {
				return cat
			}
		}
	}
	return ""
}
