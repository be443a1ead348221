package sources

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/nguyentranbao-ct/smart-cart/internal/models"
)

type category struct {
	name     string
	keywords []string
	brands   []string
	variants []string
	minPrice float64
	maxPrice float64
}

var categories = []category{
	{
		name:     "dairy",
		keywords: []string{"cheese", "milk", "butter", "paneer", "curd", "yogurt", "ghee", "dairy"},
		brands:   []string{"Amul", "Britannia", "Mother Dairy", "Gowardhan"},
		variants: []string{"200g", "500g", "1kg", "Pack of 2"},
		minPrice: 40, maxPrice: 650,
	},
	{
		name:     "smartphones",
		keywords: []string{"phone", "mobile", "smartphone", "iphone", "galaxy", "oneplus", "redmi"},
		brands:   []string{"Apple", "Samsung", "OnePlus", "Xiaomi"},
		variants: []string{"128GB", "256GB", "512GB", "8GB RAM"},
		minPrice: 9999, maxPrice: 139999,
	},
	{
		name:     "laptops",
		keywords: []string{"laptop", "computer", "macbook", "notebook", "chromebook"},
		brands:   []string{"Apple", "Dell", "HP", "Lenovo"},
		variants: []string{"14 inch", "15.6 inch", "16GB RAM", "512GB SSD"},
		minPrice: 29999, maxPrice: 189999,
	},
	{
		name:     "grocery",
		keywords: []string{"rice", "atta", "dal", "oil", "sugar", "flour", "bread", "salt", "tea", "coffee"},
		brands:   []string{"Tata", "Aashirvaad", "Fortune", "India Gate"},
		variants: []string{"1kg", "5kg", "Family Pack", "Value Pack"},
		minPrice: 45, maxPrice: 900,
	},
	{
		name:     "beauty",
		keywords: []string{"lipstick", "shampoo", "cream", "serum", "makeup", "moisturizer", "sunscreen", "face"},
		brands:   []string{"Lakme", "Maybelline", "L'Oreal", "Nivea"},
		variants: []string{"50ml", "100ml", "Combo", "Matte"},
		minPrice: 99, maxPrice: 1499,
	},
	{
		name:     "fashion",
		keywords: []string{"shirt", "tshirt", "t-shirt", "jeans", "shoes", "dress", "kurta", "sneakers"},
		brands:   []string{"Puma", "Levi's", "Roadster", "Biba"},
		variants: []string{"Regular Fit", "Slim Fit", "Size M", "Size L"},
		minPrice: 299, maxPrice: 3999,
	},
}

var generalCategory = category{
	name:     "general",
	brands:   []string{"Generic", "Popular", "Everyday"},
	variants: []string{"Premium Quality", "Best Seller", "Value Pack"},
	minPrice: 99, maxPrice: 2999,
}

func matchCategory(term string) category {
	words := strings.Fields(term)
	for _, c := range categories {
		for _, w := range words {
			for _, kw := range c.keywords {
				if w == kw {
					return c
				}
			}
		}
	}
	return generalCategory
}

// Synthetic produces plausible listings without network access. Output depends
// only on the source name and the normalized term.
type Synthetic struct {
	info SourceInfo
}

func NewSynthetic(info SourceInfo) *Synthetic {
	return &Synthetic{info: info}
}

func (s *Synthetic) Name() string {
	return s.info.Name
}

func (s *Synthetic) Search(ctx context.Context, term string, limit int, constraints models.Constraints) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", s.info.Name, models.ErrAdapterTimeout)
	}
	term = strings.Join(strings.Fields(strings.ToLower(term)), " ")
	if term == "" || limit <= 0 {
		return nil, nil
	}

	seed := xxhash.Sum64String(s.info.Name + "|" + term)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	cat := matchCategory(term)
	title := titleCase(term)

	n := 4 + rng.IntN(5)
	out := make([]models.Product, 0, min(n, limit))
	for i := 0; i < n && len(out) < limit; i++ {
		p := s.generate(rng, cat, title, term, seed, i)
		if constraints.Allows(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Synthetic) generate(rng *rand.Rand, cat category, title, term string, seed uint64, i int) models.Product {
	brand := cat.brands[rng.IntN(len(cat.brands))]
	variant := cat.variants[rng.IntN(len(cat.variants))]

	price := cat.minPrice + rng.Float64()*(cat.maxPrice-cat.minPrice)
	price = math.Floor(price/10)*10 + 9
	original := math.Round(price*(1.1+rng.Float64()*0.4)*100) / 100
	score := math.Min(5, math.Round((3.5+rng.Float64()*1.5)*10)/10)

	delivery := &models.Delivery{ETAText: s.info.ETA}
	if s.info.Type == models.SourceTypeQuickCommerce {
		delivery.ETAText = fmt.Sprintf("%d mins", 8+rng.IntN(23))
	}
	if price >= 499 {
		delivery.FreeDelivery = true
	} else {
		fee := 40.0
		if s.info.Type == models.SourceTypeQuickCommerce {
			fee = 25
		}
		delivery.Fee = &fee
	}

	id := fmt.Sprintf("%s-%06x-%d", s.info.Name, seed&0xffffff, i)
	return models.Product{
		ID:         id,
		Name:       strings.Join([]string{brand, title, variant}, " "),
		Brand:      brand,
		Category:   cat.name,
		SourceID:   s.info.Name,
		SourceType: s.info.Type,
		SourceURL:  s.info.BaseURL + "/search?q=" + url.QueryEscape(term) + "#" + id,
		Price:      models.Price{Current: price, Original: &original, Currency: "INR"},
		Rating:     &models.Rating{Score: score, ReviewCount: 10 + rng.IntN(5000)},
		Delivery:   delivery,
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
