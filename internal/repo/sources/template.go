package sources

import (
	"fmt"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/nguyentranbao-ct/smart-cart/internal/models"
)

// Template is the last-resort tier. It never fails and does not look at
// constraints, so a search always has something to show.
type Template struct {
	catalog *Catalog
}

func NewTemplate(catalog *Catalog) *Template {
	return &Template{catalog: catalog}
}

// Generate spreads prices evenly across the term's category price range. IDs
// carry a hash of the term so listings for different queries never share a key.
func (t *Template) Generate(term string, sources []string, perSource int) []models.SourceGroup {
	term = strings.Join(strings.Fields(strings.ToLower(term)), " ")
	names := templateNames(term)
	cat := matchCategory(term)
	termHash := xxhash.Sum64String(term)
	step := (cat.maxPrice - cat.minPrice) / float64(len(sources)*perSource+1)

	groups := make([]models.SourceGroup, 0, len(sources))
	for i, source := range sources {
		info := t.catalog.Info(source)
		group := models.SourceGroup{SourceID: info.Name, Products: make([]models.Product, 0, perSource)}
		for j := 0; j < perSource; j++ {
			k := i*perSource + j
			price := math.Round(cat.minPrice + step*float64(k+1))
			original := math.Round(price*1.2*100) / 100
			score := math.Min(5, math.Round((4.0+float64(i+j)*0.1)*10)/10)
			id := fmt.Sprintf("%s-tpl-%016x-%d", info.Name, termHash, j)
			group.Products = append(group.Products, models.Product{
				ID:         id,
				Name:       names[j%len(names)],
				SourceID:   info.Name,
				SourceType: info.Type,
				SourceURL:  info.BaseURL + "/p/" + id,
				Price:      models.Price{Current: price, Original: &original, Currency: "INR"},
				Rating:     &models.Rating{Score: score, ReviewCount: 100 * (i + j + 1)},
				Delivery:   &models.Delivery{ETAText: info.ETA, FreeDelivery: price >= 499},
			})
		}
		groups = append(groups, group)
	}
	return groups
}

func templateNames(term string) []string {
	lower := strings.ToLower(term)
	switch {
	case containsAny(lower, "cheese", "dairy", "milk"):
		return withBrands(term, "Amul", "Britannia", "Mother Dairy")
	case containsAny(lower, "phone", "mobile", "smartphone"):
		return []string{"iPhone 15 128GB", "Samsung Galaxy S24 256GB", "OnePlus 12 512GB"}
	case containsAny(lower, "laptop", "computer"):
		return []string{"MacBook Air M2", "Dell Inspiron 15", "HP Pavilion 14"}
	default:
		t := titleCase(term)
		if t == "" {
			t = "Product"
		}
		return []string{t + " - Premium Quality", t + " - Best Seller", t + " - Value Pack"}
	}
}

// withBrands prefixes the term with each brand, leaving it bare when the term
// already names that brand.
func withBrands(term string, brands ...string) []string {
	title := titleCase(term)
	out := make([]string, len(brands))
	for i, b := range brands {
		if strings.Contains(term, strings.ToLower(b)) {
			out[i] = title
			continue
		}
		out[i] = b + " " + title
	}
	return out
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
