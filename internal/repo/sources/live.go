package sources

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nguyentranbao-ct/smart-cart/internal/models"
	"github.com/nguyentranbao-ct/smart-cart/pkg/util"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

type LiveOptions struct {
	RateLimit float64
	RateBurst int
	Resty     util.RestyOptions
}

// Live queries a JSON search feed at {endpoint}/search. The feed is expected to
// answer with {"products": [...]}; unknown fields are ignored.
type Live struct {
	info      SourceInfo
	endpoint  string
	client    *resty.Client
	limiter   *rate.Limiter
	sanitizer *bluemonday.Policy
}

func NewLive(info SourceInfo, endpoint string, opts LiveOptions) *Live {
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.RateBurst
	if burst < 1 {
		burst = 1
	}
	return &Live{
		info:      info,
		endpoint:  strings.TrimRight(endpoint, "/"),
		client:    util.NewRestyClient(opts.Resty),
		limiter:   rate.NewLimiter(limit, burst),
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (l *Live) Name() string {
	return l.info.Name
}

func (l *Live) Search(ctx context.Context, term string, limit int, constraints models.Constraints) ([]models.Product, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: rate limit wait: %w", l.info.Name, models.ErrAdapterTimeout)
	}

	params := map[string]string{
		"q":     term,
		"limit": strconv.Itoa(limit),
	}
	if constraints.MaxPrice != nil {
		params["max_price"] = strconv.FormatFloat(*constraints.MaxPrice, 'f', -1, 64)
	}
	if constraints.MinRating != nil {
		params["min_rating"] = strconv.FormatFloat(*constraints.MinRating, 'f', -1, 64)
	}

	resp, err := l.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetHeader("Accept", "application/json").
		Get(l.endpoint + "/search")
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, fmt.Errorf("%s: %w", l.info.Name, models.ErrAdapterTimeout)
		}
		return nil, fmt.Errorf("%s: %v: %w", l.info.Name, err, models.ErrAdapterBlocked)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusForbidden, code == http.StatusTooManyRequests, code == http.StatusServiceUnavailable:
		return nil, fmt.Errorf("%s: status %d: %w", l.info.Name, code, models.ErrAdapterBlocked)
	case code < 200 || code > 299:
		return nil, fmt.Errorf("%s: unexpected status %d: %w", l.info.Name, code, models.ErrAdapterBlocked)
	}

	return l.decode(resp.Body(), limit)
}

func (l *Live) decode(body []byte, limit int) ([]models.Product, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s: invalid json: %w", l.info.Name, models.ErrAdapterParse)
	}
	items := gjson.GetBytes(body, "products")
	if !items.IsArray() {
		return nil, fmt.Errorf("%s: missing products array: %w", l.info.Name, models.ErrAdapterParse)
	}

	var out []models.Product
	items.ForEach(func(_, item gjson.Result) bool {
		if limit > 0 && len(out) >= limit {
			return false
		}
		if p, ok := l.toProduct(item); ok {
			out = append(out, p)
		}
		return true
	})
	return out, nil
}

func (l *Live) toProduct(item gjson.Result) (models.Product, bool) {
	name := l.clean(firstString(item, "name", "title"))
	price := parseAmount(item.Get("price"))
	if name == "" || price <= 0 {
		return models.Product{}, false
	}

	p := models.Product{
		ID:         item.Get("id").String(),
		Name:       name,
		Brand:      l.clean(item.Get("brand").String()),
		Category:   l.clean(item.Get("category").String()),
		SourceID:   l.info.Name,
		SourceType: l.info.Type,
		SourceURL:  firstString(item, "url", "product_url"),
		Price:      models.Price{Current: price, Currency: "INR"},
	}
	if orig := parseAmount(item.Get("original_price")); orig > 0 {
		p.Price.Original = &orig
	}
	if r := item.Get("rating"); r.Exists() {
		score := cast.ToFloat64(r.Value())
		if score > 0 && score <= 5 {
			p.Rating = &models.Rating{Score: score, ReviewCount: int(item.Get("review_count").Int())}
		}
	}

	eta := firstString(item, "delivery.eta", "eta")
	if eta == "" {
		eta = l.info.ETA
	}
	p.Delivery = &models.Delivery{ETAText: eta, FreeDelivery: item.Get("delivery.free").Bool()}
	if fee := item.Get("delivery.fee"); fee.Exists() {
		v := fee.Float()
		p.Delivery.Fee = &v
	}
	for _, img := range item.Get("images").Array() {
		if s := img.String(); s != "" {
			p.Images = append(p.Images, s)
		}
	}
	return p, true
}

func (l *Live) clean(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(l.sanitizer.Sanitize(s))), " ")
}

func firstString(item gjson.Result, paths ...string) string {
	for _, path := range paths {
		if v := item.Get(path).String(); v != "" {
			return v
		}
	}
	return ""
}

var amountNoise = regexp.MustCompile(`[^0-9.]`)

// parseAmount accepts numbers and display strings such as "₹1,299.00".
func parseAmount(r gjson.Result) float64 {
	if r.Type == gjson.Number {
		return r.Float()
	}
	v, err := cast.ToFloat64E(amountNoise.ReplaceAllString(r.String(), ""))
	if err != nil {
		return 0
	}
	return v
}

func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
