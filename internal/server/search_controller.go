package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nguyentranbao-ct/smart-cart/internal/repo/sources"
	pkgmdw "github.com/nguyentranbao-ct/smart-cart/internal/server/middleware"
	"github.com/nguyentranbao-ct/smart-cart/pkg/util"
)

// Search is the plain search endpoint: the query text is used as is, without
// the language model, and fanned out to the requested sources.
func (h *controller) Search(c echo.Context) error {
	var req SearchRequest
	if err := pkgmdw.BindAndValidate(c, &req); err != nil {
		return err
	}

	intent := h.interpreter.Resolve(req.Query, req.sources(), req.constraints())
	result := h.aggregator.Aggregate(c.Request().Context(), intent, req.Limit)

	targets := intent.TargetSources
	if targets == nil {
		targets = []string{}
	}
	return c.JSON(http.StatusOK, SearchResponse{
		Success:  true,
		Products: result.Products(),
		Groups:   result.Groups,
		Tier:     result.Tier,
		Partial:  result.Partial,
		Sources:  targets,
	})
}

func (h *controller) Sources(c echo.Context, _ EmptyRequest) ([]SourceView, error) {
	live := h.registry.Sources(sources.VariantLive)
	return util.ConvertList(h.enabled, func(name string) SourceView {
		info := h.catalog.Info(name)
		return SourceView{
			Name: info.Name,
			Type: info.Type,
			ETA:  info.ETA,
			URL:  info.BaseURL,
			Live: util.SliceIncludes(live, name),
		}
	}), nil
}
