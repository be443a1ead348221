package server

import (
	"github.com/labstack/echo/v4"

	"github.com/nguyentranbao-ct/smart-cart/internal/models"
)

// ParseQuery interprets a shopping sentence the same way the robot does,
// without searching.
func (h *controller) ParseQuery(c echo.Context, req ParseQueryRequest) (*models.Intent, error) {
	intent := h.interpreter.Parse(c.Request().Context(), req.Query, req.Sources)
	if intent.TargetSources == nil {
		intent.TargetSources = []string{}
	}
	return &intent, nil
}

func (h *controller) Keywords(_ echo.Context, req ParseQueryRequest) (*KeywordsResponse, error) {
	keywords := h.interpreter.Keywords(req.Query)
	return &KeywordsResponse{Keywords: keywords, Count: len(keywords)}, nil
}
