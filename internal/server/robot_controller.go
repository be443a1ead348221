package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nguyentranbao-ct/smart-cart/internal/models"
)

// Interact answers with the dialog response itself rather than the usual
// envelope. Dialog failures are reported in the body with action "error".
func (h *controller) Interact(c echo.Context) error {
	var req models.DialogRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resp := h.dialog.Interact(c.Request().Context(), req)
	return c.JSON(http.StatusOK, resp)
}
