package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nguyentranbao-ct/smart-cart/internal/config"
	"github.com/nguyentranbao-ct/smart-cart/internal/models"
	"github.com/nguyentranbao-ct/smart-cart/internal/repo/sources"
	pkgmdw "github.com/nguyentranbao-ct/smart-cart/internal/server/middleware"
	"github.com/nguyentranbao-ct/smart-cart/internal/usecase"
)

type Controller interface {
	Health(c echo.Context) error
	Search(c echo.Context) error
	Interact(c echo.Context) error
	Sources(c echo.Context, req EmptyRequest) ([]SourceView, error)
	ParseQuery(c echo.Context, req ParseQueryRequest) (*models.Intent, error)
	Keywords(c echo.Context, req ParseQueryRequest) (*KeywordsResponse, error)

	CreateCart(c echo.Context, req EmptyRequest) (*pkgmdw.Response, error)
	GetCart(c echo.Context, req CartRequest) (*models.Cart, error)
	DeleteCart(c echo.Context, req CartRequest) error
	AddItem(c echo.Context, req AddItemRequest) (*models.Cart, error)
	UpdateItem(c echo.Context, req UpdateItemRequest) (*models.Cart, error)
	RemoveItem(c echo.Context, req ItemRequest) (*models.Cart, error)
	ClearCart(c echo.Context, req CartRequest) (*models.Cart, error)
	OptimizeCart(c echo.Context, req OptimizeRequest) (*models.CartOptimization, error)
	CartSummary(c echo.Context, req CartRequest) (*models.CartSummary, error)
}

type controller struct {
	interpreter usecase.Interpreter
	aggregator  usecase.Aggregator
	carts       usecase.CartUsecase
	dialog      usecase.DialogUsecase
	catalog     *sources.Catalog
	registry    *sources.Registry
	enabled     []string
}

func NewController(
	conf *config.Config,
	interpreter usecase.Interpreter,
	aggregator usecase.Aggregator,
	carts usecase.CartUsecase,
	dialog usecase.DialogUsecase,
	catalog *sources.Catalog,
	registry *sources.Registry,
) Controller {
	return &controller{
		interpreter: interpreter,
		aggregator:  aggregator,
		carts:       carts,
		dialog:      dialog,
		catalog:     catalog,
		registry:    registry,
		enabled:     conf.Sources.Enabled,
	}
}

func (h *controller) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "smart-cart",
	})
}
