package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"
	"vitalink/domain"
	"vitalink/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

const catalogBrowseLimit = 50

// CatalogService fronts the storefront product API, optionally through the
// cache layer.
type CatalogService interface {
	ListProducts(ctx context.Context, term string, limit int) ([]domain.CatalogItem, error)
	GetProduct(ctx context.Context, id uint64) (domain.CatalogItem, error)
}

type CatalogHandler struct {
	catalog CatalogService
	timeout time.Duration
}

func NewCatalogHandler(catalog CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		timeout: 10 * time.Second,
	}
}

// List proxies a plain catalog browse outside any wizard session.
func (h *CatalogHandler) List(c echo.Context) error {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit < 1 || limit > catalogBrowseLimit {
		limit = catalogBrowseLimit
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	items, err := h.catalog.ListProducts(ctx, c.QueryParam("search"), limit)
	if err != nil {
		logger.Error("Failed to list catalog products", "error", err)
		return c.JSON(http.StatusBadGateway, ResponseError{Message: "catalog is unavailable"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(items))
}

func (h *CatalogHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid product id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	item, err := h.catalog.GetProduct(ctx, id)
	if err != nil {
		logger.Error("Failed to load catalog product", "product_id", id, "error", err)
		return c.JSON(http.StatusNotFound, ResponseError{Message: "product not found"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(item))
}
