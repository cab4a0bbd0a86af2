package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
	"vitalink/business/recommendation"
	"vitalink/business/wizard"
	"vitalink/domain"
	"vitalink/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

// RecommendationHistoryService is the read/delete surface behind the history
// endpoints plus the public share redemption.
type RecommendationHistoryService interface {
	GetByID(ctx context.Context, practitionerID uint, id uint64) (domain.Recommendation, error)
	List(ctx context.Context, practitionerID uint, status string, page int) (domain.RecommendationPage, error)
	Delete(ctx context.Context, practitionerID uint, id uint64) error
	Redeem(ctx context.Context, code string) (domain.Recommendation, error)
}

type RecommendationHandler struct {
	recService RecommendationHistoryService
	storeURL   string
	timeout    time.Duration
}

func NewRecommendationHandler(recService RecommendationHistoryService, storeURL string) *RecommendationHandler {
	return &RecommendationHandler{
		recService: recService,
		storeURL:   storeURL,
		timeout:    10 * time.Second,
	}
}

func (h *RecommendationHandler) List(c echo.Context) error {
	practitionerID := c.Get("practitioner_id").(uint)

	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.recService.List(ctx, practitionerID, c.QueryParam("status"), page)
	if err != nil {
		if err.Error() == "invalid status filter" {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to list recommendations", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

func (h *RecommendationHandler) Get(c echo.Context) error {
	practitionerID := c.Get("practitioner_id").(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid recommendation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rec, err := h.recService.GetByID(ctx, practitionerID, id)
	if err != nil {
		if errors.Is(err, recommendation.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to load recommendation", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"recommendation": rec,
		"cart_link":      wizard.CartLinkFromRecord(h.storeURL, rec.Items),
	}))
}

func (h *RecommendationHandler) Delete(c echo.Context) error {
	practitionerID := c.Get("practitioner_id").(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid recommendation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.recService.Delete(ctx, practitionerID, id); err != nil {
		if errors.Is(err, recommendation.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to delete recommendation", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(nil))
}

// Redeem is the public share endpoint. The first view of a new record marks
// it viewed; the cart link is rebuilt from the stored line items.
func (h *RecommendationHandler) Redeem(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "share code is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rec, err := h.recService.Redeem(ctx, code)
	if err != nil {
		if errors.Is(err, recommendation.ErrInvalidShareCode) || errors.Is(err, recommendation.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: "recommendation not found"})
		}
		logger.Error("Failed to redeem share code", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"recommendation": rec,
		"cart_link":      wizard.CartLinkFromRecord(h.storeURL, rec.Items),
	}))
}
