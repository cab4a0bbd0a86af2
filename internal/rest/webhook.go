package rest

import (
	"context"
	"errors"
	"net/http"
	"time"
	"vitalink/business/recommendation"
	"vitalink/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

const purchaseEvent = "order.completed"

type PurchaseService interface {
	MarkPurchased(ctx context.Context, id uint64) error
}

type WebhookHandler struct {
	purchaseService   PurchaseService
	verificationToken string
	timeout           time.Duration
}

type StorefrontWebhookRequest struct {
	RecommendationID uint64 `json:"recommendation_id"`
	Event            string `json:"event"`
}

func NewWebhookHandler(purchaseService PurchaseService, verificationToken string) *WebhookHandler {
	return &WebhookHandler{
		purchaseService:   purchaseService,
		verificationToken: verificationToken,
		timeout:           10 * time.Second,
	}
}

// HandlePurchase receives the storefront's order notification and flips the
// referenced recommendation to purchased. Retries are safe; the transition is
// idempotent.
func (h *WebhookHandler) HandlePurchase(c echo.Context) error {
	token := c.Request().Header.Get("X-Callback-Token")
	if token == "" || token != h.verificationToken {
		logger.Warn("Rejected storefront webhook with bad token")
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "invalid callback token"})
	}

	var req StorefrontWebhookRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind webhook request", "error", err)
		return c.JSON(http.StatusBadRequest, fres.Response.StatusBadRequest("Invalid request"))
	}

	if req.Event != purchaseEvent {
		logger.Debug("Ignoring storefront webhook event", "event", req.Event)
		return c.JSON(http.StatusOK, fres.Response.StatusOK(http.StatusOK))
	}

	if req.RecommendationID == 0 {
		return c.JSON(http.StatusBadRequest, fres.Response.StatusBadRequest("Invalid request"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.purchaseService.MarkPurchased(ctx, req.RecommendationID); err != nil {
		if errors.Is(err, recommendation.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to mark recommendation purchased", "recommendation_id", req.RecommendationID, "error", err)
		return c.JSON(http.StatusInternalServerError, fres.Response.StatusInternalServerError(http.StatusInternalServerError))
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(http.StatusOK))
}
