package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
	"vitalink/business/clients"
	"vitalink/business/recommendation"
	"vitalink/business/wizard"
	"vitalink/domain"
	"vitalink/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RecommendationService is the slice of the recommendation layer the wizard
// handler needs to seed edit sessions.
type RecommendationService interface {
	GetByID(ctx context.Context, practitionerID uint, id uint64) (domain.Recommendation, error)
}

// ClientService loads the client binding when a session edits a stored record.
type ClientService interface {
	GetClient(ctx context.Context, practitionerID uint, id uint64) (domain.ClientSummary, error)
}

type WizardHandler struct {
	manager       *wizard.Manager
	recService    RecommendationService
	clientService ClientService
	validator     *validator.Validate
	timeout       time.Duration
}

func NewWizardHandler(manager *wizard.Manager, recService RecommendationService, clientService ClientService) *WizardHandler {
	return &WizardHandler{
		manager:       manager,
		recService:    recService,
		clientService: clientService,
		validator:     validator.New(),
		timeout:       10 * time.Second,
	}
}

type StartWizardRequest struct {
	EditRecommendationID uint64 `json:"edit_recommendation_id"`
}

// Start opens a session at Step 1. With edit_recommendation_id set, the
// protocol draft and client binding are preloaded from the stored record.
func (h *WizardHandler) Start(c echo.Context) error {
	practitionerID := c.Get("practitioner_id").(uint)

	var req StartWizardRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var seed *wizard.EditSeed
	if req.EditRecommendationID > 0 {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
		defer cancel()

		rec, err := h.recService.GetByID(ctx, practitionerID, req.EditRecommendationID)
		if err != nil {
			if errors.Is(err, recommendation.ErrNotFound) {
				return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
			}
			logger.Error("Failed to load recommendation for edit", "error", err)
			return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
		}

		seed = &wizard.EditSeed{
			RecordID:    rec.ID,
			Name:        rec.Name,
			Description: rec.Description,
		}

		client, err := h.clientService.GetClient(ctx, practitionerID, rec.ClientID)
		if err != nil {
			logger.Warn("Failed to load client for edit session", "client_id", rec.ClientID, "error", err)
		} else {
			seed.Binding = domain.ClientBinding{
				ClientID:    client.ID,
				DisplayName: client.DisplayName(),
				Email:       client.Email,
			}
		}
	}

	sess := h.manager.Start(practitionerID, seed)

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(sess.Snapshot()))
}

func (h *WizardHandler) session(c echo.Context) (*wizard.Session, error) {
	practitionerID := c.Get("practitioner_id").(uint)

	sess, err := h.manager.Get(c.Param("id"), practitionerID)
	if err != nil {
		return nil, c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	}

	return sess, nil
}

func (h *WizardHandler) Snapshot(c echo.Context) error {
	sess, err := h.session(c)
	if sess == nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(sess.Snapshot()))
}

func (h *WizardHandler) Abandon(c echo.Context) error {
	practitionerID := c.Get("practitioner_id").(uint)

	if err := h.manager.Abandon(c.Param("id"), practitionerID); err != nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(nil))
}

// --- catalog step ---

type CatalogSearchRequest struct {
	Term string `json:"term"`
}

// CatalogSearch records a keystroke and returns the current view immediately.
// The fetch happens after the debounce window; clients poll the snapshot.
func (h *WizardHandler) CatalogSearch(c echo.Context) error {
	sess, err := h.session(c)
	if sess == nil {
		return err
	}

	var req CatalogSearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	sess.SearchCatalog(req.Term)

	return c.JSON(http.StatusOK, fres.Response.StatusOK(sess.CatalogView()))
}

type CatalogFilterRequest struct {
	Category string `json:"category" validate:"required"`
}

func (h *WizardHandler) CatalogFilter(c echo.Context) error {
	sess, err := h.session(c)
	if sess == nil {
		return err
	}

	var req CatalogFilterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	sess.FilterCatalog(req.Category)

	return c.JSON(http.StatusOK, fres.Response.StatusOK(sess.CatalogView()))
}

func (h *WizardHandler) CatalogPage(c echo.Context) error {
	sess, err := h.session(c)
	if sess == nil {
		return err
	}

	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(sess.CatalogPage(page)))
}

func (h *WizardHandler) CatalogCategories(c echo.Context) error {
	sess, err := h.session(c)
	if sess == nil {
		return err
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(sess.CatalogCategories()))
}

// --- selection ---

type ToggleSelectionRequest struct {
	ProductID uint64 `json:"product_id" validate:"required"`
}

func (h *WizardHandler) ToggleSelection(c echo.Context) error {
	sess, err := h.session(c)
	if sess == nil {
		return err
	}

	var req ToggleSelectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	selected, err := sess.ToggleProduct(req.ProductID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"product_id": req.ProductID,
		"selected":   selected,
	}))
}

type UpdateSelectionRequest struct {
	Quantity    *int    `json:"quantity"`
	DailyDosage *string `json:"daily_dosage"`
	Notes       *string `json:"notes"`
}

func (h *WizardHandler) UpdateSelection(c echo.Context) error {
	sess, err := h.session(c)
	if sess == nil {
		return err
	}

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid product id"})
	}

	var req UpdateSelectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := sess.UpdateEntry(productID, wizard.EntryUpdate{
		Quantity:    req.Quantity,
		DailyDosage: req.DailyDosage,
		Notes:       req.Notes,
	}); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(sess.Snapshot()))
}

// --- protocol step ---

type SetProtocolRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *WizardHandler) SetProtocol(c echo.Context) error {
	sess, err := h.session(c)
	if sess == nil {
		return err
	}

	var req SetProtocolRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := sess.SetProtocol(req.Name, req.Description); err != nil {
		return c.JSON(http.StatusConflict, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(sess.Snapshot()))
}

// --- step transitions ---

func (h *WizardHandler) Next(c echo.Context) error {
	sess, err := h.session(c)
	if sess == nil {
		return err
	}

	if err := sess.Next(); err != nil {
		if errors.Is(err, wizard.ErrAlreadySubmitted) {
			return c.JSON(http.StatusConflict, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusUnprocessableEntity, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(sess.Snapshot()))
}

func (h *WizardHandler) Back(c echo.Context) error {
	sess, err := h.session(c)
	if sess == nil {
		return err
	}

	sess.Back()

	return c.JSON(http.StatusOK, fres.Response.StatusOK(sess.Snapshot()))
}

// --- client step ---

type ClientSearchRequest struct {
	Term string `json:"term"`
}

func (h *WizardHandler) ClientSearch(c echo.Context) error {
	sess, err := h.session(c)
	if sess == nil {
		return err
	}

	var req ClientSearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	sess.SearchClient(req.Term)

	return c.JSON(http.StatusOK, fres.Response.StatusOK(sess.ClientState()))
}

type ClientSelectRequest struct {
	ClientID uint64 `json:"client_id" validate:"required"`
}

func (h *WizardHandler) ClientSelect(c echo.Context) error {
	sess, err := h.session(c)
	if sess == nil {
		return err
	}

	var req ClientSelectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := sess.SelectClient(req.ClientID); err != nil {
		return c.JSON(http.StatusConflict, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(sess.ClientState()))
}

func (h *WizardHandler) ClientCreate(c echo.Context) error {
	sess, err := h.session(c)
	if sess == nil {
		return err
	}

	var input clients.CreateClientInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	binding, err := sess.CreateClient(ctx, input)
	if err != nil {
		var fieldErrs clients.FieldErrors
		if errors.As(err, &fieldErrs) {
			return c.JSON(http.StatusBadRequest, fres.Response.StatusBadRequest(fieldErrs))
		}
		if errors.Is(err, clients.ErrAlreadyBound) {
			return c.JSON(http.StatusConflict, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to create client from wizard", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(binding))
}

func (h *WizardHandler) ClientClear(c echo.Context) error {
	sess, err := h.session(c)
	if sess == nil {
		return err
	}

	sess.ClearClient()

	return c.JSON(http.StatusOK, fres.Response.StatusOK(sess.ClientState()))
}

// --- submission ---

func (h *WizardHandler) Submit(c echo.Context) error {
	sess, err := h.session(c)
	if sess == nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := sess.Submit(ctx)
	if err != nil {
		switch {
		case errors.Is(err, wizard.ErrAlreadySubmitted),
			errors.Is(err, wizard.ErrSubmitInFlight):
			return c.JSON(http.StatusConflict, ResponseError{Message: err.Error()})
		case errors.Is(err, wizard.ErrNotAtFinalStep),
			errors.Is(err, wizard.ErrNoClientBound),
			errors.Is(err, wizard.ErrEmptySelection),
			errors.Is(err, wizard.ErrInvalidProtocol):
			return c.JSON(http.StatusUnprocessableEntity, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to submit wizard session", "session_id", sess.ID(), "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(result))
}
