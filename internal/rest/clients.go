package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
	"vitalink/business/clients"
	"vitalink/domain"
	"vitalink/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

// ClientDirectoryService is the full directory surface behind the client
// endpoints.
type ClientDirectoryService interface {
	SearchClients(ctx context.Context, practitionerID uint, term string) ([]domain.ClientSummary, error)
	CreateClient(ctx context.Context, practitionerID uint, input clients.CreateClientInput) (domain.ClientSummary, error)
	GetClient(ctx context.Context, practitionerID uint, id uint64) (domain.ClientSummary, error)
	ListClients(ctx context.Context, practitionerID uint, filter domain.ClientFilter, page int) (domain.ClientPage, error)
}

type ClientHandler struct {
	clientService ClientDirectoryService
	timeout       time.Duration
}

func NewClientHandler(clientService ClientDirectoryService) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		timeout:       10 * time.Second,
	}
}

func (h *ClientHandler) List(c echo.Context) error {
	practitionerID := c.Get("practitioner_id").(uint)

	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}

	filter := domain.ClientFilter{
		Name:  c.QueryParam("name"),
		Email: c.QueryParam("email"),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.clientService.ListClients(ctx, practitionerID, filter, page)
	if err != nil {
		logger.Error("Failed to list clients", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

func (h *ClientHandler) Search(c echo.Context) error {
	practitionerID := c.Get("practitioner_id").(uint)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	summaries, err := h.clientService.SearchClients(ctx, practitionerID, c.QueryParam("term"))
	if err != nil {
		if errors.Is(err, clients.ErrTermTooShort) {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to search clients", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(summaries))
}

func (h *ClientHandler) Get(c echo.Context) error {
	practitionerID := c.Get("practitioner_id").(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid client id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	summary, err := h.clientService.GetClient(ctx, practitionerID, id)
	if err != nil {
		if err.Error() == "client not found" {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to load client", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(summary))
}

func (h *ClientHandler) Create(c echo.Context) error {
	practitionerID := c.Get("practitioner_id").(uint)

	var input clients.CreateClientInput
	if err := c.Bind(&input); err != nil {
		logger.Error("Failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	summary, err := h.clientService.CreateClient(ctx, practitionerID, input)
	if err != nil {
		var fieldErrs clients.FieldErrors
		if errors.As(err, &fieldErrs) {
			return c.JSON(http.StatusBadRequest, fres.Response.StatusBadRequest(fieldErrs))
		}
		logger.Error("Failed to create client", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(summary))
}
