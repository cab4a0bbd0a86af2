package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"
	"vitalink/domain"
	"vitalink/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ResponseError struct {
	Message string `json:"message"`
}

type PractitionerService interface {
	Register(ctx context.Context, practitioner *domain.Practitioner) (domain.Practitioner, error)
	Login(ctx context.Context, email, password string) (string, domain.Practitioner, error)
	GetByID(ctx context.Context, id uint) (domain.Practitioner, error)
	Approve(ctx context.Context, id uint) error
}

type PractitionerHandler struct {
	practitionerService PractitionerService
	validator           *validator.Validate
	timeout             time.Duration
}

func NewPractitionerHandler(practitionerService PractitionerService) *PractitionerHandler {
	return &PractitionerHandler{
		practitionerService: practitionerService,
		validator:           validator.New(),
		timeout:             10 * time.Second,
	}
}

type PractitionerRegisterRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type PractitionerLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *PractitionerHandler) Register(c echo.Context) error {
	var req PractitionerRegisterRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate register request", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	practitioner, err := h.practitionerService.Register(ctx, &domain.Practitioner{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		logger.Error("Failed to register practitioner", "error", err)
		if err.Error() == "email already exists" ||
			err.Error() == "invalid email format" ||
			err.Error() == "password must be at least 6 characters" {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(practitioner))
}

func (h *PractitionerHandler) Login(c echo.Context) error {
	var req PractitionerLoginRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	token, practitioner, err := h.practitionerService.Login(ctx, req.Email, req.Password)
	if err != nil {
		logger.Error("Failed to login practitioner", "error", err)
		if err.Error() == "account is awaiting approval" {
			return c.JSON(http.StatusForbidden, ResponseError{Message: err.Error()})
		}
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"token":        token,
		"practitioner": practitioner,
	}))
}

func (h *PractitionerHandler) Approve(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid practitioner id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.practitionerService.Approve(ctx, uint(id)); err != nil {
		if err.Error() == "practitioner not found" {
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		}
		logger.Error("Failed to approve practitioner", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(nil))
}

func (h *PractitionerHandler) Me(c echo.Context) error {
	practitionerID := c.Get("practitioner_id").(uint)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	practitioner, err := h.practitionerService.GetByID(ctx, practitionerID)
	if err != nil {
		logger.Error("Failed to load practitioner profile", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(practitioner))
}
