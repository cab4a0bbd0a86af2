package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"vitalink/domain"
	"vitalink/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// ClientRepository contract interface
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	FindByID(ctx context.Context, practitionerID uint, id uint64) (domain.Client, error)
	FindByEmail(ctx context.Context, practitionerID uint, email string) (domain.Client, error)
	Search(ctx context.Context, practitionerID uint, term string, limit int) ([]domain.Client, error)
	List(ctx context.Context, practitionerID uint, filter domain.ClientFilter, page, pageSize int) ([]domain.Client, int64, error)
}

const (
	searchLimit     = 10
	listPageSize    = 20
	minSearchLength = 2
)

var ErrTermTooShort = errors.New("search term must be at least 2 characters")

// CreateClientInput is the create-client form. Validation errors come back
// field-scoped as FieldErrors.
type CreateClientInput struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone" validate:"omitempty,min=5"`
}

// FieldErrors maps form field names to messages. It satisfies error so the
// resolver and handlers can pass it through untouched.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

type clientService struct {
	clientRepo ClientRepository
	validate   *validator.Validate
}

func NewClientService(clientRepo ClientRepository, validate *validator.Validate) *clientService {
	return &clientService{
		clientRepo: clientRepo,
		validate:   validate,
	}
}

func (s *clientService) SearchClients(ctx context.Context, practitionerID uint, term string) ([]domain.ClientSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	term = strings.TrimSpace(term)
	if len([]rune(term)) < minSearchLength {
		return nil, ErrTermTooShort
	}

	clients, err := s.clientRepo.Search(ctx, practitionerID, term, searchLimit)
	if err != nil {
		logger.Error("Failed to search clients", "term", term, "error", err)
		return nil, err
	}

	summaries := make([]domain.ClientSummary, 0, len(clients))
	for _, c := range clients {
		summaries = append(summaries, c.Summary())
	}

	return summaries, nil
}

func (s *clientService) CreateClient(ctx context.Context, practitionerID uint, input CreateClientInput) (domain.ClientSummary, error) {
	if err := ctx.Err(); err != nil {
		return domain.ClientSummary{}, fmt.Errorf("context error: %w", err)
	}

	if fieldErrs := s.validateInput(input); len(fieldErrs) > 0 {
		return domain.ClientSummary{}, fieldErrs
	}

	// Duplicate emails within one practitioner's directory are rejected as a
	// field error so the create form can show it inline.
	existing, err := s.clientRepo.FindByEmail(ctx, practitionerID, input.Email)
	if err == nil && existing.ID > 0 {
		return domain.ClientSummary{}, FieldErrors{"email": "a client with this email already exists"}
	}

	client := domain.Client{
		PractitionerID: practitionerID,
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		Email:          strings.TrimSpace(input.Email),
		Phone:          strings.TrimSpace(input.Phone),
	}

	if err := s.clientRepo.Create(ctx, &client); err != nil {
		logger.Error("Failed to create client", "error", err)
		return domain.ClientSummary{}, fmt.Errorf("failed to create client: %w", err)
	}

	logger.Info("client created", "client_id", client.ID, "practitioner_id", practitionerID)

	return client.Summary(), nil
}

func (s *clientService) GetClient(ctx context.Context, practitionerID uint, id uint64) (domain.ClientSummary, error) {
	if err := ctx.Err(); err != nil {
		return domain.ClientSummary{}, fmt.Errorf("context error: %w", err)
	}

	client, err := s.clientRepo.FindByID(ctx, practitionerID, id)
	if err != nil {
		return domain.ClientSummary{}, err
	}

	return client.Summary(), nil
}

func (s *clientService) ListClients(ctx context.Context, practitionerID uint, filter domain.ClientFilter, page int) (domain.ClientPage, error) {
	if err := ctx.Err(); err != nil {
		return domain.ClientPage{}, fmt.Errorf("context error: %w", err)
	}

	if page < 1 {
		page = 1
	}

	clients, total, err := s.clientRepo.List(ctx, practitionerID, filter, page, listPageSize)
	if err != nil {
		logger.Error("Failed to list clients", "error", err)
		return domain.ClientPage{}, err
	}

	summaries := make([]domain.ClientSummary, 0, len(clients))
	for _, c := range clients {
		summaries = append(summaries, c.Summary())
	}

	return domain.ClientPage{
		Items:    summaries,
		Total:    total,
		Page:     page,
		PageSize: listPageSize,
	}, nil
}

func (s *clientService) validateInput(input CreateClientInput) FieldErrors {
	err := s.validate.Struct(&input)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return FieldErrors{"form": err.Error()}
	}

	fieldErrs := FieldErrors{}
	for _, fe := range validationErrs {
		switch fe.Field() {
		case "Email":
			if fe.Tag() == "required" {
				fieldErrs["email"] = "email is required"
			} else {
				fieldErrs["email"] = "email must be a valid address"
			}
		case "FirstName":
			fieldErrs["first_name"] = "first name is required"
		case "LastName":
			fieldErrs["last_name"] = "last name is required"
		case "Phone":
			fieldErrs["phone"] = "phone number is too short"
		}
	}

	return fieldErrs
}
