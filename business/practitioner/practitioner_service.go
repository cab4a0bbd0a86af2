package practitioner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"vitalink/domain"
	"vitalink/pkg/logger"
	"vitalink/pkg/utils"

	"github.com/go-playground/validator/v10"
)

// PractitionerRepository contract interface
type PractitionerRepository interface {
	Create(ctx context.Context, practitioner *domain.Practitioner) error
	FindByID(ctx context.Context, id uint) (domain.Practitioner, error)
	FindByEmail(ctx context.Context, email string) (domain.Practitioner, error)
	Approve(ctx context.Context, id uint) error
}

const (
	RolePractitioner = "practitioner"
	RoleAdmin        = "admin"

	defaultCommissionRate = 0.1
)

type practitionerService struct {
	practRepo PractitionerRepository
	validate  *validator.Validate
}

func NewPractitionerService(practRepo PractitionerRepository, validate *validator.Validate) *practitionerService {
	return &practitionerService{
		practRepo: practRepo,
		validate:  validate,
	}
}

// Register creates an unapproved practitioner account. Approval happens in
// the admin area; unapproved accounts cannot log in.
func (s *practitionerService) Register(ctx context.Context, practitioner *domain.Practitioner) (domain.Practitioner, error) {
	if err := ctx.Err(); err != nil {
		return domain.Practitioner{}, fmt.Errorf("context error: %w", err)
	}

	if err := s.validate.Var(practitioner.Email, "required,email"); err != nil {
		logger.Error("Invalid email format", "error", err)
		return domain.Practitioner{}, errors.New("invalid email format")
	}

	if err := s.validate.Var(practitioner.Password, "required,min=6"); err != nil {
		logger.Error("Invalid practitioner password", "error", err)
		return domain.Practitioner{}, errors.New("password must be at least 6 characters")
	}

	existing, err := s.practRepo.FindByEmail(ctx, practitioner.Email)
	if err == nil && existing.ID > 0 {
		logger.Error("Email already exists")
		return domain.Practitioner{}, errors.New("email already exists")
	}

	passwordHash, err := utils.HashPassword(practitioner.Password)
	if err != nil {
		logger.Error("Failed to hash password", "error", err)
		return domain.Practitioner{}, errors.New("failed to hash password")
	}

	newPractitioner := domain.Practitioner{
		FullName:       practitioner.FullName,
		Email:          practitioner.Email,
		Password:       string(passwordHash),
		Role:           RolePractitioner,
		IsApproved:     false,
		CommissionRate: defaultCommissionRate,
	}

	if err := s.practRepo.Create(ctx, &newPractitioner); err != nil {
		logger.Error("Failed to create practitioner", "error", err)
		return domain.Practitioner{}, err
	}

	newPractitioner.Password = ""

	return newPractitioner, nil
}

func (s *practitionerService) Login(ctx context.Context, email, password string) (string, domain.Practitioner, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.Practitioner{}, fmt.Errorf("context error: %w", err)
	}

	practitioner, err := s.practRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("Invalid practitioner credentials", "error", err)
		return "", domain.Practitioner{}, errors.New("invalid credentials")
	}

	if !utils.CheckPassword(password, practitioner.Password) {
		logger.Error("Practitioner password incorrect")
		return "", domain.Practitioner{}, errors.New("invalid credentials")
	}

	if !practitioner.IsApproved {
		logger.Error("Practitioner account not approved", "practitioner_id", practitioner.ID)
		return "", domain.Practitioner{}, errors.New("account is awaiting approval")
	}

	idStr := strconv.FormatUint(uint64(practitioner.ID), 10)
	token, err := utils.GenerateJWT(idStr, practitioner.Role)
	if err != nil {
		logger.Error("Failed to generate token", "error", err)
		return "", domain.Practitioner{}, errors.New("failed to generate token")
	}

	practitioner.Password = ""

	return token, practitioner, nil
}

// EnsureAdmin seeds the bootstrap admin account. Registration only ever
// produces practitioner accounts, so approval depends on this seed or an
// account created out of band. An empty email skips seeding; an existing
// account with the email is left untouched.
func (s *practitionerService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" {
		return nil
	}

	existing, err := s.practRepo.FindByEmail(ctx, email)
	if err == nil && existing.ID > 0 {
		return nil
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := domain.Practitioner{
		FullName:       "Administrator",
		Email:          email,
		Password:       string(passwordHash),
		Role:           RoleAdmin,
		IsApproved:     true,
		CommissionRate: 0,
	}

	if err := s.practRepo.Create(ctx, &admin); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	logger.Info("admin account seeded", "email", email)

	return nil
}

// Approve unlocks login for a registered account. Admin-only at the transport
// layer.
func (s *practitionerService) Approve(ctx context.Context, id uint) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := s.practRepo.Approve(ctx, id); err != nil {
		logger.Error("Failed to approve practitioner", "practitioner_id", id, "error", err)
		return err
	}

	logger.Info("practitioner approved", "practitioner_id", id)

	return nil
}

func (s *practitionerService) GetByID(ctx context.Context, id uint) (domain.Practitioner, error) {
	if err := ctx.Err(); err != nil {
		return domain.Practitioner{}, fmt.Errorf("context error: %w", err)
	}

	practitioner, err := s.practRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Practitioner{}, err
	}

	practitioner.Password = ""

	return practitioner, nil
}
