package postgres

import (
	"context"
	"errors"
	"fmt"
	"vitalink/domain"

	"gorm.io/gorm"
)

type PractitionerRepository struct {
	DB *gorm.DB
}

func NewPractitionerRepository(db *gorm.DB) *PractitionerRepository {
	return &PractitionerRepository{
		DB: db,
	}
}

func (r *PractitionerRepository) Create(ctx context.Context, practitioner *domain.Practitioner) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(practitioner).Error; err != nil {
		return fmt.Errorf("failed to create practitioner: %w", err)
	}

	return nil
}

func (r *PractitionerRepository) FindByID(ctx context.Context, id uint) (domain.Practitioner, error) {
	if err := ctx.Err(); err != nil {
		return domain.Practitioner{}, fmt.Errorf("context error: %w", err)
	}

	var practitioner domain.Practitioner

	err := r.DB.WithContext(ctx).First(&practitioner, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Practitioner{}, errors.New("practitioner not found")
		}
		return domain.Practitioner{}, fmt.Errorf("failed to find practitioner: %w", err)
	}

	return practitioner, nil
}

func (r *PractitionerRepository) Approve(ctx context.Context, id uint) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Model(&domain.Practitioner{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_approved": true})
	if result.Error != nil {
		return fmt.Errorf("failed to approve practitioner: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("practitioner not found")
	}

	return nil
}

func (r *PractitionerRepository) FindByEmail(ctx context.Context, email string) (domain.Practitioner, error) {
	if err := ctx.Err(); err != nil {
		return domain.Practitioner{}, fmt.Errorf("context error: %w", err)
	}

	var practitioner domain.Practitioner

	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&practitioner).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Practitioner{}, errors.New("practitioner not found")
		}
		return domain.Practitioner{}, fmt.Errorf("failed to find practitioner: %w", err)
	}

	return practitioner, nil
}
