package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"vitalink/domain"

	"gorm.io/gorm"
)

type ClientRepository struct {
	DB *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{
		DB: db,
	}
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(client).Error; err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	return nil
}

func (r *ClientRepository) FindByID(ctx context.Context, practitionerID uint, id uint64) (domain.Client, error) {
	if err := ctx.Err(); err != nil {
		return domain.Client{}, fmt.Errorf("context error: %w", err)
	}

	var client domain.Client

	err := r.DB.WithContext(ctx).
		Where("practitioner_id = ?", practitionerID).
		First(&client, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Client{}, errors.New("client not found")
		}
		return domain.Client{}, fmt.Errorf("failed to find client: %w", err)
	}

	return client, nil
}

func (r *ClientRepository) FindByEmail(ctx context.Context, practitionerID uint, email string) (domain.Client, error) {
	if err := ctx.Err(); err != nil {
		return domain.Client{}, fmt.Errorf("context error: %w", err)
	}

	var client domain.Client

	err := r.DB.WithContext(ctx).
		Where("practitioner_id = ? AND lower(email) = ?", practitionerID, strings.ToLower(email)).
		First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Client{}, errors.New("client not found")
		}
		return domain.Client{}, fmt.Errorf("failed to find client: %w", err)
	}

	return client, nil
}

// Search matches the term against first name, last name and email.
func (r *ClientRepository) Search(ctx context.Context, practitionerID uint, term string, limit int) ([]domain.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	pattern := "%" + strings.TrimSpace(term) + "%"

	var clients []domain.Client
	err := r.DB.WithContext(ctx).
		Where("practitioner_id = ?", practitionerID).
		Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?", pattern, pattern, pattern).
		Order("first_name, last_name").
		Limit(limit).
		Find(&clients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search clients: %w", err)
	}

	return clients, nil
}

func (r *ClientRepository) List(ctx context.Context, practitionerID uint, filter domain.ClientFilter, page, pageSize int) ([]domain.Client, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("context error: %w", err)
	}

	query := r.DB.WithContext(ctx).Model(&domain.Client{}).
		Where("practitioner_id = ?", practitionerID)

	if filter.Name != "" {
		pattern := "%" + filter.Name + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ?", pattern, pattern)
	}
	if filter.Email != "" {
		query = query.Where("email ILIKE ?", "%"+filter.Email+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	var clients []domain.Client
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&clients).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}

	return clients, total, nil
}
