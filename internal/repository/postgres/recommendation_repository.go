package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"
	"vitalink/domain"

	"gorm.io/gorm"
)

type RecommendationRepository struct {
	DB *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{
		DB: db,
	}
}

// Create persists the record together with its line items in one transaction;
// GORM saves the association in the same statement batch.
func (r *RecommendationRepository) Create(ctx context.Context, rec *domain.Recommendation) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to create recommendation: %w", err)
	}

	return nil
}

func (r *RecommendationRepository) FindByID(ctx context.Context, id uint64) (domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Recommendation{}, fmt.Errorf("context error: %w", err)
	}

	var rec domain.Recommendation

	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("recommendation_items.id") }).
		First(&rec, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Recommendation{}, errors.New("recommendation not found")
		}
		return domain.Recommendation{}, fmt.Errorf("failed to find recommendation: %w", err)
	}

	return rec, nil
}

func (r *RecommendationRepository) List(ctx context.Context, practitionerID uint, status string, page, pageSize int) ([]domain.Recommendation, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("context error: %w", err)
	}

	query := r.DB.WithContext(ctx).Model(&domain.Recommendation{}).
		Where("practitioner_id = ?", practitionerID)

	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recommendations: %w", err)
	}

	var recs []domain.Recommendation
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&recs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recommendations: %w", err)
	}

	return recs, total, nil
}

func (r *RecommendationRepository) Delete(ctx context.Context, practitionerID uint, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Where("practitioner_id = ?", practitionerID).
		Delete(&domain.Recommendation{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete recommendation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("recommendation not found")
	}

	return nil
}

func (r *RecommendationRepository) MarkViewed(ctx context.Context, id uint64, at time.Time) error {
	return r.setStatus(ctx, id, map[string]interface{}{
		"status":    domain.StatusViewed,
		"viewed_at": at,
	})
}

func (r *RecommendationRepository) MarkPurchased(ctx context.Context, id uint64, at time.Time) error {
	return r.setStatus(ctx, id, map[string]interface{}{
		"status":       domain.StatusPurchased,
		"purchased_at": at,
	})
}

func (r *RecommendationRepository) setStatus(ctx context.Context, id uint64, updates map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Model(&domain.Recommendation{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update recommendation status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("recommendation not found")
	}

	return nil
}
