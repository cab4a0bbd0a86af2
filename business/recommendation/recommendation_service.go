package recommendation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"vitalink/domain"
	"vitalink/pkg/logger"

	"github.com/pobyzaarif/goshortcute"
)

// RecommendationRepository contract interface
type RecommendationRepository interface {
	Create(ctx context.Context, rec *domain.Recommendation) error
	FindByID(ctx context.Context, id uint64) (domain.Recommendation, error)
	List(ctx context.Context, practitionerID uint, status string, page, pageSize int) ([]domain.Recommendation, int64, error)
	Delete(ctx context.Context, practitionerID uint, id uint64) error
	MarkViewed(ctx context.Context, id uint64, at time.Time) error
	MarkPurchased(ctx context.Context, id uint64, at time.Time) error
}

// PractitionerRepository contract interface
type PractitionerRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Practitioner, error)
}

const listPageSize = 20

var (
	ErrNotFound         = errors.New("recommendation not found")
	ErrInvalidShareCode = errors.New("invalid share code")
)

type Service struct {
	recRepo   RecommendationRepository
	practRepo PractitionerRepository
	shareKey  string
}

func NewService(recRepo RecommendationRepository, practRepo PractitionerRepository, shareKey string) *Service {
	return &Service{
		recRepo:   recRepo,
		practRepo: practRepo,
		shareKey:  shareKey,
	}
}

// CreateInput is the submission payload built by the wizard. Every price is a
// snapshot taken from the catalog at submission time.
type CreateInput struct {
	PractitionerID uint
	ClientID       uint64
	Name           string
	Description    string
	Items          []LineItemInput
}

type LineItemInput struct {
	ProductID   uint64
	VariantID   uint64
	Name        string
	ImageURL    string
	Quantity    int
	DailyDosage string
	Notes       string
	UnitPrice   float64
}

// Create persists the recommendation in a single atomic call. The total is
// the snapshot sum over line items and the commission is assigned here from
// the practitioner's rate; neither is ever recomputed.
func (s *Service) Create(ctx context.Context, input CreateInput) (domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Recommendation{}, fmt.Errorf("context error: %w", err)
	}

	if strings.TrimSpace(input.Name) == "" {
		return domain.Recommendation{}, errors.New("protocol name is required")
	}
	if input.ClientID == 0 {
		return domain.Recommendation{}, errors.New("client is required")
	}
	if len(input.Items) == 0 {
		return domain.Recommendation{}, errors.New("at least one line item is required")
	}
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return domain.Recommendation{}, errors.New("line item quantity must be at least 1")
		}
		if item.UnitPrice < 0 {
			return domain.Recommendation{}, errors.New("line item price cannot be negative")
		}
	}

	practitioner, err := s.practRepo.FindByID(ctx, input.PractitionerID)
	if err != nil {
		logger.Error("Failed to load practitioner for commission", "practitioner_id", input.PractitionerID, "error", err)
		return domain.Recommendation{}, fmt.Errorf("failed to load practitioner: %w", err)
	}

	var total float64
	items := make([]domain.RecommendationItem, 0, len(input.Items))
	for _, item := range input.Items {
		total += float64(item.Quantity) * item.UnitPrice
		items = append(items, domain.RecommendationItem{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			ProductName: item.Name,
			ImageURL:    item.ImageURL,
			Quantity:    item.Quantity,
			DailyDosage: item.DailyDosage,
			Notes:       item.Notes,
			UnitPrice:   item.UnitPrice,
		})
	}
	total = round2(total)

	rec := domain.Recommendation{
		PractitionerID:   input.PractitionerID,
		ClientID:         input.ClientID,
		Name:             strings.TrimSpace(input.Name),
		Description:      input.Description,
		TotalPrice:       total,
		CommissionAmount: round2(total * practitioner.CommissionRate),
		Status:           domain.StatusNew,
		Items:            items,
	}

	if err := s.recRepo.Create(ctx, &rec); err != nil {
		logger.Error("Failed to create recommendation", "error", err)
		return domain.Recommendation{}, fmt.Errorf("failed to create recommendation: %w", err)
	}

	s.attachShareCode(&rec)

	return rec, nil
}

func (s *Service) GetByID(ctx context.Context, practitionerID uint, id uint64) (domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Recommendation{}, fmt.Errorf("context error: %w", err)
	}

	rec, err := s.recRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Recommendation{}, ErrNotFound
	}
	if rec.PractitionerID != practitionerID {
		return domain.Recommendation{}, ErrNotFound
	}

	s.attachShareCode(&rec)

	return rec, nil
}

func (s *Service) List(ctx context.Context, practitionerID uint, status string, page int) (domain.RecommendationPage, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecommendationPage{}, fmt.Errorf("context error: %w", err)
	}

	if status != "" && !domain.ValidStatus(status) {
		return domain.RecommendationPage{}, errors.New("invalid status filter")
	}
	if page < 1 {
		page = 1
	}

	recs, total, err := s.recRepo.List(ctx, practitionerID, status, page, listPageSize)
	if err != nil {
		logger.Error("Failed to list recommendations", "error", err)
		return domain.RecommendationPage{}, err
	}

	summaries := make([]domain.RecommendationSummary, 0, len(recs))
	for _, rec := range recs {
		summaries = append(summaries, domain.RecommendationSummary{
			ID:               rec.ID,
			ClientID:         rec.ClientID,
			Name:             rec.Name,
			TotalPrice:       rec.TotalPrice,
			CommissionAmount: rec.CommissionAmount,
			Status:           rec.Status,
			ItemCount:        len(rec.Items),
			CreatedAt:        rec.CreatedAt,
		})
	}

	return domain.RecommendationPage{
		Items:    summaries,
		Total:    total,
		Page:     page,
		PageSize: listPageSize,
	}, nil
}

func (s *Service) Delete(ctx context.Context, practitionerID uint, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := s.recRepo.Delete(ctx, practitionerID, id); err != nil {
		if err.Error() == "recommendation not found" {
			return ErrNotFound
		}
		return err
	}

	logger.Info("recommendation deleted", "recommendation_id", id, "practitioner_id", practitionerID)

	return nil
}

// Redeem resolves a share code to its record. The first redemption of a new
// record marks it viewed.
func (s *Service) Redeem(ctx context.Context, code string) (domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Recommendation{}, fmt.Errorf("context error: %w", err)
	}

	id, err := s.decodeShareCode(code)
	if err != nil {
		return domain.Recommendation{}, ErrInvalidShareCode
	}

	rec, err := s.recRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Recommendation{}, ErrNotFound
	}

	if rec.Status == domain.StatusNew {
		now := time.Now()
		if err := s.recRepo.MarkViewed(ctx, rec.ID, now); err != nil {
			// Viewing still succeeds; the stamp is best-effort.
			logger.Warn("failed to mark recommendation viewed", "recommendation_id", rec.ID, "error", err)
		} else {
			rec.Status = domain.StatusViewed
			rec.ViewedAt = &now
		}
	}

	s.attachShareCode(&rec)

	return rec, nil
}

// MarkPurchased is driven by the storefront webhook. Already-purchased
// records are left untouched so webhook retries stay idempotent.
func (s *Service) MarkPurchased(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	rec, err := s.recRepo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	if rec.Status == domain.StatusPurchased {
		return nil
	}

	if err := s.recRepo.MarkPurchased(ctx, id, time.Now()); err != nil {
		return err
	}

	logger.Info("recommendation purchased", "recommendation_id", id)

	return nil
}

// Share codes are the record id encrypted with the app key, so they need no
// extra column and survive record immutability.
func (s *Service) attachShareCode(rec *domain.Recommendation) {
	code, err := s.encodeShareCode(rec.ID)
	if err != nil {
		logger.Warn("failed to encode share code", "recommendation_id", rec.ID, "error", err)
		return
	}
	rec.ShareCode = code
}

func (s *Service) encodeShareCode(id uint64) (string, error) {
	encrypted, err := goshortcute.AESCBCEncrypt([]byte(strconv.FormatUint(id, 10)), []byte(s.shareKey))
	if err != nil {
		return "", err
	}

	return goshortcute.StringtoBase64Encode(encrypted), nil
}

func (s *Service) decodeShareCode(code string) (uint64, error) {
	decoded := goshortcute.StringtoBase64Decode(code)

	plain, err := goshortcute.AESCBCDecrypt([]byte(decoded), []byte(s.shareKey))
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseUint(plain, 10, 64)
	if err != nil {
		return 0, err
	}

	return id, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
