package recommendation

import (
	"context"
	"errors"
	"testing"
	"time"
	"vitalink/domain"
)

type fakeRecRepo struct {
	records map[uint64]*domain.Recommendation
	nextID  uint64
	markErr error
}

func newFakeRecRepo() *fakeRecRepo {
	return &fakeRecRepo{records: make(map[uint64]*domain.Recommendation)}
}

func (r *fakeRecRepo) Create(ctx context.Context, rec *domain.Recommendation) error {
	r.nextID++
	rec.ID = r.nextID
	rec.CreatedAt = time.Now()
	stored := *rec
	r.records[rec.ID] = &stored
	return nil
}

func (r *fakeRecRepo) FindByID(ctx context.Context, id uint64) (domain.Recommendation, error) {
	rec, ok := r.records[id]
	if !ok {
		return domain.Recommendation{}, errors.New("recommendation not found")
	}
	return *rec, nil
}

func (r *fakeRecRepo) List(ctx context.Context, practitionerID uint, status string, page, pageSize int) ([]domain.Recommendation, int64, error) {
	var out []domain.Recommendation
	for _, rec := range r.records {
		if rec.PractitionerID != practitionerID {
			continue
		}
		if status != "" && rec.Status != status {
			continue
		}
		out = append(out, *rec)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRecRepo) Delete(ctx context.Context, practitionerID uint, id uint64) error {
	rec, ok := r.records[id]
	if !ok || rec.PractitionerID != practitionerID {
		return errors.New("recommendation not found")
	}
	delete(r.records, id)
	return nil
}

func (r *fakeRecRepo) MarkViewed(ctx context.Context, id uint64, at time.Time) error {
	if r.markErr != nil {
		return r.markErr
	}
	rec := r.records[id]
	rec.Status = domain.StatusViewed
	rec.ViewedAt = &at
	return nil
}

func (r *fakeRecRepo) MarkPurchased(ctx context.Context, id uint64, at time.Time) error {
	if r.markErr != nil {
		return r.markErr
	}
	rec := r.records[id]
	rec.Status = domain.StatusPurchased
	rec.PurchasedAt = &at
	return nil
}

type fakePractRepo struct {
	rate float64
}

func (r *fakePractRepo) FindByID(ctx context.Context, id uint) (domain.Practitioner, error) {
	return domain.Practitioner{CommissionRate: r.rate}, nil
}

const testShareKey = "0123456789abcdef"

func newTestService(recRepo *fakeRecRepo, rate float64) *Service {
	return NewService(recRepo, &fakePractRepo{rate: rate}, testShareKey)
}

func validInput() CreateInput {
	return CreateInput{
		PractitionerID: 1,
		ClientID:       5,
		Name:           "Sleep support",
		Description:    "evening protocol",
		Items: []LineItemInput{
			{ProductID: 1, VariantID: 111, Name: "Magnesium Glycinate", Quantity: 2, UnitPrice: 50.00},
			{ProductID: 2, VariantID: 222, Name: "Vitamin D3", Quantity: 1, UnitPrice: 30.00},
		},
	}
}

func TestCreateComputesTotalAndCommission(t *testing.T) {
	svc := newTestService(newFakeRecRepo(), 0.1)

	rec, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatal(err)
	}

	if rec.TotalPrice != 130.00 {
		t.Errorf("expected total 130.00, got %v", rec.TotalPrice)
	}
	if rec.CommissionAmount != 13.00 {
		t.Errorf("expected commission 13.00, got %v", rec.CommissionAmount)
	}
	if rec.Status != domain.StatusNew {
		t.Errorf("expected status new, got %s", rec.Status)
	}
	if len(rec.Items) != 2 {
		t.Errorf("expected 2 line items, got %d", len(rec.Items))
	}
	if rec.ShareCode == "" {
		t.Error("created record should carry a share code")
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc := newTestService(newFakeRecRepo(), 0.1)

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"blank name", func(in *CreateInput) { in.Name = "  " }},
		{"no client", func(in *CreateInput) { in.ClientID = 0 }},
		{"no items", func(in *CreateInput) { in.Items = nil }},
		{"zero quantity", func(in *CreateInput) { in.Items[0].Quantity = 0 }},
		{"negative price", func(in *CreateInput) { in.Items[0].UnitPrice = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			if _, err := svc.Create(context.Background(), input); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestGetByIDEnforcesOwnership(t *testing.T) {
	repo := newFakeRecRepo()
	svc := newTestService(repo, 0.1)

	rec, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.GetByID(context.Background(), 2, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign practitioner should get ErrNotFound, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), 1, rec.ID); err != nil {
		t.Errorf("owner should load the record, got %v", err)
	}
}

func TestRedeemMarksNewRecordViewed(t *testing.T) {
	repo := newFakeRecRepo()
	svc := newTestService(repo, 0.1)

	created, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatal(err)
	}

	redeemed, err := svc.Redeem(context.Background(), created.ShareCode)
	if err != nil {
		t.Fatal(err)
	}
	if redeemed.ID != created.ID {
		t.Fatalf("share code resolved to record %d, want %d", redeemed.ID, created.ID)
	}
	if redeemed.Status != domain.StatusViewed {
		t.Errorf("first redemption should mark the record viewed, got %s", redeemed.Status)
	}
	if redeemed.ViewedAt == nil {
		t.Error("viewed stamp missing")
	}

	again, err := svc.Redeem(context.Background(), created.ShareCode)
	if err != nil {
		t.Fatal(err)
	}
	if again.Status != domain.StatusViewed {
		t.Errorf("repeat redemption should leave the status alone, got %s", again.Status)
	}
}

func TestRedeemRejectsGarbageCodes(t *testing.T) {
	svc := newTestService(newFakeRecRepo(), 0.1)

	if _, err := svc.Redeem(context.Background(), "not-a-real-code"); !errors.Is(err, ErrInvalidShareCode) {
		t.Errorf("expected ErrInvalidShareCode, got %v", err)
	}
}

func TestRedeemSurvivesViewedStampFailure(t *testing.T) {
	repo := newFakeRecRepo()
	svc := newTestService(repo, 0.1)

	created, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatal(err)
	}

	repo.markErr = errors.New("database unavailable")
	redeemed, err := svc.Redeem(context.Background(), created.ShareCode)
	if err != nil {
		t.Fatalf("redeem should still succeed, got %v", err)
	}
	if redeemed.Status != domain.StatusNew {
		t.Errorf("unstamped record should report its stored status, got %s", redeemed.Status)
	}
}

func TestMarkPurchasedIsIdempotent(t *testing.T) {
	repo := newFakeRecRepo()
	svc := newTestService(repo, 0.1)

	created, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.MarkPurchased(context.Background(), created.ID); err != nil {
		t.Fatal(err)
	}

	// Repeat calls against an already-purchased record are a no-op even when
	// the repo would fail.
	repo.markErr = errors.New("database unavailable")
	if err := svc.MarkPurchased(context.Background(), created.ID); err != nil {
		t.Errorf("repeat purchase should be a no-op, got %v", err)
	}
}

func TestDeleteMapsMissingRecords(t *testing.T) {
	repo := newFakeRecRepo()
	svc := newTestService(repo, 0.1)

	if err := svc.Delete(context.Background(), 1, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	created, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(context.Background(), 1, created.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetByID(context.Background(), 1, created.ID); !errors.Is(err, ErrNotFound) {
		t.Error("deleted record should be gone")
	}
}
