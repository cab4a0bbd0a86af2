//go:build !integration

package practitioner

import (
	"context"
	"errors"
	"testing"
	"vitalink/domain"

	"github.com/go-playground/validator/v10"
)

type fakePractitionerRepo struct {
	byEmail map[string]domain.Practitioner
	created int
	nextID  uint
}

func newFakePractitionerRepo() *fakePractitionerRepo {
	return &fakePractitionerRepo{byEmail: map[string]domain.Practitioner{}}
}

func (f *fakePractitionerRepo) Create(ctx context.Context, p *domain.Practitioner) error {
	f.nextID++
	p.ID = f.nextID
	f.byEmail[p.Email] = *p
	f.created++
	return nil
}

func (f *fakePractitionerRepo) FindByID(ctx context.Context, id uint) (domain.Practitioner, error) {
	for _, p := range f.byEmail {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Practitioner{}, errors.New("practitioner not found")
}

func (f *fakePractitionerRepo) FindByEmail(ctx context.Context, email string) (domain.Practitioner, error) {
	p, ok := f.byEmail[email]
	if !ok {
		return domain.Practitioner{}, errors.New("practitioner not found")
	}
	return p, nil
}

func (f *fakePractitionerRepo) Approve(ctx context.Context, id uint) error {
	return nil
}

func TestEnsureAdminSeedsApprovedAdminAccount(t *testing.T) {
	repo := newFakePractitionerRepo()
	svc := NewPractitionerService(repo, validator.New())

	if err := svc.EnsureAdmin(context.Background(), "admin@vitalink.test", "changeme"); err != nil {
		t.Fatal(err)
	}

	admin, err := repo.FindByEmail(context.Background(), "admin@vitalink.test")
	if err != nil {
		t.Fatal(err)
	}
	if admin.Role != RoleAdmin {
		t.Errorf("expected role %s, got %s", RoleAdmin, admin.Role)
	}
	if !admin.IsApproved {
		t.Error("seeded admin must be able to log in without approval")
	}
}

func TestEnsureAdminLeavesExistingAccountUntouched(t *testing.T) {
	repo := newFakePractitionerRepo()
	svc := NewPractitionerService(repo, validator.New())

	for i := 0; i < 2; i++ {
		if err := svc.EnsureAdmin(context.Background(), "admin@vitalink.test", "changeme"); err != nil {
			t.Fatal(err)
		}
	}

	if repo.created != 1 {
		t.Errorf("expected a single seeded account, got %d", repo.created)
	}
}

func TestEnsureAdminSkipsWhenUnconfigured(t *testing.T) {
	repo := newFakePractitionerRepo()
	svc := NewPractitionerService(repo, validator.New())

	if err := svc.EnsureAdmin(context.Background(), "", ""); err != nil {
		t.Fatal(err)
	}

	if repo.created != 0 {
		t.Error("no account must be seeded without configuration")
	}
}
