package clients

import (
	"context"
	"errors"
	"testing"
	"vitalink/domain"

	"github.com/go-playground/validator/v10"
)

type fakeClientRepo struct {
	clients map[uint64]domain.Client
	nextID  uint64
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[uint64]domain.Client)}
}

func (r *fakeClientRepo) Create(ctx context.Context, client *domain.Client) error {
	r.nextID++
	client.ID = r.nextID
	r.clients[client.ID] = *client
	return nil
}

func (r *fakeClientRepo) FindByID(ctx context.Context, practitionerID uint, id uint64) (domain.Client, error) {
	c, ok := r.clients[id]
	if !ok || c.PractitionerID != practitionerID {
		return domain.Client{}, errors.New("client not found")
	}
	return c, nil
}

func (r *fakeClientRepo) FindByEmail(ctx context.Context, practitionerID uint, email string) (domain.Client, error) {
	for _, c := range r.clients {
		if c.PractitionerID == practitionerID && c.Email == email {
			return c, nil
		}
	}
	return domain.Client{}, errors.New("client not found")
}

func (r *fakeClientRepo) Search(ctx context.Context, practitionerID uint, term string, limit int) ([]domain.Client, error) {
	var out []domain.Client
	for _, c := range r.clients {
		if c.PractitionerID == practitionerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeClientRepo) List(ctx context.Context, practitionerID uint, filter domain.ClientFilter, page, pageSize int) ([]domain.Client, int64, error) {
	out, _ := r.Search(ctx, practitionerID, "", 0)
	return out, int64(len(out)), nil
}

func TestSearchRejectsShortTerms(t *testing.T) {
	svc := NewClientService(newFakeClientRepo(), validator.New())

	if _, err := svc.SearchClients(context.Background(), 1, " a "); !errors.Is(err, ErrTermTooShort) {
		t.Errorf("expected ErrTermTooShort, got %v", err)
	}
}

func TestCreateClientValidatesFieldByField(t *testing.T) {
	svc := NewClientService(newFakeClientRepo(), validator.New())

	_, err := svc.CreateClient(context.Background(), 1, CreateClientInput{
		Email:     "not-an-email",
		FirstName: "",
		LastName:  "Costa",
	})

	var fieldErrs FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if _, ok := fieldErrs["email"]; !ok {
		t.Error("expected an email field error")
	}
	if _, ok := fieldErrs["first_name"]; !ok {
		t.Error("expected a first_name field error")
	}
	if _, ok := fieldErrs["last_name"]; ok {
		t.Error("last_name was valid and should carry no error")
	}
}

func TestCreateClientRejectsDuplicateEmail(t *testing.T) {
	svc := NewClientService(newFakeClientRepo(), validator.New())

	input := CreateClientInput{Email: "ana@example.com", FirstName: "Ana", LastName: "Costa"}
	if _, err := svc.CreateClient(context.Background(), 1, input); err != nil {
		t.Fatal(err)
	}

	_, err := svc.CreateClient(context.Background(), 1, input)
	var fieldErrs FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if _, ok := fieldErrs["email"]; !ok {
		t.Error("duplicate email should come back as an email field error")
	}
}

func TestCreateClientTrimsFields(t *testing.T) {
	repo := newFakeClientRepo()
	svc := NewClientService(repo, validator.New())

	summary, err := svc.CreateClient(context.Background(), 1, CreateClientInput{
		Email:     "ana@example.com",
		FirstName: "  Ana ",
		LastName:  " Costa ",
	})
	if err != nil {
		t.Fatal(err)
	}

	if summary.FirstName != "Ana" || summary.LastName != "Costa" {
		t.Errorf("expected trimmed names, got %q %q", summary.FirstName, summary.LastName)
	}
	if summary.DisplayName() != "Ana Costa" {
		t.Errorf("unexpected display name %q", summary.DisplayName())
	}
}

func TestGetClientScopesToPractitioner(t *testing.T) {
	repo := newFakeClientRepo()
	svc := NewClientService(repo, validator.New())

	summary, err := svc.CreateClient(context.Background(), 1, CreateClientInput{
		Email:     "ana@example.com",
		FirstName: "Ana",
		LastName:  "Costa",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.GetClient(context.Background(), 2, summary.ID); err == nil {
		t.Error("foreign practitioner should not load the client")
	}
	if _, err := svc.GetClient(context.Background(), 1, summary.ID); err != nil {
		t.Errorf("owner should load the client, got %v", err)
	}
}
