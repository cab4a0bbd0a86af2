//go:build !integration

package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"vitalink/business/clients"
	"vitalink/business/recommendation"
	"vitalink/business/wizard"
	"vitalink/domain"

	"github.com/labstack/echo/v4"
)

type stubProvider struct{}

func (stubProvider) ListProducts(ctx context.Context, term string, limit int) ([]domain.CatalogItem, error) {
	return nil, nil
}

type stubDirectory struct{}

func (stubDirectory) SearchClients(ctx context.Context, practitionerID uint, term string) ([]domain.ClientSummary, error) {
	return nil, nil
}

func (stubDirectory) CreateClient(ctx context.Context, practitionerID uint, input clients.CreateClientInput) (domain.ClientSummary, error) {
	return domain.ClientSummary{}, nil
}

type stubStore struct{}

func (stubStore) Create(ctx context.Context, input recommendation.CreateInput) (domain.Recommendation, error) {
	return domain.Recommendation{}, nil
}

func TestClientSearchBindsTermField(t *testing.T) {
	m := wizard.NewManager(stubProvider{}, stubDirectory{}, stubStore{}, "https://store.example.com",
		wizard.WithResolverOptions(clients.WithResolverQuiescence(time.Hour)),
	)
	defer m.Stop()

	sess := m.Start(1, nil)
	h := NewWizardHandler(m, nil, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"term":"ana"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("practitioner_id", uint(1))
	c.SetParamNames("id")
	c.SetParamValues(sess.ID())

	if err := h.ClientSearch(c); err != nil {
		t.Fatal(err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := sess.ClientState().Query; got != "ana" {
		t.Errorf("expected recorded query %q, got %q", "ana", got)
	}
}
