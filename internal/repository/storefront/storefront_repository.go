package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"vitalink/domain"
)

type StorefrontConfig struct {
	APIBaseURL string
	APIKey     string
	Timeout    time.Duration
}

// StorefrontRepository talks to the external storefront product API. It is the
// only place that sees the storefront's raw payloads; everything above works
// with domain.CatalogItem.
type StorefrontRepository struct {
	cfg    StorefrontConfig
	client *http.Client
}

func NewStorefrontRepository(cfg StorefrontConfig) *StorefrontRepository {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &StorefrontRepository{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// listResponse mirrors the storefront envelope: a success flag plus either
// data or a message.
type listResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    []json.RawMessage `json:"data"`
}

type getResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (r *StorefrontRepository) ListProducts(ctx context.Context, term string, limit int) ([]domain.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	endpoint := fmt.Sprintf("%s/products?limit=%d", strings.TrimRight(r.cfg.APIBaseURL, "/"), limit)
	if term = strings.TrimSpace(term); term != "" {
		endpoint += "&search=" + url.QueryEscape(term)
	}

	body, err := r.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode product list: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("storefront rejected product list: %s", resp.Message)
	}

	items := make([]domain.CatalogItem, 0, len(resp.Data))
	for _, raw := range resp.Data {
		item, err := normalizeProduct(raw)
		if err != nil {
			// One malformed product should not sink the whole page.
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

func (r *StorefrontRepository) GetProduct(ctx context.Context, id uint64) (domain.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return domain.CatalogItem{}, fmt.Errorf("context error: %w", err)
	}

	endpoint := fmt.Sprintf("%s/products/%d", strings.TrimRight(r.cfg.APIBaseURL, "/"), id)

	body, err := r.get(ctx, endpoint)
	if err != nil {
		return domain.CatalogItem{}, err
	}

	var resp getResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.CatalogItem{}, fmt.Errorf("failed to decode product: %w", err)
	}
	if !resp.Success {
		return domain.CatalogItem{}, fmt.Errorf("storefront rejected product fetch: %s", resp.Message)
	}

	return normalizeProduct(resp.Data)
}

func (r *StorefrontRepository) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build storefront request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	}

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storefront request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read storefront response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("storefront returned status %d", res.StatusCode)
	}

	return body, nil
}
