package catalog

import (
	"context"
	"sync"
	"time"
	"vitalink/domain"
	"vitalink/pkg/debounce"
	"vitalink/pkg/logger"
	"vitalink/pkg/metrics"
)

// ProductProvider contract interface
type ProductProvider interface {
	ListProducts(ctx context.Context, term string, limit int) ([]domain.CatalogItem, error)
}

const (
	// PageSize is fixed; the storefront UI renders 20-item pages.
	PageSize = 20
	// CategoryAll is the no-op category filter.
	CategoryAll = "All"

	searchQuiescence  = 300 * time.Millisecond
	defaultFetchLimit = 250
	fetchTimeout      = 10 * time.Second
)

// SearchIndex holds the full fetched product set for the current search term
// and applies category filtering and pagination in memory. Searches are
// debounced: a keystroke schedules a fetch that only fires after 300 ms of
// quiescence, and a superseded fetch's result is discarded by generation
// token even if it arrives late.
type SearchIndex struct {
	mu         sync.Mutex
	provider   ProductProvider
	deb        *debounce.Debouncer
	fetchLimit int

	term     string
	category string
	page     int
	items    []domain.CatalogItem
	pending  bool
	degraded bool
}

type Option func(*SearchIndex)

// WithQuiescence overrides the debounce window; tests shrink it.
func WithQuiescence(window time.Duration) Option {
	return func(ix *SearchIndex) {
		ix.deb = debounce.New(window)
	}
}

func WithFetchLimit(limit int) Option {
	return func(ix *SearchIndex) {
		ix.fetchLimit = limit
	}
}

func NewSearchIndex(provider ProductProvider, opts ...Option) *SearchIndex {
	ix := &SearchIndex{
		provider:   provider,
		deb:        debounce.New(searchQuiescence),
		fetchLimit: defaultFetchLimit,
		category:   CategoryAll,
		page:       1,
	}

	for _, opt := range opts {
		opt(ix)
	}

	return ix
}

// Search records a keystroke. The fetch is issued only after the quiescence
// window passes without another keystroke; an empty term fetches the
// server-ordered default page. Changing the term resets pagination.
func (ix *SearchIndex) Search(term string) {
	ix.mu.Lock()
	ix.term = term
	ix.page = 1
	ix.pending = true
	ix.degraded = false
	ix.mu.Unlock()

	ix.deb.Trigger(func(gen uint64) {
		ix.fetch(term, gen)
	})
}

func (ix *SearchIndex) fetch(term string, gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	start := time.Now()
	items, err := ix.provider.ListProducts(ctx, term, ix.fetchLimit)
	metrics.CatalogSearchLatency.Observe(time.Since(start).Seconds())

	if !ix.deb.Live(gen) {
		// A newer keystroke superseded this fetch; its result must not be
		// applied.
		return
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	// A keystroke may have superseded this fetch between the check above and
	// taking the lock.
	if !ix.deb.Live(gen) {
		return
	}

	ix.pending = false

	if err != nil {
		logger.Warn("catalog search failed", "term", term, "error", err)
		ix.items = nil
		ix.degraded = true
		return
	}

	ix.items = items
	ix.degraded = false
}

// FilterByCategory applies purely in memory over the last fetched set and
// resets pagination. When the index is in the degraded state the current term
// is refetched, which is how a failed search recovers without a keystroke.
func (ix *SearchIndex) FilterByCategory(tag string) {
	if tag == "" {
		tag = CategoryAll
	}

	ix.mu.Lock()
	ix.category = tag
	ix.page = 1
	retry := ix.degraded
	term := ix.term
	if retry {
		ix.pending = true
		ix.degraded = false
	}
	ix.mu.Unlock()

	if retry {
		ix.deb.Trigger(func(gen uint64) {
			ix.fetch(term, gen)
		})
	}
}

func (ix *SearchIndex) SetPage(page int) {
	if page < 1 {
		page = 1
	}

	ix.mu.Lock()
	ix.page = page
	ix.mu.Unlock()
}

// Find returns an item from the last fetched set by id, regardless of the
// active category filter or page.
func (ix *SearchIndex) Find(productID uint64) (domain.CatalogItem, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, item := range ix.items {
		if item.ID == productID {
			return item, true
		}
	}

	return domain.CatalogItem{}, false
}

// Categories returns the distinct category tags of the fetched set, with the
// no-op filter first.
func (ix *SearchIndex) Categories() []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	seen := map[string]bool{}
	tags := []string{CategoryAll}
	for _, item := range ix.items {
		if item.Category == "" || seen[item.Category] {
			continue
		}
		seen[item.Category] = true
		tags = append(tags, item.Category)
	}

	return tags
}

// PageView is the paged, filtered slice of the index plus enough state for a
// caller to render it.
type PageView struct {
	Term       string               `json:"term"`
	Category   string               `json:"category"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalItems int                  `json:"total_items"`
	TotalPages int                  `json:"total_pages"`
	Pending    bool                 `json:"pending"`
	Degraded   bool                 `json:"degraded"`
	Items      []domain.CatalogItem `json:"items"`
}

func (ix *SearchIndex) View() PageView {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	filtered := ix.items
	if ix.category != CategoryAll {
		filtered = make([]domain.CatalogItem, 0, len(ix.items))
		for _, item := range ix.items {
			if item.Category == ix.category {
				filtered = append(filtered, item)
			}
		}
	}

	total := len(filtered)
	totalPages := (total + PageSize - 1) / PageSize

	start := (ix.page - 1) * PageSize
	var pageItems []domain.CatalogItem
	if start < total {
		end := start + PageSize
		if end > total {
			end = total
		}
		pageItems = append([]domain.CatalogItem(nil), filtered[start:end]...)
	}

	return PageView{
		Term:       ix.term,
		Category:   ix.category,
		Page:       ix.page,
		PageSize:   PageSize,
		TotalItems: total,
		TotalPages: totalPages,
		Pending:    ix.pending,
		Degraded:   ix.degraded,
		Items:      pageItems,
	}
}
