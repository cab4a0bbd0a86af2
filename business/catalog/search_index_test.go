//go:build !integration

package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"vitalink/domain"
)

type recordingProvider struct {
	mu    sync.Mutex
	terms []string
	items []domain.CatalogItem
	err   error
	delay time.Duration
}

func (p *recordingProvider) ListProducts(ctx context.Context, term string, limit int) ([]domain.CatalogItem, error) {
	p.mu.Lock()
	p.terms = append(p.terms, term)
	items, err, delay := p.items, p.err, p.delay
	p.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	return items, err
}

func (p *recordingProvider) fetchedTerms() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.terms...)
}

func (p *recordingProvider) setResult(items []domain.CatalogItem, err error) {
	p.mu.Lock()
	p.items, p.err = items, err
	p.mu.Unlock()
}

func (p *recordingProvider) setDelay(delay time.Duration) {
	p.mu.Lock()
	p.delay = delay
	p.mu.Unlock()
}

func products() []domain.CatalogItem {
	return []domain.CatalogItem{
		{ID: 1, Title: "Magnesium Glycinate", Category: "Minerals", Price: 50},
		{ID: 2, Title: "Magnesium Citrate", Category: "Minerals", Price: 40},
		{ID: 3, Title: "Vitamin D3", Category: "Vitamins", Price: 30},
	}
}

const quiescence = 30 * time.Millisecond

func settle() {
	time.Sleep(200 * time.Millisecond)
}

func TestRapidKeystrokesCauseOneFetch(t *testing.T) {
	provider := &recordingProvider{items: products()}
	ix := NewSearchIndex(provider, WithQuiescence(quiescence))

	for _, term := range []string{"a", "an", "ana"} {
		ix.Search(term)
		time.Sleep(5 * time.Millisecond)
	}

	settle()

	terms := provider.fetchedTerms()
	if len(terms) != 1 {
		t.Fatalf("expected 1 fetch, got %d (%v)", len(terms), terms)
	}
	if terms[0] != "ana" {
		t.Errorf("expected fetch for final term %q, got %q", "ana", terms[0])
	}

	view := ix.View()
	if view.Pending {
		t.Error("view should not be pending after the fetch lands")
	}
	if view.TotalItems != 3 {
		t.Errorf("expected 3 items, got %d", view.TotalItems)
	}
}

func TestStaleFetchResultIsDiscarded(t *testing.T) {
	// The first fetch is slow and fails; the second is fast and succeeds. The
	// slow one completes last, and applying it would flip the index back to
	// degraded.
	provider := &recordingProvider{err: errors.New("storefront down"), delay: 150 * time.Millisecond}
	ix := NewSearchIndex(provider, WithQuiescence(10*time.Millisecond))

	ix.Search("slow")
	// Wait for the slow fetch to be in flight, then supersede it.
	time.Sleep(40 * time.Millisecond)
	provider.setResult(products(), nil)
	provider.setDelay(0)
	ix.Search("fast")

	time.Sleep(300 * time.Millisecond)

	view := ix.View()
	if view.Term != "fast" {
		t.Errorf("expected term %q, got %q", "fast", view.Term)
	}
	if view.Degraded {
		t.Error("stale failed fetch must not overwrite the fresh result")
	}
	if view.TotalItems != 3 {
		t.Errorf("expected 3 items from the fresh fetch, got %d", view.TotalItems)
	}
}

func TestFetchSupersededWhileWaitingForLockIsDiscarded(t *testing.T) {
	provider := &recordingProvider{items: products()}
	ix := NewSearchIndex(provider, WithQuiescence(time.Hour))

	gen := ix.deb.Trigger(func(uint64) {})

	ix.mu.Lock()
	done := make(chan struct{})
	go func() {
		ix.fetch("ana", gen)
		close(done)
	}()
	// Let the fetch pass its first liveness check and block on the lock, then
	// supersede it before releasing.
	time.Sleep(20 * time.Millisecond)
	ix.deb.Cancel()
	ix.mu.Unlock()
	<-done

	if view := ix.View(); view.TotalItems != 0 {
		t.Errorf("superseded fetch must not apply its items, got %d", view.TotalItems)
	}
}

func TestCategoryFilterAppliesInMemoryAndResetsPage(t *testing.T) {
	provider := &recordingProvider{items: products()}
	ix := NewSearchIndex(provider, WithQuiescence(quiescence))

	ix.Search("")
	settle()

	ix.SetPage(2)
	ix.FilterByCategory("Minerals")

	if got := len(provider.fetchedTerms()); got != 1 {
		t.Fatalf("category filter must not refetch, got %d fetches", got)
	}

	view := ix.View()
	if view.Page != 1 {
		t.Errorf("filter change should reset to page 1, got %d", view.Page)
	}
	if view.TotalItems != 2 {
		t.Errorf("expected 2 minerals, got %d", view.TotalItems)
	}
	for _, item := range view.Items {
		if item.Category != "Minerals" {
			t.Errorf("unexpected item %q in filtered view", item.Title)
		}
	}
}

func TestDegradedIndexRecoversOnFilterChange(t *testing.T) {
	provider := &recordingProvider{err: errors.New("storefront down")}
	ix := NewSearchIndex(provider, WithQuiescence(quiescence))

	ix.Search("mag")
	settle()

	if view := ix.View(); !view.Degraded {
		t.Fatal("failed fetch should degrade the index")
	}

	provider.setResult(products(), nil)
	ix.FilterByCategory(CategoryAll)
	settle()

	view := ix.View()
	if view.Degraded {
		t.Error("filter change should refetch a degraded index")
	}
	if view.TotalItems != 3 {
		t.Errorf("expected 3 items after recovery, got %d", view.TotalItems)
	}

	terms := provider.fetchedTerms()
	if len(terms) != 2 || terms[1] != "mag" {
		t.Errorf("recovery should refetch the current term, got %v", terms)
	}
}

func TestCategoriesListsDistinctTagsWithAllFirst(t *testing.T) {
	provider := &recordingProvider{items: products()}
	ix := NewSearchIndex(provider, WithQuiescence(quiescence))

	ix.Search("")
	settle()

	got := ix.Categories()
	want := []string{CategoryAll, "Minerals", "Vitamins"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestFindIgnoresFilterAndPage(t *testing.T) {
	provider := &recordingProvider{items: products()}
	ix := NewSearchIndex(provider, WithQuiescence(quiescence))

	ix.Search("")
	settle()

	ix.FilterByCategory("Vitamins")

	item, ok := ix.Find(1)
	if !ok {
		t.Fatal("expected to find item 1 despite the category filter")
	}
	if item.Title != "Magnesium Glycinate" {
		t.Errorf("unexpected item %q", item.Title)
	}
}
