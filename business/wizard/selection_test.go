package wizard

import (
	"testing"
	"vitalink/domain"
)

func item(id uint64, price float64) domain.CatalogItem {
	return domain.CatalogItem{ID: id, Title: "Product", Price: price, VariantID: id * 10}
}

func TestToggleIsIdempotentPerItem(t *testing.T) {
	s := NewSelectionSet()

	if selected := s.Toggle(item(1, 10)); !selected {
		t.Fatal("first toggle should select the item")
	}
	if selected := s.Toggle(item(1, 10)); selected {
		t.Fatal("second toggle should deselect the item")
	}
	if !s.IsEmpty() {
		t.Fatalf("expected empty selection, got %d entries", s.Len())
	}
}

func TestToggleResetsPerItemFields(t *testing.T) {
	s := NewSelectionSet()

	s.Toggle(item(1, 10))
	if err := s.SetQuantity(1, 4); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDailyDosage(1, "2 capsules with breakfast"); err != nil {
		t.Fatal(err)
	}

	s.Toggle(item(1, 10))
	s.Toggle(item(1, 10))

	entries := s.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Quantity != 1 || entries[0].DailyDosage != "" {
		t.Errorf("re-added item should start fresh, got quantity=%d dosage=%q",
			entries[0].Quantity, entries[0].DailyDosage)
	}
}

func TestInsertionOrderIsPreserved(t *testing.T) {
	s := NewSelectionSet()

	s.Toggle(item(3, 1))
	s.Toggle(item(1, 1))
	s.Toggle(item(2, 1))

	entries := s.Entries()
	want := []uint64{3, 1, 2}
	for i, entry := range entries {
		if entry.Item.ID != want[i] {
			t.Fatalf("entry %d: expected item %d, got %d", i, want[i], entry.Item.ID)
		}
	}
}

func TestSetQuantityCoercesBelowOne(t *testing.T) {
	s := NewSelectionSet()
	s.Toggle(item(1, 10))

	if err := s.SetQuantity(1, 0); err != nil {
		t.Fatal(err)
	}
	if got := s.Entries()[0].Quantity; got != 1 {
		t.Errorf("quantity 0 should coerce to 1, got %d", got)
	}

	if err := s.SetQuantity(1, -5); err != nil {
		t.Fatal(err)
	}
	if got := s.Entries()[0].Quantity; got != 1 {
		t.Errorf("negative quantity should coerce to 1, got %d", got)
	}
}

func TestUpdateUnknownItemFails(t *testing.T) {
	s := NewSelectionSet()

	if err := s.SetQuantity(99, 2); err != ErrNotSelected {
		t.Errorf("expected ErrNotSelected, got %v", err)
	}
	if err := s.SetNotes(99, "note"); err != ErrNotSelected {
		t.Errorf("expected ErrNotSelected, got %v", err)
	}
}

func TestTotalSumsQuantityTimesPrice(t *testing.T) {
	s := NewSelectionSet()

	s.Toggle(item(1, 50.00))
	s.Toggle(item(2, 30.00))
	if err := s.SetQuantity(1, 2); err != nil {
		t.Fatal(err)
	}

	if got := s.Total(); got != 130.00 {
		t.Errorf("expected total 130.00, got %v", got)
	}
}
