package wizard

import (
	"errors"
	"vitalink/domain"
)

var ErrNotSelected = errors.New("product is not in the current selection")

// SelectionEntry wraps one chosen catalog item with its per-item fields.
type SelectionEntry struct {
	Item        domain.CatalogItem `json:"item"`
	Quantity    int                `json:"quantity"`
	DailyDosage string             `json:"daily_dosage"`
	Notes       string             `json:"notes"`
}

// SelectionSet is the ordered collection of chosen items. At most one entry
// exists per item id; toggling an already-selected item removes it, and
// re-adding starts over at quantity 1 with empty dosage and notes. Insertion
// order is preserved for display and for cart link generation. Not
// goroutine-safe on its own; the owning session serializes access.
type SelectionSet struct {
	entries []SelectionEntry
}

func NewSelectionSet() *SelectionSet {
	return &SelectionSet{}
}

// Toggle adds the item if absent and removes it if present. It reports
// whether the item is selected afterwards.
func (s *SelectionSet) Toggle(item domain.CatalogItem) bool {
	if idx := s.indexOf(item.ID); idx >= 0 {
		s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
		return false
	}

	s.entries = append(s.entries, SelectionEntry{
		Item:     item,
		Quantity: 1,
	})

	return true
}

// SetQuantity coerces values below 1 up to 1.
func (s *SelectionSet) SetQuantity(itemID uint64, quantity int) error {
	idx := s.indexOf(itemID)
	if idx < 0 {
		return ErrNotSelected
	}

	if quantity < 1 {
		quantity = 1
	}
	s.entries[idx].Quantity = quantity

	return nil
}

func (s *SelectionSet) SetDailyDosage(itemID uint64, dosage string) error {
	idx := s.indexOf(itemID)
	if idx < 0 {
		return ErrNotSelected
	}

	s.entries[idx].DailyDosage = dosage

	return nil
}

func (s *SelectionSet) SetNotes(itemID uint64, notes string) error {
	idx := s.indexOf(itemID)
	if idx < 0 {
		return ErrNotSelected
	}

	s.entries[idx].Notes = notes

	return nil
}

// Total is Σ(quantity × unit price) over the current entries.
func (s *SelectionSet) Total() float64 {
	var total float64
	for _, entry := range s.entries {
		total += float64(entry.Quantity) * entry.Item.Price
	}

	return total
}

// Entries returns a copy in insertion order.
func (s *SelectionSet) Entries() []SelectionEntry {
	return append([]SelectionEntry(nil), s.entries...)
}

func (s *SelectionSet) Len() int {
	return len(s.entries)
}

func (s *SelectionSet) IsEmpty() bool {
	return len(s.entries) == 0
}

func (s *SelectionSet) indexOf(itemID uint64) int {
	for i, entry := range s.entries {
		if entry.Item.ID == itemID {
			return i
		}
	}

	return -1
}
