package domain

// CatalogItem is the canonical product shape the wizard works with. The
// storefront returns inconsistently cased payloads; they are normalized into
// this struct at the repository boundary and never inspected raw above it.
// Items are immutable within a wizard session.
type CatalogItem struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	// VariantID is the default purchasable variant. Zero means the item has
	// no resolvable variant and is dropped from cart links.
	VariantID uint64 `json:"variant_id"`
}
