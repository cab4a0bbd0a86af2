package wizard

import (
	"fmt"
	"strings"
	"vitalink/domain"
)

// BuildCartLink derives the storefront checkout URL from the submitted
// selection: one "variantId:quantity" pair per entry in insertion order,
// comma-joined under the store's /cart/ path. Entries whose item has no
// resolvable variant are dropped, not an error. When nothing resolves the
// link keeps its empty trailing segment and is returned as-is.
func BuildCartLink(storeURL string, entries []SelectionEntry) string {
	pairs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Item.VariantID == 0 {
			continue
		}
		pairs = append(pairs, fmt.Sprintf("%d:%d", entry.Item.VariantID, entry.Quantity))
	}

	return strings.TrimRight(storeURL, "/") + "/cart/" + strings.Join(pairs, ",")
}

// CartLinkFromRecord rebuilds the link for an already-stored recommendation,
// e.g. when a shared record is viewed.
func CartLinkFromRecord(storeURL string, items []domain.RecommendationItem) string {
	entries := make([]SelectionEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, SelectionEntry{
			Item: domain.CatalogItem{
				ID:        item.ProductID,
				VariantID: item.VariantID,
			},
			Quantity: item.Quantity,
		})
	}

	return BuildCartLink(storeURL, entries)
}
