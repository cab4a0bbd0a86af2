package storefront

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"vitalink/domain"
)

// The storefront API is not consistent about field casing: the same product
// can arrive as {"id", "title", "imageUrl"} or {"ID", "Title", "image_url"}
// depending on which upstream system produced it. normalizeProduct folds keys
// (lowercase, underscores stripped) and resolves each canonical field from a
// list of known aliases, so nothing above this file ever branches on raw
// field presence.

func foldKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "")
}

func foldMap(raw map[string]json.RawMessage) map[string]json.RawMessage {
	folded := make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		folded[foldKey(k)] = v
	}
	return folded
}

func pickString(m map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := m[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return ""
}

// pickNumber tolerates numbers serialized as JSON numbers or as strings
// ("12.50"), both of which the storefront emits.
func pickNumber(m map[string]json.RawMessage, keys ...string) (float64, bool) {
	for _, key := range keys {
		raw, ok := m[key]
		if !ok {
			continue
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			return f, true
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func pickID(m map[string]json.RawMessage, keys ...string) uint64 {
	f, ok := pickNumber(m, keys...)
	if !ok || f < 0 {
		return 0
	}
	return uint64(f)
}

// pickImage accepts either a plain URL string or an object like {"src": url}.
func pickImage(m map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := m[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err == nil {
			if src := pickString(foldMap(obj), "src", "url"); src != "" {
				return src
			}
		}
	}
	return ""
}

// pickVariant resolves the default purchasable variant: either the first
// element of a variants array or a flat default-variant id field.
func pickVariant(m map[string]json.RawMessage) uint64 {
	if raw, ok := m["variants"]; ok {
		var variants []map[string]json.RawMessage
		if err := json.Unmarshal(raw, &variants); err == nil && len(variants) > 0 {
			if id := pickID(foldMap(variants[0]), "id", "variantid"); id != 0 {
				return id
			}
		}
	}

	return pickID(m, "variantid", "defaultvariantid")
}

func normalizeProduct(raw json.RawMessage) (domain.CatalogItem, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return domain.CatalogItem{}, errors.New("product payload is not an object")
	}

	m := foldMap(fields)

	id := pickID(m, "id", "productid")
	if id == 0 {
		return domain.CatalogItem{}, errors.New("product payload has no id")
	}

	price, _ := pickNumber(m, "price", "unitprice", "normalprice")
	if price < 0 {
		price = 0
	}

	item := domain.CatalogItem{
		ID:          id,
		Title:       pickString(m, "title", "name", "productname"),
		Description: pickString(m, "description", "shortdescription"),
		ImageURL:    pickImage(m, "image", "imageurl", "mainimage"),
		Category:    pickString(m, "category", "productcategory", "categoryname"),
		Price:       price,
		VariantID:   pickVariant(m),
	}

	return item, nil
}
