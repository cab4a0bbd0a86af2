package storefront

import (
	"encoding/json"
	"testing"
)

func TestNormalizeProductFoldsFieldCasing(t *testing.T) {
	payloads := []string{
		`{"id": 1, "title": "Magnesium", "price": 50, "imageUrl": "https://cdn.example.com/m.jpg"}`,
		`{"ID": 1, "Title": "Magnesium", "Price": 50, "image_url": "https://cdn.example.com/m.jpg"}`,
		`{"product_id": 1, "productName": "Magnesium", "unit_price": 50, "main_image": "https://cdn.example.com/m.jpg"}`,
	}

	for _, payload := range payloads {
		item, err := normalizeProduct(json.RawMessage(payload))
		if err != nil {
			t.Fatalf("%s: %v", payload, err)
		}
		if item.ID != 1 {
			t.Errorf("%s: expected id 1, got %d", payload, item.ID)
		}
		if item.Title != "Magnesium" {
			t.Errorf("%s: expected title Magnesium, got %q", payload, item.Title)
		}
		if item.Price != 50 {
			t.Errorf("%s: expected price 50, got %v", payload, item.Price)
		}
		if item.ImageURL != "https://cdn.example.com/m.jpg" {
			t.Errorf("%s: expected image url, got %q", payload, item.ImageURL)
		}
	}
}

func TestNormalizeProductParsesStringPrices(t *testing.T) {
	item, err := normalizeProduct(json.RawMessage(`{"id": 1, "price": " 12.50 "}`))
	if err != nil {
		t.Fatal(err)
	}
	if item.Price != 12.50 {
		t.Errorf("expected 12.50, got %v", item.Price)
	}
}

func TestNormalizeProductClampsNegativePrices(t *testing.T) {
	item, err := normalizeProduct(json.RawMessage(`{"id": 1, "price": -5}`))
	if err != nil {
		t.Fatal(err)
	}
	if item.Price != 0 {
		t.Errorf("negative price should clamp to 0, got %v", item.Price)
	}
}

func TestNormalizeProductAcceptsImageObjects(t *testing.T) {
	item, err := normalizeProduct(json.RawMessage(`{"id": 1, "image": {"src": "https://cdn.example.com/m.jpg"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if item.ImageURL != "https://cdn.example.com/m.jpg" {
		t.Errorf("expected image src, got %q", item.ImageURL)
	}
}

func TestNormalizeProductResolvesVariants(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    uint64
	}{
		{"variants array", `{"id": 1, "variants": [{"id": 111}, {"id": 222}]}`, 111},
		{"flat variant id", `{"id": 1, "variant_id": 333}`, 333},
		{"default variant id", `{"id": 1, "defaultVariantId": 444}`, 444},
		{"no variant", `{"id": 1}`, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item, err := normalizeProduct(json.RawMessage(tc.payload))
			if err != nil {
				t.Fatal(err)
			}
			if item.VariantID != tc.want {
				t.Errorf("expected variant %d, got %d", tc.want, item.VariantID)
			}
		})
	}
}

func TestNormalizeProductRequiresAnID(t *testing.T) {
	if _, err := normalizeProduct(json.RawMessage(`{"title": "Orphan"}`)); err == nil {
		t.Error("payload without an id should be rejected")
	}
	if _, err := normalizeProduct(json.RawMessage(`"not an object"`)); err == nil {
		t.Error("non-object payload should be rejected")
	}
}
