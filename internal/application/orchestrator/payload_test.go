package orchestrator

import (
	"testing"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
)

func TestFormatPrice(t *testing.T) {
	cases := map[int64]string{
		1000: "1000",
		0:    "0",
		-50:  "0",
	}
	for price, want := range cases {
		if got := formatPrice(price); got != want {
			t.Errorf("formatPrice(%d) = %q, want %q", price, got, want)
		}
	}
}

func TestProductPayload(t *testing.T) {
	p := &entity.CanonicalProduct{
		ManageNumber:  "mn-1",
		TitleJA:       "商品タイトル",
		TaglineJA:     "キャッチコピー",
		DescriptionJA: "説明文",
		HideItem:      true,
		Variants: entity.JSONDoc[[]entity.Variant]{Value: []entity.Variant{
			{SKU: "sku-1", PriceJPY: 1990},
		}},
		Images: entity.JSONDoc[[]string]{Value: []string{"https://cabinet.example/a.jpg"}},
	}

	payload := productPayload(p)
	if payload["manageNumber"] != "mn-1" {
		t.Errorf("expected manageNumber mn-1, got %v", payload["manageNumber"])
	}
	if payload["hideItem"] != true {
		t.Errorf("expected hideItem true, got %v", payload["hideItem"])
	}

	variants, ok := payload["variants"].([]rakutenVariant)
	if !ok || len(variants) != 1 || variants[0].StandardPrice != "1990" {
		t.Errorf("unexpected variants: %#v", payload["variants"])
	}

	images, ok := payload["images"].([]rakutenImage)
	if !ok || len(images) != 1 || images[0].Location != "https://cabinet.example/a.jpg" {
		t.Errorf("unexpected images: %#v", payload["images"])
	}
}

func TestVariantPricePayload(t *testing.T) {
	variants := []entity.Variant{
		{SKU: "sku-1", PriceJPY: 500},
		{SKU: "sku-2", PriceJPY: 1200},
	}
	out := variantPricePayload(variants)
	if len(out) != 2 || out[0].ID != "sku-1" || out[0].StandardPrice != "500" {
		t.Errorf("unexpected price payload: %#v", out)
	}
}

func TestDecodeJSONResult(t *testing.T) {
	var out struct {
		HideItem bool `json:"hideItem"`
	}
	if err := decodeJSONResult([]byte(`{"hideItem":true}`), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.HideItem {
		t.Error("expected hideItem true")
	}

	if err := decodeJSONResult(nil, &out); err != nil {
		t.Errorf("expected nil error for empty input, got %v", err)
	}
}
