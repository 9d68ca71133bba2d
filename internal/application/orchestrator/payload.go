package orchestrator

import (
	"encoding/json"
	"fmt"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
)

// rakutenVariant is the wire shape of one Rakuten item variant: a
// stringified, non-negative, round-to-nearest-10 JPY price (§3).
type rakutenVariant struct {
	ID            string `json:"id"`
	StandardPrice string `json:"standardPrice"`
}

// rakutenImage is one Cabinet-backed image reference on the item payload
// (§4.3 step 8).
type rakutenImage struct {
	Type     string `json:"type"`
	Location string `json:"location"`
	Alt      string `json:"alt,omitempty"`
}

// productPayload converts a canonical product into the full Rakuten
// productUpsert request body (§4.6 register step 2).
func productPayload(p *entity.CanonicalProduct) map[string]interface{} {
	variants := make([]rakutenVariant, 0, len(p.Variants.Value))
	for _, v := range p.Variants.Value {
		variants = append(variants, rakutenVariant{ID: v.SKU, StandardPrice: formatPrice(v.PriceJPY)})
	}

	images := make([]rakutenImage, 0, len(p.Images.Value))
	for _, loc := range p.Images.Value {
		images = append(images, rakutenImage{Type: "CABINET", Location: loc, Alt: p.TitleJA})
	}

	return map[string]interface{}{
		"manageNumber": p.ManageNumber,
		"title":        p.TitleJA,
		"catchphrase":  p.TaglineJA,
		"description":  p.DescriptionJA,
		"variants":     variants,
		"images":       images,
		"hideItem":     p.HideItem,
		"itemType":     "NORMAL",
		"unlimitedInventoryFlag": false,
	}
}

// variantPricePayload converts variants into the price-only PATCH body
// used when a product is blocked (§4.6 register step 1).
func variantPricePayload(variants []entity.Variant) []rakutenVariant {
	out := make([]rakutenVariant, 0, len(variants))
	for _, v := range variants {
		out = append(out, rakutenVariant{ID: v.SKU, StandardPrice: formatPrice(v.PriceJPY)})
	}
	return out
}

func formatPrice(priceJPY int64) string {
	if priceJPY < 0 {
		priceJPY = 0
	}
	return fmt.Sprintf("%d", priceJPY)
}

func decodeJSONResult(data []byte, out interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
