// Package materializer turns filtered origin-listing JSON into a
// translated, priced, imaged canonical product ready for marketplace
// registration (§4.3).
package materializer

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"

	"github.com/shopspring/decimal"

	"github.com/kirimku/smartseller-backend/internal/application/imagepipeline"
	"github.com/kirimku/smartseller-backend/internal/application/translator"
	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	domerrors "github.com/kirimku/smartseller-backend/internal/domain/errors"
	"github.com/kirimku/smartseller-backend/internal/domain/repository"
	"github.com/kirimku/smartseller-backend/internal/infrastructure/logger"
	"github.com/kirimku/smartseller-backend/pkg/metrics"
)

const defaultGenreID = "201198"

// Materializer turns one or more harvested OriginProducts into persisted
// CanonicalProducts, running translation, pricing, and image processing
// per product (§4.3).
type Materializer struct {
	origin    repository.OriginProductRepository
	canonical repository.CanonicalProductRepository
	category  repository.CategoryRepository
	pricing   repository.PricingSettingsRepository
	tr        *translator.Translator
	images    *imagepipeline.Pipeline
	content   ContentGenerator
}

func New(
	origin repository.OriginProductRepository,
	canonical repository.CanonicalProductRepository,
	category repository.CategoryRepository,
	pricing repository.PricingSettingsRepository,
	tr *translator.Translator,
	images *imagepipeline.Pipeline,
	content ContentGenerator,
) *Materializer {
	return &Materializer{
		origin:    origin,
		canonical: canonical,
		category:  category,
		pricing:   pricing,
		tr:        tr,
		images:    images,
		content:   content,
	}
}

// ItemResult is one product_id's materialization outcome, kept isolated
// from its siblings so one failure never poisons the batch (§5, §7).
type ItemResult struct {
	ProductID string
	Product   *entity.CanonicalProduct
	Err       error
}

// MaterializeAll runs Materialize for each product_id, committing per
// product and isolating failures (§4.3 step 10, §5).
func (m *Materializer) MaterializeAll(ctx context.Context, productIDs []string) []ItemResult {
	results := make([]ItemResult, 0, len(productIDs))
	for _, id := range productIDs {
		product, err := m.Materialize(ctx, id)
		if err != nil {
			logger.MaterializerLogger().Err(err).Str("product_id", id).Msg("materialization failed")
			metrics.Global().RecordMaterialization("error")
		} else {
			metrics.Global().RecordMaterialization("success")
		}
		results = append(results, ItemResult{ProductID: id, Product: product, Err: err})
	}
	return results
}

// Materialize runs the 10-step pipeline for one product_id (§4.3).
func (m *Materializer) Materialize(ctx context.Context, productID string) (*entity.CanonicalProduct, error) {
	origin, err := m.origin.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	// Step 1: skip protection — reuse images/product_image_code from an
	// existing canonical row without re-running the image pipeline.
	existing, _ := m.canonical.GetByManageNumber(ctx, productID)

	var detail map[string]interface{}
	if len(origin.DetailJSON) > 0 {
		if err := json.Unmarshal(origin.DetailJSON, &detail); err != nil {
			return nil, domerrors.NewInternal("materializer_detail_decode", "decode origin detail_json", err)
		}
	}
	if detail == nil {
		detail = map[string]interface{}{}
	}

	// Step 2: category resolution.
	genreID, rCatID := m.resolveCategory(ctx, origin)

	// Step 3: title & description generation.
	sourceTitle := origin.TitleT
	if sourceTitle == "" {
		sourceTitle = origin.TitleC
	}
	content, err := m.content.Generate(ctx, sourceTitle, detail)
	if err != nil {
		logger.MaterializerLogger().Err(err).Str("product_id", productID).Msg("content generation failed")
		content = ContentResult{Title: sourceTitle}
	}

	// Step 4: variant selectors.
	specs := extractSpecification(detail)
	selectors := buildVariantSelectors(ctx, m.tr, specs)

	// Step 5 & 6 & 7: cartesian materialization, per-SKU price, inventory.
	inventoryRows := extractInventory(detail)
	variants, inventory := m.buildVariants(ctx, origin, selectors, inventoryRows)

	// Step 8: image pipeline, unless skip-protected.
	images, err := m.resolveImages(ctx, existing, productID, detail)
	if err != nil {
		return nil, err
	}

	// Step 9: defaults.
	product := &entity.CanonicalProduct{
		ManageNumber:      productID,
		OriginProductIDs:  entity.JSONStringArray{productID},
		TitleJA:           content.Title,
		TaglineJA:         content.Catchphrase,
		DescriptionJA:     content.Description,
		PrimaryCategoryID: genreID,
		RCatID:            rCatID,
		Images:            entity.JSONDoc[[]string]{Value: images},
		VariantSelectors:  entity.JSONDoc[[]entity.VariantSelector]{Value: toVariantSelectorEntities(selectors)},
		Variants:          entity.JSONDoc[[]entity.Variant]{Value: variants},
		Inventory:         entity.JSONDoc[[]entity.InventoryEntry]{Value: inventory},
		HideItem:          true,
	}
	if existing != nil {
		product.RegistrationState = existing.RegistrationState
	}

	if err := product.Validate(); err != nil {
		return nil, domerrors.NewValidation("materializer_invalid_product", err.Error(), err)
	}

	// Step 10: persist and flip origin registration_status, per product.
	if err := m.canonical.UpsertFromOriginIDs(ctx, product); err != nil {
		return nil, err
	}
	if err := m.origin.UpdateRegistrationStatus(ctx, productID, entity.RegistrationStatusRegistered); err != nil {
		return nil, err
	}

	return product, nil
}

func (m *Materializer) resolveCategory(ctx context.Context, origin *entity.OriginProduct) (string, entity.JSONStringArray) {
	cat, err := m.category.GetByMainMiddle(ctx, origin.MainCategory, origin.MiddleCategory)
	if err != nil || cat == nil {
		return defaultGenreID, origin.RCatID
	}
	rCatID := cat.RCatID
	if len(rCatID) == 0 {
		rCatID = origin.RCatID
	}
	return defaultGenreID, rCatID
}

// buildVariants runs the cartesian materialization, inventory matching,
// per-SKU pricing, and inventory quantization of §4.3 steps 5-7.
func (m *Materializer) buildVariants(ctx context.Context, origin *entity.OriginProduct, selectors []builtSelector, rows []inventoryRow) ([]entity.Variant, []entity.InventoryEntry) {
	pricing, err := m.pricing.Get(ctx)
	if err != nil {
		logger.MaterializerLogger().Err(err).Msg("pricing settings unavailable, defaulting price to zero")
	}

	counts := make([]int, len(selectors))
	for i, sel := range selectors {
		counts[i] = len(sel.Display)
	}
	combos := cartesianIndexes(counts)

	variants := make([]entity.Variant, 0, len(combos))
	inventory := make([]entity.InventoryEntry, 0, len(combos))

	for _, combo := range combos {
		sku, matched := matchInventory(rows, selectors, combo)
		if !matched {
			// Partial-match fallback already attempted in matchInventory;
			// nothing left to try, so skip this combination (§4.3 step 5).
			continue
		}
		options := make(map[string]string, len(selectors))
		for i, sel := range selectors {
			options[sel.Key] = sel.Display[combo[i]]
		}

		price := m.priceForVariant(pricing, origin, sku.Price)
		quantity := quantizeInventory(sku.AmountOnSale)

		variantID := sku.SkuID
		if variantID == "" {
			variantID = fmt.Sprintf("%s-%d", origin.ProductID, len(variants)+1)
		}

		variants = append(variants, entity.Variant{
			SKU:      variantID,
			Options:  options,
			PriceJPY: price,
			Quantity: quantity,
		})
		inventory = append(inventory, entity.InventoryEntry{VariantID: variantID, Quantity: quantity})
	}

	return variants, inventory
}

// priceForVariant runs §4.3 step 6: unit price from the matched
// inventory row falling back to the origin wholesale price, skipping to
// zero when weight is missing or non-positive.
func (m *Materializer) priceForVariant(pricing *entity.PricingSettings, origin *entity.OriginProduct, skuPrice string) int64 {
	if origin.Weight == nil || *origin.Weight <= 0 {
		logger.MaterializerLogger().Str("product_id", origin.ProductID).Msg("missing/non-positive weight, price set to 0")
		return 0
	}
	if pricing == nil {
		return 0
	}

	unitPrice := decimal.Zero
	if skuPrice != "" {
		if parsed, err := decimal.NewFromString(skuPrice); err == nil {
			unitPrice = parsed
		}
	}
	if unitPrice.IsZero() && origin.WholesalePrice != nil {
		unitPrice = decimal.NewFromFloat(*origin.WholesalePrice)
	}
	if unitPrice.IsZero() {
		return 0
	}

	weight := decimal.NewFromFloat(*origin.Weight)
	return pricing.CalculatePriceJPY(unitPrice, weight, origin.SizeKey())
}

// resolveImages runs §4.3 steps 1 and 8: skip-protected reuse of an
// existing canonical product's images, or a full image-pipeline pass over
// the detail JSON's image URLs.
func (m *Materializer) resolveImages(ctx context.Context, existing *entity.CanonicalProduct, productID string, detail map[string]interface{}) ([]string, error) {
	if existing != nil && len(existing.Images.Value) > 0 {
		return existing.Images.Value, nil
	}

	urls := extractImages(detail)
	if len(urls) == 0 {
		return nil, nil
	}

	results, err := m.images.ProcessAll(ctx, deriveImageCode(productID), urls)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.RelativePath)
	}
	return out, nil
}

// deriveImageCode derives a stable 8-digit product_image_code from
// product_id (§4.5).
func deriveImageCode(productID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(productID))
	return fmt.Sprintf("%08d", h.Sum32()%100000000)
}
