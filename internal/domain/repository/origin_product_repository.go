package repository

import (
	"context"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
)

// OriginProductFilter narrows listOriginProducts-style queries (§4.1).
type OriginProductFilter struct {
	ProductIDs          []string
	MainCategory        string
	MiddleCategory      string
	RegistrationStatus  *entity.RegistrationStatus
	Limit               int
	Offset              int
}

// OriginProductRepository persists raw harvested listings (table
// products_origin) and drives the registration-status/r_cat_id
// propagation invariants from §4.1.
type OriginProductRepository interface {
	// UpsertBatch inserts or updates origin products keyed by product_id.
	// An existing row's registration_status is never downgraded from
	// Registered/PreviouslyRegistered back to Unregistered.
	UpsertBatch(ctx context.Context, products []*entity.OriginProduct) error

	GetByID(ctx context.Context, productID string) (*entity.OriginProduct, error)
	GetByIDs(ctx context.Context, productIDs []string) ([]*entity.OriginProduct, error)
	List(ctx context.Context, filter OriginProductFilter) ([]*entity.OriginProduct, error)

	// UpdateRegistrationStatus transitions a single origin product's
	// status, used once its canonical product is materialized.
	UpdateRegistrationStatus(ctx context.Context, productID string, status entity.RegistrationStatus) error

	// SyncRCatID overwrites r_cat_id for every origin product sharing the
	// given main/middle category pair, per syncRCatId (§4.1).
	SyncRCatID(ctx context.Context, mainCategory, middleCategory string, rCatID entity.JSONStringArray) error

	// PropagateCategoryDimensions copies a category's shared physical
	// attributes onto every origin product in that category that is
	// still missing them (§4.1 propagateCategoryDimensions).
	PropagateCategoryDimensions(ctx context.Context, mainCategory, middleCategory string, attrs entity.CategoryAttributes) error

	Delete(ctx context.Context, productID string) error
}
