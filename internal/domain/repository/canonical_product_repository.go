package repository

import (
	"context"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
)

// CanonicalProductFilter narrows listCanonicalProducts-style queries (§4.1).
type CanonicalProductFilter struct {
	ManageNumbers     []string
	PrimaryCategoryID string
	RegistrationState *entity.RegistrationState
	HideItem          *bool
	Limit             int
	Offset            int
}

// CanonicalProductRepository persists materialized, marketplace-ready
// products (table product_management).
type CanonicalProductRepository interface {
	// UpsertFromOriginIDs creates or updates the canonical product
	// derived from the given origin product ids (§4.1
	// upsertCanonicalFromOriginIds).
	UpsertFromOriginIDs(ctx context.Context, product *entity.CanonicalProduct) error

	GetByManageNumber(ctx context.Context, manageNumber string) (*entity.CanonicalProduct, error)
	List(ctx context.Context, filter CanonicalProductFilter) ([]*entity.CanonicalProduct, error)

	UpdateHideItem(ctx context.Context, manageNumber string, hide bool) error
	UpdateImage(ctx context.Context, manageNumber string, images []string) error
	UpdateRegistrationState(ctx context.Context, manageNumber string, state entity.RegistrationState) error
	UpdateVariants(ctx context.Context, manageNumber string, variants []entity.Variant, inventory []entity.InventoryEntry) error

	Delete(ctx context.Context, manageNumber string) error
}
