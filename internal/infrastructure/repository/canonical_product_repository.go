package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	"github.com/kirimku/smartseller-backend/internal/domain/repository"
)

// PostgreSQLCanonicalProductRepository implements repository.CanonicalProductRepository.
type PostgreSQLCanonicalProductRepository struct {
	db *sqlx.DB
}

func NewPostgreSQLCanonicalProductRepository(db *sqlx.DB) repository.CanonicalProductRepository {
	return &PostgreSQLCanonicalProductRepository{db: db}
}

func (r *PostgreSQLCanonicalProductRepository) UpsertFromOriginIDs(ctx context.Context, product *entity.CanonicalProduct) error {
	if err := product.Validate(); err != nil {
		return fmt.Errorf("canonical product %s validation failed: %w", product.ManageNumber, err)
	}

	now := time.Now()
	product.UpdatedAt = now
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}

	query := `
		INSERT INTO product_management (
			manage_number, origin_product_ids, title_ja, tagline_ja, description_ja,
			primary_category_id, r_cat_id, images, variant_selectors, variants, inventory,
			hide_item, registration_state, created_at, updated_at
		) VALUES (
			:manage_number, :origin_product_ids, :title_ja, :tagline_ja, :description_ja,
			:primary_category_id, :r_cat_id, :images, :variant_selectors, :variants, :inventory,
			:hide_item, :registration_state, :created_at, :updated_at
		)
		ON CONFLICT (manage_number) DO UPDATE SET
			origin_product_ids = EXCLUDED.origin_product_ids,
			title_ja = EXCLUDED.title_ja,
			tagline_ja = EXCLUDED.tagline_ja,
			description_ja = EXCLUDED.description_ja,
			primary_category_id = EXCLUDED.primary_category_id,
			r_cat_id = EXCLUDED.r_cat_id,
			images = EXCLUDED.images,
			variant_selectors = EXCLUDED.variant_selectors,
			variants = EXCLUDED.variants,
			inventory = EXCLUDED.inventory,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, product); err != nil {
		mapped := MapPostgreSQLError(err, "CanonicalProduct", map[string]interface{}{"id": product.ManageNumber})
		return WrapWithContext(mapped, "UpsertCanonicalProduct", map[string]interface{}{"manage_number": product.ManageNumber})
	}
	return nil
}

func (r *PostgreSQLCanonicalProductRepository) GetByManageNumber(ctx context.Context, manageNumber string) (*entity.CanonicalProduct, error) {
	var p entity.CanonicalProduct
	err := r.db.GetContext(ctx, &p, `SELECT * FROM product_management WHERE manage_number = $1`, manageNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, NewNotFoundError("CanonicalProduct", manageNumber)
		}
		return nil, fmt.Errorf("get canonical product %s: %w", manageNumber, err)
	}
	return &p, nil
}

func (r *PostgreSQLCanonicalProductRepository) List(ctx context.Context, filter repository.CanonicalProductFilter) ([]*entity.CanonicalProduct, error) {
	qb := NewQueryBuilder().Select("*").From("product_management")

	if len(filter.ManageNumbers) > 0 {
		placeholders, args := inPlaceholders(filter.ManageNumbers)
		qb = qb.Where(fmt.Sprintf("manage_number IN (%s)", placeholders), args...)
	}
	if filter.PrimaryCategoryID != "" {
		qb = qb.Where("primary_category_id = $1", filter.PrimaryCategoryID)
	}
	if filter.RegistrationState != nil {
		qb = qb.Where("registration_state = $1", string(*filter.RegistrationState))
	}
	if filter.HideItem != nil {
		qb = qb.Where("hide_item = $1", *filter.HideItem)
	}
	qb = qb.OrderBy("updated_at", "DESC")
	if filter.Limit > 0 {
		qb = qb.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		qb = qb.Offset(filter.Offset)
	}

	query, args := qb.Build()
	query = r.db.Rebind(query)

	var out []*entity.CanonicalProduct
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list canonical products: %w", err)
	}
	return out, nil
}

func (r *PostgreSQLCanonicalProductRepository) UpdateHideItem(ctx context.Context, manageNumber string, hide bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE product_management SET hide_item = $1, updated_at = now() WHERE manage_number = $2`,
		hide, manageNumber)
	if err != nil {
		return fmt.Errorf("update hide_item for %s: %w", manageNumber, err)
	}
	return checkRowsAffected(res, "CanonicalProduct", manageNumber)
}

func (r *PostgreSQLCanonicalProductRepository) UpdateImage(ctx context.Context, manageNumber string, images []string) error {
	doc := entity.JSONDoc[[]string]{Value: images}
	res, err := r.db.ExecContext(ctx,
		`UPDATE product_management SET images = $1, updated_at = now() WHERE manage_number = $2`,
		doc, manageNumber)
	if err != nil {
		return fmt.Errorf("update images for %s: %w", manageNumber, err)
	}
	return checkRowsAffected(res, "CanonicalProduct", manageNumber)
}

func (r *PostgreSQLCanonicalProductRepository) UpdateRegistrationState(ctx context.Context, manageNumber string, state entity.RegistrationState) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE product_management SET registration_state = $1, updated_at = now() WHERE manage_number = $2`,
		string(state), manageNumber)
	if err != nil {
		return fmt.Errorf("update registration_state for %s: %w", manageNumber, err)
	}
	return checkRowsAffected(res, "CanonicalProduct", manageNumber)
}

func (r *PostgreSQLCanonicalProductRepository) UpdateVariants(ctx context.Context, manageNumber string, variants []entity.Variant, inventory []entity.InventoryEntry) error {
	variantsDoc := entity.JSONDoc[[]entity.Variant]{Value: variants}
	inventoryDoc := entity.JSONDoc[[]entity.InventoryEntry]{Value: inventory}
	res, err := r.db.ExecContext(ctx,
		`UPDATE product_management SET variants = $1, inventory = $2, updated_at = now() WHERE manage_number = $3`,
		variantsDoc, inventoryDoc, manageNumber)
	if err != nil {
		return fmt.Errorf("update variants for %s: %w", manageNumber, err)
	}
	return checkRowsAffected(res, "CanonicalProduct", manageNumber)
}

func (r *PostgreSQLCanonicalProductRepository) Delete(ctx context.Context, manageNumber string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM product_management WHERE manage_number = $1`, manageNumber)
	if err != nil {
		return fmt.Errorf("delete canonical product %s: %w", manageNumber, err)
	}
	return checkRowsAffected(res, "CanonicalProduct", manageNumber)
}

func checkRowsAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return NewNotFoundError(resource, id)
	}
	return nil
}
