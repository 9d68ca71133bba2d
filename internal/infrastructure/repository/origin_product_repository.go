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

// PostgreSQLOriginProductRepository implements repository.OriginProductRepository.
type PostgreSQLOriginProductRepository struct {
	db *sqlx.DB
}

func NewPostgreSQLOriginProductRepository(db *sqlx.DB) repository.OriginProductRepository {
	return &PostgreSQLOriginProductRepository{db: db}
}

// UpsertBatch inserts or updates origin products keyed by product_id. The
// ON CONFLICT clause never lets registration_status regress: a row
// previously marked Registered/PreviouslyRegistered stays there even if
// the harvester re-sends it as Unregistered (§4.1).
func (r *PostgreSQLOriginProductRepository) UpsertBatch(ctx context.Context, products []*entity.OriginProduct) error {
	if len(products) == 0 {
		return nil
	}

	query := `
		INSERT INTO products_origin (
			product_id, title_c, title_t, main_category, middle_category, type_tag,
			monthly_sales, wholesale_price, weight, length, width, height, size,
			creation_date, repurchase_rate, rating_score, detail_json,
			registration_status, r_cat_id, created_at, updated_at
		) VALUES (
			:product_id, :title_c, :title_t, :main_category, :middle_category, :type_tag,
			:monthly_sales, :wholesale_price, :weight, :length, :width, :height, :size,
			:creation_date, :repurchase_rate, :rating_score, :detail_json,
			:registration_status, :r_cat_id, :created_at, :updated_at
		)
		ON CONFLICT (product_id) DO UPDATE SET
			title_c = EXCLUDED.title_c,
			title_t = EXCLUDED.title_t,
			main_category = EXCLUDED.main_category,
			middle_category = EXCLUDED.middle_category,
			type_tag = EXCLUDED.type_tag,
			monthly_sales = EXCLUDED.monthly_sales,
			wholesale_price = EXCLUDED.wholesale_price,
			weight = EXCLUDED.weight,
			length = EXCLUDED.length,
			width = EXCLUDED.width,
			height = EXCLUDED.height,
			size = EXCLUDED.size,
			creation_date = EXCLUDED.creation_date,
			repurchase_rate = EXCLUDED.repurchase_rate,
			rating_score = EXCLUDED.rating_score,
			detail_json = EXCLUDED.detail_json,
			registration_status = GREATEST(products_origin.registration_status, EXCLUDED.registration_status),
			r_cat_id = EXCLUDED.r_cat_id,
			updated_at = EXCLUDED.updated_at`

	now := time.Now()
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("origin product %s validation failed: %w", p.ProductID, err)
		}
		p.UpdatedAt = now
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
	}

	return WithMetrics(&NoOpMetricsCollector{}, "upsert_batch", "products_origin", func() error {
		return r.ExecuteInTxOrDirect(ctx, func(exec sqlx.ExtContext) error {
			for _, p := range products {
				if _, err := sqlx.NamedExecContext(ctx, exec, query, p); err != nil {
					mapped := MapPostgreSQLError(err, "OriginProduct", map[string]interface{}{"id": p.ProductID})
					return WrapWithContext(mapped, "UpsertOriginProduct", map[string]interface{}{"product_id": p.ProductID})
				}
			}
			return nil
		})
	})
}

func (r *PostgreSQLOriginProductRepository) GetByID(ctx context.Context, productID string) (*entity.OriginProduct, error) {
	var p entity.OriginProduct
	err := r.db.GetContext(ctx, &p, `SELECT * FROM products_origin WHERE product_id = $1`, productID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, NewNotFoundError("OriginProduct", productID)
		}
		return nil, fmt.Errorf("get origin product %s: %w", productID, err)
	}
	return &p, nil
}

func (r *PostgreSQLOriginProductRepository) GetByIDs(ctx context.Context, productIDs []string) ([]*entity.OriginProduct, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM products_origin WHERE product_id IN (?)`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("build IN query: %w", err)
	}
	query = r.db.Rebind(query)

	var out []*entity.OriginProduct
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("get origin products by ids: %w", err)
	}
	return out, nil
}

func (r *PostgreSQLOriginProductRepository) List(ctx context.Context, filter repository.OriginProductFilter) ([]*entity.OriginProduct, error) {
	qb := NewQueryBuilder().Select("*").From("products_origin")

	if len(filter.ProductIDs) > 0 {
		placeholders, args := inPlaceholders(filter.ProductIDs)
		qb = qb.Where(fmt.Sprintf("product_id IN (%s)", placeholders), args...)
	}
	if filter.MainCategory != "" {
		qb = qb.Where("main_category = $1", filter.MainCategory)
	}
	if filter.MiddleCategory != "" {
		qb = qb.Where("middle_category = $1", filter.MiddleCategory)
	}
	if filter.RegistrationStatus != nil {
		qb = qb.Where("registration_status = $1", *filter.RegistrationStatus)
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

	var out []*entity.OriginProduct
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list origin products: %w", err)
	}
	return out, nil
}

func (r *PostgreSQLOriginProductRepository) UpdateRegistrationStatus(ctx context.Context, productID string, status entity.RegistrationStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products_origin SET registration_status = $1, updated_at = now() WHERE product_id = $2`,
		status, productID)
	if err != nil {
		return fmt.Errorf("update registration status for %s: %w", productID, err)
	}
	return nil
}

// SyncRCatID overwrites r_cat_id for every origin product in a category
// pair (§4.1 syncRCatId) — run after a category's mapping changes so
// previously harvested products pick up the new Rakuten category tree.
func (r *PostgreSQLOriginProductRepository) SyncRCatID(ctx context.Context, mainCategory, middleCategory string, rCatID entity.JSONStringArray) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products_origin SET r_cat_id = $1, updated_at = now() WHERE main_category = $2 AND middle_category = $3`,
		rCatID, mainCategory, middleCategory)
	if err != nil {
		return fmt.Errorf("sync r_cat_id for %s/%s: %w", mainCategory, middleCategory, err)
	}
	return nil
}

// PropagateCategoryDimensions backfills a category's shared physical
// attributes onto origin products that never reported their own
// (§4.1 propagateCategoryDimensions) — COALESCE keeps a product's own
// value if it already has one.
func (r *PostgreSQLOriginProductRepository) PropagateCategoryDimensions(ctx context.Context, mainCategory, middleCategory string, attrs entity.CategoryAttributes) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE products_origin SET
			weight = COALESCE(weight, $1),
			length = COALESCE(length, $2),
			width  = COALESCE(width, $3),
			height = COALESCE(height, $4),
			size   = COALESCE(size, $5),
			updated_at = now()
		WHERE main_category = $6 AND middle_category = $7`,
		attrs.Weight, attrs.Length, attrs.Width, attrs.Height, attrs.Size,
		mainCategory, middleCategory)
	if err != nil {
		return fmt.Errorf("propagate category dimensions for %s/%s: %w", mainCategory, middleCategory, err)
	}
	return nil
}

func (r *PostgreSQLOriginProductRepository) Delete(ctx context.Context, productID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products_origin WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("delete origin product %s: %w", productID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return NewNotFoundError("OriginProduct", productID)
	}
	return nil
}

// ExecuteInTxOrDirect runs fn against the repository's connection
// directly — kept as a seam so callers that need the batch wrapped in a
// single transaction can swap in BaseRepository.ExecuteInTransaction.
func (r *PostgreSQLOriginProductRepository) ExecuteInTxOrDirect(ctx context.Context, fn func(sqlx.ExtContext) error) error {
	return fn(r.db)
}

func inPlaceholders(ids []string) (string, []interface{}) {
	args := make([]interface{}, len(ids))
	placeholders := make([]byte, 0, len(ids)*3)
	for i, id := range ids {
		args[i] = id
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, []byte(fmt.Sprintf("$%d", i+1))...)
	}
	return string(placeholders), args
}
