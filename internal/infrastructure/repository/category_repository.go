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

// PostgreSQLCategoryRepository implements repository.CategoryRepository.
type PostgreSQLCategoryRepository struct {
	db *sqlx.DB
}

func NewPostgreSQLCategoryRepository(db *sqlx.DB) repository.CategoryRepository {
	return &PostgreSQLCategoryRepository{db: db}
}

func (r *PostgreSQLCategoryRepository) Upsert(ctx context.Context, category *entity.Category) error {
	if err := category.Validate(); err != nil {
		return fmt.Errorf("category validation failed: %w", err)
	}
	category.UpdatedAt = time.Now()
	if category.CreatedAt.IsZero() {
		category.CreatedAt = category.UpdatedAt
	}

	query := `
		INSERT INTO category_management (
			main_category, middle_category, r_cat_id, attributes, created_at, updated_at
		) VALUES (
			:main_category, :middle_category, :r_cat_id, :attributes, :created_at, :updated_at
		)
		ON CONFLICT (main_category, middle_category) DO UPDATE SET
			r_cat_id = EXCLUDED.r_cat_id,
			attributes = EXCLUDED.attributes,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		mapped := MapPostgreSQLError(err, "Category", map[string]interface{}{
			"main_category": category.MainCategory, "middle_category": category.MiddleCategory,
		})
		return WrapWithContext(mapped, "UpsertCategory", nil)
	}
	return nil
}

func (r *PostgreSQLCategoryRepository) GetByMainMiddle(ctx context.Context, mainCategory, middleCategory string) (*entity.Category, error) {
	var c entity.Category
	err := r.db.GetContext(ctx, &c,
		`SELECT * FROM category_management WHERE main_category = $1 AND middle_category = $2`,
		mainCategory, middleCategory)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, NewNotFoundError("Category", mainCategory+"/"+middleCategory)
		}
		return nil, fmt.Errorf("get category %s/%s: %w", mainCategory, middleCategory, err)
	}
	return &c, nil
}

func (r *PostgreSQLCategoryRepository) List(ctx context.Context) ([]*entity.Category, error) {
	var out []*entity.Category
	if err := r.db.SelectContext(ctx, &out, `SELECT * FROM category_management ORDER BY main_category, middle_category`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func (r *PostgreSQLCategoryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM category_management WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return checkRowsAffected(res, "Category", fmt.Sprintf("%d", id))
}

// PostgreSQLPrimaryCategoryRepository implements repository.PrimaryCategoryRepository.
type PostgreSQLPrimaryCategoryRepository struct {
	db *sqlx.DB
}

func NewPostgreSQLPrimaryCategoryRepository(db *sqlx.DB) repository.PrimaryCategoryRepository {
	return &PostgreSQLPrimaryCategoryRepository{db: db}
}

func (r *PostgreSQLPrimaryCategoryRepository) Upsert(ctx context.Context, category *entity.PrimaryCategory) error {
	if err := category.Validate(); err != nil {
		return fmt.Errorf("primary category validation failed: %w", err)
	}
	category.UpdatedAt = time.Now()
	if category.CreatedAt.IsZero() {
		category.CreatedAt = category.UpdatedAt
	}

	query := `
		INSERT INTO primary_category_management (id, name, genre_id, created_at, updated_at)
		VALUES (:id, :name, :genre_id, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			genre_id = EXCLUDED.genre_id,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		mapped := MapPostgreSQLError(err, "PrimaryCategory", map[string]interface{}{"id": category.ID})
		return WrapWithContext(mapped, "UpsertPrimaryCategory", nil)
	}
	return nil
}

func (r *PostgreSQLPrimaryCategoryRepository) GetByID(ctx context.Context, id int64) (*entity.PrimaryCategory, error) {
	var c entity.PrimaryCategory
	err := r.db.GetContext(ctx, &c, `SELECT * FROM primary_category_management WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, NewNotFoundError("PrimaryCategory", fmt.Sprintf("%d", id))
		}
		return nil, fmt.Errorf("get primary category %d: %w", id, err)
	}
	return &c, nil
}

func (r *PostgreSQLPrimaryCategoryRepository) List(ctx context.Context) ([]*entity.PrimaryCategory, error) {
	var out []*entity.PrimaryCategory
	if err := r.db.SelectContext(ctx, &out, `SELECT * FROM primary_category_management ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list primary categories: %w", err)
	}
	return out, nil
}

func (r *PostgreSQLPrimaryCategoryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM primary_category_management WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete primary category %d: %w", id, err)
	}
	return checkRowsAffected(res, "PrimaryCategory", fmt.Sprintf("%d", id))
}
