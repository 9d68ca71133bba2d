package repository

import (
	"context"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
)

// CategoryRepository persists the main/middle category -> r_cat_id and
// shared physical attribute mappings (table category_management).
type CategoryRepository interface {
	Upsert(ctx context.Context, category *entity.Category) error
	GetByMainMiddle(ctx context.Context, mainCategory, middleCategory string) (*entity.Category, error)
	List(ctx context.Context) ([]*entity.Category, error)
	Delete(ctx context.Context, id int64) error
}

// PrimaryCategoryRepository persists the Rakuten top-level category/genre
// assignment pool (table primary_category_management).
type PrimaryCategoryRepository interface {
	Upsert(ctx context.Context, category *entity.PrimaryCategory) error
	GetByID(ctx context.Context, id int64) (*entity.PrimaryCategory, error)
	List(ctx context.Context) ([]*entity.PrimaryCategory, error)
	Delete(ctx context.Context, id int64) error
}
