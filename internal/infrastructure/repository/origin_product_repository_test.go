package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
)

func newMockRepo(t *testing.T) (*PostgreSQLOriginProductRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	sqlxDB := sqlx.NewDb(db, "postgres")
	repo := &PostgreSQLOriginProductRepository{db: sqlxDB}
	return repo, mock, func() { db.Close() }
}

func TestUpsertBatchExecutesPerProductWithConflictUpdate(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO products_origin`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	products := []*entity.OriginProduct{
		{
			ProductID:          "p1",
			TitleT:             "widget",
			MainCategory:       "tools",
			MiddleCategory:     "hand-tools",
			RegistrationStatus: entity.RegistrationStatusUnregistered,
		},
	}

	if err := repo.UpsertBatch(context.Background(), products); err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpsertBatchRejectsInvalidProductBeforeExecuting(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	products := []*entity.OriginProduct{{ProductID: ""}}
	if err := repo.UpsertBatch(context.Background(), products); err == nil {
		t.Fatal("expected validation error for empty product_id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expected no query to run, got: %v", err)
	}
}

func TestUpsertBatchEmptyIsNoOp(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	if err := repo.UpsertBatch(context.Background(), nil); err != nil {
		t.Fatalf("expected nil error for empty batch, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expected no query to run, got: %v", err)
	}
}

func originProductColumns() []string {
	return []string{
		"product_id", "title_c", "title_t", "main_category", "middle_category", "type_tag",
		"monthly_sales", "wholesale_price", "weight", "length", "width", "height", "size",
		"creation_date", "repurchase_rate", "rating_score", "detail_json",
		"registration_status", "r_cat_id", "created_at", "updated_at",
	}
}

func TestGetByIDReturnsMappedRow(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows(originProductColumns()).AddRow(
		"p1", "", "widget", "tools", "hand-tools", nil,
		nil, nil, nil, nil, nil, nil, nil,
		nil, nil, nil, []byte(`{}`),
		int(entity.RegistrationStatusUnregistered), []byte(`[]`), now, now,
	)
	mock.ExpectQuery(`SELECT \* FROM products_origin WHERE product_id = \$1`).
		WithArgs("p1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ProductID != "p1" || got.TitleT != "widget" {
		t.Errorf("unexpected row: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM products_origin WHERE product_id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(originProductColumns()))

	if _, err := repo.GetByID(context.Background(), "missing"); err == nil {
		t.Fatal("expected a not-found error")
	}
}

func TestDeleteNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	mock.ExpectExec(`DELETE FROM products_origin WHERE product_id = \$1`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "p1"); err == nil {
		t.Fatal("expected not-found error when zero rows affected")
	}
}

func TestDeleteSucceeds(t *testing.T) {
	repo, mock, cleanup := newMockRepo(t)
	defer cleanup()

	mock.ExpectExec(`DELETE FROM products_origin WHERE product_id = \$1`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
