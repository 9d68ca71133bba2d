package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	"github.com/kirimku/smartseller-backend/internal/domain/repository"
)

// PostgreSQLUserRepository implements repository.UserRepository.
type PostgreSQLUserRepository struct {
	db *sqlx.DB
}

func NewPostgreSQLUserRepository(db *sqlx.DB) repository.UserRepository {
	return &PostgreSQLUserRepository{db: db}
}

func (r *PostgreSQLUserRepository) Create(ctx context.Context, user *entity.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("user validation failed: %w", err)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, email, password_hash, name, is_active, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :name, :is_active, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		mapped := MapPostgreSQLError(err, "User", map[string]interface{}{"email": user.Email})
		return WrapWithContext(mapped, "CreateUser", nil)
	}
	return nil
}

func (r *PostgreSQLUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var u entity.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, NewNotFoundError("User", id)
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &u, nil
}

func (r *PostgreSQLUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	err := r.db.GetContext(ctx, &u, `SELECT * FROM users WHERE email = $1`, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, NewNotFoundError("User", email)
		}
		return nil, fmt.Errorf("get user by email %s: %w", email, err)
	}
	return &u, nil
}

func (r *PostgreSQLUserRepository) Update(ctx context.Context, user *entity.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("user validation failed: %w", err)
	}
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users SET email = :email, password_hash = :password_hash,
			name = :name, is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		mapped := MapPostgreSQLError(err, "User", map[string]interface{}{"id": user.ID})
		return WrapWithContext(mapped, "UpdateUser", nil)
	}
	return checkRowsAffected(res, "User", user.ID)
}

func (r *PostgreSQLUserRepository) UpdateLastLogin(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update last_login for %s: %w", id, err)
	}
	return checkRowsAffected(res, "User", id)
}

func (r *PostgreSQLUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return checkRowsAffected(res, "User", id)
}
