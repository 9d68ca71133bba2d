package entity

import (
	"database/sql"
	"fmt"
	"time"
)

// User is a stored operator account. This module has no inbound API or
// approval step, so no pipeline code path reads it. The spec
// keeps this deliberately thin — no roles/tiers/OAuth, matching its
// explicit non-goal of multi-tenant access control.
type User struct {
	ID           string       `db:"id" json:"id"`
	Email        string       `db:"email" json:"email"`
	PasswordHash string       `db:"password_hash" json:"-"`
	Name         string       `db:"name" json:"name"`
	IsActive     bool         `db:"is_active" json:"is_active"`
	LastLogin    sql.NullTime `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

func (u *User) Validate() error {
	if u.Email == "" {
		return fmt.Errorf("email is required")
	}
	if u.PasswordHash == "" {
		return fmt.Errorf("password_hash is required")
	}
	return nil
}
