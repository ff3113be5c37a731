package models

import "time"

// UserRole controls what a back-office user may do. Only admins manage users.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleStaff UserRole = "staff"
)

// Valid reports whether r is an accepted value.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// AdminUser represents a back-office user allowed to manage inventory and sales.
type AdminUser struct {
	ID           int       `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}
