package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/utils"
)

// pq error code for unique_violation.
const pqUniqueViolation = "23505"

// UserFilter narrows a paged user listing. Empty fields are ignored.
type UserFilter struct {
	Search string
	Role   models.UserRole
	Page   int
	Limit  int
}

type AdminUserRepository struct {
	db *sqlx.DB
}

func NewAdminUserRepository(db *sqlx.DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

const userColumns = `id, email, password_hash, name, role, is_active, created_at, updated_at`

func (r *AdminUserRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM admin_users WHERE email = $1`, email)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID returns a user or sql.ErrNoRows.
func (r *AdminUserRepository) GetByID(ctx context.Context, id int) (*models.AdminUser, error) {
	var user models.AdminUser
	if err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM admin_users WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetAllPaged returns users whose name or email matches f.Search, ordered by name.
func (r *AdminUserRepository) GetAllPaged(ctx context.Context, f UserFilter) ([]models.AdminUser, int, error) {
	page, limit := normalizePage(f.Page, f.Limit)
	offset := (page - 1) * limit

	const baseWhere = `WHERE ($1 = '' OR role = $1)
        AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM admin_users `+baseWhere, f.Role, f.Search); err != nil {
		return nil, 0, err
	}

	users := []models.AdminUser{}
	listQuery := `SELECT ` + userColumns + ` FROM admin_users ` + baseWhere + `
        ORDER BY name, id LIMIT $3 OFFSET $4`
	if err := r.db.SelectContext(ctx, &users, listQuery, f.Role, f.Search, limit, offset); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Create inserts user and fills its id and timestamps. A taken email
// returns utils.ErrEmailTaken.
func (r *AdminUserRepository) Create(ctx context.Context, user *models.AdminUser) error {
	query := `
		INSERT INTO admin_users (email, password_hash, name, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, user.Email, user.PasswordHash, user.Name, user.Role, user.IsActive).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return mapUserWriteError(err)
}

// Update overwrites email, name, role and is_active. The password hash is
// replaced only when user.PasswordHash is non-empty.
func (r *AdminUserRepository) Update(ctx context.Context, user *models.AdminUser) error {
	query := `
		UPDATE admin_users SET
			email = $2,
			name = $3,
			role = $4,
			is_active = $5,
			password_hash = COALESCE(NULLIF($6, ''), password_hash),
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		user.ID, user.Email, user.Name, user.Role, user.IsActive, user.PasswordHash,
	).Scan(&user.UpdatedAt)
	return mapUserWriteError(err)
}

// Delete removes a user. Sales they recorded keep created_by NULL.
func (r *AdminUserRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admin_users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// CountActiveAdmins returns how many active users hold the admin role.
func (r *AdminUserRepository) CountActiveAdmins(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM admin_users WHERE role = $1 AND is_active`, models.RoleAdmin)
	return n, err
}

func mapUserWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation && pqErr.Constraint == "admin_users_email_key" {
		return utils.ErrEmailTaken
	}
	return err
}
