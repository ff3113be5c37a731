package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/taskify_api/internal/models"
)

// CustomerFilter narrows a paged customer listing.
type CustomerFilter struct {
	Search string
	Page   int
	Limit  int
}

// CustomerRepository handles data access for customers.
type CustomerRepository struct {
	db *sqlx.DB
}

// NewCustomerRepository creates a new CustomerRepository.
func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = `id, name, age, gender, phone, email, address, doctor_reference,
        medical_history, created_at, updated_at`

// GetAllPaged returns customers whose name or phone matches f.Search.
func (r *CustomerRepository) GetAllPaged(ctx context.Context, f CustomerFilter) ([]models.Customer, int, error) {
	page, limit := normalizePage(f.Page, f.Limit)
	offset := (page - 1) * limit

	const baseWhere = `WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR phone ILIKE '%' || $1 || '%')`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM customers `+baseWhere, f.Search); err != nil {
		return nil, 0, err
	}

	customers := []models.Customer{}
	listQuery := `SELECT ` + customerColumns + ` FROM customers ` + baseWhere + `
        ORDER BY name, id LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &customers, listQuery, f.Search, limit, offset); err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// GetByID returns a customer or sql.ErrNoRows.
func (r *CustomerRepository) GetByID(ctx context.Context, id int) (*models.Customer, error) {
	var c models.Customer
	if err := r.db.GetContext(ctx, &c, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts c and fills its id and timestamps.
func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	const q = `
        INSERT INTO customers (name, age, gender, phone, email, address, doctor_reference, medical_history)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, q,
		c.Name, c.Age, c.Gender, c.Phone, c.Email, c.Address, c.DoctorReference, c.MedicalHistory,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Update overwrites every mutable column of c.
func (r *CustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	const q = `
        UPDATE customers SET
            name = $2,
            age = $3,
            gender = $4,
            phone = $5,
            email = $6,
            address = $7,
            doctor_reference = $8,
            medical_history = $9,
            updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at`

	return r.db.QueryRowxContext(ctx, q,
		c.ID, c.Name, c.Age, c.Gender, c.Phone, c.Email, c.Address, c.DoctorReference, c.MedicalHistory,
	).Scan(&c.UpdatedAt)
}

// Delete removes a customer. Past sales keep their rows with customer_id NULL.
func (r *CustomerRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
