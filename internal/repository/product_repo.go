package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/utils"
)

// ProductFilter narrows a paged product listing. Empty fields are ignored.
type ProductFilter struct {
	Search   string
	Category string
	Page     int
	Limit    int
}

// ProductRepository handles data access for products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, name, model_number, description, category, cost_price, selling_price,
        stock_quantity, low_stock_threshold, image_url, created_at, updated_at`

// GetAll returns every product ordered by id. It is the snapshot used for
// full alert reconciliation.
func (r *ProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products ORDER BY id`

	products := []models.Product{}
	if err := r.db.SelectContext(ctx, &products, q); err != nil {
		return nil, err
	}
	return products, nil
}

// GetAllPaged returns products matching f and the total match count.
// Search is a case-insensitive match on name or model number. Page begins at 1.
func (r *ProductRepository) GetAllPaged(ctx context.Context, f ProductFilter) ([]models.Product, int, error) {
	page, limit := normalizePage(f.Page, f.Limit)
	offset := (page - 1) * limit

	const baseWhere = `WHERE ($1 = '' OR category = $1)
        AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR model_number ILIKE '%' || $2 || '%')`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM products `+baseWhere, f.Category, f.Search); err != nil {
		return nil, 0, err
	}

	listQuery := `SELECT ` + productColumns + ` FROM products ` + baseWhere + `
        ORDER BY name, id LIMIT $3 OFFSET $4`
	products := []models.Product{}
	if err := r.db.SelectContext(ctx, &products, listQuery, f.Category, f.Search, limit, offset); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ListLowStock returns products at or below their threshold.
func (r *ProductRepository) ListLowStock(ctx context.Context) ([]models.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products
        WHERE stock_quantity <= low_stock_threshold
        ORDER BY stock_quantity - low_stock_threshold, id`

	products := []models.Product{}
	if err := r.db.SelectContext(ctx, &products, q); err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID returns a single product by id, or sql.ErrNoRows.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts p and fills its id and timestamps.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	const q = `
        INSERT INTO products (name, model_number, description, category, cost_price, selling_price,
            stock_quantity, low_stock_threshold, image_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, q,
		p.Name, p.ModelNumber, p.Description, p.Category, p.CostPrice, p.SellingPrice,
		p.StockQuantity, p.LowStockThreshold, p.ImageURL,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// Update overwrites every mutable column of p.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	const q = `
        UPDATE products SET
            name = $2,
            model_number = $3,
            description = $4,
            category = $5,
            cost_price = $6,
            selling_price = $7,
            stock_quantity = $8,
            low_stock_threshold = $9,
            image_url = $10,
            updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, q,
		p.ID, p.Name, p.ModelNumber, p.Description, p.Category, p.CostPrice, p.SellingPrice,
		p.StockQuantity, p.LowStockThreshold, p.ImageURL,
	).Scan(&p.UpdatedAt)
	return err
}

// Delete removes a product. Returns sql.ErrNoRows when nothing was deleted.
func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func normalizePage(page, limit int) (int, int) {
	return utils.NormalizePage(page, limit)
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
