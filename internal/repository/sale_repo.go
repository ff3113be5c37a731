package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/taskify_api/internal/models"
	"github.com/GTDGit/taskify_api/internal/utils"
)

// pq error code for foreign_key_violation.
const pqForeignKeyViolation = "23503"

// SaleFilter narrows a paged sale listing.
type SaleFilter struct {
	CustomerID int
	Page       int
	Limit      int
}

// SaleRepository handles data access for sales and their items.
type SaleRepository struct {
	db *sqlx.DB
}

// NewSaleRepository creates a new SaleRepository.
func NewSaleRepository(db *sqlx.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

const saleColumns = `id, invoice_number, customer_id, subtotal, discount_rate, discount_amount,
        tax_rate, tax_amount, total, payment_method, payment_status, notes, created_by, created_at`

// Create persists s with its items and decrements product stock in a single
// transaction. A product without enough stock aborts the whole sale with
// utils.ErrInsufficientStock; a deleted product with utils.ErrProductNotFound.
func (r *SaleRepository) Create(ctx context.Context, s *models.Sale) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sale transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, d := range stockDemand(s.Items) {
		if err := decrementStock(ctx, tx, d.productID, d.quantity); err != nil {
			return err
		}
	}

	const insertSale = `
        INSERT INTO sales (invoice_number, customer_id, subtotal, discount_rate, discount_amount,
            tax_rate, tax_amount, total, payment_method, payment_status, notes, created_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id, created_at`
	err = tx.QueryRowxContext(ctx, insertSale,
		s.InvoiceNumber, s.CustomerID, s.Subtotal, s.DiscountRate, s.DiscountAmount,
		s.TaxRate, s.TaxAmount, s.Total, s.PaymentMethod, s.PaymentStatus, s.Notes, s.CreatedBy,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation && pqErr.Constraint == "sales_customer_id_fkey" {
			return utils.ErrCustomerNotFound
		}
		return fmt.Errorf("insert sale: %w", err)
	}

	const insertItem = `
        INSERT INTO sale_items (sale_id, product_id, name, unit_price, quantity, line_total)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`
	for i := range s.Items {
		it := &s.Items[i]
		it.SaleID = s.ID
		if err := tx.QueryRowxContext(ctx, insertItem,
			it.SaleID, it.ProductID, it.Name, it.UnitPrice, it.Quantity, it.LineTotal,
		).Scan(&it.ID); err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sale: %w", err)
	}
	return nil
}

type demand struct {
	productID int
	quantity  int
}

// stockDemand sums quantities per product, preserving first-seen order so
// concurrent sales lock rows in a stable order.
func stockDemand(items []models.SaleItem) []demand {
	var out []demand
	index := map[int]int{}
	for _, it := range items {
		if it.ProductID == nil {
			continue
		}
		if i, ok := index[*it.ProductID]; ok {
			out[i].quantity += it.Quantity
			continue
		}
		index[*it.ProductID] = len(out)
		out = append(out, demand{productID: *it.ProductID, quantity: it.Quantity})
	}
	return out
}

func decrementStock(ctx context.Context, tx *sqlx.Tx, productID, quantity int) error {
	const q = `
        UPDATE products
        SET stock_quantity = stock_quantity - $2, updated_at = NOW()
        WHERE id = $1 AND stock_quantity >= $2`
	res, err := tx.ExecContext(ctx, q, productID, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, productID); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("product %d: %w", productID, utils.ErrProductNotFound)
	}
	return fmt.Errorf("product %d: %w", productID, utils.ErrInsufficientStock)
}

// GetByID returns a sale with its items, or sql.ErrNoRows.
func (r *SaleRepository) GetByID(ctx context.Context, id int) (*models.Sale, error) {
	var s models.Sale
	if err := r.db.GetContext(ctx, &s, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id); err != nil {
		return nil, err
	}

	s.Items = []models.SaleItem{}
	const q = `SELECT id, sale_id, product_id, name, unit_price, quantity, line_total
        FROM sale_items WHERE sale_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &s.Items, q, id); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetAllPaged returns sales newest first, without items.
func (r *SaleRepository) GetAllPaged(ctx context.Context, f SaleFilter) ([]models.Sale, int, error) {
	page, limit := normalizePage(f.Page, f.Limit)
	offset := (page - 1) * limit

	const baseWhere = `WHERE ($1 = 0 OR customer_id = $1)`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(1) FROM sales `+baseWhere, f.CustomerID); err != nil {
		return nil, 0, err
	}

	sales := []models.Sale{}
	listQuery := `SELECT ` + saleColumns + ` FROM sales ` + baseWhere + `
        ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &sales, listQuery, f.CustomerID, limit, offset); err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}
