package products

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/platform/db"
)

// ListFilters narrows the product listing.
type ListFilters struct {
	Search  string
	Page    int
	PerPage int
}

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, product Product) error
	Delete(ctx context.Context, id int64) error
	SearchFragment(ctx context.Context, fragment string, limit int) ([]LookupRow, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `id, code, name, unit, price, cost, quantity, alert_quantity, details, created_at, updated_at`

// List uses a dynamic query due to filter complexity
func (r *repository) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM products WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		clause := ` AND (code ILIKE $` + strconv.Itoa(argCount) + ` OR name ILIKE $` + strconv.Itoa(argCount) + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ASC`

	if filters.PerPage > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.PerPage)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.PerPage
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (code, name, unit, price, cost, quantity, alert_quantity, details, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id
	`, product.Code, product.Name, product.Unit, db.NumericFromDecimal(product.Price), db.NumericFromDecimal(product.Cost),
		product.Quantity, product.AlertQuantity, product.Details, pgtype.Timestamptz{Time: now, Valid: true},
	).Scan(&product.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Product{}, ErrDuplicateCode
		}
		return Product{}, err
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repository) Update(ctx context.Context, id int64, product Product) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET code = $1, name = $2, unit = $3, price = $4, cost = $5,
		    alert_quantity = $6, details = $7, updated_at = NOW()
		WHERE id = $8
	`, product.Code, product.Name, product.Unit, db.NumericFromDecimal(product.Price), db.NumericFromDecimal(product.Cost),
		product.AlertQuantity, product.Details, id)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchFragment matches the fragment case-insensitively against code or name.
func (r *repository) SearchFragment(ctx context.Context, fragment string, limit int) ([]LookupRow, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, code, name, quantity, price
		FROM products
		WHERE code ILIKE $1 OR name ILIKE $1
		LIMIT $2
	`, "%"+fragment+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LookupRow
	for rows.Next() {
		var row LookupRow
		var price pgtype.Numeric
		if err := rows.Scan(&row.ProductID, &row.Code, &row.Name, &row.CurrentStock, &price); err != nil {
			return nil, err
		}
		row.UnitPrice = db.DecimalFromNumeric(price)
		result = append(result, row)
	}
	return result, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	var price, cost pgtype.Numeric
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Unit, &price, &cost, &p.Quantity, &p.AlertQuantity, &p.Details, &createdAt, &updatedAt)
	if err != nil {
		return Product{}, err
	}
	p.Price = db.DecimalFromNumeric(price)
	p.Cost = db.DecimalFromNumeric(cost)
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	return p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
