package trade

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/platform/db"
)

// ListFilters narrows the document listing.
type ListFilters struct {
	CounterpartyID int64
	WarehouseID    int64
	Search         string
	DateFrom       time.Time
	DateTo         time.Time
	Page           int
	PerPage        int
}

type Repository interface {
	CreateWithLines(ctx context.Context, doc *Document) error
	// UpdateWithLines rewrites the header and replaces the lines wholesale.
	UpdateWithLines(ctx context.Context, doc *Document) error
	Get(ctx context.Context, id int64) (Document, error)
	List(ctx context.Context, filters ListFilters) ([]Document, int, error)
	Delete(ctx context.Context, id int64) error
	WarehouseExists(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
	spec Spec
}

func NewRepository(pool *pgxpool.Pool, spec Spec) Repository {
	return &repository{pool: pool, spec: spec}
}

func (r *repository) CreateWithLines(ctx context.Context, doc *Document) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		reference, err := r.nextReference(ctx, tx, doc.Date)
		if err != nil {
			return err
		}
		doc.Reference = reference

		now := time.Now()
		err = tx.QueryRow(ctx, `
			INSERT INTO `+r.spec.Table+`
				(reference, counterparty_id, warehouse_id, date, status,
				 order_tax_percent, discount_amount, discount_kind, shipping_amount,
				 subtotal, order_tax, discount, grand_total, paid_amount, due,
				 payment_status, details, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $18)
			RETURNING id
		`, doc.Reference, doc.CounterpartyID, doc.WarehouseID, doc.Date, doc.Status,
			db.NumericFromDecimal(doc.OrderTaxPercent), db.NumericFromDecimal(doc.DiscountAmount),
			doc.DiscountKind, db.NumericFromDecimal(doc.ShippingAmount),
			db.NumericFromDecimal(doc.Subtotal), db.NumericFromDecimal(doc.OrderTax),
			db.NumericFromDecimal(doc.Discount), db.NumericFromDecimal(doc.GrandTotal),
			db.NumericFromDecimal(doc.PaidAmount), db.NumericFromDecimal(doc.Due),
			string(doc.PaymentStatus), doc.Details, pgtype.Timestamptz{Time: now, Valid: true},
		).Scan(&doc.ID)
		if err != nil {
			return fmt.Errorf("trade: insert %s header: %w", r.spec.Kind, err)
		}
		doc.CreatedAt = now
		doc.UpdatedAt = now

		return r.insertLines(ctx, tx, doc)
	})
}

func (r *repository) UpdateWithLines(ctx context.Context, doc *Document) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE `+r.spec.Table+`
			SET counterparty_id = $1, warehouse_id = $2, date = $3, status = $4,
			    order_tax_percent = $5, discount_amount = $6, discount_kind = $7,
			    shipping_amount = $8, subtotal = $9, order_tax = $10, discount = $11,
			    grand_total = $12, paid_amount = $13, due = $14, payment_status = $15,
			    details = $16, updated_at = NOW()
			WHERE id = $17
		`, doc.CounterpartyID, doc.WarehouseID, doc.Date, doc.Status,
			db.NumericFromDecimal(doc.OrderTaxPercent), db.NumericFromDecimal(doc.DiscountAmount),
			doc.DiscountKind, db.NumericFromDecimal(doc.ShippingAmount),
			db.NumericFromDecimal(doc.Subtotal), db.NumericFromDecimal(doc.OrderTax),
			db.NumericFromDecimal(doc.Discount), db.NumericFromDecimal(doc.GrandTotal),
			db.NumericFromDecimal(doc.PaidAmount), db.NumericFromDecimal(doc.Due),
			string(doc.PaymentStatus), doc.Details, doc.ID)
		if err != nil {
			return fmt.Errorf("trade: update %s header: %w", r.spec.Kind, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM `+r.spec.ItemsTable+` WHERE document_id = $1`, doc.ID); err != nil {
			return err
		}
		return r.insertLines(ctx, tx, doc)
	})
}

func (r *repository) insertLines(ctx context.Context, tx pgx.Tx, doc *Document) error {
	for i := range doc.Lines {
		line := &doc.Lines[i]
		line.DocumentID = doc.ID
		err := tx.QueryRow(ctx, `
			INSERT INTO `+r.spec.ItemsTable+`
				(document_id, product_id, product_code, product_name, stock_snapshot,
				 quantity, unit_price, discount, tax, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`, line.DocumentID, line.ProductID, line.ProductCode, line.ProductName, line.StockSnapshot,
			line.Quantity, db.NumericFromDecimal(line.UnitPrice), db.NumericFromDecimal(line.Discount),
			db.NumericFromDecimal(line.Tax), db.NumericFromDecimal(line.Subtotal),
		).Scan(&line.ID)
		if err != nil {
			return fmt.Errorf("trade: insert %s line %d: %w", r.spec.Kind, i+1, err)
		}
	}
	return nil
}

func (r *repository) nextReference(ctx context.Context, tx pgx.Tx, date time.Time) (string, error) {
	if date.IsZero() {
		date = time.Now()
	}
	period := date.Format("0601")
	var seq int64
	err := tx.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value
	`, r.spec.Kind, period).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("trade: next %s reference: %w", r.spec.Kind, err)
	}
	return fmt.Sprintf("%s-%s-%04d", r.spec.Prefix, period, seq), nil
}

const documentColumns = `id, reference, counterparty_id, warehouse_id, date, status,
	order_tax_percent, discount_amount, discount_kind, shipping_amount,
	subtotal, order_tax, discount, grand_total, paid_amount, due,
	payment_status, details, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (Document, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM `+r.spec.Table+` WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, document_id, product_id, product_code, product_name, stock_snapshot,
		       quantity, unit_price, discount, tax, subtotal
		FROM `+r.spec.ItemsTable+`
		WHERE document_id = $1
		ORDER BY id ASC
	`, id)
	if err != nil {
		return Document{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var line Line
		var unitPrice, discount, tax, subtotal pgtype.Numeric
		if err := rows.Scan(&line.ID, &line.DocumentID, &line.ProductID, &line.ProductCode,
			&line.ProductName, &line.StockSnapshot, &line.Quantity,
			&unitPrice, &discount, &tax, &subtotal); err != nil {
			return Document{}, err
		}
		line.UnitPrice = db.DecimalFromNumeric(unitPrice)
		line.Discount = db.DecimalFromNumeric(discount)
		line.Tax = db.DecimalFromNumeric(tax)
		line.Subtotal = db.DecimalFromNumeric(subtotal)
		doc.Lines = append(doc.Lines, line)
	}
	return doc, rows.Err()
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Document, int, error) {
	query := `SELECT ` + documentColumns + ` FROM ` + r.spec.Table + ` WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM ` + r.spec.Table + ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	addClause := func(clause string, value interface{}) {
		argCount++
		c := clause + strconv.Itoa(argCount)
		query += c
		countQuery += c
		args = append(args, value)
	}

	if filters.CounterpartyID > 0 {
		addClause(` AND counterparty_id = $`, filters.CounterpartyID)
	}
	if filters.WarehouseID > 0 {
		addClause(` AND warehouse_id = $`, filters.WarehouseID)
	}
	if filters.Search != "" {
		addClause(` AND reference ILIKE $`, "%"+filters.Search+"%")
	}
	if !filters.DateFrom.IsZero() {
		addClause(` AND date >= $`, filters.DateFrom)
	}
	if !filters.DateTo.IsZero() {
		addClause(` AND date <= $`, filters.DateTo)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY date DESC, id DESC`

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

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, doc)
	}
	return docs, total, rows.Err()
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM `+r.spec.ItemsTable+` WHERE document_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM `+r.spec.Table+` WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *repository) WarehouseExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM warehouses WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func scanDocument(row pgx.Row) (Document, error) {
	var doc Document
	var orderTaxPct, discountAmount, shipping, subtotal, orderTax, discount, grand, paid, due pgtype.Numeric
	var status string
	var date, createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&doc.ID, &doc.Reference, &doc.CounterpartyID, &doc.WarehouseID, &date, &doc.Status,
		&orderTaxPct, &discountAmount, &doc.DiscountKind, &shipping,
		&subtotal, &orderTax, &discount, &grand, &paid, &due,
		&status, &doc.Details, &createdAt, &updatedAt)
	if err != nil {
		return Document{}, err
	}
	doc.Date = date.Time
	doc.OrderTaxPercent = db.DecimalFromNumeric(orderTaxPct)
	doc.DiscountAmount = db.DecimalFromNumeric(discountAmount)
	doc.ShippingAmount = db.DecimalFromNumeric(shipping)
	doc.Subtotal = db.DecimalFromNumeric(subtotal)
	doc.OrderTax = db.DecimalFromNumeric(orderTax)
	doc.Discount = db.DecimalFromNumeric(discount)
	doc.GrandTotal = db.DecimalFromNumeric(grand)
	doc.PaidAmount = db.DecimalFromNumeric(paid)
	doc.Due = db.DecimalFromNumeric(due)
	doc.PaymentStatus = PaymentStatus(status)
	doc.CreatedAt = createdAt.Time
	doc.UpdatedAt = updatedAt.Time
	return doc, nil
}
