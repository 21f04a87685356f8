package adjustments

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

// ListFilters narrows the adjustment listing.
type ListFilters struct {
	WarehouseID int64
	Search      string
	Page        int
	PerPage     int
}

type Repository interface {
	// CreateWithLines persists the header and all lines in one transaction
	// and fills in the generated ID, reference and timestamps.
	CreateWithLines(ctx context.Context, adjustment *Adjustment) error
	Get(ctx context.Context, id int64) (Adjustment, error)
	List(ctx context.Context, filters ListFilters) ([]Adjustment, int, error)
	Delete(ctx context.Context, id int64) error
	// UpdateProductStock is deliberately outside the commit transaction;
	// each line's stock write stands on its own.
	UpdateProductStock(ctx context.Context, productID, newStock int64) error
	WarehouseExists(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) CreateWithLines(ctx context.Context, adjustment *Adjustment) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		reference, err := nextReference(ctx, tx, adjustment.Date)
		if err != nil {
			return err
		}
		adjustment.Reference = reference

		now := time.Now()
		err = tx.QueryRow(ctx, `
			INSERT INTO adjustments (reference, warehouse_id, date, note, item_count, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, adjustment.Reference, adjustment.WarehouseID, adjustment.Date, adjustment.Note,
			len(adjustment.Lines), pgtype.Timestamptz{Time: now, Valid: true},
		).Scan(&adjustment.ID)
		if err != nil {
			return fmt.Errorf("adjustments: insert header: %w", err)
		}
		adjustment.ItemCount = len(adjustment.Lines)
		adjustment.CreatedAt = now

		for i := range adjustment.Lines {
			line := &adjustment.Lines[i]
			line.AdjustmentID = adjustment.ID
			err := tx.QueryRow(ctx, `
				INSERT INTO adjustment_items
					(adjustment_id, product_id, product_code, product_name, stock_snapshot, quantity, kind)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id
			`, line.AdjustmentID, line.ProductID, line.ProductCode, line.ProductName,
				line.StockSnapshot, line.Quantity, string(line.Kind),
			).Scan(&line.ID)
			if err != nil {
				return fmt.Errorf("adjustments: insert line %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// nextReference hands out ADJ-YYMM-NNNN, sequenced per calendar month.
func nextReference(ctx context.Context, tx pgx.Tx, date time.Time) (string, error) {
	if date.IsZero() {
		date = time.Now()
	}
	period := date.Format("0601")
	var seq int64
	err := tx.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, last_value)
		VALUES ('adjustment', $1, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value
	`, period).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("adjustments: next reference: %w", err)
	}
	return fmt.Sprintf("ADJ-%s-%04d", period, seq), nil
}

const adjustmentColumns = `id, reference, warehouse_id, date, note, item_count, created_at`

func (r *repository) Get(ctx context.Context, id int64) (Adjustment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+adjustmentColumns+` FROM adjustments WHERE id = $1`, id)
	adj, err := scanAdjustment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Adjustment{}, ErrNotFound
		}
		return Adjustment{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, adjustment_id, product_id, product_code, product_name, stock_snapshot, quantity, kind
		FROM adjustment_items
		WHERE adjustment_id = $1
		ORDER BY id ASC
	`, id)
	if err != nil {
		return Adjustment{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var line Line
		var kind string
		if err := rows.Scan(&line.ID, &line.AdjustmentID, &line.ProductID, &line.ProductCode,
			&line.ProductName, &line.StockSnapshot, &line.Quantity, &kind); err != nil {
			return Adjustment{}, err
		}
		line.Kind = Kind(kind)
		adj.Lines = append(adj.Lines, line)
	}
	return adj, rows.Err()
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Adjustment, int, error) {
	query := `SELECT ` + adjustmentColumns + ` FROM adjustments WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM adjustments WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.WarehouseID > 0 {
		argCount++
		clause := ` AND warehouse_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.WarehouseID)
	}
	if filters.Search != "" {
		argCount++
		clause := ` AND reference ILIKE $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
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

	var adjustments []Adjustment
	for rows.Next() {
		adj, err := scanAdjustment(rows)
		if err != nil {
			return nil, 0, err
		}
		adjustments = append(adjustments, adj)
	}
	return adjustments, total, rows.Err()
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM adjustment_items WHERE adjustment_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM adjustments WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *repository) UpdateProductStock(ctx context.Context, productID, newStock int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET quantity = $1, updated_at = NOW() WHERE id = $2
	`, newStock, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("adjustments: product %d not found", productID)
	}
	return nil
}

func (r *repository) WarehouseExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM warehouses WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func scanAdjustment(row pgx.Row) (Adjustment, error) {
	var adj Adjustment
	var date, createdAt pgtype.Timestamptz
	err := row.Scan(&adj.ID, &adj.Reference, &adj.WarehouseID, &date, &adj.Note, &adj.ItemCount, &createdAt)
	if err != nil {
		return Adjustment{}, err
	}
	adj.Date = date.Time
	adj.CreatedAt = createdAt.Time
	return adj, nil
}
