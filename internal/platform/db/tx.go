package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WithTx runs op inside a RepeatableRead transaction. The document writers
// (adjustments, trade, finance) rely on this level so header and line reads
// stay consistent within one commit. An error from op rolls everything back.
func WithTx(ctx context.Context, pool *pgxpool.Pool, op func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}
	// Rollback after a successful commit is a no-op.
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := op(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}
	return nil
}
