package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// lowStockRow is one product at or below its alert level.
type lowStockRow struct {
	Code     string
	Name     string
	Quantity int64
	Alert    int64
}

// StockAlertScanner finds products whose quantity dropped to the alert
// threshold and enqueues a notification email per scan.
type StockAlertScanner struct {
	pool      *pgxpool.Pool
	enqueuer  *Client
	recipient string
	logger    *slog.Logger
}

func NewStockAlertScanner(pool *pgxpool.Pool, enqueuer *Client, recipient string, logger *slog.Logger) *StockAlertScanner {
	return &StockAlertScanner{pool: pool, enqueuer: enqueuer, recipient: recipient, logger: logger}
}

// Handle processes TaskTypeStockAlertScan tasks.
func (s *StockAlertScanner) Handle(ctx context.Context, t *asynq.Task) error {
	rows, err := s.scan(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		s.logger.Info("stock alert scan clean")
		return nil
	}

	s.logger.Warn("stock alert scan found low products", slog.Int("count", len(rows)))
	if s.recipient == "" || s.enqueuer == nil {
		return nil
	}

	var body strings.Builder
	body.WriteString("Products at or below their alert quantity:\n\n")
	for _, row := range rows {
		fmt.Fprintf(&body, "%s  %s  stock=%d alert=%d\n", row.Code, row.Name, row.Quantity, row.Alert)
	}

	_, err = s.enqueuer.EnqueueSendEmail(ctx, SendEmailPayload{
		To:      s.recipient,
		Subject: fmt.Sprintf("Low stock alert: %d product(s)", len(rows)),
		Body:    body.String(),
	})
	return err
}

func (s *StockAlertScanner) scan(ctx context.Context) ([]lowStockRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT code, name, quantity, alert_quantity
		FROM products
		WHERE alert_quantity > 0 AND quantity <= alert_quantity
		ORDER BY quantity ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []lowStockRow
	for rows.Next() {
		var row lowStockRow
		if err := rows.Scan(&row.Code, &row.Name, &row.Quantity, &row.Alert); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
