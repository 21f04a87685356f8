// Package purchases wires the trade engine for supplier purchase documents.
package purchases

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/trade"
)

// Spec configures the trade engine for purchases.
var Spec = trade.Spec{
	Kind:              "purchase",
	Prefix:            "PUR",
	Table:             "purchases",
	ItemsTable:        "purchase_items",
	HasPayment:        true,
	CounterpartyLabel: "supplier",
}

func NewService(pool *pgxpool.Pool, logger *slog.Logger) *trade.Service {
	return trade.NewService(Spec, trade.NewRepository(pool, Spec), logger)
}

func NewHandler(logger *slog.Logger, service *trade.Service) *trade.Handler {
	return trade.NewHandler(logger, service, "purchases")
}
