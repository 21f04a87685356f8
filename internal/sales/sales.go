// Package sales wires the trade engine for customer sale documents.
package sales

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/trade"
)

// Spec configures the trade engine for sales.
var Spec = trade.Spec{
	Kind:              "sale",
	Prefix:            "SAL",
	Table:             "sales",
	ItemsTable:        "sale_items",
	HasPayment:        true,
	CounterpartyLabel: "customer",
}

func NewService(pool *pgxpool.Pool, logger *slog.Logger) *trade.Service {
	return trade.NewService(Spec, trade.NewRepository(pool, Spec), logger)
}

func NewHandler(logger *slog.Logger, service *trade.Service) *trade.Handler {
	return trade.NewHandler(logger, service, "sales")
}
