// Package quotations wires the trade engine for customer quotations.
// Quotations carry no payment; paid amount and due stay zero.
package quotations

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/trade"
)

// Spec configures the trade engine for quotations.
var Spec = trade.Spec{
	Kind:              "quotation",
	Prefix:            "QT",
	Table:             "quotations",
	ItemsTable:        "quotation_items",
	HasPayment:        false,
	CounterpartyLabel: "customer",
}

func NewService(pool *pgxpool.Pool, logger *slog.Logger) *trade.Service {
	return trade.NewService(Spec, trade.NewRepository(pool, Spec), logger)
}

func NewHandler(logger *slog.Logger, service *trade.Service) *trade.Handler {
	return trade.NewHandler(logger, service, "quotations")
}
