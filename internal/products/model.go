package products

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable SKU. Quantity is the authoritative stock level; the
// adjustment workflow is the only writer besides product CRUD itself.
type Product struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	Quantity      int64           `json:"quantity"`
	AlertQuantity int64           `json:"alert_quantity"`
	Details       string          `json:"details,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// LookupRow is the slim shape returned to line-item editors.
type LookupRow struct {
	ProductID    int64           `json:"product_id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	CurrentStock int64           `json:"current_stock"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

var (
	// ErrNotFound indicates a missing product.
	ErrNotFound = errors.New("products: not found")
	// ErrDuplicateCode indicates a code collision.
	ErrDuplicateCode = errors.New("products: code already exists")
)
