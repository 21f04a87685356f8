// Package trade implements the purchase, sale and quotation document
// editors. The three kinds share one storage and service engine; a Spec
// describes what differs between them.
package trade

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Spec captures the per-kind differences of a trade document.
type Spec struct {
	// Kind keys document_sequences and log lines, e.g. "purchase".
	Kind string
	// Prefix heads generated references, e.g. "PUR".
	Prefix string
	// Table and ItemsTable name the backing relations.
	Table      string
	ItemsTable string
	// HasPayment is false for quotations.
	HasPayment bool
	// CounterpartyLabel names the other party in errors ("supplier"/"customer").
	CounterpartyLabel string
}

// PaymentStatus classifies how much of the grand total is settled.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPartial PaymentStatus = "partial"
	PaymentUnpaid  PaymentStatus = "unpaid"
)

// Document is a committed trade document with derived totals.
type Document struct {
	ID              int64           `json:"id"`
	Reference       string          `json:"reference"`
	CounterpartyID  int64           `json:"counterparty_id"`
	WarehouseID     int64           `json:"warehouse_id"`
	Date            time.Time       `json:"date"`
	Status          string          `json:"status"`
	OrderTaxPercent decimal.Decimal `json:"order_tax_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	DiscountKind    string          `json:"discount_kind"`
	ShippingAmount  decimal.Decimal `json:"shipping_amount"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	OrderTax        decimal.Decimal `json:"order_tax"`
	Discount        decimal.Decimal `json:"discount"`
	GrandTotal      decimal.Decimal `json:"grand_total"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	Due             decimal.Decimal `json:"due"`
	PaymentStatus   PaymentStatus   `json:"payment_status,omitempty"`
	Details         string          `json:"details,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Lines           []Line          `json:"lines,omitempty"`
}

// Line is one stored product row. Code, name and stock are denormalized;
// the document keeps what the editor saw.
type Line struct {
	ID            int64           `json:"id"`
	DocumentID    int64           `json:"document_id"`
	ProductID     int64           `json:"product_id"`
	ProductCode   string          `json:"product_code"`
	ProductName   string          `json:"product_name"`
	StockSnapshot int64           `json:"stock_snapshot"`
	Quantity      int64           `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Discount      decimal.Decimal `json:"discount"`
	Tax           decimal.Decimal `json:"tax"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

var (
	// ErrNotFound indicates a missing document.
	ErrNotFound = errors.New("trade: document not found")
	// ErrNoLines indicates a document without any line.
	ErrNoLines = errors.New("trade: at least one line is required")
)

// derivePaymentStatus maps paid vs grand total onto the three buckets.
func derivePaymentStatus(paid, grand decimal.Decimal) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(grand) && grand.GreaterThan(decimal.Zero):
		return PaymentPaid
	case paid.GreaterThan(decimal.Zero):
		return PaymentPartial
	default:
		return PaymentUnpaid
	}
}
