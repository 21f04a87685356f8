// Package documents holds the line-item model shared by purchases, sales and
// quotations, and the calculator that derives document totals from it.
package documents

import (
	"errors"

	"github.com/shopspring/decimal"
)

// DiscountKind selects how the header-level discount is interpreted.
type DiscountKind string

const (
	// DiscountFixed treats the discount as an absolute currency amount.
	DiscountFixed DiscountKind = "fixed"
	// DiscountPercent treats the discount as a percentage of the subtotal.
	DiscountPercent DiscountKind = "percent"
)

// LineItem is one product row inside a document.
//
// CurrentStock is the stock level captured when the row was added to the
// editor, not a live read. Display fields are denormalized for the same
// reason: the document keeps what the user saw.
type LineItem struct {
	ProductID    int64
	Code         string
	Name         string
	CurrentStock int64
	Quantity     int64
	UnitPrice    decimal.Decimal
	Discount     decimal.Decimal
	Tax          decimal.Decimal
	Subtotal     decimal.Decimal
}

// Header carries the document-level inputs that shape the totals.
type Header struct {
	OrderTaxPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	DiscountKind    DiscountKind
	Shipping        decimal.Decimal
	Paid            decimal.Decimal
	// HasPayment is false for quotations, which carry no paid amount.
	HasPayment bool
}

// Totals are the derived document amounts.
type Totals struct {
	Subtotal   decimal.Decimal
	OrderTax   decimal.Decimal
	Discount   decimal.Decimal
	Shipping   decimal.Decimal
	GrandTotal decimal.Decimal
	Due        decimal.Decimal
}

var (
	// ErrInvalidQuantity indicates a quantity below one.
	ErrInvalidQuantity = errors.New("documents: quantity must be at least 1")
	// ErrNegativeAmount indicates a negative monetary input.
	ErrNegativeAmount = errors.New("documents: amount must be >= 0")
	// ErrLineOutOfRange indicates a line index outside the editor.
	ErrLineOutOfRange = errors.New("documents: line index out of range")
	// ErrInvalidDiscountKind indicates an unknown discount kind.
	ErrInvalidDiscountKind = errors.New("documents: discount kind must be fixed or percent")
	// ErrNoPayment indicates a paid amount set on a document without payment.
	ErrNoPayment = errors.New("documents: document carries no paid amount")
)
