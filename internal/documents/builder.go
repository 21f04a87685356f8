package documents

import "github.com/shopspring/decimal"

// Builder is the in-session editor state for one document. It owns the header
// and line list for the duration of a create/edit session and recomputes all
// derived totals on every mutation. It is not safe for concurrent use; each
// editing session owns exactly one Builder.
type Builder struct {
	header Header
	lines  []LineItem
	totals Totals
}

// NewBuilder returns an editor with an empty line list. hasPayment must be
// false for quotations.
func NewBuilder(hasPayment bool) *Builder {
	b := &Builder{header: Header{DiscountKind: DiscountFixed, HasPayment: hasPayment}}
	b.recompute()
	return b
}

// AddLine appends a product row. The line's subtotal is derived; any value
// supplied in item.Subtotal is ignored.
func (b *Builder) AddLine(item LineItem) error {
	if err := validateLine(item); err != nil {
		return err
	}
	item.Subtotal = LineSubtotal(item)
	b.lines = append(b.lines, item)
	b.recompute()
	return nil
}

// RemoveLine deletes the line at index, preserving the order of the rest.
func (b *Builder) RemoveLine(index int) error {
	if index < 0 || index >= len(b.lines) {
		return ErrLineOutOfRange
	}
	b.lines = append(b.lines[:index], b.lines[index+1:]...)
	b.recompute()
	return nil
}

// SetLineQuantity updates one line's quantity. Values below one are rejected.
func (b *Builder) SetLineQuantity(index int, quantity int64) error {
	if index < 0 || index >= len(b.lines) {
		return ErrLineOutOfRange
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	b.lines[index].Quantity = quantity
	b.refreshLine(index)
	return nil
}

// SetLineUnitPrice updates one line's unit price.
func (b *Builder) SetLineUnitPrice(index int, price decimal.Decimal) error {
	if index < 0 || index >= len(b.lines) {
		return ErrLineOutOfRange
	}
	if price.IsNegative() {
		return ErrNegativeAmount
	}
	b.lines[index].UnitPrice = price
	b.refreshLine(index)
	return nil
}

// SetLineDiscount updates one line's absolute discount amount.
func (b *Builder) SetLineDiscount(index int, discount decimal.Decimal) error {
	if index < 0 || index >= len(b.lines) {
		return ErrLineOutOfRange
	}
	if discount.IsNegative() {
		return ErrNegativeAmount
	}
	b.lines[index].Discount = discount
	b.refreshLine(index)
	return nil
}

// SetLineTax updates one line's absolute tax amount.
func (b *Builder) SetLineTax(index int, tax decimal.Decimal) error {
	if index < 0 || index >= len(b.lines) {
		return ErrLineOutOfRange
	}
	if tax.IsNegative() {
		return ErrNegativeAmount
	}
	b.lines[index].Tax = tax
	b.refreshLine(index)
	return nil
}

// SetOrderTaxPercent updates the header order-tax percentage.
func (b *Builder) SetOrderTaxPercent(percent decimal.Decimal) error {
	if percent.IsNegative() {
		return ErrNegativeAmount
	}
	b.header.OrderTaxPercent = percent
	b.recompute()
	return nil
}

// SetDiscount updates the header discount amount and kind together.
func (b *Builder) SetDiscount(amount decimal.Decimal, kind DiscountKind) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	if kind != DiscountFixed && kind != DiscountPercent {
		return ErrInvalidDiscountKind
	}
	b.header.DiscountAmount = amount
	b.header.DiscountKind = kind
	b.recompute()
	return nil
}

// SetShipping updates the header shipping amount.
func (b *Builder) SetShipping(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	b.header.Shipping = amount
	b.recompute()
	return nil
}

// SetPaid updates the paid amount. It is a no-op error for documents without
// payment (quotations).
func (b *Builder) SetPaid(amount decimal.Decimal) error {
	if !b.header.HasPayment {
		return ErrNoPayment
	}
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	b.header.Paid = amount
	b.recompute()
	return nil
}

// Lines returns a copy of the current line list.
func (b *Builder) Lines() []LineItem {
	out := make([]LineItem, len(b.lines))
	copy(out, b.lines)
	return out
}

// Header returns the current header inputs.
func (b *Builder) Header() Header {
	return b.header
}

// Totals returns the derived amounts as of the last mutation.
func (b *Builder) Totals() Totals {
	return b.totals
}

func (b *Builder) refreshLine(index int) {
	b.lines[index].Subtotal = LineSubtotal(b.lines[index])
	b.recompute()
}

func (b *Builder) recompute() {
	b.totals = ComputeTotals(b.lines, b.header)
}

func validateLine(item LineItem) error {
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if item.UnitPrice.IsNegative() || item.Discount.IsNegative() || item.Tax.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}
