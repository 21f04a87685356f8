package documents

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineSubtotal derives a line's subtotal from its editable fields:
// quantity * unit price - discount + tax.
//
// The result is not floored at zero; a discount larger than the gross amount
// passes through as a negative subtotal.
func LineSubtotal(item LineItem) decimal.Decimal {
	gross := decimal.NewFromInt(item.Quantity).Mul(item.UnitPrice)
	return gross.Sub(item.Discount).Add(item.Tax)
}

// ComputeTotals derives all document amounts from the lines and header.
// It always recomputes from scratch so the totals can never drift from
// their inputs.
func ComputeTotals(lines []LineItem, header Header) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(LineSubtotal(line))
	}

	orderTax := subtotal.Mul(header.OrderTaxPercent).Div(hundred)

	discount := header.DiscountAmount
	if header.DiscountKind == DiscountPercent {
		discount = subtotal.Mul(header.DiscountAmount).Div(hundred)
	}

	grand := subtotal.Add(orderTax).Add(header.Shipping).Sub(discount)

	totals := Totals{
		Subtotal:   subtotal,
		OrderTax:   orderTax,
		Discount:   discount,
		Shipping:   header.Shipping,
		GrandTotal: grand,
	}
	if header.HasPayment {
		totals.Due = grand.Sub(header.Paid)
	}
	return totals
}
