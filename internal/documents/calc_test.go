package documents

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestLineSubtotal(t *testing.T) {
	item := LineItem{Quantity: 3, UnitPrice: d("25.50"), Discount: d("5"), Tax: d("2.25")}
	require.True(t, LineSubtotal(item).Equal(d("73.75")))

	// A discount above the gross amount passes through as negative.
	item = LineItem{Quantity: 1, UnitPrice: d("10"), Discount: d("15")}
	require.True(t, LineSubtotal(item).Equal(d("-5")))
}

func TestComputeTotalsReconciles(t *testing.T) {
	lines := []LineItem{
		{Quantity: 2, UnitPrice: d("40")},
		{Quantity: 4, UnitPrice: d("30"), Discount: d("10"), Tax: d("10")},
	}
	header := Header{
		OrderTaxPercent: d("10"),
		DiscountAmount:  d("15"),
		DiscountKind:    DiscountFixed,
		Shipping:        d("7.50"),
		Paid:            d("100"),
		HasPayment:      true,
	}

	totals := ComputeTotals(lines, header)
	require.True(t, totals.Subtotal.Equal(d("200")))
	require.True(t, totals.OrderTax.Equal(d("20")))
	require.True(t, totals.Discount.Equal(d("15")))
	require.True(t, totals.GrandTotal.Equal(totals.Subtotal.Add(totals.OrderTax).Add(totals.Shipping).Sub(totals.Discount)))
	require.True(t, totals.Due.Equal(totals.GrandTotal.Sub(header.Paid)))
}

func TestPercentVsFixedDiscount(t *testing.T) {
	lines := []LineItem{{Quantity: 2, UnitPrice: d("100")}}

	percent := ComputeTotals(lines, Header{DiscountAmount: d("10"), DiscountKind: DiscountPercent})
	require.True(t, percent.Discount.Equal(d("20")))

	fixed := ComputeTotals(lines, Header{DiscountAmount: d("10"), DiscountKind: DiscountFixed})
	require.True(t, fixed.Discount.Equal(d("10")))
}

func TestQuotationHasNoDue(t *testing.T) {
	lines := []LineItem{{Quantity: 1, UnitPrice: d("50")}}
	totals := ComputeTotals(lines, Header{Paid: d("50"), HasPayment: false})
	require.True(t, totals.Due.IsZero())
	require.True(t, totals.GrandTotal.Equal(d("50")))
}

func TestComputeTotalsIsDeterministic(t *testing.T) {
	lines := []LineItem{
		{Quantity: 7, UnitPrice: d("3.33"), Tax: d("0.17")},
		{Quantity: 1, UnitPrice: d("99.99"), Discount: d("0.99")},
	}
	header := Header{OrderTaxPercent: d("7.5"), DiscountAmount: d("5"), DiscountKind: DiscountPercent}

	first := ComputeTotals(lines, header)
	for i := 0; i < 10; i++ {
		again := ComputeTotals(lines, header)
		require.True(t, again.GrandTotal.Equal(first.GrandTotal))
		require.True(t, again.Subtotal.Equal(first.Subtotal))
	}
}
