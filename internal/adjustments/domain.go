package adjustments

import (
	"errors"
	"time"
)

// Kind states which direction a line moves stock.
type Kind string

const (
	KindIncrease Kind = "increase"
	KindDecrease Kind = "decrease"
)

// Valid reports whether the kind is one of the two known directions.
func (k Kind) Valid() bool {
	return k == KindIncrease || k == KindDecrease
}

// Adjustment is the committed header. Lines travel with it.
type Adjustment struct {
	ID          int64     `json:"id"`
	Reference   string    `json:"reference"`
	WarehouseID int64     `json:"warehouse_id"`
	Date        time.Time `json:"date"`
	Note        string    `json:"note,omitempty"`
	ItemCount   int       `json:"item_count"`
	CreatedAt   time.Time `json:"created_at"`
	Lines       []Line    `json:"lines,omitempty"`
}

// Line is one product movement inside an adjustment. StockSnapshot is the
// quantity observed when the operator added the line; reconciliation works
// from the snapshot, not from a fresh read.
type Line struct {
	ID            int64  `json:"id"`
	AdjustmentID  int64  `json:"adjustment_id"`
	ProductID     int64  `json:"product_id"`
	ProductCode   string `json:"product_code"`
	ProductName   string `json:"product_name"`
	StockSnapshot int64  `json:"stock_snapshot"`
	Quantity      int64  `json:"quantity"`
	Kind          Kind   `json:"kind"`
}

// NewStock resolves the post-adjustment quantity for the line. Decreases
// floor at zero rather than going negative.
func (l Line) NewStock() int64 {
	if l.Kind == KindIncrease {
		return l.StockSnapshot + l.Quantity
	}
	next := l.StockSnapshot - l.Quantity
	if next < 0 {
		return 0
	}
	return next
}

var (
	// ErrWarehouseRequired indicates the header had no warehouse.
	ErrWarehouseRequired = errors.New("adjustments: warehouse is required")
	// ErrWarehouseNotFound indicates the referenced warehouse does not exist.
	ErrWarehouseNotFound = errors.New("adjustments: warehouse not found")
	// ErrNoLines indicates a commit attempt without any line.
	ErrNoLines = errors.New("adjustments: at least one line is required")
	// ErrInvalidLine indicates a line with a bad quantity or kind.
	ErrInvalidLine = errors.New("adjustments: invalid line")
	// ErrNotFound indicates a missing adjustment.
	ErrNotFound = errors.New("adjustments: not found")
)
