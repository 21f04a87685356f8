package warehouses

import (
	"errors"
	"time"
)

// Warehouse is a stock location. Every adjustment and stock document is
// scoped to exactly one warehouse.
type Warehouse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	// ErrNotFound indicates a missing warehouse.
	ErrNotFound = errors.New("warehouses: not found")
	// ErrInUse indicates the warehouse still has documents referencing it.
	ErrInUse = errors.New("warehouses: still referenced by documents")
)
