// Package finance covers accounts and the cash movements against them.
// A deposit credits its account, an expense debits it; either way the
// movement and the balance change commit together.
package finance

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Account is a cash or bank account with a running balance.
type Account struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	Details       string          `json:"details,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Movement is a deposit or expense row. Direction lives in the repository;
// the shape is identical.
type Movement struct {
	ID        int64           `json:"id"`
	AccountID int64           `json:"account_id"`
	Date      time.Time       `json:"date"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Details   string          `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

var (
	// ErrAccountNotFound indicates a missing account.
	ErrAccountNotFound = errors.New("finance: account not found")
	// ErrMovementNotFound indicates a missing deposit or expense.
	ErrMovementNotFound = errors.New("finance: movement not found")
	// ErrInvalidAmount indicates a non-positive movement amount.
	ErrInvalidAmount = errors.New("finance: amount must be greater than zero")
)
