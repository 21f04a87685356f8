package finance

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListAccounts(ctx context.Context, filters ListFilters) ([]Account, int, error) {
	return s.repo.ListAccounts(ctx, filters)
}

func (s *Service) GetAccount(ctx context.Context, id int64) (Account, error) {
	if id <= 0 {
		return Account{}, errors.New("invalid account ID")
	}
	return s.repo.GetAccount(ctx, id)
}

func (s *Service) CreateAccount(ctx context.Context, account Account) (Account, error) {
	if strings.TrimSpace(account.Name) == "" {
		return Account{}, errors.New("account name is required")
	}
	if account.Balance.IsNegative() {
		return Account{}, errors.New("opening balance must be >= 0")
	}
	return s.repo.CreateAccount(ctx, account)
}

func (s *Service) UpdateAccount(ctx context.Context, id int64, account Account) error {
	if id <= 0 {
		return errors.New("invalid account ID")
	}
	if strings.TrimSpace(account.Name) == "" {
		return errors.New("account name is required")
	}
	return s.repo.UpdateAccount(ctx, id, account)
}

func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid account ID")
	}
	return s.repo.DeleteAccount(ctx, id)
}

func (s *Service) CreateDeposit(ctx context.Context, movement Movement) (Movement, error) {
	if err := validateMovement(&movement); err != nil {
		return Movement{}, err
	}
	return s.repo.CreateDeposit(ctx, movement)
}

func (s *Service) DeleteDeposit(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid deposit ID")
	}
	return s.repo.DeleteDeposit(ctx, id)
}

func (s *Service) ListDeposits(ctx context.Context, filters ListFilters) ([]Movement, int, error) {
	return s.repo.ListDeposits(ctx, filters)
}

func (s *Service) CreateExpense(ctx context.Context, movement Movement) (Movement, error) {
	if err := validateMovement(&movement); err != nil {
		return Movement{}, err
	}
	return s.repo.CreateExpense(ctx, movement)
}

func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid expense ID")
	}
	return s.repo.DeleteExpense(ctx, id)
}

func (s *Service) ListExpenses(ctx context.Context, filters ListFilters) ([]Movement, int, error) {
	return s.repo.ListExpenses(ctx, filters)
}

func validateMovement(m *Movement) error {
	if m.AccountID <= 0 {
		return ErrAccountNotFound
	}
	if !m.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if m.Date.IsZero() {
		m.Date = time.Now()
	}
	return nil
}
