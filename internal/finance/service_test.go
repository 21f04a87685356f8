package finance

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	accounts map[int64]Account
	deposits map[int64]Movement
	expenses map[int64]Movement
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		accounts: map[int64]Account{},
		deposits: map[int64]Movement{},
		expenses: map[int64]Movement{},
	}
}

func (m *memoryRepo) ListAccounts(ctx context.Context, f ListFilters) ([]Account, int, error) {
	var out []Account
	for _, a := range m.accounts {
		out = append(out, a)
	}
	return out, len(out), nil
}

func (m *memoryRepo) GetAccount(ctx context.Context, id int64) (Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return a, nil
}

func (m *memoryRepo) CreateAccount(ctx context.Context, account Account) (Account, error) {
	m.nextID++
	account.ID = m.nextID
	m.accounts[account.ID] = account
	return account, nil
}

func (m *memoryRepo) UpdateAccount(ctx context.Context, id int64, account Account) error {
	existing, ok := m.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	existing.Name = account.Name
	existing.AccountNumber = account.AccountNumber
	existing.Details = account.Details
	m.accounts[id] = existing
	return nil
}

func (m *memoryRepo) DeleteAccount(ctx context.Context, id int64) error {
	if _, ok := m.accounts[id]; !ok {
		return ErrAccountNotFound
	}
	delete(m.accounts, id)
	return nil
}

func (m *memoryRepo) CreateDeposit(ctx context.Context, movement Movement) (Movement, error) {
	return m.createMovement(m.deposits, movement, true)
}

func (m *memoryRepo) DeleteDeposit(ctx context.Context, id int64) error {
	return m.deleteMovement(m.deposits, id, true)
}

func (m *memoryRepo) ListDeposits(ctx context.Context, f ListFilters) ([]Movement, int, error) {
	var out []Movement
	for _, mv := range m.deposits {
		out = append(out, mv)
	}
	return out, len(out), nil
}

func (m *memoryRepo) CreateExpense(ctx context.Context, movement Movement) (Movement, error) {
	return m.createMovement(m.expenses, movement, false)
}

func (m *memoryRepo) DeleteExpense(ctx context.Context, id int64) error {
	return m.deleteMovement(m.expenses, id, false)
}

func (m *memoryRepo) ListExpenses(ctx context.Context, f ListFilters) ([]Movement, int, error) {
	var out []Movement
	for _, mv := range m.expenses {
		out = append(out, mv)
	}
	return out, len(out), nil
}

func (m *memoryRepo) createMovement(store map[int64]Movement, movement Movement, credit bool) (Movement, error) {
	account, ok := m.accounts[movement.AccountID]
	if !ok {
		return Movement{}, ErrAccountNotFound
	}
	if credit {
		account.Balance = account.Balance.Add(movement.Amount)
	} else {
		account.Balance = account.Balance.Sub(movement.Amount)
	}
	m.accounts[account.ID] = account

	m.nextID++
	movement.ID = m.nextID
	movement.CreatedAt = time.Now()
	store[movement.ID] = movement
	return movement, nil
}

func (m *memoryRepo) deleteMovement(store map[int64]Movement, id int64, credit bool) error {
	movement, ok := store[id]
	if !ok {
		return ErrMovementNotFound
	}
	account := m.accounts[movement.AccountID]
	if credit {
		account.Balance = account.Balance.Sub(movement.Amount)
	} else {
		account.Balance = account.Balance.Add(movement.Amount)
	}
	m.accounts[account.ID] = account
	delete(store, id)
	return nil
}

func money(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedAccount(t *testing.T, svc *Service) Account {
	t.Helper()
	account, err := svc.CreateAccount(context.Background(), Account{
		Name:          "Kas Utama",
		AccountNumber: "001-220",
		Balance:       money("500"),
	})
	require.NoError(t, err)
	return account
}

func TestDepositCreditsAccount(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	account := seedAccount(t, svc)

	_, err := svc.CreateDeposit(context.Background(), Movement{
		AccountID: account.ID,
		Category:  "sales settlement",
		Amount:    money("120.50"),
	})
	require.NoError(t, err)

	got, err := svc.GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(money("620.50")))
}

func TestExpenseDebitsAccount(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	account := seedAccount(t, svc)

	_, err := svc.CreateExpense(context.Background(), Movement{
		AccountID: account.ID,
		Category:  "utilities",
		Amount:    money("75.25"),
	})
	require.NoError(t, err)

	got, err := svc.GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(money("424.75")))
}

func TestMovementDeleteCompensatesBalance(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	account := seedAccount(t, svc)

	deposit, err := svc.CreateDeposit(context.Background(), Movement{
		AccountID: account.ID, Category: "loan", Amount: money("300"),
	})
	require.NoError(t, err)
	expense, err := svc.CreateExpense(context.Background(), Movement{
		AccountID: account.ID, Category: "rent", Amount: money("200"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDeposit(context.Background(), deposit.ID))
	require.NoError(t, svc.DeleteExpense(context.Background(), expense.ID))

	got, err := svc.GetAccount(context.Background(), account.ID)
	require.NoError(t, err)
	// Round trip: back to the opening balance.
	require.True(t, got.Balance.Equal(money("500")))
}

func TestMovementValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	account := seedAccount(t, svc)

	_, err := svc.CreateDeposit(context.Background(), Movement{
		AccountID: account.ID, Amount: money("0"),
	})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.CreateExpense(context.Background(), Movement{
		AccountID: account.ID, Amount: money("-5"),
	})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.CreateDeposit(context.Background(), Movement{
		AccountID: 999, Amount: money("10"),
	})
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccountValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.CreateAccount(context.Background(), Account{Name: "  "})
	require.Error(t, err)

	_, err = svc.CreateAccount(context.Background(), Account{Name: "Bank", Balance: money("-1")})
	require.Error(t, err)
}
