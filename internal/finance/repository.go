package finance

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gulfam-bhatti-del/Posly-Dashboard-sub001/internal/platform/db"
)

// movementTable names the two movement relations.
type movementTable string

const (
	tableDeposits movementTable = "deposits"
	tableExpenses movementTable = "expenses"
)

// ListFilters narrows account and movement listings.
type ListFilters struct {
	AccountID int64
	Search    string
	Page      int
	PerPage   int
}

type Repository interface {
	ListAccounts(ctx context.Context, filters ListFilters) ([]Account, int, error)
	GetAccount(ctx context.Context, id int64) (Account, error)
	CreateAccount(ctx context.Context, account Account) (Account, error)
	UpdateAccount(ctx context.Context, id int64, account Account) error
	DeleteAccount(ctx context.Context, id int64) error

	// CreateDeposit inserts the row and credits the account in one
	// transaction. DeleteDeposit compensates the credit.
	CreateDeposit(ctx context.Context, movement Movement) (Movement, error)
	DeleteDeposit(ctx context.Context, id int64) error
	ListDeposits(ctx context.Context, filters ListFilters) ([]Movement, int, error)

	// CreateExpense debits, DeleteExpense re-credits.
	CreateExpense(ctx context.Context, movement Movement) (Movement, error)
	DeleteExpense(ctx context.Context, id int64) error
	ListExpenses(ctx context.Context, filters ListFilters) ([]Movement, int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const accountColumns = `id, name, account_number, balance, details, created_at, updated_at`

func (r *repository) ListAccounts(ctx context.Context, filters ListFilters) ([]Account, int, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM accounts WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		clause := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR account_number ILIKE $` + strconv.Itoa(argCount) + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ASC`
	query, args = paginate(query, args, &argCount, filters)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, account)
	}
	return accounts, total, rows.Err()
}

func (r *repository) GetAccount(ctx context.Context, id int64) (Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return account, nil
}

func (r *repository) CreateAccount(ctx context.Context, account Account) (Account, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (name, account_number, balance, details, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, account.Name, account.AccountNumber, db.NumericFromDecimal(account.Balance), account.Details,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return Account{}, err
	}
	return account, nil
}

func (r *repository) UpdateAccount(ctx context.Context, id int64, account Account) error {
	// Balance is owned by movements, not by account edits.
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET name = $1, account_number = $2, details = $3, updated_at = NOW()
		WHERE id = $4
	`, account.Name, account.AccountNumber, account.Details, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *repository) DeleteAccount(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *repository) CreateDeposit(ctx context.Context, movement Movement) (Movement, error) {
	return r.createMovement(ctx, tableDeposits, movement, "+")
}

func (r *repository) DeleteDeposit(ctx context.Context, id int64) error {
	return r.deleteMovement(ctx, tableDeposits, id, "-")
}

func (r *repository) ListDeposits(ctx context.Context, filters ListFilters) ([]Movement, int, error) {
	return r.listMovements(ctx, tableDeposits, filters)
}

func (r *repository) CreateExpense(ctx context.Context, movement Movement) (Movement, error) {
	return r.createMovement(ctx, tableExpenses, movement, "-")
}

func (r *repository) DeleteExpense(ctx context.Context, id int64) error {
	return r.deleteMovement(ctx, tableExpenses, id, "+")
}

func (r *repository) ListExpenses(ctx context.Context, filters ListFilters) ([]Movement, int, error) {
	return r.listMovements(ctx, tableExpenses, filters)
}

func (r *repository) createMovement(ctx context.Context, table movementTable, movement Movement, sign string) (Movement, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE accounts SET balance = balance `+sign+` $1, updated_at = NOW() WHERE id = $2
		`, db.NumericFromDecimal(movement.Amount), movement.AccountID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrAccountNotFound
		}

		now := time.Now()
		err = tx.QueryRow(ctx, `
			INSERT INTO `+string(table)+` (account_id, date, category, amount, details, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, movement.AccountID, movement.Date, movement.Category,
			db.NumericFromDecimal(movement.Amount), movement.Details,
			pgtype.Timestamptz{Time: now, Valid: true},
		).Scan(&movement.ID)
		if err != nil {
			return fmt.Errorf("finance: insert %s: %w", table, err)
		}
		movement.CreatedAt = now
		return nil
	})
	if err != nil {
		return Movement{}, err
	}
	return movement, nil
}

func (r *repository) deleteMovement(ctx context.Context, table movementTable, id int64, sign string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var accountID int64
		var amount pgtype.Numeric
		err := tx.QueryRow(ctx, `
			DELETE FROM `+string(table)+` WHERE id = $1 RETURNING account_id, amount
		`, id).Scan(&accountID, &amount)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrMovementNotFound
			}
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE accounts SET balance = balance `+sign+` $1, updated_at = NOW() WHERE id = $2
		`, amount, accountID)
		return err
	})
}

func (r *repository) listMovements(ctx context.Context, table movementTable, filters ListFilters) ([]Movement, int, error) {
	query := `SELECT id, account_id, date, category, amount, details, created_at FROM ` + string(table) + ` WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM ` + string(table) + ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.AccountID > 0 {
		argCount++
		clause := ` AND account_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.AccountID)
	}
	if filters.Search != "" {
		argCount++
		clause := ` AND category ILIKE $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY date DESC, id DESC`
	query, args = paginate(query, args, &argCount, filters)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var movements []Movement
	for rows.Next() {
		var m Movement
		var amount pgtype.Numeric
		var date, createdAt pgtype.Timestamptz
		if err := rows.Scan(&m.ID, &m.AccountID, &date, &m.Category, &amount, &m.Details, &createdAt); err != nil {
			return nil, 0, err
		}
		m.Amount = db.DecimalFromNumeric(amount)
		m.Date = date.Time
		m.CreatedAt = createdAt.Time
		movements = append(movements, m)
	}
	return movements, total, rows.Err()
}

func paginate(query string, args []interface{}, argCount *int, filters ListFilters) (string, []interface{}) {
	if filters.PerPage <= 0 {
		return query, args
	}
	*argCount++
	query += ` LIMIT $` + strconv.Itoa(*argCount)
	args = append(args, filters.PerPage)

	*argCount++
	query += ` OFFSET $` + strconv.Itoa(*argCount)
	offset := (filters.Page - 1) * filters.PerPage
	if offset < 0 {
		offset = 0
	}
	args = append(args, offset)
	return query, args
}

func scanAccount(row pgx.Row) (Account, error) {
	var account Account
	var balance pgtype.Numeric
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&account.ID, &account.Name, &account.AccountNumber, &balance,
		&account.Details, &createdAt, &updatedAt)
	if err != nil {
		return Account{}, err
	}
	account.Balance = db.DecimalFromNumeric(balance)
	account.CreatedAt = createdAt.Time
	account.UpdatedAt = updatedAt.Time
	return account, nil
}
