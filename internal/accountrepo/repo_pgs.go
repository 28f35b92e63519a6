// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-petr/account-service/internal/domain"
	"github.com/go-petr/account-service/pkg/dbpkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// ErrNegativeBalance indicates that the database rejected a negative balance.
var ErrNegativeBalance = errors.New("balance must not be negative")

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    accounts (balance)
VALUES
    ($1)
RETURNING id, balance
`

// Create inserts the account and returns it with the assigned id.
func (r *RepoPGS) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, account.Balance)

	var a domain.Account

	if err := row.Scan(&a.ID, &a.Balance); err != nil {
		l.Error().Err(err).Str("balance", account.Balance.String()).Msg("create account")
		return domain.Account{}, pgsError("create account", err)
	}

	return a, nil
}

const getQuery = `
SELECT
	id, balance
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var a domain.Account

	err := row.Scan(&a.ID, &a.Balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, &domain.NoSuchAccountError{ID: id}
		}

		l.Error().Err(err).Int64("account_id", id).Msg("get account")

		return domain.Account{}, pgsError("get account", err)
	}

	return a, nil
}

const updateQuery = `
UPDATE accounts
SET balance = $1
WHERE id = $2
`

// Update stores the balance of the account.
func (r *RepoPGS) Update(ctx context.Context, account domain.Account) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, updateQuery, account.Balance, account.ID)
	if err != nil {
		l.Error().Err(err).Int64("account_id", account.ID).Msg("update account")
		return pgsError("update account", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Int64("account_id", account.ID).Msg("update account rows affected")
		return pgsError("update account", err)
	}

	if n == 0 {
		return &domain.NoSuchAccountError{ID: account.ID}
	}

	return nil
}

const deleteQuery = `
DELETE FROM accounts
WHERE id = $1
`

// Delete removes the account. Deleting a missing account is not an error.
func (r *RepoPGS) Delete(ctx context.Context, account domain.Account) error {
	l := zerolog.Ctx(ctx)

	if _, err := r.db.ExecContext(ctx, deleteQuery, account.ID); err != nil {
		l.Error().Err(err).Int64("account_id", account.ID).Msg("delete account")
		return pgsError("delete account", err)
	}

	return nil
}

const listQuery = `
SELECT
	id, balance
FROM accounts
ORDER BY id
`

// List returns all accounts ordered by id.
func (r *RepoPGS) List(ctx context.Context) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery)
	if err != nil {
		l.Error().Err(err).Msg("list accounts")
		return nil, pgsError("list accounts", err)
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.Balance); err != nil {
			l.Error().Err(err).Msg("scan account")
			return nil, pgsError("list accounts", err)
		}

		items = append(items, a)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, pgsError("list accounts", err)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, pgsError("list accounts", err)
	}

	return items, nil
}

// pgsError adds the operation to a driver error, keeping it reachable through errors.As.
func pgsError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Constraint == "accounts_balance_check" {
		return fmt.Errorf("%s: %w: %w", op, ErrNegativeBalance, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}
