// Package accountservice manages business logic layer of accounts.
//
// Every balance change runs while holding the lock of each account involved, so no update is
// lost and no balance goes negative. Transfers take the two locks in ascending order, which
// rules out deadlocks between transfers running in opposite directions.
package accountservice

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/account-service/internal/domain"
)

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	Get(ctx context.Context, id int64) (domain.Account, error)
	Update(ctx context.Context, account domain.Account) error
	Delete(ctx context.Context, account domain.Account) error
	List(ctx context.Context) ([]domain.Account, error)
}

// Locker hands out the lock guarding an account id together with its position in the
// global acquisition order.
type Locker interface {
	Mutex(id int64) (sync.Locker, int64)
}

// Service facilitates account service layer logic.
type Service struct {
	repo   Repo
	locker Locker
}

// New returns account service struct to manage account bussines logic.
func New(repo Repo, locker Locker) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
	}
}

// Create creates an account with the given initial balance.
func (s *Service) Create(ctx context.Context, balance decimal.Decimal) (domain.Account, error) {
	if err := domain.ValidateBalance(balance); err != nil {
		return domain.Account{}, err
	}

	account, err := s.repo.Create(ctx, domain.NewAccount(balance))
	if err != nil {
		return domain.Account{}, err
	}

	zerolog.Ctx(ctx).Info().Int64("account_id", account.ID).Str("balance", account.Balance.String()).Msg("account created")

	return account, nil
}

// Get returns the account with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Account, error) {
	if err := domain.ValidateID("id", id); err != nil {
		return domain.Account{}, err
	}

	return s.repo.Get(ctx, id)
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]domain.Account, error) {
	return s.repo.List(ctx)
}

// Deposit adds amount to the balance of the account.
func (s *Service) Deposit(ctx context.Context, id int64, amount decimal.Decimal) (domain.Account, error) {
	return s.mutate(ctx, id, amount, (*domain.Account).Deposit)
}

// Withdraw subtracts amount from the balance of the account.
func (s *Service) Withdraw(ctx context.Context, id int64, amount decimal.Decimal) (domain.Account, error) {
	return s.mutate(ctx, id, amount, (*domain.Account).Withdraw)
}

func (s *Service) mutate(
	ctx context.Context,
	id int64,
	amount decimal.Decimal,
	apply func(*domain.Account, decimal.Decimal) error,
) (domain.Account, error) {
	if err := domain.ValidateID("id", id); err != nil {
		return domain.Account{}, err
	}

	if err := domain.ValidateAmount(amount); err != nil {
		return domain.Account{}, err
	}

	mu, _ := s.locker.Mutex(id)
	mu.Lock()
	defer mu.Unlock()

	account, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}

	if err := apply(&account, amount); err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Int64("account_id", id).Send()
		return domain.Account{}, err
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return domain.Account{}, err
	}

	return account, nil
}

// Delete removes the account and returns its last known state.
func (s *Service) Delete(ctx context.Context, id int64) (domain.Account, error) {
	if err := domain.ValidateID("id", id); err != nil {
		return domain.Account{}, err
	}

	mu, _ := s.locker.Mutex(id)
	mu.Lock()
	defer mu.Unlock()

	account, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}

	if err := s.repo.Delete(ctx, account); err != nil {
		return domain.Account{}, err
	}

	zerolog.Ctx(ctx).Info().Int64("account_id", id).Msg("account deleted")

	return account, nil
}

// Transfer moves amount between two accounts and returns the updated source account.
func (s *Service) Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) (domain.Account, error) {
	res, err := s.TransferDetailed(ctx, domain.TransferParams{
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        amount,
	})
	if err != nil {
		return domain.Account{}, err
	}

	return res.FromAccount, nil
}

// TransferDetailed moves arg.Amount between two accounts and returns both updated accounts.
//
// Either both accounts change or neither does.
func (s *Service) TransferDetailed(ctx context.Context, arg domain.TransferParams) (domain.TransferResult, error) {
	if err := domain.ValidateID("from_id", arg.FromAccountID); err != nil {
		return domain.TransferResult{}, err
	}

	if err := domain.ValidateID("to_id", arg.ToAccountID); err != nil {
		return domain.TransferResult{}, err
	}

	if err := domain.ValidateAmount(arg.Amount); err != nil {
		return domain.TransferResult{}, err
	}

	if arg.FromAccountID == arg.ToAccountID {
		return domain.TransferResult{}, domain.ErrTransferToSameAccount
	}

	unlock := s.lockPair(arg.FromAccountID, arg.ToAccountID)
	defer unlock()

	from, err := s.repo.Get(ctx, arg.FromAccountID)
	if err != nil {
		return domain.TransferResult{}, err
	}

	to, err := s.repo.Get(ctx, arg.ToAccountID)
	if err != nil {
		return domain.TransferResult{}, err
	}

	if err := from.Withdraw(arg.Amount); err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Int64("from_id", arg.FromAccountID).Int64("to_id", arg.ToAccountID).Send()
		return domain.TransferResult{}, err
	}

	if err := to.Deposit(arg.Amount); err != nil {
		return domain.TransferResult{}, err
	}

	if err := s.repo.Update(ctx, from); err != nil {
		return domain.TransferResult{}, err
	}

	if err := s.repo.Update(ctx, to); err != nil {
		return domain.TransferResult{}, err
	}

	zerolog.Ctx(ctx).Info().
		Int64("from_id", from.ID).
		Int64("to_id", to.ID).
		Str("amount", arg.Amount.String()).
		Msg("transfer completed")

	return domain.TransferResult{FromAccount: from, ToAccount: to}, nil
}

// lockPair locks the two ids in ascending acquisition order and returns the function that
// unlocks them in reverse order.
func (s *Service) lockPair(a, b int64) func() {
	// Consistent ordering regardless of transfer direction prevents deadlocks.
	if a > b {
		a, b = b, a
	}

	first, firstOrder := s.locker.Mutex(a)
	second, secondOrder := s.locker.Mutex(b)

	if secondOrder < firstOrder {
		first, second = second, first
	}

	first.Lock()

	if first == second {
		return first.Unlock
	}

	second.Lock()

	return func() {
		second.Unlock()
		first.Unlock()
	}
}
