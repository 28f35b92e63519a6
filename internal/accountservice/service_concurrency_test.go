package accountservice_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/account-service/internal/accountrepo"
	"github.com/go-petr/account-service/internal/accountservice"
	"github.com/go-petr/account-service/internal/domain"
	"github.com/go-petr/account-service/internal/lockregistry"
)

func lockers() map[string]accountservice.Locker {
	return map[string]accountservice.Locker{
		"Registry":     lockregistry.New(),
		"Striped":      lockregistry.NewStriped(4),
		"SingleStripe": lockregistry.NewStriped(1),
	}
}

func TestScenario(t *testing.T) {
	t.Parallel()

	for name, locker := range lockers() {
		locker := locker

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			service := accountservice.New(accountrepo.NewRepoMem(), locker)

			first, err := service.Create(ctx, decimal.Zero)
			require.NoError(t, err)
			require.Equal(t, int64(1), first.ID)

			second, err := service.Create(ctx, decimal.NewFromInt(5))
			require.NoError(t, err)
			require.Equal(t, int64(2), second.ID)

			got, err := service.Deposit(ctx, 1, decimal.RequireFromString("50.5"))
			require.NoError(t, err)
			require.True(t, got.Balance.Equal(decimal.RequireFromString("50.5")))

			got, err = service.Withdraw(ctx, 1, decimal.RequireFromString("20.5"))
			require.NoError(t, err)
			require.True(t, got.Balance.Equal(decimal.NewFromInt(30)))

			got, err = service.Transfer(ctx, 1, 2, decimal.NewFromInt(10))
			require.NoError(t, err)
			require.True(t, got.Balance.Equal(decimal.NewFromInt(20)))

			to, err := service.Get(ctx, 2)
			require.NoError(t, err)
			require.True(t, to.Balance.Equal(decimal.NewFromInt(15)))

			_, err = service.Withdraw(ctx, 1, decimal.NewFromInt(1000))

			var insufficient *domain.InsufficientFundsError
			require.True(t, errors.As(err, &insufficient))
			require.True(t, insufficient.Current.Equal(decimal.NewFromInt(20)))

			_, err = service.Transfer(ctx, 1, 1, decimal.NewFromInt(1))
			require.ErrorIs(t, err, domain.ErrTransferToSameAccount)

			_, err = service.Deposit(ctx, 3, decimal.NewFromInt(1))
			require.ErrorIs(t, err, domain.ErrAccountNotFound)

			deleted, err := service.Delete(ctx, 2)
			require.NoError(t, err)
			require.True(t, deleted.Balance.Equal(decimal.NewFromInt(15)))

			_, err = service.Transfer(ctx, 1, 2, decimal.NewFromInt(1))
			require.ErrorIs(t, err, domain.ErrAccountNotFound)

			got, err = service.Get(ctx, 1)
			require.NoError(t, err)
			require.True(t, got.Balance.Equal(decimal.NewFromInt(20)))
		})
	}
}

func TestConcurrentDepositsAreNotLost(t *testing.T) {
	t.Parallel()

	const workers, iterations = 16, 50

	for name, locker := range lockers() {
		locker := locker

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			service := accountservice.New(accountrepo.NewRepoMem(), locker)

			account, err := service.Create(ctx, decimal.Zero)
			require.NoError(t, err)

			var wg sync.WaitGroup

			for w := 0; w < workers; w++ {
				wg.Add(1)

				go func() {
					defer wg.Done()

					for i := 0; i < iterations; i++ {
						if _, err := service.Deposit(ctx, account.ID, decimal.RequireFromString("0.01")); err != nil {
							t.Error(err)
							return
						}
					}
				}()
			}

			wg.Wait()

			got, err := service.Get(ctx, account.ID)
			require.NoError(t, err)
			require.True(t, got.Balance.Equal(decimal.RequireFromString("8")), "balance %s", got.Balance)
		})
	}
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	t.Parallel()

	const workers = 32

	ctx := context.Background()
	service := accountservice.New(accountrepo.NewRepoMem(), lockregistry.New())

	account, err := service.Create(ctx, decimal.NewFromInt(10))
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := service.Withdraw(ctx, account.ID, decimal.NewFromInt(1))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()

				return
			}

			if !errors.Is(err, domain.ErrInsufficientFunds) {
				t.Error(err)
			}
		}()
	}

	wg.Wait()

	require.Equal(t, 10, succeeded)

	got, err := service.Get(ctx, account.ID)
	require.NoError(t, err)
	require.True(t, got.Balance.IsZero())
}

func TestOppositeTransfersConserveTotal(t *testing.T) {
	t.Parallel()

	const workers, iterations = 8, 100

	for name, locker := range lockers() {
		locker := locker

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			service := accountservice.New(accountrepo.NewRepoMem(), locker)

			ids := make([]int64, 0, 4)

			for i := 0; i < 4; i++ {
				account, err := service.Create(ctx, decimal.NewFromInt(100))
				require.NoError(t, err)

				ids = append(ids, account.ID)
			}

			done := make(chan struct{})

			go func() {
				defer close(done)

				var wg sync.WaitGroup

				for w := 0; w < workers; w++ {
					wg.Add(1)

					go func(w int) {
						defer wg.Done()

						for i := 0; i < iterations; i++ {
							from := ids[(w+i)%len(ids)]
							to := ids[(w+i+1+w%3)%len(ids)]

							if w%2 == 1 {
								from, to = to, from
							}

							if from == to {
								continue
							}

							_, err := service.Transfer(ctx, from, to, decimal.NewFromInt(7))
							if err != nil && !errors.Is(err, domain.ErrInsufficientFunds) {
								t.Error(err)
								return
							}
						}
					}(w)
				}

				wg.Wait()
			}()

			select {
			case <-done:
			case <-time.After(30 * time.Second):
				t.Fatal("transfers did not finish, possible deadlock")
			}

			accounts, err := service.List(ctx)
			require.NoError(t, err)

			total := decimal.Zero
			for _, a := range accounts {
				require.False(t, a.Balance.IsNegative())
				total = total.Add(a.Balance)
			}

			require.True(t, total.Equal(decimal.NewFromInt(400)), "total %s", total)
		})
	}
}
