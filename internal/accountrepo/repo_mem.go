package accountrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/go-petr/account-service/internal/domain"
)

// RepoMem keeps accounts in memory. Ids are assigned sequentially starting at 1.
//
// Accounts are copied in and out, callers never share state with the store.
type RepoMem struct {
	mu       sync.RWMutex
	lastID   int64
	accounts map[int64]domain.Account
}

// NewRepoMem returns an empty RepoMem.
func NewRepoMem() *RepoMem {
	return &RepoMem{accounts: make(map[int64]domain.Account)}
}

// Create stores the account under the next id and returns it.
func (r *RepoMem) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	account.ID = r.lastID
	r.accounts[account.ID] = account

	return account, nil
}

// Get returns the account with the given id.
func (r *RepoMem) Get(_ context.Context, id int64) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return domain.Account{}, &domain.NoSuchAccountError{ID: id}
	}

	return a, nil
}

// Update stores the balance of the account.
func (r *RepoMem) Update(_ context.Context, account domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.ID]; !ok {
		return &domain.NoSuchAccountError{ID: account.ID}
	}

	r.accounts[account.ID] = account

	return nil
}

// Delete removes the account. Deleting a missing account is not an error.
func (r *RepoMem) Delete(_ context.Context, account domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.accounts, account.ID)

	return nil
}

// List returns all accounts ordered by id.
func (r *RepoMem) List(_ context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		items = append(items, a)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	return items, nil
}
