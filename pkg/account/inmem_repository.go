package account

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryAccountRepository implements AccountRepository using in-memory storage
type InMemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]Account
	byLogin  map[string]uuid.UUID // login -> id
	byEmail  map[string]uuid.UUID // lower(email) -> id
}

// NewInMemoryAccountRepository creates a new in-memory account repository
func NewInMemoryAccountRepository() *InMemoryAccountRepository {
	return &InMemoryAccountRepository{
		accounts: make(map[uuid.UUID]Account),
		byLogin:  make(map[string]uuid.UUID),
		byEmail:  make(map[string]uuid.UUID),
	}
}

func (r *InMemoryAccountRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return r.accounts[id], nil
}

func (r *InMemoryAccountRepository) FindByLogin(ctx context.Context, login string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byLogin[login]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return r.accounts[id], nil
}

func (r *InMemoryAccountRepository) Create(ctx context.Context, acct Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byLogin[acct.Login]; ok {
		return Account{}, fmt.Errorf("%w: %s", ErrAccountAlreadyExists, acct.Login)
	}
	email := normalizeEmail(acct.Email)
	if email != "" {
		if _, ok := r.byEmail[email]; ok {
			return Account{}, fmt.Errorf("%w: %s", ErrAccountAlreadyExists, acct.Email)
		}
	}

	if acct.ID == uuid.Nil {
		acct.ID = uuid.New()
	}
	acct.Email = email
	acct.CreatedAt = time.Now().UTC()

	r.accounts[acct.ID] = acct
	r.byLogin[acct.Login] = acct.ID
	if email != "" {
		r.byEmail[email] = acct.ID
	}
	return acct, nil
}
