package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/astatracker/fantacalcio-api/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	items map[string]user.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{items: make(map[string]user.User)}
}

func (r *UserRepository) Create(_ context.Context, account user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[account.ID]; exists {
		return fmt.Errorf("duplicate key value violates unique constraint: users.public_id")
	}
	for _, existing := range r.items {
		if existing.Username == account.Username {
			return fmt.Errorf("duplicate key value violates unique constraint: users.username")
		}
		if existing.Email == account.Email {
			return fmt.Errorf("duplicate key value violates unique constraint: users.email")
		}
	}
	r.items[account.ID] = account
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, userID string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.items[userID]
	return account, ok, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, account := range r.items {
		if account.Username == username {
			return account, true, nil
		}
	}
	return user.User{}, false, nil
}

func (r *UserRepository) Update(_ context.Context, account user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[account.ID]; !exists {
		return fmt.Errorf("update user: not found")
	}
	r.items[account.ID] = account
	return nil
}
