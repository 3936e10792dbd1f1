package user

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"campus/internal/auth/models"
	id "campus/pkg/domain"
	"campus/pkg/platform/sentinel"
)

// Error Contract:
// - ErrNotFound when the requested user does not exist
// - ErrAlreadyUsed when email or DNI collide with an existing user
// - wrapped infrastructure errors otherwise
//
// InMemoryUserStore keeps users in a map. It hands out copies so callers
// cannot mutate stored state without going through the store.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[id.UserID]*models.User
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[id.UserID]*models.User)}
}

func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existsLocked(user.Email, user.DNI) {
		return fmt.Errorf("user already exists: %w", sentinel.ErrAlreadyUsed)
	}
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[userID]; ok {
		found := *user
		return &found, nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			found := *user
			return &found, nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryUserStore) ExistsByEmailOrDNI(_ context.Context, email, dni string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.existsLocked(email, dni), nil
}

func (s *InMemoryUserStore) existsLocked(email, dni string) bool {
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return true
		}
		if dni != "" && strings.EqualFold(user.DNI, dni) {
			return true
		}
	}
	return false
}

// UpdatePassword replaces the hash and lifts the forced-change flag.
// Last write wins.
func (s *InMemoryUserStore) UpdatePassword(_ context.Context, userID id.UserID, hash string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	user.PasswordHash = hash
	user.MustChangePassword = false
	user.UpdatedAt = at
	return nil
}
