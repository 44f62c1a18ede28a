package user

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store implementation with the same lookup
// semantics as PGStore. It backs unit tests and DB-less development runs.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[string]User
	hashes map[string]string
}

// NewMemoryStore returns an empty in-memory account store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]User),
		hashes: make(map[string]string),
	}
}

// FindByName returns the account with the given username, or nil if none exists.
func (s *MemoryStore) FindByName(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			copied := u
			return &copied, nil
		}
	}
	return nil, nil
}

// FindByID returns the account with the given id, or nil if none exists.
func (s *MemoryStore) FindByID(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	copied := u
	return &copied, nil
}

// FindByEmail returns the account with the given email, or nil if none exists.
func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, nil
}

// ListAll returns every account ordered by creation time.
func (s *MemoryStore) ListAll(_ context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return users, nil
}

// Create inserts a new account, assigning an id if none was provided.
func (s *MemoryStore) Create(_ context.Context, u User, passwordHash string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}

	s.users[u.ID] = u
	s.hashes[u.ID] = passwordHash

	copied := u
	return &copied, nil
}

// PasswordHash returns the stored hash for the given account id.
func (s *MemoryStore) PasswordHash(_ context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hash, ok := s.hashes[id]
	if !ok {
		return "", fmt.Errorf("user: fetch password hash: no such user %s", id)
	}
	return hash, nil
}

// UpdateProfile updates the mutable profile fields, or returns nil if the
// account does not exist.
func (s *MemoryStore) UpdateProfile(_ context.Context, id string, fullName string, email string, profileImage string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}

	u.FullName = fullName
	u.Email = email
	u.ProfileImage = profileImage
	s.users[id] = u

	copied := u
	return &copied, nil
}

// UpdateRole replaces the account's role.
func (s *MemoryStore) UpdateRole(_ context.Context, id string, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user: update role: no such user %s", id)
	}
	u.Role = role
	s.users[id] = u
	return nil
}

// Delete removes the account with the given id. Deleting an unknown id is a no-op.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, id)
	delete(s.hashes, id)
	return nil
}
