package auth

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// MemoryRepository is an in-memory user store for demo mode and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	users []*StoredUser
}

// NewMemoryRepository creates an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// NewDemoRepository creates an in-memory store seeded with the demo account
// (demo@trading.com / demo123).
func NewDemoRepository() *MemoryRepository {
	repo := NewMemoryRepository()
	hash, _ := bcrypt.GenerateFromPassword([]byte("demo123"), bcrypt.DefaultCost)
	repo.Create(&StoredUser{
		User: User{
			Name:      "Demo User",
			Email:     "demo@trading.com",
			Phone:     "+62812345678",
			CreatedAt: time.Now().UTC(),
		},
		PasswordHash: string(hash),
	})
	return repo
}

// Create appends a user, assigning a sequential id when absent.
func (r *MemoryRepository) Create(user *StoredUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = strconv.Itoa(len(r.users) + 1)
	}
	r.users = append(r.users, user)
	return nil
}

// FindByEmail returns the user with the given email, or nil when absent.
func (r *MemoryRepository) FindByEmail(email string) (*StoredUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}
