package database

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"ai-trading-system/auth"
)

// UserRepository is the PostgreSQL-backed account store.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a user repository bound to the database.
func NewUserRepository(db *Database) *UserRepository {
	return &UserRepository{db: db.orm}
}

// Create stores a new user and assigns its ID.
func (r *UserRepository) Create(user *auth.StoredUser) error {
	rec := UserRecord{
		Name:         user.Name,
		Email:        strings.ToLower(user.Email),
		Phone:        user.Phone,
		PasswordHash: user.PasswordHash,
		CreatedAt:    time.Now(),
	}
	if err := r.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("Create user: %w", err)
	}
	user.ID = strconv.FormatInt(rec.ID, 10)
	user.CreatedAt = rec.CreatedAt
	return nil
}

// FindByEmail looks a user up by email. A missing user returns (nil, nil).
func (r *UserRepository) FindByEmail(email string) (*auth.StoredUser, error) {
	var rec UserRecord
	err := r.db.Where("email = ?", strings.ToLower(email)).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindByEmail: %w", err)
	}

	return &auth.StoredUser{
		User: auth.User{
			ID:        strconv.FormatInt(rec.ID, 10),
			Name:      rec.Name,
			Email:     rec.Email,
			Phone:     rec.Phone,
			CreatedAt: rec.CreatedAt,
		},
		PasswordHash: rec.PasswordHash,
	}, nil
}
