package store

import (
	"errors"
	"fmt"

	"github.com/taskward-dev/taskward/internal/apperr"
	"github.com/taskward-dev/taskward/internal/models"
	"gorm.io/gorm"
)

// CreateUser inserts a new account. The email unique index is the only
// duplicate guard, so concurrent registrations cannot slip past a
// check-then-create window.
func (s *Store) CreateUser(user *models.User) error {
	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("email %s already registered: %w", user.Email, apperr.ErrConflict)
		}
		return err
	}
	return nil
}

func (s *Store) UserByID(id uint) (*models.User, error) {
	var user models.User

	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}

	return &user, nil
}

func (s *Store) UserByEmail(email string) (*models.User, error) {
	var user models.User

	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", email, apperr.ErrNotFound)
		}
		return nil, err
	}

	return &user, nil
}

// UserByToken resolves a single-use confirmation/reset token. A consumed
// token is empty on the user row and therefore never matches again.
func (s *Store) UserByToken(token string) (*models.User, error) {
	if token == "" {
		return nil, apperr.ErrInvalidToken
	}

	var user models.User

	if err := s.db.Where("token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrInvalidToken
		}
		return nil, err
	}

	return &user, nil
}

func (s *Store) SaveUser(user *models.User) error {
	return s.db.Save(user).Error
}
