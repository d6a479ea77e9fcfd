package database

import (
	"context"
	"errors"

	"github.com/CUknot/roomchat/models"
	"gorm.io/gorm"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	return findOne[models.User](s.db.WithContext(ctx), id)
}

func (s *UserStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return findOne[models.User](s.db.WithContext(ctx).Where("username = ?", username))
}

// CreateUser inserts the user; the password is hashed by the model hook.
func (s *UserStore) CreateUser(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.ErrDuplicateUsername
	}
	return err
}
