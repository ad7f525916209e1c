package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/atabek/storefront/internal/hash"
	"github.com/atabek/storefront/internal/models"
)

// UserPatch enumerates the optional fields of a partial user update. Fields
// left nil are not touched; a provided password is re-hashed before storage.
type UserPatch struct {
	Username *string `json:"username"`
	FullName *string `json:"full_name"`
	Password *string `json:"password"`
}

func (r *GormRepo) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &user, nil
}

func (r *GormRepo) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &user, nil
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

// CreateUser enforces username uniqueness at write time. On conflict the
// existing record stays intact.
func (r *GormRepo) CreateUser(ctx context.Context, user *models.User) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("username = ?", user.Username).First(&existing).Error
		if err == nil {
			return ErrDuplicateUsername
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("db error: %w", err)
		}
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
}

// UpdateUser applies a patch field by field. No reflection-based attribute
// copying.
func (r *GormRepo) UpdateUser(ctx context.Context, id uint, patch UserPatch) (*models.User, error) {
	var updated *models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("db error: %w", err)
		}

		if patch.Username != nil && *patch.Username != user.Username {
			var other models.User
			err := tx.Where("username = ?", *patch.Username).First(&other).Error
			if err == nil {
				return ErrDuplicateUsername
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("db error: %w", err)
			}
			user.Username = *patch.Username
		}
		if patch.FullName != nil {
			user.FullName = *patch.FullName
		}
		if patch.Password != nil {
			pwHash, err := hash.HashPassword(*patch.Password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			user.PasswordHash = pwHash
		}

		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		updated = &user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *GormRepo) DeleteUser(ctx context.Context, id uint) error {
	result := r.DB.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return fmt.Errorf("db error: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
