package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/atabek/storefront/internal/models"
)

type ProductPatch struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
}

func (r *GormRepo) FindProductByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &product, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, nil, fmt.Errorf("db error: %w", err)
	}

	var items []models.Product
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, fmt.Errorf("db error: %w", err)
	}
	return total, items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Product
		err := tx.Where("name = ?", product.Name).First(&existing).Error
		if err == nil {
			return ErrDuplicateName
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("db error: %w", err)
		}
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
}

func (r *GormRepo) UpdateProduct(ctx context.Context, id uint, patch ProductPatch) (*models.Product, error) {
	var updated *models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("id = ?", id).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("db error: %w", err)
		}

		if patch.Name != nil && *patch.Name != product.Name {
			var other models.Product
			err := tx.Where("name = ?", *patch.Name).First(&other).Error
			if err == nil {
				return ErrDuplicateName
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("db error: %w", err)
			}
			product.Name = *patch.Name
		}
		if patch.Price != nil {
			product.Price = *patch.Price
		}
		if patch.Description != nil {
			product.Description = *patch.Description
		}

		if err := tx.Save(&product).Error; err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		updated = &product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	result := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("db error: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
