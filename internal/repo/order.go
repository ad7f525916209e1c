package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/atabek/storefront/internal/models"
)

// CreateOrder writes the order and one detail row per item in a single
// transaction; any missing product rolls the whole order back.
func (r *GormRepo) CreateOrder(ctx context.Context, userID uint, productIDs []uint) (*models.Order, error) {
	var created *models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order := models.Order{CreatedBy: userID}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		for _, pid := range productIDs {
			var product models.Product
			if err := tx.Where("id = ?", pid).First(&product).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return fmt.Errorf("db error: %w", err)
			}
			detail := models.OrderDetail{
				OrderID:      order.ID,
				ProductID:    product.ID,
				ProductName:  product.Name,
				ProductPrice: product.Price,
				Description:  product.Description,
				Status:       "pending",
			}
			if err := tx.Create(&detail).Error; err != nil {
				return fmt.Errorf("db error: %w", err)
			}
			order.Details = append(order.Details, detail)
		}

		created = &order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListOrders returns the orders of one user, or every order when userID is 0
// (superuser view).
func (r *GormRepo) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Preload("Details")
	if userID != 0 {
		q = q.Where("created_by = ?", userID)
	}

	var orders []models.Order
	if err := q.Order("id ASC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return orders, nil
}

func (r *GormRepo) FindOrderByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Details").Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &order, nil
}
