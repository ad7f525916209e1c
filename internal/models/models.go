package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"size:50;unique;not null"  json:"username"`
	FullName     string    `gorm:"size:255;not null"        json:"full_name"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	IsSuperuser  bool      `gorm:"not null;default:false"   json:"is_superuser"`
	Disabled     bool      `gorm:"not null;default:false"   json:"disabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:255;unique;not null" json:"name"`
	Price       float64   `gorm:"not null"                 json:"price"`
	Description string    `gorm:"size:255;not null"        json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Order struct {
	ID        uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedBy uint          `gorm:"index;not null"           json:"created_by"`
	Details   []OrderDetail `gorm:"foreignKey:OrderID"       json:"order_details"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// OrderDetail keeps a snapshot of the product at order time, so later
// catalog edits do not rewrite order history.
type OrderDetail struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      uint      `gorm:"index;not null"           json:"order_id"`
	ProductID    uint      `gorm:"not null"                 json:"product_id"`
	ProductName  string    `gorm:"size:255;not null"        json:"product_name"`
	ProductPrice float64   `gorm:"not null"                 json:"product_price"`
	Description  string    `gorm:"size:255"                 json:"description"`
	Status       string    `gorm:"size:255;default:pending" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
