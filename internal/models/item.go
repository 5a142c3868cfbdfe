package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups catalog items.
type Category struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Category) TableName() string { return "item_categories" }

func (c *Category) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return
}

// Item is a piece of sports equipment listed by a user.
type Item struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"not null"`
	Brand         string    `json:"brand"`
	CategoryID    *string   `json:"category_id" gorm:"index"`
	Price         float64   `json:"price"`
	Description   *string   `json:"description"`
	Condition     string    `json:"condition"`      // "new", "used", "refurbished"
	ImageFilename *string   `json:"image_filename"` // file name only; uploads are served elsewhere
	UserID        string    `json:"user_id" gorm:"index;not null"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return
}

// ItemStock holds the quantity on hand for one item.
type ItemStock struct {
	ItemID   string `json:"item_id" gorm:"primaryKey"`
	Quantity int    `json:"quantity"`
}

// ItemView is an item joined with its category name and stock quantity.
type ItemView struct {
	Item
	CategoryName *string `json:"category_name"`
	Quantity     int     `json:"quantity"`
}

// CategoryStatistics aggregates the catalog per category for the dashboard charts.
type CategoryStatistics struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	TotalItems   int64   `json:"total_items"`
	TotalStock   int64   `json:"total_stock"`
	AveragePrice float64 `json:"average_price"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
}
