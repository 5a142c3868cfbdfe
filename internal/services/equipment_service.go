package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/equipstore/backend/internal/models"
)

var ErrItemNotFound = errors.New("item not found")

// ItemInput carries the writable fields of an item. A nil Quantity leaves the
// stock row untouched.
type ItemInput struct {
	Name          string
	Brand         string
	CategoryID    *string
	Price         float64
	Description   *string
	Condition     string
	ImageFilename *string
	Quantity      *int
}

// FilterOptions narrows and orders the catalog. Zero values disable a filter.
type FilterOptions struct {
	Name       string
	Brand      string
	CategoryID string
	Condition  string
	MinPrice   *float64
	MaxPrice   *float64
	InStock    *bool
	SortBy     string
	SortOrder  string
}

// sortColumns is the whitelist of columns the catalog may be ordered by.
var sortColumns = map[string]string{
	"name":       "name",
	"brand":      "brand",
	"price":      "price",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type EquipmentService struct {
	db *gorm.DB
}

func NewEquipmentService(db *gorm.DB) *EquipmentService {
	return &EquipmentService{db: db}
}

// itemViews selects items with their category name and stock quantity.
func itemViews(db *gorm.DB) *gorm.DB {
	return db.Table("items AS i").
		Select("i.*, c.name AS category_name, COALESCE(s.quantity, 0) AS quantity").
		Joins("LEFT JOIN item_categories c ON c.id = i.category_id").
		Joins("LEFT JOIN item_stocks s ON s.item_id = i.id")
}

// ListByOwner returns the items listed by userID, newest first.
func (s *EquipmentService) ListByOwner(ctx context.Context, userID string) ([]models.ItemView, error) {
	out := []models.ItemView{}
	err := itemViews(s.db.WithContext(ctx)).
		Where("i.user_id = ?", userID).
		Order("i.created_at DESC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return out, nil
}

// Get returns one item by id.
func (s *EquipmentService) Get(ctx context.Context, id string) (*models.ItemView, error) {
	return s.get(s.db.WithContext(ctx), id)
}

func (s *EquipmentService) get(db *gorm.DB, id string) (*models.ItemView, error) {
	var views []models.ItemView
	if err := itemViews(db).Where("i.id = ?", id).Limit(1).Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	if len(views) == 0 {
		return nil, ErrItemNotFound
	}
	return &views[0], nil
}

// Create inserts an item owned by ownerID and its stock row when a quantity is given.
func (s *EquipmentService) Create(ctx context.Context, ownerID string, in ItemInput) (*models.ItemView, error) {
	item := models.Item{
		Name:          in.Name,
		Brand:         in.Brand,
		CategoryID:    in.CategoryID,
		Price:         in.Price,
		Description:   in.Description,
		Condition:     in.Condition,
		ImageFilename: in.ImageFilename,
		UserID:        ownerID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		if in.Quantity != nil {
			return upsertStock(tx, item.ID, *in.Quantity)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return s.Get(ctx, item.ID)
}

// Update changes an item owned by ownerID. Items that do not exist or belong to
// another user yield ErrItemNotFound.
func (s *EquipmentService) Update(ctx context.Context, ownerID, id string, in ItemInput) (*models.ItemView, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := ownedItem(tx, ownerID, id)
		if err != nil {
			return err
		}
		updates := map[string]interface{}{
			"name":           in.Name,
			"brand":          in.Brand,
			"category_id":    in.CategoryID,
			"price":          in.Price,
			"description":    in.Description,
			"condition":      in.Condition,
			"image_filename": in.ImageFilename,
		}
		if err := tx.Model(item).Updates(updates).Error; err != nil {
			return err
		}
		if in.Quantity != nil {
			return upsertStock(tx, item.ID, *in.Quantity)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update item %s: %w", id, err)
	}
	return s.Get(ctx, id)
}

// Delete removes an item owned by ownerID together with its stock row.
func (s *EquipmentService) Delete(ctx context.Context, ownerID, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := ownedItem(tx, ownerID, id)
		if err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", item.ID).Delete(&models.ItemStock{}).Error; err != nil {
			return err
		}
		return tx.Delete(item).Error
	})
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return err
		}
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	return nil
}

// Filter returns catalog items matching opts. All values are bound as
// parameters; the sort column comes from a whitelist.
func (s *EquipmentService) Filter(ctx context.Context, opts FilterOptions) ([]models.ItemView, error) {
	q := itemViews(s.db.WithContext(ctx))

	if opts.Name != "" {
		q = q.Where("LOWER(i.name) LIKE ?", "%"+strings.ToLower(opts.Name)+"%")
	}
	if opts.Brand != "" {
		q = q.Where("LOWER(i.brand) LIKE ?", "%"+strings.ToLower(opts.Brand)+"%")
	}
	if opts.CategoryID != "" {
		q = q.Where("i.category_id = ?", opts.CategoryID)
	}
	if opts.Condition != "" {
		q = q.Where("i.condition = ?", opts.Condition)
	}
	if opts.MinPrice != nil {
		q = q.Where("i.price >= ?", *opts.MinPrice)
	}
	if opts.MaxPrice != nil {
		q = q.Where("i.price <= ?", *opts.MaxPrice)
	}
	if opts.InStock != nil {
		if *opts.InStock {
			q = q.Where("COALESCE(s.quantity, 0) > 0")
		} else {
			q = q.Where("COALESCE(s.quantity, 0) = 0")
		}
	}

	column, ok := sortColumns[opts.SortBy]
	if !ok {
		column = "created_at"
	}
	q = q.Order(clause.OrderByColumn{
		Column: clause.Column{Table: "i", Name: column},
		Desc:   !strings.EqualFold(opts.SortOrder, "asc"),
	})

	out := []models.ItemView{}
	if err := q.Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("filter items: %w", err)
	}
	return out, nil
}

// ListCategories returns all categories by name.
func (s *EquipmentService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// EnsureCategory returns the category called name, creating it when missing.
func (s *EquipmentService) EnsureCategory(ctx context.Context, name, description string) (*models.Category, error) {
	category := models.Category{Name: name}
	err := s.db.WithContext(ctx).
		Where(models.Category{Name: name}).
		Attrs(models.Category{Description: description}).
		FirstOrCreate(&category).Error
	if err != nil {
		return nil, fmt.Errorf("ensure category %s: %w", name, err)
	}
	return &category, nil
}

// CategoryStatistics aggregates item counts, stock and prices per category,
// largest categories first.
func (s *EquipmentService) CategoryStatistics(ctx context.Context) ([]models.CategoryStatistics, error) {
	out := []models.CategoryStatistics{}
	err := s.db.WithContext(ctx).
		Table("item_categories AS c").
		Select(`c.id AS category_id,
			c.name AS category_name,
			COUNT(i.id) AS total_items,
			COALESCE(SUM(s.quantity), 0) AS total_stock,
			COALESCE(AVG(i.price), 0) AS average_price,
			COALESCE(MIN(i.price), 0) AS min_price,
			COALESCE(MAX(i.price), 0) AS max_price`).
		Joins("LEFT JOIN items i ON i.category_id = c.id").
		Joins("LEFT JOIN item_stocks s ON s.item_id = i.id").
		Group("c.id, c.name").
		Order("total_items DESC, c.name ASC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("category statistics: %w", err)
	}
	return out, nil
}

func ownedItem(tx *gorm.DB, ownerID, id string) (*models.Item, error) {
	var item models.Item
	if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func upsertStock(tx *gorm.DB, itemID string, quantity int) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
	}).Create(&models.ItemStock{ItemID: itemID, Quantity: quantity}).Error
}
