package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/equipstore/backend/internal/config"
	"github.com/equipstore/backend/internal/database"
	"github.com/equipstore/backend/internal/logger"
	"github.com/equipstore/backend/internal/models"
	"github.com/equipstore/backend/internal/services"
)

type seedItem struct {
	name, brand, category, condition string
	price                            float64
	quantity                         int
}

var seedCategories = []struct{ name, description string }{
	{"Balls", "Footballs, basketballs and other balls"},
	{"Rackets", "Tennis, badminton and squash rackets"},
	{"Bikes", "Road, mountain and city bikes"},
	{"Fitness", "Weights, mats and training gear"},
	{"Winter", "Skis, snowboards and accessories"},
}

var seedItems = []seedItem{
	{"Match Football", "Adidas", "Balls", "new", 29.99, 25},
	{"Street Basketball", "Spalding", "Balls", "new", 34.50, 12},
	{"Pro Tennis Racket", "Wilson", "Rackets", "new", 189.00, 6},
	{"Badminton Set", "Yonex", "Rackets", "used", 45.00, 3},
	{"Trail Mountain Bike", "Trek", "Bikes", "used", 850.00, 2},
	{"Yoga Mat", "Manduka", "Fitness", "new", 79.00, 18},
	{"Adjustable Dumbbells", "Bowflex", "Fitness", "refurbished", 299.00, 4},
	{"All-Mountain Skis", "Atomic", "Winter", "new", 499.00, 0},
}

func main() {
	cfg, err := config.Load(os.Getenv("STORE_CONFIG_FILE"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger.Init(cfg.Logging.Debug, os.Stdout)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
	fmt.Println("✓ Database migrated successfully")

	ctx := context.Background()
	authService := services.NewAuthService(db, cfg.Auth)
	if err := authService.EnsureRoles(ctx); err != nil {
		log.Fatal("Failed to seed roles:", err)
	}

	admin := seedUser(ctx, authService, "admin@example.com", "admin123", "Admin User", models.RoleAdmin)
	seedUser(ctx, authService, "test@example.com", "test123", "Test User", models.RoleUser)

	equipment := services.NewEquipmentService(db)
	categoryIDs := make(map[string]string, len(seedCategories))
	for _, c := range seedCategories {
		cat, err := equipment.EnsureCategory(ctx, c.name, c.description)
		if err != nil {
			log.Fatal("Failed to seed category:", err)
		}
		categoryIDs[c.name] = cat.ID
	}
	fmt.Printf("✓ %d categories ready\n", len(categoryIDs))

	existing, err := equipment.ListByOwner(ctx, admin.ID)
	if err != nil {
		log.Fatal("Failed to read items:", err)
	}
	if len(existing) > 0 {
		fmt.Println("  Items already seeded, skipping")
		return
	}

	for _, it := range seedItems {
		categoryID := categoryIDs[it.category]
		qty := it.quantity
		if _, err := equipment.Create(ctx, admin.ID, services.ItemInput{
			Name:       it.name,
			Brand:      it.brand,
			CategoryID: &categoryID,
			Price:      it.price,
			Condition:  it.condition,
			Quantity:   &qty,
		}); err != nil {
			log.Fatal("Failed to seed item:", err)
		}
	}
	fmt.Printf("✓ %d items created\n", len(seedItems))
}

func seedUser(ctx context.Context, auth *services.AuthService, email, password, name, role string) *models.User {
	user, err := auth.CreateUser(ctx, email, password, name, role)
	if errors.Is(err, services.ErrEmailTaken) {
		_, existing, loginErr := auth.Login(ctx, email, password)
		if loginErr != nil {
			log.Fatalf("User %s exists with a different password: %v", email, loginErr)
		}
		fmt.Printf("  User %s already exists\n", email)
		return existing
	}
	if err != nil {
		log.Fatalf("Failed to seed user %s: %v", email, err)
	}
	fmt.Printf("✓ User %s created (%s)\n", email, role)
	return user
}
