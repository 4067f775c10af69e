// Package seeders populates a fresh database with an admin account and
// a starter catalogue.
package seeders

import (
	"context"
	"errors"
	"fmt"

	"github.com/fornello/pizzeria/app/models"
	"github.com/fornello/pizzeria/app/repositories"
	"github.com/fornello/pizzeria/config"
	"github.com/fornello/pizzeria/pkg/auth"
	"github.com/fornello/pizzeria/pkg/database"
	"github.com/fornello/pizzeria/pkg/logger"
)

var starterPizzas = []models.Pizza{
	{
		Name:        "Margherita",
		BasePrice:   8.50,
		Description: "Tomato, mozzarella and fresh basil.",
		Ingredients: []models.Ingredient{
			{Name: "Tomato sauce", Price: 0.50},
			{Name: "Mozzarella", Price: 1.20},
			{Name: "Basil", Price: 0.30},
		},
	},
	{
		Name:        "Diavola",
		BasePrice:   10.00,
		Description: "Spicy salami and chilli.",
		Ingredients: []models.Ingredient{
			{Name: "Tomato sauce", Price: 0.50},
			{Name: "Mozzarella", Price: 1.20},
			{Name: "Spicy salami", Price: 2.00},
			{Name: "Chilli", Price: 0.40},
		},
	},
	{
		Name:        "Quattro Formaggi",
		BasePrice:   11.50,
		Description: "Mozzarella, gorgonzola, parmesan and fontina.",
		Ingredients: []models.Ingredient{
			{Name: "Mozzarella", Price: 1.20},
			{Name: "Gorgonzola", Price: 1.80},
			{Name: "Parmesan", Price: 1.50},
			{Name: "Fontina", Price: 1.60},
		},
	},
}

// Run seeds the admin user and starter catalogue. Idempotent: records
// that already exist are skipped.
func Run(ctx context.Context) error {
	users := repositories.NewUserRepository(database.DB)
	pizzas := repositories.NewPizzaRepository(database.DB)

	email := config.Get("SEED_ADMIN_EMAIL", "admin@fornello.local")
	password := config.Get("SEED_ADMIN_PASSWORD", "admin123")

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("seed: hash admin password: %w", err)
	}

	admin := models.User{
		Name:     "Admin",
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
	}
	switch err := users.Create(ctx, &admin); {
	case err == nil:
		logger.Info("seed: admin user created", "email", email)
	case errors.Is(err, repositories.ErrDuplicate):
		logger.Info("seed: admin user already exists", "email", email)
	default:
		return err
	}

	for i := range starterPizzas {
		pizza := starterPizzas[i]
		switch err := pizzas.Create(ctx, &pizza); {
		case err == nil:
			logger.Info("seed: pizza created", "name", pizza.Name)
		case errors.Is(err, repositories.ErrDuplicate):
			logger.Info("seed: pizza already exists", "name", pizza.Name)
		default:
			return err
		}
	}

	return nil
}
