package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fornello/pizzeria/app/models"
	"github.com/fornello/pizzeria/pkg/cache"
	"github.com/fornello/pizzeria/pkg/logger"
)

// catalogueKey caches the full pizza list. Writes invalidate it.
const (
	catalogueKey = "fornello:pizzas"
	catalogueTTL = 5 * time.Minute
)

// pizzaStore is the slice of the pizza repository the service needs.
type pizzaStore interface {
	All(ctx context.Context) ([]models.Pizza, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Pizza, error)
	Create(ctx context.Context, pizza *models.Pizza) error
	Update(ctx context.Context, id primitive.ObjectID, pizza *models.Pizza) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PizzaService manages the catalogue, with a Redis read-through cache
// on the listing.
type PizzaService struct {
	pizzas pizzaStore
}

func NewPizzaService(pizzas pizzaStore) *PizzaService {
	return &PizzaService{pizzas: pizzas}
}

// List returns the catalogue, serving from cache when possible.
func (s *PizzaService) List(ctx context.Context) ([]models.Pizza, error) {
	var cached []models.Pizza
	if cache.Get(catalogueKey, &cached) {
		return cached, nil
	}

	pizzas, err := s.pizzas.All(ctx)
	if err != nil {
		return nil, err
	}

	if err := cache.Set(catalogueKey, pizzas, catalogueTTL); err != nil {
		logger.WithCtx(ctx).Warn("pizza: cache catalogue", "error", err)
	}
	return pizzas, nil
}

// Get fetches a single catalogue item.
func (s *PizzaService) Get(ctx context.Context, id primitive.ObjectID) (models.Pizza, error) {
	return s.pizzas.FindByID(ctx, id)
}

// Create adds a catalogue item and invalidates the cached listing.
func (s *PizzaService) Create(ctx context.Context, pizza *models.Pizza) error {
	if err := s.pizzas.Create(ctx, pizza); err != nil {
		return err
	}
	s.invalidate(ctx)
	logger.WithCtx(ctx).Info("pizza created", "name", pizza.Name)
	return nil
}

// Update modifies a catalogue item and invalidates the cached listing.
func (s *PizzaService) Update(ctx context.Context, id primitive.ObjectID, pizza *models.Pizza) error {
	if err := s.pizzas.Update(ctx, id, pizza); err != nil {
		return err
	}
	s.invalidate(ctx)
	logger.WithCtx(ctx).Info("pizza updated", "name", pizza.Name)
	return nil
}

// Delete removes a catalogue item and invalidates the cached listing.
func (s *PizzaService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.pizzas.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	logger.WithCtx(ctx).Info("pizza deleted", "id", id.Hex())
	return nil
}

func (s *PizzaService) invalidate(ctx context.Context) {
	if err := cache.Del(catalogueKey); err != nil {
		logger.WithCtx(ctx).Warn("pizza: invalidate catalogue cache", "error", err)
	}
}
