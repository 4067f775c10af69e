package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fornello/pizzeria/app/models"
)

// PizzaRepository handles persistence for the pizza catalogue.
type PizzaRepository struct {
	col *mongo.Collection
}

func NewPizzaRepository(db *mongo.Database) *PizzaRepository {
	return &PizzaRepository{col: db.Collection("pizzas")}
}

// All returns the full catalogue.
func (r *PizzaRepository) All(ctx context.Context) ([]models.Pizza, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("pizzas: list: %w", err)
	}
	defer cursor.Close(ctx)

	var pizzas []models.Pizza
	if err := cursor.All(ctx, &pizzas); err != nil {
		return nil, fmt.Errorf("pizzas: decode: %w", err)
	}
	return pizzas, nil
}

// FindByID fetches a single catalogue item.
func (r *PizzaRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Pizza, error) {
	var pizza models.Pizza
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&pizza)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Pizza{}, ErrNotFound
		}
		return models.Pizza{}, fmt.Errorf("pizzas: find by id: %w", err)
	}
	return pizza, nil
}

// Create inserts a new catalogue item. A duplicate name yields
// ErrDuplicate via the unique index.
func (r *PizzaRepository) Create(ctx context.Context, pizza *models.Pizza) error {
	now := time.Now()
	pizza.CreatedAt = now
	pizza.UpdatedAt = now

	result, err := r.col.InsertOne(ctx, pizza)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("pizzas: create: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		pizza.ID = oid
	}
	return nil
}

// Update overwrites the mutable fields of a catalogue item.
func (r *PizzaRepository) Update(ctx context.Context, id primitive.ObjectID, pizza *models.Pizza) error {
	update := bson.M{"$set": bson.M{
		"name":        pizza.Name,
		"basePrice":   pizza.BasePrice,
		"description": pizza.Description,
		"images":      pizza.Images,
		"ingredients": pizza.Ingredients,
		"updatedAt":   time.Now(),
	}}
	result, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("pizzas: update: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a catalogue item.
func (r *PizzaRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("pizzas: delete: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
