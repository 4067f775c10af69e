package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ingredient is a priced topping, embedded both in the catalogue and in
// order line snapshots.
type Ingredient struct {
	Name  string  `bson:"name"  json:"name"`
	Price float64 `bson:"price" json:"price"`
}

// Pizza is a catalogue item. Name is unique across the collection.
type Pizza struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name"          json:"name"`
	BasePrice   float64            `bson:"basePrice"     json:"basePrice"`
	Description string             `bson:"description"   json:"description"`
	Images      []string           `bson:"images"        json:"images"`
	Ingredients []Ingredient       `bson:"ingredients"   json:"ingredients"`
	CreatedAt   time.Time          `bson:"createdAt"     json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"     json:"updatedAt"`
}
