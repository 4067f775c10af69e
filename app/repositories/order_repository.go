package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fornello/pizzeria/app/models"
)

// orderCounterID is the counters document that backs the order number
// sequence.
const orderCounterID = "orderNumber"

// OrderRepository handles persistence for orders and the order number
// counter.
type OrderRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{
		col:      db.Collection("orders"),
		counters: db.Collection("counters"),
	}
}

// NextOrderNumber reserves the next order number. The increment and
// read happen in a single findOneAndUpdate, so concurrent callers each
// get a distinct value and no number is ever handed out twice. The
// counter document is upserted on first use, making the first order
// number 1.
func (r *OrderRepository) NextOrderNumber(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": orderCounterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("orders: next order number: %w", err)
	}
	return counter.Seq, nil
}

// Create inserts a placed order. The unique index on orderNumber is a
// backstop behind the counter; a collision surfaces as ErrDuplicate.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	result, err := r.col.InsertOne(ctx, order)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("orders: create: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	return nil
}

// FindByID fetches a single order.
func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	var order models.Order
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Order{}, ErrNotFound
		}
		return models.Order{}, fmt.Errorf("orders: find by id: %w", err)
	}
	return order, nil
}

// All returns every order, newest first.
func (r *OrderRepository) All(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

// ByUser returns the orders placed by one customer, newest first.
func (r *OrderRepository) ByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("orders: list: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("orders: decode: %w", err)
	}
	return orders, nil
}

// UpdateStatusFrom moves an order from one status to another with a
// conditional update: the write only lands if the stored status still
// matches from, so racing writers cannot both succeed. ErrNotFound
// means either the order is gone or its status changed underneath the
// caller.
func (r *OrderRepository) UpdateStatusFrom(ctx context.Context, id primitive.ObjectID, from, to models.Status) error {
	result, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("orders: update status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
