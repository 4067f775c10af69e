package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is an order's lifecycle state. The set is closed: pending is
// the only initial state, the other three are terminal.
type Status string

const (
	StatusPending             Status = "pending"
	StatusDelivered           Status = "delivered"
	StatusCancelledByAdmin    Status = "cancelledByAdmin"
	StatusCancelledByCustomer Status = "cancelledByCustomer"
)

// transitions is the full state machine. A status missing from the map,
// or mapping to an empty set, has no outgoing transitions.
var transitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusDelivered:           true,
		StatusCancelledByAdmin:    true,
		StatusCancelledByCustomer: true,
	},
}

// ParseStatus converts a wire string into a Status. ok is false for
// anything outside the closed set, including the historical "cancelled"
// string that was never a stored value.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusDelivered, StatusCancelledByAdmin, StatusCancelledByCustomer:
		return Status(s), true
	}
	return "", false
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	return transitions[s][next]
}

// Terminal reports whether no transition leads out of s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// OrderLine is a point-in-time snapshot of a catalogue pizza plus the
// customer's quantity and customisation. Once an order is saved the
// snapshot never changes, even if the catalogue item does.
type OrderLine struct {
	PizzaID     primitive.ObjectID `bson:"pizzaId"              json:"pizzaId"`
	Name        string             `bson:"name"                 json:"name"`
	Images      []string           `bson:"images"               json:"images"`
	BasePrice   float64            `bson:"basePrice"            json:"basePrice"`
	Description string             `bson:"description"          json:"description"`
	Ingredients []Ingredient       `bson:"ingredients"          json:"ingredients"`
	Quantity    int                `bson:"quantity"             json:"quantity"`
	TotalPrice  float64            `bson:"totalPrice"           json:"totalPrice"`
	CustomText  string             `bson:"customText,omitempty" json:"customText,omitempty"`
}

// Order is a placed order. OrderNumber is unique and strictly
// increasing, assigned server-side by the sequencer. UserID records the
// placing customer so cancellation can check ownership.
type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber int64              `bson:"orderNumber"   json:"orderNumber"`
	UserID      primitive.ObjectID `bson:"userId"        json:"userId"`
	Lines       []OrderLine        `bson:"pizzas"        json:"pizzas"`
	TotalAmount float64            `bson:"totalAmount"   json:"totalAmount"`
	Status      Status             `bson:"status"        json:"status"`
	CreatedAt   time.Time          `bson:"createdAt"     json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"     json:"updatedAt"`
}
