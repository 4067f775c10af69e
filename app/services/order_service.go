package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fornello/pizzeria/app/models"
	"github.com/fornello/pizzeria/app/repositories"
	"github.com/fornello/pizzeria/pkg/event"
	"github.com/fornello/pizzeria/pkg/logger"
	"github.com/fornello/pizzeria/pkg/metrics"
)

// orderStore is the slice of the order repository the service needs.
type orderStore interface {
	NextOrderNumber(ctx context.Context) (int64, error)
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	All(ctx context.Context) ([]models.Order, error)
	ByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	UpdateStatusFrom(ctx context.Context, id primitive.ObjectID, from, to models.Status) error
}

// pizzaFinder resolves catalogue items when building order snapshots.
type pizzaFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Pizza, error)
}

// Dispatcher enqueues background jobs. Satisfied by queue.Dispatch.
type Dispatcher func(job interface{ Handle() error }) error

// OrderService owns the order lifecycle: placement, status changes and
// customer cancellation.
type OrderService struct {
	orders   orderStore
	pizzas   pizzaFinder
	dispatch Dispatcher
}

func NewOrderService(orders orderStore, pizzas pizzaFinder, dispatch Dispatcher) *OrderService {
	if dispatch == nil {
		dispatch = func(interface{ Handle() error }) error { return nil }
	}
	return &OrderService{orders: orders, pizzas: pizzas, dispatch: dispatch}
}

// PlaceOrderLine is one requested item: which pizza, how many, the
// line total as priced by the caller, and any customisation text. The
// catalogue fields are snapshotted server-side; the totals are taken
// as supplied and not recomputed.
type PlaceOrderLine struct {
	PizzaID    string
	Quantity   int
	TotalPrice float64
	CustomText string
}

// ConfirmationJob is built by the caller from a placed order; the
// service stays decoupled from the jobs package.
type ConfirmationJob func(order models.Order) interface{ Handle() error }

// PlaceOrder creates an order for userID. Each line is snapshotted from
// the live catalogue, the order number comes from the atomic sequencer,
// and the order starts out pending.
func (s *OrderService) PlaceOrder(ctx context.Context, userID primitive.ObjectID, lines []PlaceOrderLine, totalAmount float64, confirm ConfirmationJob) (models.Order, error) {
	if len(lines) == 0 {
		return models.Order{}, ErrEmptyOrder
	}

	var snapshots []models.OrderLine
	for _, line := range lines {
		pizzaID, err := primitive.ObjectIDFromHex(line.PizzaID)
		if err != nil {
			return models.Order{}, ErrUnknownPizza
		}

		pizza, err := s.pizzas.FindByID(ctx, pizzaID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return models.Order{}, ErrUnknownPizza
			}
			return models.Order{}, err
		}

		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}

		snapshots = append(snapshots, models.OrderLine{
			PizzaID:     pizza.ID,
			Name:        pizza.Name,
			Images:      pizza.Images,
			BasePrice:   pizza.BasePrice,
			Description: pizza.Description,
			Ingredients: pizza.Ingredients,
			Quantity:    qty,
			TotalPrice:  line.TotalPrice,
			CustomText:  line.CustomText,
		})
	}

	number, err := s.orders.NextOrderNumber(ctx)
	if err != nil {
		return models.Order{}, err
	}

	now := time.Now()
	order := models.Order{
		OrderNumber: number,
		UserID:      userID,
		Lines:       snapshots,
		TotalAmount: totalAmount,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.orders.Create(ctx, &order); err != nil {
		return models.Order{}, err
	}

	metrics.OrdersPlaced.Inc()
	event.FireAsync(event.OrderPlaced, order)

	if confirm != nil {
		if err := s.dispatch(confirm(order)); err != nil {
			// The order itself is committed; confirmation is best-effort.
			logger.WithCtx(ctx).Error("order: dispatch confirmation", "orderNumber", number, "error", err)
		}
	}

	logger.WithCtx(ctx).Info("order placed",
		"orderNumber", number, "items", len(snapshots), "total", totalAmount)
	return order, nil
}

// SetStatus moves an order to the requested status. An unknown status
// string is rejected outright; transitions outside the lifecycle table
// are rejected with ErrInvalidTransition; the conditional write closes
// the race between two concurrent updates.
func (s *OrderService) SetStatus(ctx context.Context, id primitive.ObjectID, statusStr string) (models.Order, error) {
	to, ok := models.ParseStatus(statusStr)
	if !ok {
		return models.Order{}, ErrInvalidStatus
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return models.Order{}, err
	}

	if !order.Status.CanTransition(to) {
		return models.Order{}, ErrInvalidTransition
	}

	if err := s.orders.UpdateStatusFrom(ctx, id, order.Status, to); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Lost the race: the status changed after we read it.
			return models.Order{}, ErrInvalidTransition
		}
		return models.Order{}, err
	}

	order.Status = to
	order.UpdatedAt = time.Now()

	metrics.OrderTransitions.WithLabelValues(string(to)).Inc()
	event.FireAsync(event.OrderStatusChanged, order)

	logger.WithCtx(ctx).Info("order status changed",
		"orderNumber", order.OrderNumber, "status", string(to))
	return order, nil
}

// CancelByCustomer cancels an order on behalf of the customer who
// placed it, and only while the order is still pending. Admins may
// cancel any order through this path; everyone else must own it.
func (s *OrderService) CancelByCustomer(ctx context.Context, id, userID primitive.ObjectID, isAdmin bool) (models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return models.Order{}, err
	}

	if order.UserID != userID && !isAdmin {
		return models.Order{}, ErrNotOwner
	}
	if !order.Status.CanTransition(models.StatusCancelledByCustomer) {
		return models.Order{}, ErrInvalidTransition
	}

	if err := s.orders.UpdateStatusFrom(ctx, id, order.Status, models.StatusCancelledByCustomer); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Order{}, ErrInvalidTransition
		}
		return models.Order{}, err
	}

	order.Status = models.StatusCancelledByCustomer
	order.UpdatedAt = time.Now()

	metrics.OrderTransitions.WithLabelValues(string(order.Status)).Inc()
	event.FireAsync(event.OrderStatusChanged, order)

	logger.WithCtx(ctx).Info("order cancelled by customer", "orderNumber", order.OrderNumber)
	return order, nil
}

// ListAll returns every order, for admin views.
func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.orders.All(ctx)
}

// ListForUser returns the orders placed by one customer.
func (s *OrderService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.orders.ByUser(ctx, userID)
}
