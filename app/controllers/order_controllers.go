package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fornello/pizzeria/app/jobs"
	"github.com/fornello/pizzeria/app/models"
	"github.com/fornello/pizzeria/app/repositories"
	"github.com/fornello/pizzeria/app/services"
	"github.com/fornello/pizzeria/pkg/logger"
	"github.com/fornello/pizzeria/pkg/middleware"
	"github.com/fornello/pizzeria/pkg/response"
	"github.com/fornello/pizzeria/pkg/validate"
)

// OrderController exposes order placement, listing, status updates and
// customer cancellation. Every route is behind the auth gate, so the
// identity context is always present here.
type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

type placeOrderLine struct {
	PizzaID    string  `json:"pizzaId"  validate:"required"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"totalPrice"`
	CustomText string  `json:"customText"`
}

type placeOrderRequest struct {
	Pizzas      []placeOrderLine `json:"pizzas"      validate:"required"`
	TotalAmount float64          `json:"totalAmount" validate:"gte=0"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// confirmationFor builds the queued confirmation job for an order.
func confirmationFor(order models.Order) interface{ Handle() error } {
	return &jobs.OrderConfirmationJob{
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID.Hex(),
		TotalAmount: order.TotalAmount,
		Items:       len(order.Lines),
	}
}

// PlaceOrder creates an order for the authenticated customer.
func (c *OrderController) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validate.Struct(&req); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	lines := make([]services.PlaceOrderLine, 0, len(req.Pizzas))
	for _, p := range req.Pizzas {
		lines = append(lines, services.PlaceOrderLine{
			PizzaID:    p.PizzaID,
			Quantity:   p.Quantity,
			TotalPrice: p.TotalPrice,
			CustomText: p.CustomText,
		})
	}

	order, err := c.service.PlaceOrder(r.Context(), userID, lines, req.TotalAmount, confirmationFor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyOrder):
			response.BadRequest(w, "Order must contain at least one pizza.")
		case errors.Is(err, services.ErrUnknownPizza):
			response.BadRequest(w, "Pizza not found")
		default:
			logger.WithCtx(r.Context()).Error("place order", "error", err)
			response.ServerError(w, "Could not place order")
		}
		return
	}

	response.Success(w, "Order placed successfully.", order)
}

// ListOrders returns all orders for admins and the caller's own orders
// for everyone else.
func (c *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	if claims == nil {
		response.Unauthorized(w, "Access Denied")
		return
	}

	var (
		orders []models.Order
		err    error
	)
	if claims.Role == models.RoleAdmin {
		orders, err = c.service.ListAll(r.Context())
	} else {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		orders, err = c.service.ListForUser(r.Context(), userID)
	}
	if err != nil {
		logger.WithCtx(r.Context()).Error("list orders", "error", err)
		response.ServerError(w, "Could not fetch orders")
		return
	}

	if orders == nil {
		orders = []models.Order{}
	}
	response.Success(w, "Orders fetched successfully.", orders)
}

// UpdateStatus moves an order to a new lifecycle state. Admin only.
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid order ID")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if errs := validate.Struct(&req); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	order, err := c.service.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		c.writeOrderError(w, r, err, "update order status")
		return
	}

	response.Success(w, "Order status updated successfully.", order)
}

// Cancel lets a customer cancel their own pending order. Admins may
// cancel anyone's pending order through the same route.
func (c *OrderController) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid order ID")
		return
	}

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	claims := middleware.ClaimsFromCtx(r.Context())
	isAdmin := claims != nil && claims.Role == models.RoleAdmin

	order, err := c.service.CancelByCustomer(r.Context(), id, userID, isAdmin)
	if err != nil {
		c.writeOrderError(w, r, err, "cancel order")
		return
	}

	response.Success(w, "Order cancelled successfully.", order)
}

func (c *OrderController) writeOrderError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		response.NotFound(w, "Order not found")
	case errors.Is(err, services.ErrInvalidStatus):
		response.BadRequest(w, "Invalid status")
	case errors.Is(err, services.ErrNotOwner):
		response.Forbidden(w, "You can only cancel your own orders.")
	case errors.Is(err, services.ErrInvalidTransition):
		response.BadRequest(w, "Invalid status transition")
	default:
		logger.WithCtx(r.Context()).Error(op, "error", err)
		response.ServerError(w, "Could not update order")
	}
}

// callerID extracts and parses the authenticated user's id, writing the
// error response itself on failure.
func callerID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	claims := middleware.ClaimsFromCtx(r.Context())
	if claims == nil {
		response.Unauthorized(w, "Access Denied")
		return primitive.NilObjectID, false
	}

	userID, err := services.UserID(claims)
	if err != nil {
		response.Unauthorized(w, "Invalid Token")
		return primitive.NilObjectID, false
	}
	return userID, true
}
