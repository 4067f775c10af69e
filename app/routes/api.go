// Package routes wires the HTTP surface: public auth and catalogue
// reads, token-gated ordering, and admin-gated catalogue writes, status
// updates and the live order feed.
package routes

import (
	"net/http"
	"time"

	"github.com/fornello/pizzeria/app/controllers"
	"github.com/fornello/pizzeria/pkg/auth"
	"github.com/fornello/pizzeria/pkg/metrics"
	"github.com/fornello/pizzeria/pkg/middleware"
	"github.com/fornello/pizzeria/pkg/reqid"
	"github.com/fornello/pizzeria/pkg/response"
	"github.com/fornello/pizzeria/pkg/router"
	"github.com/fornello/pizzeria/pkg/ws"
)

// Deps bundles everything the route table needs.
type Deps struct {
	Tokens    *auth.TokenManager
	Auth      *controllers.AuthController
	Orders    *controllers.OrderController
	Pizzas    *controllers.PizzaController
	OrderFeed *ws.Hub
}

// Register builds the application router.
func Register(d Deps) *router.Router {
	r := router.New()

	r.Use(
		reqid.Middleware(),
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(middleware.DefaultCORSOptions()),
		metrics.Middleware(),
		middleware.RateLimit(120, time.Minute),
	)

	r.Get("/healthz", "healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, "ok", nil)
	})
	r.Get("/metrics", "metrics", metrics.Handler())

	api := r.Group("/api")

	// Public.
	api.Post("/register", "auth.register", d.Auth.Register)
	api.Post("/login", "auth.login", d.Auth.Login)
	api.Get("/pizzas", "pizza.list", d.Pizzas.List)
	api.Get("/pizza/{id}", "pizza.show", d.Pizzas.Get)

	// Token-gated.
	authed := api.Group("/", middleware.Authenticate(d.Tokens))
	authed.Post("/place-order", "order.place", d.Orders.PlaceOrder)
	authed.Get("/orders", "order.list", d.Orders.ListOrders)
	authed.Put("/order/cancel/{id}", "order.cancel", d.Orders.Cancel)

	// Admin-gated.
	admin := authed.Group("/", middleware.RequireAdmin)
	admin.Put("/order/{id}", "order.status", d.Orders.UpdateStatus)
	admin.Post("/pizza", "pizza.create", d.Pizzas.Create)
	admin.Put("/pizza/{id}", "pizza.update", d.Pizzas.Update)
	admin.Delete("/pizza/{id}", "pizza.delete", d.Pizzas.Delete)
	admin.Get("/ws/orders", "order.feed", func(w http.ResponseWriter, r *http.Request) {
		ws.Upgrade(w, r, d.OrderFeed)
	})

	return r
}
