// Package server boots the API: configuration, storage, background
// workers, the live order feed, and the HTTP listener with graceful
// shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fornello/pizzeria/app/controllers"
	"github.com/fornello/pizzeria/app/jobs"
	"github.com/fornello/pizzeria/app/repositories"
	"github.com/fornello/pizzeria/app/routes"
	"github.com/fornello/pizzeria/app/services"
	"github.com/fornello/pizzeria/config"
	"github.com/fornello/pizzeria/pkg/auth"
	"github.com/fornello/pizzeria/pkg/cache"
	"github.com/fornello/pizzeria/pkg/database"
	"github.com/fornello/pizzeria/pkg/event"
	"github.com/fornello/pizzeria/pkg/logger"
	"github.com/fornello/pizzeria/pkg/queue"
	"github.com/fornello/pizzeria/pkg/router"
	"github.com/fornello/pizzeria/pkg/ws"
)

// Start runs the API server until SIGINT/SIGTERM.
func Start() error {
	config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.Disconnect(shutdownCtx); err != nil {
			logger.Error("server: disconnect database", "error", err)
		}
	}()

	if err := database.EnsureIndexes(ctx); err != nil {
		return err
	}

	var mongoLog *logger.MongoHandler
	if config.LogToMongo() {
		mongoLog = logger.NewMongoHandler(database.Collection("logs"))
		logger.SetHandler(logger.NewMultiHandler(logger.L.Handler(), mongoLog))
		defer mongoLog.Close()
	}

	if err := cache.Connect(); err != nil {
		logger.Warn("server: redis unavailable, running uncached", "error", err)
	}

	// Background jobs.
	jobs.RegisterAll()
	queue.UseCollection(database.Collection("failed_jobs"))
	if config.QueueDriver() == "redis" && cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}
	queue.StartWorkers(ctx, config.QueueWorkers())

	// Live order feed: order events fan out to connected admins.
	orderFeed := ws.NewHub()
	go orderFeed.Run()
	event.Listen(event.OrderPlaced, func(payload interface{}) {
		orderFeed.BroadcastJSON(map[string]interface{}{"event": event.OrderPlaced, "order": payload})
	})
	event.Listen(event.OrderStatusChanged, func(payload interface{}) {
		orderFeed.BroadcastJSON(map[string]interface{}{"event": event.OrderStatusChanged, "order": payload})
	})

	r := buildRouter(orderFeed)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// buildRouter assembles repositories, services, controllers and the
// route table around the shared database handle.
func buildRouter(orderFeed *ws.Hub) *router.Router {
	tokens := auth.NewTokenManager(config.JWTSecret())

	userRepo := repositories.NewUserRepository(database.DB)
	pizzaRepo := repositories.NewPizzaRepository(database.DB)
	orderRepo := repositories.NewOrderRepository(database.DB)

	dispatch := func(j interface{ Handle() error }) error { return queue.Dispatch(j) }

	authService := services.NewAuthService(userRepo, tokens)
	pizzaService := services.NewPizzaService(pizzaRepo)
	orderService := services.NewOrderService(orderRepo, pizzaRepo, dispatch)

	return routes.Register(routes.Deps{
		Tokens:    tokens,
		Auth:      controllers.NewAuthController(authService, tokens),
		Orders:    controllers.NewOrderController(orderService),
		Pizzas:    controllers.NewPizzaController(pizzaService),
		OrderFeed: orderFeed,
	})
}
