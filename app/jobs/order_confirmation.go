// Package jobs holds the background jobs dispatched through pkg/queue.
package jobs

import (
	"github.com/fornello/pizzeria/pkg/logger"
	"github.com/fornello/pizzeria/pkg/queue"
)

// OrderConfirmationJob sends the customer a confirmation for a freshly
// placed order. Delivery is simulated with a structured log line; the
// payload carries everything a real mailer would need.
type OrderConfirmationJob struct {
	OrderNumber int64   `json:"orderNumber"`
	UserID      string  `json:"userId"`
	TotalAmount float64 `json:"totalAmount"`
	Items       int     `json:"items"`
}

// Handle implements queue.Job.
func (j *OrderConfirmationJob) Handle() error {
	logger.Info("order confirmation sent",
		"orderNumber", j.OrderNumber,
		"userId", j.UserID,
		"total", j.TotalAmount,
		"items", j.Items)
	return nil
}

// RegisterAll registers every job type with the queue. Call once at
// boot, before workers start.
func RegisterAll() {
	queue.Register("*jobs.OrderConfirmationJob", func() queue.Job { return &OrderConfirmationJob{} })
}
