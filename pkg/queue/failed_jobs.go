package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fornello/pizzeria/pkg/logger"
)

// FailedJobRecord is the document persisted to the failed_jobs
// collection when a job exhausts its retries.
type FailedJobRecord struct {
	JobType  string    `bson:"jobType"`
	Payload  string    `bson:"payload"`
	Error    string    `bson:"error"`
	Attempts int       `bson:"attempts"`
	FailedAt time.Time `bson:"failedAt"`
}

// failedJobCol is the optional durable backend for failed jobs.
// Nil means in-memory only.
var failedJobCol *mongo.Collection

// UseCollection configures the queue to persist failed jobs. Call once
// at boot after the database connection is up:
//
//	queue.UseCollection(database.Collection("failed_jobs"))
func UseCollection(col *mongo.Collection) {
	failedJobCol = col
}

// persistFailed records a failed job in memory and, when configured,
// in the failed_jobs collection.
func (m *Manager) persistFailed(job Job, typeName string, lastErr error, attempts int) {
	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{
		Job: job, Err: lastErr, FailedAt: time.Now(), Attempts: attempts,
	})
	m.mu.Unlock()

	if failedJobCol == nil {
		return
	}

	payload, err := json.Marshal(job)
	if err != nil {
		payload = []byte(fmt.Sprintf(`{"error": "could not marshal: %v"}`, err))
	}

	record := FailedJobRecord{
		JobType:  typeName,
		Payload:  string(payload),
		Attempts: attempts,
		FailedAt: time.Now(),
	}
	if lastErr != nil {
		record.Error = lastErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := failedJobCol.InsertOne(ctx, record); err != nil {
		// In-memory copy above is the fallback.
		logger.Error("queue: persist failed job", "error", err)
	}
}
