package config

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

const (
	defaultMongoURI    = "mongodb://localhost:27017"
	defaultMongoDB     = "fornello"
	defaultRedisAddr   = "localhost:6379"
	defaultJWTSecret   = "change-me-in-production"
	defaultAppPort     = "8080"
	defaultAppEnv      = "local"
	defaultQueueDriver = "memory"
	defaultWorkers     = 4
)

var loadOnce sync.Once

// Load reads .env into the process environment. A missing file is fine;
// real environment variables always win over .env entries.
func Load() {
	loadOnce.Do(func() {
		_ = godotenv.Load()
	})
}

func get(key, fallback string) string {
	Load()
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func MongoURI() string { return get("MONGO_URI", defaultMongoURI) }
func MongoDB() string  { return get("MONGO_DB", defaultMongoDB) }

func RedisAddr() string     { return get("REDIS_ADDR", defaultRedisAddr) }
func RedisPassword() string { return get("REDIS_PASSWORD", "") }

// JWTSecret returns the process-wide token signing secret. The default
// exists only so local development works out of the box; production
// deployments must set JWT_SECRET.
func JWTSecret() string { return get("JWT_SECRET", defaultJWTSecret) }

func AppPort() string { return get("APP_PORT", defaultAppPort) }
func AppEnv() string  { return get("APP_ENV", defaultAppEnv) }

// LogToMongo enables the async MongoDB slog handler alongside stdout.
func LogToMongo() bool {
	v := strings.ToLower(get("LOG_TO_MONGO", "false"))
	return v == "true" || v == "1"
}

// QueueDriver selects the background job backend: "memory" or "redis".
func QueueDriver() string { return strings.ToLower(get("QUEUE_DRIVER", defaultQueueDriver)) }

// QueueWorkers is how many concurrent queue workers the server runs.
func QueueWorkers() int {
	n, err := strconv.Atoi(get("QUEUE_WORKERS", ""))
	if err != nil || n < 1 {
		return defaultWorkers
	}
	return n
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string { return get(key, fallback) }
