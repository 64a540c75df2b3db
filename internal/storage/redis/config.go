package redis

import (
	"time"

	"github.com/mcoot/registrar/internal/model"
)

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// SessionTTL bounds how long an abandoned registration session is kept.
	// Registrants never expire.
	SessionTTL time.Duration

	// DuplicatePolicy decides whether an email already in the roster is rejected
	DuplicatePolicy model.DuplicatePolicy

	// MaxInsertRetries is how many times an insert is retried when another
	// writer changes the roster between read and commit
	MaxInsertRetries int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:              "redis://localhost:6379",
		PoolSize:         10,
		MinIdleConns:     2,
		SessionTTL:       30 * time.Minute,
		DuplicatePolicy:  model.DuplicatePolicyReject,
		MaxInsertRetries: 10,
	}
}
