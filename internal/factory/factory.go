package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/registrar/internal/config"
	"github.com/mcoot/registrar/internal/dependencies/clock"
	"github.com/mcoot/registrar/internal/dependencies/random"
	"github.com/mcoot/registrar/internal/metrics"
	"github.com/mcoot/registrar/internal/model"
	"github.com/mcoot/registrar/internal/services/registration"
	"github.com/mcoot/registrar/internal/storage"
	"github.com/mcoot/registrar/internal/storage/memory"
	redisstorage "github.com/mcoot/registrar/internal/storage/redis"
	"github.com/mcoot/registrar/internal/validation"
	"github.com/mcoot/registrar/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory = config.StorageTypeMemory
	StorageTypeRedis  = config.StorageTypeRedis
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	Metrics *metrics.Metrics

	// Services
	Validator  *validation.Validator
	Controller *registration.Controller

	// Live roster updates
	Hub         *sse.Hub
	Broadcaster *sse.Broadcaster
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Validation holds the field rules. Zero value uses validation.DefaultConfig()
	Validation *validation.Config
	// Registration holds password storage and duplicate handling.
	// Zero value uses registration.DefaultConfig()
	Registration registration.Config
	// MetricsRegistry receives the application metrics (optional)
	// If nil, metrics are recorded on a private registry
	MetricsRegistry *prometheus.Registry
}

// ConfigFrom maps the resolved server configuration onto factory settings
func ConfigFrom(cfg config.Config, logger *slog.Logger, reg *prometheus.Registry) Config {
	v := cfg.Validation()
	out := Config{
		Logger:      logger,
		StorageType: cfg.Storage.Type,
		Validation:  &v,
		Registration: registration.Config{
			PasswordStorage: cfg.Registration.PasswordStorage,
			DuplicatePolicy: cfg.Registration.DuplicatePolicy,
		},
		MetricsRegistry: reg,
	}
	if cfg.Storage.Type == StorageTypeRedis {
		out.RedisConfig = &redisstorage.Config{
			URL:             cfg.Storage.RedisURL,
			PoolSize:        cfg.Storage.PoolSize,
			MinIdleConns:    cfg.Storage.MinIdleConns,
			SessionTTL:      cfg.Storage.SessionTTL,
			DuplicatePolicy: cfg.Registration.DuplicatePolicy,
		}
	}
	return out
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	policy := cfg.Registration.DuplicatePolicy
	if policy == "" {
		policy = model.DuplicatePolicyReject
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.NewWithPolicy(policy)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisCfg := *cfg.RedisConfig
		if redisCfg.DuplicatePolicy == "" {
			redisCfg.DuplicatePolicy = policy
		}
		redisStore, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	m := metrics.NewNop()
	if cfg.MetricsRegistry != nil {
		m = metrics.New(cfg.MetricsRegistry)
	}

	validationCfg := validation.DefaultConfig()
	if cfg.Validation != nil {
		validationCfg = *cfg.Validation
	}

	return newWithDependencies(store, clock.New(), random.New(), m, validationCfg, cfg.Registration, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	m *metrics.Metrics,
	validationCfg validation.Config,
	registrationCfg registration.Config,
	logger *slog.Logger,
) *App {
	validator := validation.New(validationCfg, clk)
	controller := registration.NewController(store, validator, clk, rnd, m, logger, registrationCfg)

	hub := sse.NewHub(logger)
	go hub.Run()

	showPasswords := controller.PasswordStorage() == model.PasswordStorageInsecurePlaintext
	broadcaster := sse.NewBroadcaster(hub, controller, sse.NewRenderer(showPasswords), logger)
	controller.AddListener(broadcaster)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Metrics:     m,
		Validator:   validator,
		Controller:  controller,
		Hub:         hub,
		Broadcaster: broadcaster,
	}
}

// Close stops the SSE hub and releases the storage connection if it has one
func (a *App) Close() error {
	a.Hub.Close()
	if c, ok := a.Storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
