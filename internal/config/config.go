package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/registrar/internal/model"
	"github.com/mcoot/registrar/internal/validation"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Environment variables read by LoadFromEnv
const (
	EnvConfigPath  = "REGISTRAR_CONFIG"
	EnvStorageType = "STORAGE_TYPE"
	EnvRedisURL    = "REDIS_URL"
	EnvPort        = "PORT"
	EnvEmailSuffix = "REGISTRAR_EMAIL_SUFFIX"
)

// Config is the resolved server configuration
type Config struct {
	Server       ServerConfig
	Storage      StorageConfig
	Registration RegistrationConfig
	Log          LogConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type StorageConfig struct {
	// Type is "memory" or "redis"
	Type         string
	RedisURL     string
	PoolSize     int
	MinIdleConns int
	SessionTTL   time.Duration
}

type RegistrationConfig struct {
	// EmailSuffix is the required address ending. Empty accepts any TLD.
	EmailSuffix     string
	MinimumAge      int
	StrictAge       bool
	NoteMaxLength   int
	PasswordStorage model.PasswordStorage
	DuplicatePolicy model.DuplicatePolicy
}

type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string
	// Format is "json" or "text"
	Format string
}

// Default returns the configuration used when no file or environment overrides are given
func Default() Config {
	v := validation.DefaultConfig()
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Type:         StorageTypeMemory,
			RedisURL:     "redis://localhost:6379",
			PoolSize:     10,
			MinIdleConns: 2,
			SessionTTL:   30 * time.Minute,
		},
		Registration: RegistrationConfig{
			EmailSuffix:     v.EmailSuffix,
			MinimumAge:      v.MinimumAge,
			StrictAge:       v.StrictAge,
			NoteMaxLength:   v.NoteMaxLength,
			PasswordStorage: model.PasswordStorageBcrypt,
			DuplicatePolicy: model.DuplicatePolicyReject,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadFromEnv reads the file named by REGISTRAR_CONFIG (if set), then applies
// the environment overrides and validates the result
func LoadFromEnv() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path, ok := lookup(EnvConfigPath); ok && path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables found by lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvStorageType); ok && v != "" {
		c.Storage.Type = v
	}
	if v, ok := lookup(EnvRedisURL); ok && v != "" {
		c.Storage.RedisURL = v
	}
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Server.Port = port
	}
	// Set but empty means "any TLD"
	if v, ok := lookup(EnvEmailSuffix); ok {
		c.Registration.EmailSuffix = strings.TrimSpace(v)
	}
	return nil
}

// Validate checks enum values and ranges
func (c Config) Validate() error {
	var errs []error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}

	switch c.Storage.Type {
	case StorageTypeMemory:
	case StorageTypeRedis:
		if c.Storage.RedisURL == "" {
			errs = append(errs, errors.New("storage.redis_url required when storage.type is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.type must be %q or %q, got %q", StorageTypeMemory, StorageTypeRedis, c.Storage.Type))
	}

	switch c.Registration.PasswordStorage {
	case model.PasswordStorageBcrypt, model.PasswordStorageInsecurePlaintext:
	default:
		errs = append(errs, fmt.Errorf("registration.password_storage must be %q or %q, got %q",
			model.PasswordStorageBcrypt, model.PasswordStorageInsecurePlaintext, c.Registration.PasswordStorage))
	}

	switch c.Registration.DuplicatePolicy {
	case model.DuplicatePolicyReject, model.DuplicatePolicyAllow:
	default:
		errs = append(errs, fmt.Errorf("registration.duplicate_email must be %q or %q, got %q",
			model.DuplicatePolicyReject, model.DuplicatePolicyAllow, c.Registration.DuplicatePolicy))
	}

	// Zero would be replaced by the validator's default, so it is never a real setting
	if c.Registration.MinimumAge < 1 {
		errs = append(errs, fmt.Errorf("registration.minimum_age must be at least 1, got %d", c.Registration.MinimumAge))
	}
	if c.Registration.NoteMaxLength < 1 {
		errs = append(errs, fmt.Errorf("registration.note_max_length must be at least 1, got %d", c.Registration.NoteMaxLength))
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Errorf("log.format must be \"json\" or \"text\", got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Validation returns the validator settings
func (c Config) Validation() validation.Config {
	return validation.Config{
		EmailSuffix:   c.Registration.EmailSuffix,
		MinimumAge:    c.Registration.MinimumAge,
		StrictAge:     c.Registration.StrictAge,
		NoteMaxLength: c.Registration.NoteMaxLength,
	}
}

// NewLogger builds the application logger writing to w
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
