package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/registrar/internal/model"
	"github.com/mcoot/registrar/internal/registry"
	"github.com/mcoot/registrar/internal/storage"
)

// ErrInsertContention is returned when an insert lost every optimistic retry
var ErrInsertContention = errors.New("roster changed concurrently; insert not applied")

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.MaxInsertRetries <= 0 {
		cfg.MaxInsertRetries = DefaultConfig().MaxInsertRetries
	}
	if cfg.DuplicatePolicy == "" {
		cfg.DuplicatePolicy = model.DuplicatePolicyReject
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Registrant operations

// InsertRegistrant reads the roster under WATCH, finds the position with the
// same rule as the in-memory registry, and commits the record, the email
// index and the roster entry in one MULTI.
func (s *Storage) InsertRegistrant(ctx context.Context, rp *model.Registrant) error {
	data, err := json.Marshal(rp)
	if err != nil {
		return err
	}

	idxKey := emailIndexKey(rp.Email)
	id := string(rp.ID)

	txf := func(tx *redis.Tx) error {
		if s.cfg.DuplicatePolicy != model.DuplicatePolicyAllow {
			exists, err := tx.Exists(ctx, idxKey).Result()
			if err != nil {
				return err
			}
			if exists > 0 {
				return model.ErrDuplicateEmail
			}
		}

		ids, err := tx.LRange(ctx, rosterKey(), 0, -1).Result()
		if err != nil {
			return err
		}
		registrants, err := s.fetch(ctx, tx, ids)
		if err != nil {
			return err
		}
		lastNames := make([]string, len(registrants))
		for i, r := range registrants {
			lastNames[i] = r.LastName
		}
		pos := registry.InsertIndex(lastNames, rp.LastName)

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, registrantKey(rp.ID), data, 0) // No TTL
			pipe.SetNX(ctx, idxKey, id, 0)
			if pos == len(registrants) {
				pipe.RPush(ctx, rosterKey(), id)
			} else {
				pipe.LInsertBefore(ctx, rosterKey(), string(registrants[pos].ID), id)
			}
			return nil
		})
		return err
	}

	for i := 0; i < s.cfg.MaxInsertRetries; i++ {
		err := s.client.Watch(ctx, txf, rosterKey(), idxKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrInsertContention
}

func (s *Storage) GetRegistrantByEmail(ctx context.Context, email string) (*model.Registrant, error) {
	// Look up registrant ID from email index
	id, err := s.client.Get(ctx, emailIndexKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRegistrantNotFound
		}
		return nil, err
	}

	data, err := s.client.Get(ctx, registrantKey(model.RegistrantID(id))).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRegistrantNotFound
		}
		return nil, err
	}

	var rp model.Registrant
	if err := json.Unmarshal(data, &rp); err != nil {
		return nil, err
	}
	return &rp, nil
}

func (s *Storage) ListRegistrants(ctx context.Context) ([]model.Registrant, error) {
	ids, err := s.client.LRange(ctx, rosterKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, s.client, ids)
}

func (s *Storage) CountRegistrants(ctx context.Context) (int, error) {
	n, err := s.client.LLen(ctx, rosterKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// fetch loads registrants for ids, preserving order. IDs whose record is
// missing are skipped.
func (s *Storage) fetch(ctx context.Context, c redis.Cmdable, ids []string) ([]model.Registrant, error) {
	if len(ids) == 0 {
		return []model.Registrant{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = registrantKey(model.RegistrantID(id))
	}

	values, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	registrants := make([]model.Registrant, 0, len(values))
	for i, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var rp model.Registrant
		if err := json.Unmarshal([]byte(str), &rp); err != nil {
			return nil, fmt.Errorf("decode registrant %s: %w", ids[i], err)
		}
		registrants = append(registrants, rp)
	}
	return registrants, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(session.ID), data, s.cfg.SessionTTL).Err()
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}
