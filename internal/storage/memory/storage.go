package memory

import (
	"context"
	"sync"

	"github.com/mcoot/registrar/internal/model"
	"github.com/mcoot/registrar/internal/registry"
	"github.com/mcoot/registrar/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Registrants live in a registry.Registry; sessions in a map.
type Storage struct {
	registrants *registry.Registry

	mu       sync.RWMutex
	sessions map[model.SessionID]*model.Session
}

// New creates a new in-memory storage instance that rejects duplicate emails
func New() *Storage {
	return NewWithPolicy(model.DuplicatePolicyReject)
}

// NewWithPolicy creates an in-memory storage with the given duplicate policy
func NewWithPolicy(policy model.DuplicatePolicy) *Storage {
	return &Storage{
		registrants: registry.New(registry.WithDuplicatePolicy(policy)),
		sessions:    make(map[model.SessionID]*model.Session),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Registrant operations

func (s *Storage) InsertRegistrant(ctx context.Context, rp *model.Registrant) error {
	return s.registrants.Insert(*rp)
}

func (s *Storage) GetRegistrantByEmail(ctx context.Context, email string) (*model.Registrant, error) {
	rp, ok := s.registrants.FindByEmail(email)
	if !ok {
		return nil, model.ErrRegistrantNotFound
	}
	return &rp, nil
}

func (s *Storage) ListRegistrants(ctx context.Context) ([]model.Registrant, error) {
	return s.registrants.All(), nil
}

func (s *Storage) CountRegistrants(ctx context.Context) (int, error) {
	return s.registrants.Len(), nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *session
	s.sessions[session.ID] = &stored
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	out := *session
	return &out, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
