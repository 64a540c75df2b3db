package storage

import (
	"context"

	"github.com/mcoot/registrar/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Registrant operations

	// InsertRegistrant adds rp in last-name order. It returns
	// model.ErrDuplicateEmail, without changing anything, when the backend
	// rejects duplicates and the email is already present.
	InsertRegistrant(ctx context.Context, rp *model.Registrant) error
	// GetRegistrantByEmail returns model.ErrRegistrantNotFound when absent
	GetRegistrantByEmail(ctx context.Context, email string) (*model.Registrant, error)
	// ListRegistrants returns a snapshot in registry order
	ListRegistrants(ctx context.Context) ([]model.Registrant, error)
	CountRegistrants(ctx context.Context) (int, error)

	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	DeleteSession(ctx context.Context, id model.SessionID) error
}
