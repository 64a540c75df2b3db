// Package registry holds accepted registrants in last-name order.
package registry

import (
	"sync"

	"github.com/mcoot/registrar/internal/model"
)

// Registry is an in-memory sequence of registrants ordered by LastName
// ascending. Equal last names keep arrival order.
type Registry struct {
	mu     sync.Mutex
	items  []model.Registrant
	policy model.DuplicatePolicy
}

// Option configures a Registry
type Option func(*Registry)

// WithDuplicatePolicy sets how Insert treats an email that is already present
func WithDuplicatePolicy(p model.DuplicatePolicy) Option {
	return func(r *Registry) {
		r.policy = p
	}
}

// New creates an empty Registry that rejects duplicate emails unless
// configured otherwise
func New(opts ...Option) *Registry {
	r := &Registry{policy: model.DuplicatePolicyReject}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the duplicate policy in effect
func (r *Registry) Policy() model.DuplicatePolicy {
	return r.policy
}

// FindByEmail returns the first registrant whose email matches exactly
func (r *Registry) FindByEmail(email string) (model.Registrant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findLocked(email)
}

func (r *Registry) findLocked(email string) (model.Registrant, bool) {
	for _, item := range r.items {
		if item.Email == email {
			return item, true
		}
	}
	return model.Registrant{}, false
}

// Insert places candidate before the first registrant with a strictly greater
// last name, or at the end. Under DuplicatePolicyReject an email that is
// already present returns model.ErrDuplicateEmail and nothing changes.
func (r *Registry) Insert(candidate model.Registrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.policy != model.DuplicatePolicyAllow {
		if _, ok := r.findLocked(candidate.Email); ok {
			return model.ErrDuplicateEmail
		}
	}

	idx := len(r.items)
	for i, item := range r.items {
		if item.LastName > candidate.LastName {
			idx = i
			break
		}
	}

	r.items = append(r.items, model.Registrant{})
	copy(r.items[idx+1:], r.items[idx:])
	r.items[idx] = candidate
	return nil
}

// All returns a snapshot of the registrants in order
func (r *Registry) All() []model.Registrant {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Registrant, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the number of registrants
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// InsertIndex returns the position at which a registrant with lastName goes
// in a sequence whose last names are lastNames: the index of the first
// strictly greater name, or len(lastNames).
func InsertIndex(lastNames []string, lastName string) int {
	for i, name := range lastNames {
		if name > lastName {
			return i
		}
	}
	return len(lastNames)
}
