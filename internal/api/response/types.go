package response

import (
	"time"

	"github.com/mcoot/registrar/internal/model"
)

// Registrant represents a registrant in API responses
type Registrant struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	DateOfBirth string    `json:"date_of_birth"`
	Gender      string    `json:"gender"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	// Password is only present under insecure-plaintext storage
	Password string `json:"password,omitempty"`
}

// RegistrantFromModel converts a model.Registrant to a response Registrant
func RegistrantFromModel(r *model.Registrant) Registrant {
	resp := Registrant{
		ID:          string(r.ID),
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		DateOfBirth: r.DateOfBirth.Format(model.DateLayout),
		Gender:      string(r.Gender),
		Note:        r.Note,
		CreatedAt:   r.CreatedAt,
	}
	if plain, ok := r.PlaintextPassword(); ok {
		resp.Password = plain
	}
	return resp
}

// RegistrantList is the response for listing registrants
type RegistrantList struct {
	Registrants []Registrant `json:"registrants"`
	Count       int          `json:"count"`
}

// RegistrantListFromModel converts registrants, keeping their order
func RegistrantListFromModel(rs []model.Registrant) RegistrantList {
	list := RegistrantList{
		Registrants: make([]Registrant, len(rs)),
		Count:       len(rs),
	}
	for i := range rs {
		list.Registrants[i] = RegistrantFromModel(&rs[i])
	}
	return list
}

// Identity holds the first-step values kept on a session
type Identity struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Session represents a registration session in API responses
type Session struct {
	ID        string    `json:"id"`
	Step      string    `json:"step"`
	Identity  Identity  `json:"identity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionFromModel converts a model.Session
func SessionFromModel(s *model.Session) Session {
	return Session{
		ID:   string(s.ID),
		Step: s.Step.String(),
		Identity: Identity{
			FirstName: s.Identity.FirstName,
			LastName:  s.Identity.LastName,
			Email:     s.Identity.Email,
		},
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// Completed is the response for a finished registration session
type Completed struct {
	Registrant Registrant `json:"registrant"`
	Session    Session    `json:"session"`
}

// ValidationResult is the response for validating a single value
type ValidationResult struct {
	Kind    string `json:"kind"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Health is the response for the health check
type Health struct {
	Status      string `json:"status"`
	Registrants int    `json:"registrants"`
}
