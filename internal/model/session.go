package model

import "time"

// SessionID identifies a registration session
type SessionID string

// Step is the position of a session in the two-step flow
type Step int

const (
	// StepIdentity collects first name, last name and email
	StepIdentity Step = 1
	// StepCredentials collects password, date of birth, gender and note
	StepCredentials Step = 2
)

// String returns the step name used in API responses
func (s Step) String() string {
	switch s {
	case StepIdentity:
		return "identity"
	case StepCredentials:
		return "credentials"
	default:
		return "unknown"
	}
}

// Session tracks one user's progress through the registration flow.
// Identity holds the accepted first-step values while in StepCredentials,
// and the last submitted values after going back.
type Session struct {
	ID        SessionID
	Step      Step
	Identity  IdentityInput
	CreatedAt time.Time
	UpdatedAt time.Time
}
