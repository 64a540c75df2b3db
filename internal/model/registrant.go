package model

import (
	"strings"
	"time"
)

// RegistrantID uniquely identifies an accepted registrant
type RegistrantID string

// Gender is the explicit selection made on the credentials step
type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderUnspecified Gender = "unspecified"
)

// GenderPlaceholder is the unselected option of the gender dropdown
const GenderPlaceholder = "Please select"

// Genders lists the selectable values in display order
var Genders = []Gender{GenderMale, GenderFemale, GenderUnspecified}

// ParseGender returns the Gender for s (case-insensitive, trimmed).
// The placeholder and empty string are not genders.
func ParseGender(s string) (Gender, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, g := range Genders {
		if string(g) == v {
			return g, true
		}
	}
	return "", false
}

// DateLayout is the wire and form format for dates of birth
const DateLayout = "2006-01-02"

// PasswordStorage records how Registrant.Password was stored
type PasswordStorage string

const (
	// PasswordStorageBcrypt stores a bcrypt hash
	PasswordStorageBcrypt PasswordStorage = "bcrypt"
	// PasswordStorageInsecurePlaintext stores the raw password and shows it in listings.
	// Demo only.
	PasswordStorageInsecurePlaintext PasswordStorage = "insecure-plaintext"
)

// DuplicatePolicy controls whether the registry rejects a second registrant
// with an email that is already present
type DuplicatePolicy string

const (
	DuplicatePolicyReject DuplicatePolicy = "reject"
	DuplicatePolicyAllow  DuplicatePolicy = "allow"
)

// Registrant is one accepted, validated user record
type Registrant struct {
	ID              RegistrantID
	FirstName       string
	LastName        string
	Email           string
	Password        string // bcrypt hash, or the raw value under PasswordStorageInsecurePlaintext
	PasswordStorage PasswordStorage
	DateOfBirth     time.Time
	Gender          Gender
	Note            string
	CreatedAt       time.Time
}

// PlaintextPassword returns the stored password if it is kept in the clear
func (r *Registrant) PlaintextPassword() (string, bool) {
	if r.PasswordStorage != PasswordStorageInsecurePlaintext {
		return "", false
	}
	return r.Password, true
}

// IdentityInput holds the raw values collected on the first step
type IdentityInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// CredentialsInput holds the raw values collected on the second step
type CredentialsInput struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	DateOfBirth     string `json:"date_of_birth"`
	Gender          string `json:"gender"`
	Note            string `json:"note"`
}

// RegistrationInput is every raw value of a registration, as read from
// whichever input surface the caller has
type RegistrationInput struct {
	IdentityInput
	CredentialsInput
}

// NewRegistrationInput combines both steps
func NewRegistrationInput(identity IdentityInput, credentials CredentialsInput) RegistrationInput {
	return RegistrationInput{IdentityInput: identity, CredentialsInput: credentials}
}

// Trimmed returns a copy with surrounding whitespace removed from every field
func (in RegistrationInput) Trimmed() RegistrationInput {
	return RegistrationInput{
		IdentityInput: in.IdentityInput.Trimmed(),
		CredentialsInput: CredentialsInput{
			Password:        strings.TrimSpace(in.Password),
			ConfirmPassword: strings.TrimSpace(in.ConfirmPassword),
			DateOfBirth:     strings.TrimSpace(in.DateOfBirth),
			Gender:          strings.TrimSpace(in.Gender),
			Note:            strings.TrimSpace(in.Note),
		},
	}
}

// Trimmed returns a copy with surrounding whitespace removed
func (in IdentityInput) Trimmed() IdentityInput {
	return IdentityInput{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
	}
}
