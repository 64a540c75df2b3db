package model

import "fmt"

// FieldKind selects which validation rule applies to a raw value
type FieldKind string

const (
	FieldFirstName    FieldKind = "firstName"
	FieldLastName     FieldKind = "lastName"
	FieldEmail        FieldKind = "email"
	FieldPassword     FieldKind = "password"
	FieldDateOfBirth  FieldKind = "dateOfBirth"
	FieldGender       FieldKind = "gender"
	FieldFreeTextNote FieldKind = "freeTextNote"
)

// FieldConfirmPassword keys the confirm-password mismatch in FieldErrors.
// It is not a FieldKind: the rule compares two values.
const FieldConfirmPassword = "confirmPassword"

// FieldKinds lists every kind in form order
var FieldKinds = []FieldKind{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPassword,
	FieldDateOfBirth,
	FieldGender,
	FieldFreeTextNote,
}

// ParseFieldKind converts a string to a FieldKind.
// "dob" and "note" are accepted as the short names used by the form.
func ParseFieldKind(s string) (FieldKind, error) {
	switch s {
	case "dob":
		return FieldDateOfBirth, nil
	case "note", "comments":
		return FieldFreeTextNote, nil
	}
	for _, k := range FieldKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown field kind %q", s)
}

// ValidationResult is the verdict for a single field value.
// Message is empty when Valid is true.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// Accept returns a passing result
func Accept() ValidationResult {
	return ValidationResult{Valid: true}
}

// Reject returns a failing result with the given message
func Reject(message string) ValidationResult {
	return ValidationResult{Valid: false, Message: message}
}

// FieldErrors maps a field name to its rejection message
type FieldErrors map[string]string

// Add records msg for field unless msg is empty
func (fe FieldErrors) Add(field string, msg string) {
	if msg == "" {
		return
	}
	fe[field] = msg
}

// AddResult records a failing result under the kind's name
func (fe FieldErrors) AddResult(kind FieldKind, res ValidationResult) {
	if !res.Valid {
		fe.Add(string(kind), res.Message)
	}
}

// Merge copies all entries of other into fe
func (fe FieldErrors) Merge(other FieldErrors) {
	for k, v := range other {
		fe[k] = v
	}
}

// Empty reports whether no field failed
func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// Get returns the message for field, or "" if it passed
func (fe FieldErrors) Get(field string) string {
	return fe[field]
}
