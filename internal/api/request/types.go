package request

import "github.com/mcoot/registrar/internal/model"

// ValidateRequest is the request body for validating a single value
type ValidateRequest struct {
	Value string `json:"value"`
	Kind  string `json:"kind"`
}

// IdentityRequest is the request body for the first registration step
type IdentityRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// ToInput converts the request to the service input
func (r IdentityRequest) ToInput() model.IdentityInput {
	return model.IdentityInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
	}
}

// CredentialsRequest is the request body for the second registration step
type CredentialsRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	DateOfBirth     string `json:"date_of_birth"`
	Gender          string `json:"gender"`
	Note            string `json:"note,omitempty"`
}

// ToInput converts the request to the service input
func (r CredentialsRequest) ToInput() model.CredentialsInput {
	return model.CredentialsInput{
		Password:        r.Password,
		ConfirmPassword: r.ConfirmPassword,
		DateOfBirth:     r.DateOfBirth,
		Gender:          r.Gender,
		Note:            r.Note,
	}
}

// RegisterRequest is the request body for registering in one call
type RegisterRequest struct {
	IdentityRequest
	CredentialsRequest
}

// ToInput converts the request to the service input
func (r RegisterRequest) ToInput() model.RegistrationInput {
	return model.NewRegistrationInput(r.IdentityRequest.ToInput(), r.CredentialsRequest.ToInput())
}
