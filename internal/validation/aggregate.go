package validation

import (
	"strings"

	"github.com/mcoot/registrar/internal/model"
)

// ValidateIdentity checks the first-step fields
func (v *Validator) ValidateIdentity(in model.IdentityInput) model.FieldErrors {
	errs := model.FieldErrors{}
	errs.AddResult(model.FieldFirstName, v.Validate(in.FirstName, model.FieldFirstName))
	errs.AddResult(model.FieldLastName, v.Validate(in.LastName, model.FieldLastName))
	errs.AddResult(model.FieldEmail, v.Validate(in.Email, model.FieldEmail))
	return errs
}

// ValidateCredentials checks the second-step fields, including that the
// confirmation matches the password
func (v *Validator) ValidateCredentials(in model.CredentialsInput) model.FieldErrors {
	errs := model.FieldErrors{}
	errs.AddResult(model.FieldPassword, v.Validate(in.Password, model.FieldPassword))
	if strings.TrimSpace(in.Password) != strings.TrimSpace(in.ConfirmPassword) {
		errs.Add(model.FieldConfirmPassword, MsgPasswordMismatch)
	}
	errs.AddResult(model.FieldDateOfBirth, v.Validate(in.DateOfBirth, model.FieldDateOfBirth))
	errs.AddResult(model.FieldGender, v.Validate(in.Gender, model.FieldGender))
	errs.AddResult(model.FieldFreeTextNote, v.Validate(in.Note, model.FieldFreeTextNote))
	return errs
}

// ValidateRegistration checks every field of a complete registration
func (v *Validator) ValidateRegistration(in model.RegistrationInput) model.FieldErrors {
	errs := v.ValidateIdentity(in.IdentityInput)
	errs.Merge(v.ValidateCredentials(in.CredentialsInput))
	return errs
}
