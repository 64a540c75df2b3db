package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/registrar/internal/dependencies/mocks"
	"github.com/mcoot/registrar/internal/model"
)

type ValidatorSuite struct {
	suite.Suite
	clock     *mocks.MockClock
	validator *Validator
}

func TestValidatorSuite(t *testing.T) {
	suite.Run(t, new(ValidatorSuite))
}

func (s *ValidatorSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	s.validator = New(DefaultConfig(), s.clock)
}

// Names

func (s *ValidatorSuite) TestNamesAcceptLettersOnly() {
	for _, name := range []string{"A", "john", "McDonald", "ABCxyz"} {
		s.True(s.validator.Validate(name, model.FieldFirstName).Valid, name)
		s.True(s.validator.Validate(name, model.FieldLastName).Valid, name)
	}
}

func (s *ValidatorSuite) TestNamesRejectDigitsSpacesAndPunctuation() {
	for _, name := range []string{"", "John2", "Mary Ann", "O'Brien", "Jean-Luc", "Zoë", "   "} {
		res := s.validator.Validate(name, model.FieldFirstName)
		s.False(res.Valid, name)
		s.Equal(MsgFirstName, res.Message)
	}
	s.Equal(MsgLastName, s.validator.Validate("Sm1th", model.FieldLastName).Message)
}

func (s *ValidatorSuite) TestValidateTrimsInput() {
	s.True(s.validator.Validate("  John \t", model.FieldFirstName).Valid)
	s.True(s.validator.Validate(" dana@cs.huji.ac.il ", model.FieldEmail).Valid)
}

func (s *ValidatorSuite) TestValidResultHasEmptyMessage() {
	res := s.validator.Validate("John", model.FieldFirstName)
	s.True(res.Valid)
	s.Empty(res.Message)
}

// Email

func (s *ValidatorSuite) TestAcademicEmail() {
	valid := []string{"dana@cs.huji.ac.il", "a.b_c-d@technion.ac.il", "x@post.bgu.ac.il"}
	for _, email := range valid {
		s.True(s.validator.Validate(email, model.FieldEmail).Valid, email)
	}

	invalid := []string{"", "dana@gmail.com", "dana@ac.il", "dana+tag@huji.ac.il", "@huji.ac.il", "dana@huji.ac.il.com"}
	for _, email := range invalid {
		res := s.validator.Validate(email, model.FieldEmail)
		s.False(res.Valid, email)
		s.Equal(MsgAcademicEmail, res.Message)
	}
}

func (s *ValidatorSuite) TestGenericEmail() {
	cfg := DefaultConfig()
	cfg.EmailSuffix = GenericEmailSuffix
	v := New(cfg, s.clock)

	s.True(v.Validate("dana@gmail.com", model.FieldEmail).Valid)
	s.True(v.Validate("dana@cs.huji.ac.il", model.FieldEmail).Valid)

	res := v.Validate("dana@localhost", model.FieldEmail)
	s.False(res.Valid)
	s.Equal(MsgGenericEmail, res.Message)
}

func (s *ValidatorSuite) TestCustomEmailSuffix() {
	cfg := DefaultConfig()
	cfg.EmailSuffix = "example.edu"
	v := New(cfg, s.clock)

	s.True(v.Validate("dana@cs.example.edu", model.FieldEmail).Valid)
	res := v.Validate("dana@example.com", model.FieldEmail)
	s.False(res.Valid)
	s.Contains(res.Message, ".example.edu")
}

// Password

func (s *ValidatorSuite) TestPasswordRules() {
	s.True(s.validator.Validate("Password1", model.FieldPassword).Valid)
	s.True(s.validator.Validate("aB3aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", model.FieldPassword).Valid)

	s.False(s.validator.Validate("password1", model.FieldPassword).Valid)
	s.False(s.validator.Validate("PASSWORD1", model.FieldPassword).Valid)
	s.False(s.validator.Validate("Passwrd", model.FieldPassword).Valid)
	s.False(s.validator.Validate("Pass1", model.FieldPassword).Valid)
}

func (s *ValidatorSuite) TestPasswordMessageListsUnmetRules() {
	res := s.validator.Validate("password1", model.FieldPassword)
	s.Equal("Password must contain at least one uppercase letter.", res.Message)

	res = s.validator.Validate("Passwrd", model.FieldPassword)
	s.Equal("Password must be at least 8 characters long and contain at least one digit.", res.Message)

	res = s.validator.Validate("", model.FieldPassword)
	s.Equal("Password must be at least 8 characters long, contain at least one uppercase letter, "+
		"contain at least one lowercase letter and contain at least one digit.", res.Message)
}

func (s *ValidatorSuite) TestPasswordAllowsSpecialCharacters() {
	s.True(s.validator.Validate("P@ssw0rd!", model.FieldPassword).Valid)
}

// Date of birth

func (s *ValidatorSuite) TestDateOfBirthUsesCalendarYears() {
	for year := 2000; year <= 2030; year++ {
		s.clock.Set(time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC))
		res := s.validator.Validate("2000-01-01", model.FieldDateOfBirth)
		s.Equal(year-2000 >= 18, res.Valid, "year %d", year)
	}
}

func (s *ValidatorSuite) TestDateOfBirthCountsYearBeforeBirthday() {
	// Born 31 December 2006, checked 1 January 2024: 17 by full date, 18 by year
	s.clock.Set(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	s.True(s.validator.Validate("2006-12-31", model.FieldDateOfBirth).Valid)
	s.False(s.validator.Validate("2007-01-01", model.FieldDateOfBirth).Valid)
}

func (s *ValidatorSuite) TestStrictAgeComparesFullDates() {
	cfg := DefaultConfig()
	cfg.StrictAge = true
	s.clock.Set(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	v := New(cfg, s.clock)

	s.False(v.Validate("2006-12-31", model.FieldDateOfBirth).Valid)
	s.True(v.Validate("2006-01-01", model.FieldDateOfBirth).Valid)
}

func (s *ValidatorSuite) TestDateOfBirthRejectsMissingOrMalformed() {
	for _, dob := range []string{"", "not-a-date", "01/01/2000", "2000-13-01"} {
		res := s.validator.Validate(dob, model.FieldDateOfBirth)
		s.False(res.Valid, dob)
		s.Equal(MsgDateOfBirth, res.Message)
	}
}

func (s *ValidatorSuite) TestMinimumAgeIsConfigurable() {
	cfg := DefaultConfig()
	cfg.MinimumAge = 21
	v := New(cfg, s.clock)

	res := v.Validate("2004-01-01", model.FieldDateOfBirth)
	s.False(res.Valid)
	s.Contains(res.Message, "21 years old")
}

// Gender

func (s *ValidatorSuite) TestGender() {
	for _, g := range []string{"male", "Female", "UNSPECIFIED", " male "} {
		s.True(s.validator.Validate(g, model.FieldGender).Valid, g)
	}
	for _, g := range []string{"", model.GenderPlaceholder, "other"} {
		res := s.validator.Validate(g, model.FieldGender)
		s.False(res.Valid, g)
		s.Equal(MsgGender, res.Message)
	}
}

// Note

func (s *ValidatorSuite) TestNoteLength() {
	s.True(s.validator.Validate("", model.FieldFreeTextNote).Valid)
	s.True(s.validator.Validate(strings.Repeat("a", 100), model.FieldFreeTextNote).Valid)
	s.True(s.validator.Validate(strings.Repeat("é", 100), model.FieldFreeTextNote).Valid)

	res := s.validator.Validate(strings.Repeat("a", 101), model.FieldFreeTextNote)
	s.False(res.Valid)
	s.Equal("Note must be at most 100 characters.", res.Message)
}

// Aggregates

func validInput() model.RegistrationInput {
	return model.RegistrationInput{
		IdentityInput: model.IdentityInput{
			FirstName: "Dana",
			LastName:  "Levi",
			Email:     "dana@cs.huji.ac.il",
		},
		CredentialsInput: model.CredentialsInput{
			Password:        "Password1",
			ConfirmPassword: "Password1",
			DateOfBirth:     "1990-05-04",
			Gender:          "female",
			Note:            "hello",
		},
	}
}

func (s *ValidatorSuite) TestValidateRegistrationAcceptsValidInput() {
	s.True(s.validator.ValidateRegistration(validInput()).Empty())
}

func (s *ValidatorSuite) TestValidateRegistrationCollectsEveryFailure() {
	in := validInput()
	in.FirstName = "D4na"
	in.Email = "dana@gmail.com"
	in.ConfirmPassword = "Password2"
	in.Gender = model.GenderPlaceholder

	errs := s.validator.ValidateRegistration(in)
	s.Len(errs, 4)
	s.Equal(MsgFirstName, errs.Get(string(model.FieldFirstName)))
	s.Equal(MsgAcademicEmail, errs.Get(string(model.FieldEmail)))
	s.Equal(MsgPasswordMismatch, errs.Get(model.FieldConfirmPassword))
	s.Equal(MsgGender, errs.Get(string(model.FieldGender)))
}

func (s *ValidatorSuite) TestValidateIdentityIgnoresCredentials() {
	in := validInput()
	in.Password = ""
	s.True(s.validator.ValidateIdentity(in.IdentityInput).Empty())
}

func TestFirstNameProperty(t *testing.T) {
	v := New(DefaultConfig(), mocks.NewMockClock(time.Now()))
	letters := "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	for n := 1; n <= len(letters); n++ {
		assert.True(t, v.Validate(letters[:n], model.FieldFirstName).Valid)
		assert.False(t, v.Validate(letters[:n]+"1", model.FieldFirstName).Valid)
		assert.False(t, v.Validate(letters[:n]+" x", model.FieldFirstName).Valid)
	}
}
