// Package validation decides whether raw field values are acceptable for a
// registration and explains rejections.
package validation

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mcoot/registrar/internal/dependencies/clock"
	"github.com/mcoot/registrar/internal/model"
)

const (
	// AcademicEmailSuffix restricts emails to Israeli academic domains
	AcademicEmailSuffix = ".ac.il"
	// GenericEmailSuffix accepts any alphabetic top-level domain
	GenericEmailSuffix = ""
)

// Rejection messages
const (
	MsgFirstName        = "First name is mandatory and must contain only alphabets."
	MsgLastName         = "Last name is mandatory and must contain only alphabets."
	MsgAcademicEmail    = "Email is mandatory and must be valid for an academic email from Israel (*.ac.il)."
	MsgGenericEmail     = "Email is mandatory and must be a valid email address (name@domain.tld)."
	MsgDateOfBirth      = "Date Of Birth is mandatory and user must be at least 18 years old."
	MsgGender           = "Please select a gender."
	MsgPasswordMismatch = "Passwords do not match"
)

// Config holds the configurable parts of the rules
type Config struct {
	// EmailSuffix is the required domain ending, e.g. ".ac.il".
	// Empty means any alphabetic TLD.
	EmailSuffix string
	// MinimumAge is the youngest accepted age in years
	MinimumAge int
	// StrictAge compares full dates instead of subtracting calendar years
	StrictAge bool
	// NoteMaxLength caps the free-text note, in characters
	NoteMaxLength int
	// PasswordMinLength is the shortest accepted password
	PasswordMinLength int
}

// DefaultConfig returns the rules of the academic registration form
func DefaultConfig() Config {
	return Config{
		EmailSuffix:       AcademicEmailSuffix,
		MinimumAge:        18,
		StrictAge:         false,
		NoteMaxLength:     100,
		PasswordMinLength: 8,
	}
}

var (
	namePattern  = regexp.MustCompile(`^[A-Za-z]+$`)
	upperPattern = regexp.MustCompile(`[A-Z]`)
	lowerPattern = regexp.MustCompile(`[a-z]`)
	digitPattern = regexp.MustCompile(`[0-9]`)
)

// Validator applies the field rules. It holds no mutable state and is safe
// for concurrent use.
type Validator struct {
	cfg          Config
	clock        clock.Clock
	emailPattern *regexp.Regexp
	emailMessage string
}

// New creates a Validator. Zero numeric fields in cfg fall back to the defaults.
func New(cfg Config, clock clock.Clock) *Validator {
	defaults := DefaultConfig()
	if cfg.MinimumAge == 0 {
		cfg.MinimumAge = defaults.MinimumAge
	}
	if cfg.NoteMaxLength == 0 {
		cfg.NoteMaxLength = defaults.NoteMaxLength
	}
	if cfg.PasswordMinLength == 0 {
		cfg.PasswordMinLength = defaults.PasswordMinLength
	}

	pattern, message := emailRule(cfg.EmailSuffix)
	return &Validator{
		cfg:          cfg,
		clock:        clock,
		emailPattern: pattern,
		emailMessage: message,
	}
}

// Config returns the effective configuration
func (v *Validator) Config() Config {
	return v.cfg
}

func emailRule(suffix string) (*regexp.Regexp, string) {
	const local = `^[A-Za-z0-9._-]+@([A-Za-z0-9-]+\.)+`

	domain := strings.TrimPrefix(strings.TrimSpace(suffix), ".")
	if domain == "" {
		return regexp.MustCompile(local + `[A-Za-z]{2,}$`), MsgGenericEmail
	}

	message := "Email is mandatory and must be a valid address ending in ." + domain + "."
	if "."+domain == AcademicEmailSuffix {
		message = MsgAcademicEmail
	}
	return regexp.MustCompile(local + regexp.QuoteMeta(domain) + `$`), message
}

// Validate checks a single raw value against the rule for kind.
// Surrounding whitespace is ignored. Unknown kinds are accepted.
func (v *Validator) Validate(raw string, kind model.FieldKind) model.ValidationResult {
	value := strings.TrimSpace(raw)

	switch kind {
	case model.FieldFirstName:
		return check(namePattern.MatchString(value), MsgFirstName)
	case model.FieldLastName:
		return check(namePattern.MatchString(value), MsgLastName)
	case model.FieldEmail:
		return check(v.emailPattern.MatchString(value), v.emailMessage)
	case model.FieldPassword:
		return v.validatePassword(value)
	case model.FieldDateOfBirth:
		return v.validateDateOfBirth(value)
	case model.FieldGender:
		_, ok := model.ParseGender(value)
		return check(ok, MsgGender)
	case model.FieldFreeTextNote:
		return check(utf8.RuneCountInString(value) <= v.cfg.NoteMaxLength, v.noteMessage())
	default:
		return model.Accept()
	}
}

func check(ok bool, message string) model.ValidationResult {
	if ok {
		return model.Accept()
	}
	return model.Reject(message)
}

func (v *Validator) validatePassword(value string) model.ValidationResult {
	var unmet []string
	if utf8.RuneCountInString(value) < v.cfg.PasswordMinLength {
		unmet = append(unmet, "be at least "+strconv.Itoa(v.cfg.PasswordMinLength)+" characters long")
	}
	if !upperPattern.MatchString(value) {
		unmet = append(unmet, "contain at least one uppercase letter")
	}
	if !lowerPattern.MatchString(value) {
		unmet = append(unmet, "contain at least one lowercase letter")
	}
	if !digitPattern.MatchString(value) {
		unmet = append(unmet, "contain at least one digit")
	}
	if len(unmet) == 0 {
		return model.Accept()
	}
	return model.Reject("Password must " + joinRules(unmet) + ".")
}

// joinRules renders ["a", "b", "c"] as "a, b and c"
func joinRules(rules []string) string {
	if len(rules) == 1 {
		return rules[0]
	}
	return strings.Join(rules[:len(rules)-1], ", ") + " and " + rules[len(rules)-1]
}

func (v *Validator) validateDateOfBirth(value string) model.ValidationResult {
	dob, err := ParseDate(value)
	if err != nil {
		return model.Reject(v.dobMessage())
	}
	return check(v.age(dob) >= v.cfg.MinimumAge, v.dobMessage())
}

// age is the calendar-year difference between now and dob. Someone born on
// 31 December counts a full year older from 1 January. StrictAge subtracts
// one when this year's birthday has not happened yet.
func (v *Validator) age(dob time.Time) int {
	now := clock.Today(v.clock)
	years := now.Year() - dob.Year()
	if v.cfg.StrictAge {
		if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
			years--
		}
	}
	return years
}

func (v *Validator) dobMessage() string {
	if v.cfg.MinimumAge == 18 {
		return MsgDateOfBirth
	}
	return "Date Of Birth is mandatory and user must be at least " + strconv.Itoa(v.cfg.MinimumAge) + " years old."
}

func (v *Validator) noteMessage() string {
	return "Note must be at most " + strconv.Itoa(v.cfg.NoteMaxLength) + " characters."
}

// ParseDate parses a YYYY-MM-DD date of birth
func ParseDate(value string) (time.Time, error) {
	return time.Parse(model.DateLayout, strings.TrimSpace(value))
}
