package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter writing to stdout and stderr
func NewOutput(format string) *Output {
	return NewOutputTo(format, os.Stdout, os.Stderr)
}

// NewOutputTo creates an Output writing to the given streams
func NewOutputTo(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{"error": map[string]string{"message": err.Error()}}
		if apiErr, ok := err.(*APIError); ok {
			errData = map[string]any{"error": apiErr}
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errW, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errW, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Registrant:
		o.printRegistrant(v)
	case RegistrantList:
		o.printRegistrantList(v)
	case Session:
		o.printSession(v)
	case Completed:
		o.printCompleted(v)
	case ValidationResult:
		o.printValidationResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Registrant response type (matches API)
type Registrant struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	DateOfBirth string    `json:"date_of_birth"`
	Gender      string    `json:"gender"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Password    string    `json:"password,omitempty"`
}

// RegistrantList response type
type RegistrantList struct {
	Registrants []Registrant `json:"registrants"`
	Count       int          `json:"count"`
}

// IdentityFields is the first step of a registration
type IdentityFields struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// CredentialsFields is the second step of a registration
type CredentialsFields struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	DateOfBirth     string `json:"date_of_birth"`
	Gender          string `json:"gender"`
	Note            string `json:"note,omitempty"`
}

// RegistrationFields is a one-shot registration request
type RegistrationFields struct {
	IdentityFields
	CredentialsFields
}

// Session response type
type Session struct {
	ID        string         `json:"id"`
	Step      string         `json:"step"`
	Identity  IdentityFields `json:"identity"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Completed is returned when the second step stores a registrant
type Completed struct {
	Registrant Registrant `json:"registrant"`
	Session    Session    `json:"session"`
}

// ValidationResult response type
type ValidationResult struct {
	Kind    string `json:"kind"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// HealthResult response type
type HealthResult struct {
	Status      string `json:"status"`
	Registrants int    `json:"registrants"`
}

func (o *Output) printRegistrant(r Registrant) {
	_, _ = fmt.Fprintf(o.w, "Registrant: %s %s <%s>\n", r.FirstName, r.LastName, r.Email)
	_, _ = fmt.Fprintf(o.w, "ID: %s\n", r.ID)
	_, _ = fmt.Fprintf(o.w, "Date of Birth: %s\n", r.DateOfBirth)
	_, _ = fmt.Fprintf(o.w, "Gender: %s\n", r.Gender)
	if r.Note != "" {
		_, _ = fmt.Fprintf(o.w, "Comments: %s\n", r.Note)
	}
	if r.Password != "" {
		_, _ = fmt.Fprintf(o.w, "Password: %s\n", r.Password)
	}
}

func (o *Output) printRegistrantList(l RegistrantList) {
	if l.Count == 0 {
		_, _ = fmt.Fprintln(o.w, "No users registered yet.")
		return
	}

	showPasswords := false
	for _, r := range l.Registrants {
		if r.Password != "" {
			showPasswords = true
			break
		}
	}

	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	header := []string{"FIRST NAME", "LAST NAME", "EMAIL", "DATE OF BIRTH"}
	if showPasswords {
		header = append(header, "PASSWORD")
	}
	header = append(header, "GENDER", "COMMENTS")
	_, _ = fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, r := range l.Registrants {
		row := []string{r.FirstName, r.LastName, r.Email, r.DateOfBirth}
		if showPasswords {
			row = append(row, r.Password)
		}
		row = append(row, r.Gender, r.Note)
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(o.w, "%d registered\n", l.Count)
}

func (o *Output) printSession(s Session) {
	_, _ = fmt.Fprintf(o.w, "Session: %s\n", s.ID)
	_, _ = fmt.Fprintf(o.w, "Step: %s\n", s.Step)
	if s.Identity != (IdentityFields{}) {
		_, _ = fmt.Fprintf(o.w, "Identity: %s %s <%s>\n", s.Identity.FirstName, s.Identity.LastName, s.Identity.Email)
	}
}

func (o *Output) printCompleted(c Completed) {
	_, _ = fmt.Fprintln(o.w, "Registration saved")
	o.printRegistrant(c.Registrant)
}

func (o *Output) printValidationResult(v ValidationResult) {
	if v.Valid {
		_, _ = fmt.Fprintf(o.w, "%s: valid\n", v.Kind)
		return
	}
	_, _ = fmt.Fprintf(o.w, "%s: invalid\n  %s\n", v.Kind, v.Message)
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	_, _ = fmt.Fprintf(o.w, "Registrants: %d\n", h.Registrants)
}
