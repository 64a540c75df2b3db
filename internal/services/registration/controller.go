package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/registrar/internal/dependencies/clock"
	"github.com/mcoot/registrar/internal/dependencies/random"
	"github.com/mcoot/registrar/internal/metrics"
	"github.com/mcoot/registrar/internal/model"
	"github.com/mcoot/registrar/internal/storage"
	"github.com/mcoot/registrar/internal/validation"
)

const (
	// SessionTokenLength is the number of random characters in a session ID
	SessionTokenLength = 20
	// SessionIDPrefix marks registration session IDs
	SessionIDPrefix = "s_"

	// MsgDuplicateEmail is shown on the email field when the address is taken
	MsgDuplicateEmail = "Email already exists. Please use a different email."
)

// Config holds registration behavior settings
type Config struct {
	PasswordStorage model.PasswordStorage
	DuplicatePolicy model.DuplicatePolicy
	// BcryptCost is used when PasswordStorage is bcrypt
	BcryptCost int
}

// DefaultConfig returns sensible defaults for registration
func DefaultConfig() Config {
	return Config{
		PasswordStorage: model.PasswordStorageBcrypt,
		DuplicatePolicy: model.DuplicatePolicyReject,
		BcryptCost:      bcrypt.DefaultCost,
	}
}

// Listener is told about every registrant added to the roster
type Listener interface {
	RegistrantAdded(ctx context.Context, registrant model.Registrant)
}

// Controller runs the two-step registration flow and the one-shot
// registration path, and owns the hand-off to storage
type Controller struct {
	storage   storage.Storage
	validator *validation.Validator
	clock     clock.Clock
	random    random.Random
	metrics   *metrics.Metrics
	logger    *slog.Logger
	cfg       Config
	listeners []Listener
}

// NewController creates a new registration Controller
func NewController(
	storage storage.Storage,
	validator *validation.Validator,
	clock clock.Clock,
	random random.Random,
	metrics *metrics.Metrics,
	logger *slog.Logger,
	cfg Config,
) *Controller {
	if cfg.PasswordStorage == "" {
		cfg.PasswordStorage = model.PasswordStorageBcrypt
	}
	if cfg.DuplicatePolicy == "" {
		cfg.DuplicatePolicy = model.DuplicatePolicyReject
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Controller{
		storage:   storage,
		validator: validator,
		clock:     clock,
		random:    random,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
	}
}

// AddListener registers l to be told about new registrants
func (c *Controller) AddListener(l Listener) {
	c.listeners = append(c.listeners, l)
}

// Validator returns the field validator used by the controller
func (c *Controller) Validator() *validation.Validator {
	return c.validator
}

// PasswordStorage reports how passwords are stored
func (c *Controller) PasswordStorage() model.PasswordStorage {
	return c.cfg.PasswordStorage
}

// StartSession creates a new session at the identity step
func (c *Controller) StartSession(ctx context.Context) (*model.Session, error) {
	now := c.clock.Now()
	session := &model.Session{
		ID:        model.SessionID(SessionIDPrefix + c.random.Token(SessionTokenLength)),
		Step:      model.StepIdentity,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	c.metrics.IncrementSessionsStarted()
	return session, nil
}

// GetSession retrieves a session by ID
func (c *Controller) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return c.storage.GetSession(ctx, id)
}

// SubmitIdentity validates the first-step fields. The submitted values are
// kept on the session either way so the form can be pre-filled. When they
// are all valid the session moves to the credentials step.
func (c *Controller) SubmitIdentity(ctx context.Context, id model.SessionID, in model.IdentityInput) (*model.Session, model.FieldErrors, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if session.Step != model.StepIdentity {
		return nil, nil, model.ErrWrongStep
	}

	in = in.Trimmed()
	session.Identity = in
	session.UpdatedAt = c.clock.Now()

	// A taken email is reported on its own, before any other field
	errs, err := c.checkDuplicate(ctx, in.Email)
	if err != nil {
		return nil, nil, err
	}
	if errs.Empty() {
		errs = c.validator.ValidateIdentity(in)
	}

	if errs.Empty() {
		session.Step = model.StepCredentials
	} else {
		c.recordFailures(errs)
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("save session: %w", err)
	}
	return session, errs, nil
}

// GoBack returns a credentials-step session to the identity step, keeping the
// identity values. It is a no-op at the identity step.
func (c *Controller) GoBack(ctx context.Context, id model.SessionID) (*model.Session, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Step == model.StepIdentity {
		return session, nil
	}

	session.Step = model.StepIdentity
	session.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// SubmitCredentials re-validates every field of the session's registration
// and, if all pass, stores the registrant and resets the session to an empty
// identity step.
func (c *Controller) SubmitCredentials(ctx context.Context, id model.SessionID, in model.CredentialsInput) (*model.Registrant, model.FieldErrors, error) {
	session, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if session.Step != model.StepCredentials {
		return nil, nil, model.ErrWrongStep
	}

	registrant, errs, err := c.register(ctx, model.NewRegistrationInput(session.Identity, in))
	if errors.Is(err, model.ErrDuplicateEmail) {
		// Lost a race with another session using the same email
		return nil, model.FieldErrors{string(model.FieldEmail): MsgDuplicateEmail}, nil
	}
	if err != nil || !errs.Empty() {
		return nil, errs, err
	}

	now := c.clock.Now()
	session.Step = model.StepIdentity
	session.Identity = model.IdentityInput{}
	session.UpdatedAt = now
	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("save session: %w", err)
	}

	return registrant, nil, nil
}

// Register validates and stores a complete registration in one call.
// A taken email (under the reject policy) is returned as model.ErrDuplicateEmail.
func (c *Controller) Register(ctx context.Context, in model.RegistrationInput) (*model.Registrant, model.FieldErrors, error) {
	return c.register(ctx, in)
}

// FindByEmail returns the registrant with exactly this email
func (c *Controller) FindByEmail(ctx context.Context, email string) (*model.Registrant, error) {
	return c.storage.GetRegistrantByEmail(ctx, email)
}

// List returns every registrant in last-name order
func (c *Controller) List(ctx context.Context) ([]model.Registrant, error) {
	return c.storage.ListRegistrants(ctx)
}

// VerifyPassword reports whether password matches the stored one
func (c *Controller) VerifyPassword(r *model.Registrant, password string) bool {
	if plain, ok := r.PlaintextPassword(); ok {
		return plain == password
	}
	return bcrypt.CompareHashAndPassword([]byte(r.Password), []byte(password)) == nil
}

func (c *Controller) register(ctx context.Context, in model.RegistrationInput) (*model.Registrant, model.FieldErrors, error) {
	in = in.Trimmed()

	errs := c.validator.ValidateRegistration(in)
	if !errs.Empty() {
		c.recordFailures(errs)
		return nil, errs, nil
	}

	registrant, err := c.newRegistrant(in)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	err = c.storage.InsertRegistrant(ctx, registrant)
	c.metrics.ObserveInsert(start)
	if err != nil {
		if errors.Is(err, model.ErrDuplicateEmail) {
			c.metrics.IncrementDuplicateEmails()
			return nil, nil, err
		}
		c.logger.Error("failed to insert registrant",
			slog.String("registrant_id", string(registrant.ID)),
			slog.String("error", err.Error()),
		)
		return nil, nil, fmt.Errorf("insert registrant: %w", err)
	}

	size, err := c.storage.CountRegistrants(ctx)
	if err != nil {
		c.logger.Warn("failed to count registrants", slog.String("error", err.Error()))
	}
	c.metrics.IncrementRegistrations(size)

	c.logger.Info("registrant added",
		slog.String("registrant_id", string(registrant.ID)),
		slog.String("last_name", registrant.LastName),
		slog.Int("roster_size", size),
	)

	for _, l := range c.listeners {
		l.RegistrantAdded(ctx, *registrant)
	}

	return registrant, nil, nil
}

// newRegistrant builds the stored record from validated input
func (c *Controller) newRegistrant(in model.RegistrationInput) (*model.Registrant, error) {
	dob, err := validation.ParseDate(in.DateOfBirth)
	if err != nil {
		return nil, err
	}
	gender, _ := model.ParseGender(in.Gender)

	password := in.Password
	if c.cfg.PasswordStorage == model.PasswordStorageBcrypt {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), c.cfg.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		password = string(hash)
	}

	return &model.Registrant{
		ID:              model.RegistrantID(c.random.UUID().String()),
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Email:           in.Email,
		Password:        password,
		PasswordStorage: c.cfg.PasswordStorage,
		DateOfBirth:     dob,
		Gender:          gender,
		Note:            in.Note,
		CreatedAt:       c.clock.Now(),
	}, nil
}

// checkDuplicate returns an email field error when the reject policy is in
// force and the address is already registered
func (c *Controller) checkDuplicate(ctx context.Context, email string) (model.FieldErrors, error) {
	errs := model.FieldErrors{}
	if c.cfg.DuplicatePolicy != model.DuplicatePolicyReject {
		return errs, nil
	}

	_, err := c.storage.GetRegistrantByEmail(ctx, email)
	switch {
	case err == nil:
		c.metrics.IncrementDuplicateEmails()
		errs.Add(string(model.FieldEmail), MsgDuplicateEmail)
	case !errors.Is(err, model.ErrRegistrantNotFound):
		return nil, fmt.Errorf("check email: %w", err)
	}
	return errs, nil
}

func (c *Controller) recordFailures(errs model.FieldErrors) {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	c.metrics.IncrementValidationFailures(fields)
}
