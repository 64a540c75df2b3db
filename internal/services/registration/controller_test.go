package registration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/registrar/internal/dependencies/mocks"
	"github.com/mcoot/registrar/internal/metrics"
	"github.com/mcoot/registrar/internal/model"
	"github.com/mcoot/registrar/internal/storage/memory"
	regtestutil "github.com/mcoot/registrar/internal/testutil"
	"github.com/mcoot/registrar/internal/validation"
)

type recordingListener struct {
	added []model.Registrant
}

func (l *recordingListener) RegistrantAdded(_ context.Context, r model.Registrant) {
	l.added = append(l.added, r)
}

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	metrics    *metrics.Metrics
	listener   *recordingListener
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.metrics = metrics.NewNop()
	s.listener = &recordingListener{}
	s.controller = s.newController(DefaultConfig())
	s.ctx = context.Background()
}

func (s *ControllerSuite) newController(cfg Config) *Controller {
	cfg.BcryptCost = bcrypt.MinCost
	c := NewController(
		s.storage,
		validation.New(validation.DefaultConfig(), s.clock),
		s.clock,
		s.random,
		s.metrics,
		regtestutil.NopLogger(),
		cfg,
	)
	c.AddListener(s.listener)
	return c
}

func validIdentity() model.IdentityInput {
	return model.IdentityInput{FirstName: "Dana", LastName: "Levi", Email: "dana@huji.ac.il"}
}

func validCredentials() model.CredentialsInput {
	return model.CredentialsInput{
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
		DateOfBirth:     "2000-05-01",
		Gender:          "female",
		Note:            "hi",
	}
}

// startAtCredentials walks a new session through the identity step
func (s *ControllerSuite) startAtCredentials(identity model.IdentityInput) *model.Session {
	session, err := s.controller.StartSession(s.ctx)
	s.Require().NoError(err)
	session, errs, err := s.controller.SubmitIdentity(s.ctx, session.ID, identity)
	s.Require().NoError(err)
	s.Require().True(errs.Empty(), "unexpected errors: %v", errs)
	return session
}

// StartSession tests

func (s *ControllerSuite) TestStartSession() {
	s.random.QueueToken("abcdefghijklmnopqrst")

	session, err := s.controller.StartSession(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.SessionID("s_abcdefghijklmnopqrst"), session.ID)
	s.Equal(model.StepIdentity, session.Step)
	s.Equal(s.clock.Now(), session.CreatedAt)

	stored, err := s.controller.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session.ID, stored.ID)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.SessionsStarted))
}

func (s *ControllerSuite) TestGetSessionNotFound() {
	_, err := s.controller.GetSession(s.ctx, "s_missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// SubmitIdentity tests

func (s *ControllerSuite) TestSubmitIdentityAdvances() {
	session, err := s.controller.StartSession(s.ctx)
	s.Require().NoError(err)

	session, errs, err := s.controller.SubmitIdentity(s.ctx, session.ID, model.IdentityInput{
		FirstName: "  Dana ",
		LastName:  "Levi",
		Email:     " dana@huji.ac.il",
	})
	s.Require().NoError(err)
	s.True(errs.Empty())
	s.Equal(model.StepCredentials, session.Step)
	s.Equal("Dana", session.Identity.FirstName)
	s.Equal("dana@huji.ac.il", session.Identity.Email)
}

func (s *ControllerSuite) TestSubmitIdentityInvalidStays() {
	session, err := s.controller.StartSession(s.ctx)
	s.Require().NoError(err)

	session, errs, err := s.controller.SubmitIdentity(s.ctx, session.ID, model.IdentityInput{
		FirstName: "Dana1",
		LastName:  "",
		Email:     "dana@gmail.com",
	})
	s.Require().NoError(err)
	s.Equal(model.StepIdentity, session.Step)
	s.Equal(validation.MsgFirstName, errs.Get(string(model.FieldFirstName)))
	s.Equal(validation.MsgLastName, errs.Get(string(model.FieldLastName)))
	s.Equal(validation.MsgAcademicEmail, errs.Get(string(model.FieldEmail)))

	// Values kept for pre-fill
	stored, err := s.controller.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal("Dana1", stored.Identity.FirstName)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ValidationFailures.WithLabelValues("firstName")))
}

func (s *ControllerSuite) TestSubmitIdentityDuplicateReportedAlone() {
	_, _, err := s.controller.Register(s.ctx, model.NewRegistrationInput(validIdentity(), validCredentials()))
	s.Require().NoError(err)

	session, err := s.controller.StartSession(s.ctx)
	s.Require().NoError(err)

	// First name is also invalid, but only the duplicate is reported
	session, errs, err := s.controller.SubmitIdentity(s.ctx, session.ID, model.IdentityInput{
		FirstName: "123",
		LastName:  "Cohen",
		Email:     "dana@huji.ac.il",
	})
	s.Require().NoError(err)
	s.Equal(model.StepIdentity, session.Step)
	s.Len(errs, 1)
	s.Equal(MsgDuplicateEmail, errs.Get(string(model.FieldEmail)))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.DuplicateEmails))
}

func (s *ControllerSuite) TestSubmitIdentityDuplicateAllowed() {
	s.storage = memory.NewWithPolicy(model.DuplicatePolicyAllow)
	s.controller = s.newController(Config{DuplicatePolicy: model.DuplicatePolicyAllow})

	_, _, err := s.controller.Register(s.ctx, model.NewRegistrationInput(validIdentity(), validCredentials()))
	s.Require().NoError(err)

	session := s.startAtCredentials(validIdentity())
	s.Equal(model.StepCredentials, session.Step)
}

func (s *ControllerSuite) TestSubmitIdentityWrongStep() {
	session := s.startAtCredentials(validIdentity())

	_, _, err := s.controller.SubmitIdentity(s.ctx, session.ID, validIdentity())
	s.ErrorIs(err, model.ErrWrongStep)
}

func (s *ControllerSuite) TestSubmitIdentityUnknownSession() {
	_, _, err := s.controller.SubmitIdentity(s.ctx, "s_missing", validIdentity())
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// GoBack tests

func (s *ControllerSuite) TestGoBackKeepsIdentity() {
	session := s.startAtCredentials(validIdentity())

	session, err := s.controller.GoBack(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(model.StepIdentity, session.Step)
	s.Equal(validIdentity(), session.Identity)
}

func (s *ControllerSuite) TestGoBackAtIdentityIsNoop() {
	session, err := s.controller.StartSession(s.ctx)
	s.Require().NoError(err)

	session, err = s.controller.GoBack(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(model.StepIdentity, session.Step)
}

func (s *ControllerSuite) TestGoBackThenResubmit() {
	session := s.startAtCredentials(validIdentity())
	_, err := s.controller.GoBack(s.ctx, session.ID)
	s.Require().NoError(err)

	changed := validIdentity()
	changed.LastName = "Cohen"
	session, errs, err := s.controller.SubmitIdentity(s.ctx, session.ID, changed)
	s.Require().NoError(err)
	s.True(errs.Empty())
	s.Equal("Cohen", session.Identity.LastName)
}

// SubmitCredentials tests

func (s *ControllerSuite) TestSubmitCredentialsStoresAndResets() {
	id := uuid.MustParse("6f1c1c1e-8a7b-4c2d-9e0f-112233445566")
	s.random.QueueUUID(id)
	session := s.startAtCredentials(validIdentity())

	registrant, errs, err := s.controller.SubmitCredentials(s.ctx, session.ID, validCredentials())
	s.Require().NoError(err)
	s.True(errs.Empty())
	s.Equal(model.RegistrantID(id.String()), registrant.ID)
	s.Equal("Levi", registrant.LastName)
	s.Equal(model.GenderFemale, registrant.Gender)
	s.Equal(time.Date(2000, 5, 1, 0, 0, 0, 0, time.UTC), registrant.DateOfBirth)
	s.Equal(s.clock.Now(), registrant.CreatedAt)

	stored, err := s.controller.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(model.StepIdentity, stored.Step)
	s.Equal(model.IdentityInput{}, stored.Identity)

	list, err := s.controller.List(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 1)
	s.Len(s.listener.added, 1)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.RegistrationsCompleted))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.RosterSize))
}

func (s *ControllerSuite) TestSubmitCredentialsInvalid() {
	session := s.startAtCredentials(validIdentity())

	creds := validCredentials()
	creds.ConfirmPassword = "Other123"
	creds.Gender = model.GenderPlaceholder
	creds.DateOfBirth = "2010-01-01"

	registrant, errs, err := s.controller.SubmitCredentials(s.ctx, session.ID, creds)
	s.Require().NoError(err)
	s.Nil(registrant)
	s.Equal(validation.MsgPasswordMismatch, errs.Get(model.FieldConfirmPassword))
	s.Equal(validation.MsgGender, errs.Get(string(model.FieldGender)))
	s.Equal(validation.MsgDateOfBirth, errs.Get(string(model.FieldDateOfBirth)))

	// Still at credentials, nothing stored
	stored, err := s.controller.GetSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(model.StepCredentials, stored.Step)
	list, err := s.controller.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(list)
	s.Empty(s.listener.added)
}

func (s *ControllerSuite) TestSubmitCredentialsWrongStep() {
	session, err := s.controller.StartSession(s.ctx)
	s.Require().NoError(err)

	_, _, err = s.controller.SubmitCredentials(s.ctx, session.ID, validCredentials())
	s.ErrorIs(err, model.ErrWrongStep)
}

func (s *ControllerSuite) TestSubmitCredentialsLostRace() {
	session := s.startAtCredentials(validIdentity())

	// Another path registers the same email meanwhile
	_, _, err := s.controller.Register(s.ctx, model.NewRegistrationInput(validIdentity(), validCredentials()))
	s.Require().NoError(err)

	registrant, errs, err := s.controller.SubmitCredentials(s.ctx, session.ID, validCredentials())
	s.Require().NoError(err)
	s.Nil(registrant)
	s.Equal(MsgDuplicateEmail, errs.Get(string(model.FieldEmail)))
}

// Register tests

func (s *ControllerSuite) TestRegisterHashesPassword() {
	registrant, errs, err := s.controller.Register(s.ctx, model.NewRegistrationInput(validIdentity(), validCredentials()))
	s.Require().NoError(err)
	s.True(errs.Empty())

	s.Equal(model.PasswordStorageBcrypt, registrant.PasswordStorage)
	s.NotEqual("Secret123", registrant.Password)
	s.True(s.controller.VerifyPassword(registrant, "Secret123"))
	s.False(s.controller.VerifyPassword(registrant, "Wrong1234"))

	_, ok := registrant.PlaintextPassword()
	s.False(ok)
}

func (s *ControllerSuite) TestRegisterInsecurePlaintext() {
	s.controller = s.newController(Config{PasswordStorage: model.PasswordStorageInsecurePlaintext})

	registrant, _, err := s.controller.Register(s.ctx, model.NewRegistrationInput(validIdentity(), validCredentials()))
	s.Require().NoError(err)

	plain, ok := registrant.PlaintextPassword()
	s.True(ok)
	s.Equal("Secret123", plain)
	s.True(s.controller.VerifyPassword(registrant, "Secret123"))
}

func (s *ControllerSuite) TestRegisterDuplicate() {
	_, _, err := s.controller.Register(s.ctx, model.NewRegistrationInput(validIdentity(), validCredentials()))
	s.Require().NoError(err)

	again := validIdentity()
	again.LastName = "Adams"
	_, _, err = s.controller.Register(s.ctx, model.NewRegistrationInput(again, validCredentials()))
	s.ErrorIs(err, model.ErrDuplicateEmail)

	list, err := s.controller.List(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *ControllerSuite) TestRegisterOrdersByLastName() {
	for i, last := range []string{"Smith", "Adams", "Jones"} {
		identity := model.IdentityInput{
			FirstName: "Test",
			LastName:  last,
			Email:     string(rune('a'+i)) + "@tau.ac.il",
		}
		_, errs, err := s.controller.Register(s.ctx, model.NewRegistrationInput(identity, validCredentials()))
		s.Require().NoError(err)
		s.Require().True(errs.Empty())
	}

	list, err := s.controller.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("Adams", list[0].LastName)
	s.Equal("Jones", list[1].LastName)
	s.Equal("Smith", list[2].LastName)
}

func (s *ControllerSuite) TestRegisterTrimsValues() {
	in := model.NewRegistrationInput(
		model.IdentityInput{FirstName: " Dana ", LastName: " Levi ", Email: " dana@huji.ac.il "},
		validCredentials(),
	)
	in.Note = "  padded  "

	registrant, _, err := s.controller.Register(s.ctx, in)
	s.Require().NoError(err)
	s.Equal("Dana", registrant.FirstName)
	s.Equal("dana@huji.ac.il", registrant.Email)
	s.Equal("padded", registrant.Note)

	found, err := s.controller.FindByEmail(s.ctx, "dana@huji.ac.il")
	s.Require().NoError(err)
	s.Equal(registrant.ID, found.ID)
}

func (s *ControllerSuite) TestFindByEmailNotFound() {
	_, err := s.controller.FindByEmail(s.ctx, "nobody@huji.ac.il")
	s.ErrorIs(err, model.ErrRegistrantNotFound)
}
