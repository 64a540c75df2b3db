package memory

import (
	"context"
	"testing"
	"time"

	"github.com/mcoot/registrar/internal/model"
	"github.com/stretchr/testify/suite"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func newRegistrant(id, last, email string) *model.Registrant {
	return &model.Registrant{
		ID:        model.RegistrantID(id),
		FirstName: "Test",
		LastName:  last,
		Email:     email,
		CreatedAt: time.Now(),
	}
}

// Registrant tests

func (s *StorageSuite) TestInsertAndGetRegistrant() {
	err := s.storage.InsertRegistrant(s.ctx, newRegistrant("r-1", "Levi", "dana@huji.ac.il"))
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRegistrantByEmail(s.ctx, "dana@huji.ac.il")
	s.Require().NoError(err)
	s.Equal(model.RegistrantID("r-1"), retrieved.ID)
	s.Equal("Levi", retrieved.LastName)
}

func (s *StorageSuite) TestGetRegistrantNotFound() {
	_, err := s.storage.GetRegistrantByEmail(s.ctx, "nobody@huji.ac.il")
	s.ErrorIs(err, model.ErrRegistrantNotFound)
}

func (s *StorageSuite) TestListRegistrantsIsOrdered() {
	s.Require().NoError(s.storage.InsertRegistrant(s.ctx, newRegistrant("r-1", "Smith", "a@huji.ac.il")))
	s.Require().NoError(s.storage.InsertRegistrant(s.ctx, newRegistrant("r-2", "Adams", "b@huji.ac.il")))
	s.Require().NoError(s.storage.InsertRegistrant(s.ctx, newRegistrant("r-3", "Jones", "c@huji.ac.il")))

	list, err := s.storage.ListRegistrants(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("Adams", list[0].LastName)
	s.Equal("Jones", list[1].LastName)
	s.Equal("Smith", list[2].LastName)

	count, err := s.storage.CountRegistrants(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, count)
}

func (s *StorageSuite) TestInsertDuplicateEmail() {
	s.Require().NoError(s.storage.InsertRegistrant(s.ctx, newRegistrant("r-1", "Smith", "a@huji.ac.il")))

	err := s.storage.InsertRegistrant(s.ctx, newRegistrant("r-2", "Adams", "a@huji.ac.il"))
	s.ErrorIs(err, model.ErrDuplicateEmail)

	count, err := s.storage.CountRegistrants(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *StorageSuite) TestAllowPolicyStoresDuplicates() {
	st := NewWithPolicy(model.DuplicatePolicyAllow)
	s.Require().NoError(st.InsertRegistrant(s.ctx, newRegistrant("r-1", "Smith", "a@huji.ac.il")))
	err := st.InsertRegistrant(s.ctx, newRegistrant("r-2", "Adams", "a@huji.ac.il"))
	s.NoError(err)

	count, err := st.CountRegistrants(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}

// Session tests

func (s *StorageSuite) TestSaveAndGetSession() {
	session := &model.Session{
		ID:       "s-1",
		Step:     model.StepCredentials,
		Identity: model.IdentityInput{FirstName: "Dana"},
	}

	err := s.storage.SaveSession(s.ctx, session)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetSession(s.ctx, "s-1")
	s.Require().NoError(err)
	s.Equal(model.StepCredentials, retrieved.Step)
	s.Equal("Dana", retrieved.Identity.FirstName)
}

func (s *StorageSuite) TestSessionIsCopiedOnSave() {
	session := &model.Session{ID: "s-1", Step: model.StepIdentity}
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))

	session.Step = model.StepCredentials

	retrieved, err := s.storage.GetSession(s.ctx, "s-1")
	s.Require().NoError(err)
	s.Equal(model.StepIdentity, retrieved.Step)
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestDeleteSession() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, &model.Session{ID: "s-1"}))

	err := s.storage.DeleteSession(s.ctx, "s-1")
	s.Require().NoError(err)

	_, err = s.storage.GetSession(s.ctx, "s-1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}
