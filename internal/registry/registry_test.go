package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/registrar/internal/model"
)

type RegistrySuite struct {
	suite.Suite
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.registry = New()
}

func registrant(first, last, email string) model.Registrant {
	return model.Registrant{
		ID:        model.RegistrantID("r-" + email),
		FirstName: first,
		LastName:  last,
		Email:     email,
	}
}

func lastNames(rs []model.Registrant) []string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.LastName
	}
	return names
}

func firstNames(rs []model.Registrant) []string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.FirstName
	}
	return names
}

func (s *RegistrySuite) TestNewRegistryIsEmpty() {
	s.Equal(0, s.registry.Len())
	s.Empty(s.registry.All())
	s.Equal(model.DuplicatePolicyReject, s.registry.Policy())
}

func (s *RegistrySuite) TestInsertOrdersByLastName() {
	s.Require().NoError(s.registry.Insert(registrant("John", "Smith", "john@uni.ac.il")))
	s.Require().NoError(s.registry.Insert(registrant("Ann", "Adams", "ann@uni.ac.il")))
	s.Require().NoError(s.registry.Insert(registrant("Bob", "Jones", "bob@uni.ac.il")))

	s.Equal([]string{"Adams", "Jones", "Smith"}, lastNames(s.registry.All()))
}

func (s *RegistrySuite) TestInsertKeepsArrivalOrderForEqualLastNames() {
	s.Require().NoError(s.registry.Insert(registrant("First", "Cohen", "a@uni.ac.il")))
	s.Require().NoError(s.registry.Insert(registrant("Second", "Cohen", "b@uni.ac.il")))
	s.Require().NoError(s.registry.Insert(registrant("Early", "Abel", "c@uni.ac.il")))
	s.Require().NoError(s.registry.Insert(registrant("Third", "Cohen", "d@uni.ac.il")))

	s.Equal([]string{"Early", "First", "Second", "Third"}, firstNames(s.registry.All()))
}

func (s *RegistrySuite) TestInsertComparesCaseSensitively() {
	// Upper-case letters sort before lower-case ones byte-wise
	s.Require().NoError(s.registry.Insert(registrant("A", "adams", "a@uni.ac.il")))
	s.Require().NoError(s.registry.Insert(registrant("B", "Zed", "b@uni.ac.il")))

	s.Equal([]string{"Zed", "adams"}, lastNames(s.registry.All()))
}

func (s *RegistrySuite) TestInsertAppendsWhenNoGreaterName() {
	s.Require().NoError(s.registry.Insert(registrant("A", "Adams", "a@uni.ac.il")))
	s.Require().NoError(s.registry.Insert(registrant("B", "Brown", "b@uni.ac.il")))
	s.Require().NoError(s.registry.Insert(registrant("C", "Young", "c@uni.ac.il")))

	s.Equal([]string{"Adams", "Brown", "Young"}, lastNames(s.registry.All()))
}

func (s *RegistrySuite) TestInsertDuplicateEmailIsRejected() {
	s.Require().NoError(s.registry.Insert(registrant("John", "Smith", "john@uni.ac.il")))
	s.Require().NoError(s.registry.Insert(registrant("Ann", "Adams", "ann@uni.ac.il")))
	before := s.registry.All()

	err := s.registry.Insert(registrant("Other", "Baker", "john@uni.ac.il"))
	s.ErrorIs(err, model.ErrDuplicateEmail)

	s.Equal(before, s.registry.All())
	s.Equal(2, s.registry.Len())
}

func (s *RegistrySuite) TestEmailMatchIsCaseSensitive() {
	s.Require().NoError(s.registry.Insert(registrant("John", "Smith", "john@uni.ac.il")))

	err := s.registry.Insert(registrant("John", "Smith", "John@uni.ac.il"))
	s.NoError(err)
	s.Equal(2, s.registry.Len())
}

func (s *RegistrySuite) TestAllowPolicyAcceptsDuplicates() {
	r := New(WithDuplicatePolicy(model.DuplicatePolicyAllow))
	s.Require().NoError(r.Insert(registrant("John", "Smith", "john@uni.ac.il")))
	s.Require().NoError(r.Insert(registrant("Jane", "Adams", "john@uni.ac.il")))

	s.Equal(2, r.Len())
	found, ok := r.FindByEmail("john@uni.ac.il")
	s.True(ok)
	s.Equal("Jane", found.FirstName) // first in order
}

func (s *RegistrySuite) TestFindByEmail() {
	s.Require().NoError(s.registry.Insert(registrant("John", "Smith", "john@uni.ac.il")))

	found, ok := s.registry.FindByEmail("john@uni.ac.il")
	s.True(ok)
	s.Equal("Smith", found.LastName)

	_, ok = s.registry.FindByEmail("nobody@uni.ac.il")
	s.False(ok)
}

func (s *RegistrySuite) TestAllIsSnapshot() {
	s.Require().NoError(s.registry.Insert(registrant("John", "Smith", "john@uni.ac.il")))

	first := s.registry.All()
	second := s.registry.All()
	s.Equal(first, second)

	first[0].LastName = "Mutated"
	s.Equal("Smith", s.registry.All()[0].LastName)

	s.Require().NoError(s.registry.Insert(registrant("Ann", "Adams", "ann@uni.ac.il")))
	s.Len(second, 1)
}

func (s *RegistrySuite) TestConcurrentInsertsKeepOrder() {
	names := []string{"Miller", "Adams", "Young", "Baker", "Cohen", "Levi", "Katz", "Zur"}

	var wg sync.WaitGroup
	errs := make(chan error, len(names))
	for _, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.registry.Insert(registrant("X", name, name+"@uni.ac.il"))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	s.Equal([]string{"Adams", "Baker", "Cohen", "Katz", "Levi", "Miller", "Young", "Zur"}, lastNames(s.registry.All()))
}

func TestInsertIndex(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		lastName string
		expected int
	}{
		{"empty", nil, "Smith", 0},
		{"before all", []string{"Jones", "Smith"}, "Adams", 0},
		{"middle", []string{"Adams", "Smith"}, "Jones", 1},
		{"after all", []string{"Adams", "Jones"}, "Smith", 2},
		{"after equal names", []string{"Adams", "Jones", "Jones", "Smith"}, "Jones", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InsertIndex(tt.existing, tt.lastName); got != tt.expected {
				t.Errorf("InsertIndex(%v, %q) = %d, want %d", tt.existing, tt.lastName, got, tt.expected)
			}
		})
	}
}
