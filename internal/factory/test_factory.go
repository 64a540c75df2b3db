package factory

import (
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/registrar/internal/dependencies/mocks"
	"github.com/mcoot/registrar/internal/metrics"
	"github.com/mcoot/registrar/internal/model"
	"github.com/mcoot/registrar/internal/services/registration"
	"github.com/mcoot/registrar/internal/storage"
	"github.com/mcoot/registrar/internal/storage/memory"
	redisstorage "github.com/mcoot/registrar/internal/storage/redis"
	"github.com/mcoot/registrar/internal/testutil"
	"github.com/mcoot/registrar/internal/validation"
)

// TestNow is the fixed time the test clock starts at
var TestNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// TestOption adjusts the configuration of a TestApp
type TestOption func(*testOptions)

type testOptions struct {
	store        storage.Storage
	validation   validation.Config
	registration registration.Config
}

// WithPlaintextPasswords stores raw passwords and shows them in listings
func WithPlaintextPasswords() TestOption {
	return func(o *testOptions) {
		o.registration.PasswordStorage = model.PasswordStorageInsecurePlaintext
	}
}

// WithDuplicatePolicy sets the duplicate email policy of the storage and controller
func WithDuplicatePolicy(policy model.DuplicatePolicy) TestOption {
	return func(o *testOptions) {
		o.registration.DuplicatePolicy = policy
	}
}

// WithEmailSuffix overrides the required email suffix
func WithEmailSuffix(suffix string) TestOption {
	return func(o *testOptions) {
		o.validation.EmailSuffix = suffix
	}
}

// WithStorage uses store instead of a fresh in-memory storage
func WithStorage(store storage.Storage) TestOption {
	return func(o *testOptions) {
		o.store = store
	}
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp(opts ...TestOption) *TestApp {
	o := testOptions{
		validation: validation.DefaultConfig(),
		registration: registration.Config{
			PasswordStorage: model.PasswordStorageBcrypt,
			DuplicatePolicy: model.DuplicatePolicyReject,
			BcryptCost:      bcrypt.MinCost,
		},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.store == nil {
		o.store = memory.NewWithPolicy(o.registration.DuplicatePolicy)
	}

	mockClock := mocks.NewMockClock(TestNow)
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(o.store, mockClock, mockRandom, metrics.NewNop(), o.validation, o.registration, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// NewRedisTestStorage returns a Redis storage backed by an in-process
// miniredis server. Call the returned func to shut both down.
func NewRedisTestStorage(policy model.DuplicatePolicy) (*redisstorage.Storage, *miniredis.Miniredis, func(), error) {
	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, nil, err
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := redisstorage.DefaultConfig()
	cfg.DuplicatePolicy = policy
	store := redisstorage.NewWithClient(client, cfg)
	cleanup := func() {
		_ = store.Close()
		mr.Close()
	}
	return store, mr, cleanup, nil
}
