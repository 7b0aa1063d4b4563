package auth_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auth "github.com/goliatone/go-accounts"
)

// MockAccountDirectory implements auth.AccountDirectory
type MockAccountDirectory struct {
	mock.Mock
}

func (m *MockAccountDirectory) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	args := m.Called(ctx, email)
	acc, _ := args.Get(0).(*auth.Account)
	return acc, args.Error(1)
}

func (m *MockAccountDirectory) FindByPhone(ctx context.Context, phone string) (*auth.Account, error) {
	args := m.Called(ctx, phone)
	acc, _ := args.Get(0).(*auth.Account)
	return acc, args.Error(1)
}

func (m *MockAccountDirectory) FindByID(ctx context.Context, id uuid.UUID) (*auth.Account, error) {
	args := m.Called(ctx, id)
	acc, _ := args.Get(0).(*auth.Account)
	return acc, args.Error(1)
}

func (m *MockAccountDirectory) List(ctx context.Context) ([]*auth.Account, error) {
	args := m.Called(ctx)
	accs, _ := args.Get(0).([]*auth.Account)
	return accs, args.Error(1)
}

func (m *MockAccountDirectory) Create(ctx context.Context, account *auth.Account) (*auth.Account, error) {
	args := m.Called(ctx, account)
	acc, _ := args.Get(0).(*auth.Account)
	return acc, args.Error(1)
}

// MockHasher implements auth.PasswordAuthenticator
type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockHasher) ComparePasswordAndHash(password, hash string) error {
	args := m.Called(password, hash)
	return args.Error(0)
}

// memoryDirectory is an AccountDirectory that enforces uniqueness
// like a storage constraint would
type memoryDirectory struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*auth.Account
}

func newMemoryDirectory() *memoryDirectory {
	return &memoryDirectory{accounts: map[uuid.UUID]*auth.Account{}}
}

func (d *memoryDirectory) FindByEmail(_ context.Context, email string) (*auth.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, acc := range d.accounts {
		if acc.Email == email {
			return acc, nil
		}
	}
	return nil, nil
}

func (d *memoryDirectory) FindByPhone(_ context.Context, phone string) (*auth.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, acc := range d.accounts {
		if acc.PhoneNumber == phone {
			return acc, nil
		}
	}
	return nil, nil
}

func (d *memoryDirectory) FindByID(_ context.Context, id uuid.UUID) (*auth.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.accounts[id], nil
}

func (d *memoryDirectory) List(_ context.Context) ([]*auth.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*auth.Account, 0, len(d.accounts))
	for _, acc := range d.accounts {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(*out[j].CreatedAt) {
			return out[i].CreatedAt.Before(*out[j].CreatedAt)
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

func (d *memoryDirectory) Create(_ context.Context, account *auth.Account) (*auth.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, acc := range d.accounts {
		if acc.Email == account.Email {
			return nil, auth.ErrEmailAlreadyExists
		}
		if acc.PhoneNumber == account.PhoneNumber {
			return nil, auth.ErrPhoneAlreadyExists
		}
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	now := time.Now()
	account.CreatedAt = &now
	d.accounts[account.ID] = account
	return account, nil
}

func (d *memoryDirectory) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.accounts)
}

// captureSender records every notification it is asked to send
type captureSender struct {
	mu   sync.Mutex
	sent []auth.Notification
	err  error
}

func (s *captureSender) Send(_ context.Context, n auth.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}

func (s *captureSender) last() auth.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return auth.Notification{}
	}
	return s.sent[len(s.sent)-1]
}

// captureSink records activity events
type captureSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (s *captureSink) Record(_ context.Context, e auth.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *captureSink) types() []auth.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]auth.ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

type testConfig struct {
	issuer           string
	activationSecret string
	activationTTL    time.Duration
	accessSecret     string
	accessTTL        time.Duration
	refreshSecret    string
	refreshTTL       time.Duration
}

func newTestConfig() *testConfig {
	return &testConfig{
		issuer:           "accounts-test",
		activationSecret: "activation-secret",
		activationTTL:    5 * time.Minute,
		accessSecret:     "access-secret",
		accessTTL:        15 * time.Minute,
		refreshSecret:    "refresh-secret",
		refreshTTL:       24 * time.Hour,
	}
}

func (c *testConfig) GetIssuer() string                { return c.issuer }
func (c *testConfig) GetActivationSecret() string      { return c.activationSecret }
func (c *testConfig) GetActivationTTL() time.Duration  { return c.activationTTL }
func (c *testConfig) GetAccessSecret() string          { return c.accessSecret }
func (c *testConfig) GetAccessTTL() time.Duration      { return c.accessTTL }
func (c *testConfig) GetRefreshSecret() string         { return c.refreshSecret }
func (c *testConfig) GetRefreshTTL() time.Duration     { return c.refreshTTL }

const (
	anaPhone = "+12015550123"
	bobPhone = "+12015550124"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
