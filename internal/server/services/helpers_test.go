package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/server/config"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

// plainHasher keeps tests fast; bcrypt is covered in the auth package.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }
func (plainHasher) Verify(p, h string) bool       { return h == "hashed:"+p }

type sentMail struct {
	to    string
	token string
}

type fakeMailer struct {
	mu     sync.Mutex
	verify []sentMail
	reset  []sentMail
	err    error
}

func (m *fakeMailer) SendVerificationEmail(_ context.Context, u *models.User, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verify = append(m.verify, sentMail{to: u.Email, token: token})
	return m.err
}

func (m *fakeMailer) SendResetEmail(_ context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset = append(m.reset, sentMail{to: email, token: code})
	return m.err
}

func (m *fakeMailer) lastVerify(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.verify, "no verification email sent")
	return m.verify[len(m.verify)-1].token
}

func (m *fakeMailer) lastReset(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.reset, "no reset email sent")
	return m.reset[len(m.reset)-1].token
}

type countingMetrics struct {
	mu     sync.Mutex
	issued map[models.Kind]int
	purged int64
}

func (c *countingMetrics) CredentialIssued(k models.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.issued == nil {
		c.issued = map[models.Kind]int{}
	}
	c.issued[k]++
}

func (c *countingMetrics) CredentialsPurged(n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purged += n
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// useClock pins timeNow for the duration of the test.
func useClock(t *testing.T) *clock {
	t.Helper()
	c := &clock{now: time.Date(2030, 3, 14, 9, 26, 53, 0, time.UTC)}
	orig := timeNow
	timeNow = c.Now
	t.Cleanup(func() { timeNow = orig })
	return c
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	return cfg
}

type fixture struct {
	svc     *AuthService
	rm      *repomanager.MemoryRepositoryManager
	mailer  *fakeMailer
	metrics *countingMetrics
	clock   *clock
	cfg     *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		rm:      repomanager.NewMemoryRepositoryManager(),
		mailer:  &fakeMailer{},
		metrics: &countingMetrics{},
		clock:   useClock(t),
		cfg:     testConfig(),
	}
	f.svc = NewAuthService(nil, f.rm, f.cfg, plainHasher{}, f.mailer, f.metrics, nil)
	return f
}

// verifiedUser registers email and confirms it, then returns the user.
func (f *fixture) verifiedUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Email: email, Password: password})
	require.NoError(t, err)
	require.NoError(t, f.svc.VerifyEmail(ctx, f.mailer.lastVerify(t)))

	u, err := f.rm.Users(nil).GetByEmail(ctx, strings.ToLower(email))
	require.NoError(t, err)
	require.True(t, u.EmailVerified)
	return u
}

var errBoom = errors.New("boom")
