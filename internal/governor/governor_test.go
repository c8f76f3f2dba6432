package governor_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"testing"
	"time"

	"github.com/kdblock/panel/internal/governor"
	"github.com/kdblock/panel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVerifier accepts a single credential pair and counts calls.
type fakeVerifier struct {
	userid   string
	password string
	calls    int
	err      error // overrides normal behavior when set
}

func (v *fakeVerifier) Verify(_ context.Context, identifier, secret string) (*models.Admin, error) {
	v.calls++
	if v.err != nil {
		return nil, v.err
	}
	if identifier == v.userid && secret == v.password {
		return &models.Admin{ID: "admin-1", UserID: v.userid, Role: models.RoleMainAdmin, IsActive: true}, nil
	}
	return nil, models.ErrUnauthorized
}

// fakeIssuer mints a fixed token.
type fakeIssuer struct {
	calls int
	err   error
}

func (i *fakeIssuer) Issue(_ context.Context, admin *models.Admin) (*models.Session, error) {
	i.calls++
	if i.err != nil {
		return nil, i.err
	}
	return &models.Session{Token: "token-" + admin.ID, ExpiresAt: time.Now().Add(24 * time.Hour)}, nil
}

// brokenStore fails every operation, simulating an unreachable ledger store.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (*models.AttemptRecord, error) {
	return nil, errors.New("store unreachable")
}
func (brokenStore) Put(context.Context, string, *models.AttemptRecord) error {
	return errors.New("store unreachable")
}
func (brokenStore) Delete(context.Context, string) error {
	return errors.New("store unreachable")
}

func testConfig() governor.Config {
	return governor.Config{
		ChallengeAfter: 3,
		LockoutAfter:   5,
		LockoutFor:     100 * time.Second,
		FailClosedFor:  30 * time.Second,
	}
}

func newTestGovernor(verifier *fakeVerifier, issuer *fakeIssuer) *governor.Governor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen := governor.NewGeneratorWithSource(rand.NewPCG(1, 2))
	return governor.New(testConfig(), governor.NewMemoryStore(), gen, verifier, issuer, logger)
}

// failTimes books n bad-credential failures for the identifier.
func failTimes(t *testing.T, g *governor.Governor, identifier string, n int, now time.Time) {
	t.Helper()
	ctx := context.Background()

	for i := 0; i < n; i++ {
		d := g.Evaluate(ctx, identifier, now)
		answer := ""
		if d.Mode == governor.ModeChallenge {
			answer = strconv.Itoa(d.Challenge.Answer)
		}
		res := g.Submit(ctx, identifier, "wrong-password", answer, now)
		require.Equal(t, governor.StatusInvalidCredentials, res.Status,
			"failure %d should be a credential rejection", i+1)
	}
}

func TestEvaluateThresholds(t *testing.T) {
	cases := []struct {
		failures int
		want     governor.Mode
	}{
		{0, governor.ModeNormal},
		{1, governor.ModeNormal},
		{2, governor.ModeNormal},
		{3, governor.ModeChallenge},
		{4, governor.ModeChallenge},
		{5, governor.ModeLocked},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("failures_%d", tc.failures), func(t *testing.T) {
			verifier := &fakeVerifier{userid: "clerk1", password: "Right-Pass-9!"}
			g := newTestGovernor(verifier, &fakeIssuer{})
			now := time.Now()

			failTimes(t, g, "clerk1", tc.failures, now)

			d := g.Evaluate(context.Background(), "clerk1", now)
			assert.Equal(t, tc.want, d.Mode)
			if tc.want == governor.ModeChallenge {
				require.NotNil(t, d.Challenge)
				assert.NotEmpty(t, d.Challenge.Question)
			}
			if tc.want == governor.ModeLocked {
				assert.InDelta(t, 100, d.RetryAfter.Seconds(), 1)
			}
		})
	}
}

func TestSubmitSuccessResetsLedger(t *testing.T) {
	verifier := &fakeVerifier{userid: "clerk1", password: "Right-Pass-9!"}
	g := newTestGovernor(verifier, &fakeIssuer{})
	ctx := context.Background()
	now := time.Now()

	failTimes(t, g, "clerk1", 4, now)

	// 4 failures puts us in the challenge band; answer it correctly
	d := g.Evaluate(ctx, "clerk1", now)
	require.Equal(t, governor.ModeChallenge, d.Mode)

	res := g.Submit(ctx, "clerk1", "Right-Pass-9!", strconv.Itoa(d.Challenge.Answer), now)
	require.Equal(t, governor.StatusSuccess, res.Status)
	require.NotNil(t, res.Session)
	assert.NotEmpty(t, res.Session.Token)

	// Ledger is clean again
	assert.Equal(t, governor.ModeNormal, g.Evaluate(ctx, "clerk1", now).Mode)
}

func TestLockedSubmitNeverReachesVerifier(t *testing.T) {
	verifier := &fakeVerifier{userid: "clerk1", password: "Right-Pass-9!"}
	g := newTestGovernor(verifier, &fakeIssuer{})
	ctx := context.Background()
	now := time.Now()

	failTimes(t, g, "clerk1", 5, now)
	callsAfterLockout := verifier.calls

	// Perfect credentials during the window are still refused
	res := g.Submit(ctx, "clerk1", "Right-Pass-9!", "", now.Add(10*time.Second))
	assert.Equal(t, governor.StatusLocked, res.Status)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.Equal(t, callsAfterLockout, verifier.calls, "verifier must not be contacted while locked")
}

func TestLockoutCountdownShrinks(t *testing.T) {
	verifier := &fakeVerifier{userid: "clerk1", password: "Right-Pass-9!"}
	g := newTestGovernor(verifier, &fakeIssuer{})
	ctx := context.Background()
	now := time.Now()

	failTimes(t, g, "clerk1", 5, now)

	d := g.Evaluate(ctx, "clerk1", now.Add(40*time.Second))
	require.Equal(t, governor.ModeLocked, d.Mode)
	assert.InDelta(t, 60, d.RetryAfter.Seconds(), 1)
}

func TestLockoutExpiryResetsOnce(t *testing.T) {
	verifier := &fakeVerifier{userid: "clerk1", password: "Right-Pass-9!"}
	g := newTestGovernor(verifier, &fakeIssuer{})
	ctx := context.Background()
	now := time.Now()

	failTimes(t, g, "clerk1", 5, now)

	// Any number of evaluations after expiry yields Normal deterministically
	after := now.Add(101 * time.Second)
	for i := 0; i < 3; i++ {
		assert.Equal(t, governor.ModeNormal, g.Evaluate(ctx, "clerk1", after).Mode)
	}

	// And a correct submit goes straight through
	res := g.Submit(ctx, "clerk1", "Right-Pass-9!", "", after)
	assert.Equal(t, governor.StatusSuccess, res.Status)
}

func TestWrongChallengeAnswerCountsAsFailure(t *testing.T) {
	verifier := &fakeVerifier{userid: "clerk1", password: "Right-Pass-9!"}
	g := newTestGovernor(verifier, &fakeIssuer{})
	ctx := context.Background()
	now := time.Now()

	failTimes(t, g, "clerk1", 3, now)
	callsBefore := verifier.calls

	d := g.Evaluate(ctx, "clerk1", now)
	require.Equal(t, governor.ModeChallenge, d.Mode)

	// Correct credentials with a wrong answer: failure, verifier untouched
	res := g.Submit(ctx, "clerk1", "Right-Pass-9!", strconv.Itoa(d.Challenge.Answer+1), now)
	assert.Equal(t, governor.StatusChallengeFailed, res.Status)
	assert.Equal(t, callsBefore, verifier.calls)
	require.NotNil(t, res.Challenge, "a fresh challenge accompanies the rejection")
	assert.NotEqual(t, d.Challenge.Question, res.Challenge.Question)
}

func TestNonNumericChallengeAnswerCountsAsFailure(t *testing.T) {
	verifier := &fakeVerifier{userid: "clerk1", password: "Right-Pass-9!"}
	g := newTestGovernor(verifier, &fakeIssuer{})
	ctx := context.Background()
	now := time.Now()

	failTimes(t, g, "clerk1", 3, now)

	d := g.Evaluate(ctx, "clerk1", now)
	require.Equal(t, governor.ModeChallenge, d.Mode)

	res := g.Submit(ctx, "clerk1", "Right-Pass-9!", "twelve", now)
	assert.Equal(t, governor.StatusChallengeFailed, res.Status)
}

func TestChallengeIsSingleUse(t *testing.T) {
	verifier := &fakeVerifier{userid: "clerk1", password: "Right-Pass-9!"}
	g := newTestGovernor(verifier, &fakeIssuer{})
	ctx := context.Background()
	now := time.Now()

	failTimes(t, g, "clerk1", 3, now)

	d := g.Evaluate(ctx, "clerk1", now)
	require.Equal(t, governor.ModeChallenge, d.Mode)

	// First use with wrong credentials consumes the challenge
	res := g.Submit(ctx, "clerk1", "wrong-password", strconv.Itoa(d.Challenge.Answer), now)
	require.Equal(t, governor.StatusInvalidCredentials, res.Status)

	// Replaying the same answer against the replacement challenge fails the
	// challenge check, not the credential check
	calls := verifier.calls
	res = g.Submit(ctx, "clerk1", "Right-Pass-9!", strconv.Itoa(d.Challenge.Answer), now)
	if res.Status == governor.StatusChallengeFailed {
		assert.Equal(t, calls, verifier.calls)
	} else {
		// The replacement happened to share the old answer; success is legal then
		assert.Equal(t, governor.StatusSuccess, res.Status)
	}
}

func TestFifthFailureLocksImmediately(t *testing.T) {
	verifier := &fakeVerifier{userid: "clerk1", password: "Right-Pass-9!"}
	g := newTestGovernor(verifier, &fakeIssuer{})
	ctx := context.Background()
	now := time.Now()

	failTimes(t, g, "clerk1", 4, now)

	d := g.Evaluate(ctx, "clerk1", now)
	require.Equal(t, governor.ModeChallenge, d.Mode)

	// Fifth bad credential: the rejection itself reports the lockout countdown
	res := g.Submit(ctx, "clerk1", "wrong-password", strconv.Itoa(d.Challenge.Answer), now)
	assert.Equal(t, governor.StatusInvalidCredentials, res.Status)
	assert.InDelta(t, 100, res.RetryAfter.Seconds(), 1)

	assert.Equal(t, governor.ModeLocked, g.Evaluate(ctx, "clerk1", now).Mode)
}

func TestVerifierTransportErrorDoesNotCount(t *testing.T) {
	verifier := &fakeVerifier{userid: "clerk1", password: "Right-Pass-9!", err: errors.New("connection refused")}
	g := newTestGovernor(verifier, &fakeIssuer{})
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 4; i++ {
		res := g.Submit(ctx, "clerk1", "Right-Pass-9!", "", now)
		assert.Equal(t, governor.StatusSystemError, res.Status)
	}

	// Transport failures never advance the ledger
	assert.Equal(t, governor.ModeNormal, g.Evaluate(ctx, "clerk1", now).Mode)
}

func TestIssuerFailureIsSystemError(t *testing.T) {
	verifier := &fakeVerifier{userid: "clerk1", password: "Right-Pass-9!"}
	issuer := &fakeIssuer{err: errors.New("signing key unavailable")}
	g := newTestGovernor(verifier, issuer)

	res := g.Submit(context.Background(), "clerk1", "Right-Pass-9!", "", time.Now())
	assert.Equal(t, governor.StatusSystemError, res.Status)
}

func TestUnreadableLedgerFailsClosed(t *testing.T) {
	verifier := &fakeVerifier{userid: "clerk1", password: "Right-Pass-9!"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen := governor.NewGeneratorWithSource(rand.NewPCG(1, 2))
	g := governor.New(testConfig(), brokenStore{}, gen, verifier, &fakeIssuer{}, logger)
	now := time.Now()

	d := g.Evaluate(context.Background(), "clerk1", now)
	assert.Equal(t, governor.ModeLocked, d.Mode)
	assert.Equal(t, 30*time.Second, d.RetryAfter)

	res := g.Submit(context.Background(), "clerk1", "Right-Pass-9!", "", now)
	assert.Equal(t, governor.StatusLocked, res.Status)
	assert.Equal(t, 0, verifier.calls)
}

func TestIdentifierNormalization(t *testing.T) {
	verifier := &fakeVerifier{userid: "clerk1", password: "Right-Pass-9!"}
	g := newTestGovernor(verifier, &fakeIssuer{})
	ctx := context.Background()
	now := time.Now()

	failTimes(t, g, "clerk1", 3, now)

	// Same account, different casing and whitespace: same ledger slot
	d := g.Evaluate(ctx, "  Clerk1 ", now)
	assert.Equal(t, governor.ModeChallenge, d.Mode)
}
