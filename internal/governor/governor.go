// Package governor decides, for each login submission, whether to allow the
// attempt, demand an arithmetic challenge, or refuse outright. The policy:
// after 3 consecutive failures a challenge is required, after 5 the
// identifier is locked for a fixed window, and lockout expiry wipes the
// failure history entirely.
package governor

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kdblock/panel/internal/models"
)

// Mode describes what the login form must present.
type Mode string

const (
	ModeNormal    Mode = "normal"
	ModeChallenge Mode = "challenge_required"
	ModeLocked    Mode = "locked"
)

// Status is the outcome of a submission.
type Status string

const (
	StatusSuccess            Status = "success"
	StatusLocked             Status = "locked"
	StatusChallengeFailed    Status = "challenge_failed"
	StatusInvalidCredentials Status = "invalid_credentials"
	StatusSystemError        Status = "system_error"
)

// Decision is the result of evaluating the ledger state for an identifier.
// Challenge is set for ModeChallenge, RetryAfter for ModeLocked.
type Decision struct {
	Mode       Mode
	Challenge  *models.Challenge
	RetryAfter time.Duration
}

// SubmitResult is the typed outcome of one login submission. Challenge and
// RetryAfter describe the next-shown form state on failure paths.
type SubmitResult struct {
	Status     Status
	RetryAfter time.Duration
	Challenge  *models.Challenge
	Session    *models.Session
	Admin      *models.Admin
}

// CredentialVerifier checks an identifier/secret pair. It returns
// models.ErrUnauthorized for any bad credential, without revealing whether
// the identifier exists; other errors are treated as transport failures.
type CredentialVerifier interface {
	Verify(ctx context.Context, identifier, secret string) (*models.Admin, error)
}

// SessionIssuer mints a session for a verified admin.
type SessionIssuer interface {
	Issue(ctx context.Context, admin *models.Admin) (*models.Session, error)
}

// Config holds the policy thresholds.
type Config struct {
	ChallengeAfter int           // failures before a challenge is required
	LockoutAfter   int           // failures before lockout
	LockoutFor     time.Duration // lockout window length
	FailClosedFor  time.Duration // lock window reported when the ledger is unreadable
}

// Governor is the login attempt policy engine. It owns the ledger and the
// set of pending challenge answers, keyed by normalized identifier.
type Governor struct {
	cfg      Config
	ledger   *Ledger
	gen      *Generator
	verifier CredentialVerifier
	issuer   SessionIssuer
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]int // expected answer of the challenge last shown
}

func New(cfg Config, store SlotStore, gen *Generator, verifier CredentialVerifier, issuer SessionIssuer, logger *slog.Logger) *Governor {
	return &Governor{
		cfg:      cfg,
		ledger:   NewLedger(store, cfg.LockoutAfter, cfg.LockoutFor),
		gen:      gen,
		verifier: verifier,
		issuer:   issuer,
		logger:   logger,
		pending:  make(map[string]int),
	}
}

// Evaluate inspects the ledger and reports how the login form should render.
// Entering the challenge band issues a fresh challenge, replacing any
// previously shown one. An unreadable ledger fails closed as a short lock.
func (g *Governor) Evaluate(ctx context.Context, identifier string, now time.Time) Decision {
	key := normalizeKey(identifier)

	d, err := g.decide(ctx, key, now, true)
	if err != nil {
		g.logger.Error("attempt ledger unreadable, failing closed", slog.Any("error", err))
		return Decision{Mode: ModeLocked, RetryAfter: g.cfg.FailClosedFor}
	}
	return d
}

// Submit runs one login attempt through the policy. Order is load-bearing:
// lockout check, then challenge check, then credential verification. The
// verifier is never contacted while locked or on a wrong challenge answer,
// and transport failures do not count against the ledger.
func (g *Governor) Submit(ctx context.Context, identifier, secret, challengeAnswer string, now time.Time) SubmitResult {
	key := normalizeKey(identifier)

	d, err := g.decide(ctx, key, now, false)
	if err != nil {
		g.logger.Error("attempt ledger unreadable, failing closed", slog.Any("error", err))
		return SubmitResult{Status: StatusLocked, RetryAfter: g.cfg.FailClosedFor}
	}

	switch d.Mode {
	case ModeLocked:
		return SubmitResult{Status: StatusLocked, RetryAfter: d.RetryAfter}

	case ModeChallenge:
		expected, shown := g.takePending(key)
		answer, convErr := strconv.Atoi(strings.TrimSpace(challengeAnswer))
		if !shown || convErr != nil || answer != expected {
			return g.recordAndRender(ctx, key, now, StatusChallengeFailed)
		}
	}

	admin, err := g.verifier.Verify(ctx, identifier, secret)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			return g.recordAndRender(ctx, key, now, StatusInvalidCredentials)
		}
		// Failing to reach the verifier is not evidence of a bad credential.
		g.logger.Error("credential verifier unavailable", slog.Any("error", err))
		return SubmitResult{Status: StatusSystemError}
	}

	if err := g.ledger.Reset(ctx, key); err != nil {
		g.logger.Warn("failed to reset attempt record after login", slog.Any("error", err))
	}
	g.clearPending(key)

	sess, err := g.issuer.Issue(ctx, admin)
	if err != nil {
		g.logger.Error("session issuer unavailable", slog.Any("error", err))
		return SubmitResult{Status: StatusSystemError}
	}

	return SubmitResult{Status: StatusSuccess, Session: sess, Admin: admin}
}

// recordAndRender books one failure and maps the next decision onto the
// failure status, carrying the fresh challenge or lockout countdown the form
// needs next.
func (g *Governor) recordAndRender(ctx context.Context, key string, now time.Time, status Status) SubmitResult {
	if _, err := g.ledger.RecordFailure(ctx, key, now); err != nil {
		g.logger.Error("failed to record login failure", slog.Any("error", err))
		return SubmitResult{Status: StatusSystemError}
	}

	next, err := g.decide(ctx, key, now, true)
	if err != nil {
		g.logger.Error("attempt ledger unreadable, failing closed", slog.Any("error", err))
		return SubmitResult{Status: StatusLocked, RetryAfter: g.cfg.FailClosedFor}
	}

	res := SubmitResult{Status: status}
	switch next.Mode {
	case ModeLocked:
		res.RetryAfter = next.RetryAfter
	case ModeChallenge:
		res.Challenge = next.Challenge
	}
	return res
}

// decide loads the ledger and classifies the identifier. When issueChallenge
// is set and the identifier sits in the challenge band, a new challenge is
// generated and remembered; Submit passes false so it can compare the answer
// against the challenge that was actually shown.
func (g *Governor) decide(ctx context.Context, key string, now time.Time, issueChallenge bool) (Decision, error) {
	rec, err := g.ledger.Load(ctx, key, now)
	if err != nil {
		return Decision{}, err
	}

	if rec.Locked(now) {
		return Decision{Mode: ModeLocked, RetryAfter: rec.LockoutUntil.Sub(now)}, nil
	}

	if rec.FailureCount >= g.cfg.ChallengeAfter {
		d := Decision{Mode: ModeChallenge}
		if issueChallenge {
			ch := g.gen.Generate()
			g.mu.Lock()
			g.pending[key] = ch.Answer
			g.mu.Unlock()
			d.Challenge = &ch
		}
		return d, nil
	}

	return Decision{Mode: ModeNormal}, nil
}

// takePending removes and returns the expected answer for the challenge last
// shown to the key. Challenges are single use: once taken, a new one must be
// issued whether or not the answer was right.
func (g *Governor) takePending(key string) (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	expected, ok := g.pending[key]
	if ok {
		delete(g.pending, key)
	}
	return expected, ok
}

func (g *Governor) clearPending(key string) {
	g.mu.Lock()
	delete(g.pending, key)
	g.mu.Unlock()
}

func normalizeKey(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}
