// Package audit records every verification attempt and derives per-record
// verification counts from those rows.
package audit

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/signet/internal/clock"
	"github.com/mrz1836/signet/internal/constants"
	"github.com/mrz1836/signet/internal/domain"
	signeterrors "github.com/mrz1836/signet/internal/errors"
)

// Store persists verification attempts. Attempts are append-only.
type Store interface {
	// AppendAttempt adds one row. It never deduplicates.
	AppendAttempt(ctx context.Context, attempt domain.VerificationAttempt) error

	// CountAttempts returns the number of rows for recordID. It must observe
	// every AppendAttempt that returned before it was called.
	CountAttempts(ctx context.Context, recordID string) (int, error)

	// ListAttempts returns the rows for recordID in append order.
	ListAttempts(ctx context.Context, recordID string) ([]domain.VerificationAttempt, error)
}

// Audit is the verification audit service.
type Audit struct {
	store  Store
	clock  clock.Clock
	logger zerolog.Logger
}

// Option configures an Audit.
type Option func(*Audit)

// WithClock sets the clock used for VerifiedAt.
func WithClock(c clock.Clock) Option {
	return func(a *Audit) {
		a.clock = c
	}
}

// WithLogger sets the audit logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Audit) {
		a.logger = logger
	}
}

// New creates an Audit backed by store.
func New(store Store, opts ...Option) *Audit {
	a := &Audit{
		store:  store,
		clock:  clock.RealClock{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// LogAttempt appends an attempt for recordID and returns its id.
// Identical repeated attempts are each recorded.
func (a *Audit) LogAttempt(ctx context.Context, recordID string, origin domain.Origin, valid bool) (string, error) {
	attempt := domain.VerificationAttempt{
		ID:         constants.AttemptIDPrefix + uuid.NewString(),
		RecordID:   recordID,
		Origin:     origin.Address,
		Agent:      origin.Agent,
		Valid:      valid,
		VerifiedAt: a.clock.Now().UTC(),
	}
	if err := a.store.AppendAttempt(ctx, attempt); err != nil {
		return "", signeterrors.Wrapf(err, "failed to log attempt for record %s", recordID)
	}

	a.logger.Info().
		Str("component", "audit").
		Str("record_id", recordID).
		Str("attempt_id", attempt.ID).
		Bool("valid", valid).
		Str("origin", origin.Address).
		Msg("verification attempt logged")

	return attempt.ID, nil
}

// CountForRecord returns how many attempts have been logged for recordID.
func (a *Audit) CountForRecord(ctx context.Context, recordID string) (int, error) {
	return a.store.CountAttempts(ctx, recordID)
}

// ListForRecord returns the attempts for recordID, newest first.
func (a *Audit) ListForRecord(ctx context.Context, recordID string) ([]domain.VerificationAttempt, error) {
	attempts, err := a.store.ListAttempts(ctx, recordID)
	if err != nil {
		return nil, err
	}
	slices.Reverse(attempts)
	slices.SortStableFunc(attempts, func(x, y domain.VerificationAttempt) int {
		return y.VerifiedAt.Compare(x.VerifiedAt)
	})
	return attempts, nil
}
