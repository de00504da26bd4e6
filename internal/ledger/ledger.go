// Package ledger creates and looks up immutable signature records.
//
// A record is written exactly once, after its hash and signature have been
// computed, so a failure at any step leaves nothing behind. Records are
// addressable by id and by the globally unique (hash, signature) pair.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/signet/internal/clock"
	"github.com/mrz1836/signet/internal/constants"
	"github.com/mrz1836/signet/internal/crypto"
	"github.com/mrz1836/signet/internal/domain"
	signeterrors "github.com/mrz1836/signet/internal/errors"
	"github.com/mrz1836/signet/internal/identity"
)

// Store persists signature records.
type Store interface {
	// InsertSignature stores rec. It returns ErrRecordExists when the id or
	// the (hash, signature) pair is already present.
	InsertSignature(ctx context.Context, rec *domain.SignatureRecord) error

	// GetSignature returns the record with id or ErrRecordNotFound.
	GetSignature(ctx context.Context, id string) (*domain.SignatureRecord, error)

	// FindSignature returns the record with the given hash and base64
	// signature or ErrRecordNotFound.
	FindSignature(ctx context.Context, hash, signature string) (*domain.SignatureRecord, error)

	// ListSignatures returns the identity's records in insertion order.
	ListSignatures(ctx context.Context, identityID string) ([]*domain.SignatureRecord, error)
}

// Ledger is the signature record service.
type Ledger struct {
	store        Store
	signer       crypto.Signer
	algorithm    crypto.Algorithm
	clock        clock.Clock
	maxTextBytes int
	logger       zerolog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the base clock. The ledger wraps it in clock.Monotonic so
// creation times strictly increase.
func WithClock(c clock.Clock) Option {
	return func(l *Ledger) {
		l.clock = clock.NewMonotonic(c)
	}
}

// WithMaxTextBytes caps the size of signable text. Non-positive values keep
// the default.
func WithMaxTextBytes(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.maxTextBytes = n
		}
	}
}

// WithLogger sets the ledger logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// New creates a Ledger that persists to store and signs with engine.
func New(store Store, engine crypto.Engine, opts ...Option) *Ledger {
	l := &Ledger{
		store:        store,
		signer:       engine,
		algorithm:    engine.Algorithm(),
		clock:        clock.NewMonotonic(clock.RealClock{}),
		maxTextBytes: constants.DefaultMaxTextBytes,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CreateSignature signs text as signer and stores the resulting record.
// text must be non-empty valid UTF-8 within the configured size limit.
//
// Signing is deterministic, so when signer has already signed the exact
// same text the existing record is returned unchanged: same id, same
// created_at, and no new row.
func (l *Ledger) CreateSignature(ctx context.Context, signer *identity.Signer, text string) (*domain.SignatureRecord, error) {
	if err := l.validateText(text); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	signed, err := l.signer.SignText(text, signer.PrivateKey())
	if err != nil {
		return nil, err
	}

	rec := &domain.SignatureRecord{
		ID:         uuid.NewString(),
		IdentityID: signer.Identity().ID,
		Text:       text,
		Hash:       signed.Hash,
		Signature:  domain.EncodeSignature(signed.Signature),
		Algorithm:  signed.Algorithm,
		CreatedAt:  l.clock.Now(),
	}
	if err := l.store.InsertSignature(ctx, rec); err != nil {
		// Signing is deterministic, so re-signing the same text yields the
		// same composite key. Hand back the record that already holds it.
		if errors.Is(err, signeterrors.ErrRecordExists) {
			if existing, findErr := l.store.FindSignature(ctx, rec.Hash, rec.Signature); findErr == nil && existing.IdentityID == rec.IdentityID {
				l.logger.Debug().
					Str("component", "ledger").
					Str("record_id", existing.ID).
					Msg("signature already recorded")
				return existing, nil
			}
		}
		return nil, signeterrors.Wrap(err, "failed to store signature")
	}

	l.logger.Info().
		Str("component", "ledger").
		Str("record_id", rec.ID).
		Str("identity_id", rec.IdentityID).
		Str("hash", rec.Hash).
		Msg("signature created")

	return rec, nil
}

// FindByID returns the record with id. Malformed ids are reported as
// ErrRecordNotFound without touching the store.
func (l *Ledger) FindByID(ctx context.Context, id string) (*domain.SignatureRecord, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", signeterrors.ErrRecordNotFound, id)
	}

	l.logger.Debug().
		Str("component", "ledger").
		Str("record_id", id).
		Msg("finding record by id")

	return l.store.GetSignature(ctx, id)
}

// FindByHashAndSignature returns the record matching the composite key.
func (l *Ledger) FindByHashAndSignature(ctx context.Context, hash, signature string) (*domain.SignatureRecord, error) {
	hash = strings.ToLower(strings.TrimSpace(hash))
	signature = strings.TrimSpace(signature)
	if len(hash) != constants.HashHexLength || signature == "" {
		return nil, signeterrors.ErrRecordNotFound
	}

	l.logger.Debug().
		Str("component", "ledger").
		Str("hash", hash).
		Msg("finding record by hash and signature")

	return l.store.FindSignature(ctx, hash, signature)
}

// FindByText digests text and looks the record up by the composite key.
func (l *Ledger) FindByText(ctx context.Context, text, signature string) (*domain.SignatureRecord, error) {
	hash, err := l.algorithm.Digest([]byte(text))
	if err != nil {
		return nil, err
	}
	return l.FindByHashAndSignature(ctx, hash, signature)
}

// ListByIdentity returns the identity's records, newest first when
// newestFirst is set and in insertion order otherwise.
func (l *Ledger) ListByIdentity(ctx context.Context, identityID string, newestFirst bool) ([]*domain.SignatureRecord, error) {
	recs, err := l.store.ListSignatures(ctx, identityID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(recs, func(a, b *domain.SignatureRecord) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if newestFirst {
		slices.Reverse(recs)
	}
	return recs, nil
}

func (l *Ledger) validateText(text string) error {
	if text == "" {
		return signeterrors.ErrEmptyText
	}
	if len(text) > l.maxTextBytes {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", signeterrors.ErrTextTooLarge, len(text), l.maxTextBytes)
	}
	// Stored text must round-trip byte for byte or the record can never
	// verify, and JSON encoding replaces invalid sequences.
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: text is not valid UTF-8", signeterrors.ErrInvalidArgument)
	}
	return nil
}
