// Package notary is the caller-facing surface of signet. It resolves
// identities, signs text into the ledger, and verifies records while
// auditing every verification attempt.
package notary

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/signet/internal/audit"
	"github.com/mrz1836/signet/internal/constants"
	"github.com/mrz1836/signet/internal/crypto"
	"github.com/mrz1836/signet/internal/domain"
	signeterrors "github.com/mrz1836/signet/internal/errors"
	"github.com/mrz1836/signet/internal/identity"
	"github.com/mrz1836/signet/internal/ledger"
)

// Notary wires the identity registry, ledger, audit trail, and verifier.
type Notary struct {
	registry    *identity.Registry
	resolver    identity.Resolver
	ledger      *ledger.Ledger
	audit       *audit.Audit
	verifier    crypto.Engine
	parallelism int
	logger      zerolog.Logger
}

// Option configures a Notary.
type Option func(*Notary)

// WithResolver replaces the credential resolver. The registry is used by default.
func WithResolver(r identity.Resolver) Option {
	return func(n *Notary) {
		if r != nil {
			n.resolver = r
		}
	}
}

// WithParallelism bounds VerifyMany concurrency. Values below 1 keep the default.
func WithParallelism(p int) Option {
	return func(n *Notary) {
		if p > 0 {
			n.parallelism = p
		}
	}
}

// WithLogger sets the notary logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(n *Notary) {
		n.logger = logger
	}
}

// New creates a Notary.
func New(registry *identity.Registry, l *ledger.Ledger, a *audit.Audit, engine crypto.Engine, opts ...Option) *Notary {
	n := &Notary{
		registry:    registry,
		resolver:    registry,
		ledger:      l,
		audit:       a,
		verifier:    engine,
		parallelism: constants.DefaultVerifyParallelism,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// BatchResult is the outcome for one id passed to VerifyMany.
type BatchResult struct {
	ID           string               `json:"id"`
	Verification *domain.Verification `json:"verification,omitempty"`
	Err          error                `json:"-"`
}

// CreateIdentity registers a new signer called name.
func (n *Notary) CreateIdentity(ctx context.Context, name string) (*domain.Identity, error) {
	return n.registry.Create(ctx, name)
}

// Identity returns the identity matching an id or name.
func (n *Notary) Identity(ctx context.Context, idOrName string) (*domain.Identity, error) {
	return n.registry.Get(ctx, idOrName)
}

// Identities lists every registered identity, oldest first.
func (n *Notary) Identities(ctx context.Context) ([]domain.Identity, error) {
	return n.registry.List(ctx)
}

// Sign resolves credential and signs text on its behalf.
func (n *Notary) Sign(ctx context.Context, credential, text string) (*domain.SignatureRecord, error) {
	signer, err := n.resolver.Resolve(ctx, credential)
	if err != nil {
		return nil, err
	}
	return n.ledger.CreateSignature(ctx, signer, text)
}

// VerifyByID verifies the record with id and logs the attempt. A missing
// record returns ErrRecordNotFound and logs nothing.
func (n *Notary) VerifyByID(ctx context.Context, id string, origin domain.Origin) (*domain.Verification, error) {
	rec, err := n.ledger.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return n.verifyRecord(ctx, rec, origin)
}

// VerifyByText looks a record up by the digest of text and signature, then
// verifies it. When no record holds that pair, including when the text was
// altered, it returns ErrRecordNotFound.
func (n *Notary) VerifyByText(ctx context.Context, text, signature string, origin domain.Origin) (*domain.Verification, error) {
	rec, err := n.ledger.FindByText(ctx, text, signature)
	if err != nil {
		return nil, err
	}
	return n.verifyRecord(ctx, rec, origin)
}

// VerifyMany verifies ids concurrently, at most the configured parallelism
// at a time. Per-id failures are reported in the results, which keep the
// order of ids.
func (n *Notary) VerifyMany(ctx context.Context, ids []string, origin domain.Origin) ([]BatchResult, error) {
	results := make([]BatchResult, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.parallelism)

	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := n.VerifyByID(gctx, id, origin)
			results[i] = BatchResult{ID: id, Verification: v, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// History returns the records signed by credential, newest first.
func (n *Notary) History(ctx context.Context, credential string) ([]*domain.SignatureRecord, error) {
	signer, err := n.resolver.Resolve(ctx, credential)
	if err != nil {
		return nil, err
	}
	return n.ledger.ListByIdentity(ctx, signer.Identity().ID, true)
}

// Attempts returns the audit rows for a record, newest first.
func (n *Notary) Attempts(ctx context.Context, recordID string) ([]domain.VerificationAttempt, error) {
	rec, err := n.ledger.FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return n.audit.ListForRecord(ctx, rec.ID)
}

func (n *Notary) verifyRecord(ctx context.Context, rec *domain.SignatureRecord, origin domain.Origin) (*domain.Verification, error) {
	signatory := ""
	valid := false

	owner, err := n.registry.Get(ctx, rec.IdentityID)
	switch {
	case err == nil:
		signatory = owner.Name
		valid = n.check(rec, owner.PublicKey)
	case errors.Is(err, signeterrors.ErrIdentityNotFound):
		n.logger.Warn().
			Str("component", "notary").
			Str("record_id", rec.ID).
			Str("identity_id", rec.IdentityID).
			Msg("record owner missing, treating signature as invalid")
	default:
		return nil, err
	}

	attemptID, err := n.audit.LogAttempt(ctx, rec.ID, origin, valid)
	if err != nil {
		return nil, err
	}

	count, err := n.audit.CountForRecord(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}

	n.logger.Info().
		Str("component", "notary").
		Str("record_id", rec.ID).
		Bool("valid", valid).
		Int("count", count).
		Msg("signature verified")

	return &domain.Verification{
		Record:    rec,
		Signatory: signatory,
		Valid:     valid,
		Count:     count,
		AttemptID: attemptID,
	}, nil
}

// check runs the cryptographic verification. Every failure is false.
func (n *Notary) check(rec *domain.SignatureRecord, key crypto.PublicKey) bool {
	if rec.Algorithm != n.verifier.Algorithm() {
		return false
	}
	sig, err := rec.SignatureBytes()
	if err != nil {
		return false
	}
	return n.verifier.VerifyText(rec.Text, sig, key, rec.Hash)
}
