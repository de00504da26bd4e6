// Package identity registers signers and resolves caller credentials to the
// key material needed to sign on their behalf.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/signet/internal/clock"
	"github.com/mrz1836/signet/internal/constants"
	"github.com/mrz1836/signet/internal/crypto"
	"github.com/mrz1836/signet/internal/domain"
	signeterrors "github.com/mrz1836/signet/internal/errors"
	"github.com/mrz1836/signet/internal/logging"
)

// maxNameLength bounds identity display names in runes.
const maxNameLength = 64

// Record is the persisted form of an identity: its public view plus the
// private key. Only stores and Signer ever see a Record.
type Record struct {
	Identity   domain.Identity
	PrivateKey crypto.PrivateKey
}

// Store persists identity records.
type Store interface {
	// InsertIdentity stores a new record. It returns ErrIdentityExists when
	// the id or the name is already taken.
	InsertIdentity(ctx context.Context, rec *Record) error

	// GetIdentity returns the record with id or ErrIdentityNotFound.
	GetIdentity(ctx context.Context, id string) (*Record, error)

	// FindIdentityByName returns the record named name or ErrIdentityNotFound.
	FindIdentityByName(ctx context.Context, name string) (*Record, error)

	// ListIdentities returns every record, oldest first.
	ListIdentities(ctx context.Context) ([]*Record, error)
}

// KeyGenerator creates key pairs for new identities.
type KeyGenerator interface {
	GenerateKeyPair(ctx context.Context) (crypto.KeyPair, error)
}

// Resolver maps a caller credential to a Signer.
type Resolver interface {
	// Resolve returns the signer for credential, or an error wrapping
	// ErrIdentityUnresolved when nothing matches.
	Resolve(ctx context.Context, credential string) (*Signer, error)
}

// Signer is a resolved identity together with its private key.
type Signer struct {
	identity domain.Identity
	key      crypto.PrivateKey
}

// NewSigner pairs an identity with its private key.
func NewSigner(identity domain.Identity, key crypto.PrivateKey) *Signer {
	return &Signer{identity: identity, key: key}
}

// Identity returns the public view of the signer.
func (s *Signer) Identity() domain.Identity {
	return s.identity
}

// PrivateKey returns the signing key.
func (s *Signer) PrivateKey() crypto.PrivateKey {
	return s.key
}

// Registry creates identities and resolves credentials against a Store.
// A credential is either an identity id (id-<uuid>) or a registered name.
type Registry struct {
	store     Store
	keys      KeyGenerator
	algorithm crypto.Algorithm
	clock     clock.Clock
	logger    zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the clock used for CreatedAt.
func WithClock(c clock.Clock) Option {
	return func(r *Registry) {
		r.clock = c
	}
}

// WithLogger sets the registry logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates a Registry backed by store that generates keys with keys.
func NewRegistry(store Store, keys KeyGenerator, opts ...Option) *Registry {
	r := &Registry{
		store:     store,
		keys:      keys,
		algorithm: crypto.AlgorithmSHA256WithRSA,
		clock:     clock.RealClock{},
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create registers a new identity with a freshly generated key pair.
// Key generation failure is fatal: nothing is stored.
func (r *Registry) Create(ctx context.Context, name string) (*domain.Identity, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	pair, err := r.keys.GenerateKeyPair(ctx)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		Identity: domain.Identity{
			ID:        NewID(),
			Name:      name,
			PublicKey: pair.Public,
			Algorithm: r.algorithm,
			CreatedAt: r.clock.Now().UTC(),
		},
		PrivateKey: pair.Private,
	}
	if err := r.store.InsertIdentity(ctx, rec); err != nil {
		return nil, err
	}

	r.logger.Info().
		Str("component", "identity").
		Str("identity_id", rec.Identity.ID).
		Str("name", name).
		Msg("identity created")

	identity := rec.Identity
	return &identity, nil
}

// Get returns the public view of the identity matching an id or name.
func (r *Registry) Get(ctx context.Context, idOrName string) (*domain.Identity, error) {
	rec, err := r.lookup(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	identity := rec.Identity
	return &identity, nil
}

// List returns the public view of every identity, oldest first.
func (r *Registry) List(ctx context.Context) ([]domain.Identity, error) {
	recs, err := r.store.ListIdentities(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Identity, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.Identity)
	}
	return out, nil
}

// Resolve implements Resolver.
func (r *Registry) Resolve(ctx context.Context, credential string) (*Signer, error) {
	rec, err := r.lookup(ctx, credential)
	if err != nil {
		if errors.Is(err, signeterrors.ErrIdentityNotFound) {
			return nil, fmt.Errorf("%w: %q", signeterrors.ErrIdentityUnresolved, credential)
		}
		return nil, err
	}
	return NewSigner(rec.Identity, rec.PrivateKey), nil
}

func (r *Registry) lookup(ctx context.Context, idOrName string) (*Record, error) {
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return nil, fmt.Errorf("%w: empty identity reference", signeterrors.ErrIdentityNotFound)
	}

	r.logger.Debug().
		Str("component", "identity").
		Str("ref", logging.Field("ref", idOrName)).
		Msg("looking up identity")

	if IsID(idOrName) {
		return r.store.GetIdentity(ctx, idOrName)
	}
	return r.store.FindIdentityByName(ctx, idOrName)
}

// NewID returns a fresh identity id.
func NewID() string {
	return constants.IdentityIDPrefix + uuid.NewString()
}

// IsID reports whether s is shaped like an identity id.
func IsID(s string) bool {
	rest, ok := strings.CutPrefix(s, constants.IdentityIDPrefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}

// ValidateName checks that name is usable as a display name: non-empty,
// printable, at most 64 runes, and not shaped like an identity id.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: identity name is required", signeterrors.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("%w: identity name exceeds %d characters", signeterrors.ErrInvalidArgument, maxNameLength)
	}
	for _, r := range name {
		if !unicode.IsPrint(r) {
			return fmt.Errorf("%w: identity name contains non-printable characters", signeterrors.ErrInvalidArgument)
		}
	}
	if strings.HasPrefix(name, constants.IdentityIDPrefix) {
		return fmt.Errorf("%w: identity name must not start with %q", signeterrors.ErrInvalidArgument, constants.IdentityIDPrefix)
	}
	return nil
}

var _ Resolver = (*Registry)(nil)
