package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/mrz1836/signet/internal/domain"
	signeterrors "github.com/mrz1836/signet/internal/errors"
	"github.com/mrz1836/signet/internal/identity"
)

// MemoryStore is an in-process Backend. It is safe for concurrent use and
// loses everything when the process exits.
type MemoryStore struct {
	mu sync.RWMutex

	identities    map[string]identity.Record
	identityNames map[string]string
	identityOrder []string

	signatures  map[string]domain.SignatureRecord
	composite   map[string]string
	byIdentity  map[string][]string
	attemptRows map[string][]domain.VerificationAttempt
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		identities:    make(map[string]identity.Record),
		identityNames: make(map[string]string),
		signatures:    make(map[string]domain.SignatureRecord),
		composite:     make(map[string]string),
		byIdentity:    make(map[string][]string),
		attemptRows:   make(map[string][]domain.VerificationAttempt),
	}
}

// Name implements Backend.
func (m *MemoryStore) Name() string {
	return BackendMemory
}

// Health implements Backend.
func (m *MemoryStore) Health(ctx context.Context) error {
	return ctx.Err()
}

// InsertIdentity implements identity.Store.
func (m *MemoryStore) InsertIdentity(ctx context.Context, rec *identity.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.identities[rec.Identity.ID]; ok {
		return fmt.Errorf("%w: id %s", signeterrors.ErrIdentityExists, rec.Identity.ID)
	}
	if _, ok := m.identityNames[rec.Identity.Name]; ok {
		return fmt.Errorf("%w: name %q", signeterrors.ErrIdentityExists, rec.Identity.Name)
	}

	m.identities[rec.Identity.ID] = *rec
	m.identityNames[rec.Identity.Name] = rec.Identity.ID
	m.identityOrder = append(m.identityOrder, rec.Identity.ID)
	return nil
}

// GetIdentity implements identity.Store.
func (m *MemoryStore) GetIdentity(ctx context.Context, id string) (*identity.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.identities[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", signeterrors.ErrIdentityNotFound, id)
	}
	return &rec, nil
}

// FindIdentityByName implements identity.Store.
func (m *MemoryStore) FindIdentityByName(ctx context.Context, name string) (*identity.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.identityNames[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", signeterrors.ErrIdentityNotFound, name)
	}
	rec := m.identities[id]
	return &rec, nil
}

// ListIdentities implements identity.Store.
func (m *MemoryStore) ListIdentities(ctx context.Context) ([]*identity.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*identity.Record, 0, len(m.identityOrder))
	for _, id := range m.identityOrder {
		rec := m.identities[id]
		out = append(out, &rec)
	}
	return out, nil
}

// InsertSignature implements ledger.Store.
func (m *MemoryStore) InsertSignature(ctx context.Context, rec *domain.SignatureRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := compositeKey(rec.Hash, rec.Signature)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.signatures[rec.ID]; ok {
		return fmt.Errorf("%w: id %s", signeterrors.ErrRecordExists, rec.ID)
	}
	if _, ok := m.composite[key]; ok {
		return fmt.Errorf("%w: hash %s", signeterrors.ErrRecordExists, rec.Hash)
	}

	m.signatures[rec.ID] = *rec
	m.composite[key] = rec.ID
	m.byIdentity[rec.IdentityID] = append(m.byIdentity[rec.IdentityID], rec.ID)
	return nil
}

// GetSignature implements ledger.Store.
func (m *MemoryStore) GetSignature(ctx context.Context, id string) (*domain.SignatureRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.signatures[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", signeterrors.ErrRecordNotFound, id)
	}
	return &rec, nil
}

// FindSignature implements ledger.Store.
func (m *MemoryStore) FindSignature(ctx context.Context, hash, signature string) (*domain.SignatureRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.composite[compositeKey(hash, signature)]
	if !ok {
		return nil, signeterrors.ErrRecordNotFound
	}
	rec := m.signatures[id]
	return &rec, nil
}

// ListSignatures implements ledger.Store.
func (m *MemoryStore) ListSignatures(ctx context.Context, identityID string) ([]*domain.SignatureRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.byIdentity[identityID]
	out := make([]*domain.SignatureRecord, 0, len(ids))
	for _, id := range ids {
		rec := m.signatures[id]
		out = append(out, &rec)
	}
	return out, nil
}

// AppendAttempt implements audit.Store.
func (m *MemoryStore) AppendAttempt(ctx context.Context, attempt domain.VerificationAttempt) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.attemptRows[attempt.RecordID] = append(m.attemptRows[attempt.RecordID], attempt)
	return nil
}

// CountAttempts implements audit.Store.
func (m *MemoryStore) CountAttempts(ctx context.Context, recordID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.attemptRows[recordID]), nil
}

// ListAttempts implements audit.Store.
func (m *MemoryStore) ListAttempts(ctx context.Context, recordID string) ([]domain.VerificationAttempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.attemptRows[recordID]), nil
}
