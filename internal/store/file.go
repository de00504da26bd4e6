package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/mrz1836/signet/internal/constants"
	"github.com/mrz1836/signet/internal/crypto"
	"github.com/mrz1836/signet/internal/domain"
	signeterrors "github.com/mrz1836/signet/internal/errors"
	"github.com/mrz1836/signet/internal/flock"
	"github.com/mrz1836/signet/internal/identity"
)

// FileStore implements Backend with JSON files under a root directory:
//
//	<root>/identities/<id>.json
//	<root>/signatures/<record-id>.json
//	<root>/index/<hash>-<sha256(signature)>   (contains the record id)
//	<root>/attempts/<record-id>.jsonl         (one attempt per line)
//
// Lock files sit beside what they guard: identities.lock and index.lock in
// the root, <record-id>.jsonl.lock next to each attempt log.
//
// Identity and signature files are written once via temp file + rename and
// never rewritten, so readers need no lock. Creation and attempt appends run
// under flock so concurrent processes cannot interleave.
type FileStore struct {
	root        string
	lockTimeout time.Duration
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithLockTimeout sets a custom lock timeout. Non-positive values keep the default.
func WithLockTimeout(timeout time.Duration) FileStoreOption {
	return func(fs *FileStore) {
		if timeout > 0 {
			fs.lockTimeout = timeout
		}
	}
}

// NewFileStore creates a FileStore rooted at root. Directories are created
// on first write.
func NewFileStore(root string, opts ...FileStoreOption) *FileStore {
	fs := &FileStore{
		root:        root,
		lockTimeout: constants.DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

// identityFile is the on-disk identity document. It is the only place the
// private key is serialized.
type identityFile struct {
	SchemaVersion string `json:"schema_version"`
	domain.Identity
	PrivateKey string `json:"private_key"`
}

// signatureFile is the on-disk signature record document.
type signatureFile struct {
	SchemaVersion string `json:"schema_version"`
	domain.SignatureRecord
}

// Name implements Backend.
func (fs *FileStore) Name() string {
	return BackendFile
}

// Root returns the data directory.
func (fs *FileStore) Root() string {
	return fs.root
}

// Init creates the directory layout.
func (fs *FileStore) Init() error {
	for _, dir := range []string{constants.IdentitiesDir, constants.SignaturesDir, constants.IndexDir, constants.AttemptsDir} {
		if err := os.MkdirAll(filepath.Join(fs.root, dir), 0o700); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return nil
}

// Health implements Backend. It checks that the data directory exists and
// accepts writes.
func (fs *FileStore) Health(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fs.Init(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(fs.root, ".health-*")
	if err != nil {
		return fmt.Errorf("data directory not writable: %w", err)
	}
	name := tmp.Name()
	_ = tmp.Close()
	return os.Remove(name)
}

// InsertIdentity implements identity.Store. Name uniqueness is checked and
// the file written under one directory-wide lock.
func (fs *FileStore) InsertIdentity(ctx context.Context, rec *identity.Record) error {
	if !validKey(rec.Identity.ID) {
		return fmt.Errorf("%w: invalid identity id %q", signeterrors.ErrInvalidArgument, rec.Identity.ID)
	}

	dir := filepath.Join(fs.root, constants.IdentitiesDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	lock := flock.New(dir + constants.LockExt)
	if err := lock.Acquire(ctx, fs.lockTimeout); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer func() { _ = lock.Release() }()

	path := fs.identityPath(rec.Identity.ID)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: id %s", signeterrors.ErrIdentityExists, rec.Identity.ID)
	}

	existing, err := fs.readIdentities()
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.Identity.Name == rec.Identity.Name {
			return fmt.Errorf("%w: name %q", signeterrors.ErrIdentityExists, rec.Identity.Name)
		}
	}

	data, err := json.MarshalIndent(identityFile{
		SchemaVersion: constants.StoreSchemaVersion,
		Identity:      rec.Identity,
		PrivateKey:    rec.PrivateKey.Encoded(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	if err := atomicWrite(path, data); err != nil {
		return fmt.Errorf("failed to write identity file: %w", err)
	}
	return nil
}

// GetIdentity implements identity.Store.
func (fs *FileStore) GetIdentity(ctx context.Context, id string) (*identity.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validKey(id) {
		return nil, fmt.Errorf("%w: %s", signeterrors.ErrIdentityNotFound, id)
	}

	rec, err := readIdentityFile(fs.identityPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", signeterrors.ErrIdentityNotFound, id)
	}
	return rec, err
}

// FindIdentityByName implements identity.Store.
func (fs *FileStore) FindIdentityByName(ctx context.Context, name string) (*identity.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	recs, err := fs.readIdentities()
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if rec.Identity.Name == name {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", signeterrors.ErrIdentityNotFound, name)
}

// ListIdentities implements identity.Store.
func (fs *FileStore) ListIdentities(ctx context.Context) ([]*identity.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fs.readIdentities()
}

// InsertSignature implements ledger.Store. The record file and its index
// entry are written under the index lock. The index entry goes last so a
// composite lookup never sees a missing record.
func (fs *FileStore) InsertSignature(ctx context.Context, rec *domain.SignatureRecord) error {
	if !validKey(rec.ID) {
		return fmt.Errorf("%w: invalid record id %q", signeterrors.ErrInvalidArgument, rec.ID)
	}

	for _, dir := range []string{constants.SignaturesDir, constants.IndexDir} {
		if err := os.MkdirAll(filepath.Join(fs.root, dir), 0o700); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	lock := flock.New(filepath.Join(fs.root, constants.IndexDir+constants.LockExt))
	if err := lock.Acquire(ctx, fs.lockTimeout); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer func() { _ = lock.Release() }()

	indexPath := fs.indexPath(rec.Hash, rec.Signature)
	if _, err := os.Stat(indexPath); err == nil {
		return fmt.Errorf("%w: hash %s", signeterrors.ErrRecordExists, rec.Hash)
	}

	recordPath := fs.signaturePath(rec.ID)
	if _, err := os.Stat(recordPath); err == nil {
		return fmt.Errorf("%w: id %s", signeterrors.ErrRecordExists, rec.ID)
	}

	data, err := json.MarshalIndent(signatureFile{
		SchemaVersion:   constants.StoreSchemaVersion,
		SignatureRecord: *rec,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal signature record: %w", err)
	}

	if err := atomicWrite(recordPath, data); err != nil {
		return fmt.Errorf("failed to write signature file: %w", err)
	}
	if err := atomicWrite(indexPath, []byte(rec.ID)); err != nil {
		_ = os.Remove(recordPath)
		return fmt.Errorf("failed to write index entry: %w", err)
	}
	return nil
}

// GetSignature implements ledger.Store.
func (fs *FileStore) GetSignature(ctx context.Context, id string) (*domain.SignatureRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validKey(id) {
		return nil, fmt.Errorf("%w: %s", signeterrors.ErrRecordNotFound, id)
	}

	rec, err := readSignatureFile(fs.signaturePath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", signeterrors.ErrRecordNotFound, id)
	}
	return rec, err
}

// FindSignature implements ledger.Store.
func (fs *FileStore) FindSignature(ctx context.Context, hash, signature string) (*domain.SignatureRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validKey(hash) {
		return nil, signeterrors.ErrRecordNotFound
	}

	data, err := os.ReadFile(fs.indexPath(hash, signature))
	if errors.Is(err, os.ErrNotExist) {
		return nil, signeterrors.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index entry: %w", err)
	}

	rec, err := fs.GetSignature(ctx, strings.TrimSpace(string(data)))
	if err != nil {
		if errors.Is(err, signeterrors.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: index points at missing record", signeterrors.ErrStoreCorrupted)
		}
		return nil, err
	}

	// Guards against a digest collision on the signature part of the file name.
	if rec.Hash != hash || rec.Signature != signature {
		return nil, signeterrors.ErrRecordNotFound
	}
	return rec, nil
}

// ListSignatures implements ledger.Store. Records are returned in creation order.
func (fs *FileStore) ListSignatures(ctx context.Context, identityID string) ([]*domain.SignatureRecord, error) {
	dir := filepath.Join(fs.root, constants.SignaturesDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []*domain.SignatureRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list signatures: %w", err)
	}

	out := make([]*domain.SignatureRecord, 0)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || filepath.Ext(entry.Name()) != constants.JSONExt {
			continue
		}
		rec, err := readSignatureFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if rec.IdentityID == identityID {
			out = append(out, rec)
		}
	}

	slices.SortFunc(out, func(a, b *domain.SignatureRecord) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// AppendAttempt implements audit.Store.
func (fs *FileStore) AppendAttempt(ctx context.Context, attempt domain.VerificationAttempt) error {
	if !validKey(attempt.RecordID) {
		return fmt.Errorf("%w: invalid record id %q", signeterrors.ErrInvalidArgument, attempt.RecordID)
	}

	dir := filepath.Join(fs.root, constants.AttemptsDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	line, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("failed to marshal attempt: %w", err)
	}
	line = append(line, '\n')

	path := fs.attemptsPath(attempt.RecordID)
	lock := flock.New(path + constants.LockExt)
	if err := lock.Acquire(ctx, fs.lockTimeout); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer func() { _ = lock.Release() }()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600) //nolint:gosec // path is built from a validated record id
	if err != nil {
		return fmt.Errorf("failed to open attempt log: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append attempt: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync attempt log: %w", err)
	}
	return f.Close()
}

// CountAttempts implements audit.Store. The count is taken under the same
// lock appends use, so it includes every append that has returned.
func (fs *FileStore) CountAttempts(ctx context.Context, recordID string) (int, error) {
	data, err := fs.readAttemptLog(ctx, recordID)
	if err != nil {
		return 0, err
	}
	return bytes.Count(data, []byte{'\n'}), nil
}

// ListAttempts implements audit.Store.
func (fs *FileStore) ListAttempts(ctx context.Context, recordID string) ([]domain.VerificationAttempt, error) {
	data, err := fs.readAttemptLog(ctx, recordID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.VerificationAttempt, 0)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if len(bytes.TrimSpace(scanner.Bytes())) == 0 {
			continue
		}
		var attempt domain.VerificationAttempt
		if err := json.Unmarshal(scanner.Bytes(), &attempt); err != nil {
			return nil, fmt.Errorf("%w: attempt log for %s: %w", signeterrors.ErrStoreCorrupted, recordID, err)
		}
		out = append(out, attempt)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attempt log: %w", err)
	}
	return out, nil
}

func (fs *FileStore) readAttemptLog(ctx context.Context, recordID string) ([]byte, error) {
	if !validKey(recordID) {
		return nil, nil
	}

	path := fs.attemptsPath(recordID)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, nil
	}

	lock := flock.New(path + constants.LockExt)
	if err := lock.Acquire(ctx, fs.lockTimeout); err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer func() { _ = lock.Release() }()

	data, err := os.ReadFile(path) //nolint:gosec // path is built from a validated record id
	if err != nil {
		return nil, fmt.Errorf("failed to read attempt log: %w", err)
	}
	return data, nil
}

func (fs *FileStore) readIdentities() ([]*identity.Record, error) {
	dir := filepath.Join(fs.root, constants.IdentitiesDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []*identity.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}

	out := make([]*identity.Record, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != constants.JSONExt {
			continue
		}
		rec, err := readIdentityFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	slices.SortFunc(out, func(a, b *identity.Record) int {
		if c := a.Identity.CreatedAt.Compare(b.Identity.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Identity.ID, b.Identity.ID)
	})
	return out, nil
}

func (fs *FileStore) identityPath(id string) string {
	return filepath.Join(fs.root, constants.IdentitiesDir, id+constants.JSONExt)
}

func (fs *FileStore) signaturePath(id string) string {
	return filepath.Join(fs.root, constants.SignaturesDir, id+constants.JSONExt)
}

func (fs *FileStore) indexPath(hash, signature string) string {
	return filepath.Join(fs.root, constants.IndexDir, indexName(hash, signature))
}

func (fs *FileStore) attemptsPath(recordID string) string {
	return filepath.Join(fs.root, constants.AttemptsDir, recordID+constants.JSONLExt)
}

func readIdentityFile(path string) (*identity.Record, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is built by FileStore
	if err != nil {
		return nil, err
	}

	var doc identityFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", signeterrors.ErrStoreCorrupted, filepath.Base(path), err)
	}
	return &identity.Record{
		Identity:   doc.Identity,
		PrivateKey: crypto.NewPrivateKey(doc.PrivateKey),
	}, nil
}

func readSignatureFile(path string) (*domain.SignatureRecord, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is built by FileStore
	if err != nil {
		return nil, err
	}

	var doc signatureFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", signeterrors.ErrStoreCorrupted, filepath.Base(path), err)
	}
	return &doc.SignatureRecord, nil
}

// atomicWrite writes data to a file atomically using temp file + rename.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func sha256Hex(s string) string {
	return crypto.SHA256Hex([]byte(s))
}
