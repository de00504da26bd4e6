package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/signet/internal/constants"
	"github.com/mrz1836/signet/internal/crypto"
	"github.com/mrz1836/signet/internal/domain"
	signeterrors "github.com/mrz1836/signet/internal/errors"
	"github.com/mrz1836/signet/internal/identity"
)

// backends returns one fresh instance of every Backend.
func backends(t *testing.T) map[string]Backend {
	t.Helper()
	return map[string]Backend{
		BackendMemory: NewMemoryStore(),
		BackendFile:   NewFileStore(t.TempDir(), WithLockTimeout(10*time.Second)),
	}
}

var baseTime = time.Date(2025, 12, 27, 10, 0, 0, 0, time.UTC)

func newIdentityRecord(name string, offset time.Duration) *identity.Record {
	return &identity.Record{
		Identity: domain.Identity{
			ID:        identity.NewID(),
			Name:      name,
			PublicKey: crypto.PublicKey("pub-" + name),
			Algorithm: crypto.AlgorithmSHA256WithRSA,
			CreatedAt: baseTime.Add(offset),
		},
		PrivateKey: crypto.NewPrivateKey("priv-" + name),
	}
}

func newSignatureRecord(identityID, text string, offset time.Duration) *domain.SignatureRecord {
	return &domain.SignatureRecord{
		ID:         uuid.NewString(),
		IdentityID: identityID,
		Text:       text,
		Hash:       crypto.SHA256Hex([]byte(text)),
		Signature:  domain.EncodeSignature([]byte("sig/" + identityID + "/" + text)),
		Algorithm:  crypto.AlgorithmSHA256WithRSA,
		CreatedAt:  baseTime.Add(offset),
	}
}

func TestOpen(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		b, err := Open(BackendMemory, "", time.Second)
		require.NoError(t, err)
		assert.Equal(t, BackendMemory, b.Name())
	})

	t.Run("file", func(t *testing.T) {
		b, err := Open(BackendFile, t.TempDir(), time.Second)
		require.NoError(t, err)
		assert.Equal(t, BackendFile, b.Name())
	})

	t.Run("file without directory", func(t *testing.T) {
		_, err := Open(BackendFile, "", time.Second)
		require.ErrorIs(t, err, signeterrors.ErrConfigInvalidStorage)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := Open("postgres", "", time.Second)
		require.ErrorIs(t, err, signeterrors.ErrConfigInvalidStorage)
	})
}

func TestBackend_Identities(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			alice := newIdentityRecord("alice", 0)
			bob := newIdentityRecord("bob", time.Minute)

			require.NoError(t, b.InsertIdentity(ctx, bob))
			require.NoError(t, b.InsertIdentity(ctx, alice))

			got, err := b.GetIdentity(ctx, alice.Identity.ID)
			require.NoError(t, err)
			assert.Equal(t, alice.Identity, got.Identity)
			assert.Equal(t, "priv-alice", got.PrivateKey.Encoded())

			byName, err := b.FindIdentityByName(ctx, "bob")
			require.NoError(t, err)
			assert.Equal(t, bob.Identity.ID, byName.Identity.ID)

			_, err = b.GetIdentity(ctx, identity.NewID())
			require.ErrorIs(t, err, signeterrors.ErrIdentityNotFound)

			_, err = b.FindIdentityByName(ctx, "carol")
			require.ErrorIs(t, err, signeterrors.ErrIdentityNotFound)

			dup := newIdentityRecord("alice", 2*time.Minute)
			require.ErrorIs(t, b.InsertIdentity(ctx, dup), signeterrors.ErrIdentityExists)

			all, err := b.ListIdentities(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)

			names := []string{all[0].Identity.Name, all[1].Identity.Name}
			assert.ElementsMatch(t, []string{"alice", "bob"}, names)
		})
	}
}

func TestBackend_Signatures(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := newSignatureRecord("id-a", "first", 0)
			second := newSignatureRecord("id-a", "second", time.Second)
			other := newSignatureRecord("id-b", "first", 2*time.Second)

			for _, rec := range []*domain.SignatureRecord{first, second, other} {
				require.NoError(t, b.InsertSignature(ctx, rec))
			}

			got, err := b.GetSignature(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, *first, *got)

			found, err := b.FindSignature(ctx, other.Hash, other.Signature)
			require.NoError(t, err)
			assert.Equal(t, other.ID, found.ID)

			_, err = b.FindSignature(ctx, first.Hash, second.Signature)
			require.ErrorIs(t, err, signeterrors.ErrRecordNotFound)

			_, err = b.GetSignature(ctx, uuid.NewString())
			require.ErrorIs(t, err, signeterrors.ErrRecordNotFound)

			list, err := b.ListSignatures(ctx, "id-a")
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, first.ID, list[0].ID)
			assert.Equal(t, second.ID, list[1].ID)

			empty, err := b.ListSignatures(ctx, "id-nobody")
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

func TestBackend_SignatureUniqueness(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec := newSignatureRecord("id-a", "hello", 0)
			require.NoError(t, b.InsertSignature(ctx, rec))

			t.Run("same composite under a new id", func(t *testing.T) {
				clash := *rec
				clash.ID = uuid.NewString()
				clash.IdentityID = "id-b"
				require.ErrorIs(t, b.InsertSignature(ctx, &clash), signeterrors.ErrRecordExists)
			})

			t.Run("same id under a new composite", func(t *testing.T) {
				clash := *newSignatureRecord("id-a", "different", time.Second)
				clash.ID = rec.ID
				require.ErrorIs(t, b.InsertSignature(ctx, &clash), signeterrors.ErrRecordExists)
			})

			t.Run("failed inserts leave nothing behind", func(t *testing.T) {
				list, err := b.ListSignatures(ctx, "id-b")
				require.NoError(t, err)
				assert.Empty(t, list)
			})
		})
	}
}

func TestBackend_Attempts(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			recordID := uuid.NewString()

			count, err := b.CountAttempts(ctx, recordID)
			require.NoError(t, err)
			assert.Zero(t, count)

			for i := range 3 {
				require.NoError(t, b.AppendAttempt(ctx, domain.VerificationAttempt{
					ID:         fmt.Sprintf("att-%d", i),
					RecordID:   recordID,
					Origin:     "127.0.0.1",
					Valid:      i%2 == 0,
					VerifiedAt: baseTime.Add(time.Duration(i) * time.Second),
				}))

				count, err = b.CountAttempts(ctx, recordID)
				require.NoError(t, err)
				assert.Equal(t, i+1, count)
			}

			attempts, err := b.ListAttempts(ctx, recordID)
			require.NoError(t, err)
			require.Len(t, attempts, 3)
			assert.Equal(t, "att-0", attempts[0].ID)
			assert.Equal(t, "att-2", attempts[2].ID)
			assert.False(t, attempts[1].Valid)

			otherCount, err := b.CountAttempts(ctx, uuid.NewString())
			require.NoError(t, err)
			assert.Zero(t, otherCount)
		})
	}
}

func TestBackend_ConcurrentAppends(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			recordID := uuid.NewString()

			const writers = 10
			const perWriter = 5

			var wg sync.WaitGroup
			for w := range writers {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					for i := range perWriter {
						err := b.AppendAttempt(ctx, domain.VerificationAttempt{
							ID:         fmt.Sprintf("att-%d-%d", w, i),
							RecordID:   recordID,
							Valid:      true,
							VerifiedAt: time.Now().UTC(),
						})
						assert.NoError(t, err)
					}
				}(w)
			}
			wg.Wait()

			count, err := b.CountAttempts(ctx, recordID)
			require.NoError(t, err)
			assert.Equal(t, writers*perWriter, count)

			attempts, err := b.ListAttempts(ctx, recordID)
			require.NoError(t, err)
			assert.Len(t, attempts, writers*perWriter)
		})
	}
}

func TestBackend_CanceledContext(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := b.GetSignature(ctx, uuid.NewString())
			require.ErrorIs(t, err, context.Canceled)

			_, err = b.GetIdentity(ctx, identity.NewID())
			require.ErrorIs(t, err, context.Canceled)

			require.ErrorIs(t, b.Health(ctx), context.Canceled)
		})
	}
}

func TestFileStore_Layout(t *testing.T) {
	root := t.TempDir()
	fs := NewFileStore(root)
	ctx := context.Background()

	alice := newIdentityRecord("alice", 0)
	require.NoError(t, fs.InsertIdentity(ctx, alice))

	rec := newSignatureRecord(alice.Identity.ID, "hello", 0)
	require.NoError(t, fs.InsertSignature(ctx, rec))
	require.NoError(t, fs.AppendAttempt(ctx, domain.VerificationAttempt{ID: "att-1", RecordID: rec.ID, Valid: true}))

	t.Run("identity file keeps the private key", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(root, constants.IdentitiesDir, alice.Identity.ID+constants.JSONExt))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"private_key": "priv-alice"`)
		assert.Contains(t, string(data), `"schema_version": "1.0"`)
	})

	t.Run("record file and index entry exist", func(t *testing.T) {
		_, err := os.Stat(filepath.Join(root, constants.SignaturesDir, rec.ID+constants.JSONExt))
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(root, constants.IndexDir, indexName(rec.Hash, rec.Signature)))
		require.NoError(t, err)
		assert.Equal(t, rec.ID, string(data))
	})

	t.Run("attempt log has one line per attempt", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(root, constants.AttemptsDir, rec.ID+constants.JSONLExt))
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(string(data), "\n"))
	})

	t.Run("data survives reopening", func(t *testing.T) {
		reopened := NewFileStore(root)
		got, err := reopened.FindSignature(ctx, rec.Hash, rec.Signature)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)

		count, err := reopened.CountAttempts(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("health check passes", func(t *testing.T) {
		require.NoError(t, fs.Health(ctx))
	})
}

func TestFileStore_Corruption(t *testing.T) {
	root := t.TempDir()
	fs := NewFileStore(root)
	ctx := context.Background()
	require.NoError(t, fs.Init())

	t.Run("unparseable record", func(t *testing.T) {
		id := uuid.NewString()
		path := filepath.Join(root, constants.SignaturesDir, id+constants.JSONExt)
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		_, err := fs.GetSignature(ctx, id)
		require.ErrorIs(t, err, signeterrors.ErrStoreCorrupted)
	})

	t.Run("index pointing nowhere", func(t *testing.T) {
		hash := crypto.SHA256Hex([]byte("ghost"))
		path := filepath.Join(root, constants.IndexDir, indexName(hash, "c2ln"))
		require.NoError(t, os.WriteFile(path, []byte(uuid.NewString()), 0o600))

		_, err := fs.FindSignature(ctx, hash, "c2ln")
		require.ErrorIs(t, err, signeterrors.ErrStoreCorrupted)
	})

	t.Run("unparseable attempt line", func(t *testing.T) {
		id := uuid.NewString()
		path := filepath.Join(root, constants.AttemptsDir, id+constants.JSONLExt)
		require.NoError(t, os.WriteFile(path, []byte("garbage\n"), 0o600))

		_, err := fs.ListAttempts(ctx, id)
		require.ErrorIs(t, err, signeterrors.ErrStoreCorrupted)
	})
}

func TestFileStore_RejectsPathTraversal(t *testing.T) {
	fs := NewFileStore(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", ".", "..", "../escape", "a/b", `a\b`} {
		_, err := fs.GetSignature(ctx, id)
		require.ErrorIs(t, err, signeterrors.ErrRecordNotFound, id)

		_, err = fs.GetIdentity(ctx, id)
		require.ErrorIs(t, err, signeterrors.ErrIdentityNotFound, id)

		err = fs.AppendAttempt(ctx, domain.VerificationAttempt{RecordID: id})
		require.ErrorIs(t, err, signeterrors.ErrInvalidArgument, id)
	}
}

func TestValidKey(t *testing.T) {
	assert.True(t, validKey(uuid.NewString()))
	assert.True(t, validKey(identity.NewID()))
	assert.False(t, validKey("x.lock"))
	assert.False(t, validKey("a\x00b"))
}
