package notary_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/signet/internal/audit"
	"github.com/mrz1836/signet/internal/crypto"
	"github.com/mrz1836/signet/internal/crypto/native"
	"github.com/mrz1836/signet/internal/domain"
	signeterrors "github.com/mrz1836/signet/internal/errors"
	"github.com/mrz1836/signet/internal/identity"
	"github.com/mrz1836/signet/internal/ledger"
	"github.com/mrz1836/signet/internal/notary"
	"github.com/mrz1836/signet/internal/store"
	"github.com/mrz1836/signet/internal/testutil"
)

type env struct {
	notary  *notary.Notary
	backend store.Backend
}

func newEnv(t *testing.T, backend store.Backend) *env {
	t.Helper()
	engine := native.NewEngine(crypto.AlgorithmSHA256WithRSA)
	registry := identity.NewRegistry(backend, testutil.NewStaticKeys(t))
	return &env{
		notary:  notary.New(registry, ledger.New(backend, engine), audit.New(backend), engine, notary.WithParallelism(3)),
		backend: backend,
	}
}

func backends(t *testing.T) map[string]store.Backend {
	t.Helper()
	return map[string]store.Backend{
		store.BackendMemory: store.NewMemoryStore(),
		store.BackendFile:   store.NewFileStore(t.TempDir(), store.WithLockTimeout(10*time.Second)),
	}
}

var origin = domain.Origin{Address: "192.0.2.10", Agent: "signet-test/1.0"}

func TestNotary_AliceEndToEnd(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e := newEnv(t, backend)

			alice, err := e.notary.CreateIdentity(ctx, "Alice")
			require.NoError(t, err)

			rec, err := e.notary.Sign(ctx, "Alice", "hello world")
			require.NoError(t, err)
			assert.Equal(t, crypto.SHA256Hex([]byte("hello world")), rec.Hash)
			assert.Equal(t, "SHA-256 with RSA", rec.Algorithm.String())
			assert.Equal(t, alice.ID, rec.IdentityID)

			first, err := e.notary.VerifyByID(ctx, rec.ID, origin)
			require.NoError(t, err)
			assert.True(t, first.Valid)
			assert.Equal(t, 1, first.Count)
			assert.Equal(t, "Alice", first.Signatory)
			assert.Equal(t, "valid", first.Status())
			assert.Equal(t, "hello world", first.Record.Text)

			second, err := e.notary.VerifyByID(ctx, rec.ID, origin)
			require.NoError(t, err)
			assert.True(t, second.Valid)
			assert.Equal(t, 2, second.Count)

			byText, err := e.notary.VerifyByText(ctx, "hello world", rec.Signature, origin)
			require.NoError(t, err)
			assert.True(t, byText.Valid)
			assert.Equal(t, rec.ID, byText.Record.ID)
			assert.Equal(t, 3, byText.Count)

			_, err = e.notary.VerifyByText(ctx, "hello world!", rec.Signature, origin)
			require.ErrorIs(t, err, signeterrors.ErrRecordNotFound)

			attempts, err := e.notary.Attempts(ctx, rec.ID)
			require.NoError(t, err)
			require.Len(t, attempts, 3)
			assert.Equal(t, byText.AttemptID, attempts[0].ID)
			assert.Equal(t, "192.0.2.10", attempts[0].Origin)
			assert.Equal(t, "signet-test/1.0", attempts[0].Agent)
		})
	}
}

func TestNotary_CountMonotonicity(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e := newEnv(t, backend)

			_, err := e.notary.CreateIdentity(ctx, "counter")
			require.NoError(t, err)
			rec, err := e.notary.Sign(ctx, "counter", "count me")
			require.NoError(t, err)

			for want := 1; want <= 10; want++ {
				v, err := e.notary.VerifyByID(ctx, rec.ID, domain.Origin{})
				require.NoError(t, err)
				assert.Equal(t, want, v.Count)
			}
		})
	}
}

func TestNotary_TextSurvivesStorage(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e := newEnv(t, backend)

			_, err := e.notary.CreateIdentity(ctx, "writer")
			require.NoError(t, err)

			t.Run("multi-byte text round-trips and verifies", func(t *testing.T) {
				text := "café ✓ 署名\n"
				rec, err := e.notary.Sign(ctx, "writer", text)
				require.NoError(t, err)

				v, err := e.notary.VerifyByID(ctx, rec.ID, origin)
				require.NoError(t, err)
				assert.True(t, v.Valid)
				assert.Equal(t, text, v.Record.Text)
			})

			t.Run("invalid UTF-8 is refused without a record", func(t *testing.T) {
				_, err := e.notary.Sign(ctx, "writer", "caf\xe9")
				require.ErrorIs(t, err, signeterrors.ErrInvalidArgument)

				_, err = e.notary.VerifyByText(ctx, "caf\xe9", "AAAA", origin)
				require.ErrorIs(t, err, signeterrors.ErrRecordNotFound)
			})
		})
	}
}

func TestNotary_NotFoundIsDistinctFromInvalid(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryStore()
	e := newEnv(t, backend)

	owner, err := e.notary.CreateIdentity(ctx, "owner")
	require.NoError(t, err)

	t.Run("unknown id", func(t *testing.T) {
		_, err := e.notary.VerifyByID(ctx, uuid.NewString(), origin)
		require.ErrorIs(t, err, signeterrors.ErrRecordNotFound)
	})

	t.Run("unknown pair", func(t *testing.T) {
		_, err := e.notary.VerifyByText(ctx, "never signed", "c2lnbmF0dXJl", origin)
		require.ErrorIs(t, err, signeterrors.ErrRecordNotFound)
	})

	t.Run("found but invalid", func(t *testing.T) {
		forged := &domain.SignatureRecord{
			ID:         uuid.NewString(),
			IdentityID: owner.ID,
			Text:       "forged",
			Hash:       crypto.SHA256Hex([]byte("forged")),
			Signature:  domain.EncodeSignature(make([]byte, 256)),
			Algorithm:  crypto.AlgorithmSHA256WithRSA,
			CreatedAt:  time.Now().UTC(),
		}
		require.NoError(t, backend.InsertSignature(ctx, forged))

		v, err := e.notary.VerifyByID(ctx, forged.ID, origin)
		require.NoError(t, err)
		assert.False(t, v.Valid)
		assert.Equal(t, "invalid", v.Status())
		assert.Equal(t, 1, v.Count)
		assert.Equal(t, "owner", v.Signatory)

		attempts, err := e.notary.Attempts(ctx, forged.ID)
		require.NoError(t, err)
		require.Len(t, attempts, 1)
		assert.False(t, attempts[0].Valid)
	})

	t.Run("tampered stored text is invalid", func(t *testing.T) {
		rec, err := e.notary.Sign(ctx, "owner", "original")
		require.NoError(t, err)

		tampered := *rec
		tampered.ID = uuid.NewString()
		tampered.Text = "altered"
		tampered.Signature = domain.EncodeSignature([]byte("different-key-for-index"))
		require.NoError(t, backend.InsertSignature(ctx, &tampered))

		v, err := e.notary.VerifyByID(ctx, tampered.ID, origin)
		require.NoError(t, err)
		assert.False(t, v.Valid)
	})

	t.Run("record without owner is invalid", func(t *testing.T) {
		orphan := &domain.SignatureRecord{
			ID:         uuid.NewString(),
			IdentityID: identity.NewID(),
			Text:       "orphan",
			Hash:       crypto.SHA256Hex([]byte("orphan")),
			Signature:  domain.EncodeSignature([]byte("x")),
			Algorithm:  crypto.AlgorithmSHA256WithRSA,
			CreatedAt:  time.Now().UTC(),
		}
		require.NoError(t, backend.InsertSignature(ctx, orphan))

		v, err := e.notary.VerifyByID(ctx, orphan.ID, origin)
		require.NoError(t, err)
		assert.False(t, v.Valid)
		assert.Empty(t, v.Signatory)
	})
}

func TestNotary_Sign(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, store.NewMemoryStore())

	_, err := e.notary.CreateIdentity(ctx, "signer")
	require.NoError(t, err)

	t.Run("unknown credential", func(t *testing.T) {
		_, err := e.notary.Sign(ctx, "stranger", "text")
		require.ErrorIs(t, err, signeterrors.ErrIdentityUnresolved)
	})

	t.Run("empty text", func(t *testing.T) {
		_, err := e.notary.Sign(ctx, "signer", "")
		require.ErrorIs(t, err, signeterrors.ErrEmptyText)
	})
}

// fixedResolver resolves every credential to one signer.
type fixedResolver struct {
	signer *identity.Signer
}

func (r fixedResolver) Resolve(context.Context, string) (*identity.Signer, error) {
	return r.signer, nil
}

func TestNotary_WithResolver(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryStore()
	engine := native.NewEngine(crypto.AlgorithmSHA256WithRSA)
	registry := identity.NewRegistry(backend, testutil.NewStaticKeys(t))

	svc, err := registry.Create(ctx, "service")
	require.NoError(t, err)
	signer, err := registry.Resolve(ctx, svc.ID)
	require.NoError(t, err)

	n := notary.New(registry, ledger.New(backend, engine), audit.New(backend), engine,
		notary.WithResolver(fixedResolver{signer: signer}))

	rec, err := n.Sign(ctx, "bearer-token-xyz", "delegated")
	require.NoError(t, err)
	assert.Equal(t, svc.ID, rec.IdentityID)
}

func TestNotary_History(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, store.NewMemoryStore())

	_, err := e.notary.CreateIdentity(ctx, "writer")
	require.NoError(t, err)

	var ids []string
	for _, text := range []string{"draft", "revision", "final"} {
		rec, err := e.notary.Sign(ctx, "writer", text)
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	history, err := e.notary.History(ctx, "writer")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, ids[2], history[0].ID)
	assert.Equal(t, ids[0], history[2].ID)

	_, err = e.notary.History(ctx, "nobody")
	require.ErrorIs(t, err, signeterrors.ErrIdentityUnresolved)
}

func TestNotary_VerifyMany(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, store.NewMemoryStore())

	_, err := e.notary.CreateIdentity(ctx, "batch")
	require.NoError(t, err)

	var ids []string
	for _, text := range []string{"one", "two", "three", "four"} {
		rec, err := e.notary.Sign(ctx, "batch", text)
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}
	missing := uuid.NewString()
	ids = append(ids, missing)

	results, err := e.notary.VerifyMany(ctx, ids, origin)
	require.NoError(t, err)
	require.Len(t, results, len(ids))

	for i, res := range results {
		assert.Equal(t, ids[i], res.ID)
		if res.ID == missing {
			require.ErrorIs(t, res.Err, signeterrors.ErrRecordNotFound)
			assert.Nil(t, res.Verification)
			continue
		}
		require.NoError(t, res.Err)
		assert.True(t, res.Verification.Valid)
		assert.Equal(t, 1, res.Verification.Count)
	}

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := e.notary.VerifyMany(cctx, ids, origin)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestNotary_ConcurrentVerifications(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e := newEnv(t, backend)

			_, err := e.notary.CreateIdentity(ctx, "popular")
			require.NoError(t, err)
			rec, err := e.notary.Sign(ctx, "popular", "widely checked")
			require.NoError(t, err)

			const n = 20
			counts := make([]int, n)
			var wg sync.WaitGroup
			for i := range n {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					v, err := e.notary.VerifyByID(ctx, rec.ID, domain.Origin{})
					if assert.NoError(t, err) {
						counts[i] = v.Count
					}
				}(i)
			}
			wg.Wait()

			for _, c := range counts {
				assert.GreaterOrEqual(t, c, 1)
				assert.LessOrEqual(t, c, n)
			}

			attempts, err := e.notary.Attempts(ctx, rec.ID)
			require.NoError(t, err)
			assert.Len(t, attempts, n)
		})
	}
}
