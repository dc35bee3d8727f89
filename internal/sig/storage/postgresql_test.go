package storage_test

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	sigerrors "github.com/kashguard/go-sigauth/internal/sig"
	"github.com/kashguard/go-sigauth/internal/sig/storage"
	"github.com/kashguard/go-sigauth/internal/test"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresNonceStore_InsertIfAbsent(t *testing.T) {
	test.WithTestDatabase(t, func(db *sql.DB) {
		ctx := context.Background()
		clock := time2.NewMockClock(time.Now())
		store := storage.NewPostgresNonceStore(db, clock)

		inserted, err := store.InsertIfAbsent(ctx, "k1:nonce-1", 5*time.Minute)
		require.NoError(t, err)
		assert.True(t, inserted)

		inserted, err = store.InsertIfAbsent(ctx, "k1:nonce-1", 5*time.Minute)
		require.NoError(t, err)
		assert.False(t, inserted)

		// a different key is a different slot
		inserted, err = store.InsertIfAbsent(ctx, "k2:nonce-1", 5*time.Minute)
		require.NoError(t, err)
		assert.True(t, inserted)
	})
}

func TestPostgresNonceStore_ExpiredSlotIsReclaimed(t *testing.T) {
	test.WithTestDatabase(t, func(db *sql.DB) {
		ctx := context.Background()
		clock := time2.NewMockClock(time.Now())
		store := storage.NewPostgresNonceStore(db, clock)

		inserted, err := store.InsertIfAbsent(ctx, "k1:nonce-1", time.Minute)
		require.NoError(t, err)
		require.True(t, inserted)

		clock.Advance(2 * time.Minute)

		inserted, err = store.InsertIfAbsent(ctx, "k1:nonce-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, inserted)
	})
}

func TestPostgresNonceStore_ConcurrentInsertHasOneWinner(t *testing.T) {
	test.WithTestDatabase(t, func(db *sql.DB) {
		ctx := context.Background()
		clock := time2.NewMockClock(time.Now())
		store := storage.NewPostgresNonceStore(db, clock)

		const workers = 16

		var wg sync.WaitGroup
		results := make(chan bool, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				inserted, err := store.InsertIfAbsent(ctx, "k1:contested", 5*time.Minute)
				assert.NoError(t, err)
				results <- inserted
			}()
		}

		wg.Wait()
		close(results)

		winners := 0
		for inserted := range results {
			if inserted {
				winners++
			}
		}
		assert.Equal(t, 1, winners)
	})
}

func TestPostgresNonceStore_DeleteExpired(t *testing.T) {
	test.WithTestDatabase(t, func(db *sql.DB) {
		ctx := context.Background()
		clock := time2.NewMockClock(time.Now())
		store := storage.NewPostgresNonceStore(db, clock)

		_, err := store.InsertIfAbsent(ctx, "k1:old", time.Minute)
		require.NoError(t, err)
		_, err = store.InsertIfAbsent(ctx, "k1:fresh", time.Hour)
		require.NoError(t, err)

		clock.Advance(5 * time.Minute)

		deleted, err := store.DeleteExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
	})
}

func TestPostgresKeyRegistry_SaveAndResolve(t *testing.T) {
	test.WithTestDatabase(t, func(db *sql.DB) {
		ctx := context.Background()
		registry := storage.NewPostgresKeyRegistry(db)

		publicKey := ed25519.PublicKey(bytes.Repeat([]byte{0x01}, ed25519.PublicKeySize))
		require.NoError(t, registry.SaveSigningKey(ctx, "k1", publicKey, "partner key"))

		resolved, err := registry.Resolve(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, publicKey, resolved)

		_, err = registry.Resolve(ctx, "unknown")
		require.Error(t, err)
		assert.True(t, errors.Is(err, sigerrors.ErrUnknownKey))
	})
}

func TestPostgresKeyRegistry_DisabledKeyDoesNotResolve(t *testing.T) {
	test.WithTestDatabase(t, func(db *sql.DB) {
		ctx := context.Background()
		registry := storage.NewPostgresKeyRegistry(db)

		publicKey := ed25519.PublicKey(bytes.Repeat([]byte{0x01}, ed25519.PublicKeySize))
		require.NoError(t, registry.SaveSigningKey(ctx, "k1", publicKey, ""))
		require.NoError(t, registry.DisableSigningKey(ctx, "k1"))

		_, err := registry.Resolve(ctx, "k1")
		require.Error(t, err)
		assert.True(t, errors.Is(err, sigerrors.ErrUnknownKey))

		// disabling an unknown key reports it
		err = registry.DisableSigningKey(ctx, "ghost")
		require.Error(t, err)
		assert.True(t, errors.Is(err, sigerrors.ErrUnknownKey))
	})
}
