package storage

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/dropbox/godropbox/time2"
	"github.com/kashguard/go-sigauth/internal/sig"
	"github.com/kashguard/go-sigauth/internal/sig/keys"
	"github.com/kashguard/go-sigauth/internal/sig/replay"
	"github.com/pkg/errors"
)

// PostgresNonceStore implements replay.NonceStore on a shared PostgreSQL
// instance so any number of verifying processes agree on nonce
// uniqueness.
type PostgresNonceStore struct {
	db    *sql.DB
	clock time2.Clock
}

var _ replay.NonceStore = (*PostgresNonceStore)(nil)

// NewPostgresNonceStore creates a PostgreSQL-backed nonce store.
func NewPostgresNonceStore(db *sql.DB, clock time2.Clock) *PostgresNonceStore {
	return &PostgresNonceStore{db: db, clock: clock}
}

// InsertIfAbsent consumes a nonce key in a single atomic statement. The
// ON CONFLICT clause reclaims rows whose TTL already lapsed, so an
// expired nonce behaves exactly like an absent one. First committer
// wins: of concurrent calls for the same key, exactly one statement
// reports an affected row.
func (s *PostgresNonceStore) InsertIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	now := s.clock.Now()

	query := `
		INSERT INTO consumed_nonces (nonce_key, first_seen_at, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (nonce_key) DO UPDATE
		SET first_seen_at = EXCLUDED.first_seen_at, expires_at = EXCLUDED.expires_at
		WHERE consumed_nonces.expires_at <= $2
	`
	result, err := s.db.ExecContext(ctx, query, key, now, now.Add(ttl))
	if err != nil {
		return false, errors.Wrap(err, "failed to insert nonce record")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "failed to get rows affected")
	}

	return affected > 0, nil
}

// DeleteExpired reaps lapsed nonce records. Expiry is enforced by the
// insert statement regardless; this only keeps the table small.
func (s *PostgresNonceStore) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM consumed_nonces WHERE expires_at <= $1`, s.clock.Now())
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete expired nonce records")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get rows affected")
	}

	return affected, nil
}

// PostgresKeyRegistry implements keys.Resolver against a signing_keys
// table shared by all verifying processes.
type PostgresKeyRegistry struct {
	db *sql.DB
}

var _ keys.Resolver = (*PostgresKeyRegistry)(nil)

// NewPostgresKeyRegistry creates a PostgreSQL-backed key registry.
func NewPostgresKeyRegistry(db *sql.DB) *PostgresKeyRegistry {
	return &PostgresKeyRegistry{db: db}
}

func (r *PostgresKeyRegistry) Resolve(ctx context.Context, keyID string) (ed25519.PublicKey, error) {
	query := `
		SELECT public_key, disabled_at
		FROM signing_keys
		WHERE key_id = $1
	`

	var publicKey []byte
	var disabledAt null.Time
	err := r.db.QueryRowContext(ctx, query, keyID).Scan(&publicKey, &disabledAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(sig.ErrUnknownKey, "keyid %q", keyID)
		}
		return nil, errors.Wrap(err, "failed to resolve signing key")
	}

	if disabledAt.Valid {
		return nil, errors.Wrapf(sig.ErrUnknownKey, "keyid %q disabled at %s", keyID, disabledAt.Time)
	}
	if len(publicKey) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(sig.ErrUnknownKey, "keyid %q has malformed key material", keyID)
	}

	return ed25519.PublicKey(publicKey), nil
}

// SaveSigningKey registers or replaces a public key.
func (r *PostgresKeyRegistry) SaveSigningKey(ctx context.Context, keyID string, publicKey ed25519.PublicKey, description string) error {
	if len(publicKey) != ed25519.PublicKeySize {
		return errors.Errorf("public key must be %d bytes", ed25519.PublicKeySize)
	}

	desc := null.String{}
	if description != "" {
		desc = null.StringFrom(description)
	}

	query := `
		INSERT INTO signing_keys (key_id, public_key, description, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (key_id) DO UPDATE
		SET public_key = EXCLUDED.public_key, description = EXCLUDED.description
	`
	if _, err := r.db.ExecContext(ctx, query, keyID, []byte(publicKey), desc); err != nil {
		return errors.Wrap(err, "failed to save signing key")
	}

	return nil
}

// DisableSigningKey marks a key as no longer valid for verification.
func (r *PostgresKeyRegistry) DisableSigningKey(ctx context.Context, keyID string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE signing_keys SET disabled_at = now() WHERE key_id = $1`, keyID)
	if err != nil {
		return errors.Wrap(err, "failed to disable signing key")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return errors.Wrapf(sig.ErrUnknownKey, "keyid %q", keyID)
	}

	return nil
}
