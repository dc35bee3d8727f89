package api

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/kashguard/go-sigauth/internal/config"
	"github.com/kashguard/go-sigauth/internal/sig/audit"
	"github.com/kashguard/go-sigauth/internal/sig/keys"
	"github.com/kashguard/go-sigauth/internal/sig/policy"
	"github.com/kashguard/go-sigauth/internal/sig/replay"
	"github.com/kashguard/go-sigauth/internal/sig/signing"
	"github.com/kashguard/go-sigauth/internal/sig/storage"
	"github.com/kashguard/go-sigauth/internal/sig/verification"
)

// PROVIDERS - define here only providers that for various reasons (e.g. cyclic dependency) can't live in their corresponding packages
// or for wrapping providers that only accept sub-configs to prevent the requirements for defining providers for sub-configs.
// https://github.com/google/wire/blob/main/docs/guide.md#defining-providers

func NewClock(t ...*testing.T) time2.Clock {
	var clock time2.Clock

	useMock := len(t) > 0 && t[0] != nil

	if useMock {
		clock = time2.NewMockClock(time.Now())
	} else {
		clock = time2.DefaultClock
	}

	return clock
}

func NoTest() []*testing.T {
	return nil
}

// NewDB opens the shared database when the postgresql backend is active;
// the memory backend runs without one.
func NewDB(cfg config.Server) (*sql.DB, error) {
	if cfg.Sig.StorageBackend != "postgresql" {
		return nil, nil
	}
	return sql.Open("postgres", cfg.Database.ConnectionString())
}

// NewPolicySet loads the verification policies, layering the configured
// policy file over the built-ins when one is set.
func NewPolicySet(cfg config.Server) (*policy.Set, error) {
	if cfg.Sig.PoliciesFile != "" {
		return policy.LoadFile(cfg.Sig.PoliciesFile)
	}
	return policy.DefaultSet(), nil
}

// NewKeyRegistry creates the key registry based on configuration.
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewKeyRegistry(cfg config.Server, db *sql.DB) (keys.Resolver, error) {
	switch cfg.Sig.StorageBackend {
	case "postgresql":
		return storage.NewPostgresKeyRegistry(db), nil
	case "memory":
		if cfg.Sig.KeyRegistryFile != "" {
			return keys.LoadRegistryFile(cfg.Sig.KeyRegistryFile)
		}
		return keys.NewStaticRegistry(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Sig.StorageBackend)
	}
}

// NewKeyring loads the private signing seeds available to the sign
// endpoint.
func NewKeyring(cfg config.Server) (*keys.Keyring, error) {
	if cfg.Sig.KeyringFile != "" {
		return keys.LoadKeyringFile(cfg.Sig.KeyringFile)
	}
	return keys.NewKeyring(), nil
}

// NewNonceStore creates the shared nonce store based on configuration.
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewNonceStore(cfg config.Server, db *sql.DB, clock time2.Clock) (replay.NonceStore, error) {
	switch cfg.Sig.StorageBackend {
	case "postgresql":
		return storage.NewPostgresNonceStore(db, clock), nil
	case "memory":
		return replay.NewMemoryStore(clock), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Sig.StorageBackend)
	}
}

// NewReplayGuard creates the replay guard over the shared nonce store.
func NewReplayGuard(store replay.NonceStore, clock time2.Clock) *replay.Guard {
	return replay.NewGuard(store, clock)
}

// NewAuditLogger creates the audit logger.
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewAuditLogger() audit.Logger {
	return audit.NewLogger()
}

// NewSignService creates the signing service.
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewSignService(clock time2.Clock, auditLogger audit.Logger) (signing.Service, error) {
	return signing.NewService(clock, auditLogger)
}

// NewVerifyService creates the verification service.
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewVerifyService(keyRegistry keys.Resolver, replayGuard *replay.Guard, auditLogger audit.Logger) (verification.Service, error) {
	return verification.NewService(keyRegistry, replayGuard, auditLogger)
}
