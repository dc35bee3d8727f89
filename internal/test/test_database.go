package test

import (
	"database/sql"
	"os"
	"testing"

	// Import postgres driver for database/sql package
	_ "github.com/lib/pq"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS consumed_nonces (
		nonce_key text NOT NULL,
		first_seen_at timestamptz NOT NULL,
		expires_at timestamptz NOT NULL,
		CONSTRAINT consumed_nonces_pkey PRIMARY KEY (nonce_key)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_consumed_nonces_expires_at ON consumed_nonces (expires_at)`,
	`CREATE TABLE IF NOT EXISTS signing_keys (
		key_id text NOT NULL,
		public_key bytea NOT NULL,
		description text,
		created_at timestamptz NOT NULL DEFAULT now(),
		disabled_at timestamptz,
		CONSTRAINT signing_keys_pkey PRIMARY KEY (key_id)
	)`,
}

// WithTestDatabase runs fn against the database named by SIG_TEST_PG_DSN,
// with the schema applied and both tables truncated. Tests calling it are
// skipped when no test database is configured.
func WithTestDatabase(t *testing.T, fn func(db *sql.DB)) {
	t.Helper()

	dsn := os.Getenv("SIG_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("SIG_TEST_PG_DSN not set, skipping database test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Fatalf("failed to ping test database: %v", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to apply test schema: %v", err)
		}
	}

	if _, err := db.Exec(`TRUNCATE consumed_nonces, signing_keys`); err != nil {
		t.Fatalf("failed to truncate test tables: %v", err)
	}

	fn(db)
}
