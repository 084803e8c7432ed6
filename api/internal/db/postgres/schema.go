package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		username      VARCHAR(64)  NOT NULL UNIQUE,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash TEXT         NOT NULL,
		is_active     BOOLEAN      NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id                    BIGSERIAL PRIMARY KEY,
		title                 VARCHAR(255) NOT NULL,
		ciphertext            TEXT         NOT NULL,
		algorithm             VARCHAR(16)  NOT NULL,
		encrypted_key         TEXT         NOT NULL,
		initialization_vector TEXT,
		owner_id              UUID         NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at            TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_owner ON messages (owner_id, id DESC)`,
}

// Migrate creates the tables if they do not exist yet. It is idempotent and
// runs once at startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema bootstrap failed: %w", err)
		}
	}
	return nil
}
