package repository

import (
	"context"
	"fmt"

	"paydocs-server/config"

	"go.uber.org/zap"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{1, "identities", `
		CREATE TABLE IF NOT EXISTS identities (
			uuid            TEXT PRIMARY KEY,
			username        TEXT NOT NULL UNIQUE,
			display_name    TEXT NOT NULL DEFAULT '',
			credential_kind TEXT NOT NULL CHECK (credential_kind IN ('password', 'public_key')),
			password_hash   TEXT,
			public_key      BYTEA,
			is_admin        BOOLEAN NOT NULL DEFAULT FALSE,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (
				(credential_kind = 'password' AND password_hash IS NOT NULL AND public_key IS NULL) OR
				(credential_kind = 'public_key' AND public_key IS NOT NULL AND password_hash IS NULL)
			)
		);
		CREATE INDEX IF NOT EXISTS identities_created_idx ON identities (created_at, uuid);`},
	{2, "refresh_tokens", `
		CREATE TABLE IF NOT EXISTS refresh_tokens (
			uuid       TEXT PRIMARY KEY,
			user_uuid  TEXT NOT NULL,
			token_hash TEXT NOT NULL,
			expire_at  TIMESTAMPTZ NOT NULL,
			used       BOOLEAN NOT NULL DEFAULT FALSE,
			user_agent TEXT NOT NULL DEFAULT '',
			ip_address TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			revoked_at TIMESTAMPTZ
		);`},
	{3, "documents", `
		CREATE TABLE IF NOT EXISTS documents (
			uuid          TEXT PRIMARY KEY,
			owner_uuid    TEXT NOT NULL,
			title         TEXT NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			category      TEXT NOT NULL,
			content_hash  TEXT NOT NULL,
			size_bytes    BIGINT NOT NULL,
			pages         INTEGER NOT NULL DEFAULT 0,
			mime_type     TEXT NOT NULL,
			price         BIGINT NOT NULL CHECK (price >= 0),
			visibility    TEXT NOT NULL CHECK (visibility IN ('public', 'private')),
			duration_days INTEGER NOT NULL CHECK (duration_days > 0),
			views         BIGINT NOT NULL DEFAULT 0,
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL,
			expires_at    TIMESTAMPTZ NOT NULL,
			deleted_at    TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS documents_catalog_idx ON documents (created_at DESC, uuid DESC)
			WHERE visibility = 'public' AND deleted_at IS NULL;
		CREATE INDEX IF NOT EXISTS documents_owner_idx ON documents (owner_uuid);
		CREATE TABLE IF NOT EXISTS document_grants (
			document_uuid    TEXT NOT NULL REFERENCES documents (uuid),
			target_user_uuid TEXT NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (document_uuid, target_user_uuid)
		);`},
	{4, "payments", `
		CREATE TABLE IF NOT EXISTS payments (
			uuid           TEXT PRIMARY KEY,
			document_uuid  TEXT NOT NULL REFERENCES documents (uuid),
			payer_uuid     TEXT NOT NULL,
			amount         BIGINT NOT NULL CHECK (amount >= 0),
			tx_id          TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL CHECK (status IN ('pending', 'confirmed', 'failed')),
			failure_reason TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL,
			updated_at     TIMESTAMPTZ NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS payments_active_idx ON payments (document_uuid, payer_uuid)
			WHERE status IN ('pending', 'confirmed');
		CREATE INDEX IF NOT EXISTS payments_payer_idx ON payments (payer_uuid);`},
	{5, "capabilities", `
		CREATE TABLE IF NOT EXISTS capabilities (
			token         TEXT PRIMARY KEY,
			document_uuid TEXT NOT NULL REFERENCES documents (uuid),
			content_hash  TEXT NOT NULL,
			identity_uuid TEXT NOT NULL,
			issued_at     TIMESTAMPTZ NOT NULL,
			expires_at    TIMESTAMPTZ NOT NULL,
			consumed      BOOLEAN NOT NULL DEFAULT FALSE,
			consumed_at   TIMESTAMPTZ
		);
		CREATE TABLE IF NOT EXISTS capability_slots (
			document_uuid TEXT NOT NULL,
			identity_uuid TEXT NOT NULL,
			token         TEXT REFERENCES capabilities (token),
			PRIMARY KEY (document_uuid, identity_uuid)
		);`},
	{6, "used_challenges", `
		CREATE TABLE IF NOT EXISTS used_challenges (
			nonce      TEXT PRIMARY KEY,
			expires_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS used_challenges_expires_idx ON used_challenges (expires_at);`},
}

// Migrate : применяет недостающие миграции по порядку, каждую в своей транзакции
func Migrate(ctx context.Context, database *config.Database) error {
	_, err := database.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("[Migrate] не удалось создать schema_migrations: %w", err)
	}

	var current int
	if err := database.GetContext(ctx, &current, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return fmt.Errorf("[Migrate] не удалось получить версию схемы: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(ctx, database, m); err != nil {
			return err
		}
		zap.S().Infow("[Migrate] миграция применена", "version", m.version, "name", m.name)
	}

	return nil
}

func applyMigration(ctx context.Context, database *config.Database, m migration) error {
	tx, rollback, commit, err := beginTX(ctx, database)
	if err != nil {
		return fmt.Errorf("[Migrate] не удалось начать транзакцию: %w", err)
	}
	defer rollback()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return fmt.Errorf("[Migrate] миграция %d (%s): %w", m.version, m.name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.version, m.name); err != nil {
		return fmt.Errorf("[Migrate] не удалось записать версию %d: %w", m.version, err)
	}

	return commit()
}
