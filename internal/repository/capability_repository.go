package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"paydocs-server/config"
	"paydocs-server/internal/model"
	"paydocs-server/internal/ports"
	"paydocs-server/internal/util"

	"github.com/jmoiron/sqlx"
)

const capabilityColumns = `token, document_uuid, content_hash, identity_uuid, issued_at, expires_at, consumed, consumed_at`

type CapabilityRepository struct {
	*config.Database
}

func NewCapabilityRepository(database *config.Database) *CapabilityRepository {
	return &CapabilityRepository{database}
}

// IssueOrGet : строка capability_slots пары (документ, пользователь) блокируется FOR UPDATE,
// поэтому параллельные вызовы получают один и тот же живой токен
func (r *CapabilityRepository) IssueOrGet(ctx context.Context, candidate *model.AccessCapability, now time.Time) (*model.AccessCapability, bool, error) {
	tx, rollback, commit, err := beginTX(ctx, r.Database)
	if err != nil {
		return nil, false, util.LogError("[CapabilityRepo] не удалось начать транзакцию", err)
	}
	defer rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO capability_slots (document_uuid, identity_uuid, token)
		VALUES ($1, $2, NULL)
		ON CONFLICT (document_uuid, identity_uuid) DO NOTHING
	`, candidate.DocumentID, candidate.IdentityUUID)
	if err != nil {
		return nil, false, util.LogError("[CapabilityRepo] не удалось создать слот", err)
	}

	var currentToken sql.NullString
	err = tx.GetContext(ctx, &currentToken, `
		SELECT token FROM capability_slots
		WHERE document_uuid = $1 AND identity_uuid = $2
		FOR UPDATE
	`, candidate.DocumentID, candidate.IdentityUUID)
	if err != nil {
		return nil, false, util.LogError("[CapabilityRepo] не удалось заблокировать слот", err)
	}

	if currentToken.Valid {
		existing, err := findCapability(ctx, tx, currentToken.String)
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return nil, false, err
		}
		if existing != nil && existing.IsLive(now) {
			if err := commit(); err != nil {
				return nil, false, util.LogError("[CapabilityRepo] не удалось закоммитить транзакцию", err)
			}
			return existing, false, nil
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO capabilities (token, document_uuid, content_hash, identity_uuid, issued_at, expires_at, consumed)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
	`, candidate.Token, candidate.DocumentID, candidate.ContentHash, candidate.IdentityUUID, candidate.IssuedAt, candidate.ExpiresAt)
	if err != nil {
		return nil, false, util.LogError("[CapabilityRepo] не удалось сохранить токен", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE capability_slots SET token = $3
		WHERE document_uuid = $1 AND identity_uuid = $2
	`, candidate.DocumentID, candidate.IdentityUUID, candidate.Token)
	if err != nil {
		return nil, false, util.LogError("[CapabilityRepo] не удалось обновить слот", err)
	}

	if err := commit(); err != nil {
		return nil, false, util.LogError("[CapabilityRepo] не удалось закоммитить транзакцию", err)
	}
	return candidate, true, nil
}

func (r *CapabilityRepository) FindByToken(ctx context.Context, token string) (*model.AccessCapability, error) {
	return findCapability(ctx, r.Database, token)
}

// FindLatest : последний выданный паре токен (по слоту)
func (r *CapabilityRepository) FindLatest(ctx context.Context, documentID, identityUUID string) (*model.AccessCapability, error) {
	var capability model.AccessCapability
	err := r.GetContext(ctx, &capability, `
		SELECT c.token, c.document_uuid, c.content_hash, c.identity_uuid, c.issued_at, c.expires_at, c.consumed, c.consumed_at
		FROM capability_slots AS s
		INNER JOIN capabilities AS c ON c.token = s.token
		WHERE s.document_uuid = $1 AND s.identity_uuid = $2
	`, documentID, identityUUID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, util.LogError("[CapabilityRepo] не удалось получить токен", err)
	}
	return &capability, nil
}

// Consume : одноразовое использование. Успешен ровно один из параллельных вызовов
func (r *CapabilityRepository) Consume(ctx context.Context, token string, now time.Time) (*model.AccessCapability, error) {
	query := `
		UPDATE capabilities
		SET consumed = TRUE, consumed_at = $2
		WHERE token = $1 AND consumed = FALSE AND expires_at > $2
		RETURNING ` + capabilityColumns

	var capability model.AccessCapability
	err := r.GetContext(ctx, &capability, query, token, now)
	if err == nil {
		return &capability, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, util.LogError("[CapabilityRepo] не удалось использовать токен", err)
	}

	existing, err := r.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if existing.Consumed {
		return nil, ports.ErrConflict
	}
	return nil, ports.ErrExpired
}

func findCapability(ctx context.Context, exec sqlx.QueryerContext, token string) (*model.AccessCapability, error) {
	var capability model.AccessCapability
	err := sqlx.GetContext(ctx, exec, &capability, `SELECT `+capabilityColumns+` FROM capabilities WHERE token = $1`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, util.LogError("[CapabilityRepo] не удалось получить токен", err)
	}
	return &capability, nil
}
