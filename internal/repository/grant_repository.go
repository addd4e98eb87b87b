package repository

import (
	"context"
	"time"

	"paydocs-server/config"
	"paydocs-server/internal/model"
	"paydocs-server/internal/util"
)

type GrantDocumentRepository struct {
	database *config.Database
}

func NewGrantDocumentRepository(database *config.Database) *GrantDocumentRepository {
	return &GrantDocumentRepository{database: database}
}

// HasGrant : владелец документа выдал пользователю бесплатный доступ
func (r *GrantDocumentRepository) HasGrant(ctx context.Context, documentUUID, userUUID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM document_grants
			WHERE document_uuid = $1 AND target_user_uuid = $2
		)
	`
	var exists bool
	if err := r.database.GetContext(ctx, &exists, query, documentUUID, userUUID); err != nil {
		return false, util.LogError("[GrantRepo] ошибка проверки доступа", err)
	}
	return exists, nil
}

// AddGrant : добавляет пользователя к документу, повторный вызов ничего не меняет
func (r *GrantDocumentRepository) AddGrant(ctx context.Context, documentUUID, targetUserUUID string, now time.Time) error {
	query := `
		INSERT INTO document_grants (document_uuid, target_user_uuid, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (document_uuid, target_user_uuid) DO NOTHING
	`
	if _, err := r.database.ExecContext(ctx, query, documentUUID, targetUserUUID, now); err != nil {
		return util.LogError("[GrantRepo] не удалось предоставить доступ к документу", err)
	}
	return nil
}

func (r *GrantDocumentRepository) RemoveGrant(ctx context.Context, documentUUID, targetUserUUID string) error {
	_, err := r.database.ExecContext(ctx, `
		DELETE FROM document_grants
		WHERE document_uuid = $1 AND target_user_uuid = $2
	`, documentUUID, targetUserUUID)
	if err != nil {
		return util.LogError("[GrantRepo] не удалось удалить доступ к документу", err)
	}
	return nil
}

func (r *GrantDocumentRepository) ListGrants(ctx context.Context, documentUUID string) ([]model.DocumentGrant, error) {
	var grants []model.DocumentGrant
	err := r.database.SelectContext(ctx, &grants, `
		SELECT document_uuid, target_user_uuid, created_at
		FROM document_grants
		WHERE document_uuid = $1
		ORDER BY created_at
	`, documentUUID)
	if err != nil {
		return nil, util.LogError("[GrantRepo] не удалось получить список grant", err)
	}
	return grants, nil
}

// ListGrantedTo : документы, к которым пользователю выдан доступ
func (r *GrantDocumentRepository) ListGrantedTo(ctx context.Context, userUUID string) ([]string, error) {
	var ids []string
	err := r.database.SelectContext(ctx, &ids, `
		SELECT g.document_uuid
		FROM document_grants AS g
		INNER JOIN documents AS d ON d.uuid = g.document_uuid
		WHERE g.target_user_uuid = $1 AND d.deleted_at IS NULL
	`, userUUID)
	if err != nil {
		return nil, util.LogError("[GrantRepo] не удалось получить документы пользователя", err)
	}
	return ids, nil
}
