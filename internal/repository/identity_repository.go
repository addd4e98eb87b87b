package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"paydocs-server/config"
	"paydocs-server/internal/model"
	"paydocs-server/internal/ports"
	"paydocs-server/internal/util"
)

const identityColumns = `uuid, username, display_name, credential_kind, password_hash, public_key, is_admin, created_at, updated_at`

type IdentityRepository struct {
	*config.Database
}

func NewIdentityRepository(database *config.Database) *IdentityRepository {
	return &IdentityRepository{database}
}

// identityRow : строка таблицы identities, учётные данные разложены по колонкам
type identityRow struct {
	UUID           string         `db:"uuid"`
	Username       string         `db:"username"`
	DisplayName    string         `db:"display_name"`
	CredentialKind string         `db:"credential_kind"`
	PasswordHash   sql.NullString `db:"password_hash"`
	PublicKey      []byte         `db:"public_key"`
	IsAdmin        bool           `db:"is_admin"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (row identityRow) toModel() *model.Identity {
	return &model.Identity{
		UUID:        row.UUID,
		Username:    row.Username,
		DisplayName: row.DisplayName,
		Credential: model.Credential{
			Kind:         model.CredentialKind(row.CredentialKind),
			PasswordHash: row.PasswordHash.String,
			PublicKey:    row.PublicKey,
		},
		IsAdmin:   row.IsAdmin,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func credentialColumns(credential model.Credential) (sql.NullString, []byte) {
	var hash sql.NullString
	if credential.PasswordHash != "" {
		hash = sql.NullString{String: credential.PasswordHash, Valid: true}
	}
	var publicKey []byte
	if len(credential.PublicKey) > 0 {
		publicKey = credential.PublicKey
	}
	return hash, publicKey
}

// Create : сохраняет пользователя, повторный username -> ports.ErrAlreadyExists
func (r *IdentityRepository) Create(ctx context.Context, identity *model.Identity) error {
	hash, publicKey := credentialColumns(identity.Credential)
	query := `
		INSERT INTO identities (uuid, username, display_name, credential_kind, password_hash, public_key, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.ExecContext(ctx, query,
		identity.UUID,
		identity.Username,
		identity.DisplayName,
		string(identity.Credential.Kind),
		hash,
		publicKey,
		identity.IsAdmin,
		identity.CreatedAt,
		identity.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("[IdentityRepo] пользователь %s: %w", identity.Username, ports.ErrAlreadyExists)
	}
	if err != nil {
		return util.LogError("[IdentityRepo] ошибка вставки данных в БД", err)
	}

	return nil
}

// FindByUsername : ищет пользователя по имени
func (r *IdentityRepository) FindByUsername(ctx context.Context, username string) (*model.Identity, error) {
	return r.findOne(ctx, `SELECT `+identityColumns+` FROM identities WHERE username = $1`, username)
}

// FindByUUID : ищет пользователя по UUID
func (r *IdentityRepository) FindByUUID(ctx context.Context, uuid string) (*model.Identity, error) {
	return r.findOne(ctx, `SELECT `+identityColumns+` FROM identities WHERE uuid = $1`, uuid)
}

func (r *IdentityRepository) findOne(ctx context.Context, query string, arg string) (*model.Identity, error) {
	var row identityRow
	err := r.GetContext(ctx, &row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, util.LogError("[IdentityRepo] не удалось найти пользователя в БД", err)
	}
	return row.toModel(), nil
}

// UpdateCredential : ротация учётных данных
func (r *IdentityRepository) UpdateCredential(ctx context.Context, uuid string, credential model.Credential, now time.Time) error {
	hash, publicKey := credentialColumns(credential)
	query := `
		UPDATE identities
		SET credential_kind = $2, password_hash = $3, public_key = $4, updated_at = $5
		WHERE uuid = $1
	`
	result, err := r.ExecContext(ctx, query, uuid, string(credential.Kind), hash, publicKey, now)
	if err != nil {
		return util.LogError("[IdentityRepo] не удалось обновить учётные данные", err)
	}
	return expectOneRow(result)
}

func (r *IdentityRepository) UpdateDisplayName(ctx context.Context, uuid, displayName string, now time.Time) error {
	result, err := r.ExecContext(ctx, `UPDATE identities SET display_name = $2, updated_at = $3 WHERE uuid = $1`, uuid, displayName, now)
	if err != nil {
		return util.LogError("[IdentityRepo] не удалось обновить пользователя", err)
	}
	return expectOneRow(result)
}

// Delete : удаляет пользователя по его UUID
func (r *IdentityRepository) Delete(ctx context.Context, uuid string) error {
	result, err := r.ExecContext(ctx, `DELETE FROM identities WHERE uuid = $1`, uuid)
	if err != nil {
		return util.LogError("[IdentityRepo] не удалось удалить пользователя", err)
	}
	return expectOneRow(result)
}

// List : список пользователей с cursor-based пагинацией по (created_at, uuid)
func (r *IdentityRepository) List(ctx context.Context, cursor string, limit int) ([]*model.Identity, string, error) {
	cursorTime := time.Time{}
	cursorID := ""
	if cursor != "" {
		var err error
		cursorTime, cursorID, err = model.DecodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
	}

	query := `
		SELECT ` + identityColumns + `
		FROM identities
		WHERE (created_at, uuid) > ($1, $2)
		ORDER BY created_at ASC, uuid ASC
		LIMIT $3
	`
	var rows []identityRow
	// +1 для проверки наличия следующей страницы
	if err := r.SelectContext(ctx, &rows, query, cursorTime, cursorID, limit+1); err != nil {
		return nil, "", util.LogError("[IdentityRepo] не удалось получить список пользователей", err)
	}

	var nextCursor string
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = model.EncodeCursor(last.CreatedAt, last.UUID)
	}

	identities := make([]*model.Identity, 0, len(rows))
	for _, row := range rows {
		identities = append(identities, row.toModel())
	}
	return identities, nextCursor, nil
}

func expectOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("не удалось проверить число изменённых строк", err)
	}
	if rowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}
