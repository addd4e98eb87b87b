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
)

type JWTRepository struct {
	*config.Database
}

func NewJWTRepository(database *config.Database) *JWTRepository {
	return &JWTRepository{database}
}

// SaveRefreshToken сохраняет refresh-токен в базе данных
// Возвращает ошибку, если операция не удалась
func (r *JWTRepository) SaveRefreshToken(ctx context.Context, refreshToken *model.RefreshToken) error {
	query := `INSERT INTO refresh_tokens (uuid, user_uuid, token_hash, expire_at, used, user_agent, ip_address, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.ExecContext(ctx, query,
		refreshToken.UUID,
		refreshToken.UserUUID,
		refreshToken.TokenHash,
		refreshToken.ExpireAt,
		refreshToken.Used,
		refreshToken.UserAgent,
		refreshToken.IpAddress,
		refreshToken.CreatedAt,
	)
	if err != nil {
		return util.LogError("[JWTRepo] ошибка вставки данных в БД", err)
	}

	return nil
}

// MarkRefreshTokenUsedByUUID изменяет поле used, делая его равным true.
// Повторная пометка возвращает ports.ErrConflict: токен одноразовый
func (r *JWTRepository) MarkRefreshTokenUsedByUUID(ctx context.Context, refreshTokenUUID string) error {
	query := `UPDATE refresh_tokens SET used = TRUE, revoked_at = NOW() WHERE uuid = $1 AND used = FALSE`

	result, err := r.ExecContext(ctx, query, refreshTokenUUID)
	if err != nil {
		return util.LogError("[JWTRepo] не удалось обновить рефреш токен", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[JWTRepo] не удалось проверить, обновлен ли токен", err)
	}
	if rowsAffected == 0 {
		return ports.ErrConflict
	}

	return nil
}

// FindByUUID ищет refresh-токен в базе данных
func (r *JWTRepository) FindByUUID(ctx context.Context, refreshTokenUUID string) (*model.RefreshToken, error) {
	query := `SELECT uuid, user_uuid, token_hash, expire_at, used, user_agent, ip_address, created_at, revoked_at
				FROM refresh_tokens WHERE uuid = $1`

	refreshToken := &model.RefreshToken{}
	err := r.GetContext(ctx, refreshToken, query, refreshTokenUUID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, util.LogError("[JWTRepo] ошибка при выполнении запроса", err)
	}

	return refreshToken, nil
}

// ConsumeChallenge : nonce вызова для входа по ключу вставляется один раз, повтор -> ports.ErrConflict.
// Использованные вызовы с истёкшим сроком удаляются перед вставкой
func (r *JWTRepository) ConsumeChallenge(ctx context.Context, nonce string, expiresAt, now time.Time) error {
	if _, err := r.ExecContext(ctx, `DELETE FROM used_challenges WHERE expires_at < $1`, now); err != nil {
		return util.LogError("[JWTRepo] не удалось очистить использованные вызовы", err)
	}

	query := `INSERT INTO used_challenges (nonce, expires_at) VALUES ($1, $2) ON CONFLICT (nonce) DO NOTHING`
	result, err := r.ExecContext(ctx, query, nonce, expiresAt)
	if err != nil {
		return util.LogError("[JWTRepo] не удалось сохранить использованный вызов", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[JWTRepo] не удалось проверить вставку вызова", err)
	}
	if rowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}
