package kvstore

import (
	"context"
	"time"

	"paydocs-server/internal/model"
	"paydocs-server/internal/ports"

	ds "github.com/ipfs/go-datastore"
)

type JWTRepository struct {
	store *Store
}

func NewJWTRepository(store *Store) *JWTRepository {
	return &JWTRepository{store: store}
}

func refreshTokenKey(uuid string) ds.Key { return key("refresh-tokens", uuid) }

func (r *JWTRepository) SaveRefreshToken(ctx context.Context, refreshToken *model.RefreshToken) error {
	return r.store.putJSON(ctx, refreshTokenKey(refreshToken.UUID), refreshToken)
}

// MarkRefreshTokenUsedByUUID : повторная пометка -> ports.ErrConflict
func (r *JWTRepository) MarkRefreshTokenUsedByUUID(ctx context.Context, refreshTokenUUID string) error {
	return r.store.locked(func() error {
		refreshToken, err := r.FindByUUID(ctx, refreshTokenUUID)
		if err != nil {
			return err
		}
		if refreshToken.Used {
			return ports.ErrConflict
		}
		revokedAt := time.Now().UTC()
		refreshToken.Used = true
		refreshToken.RevokedAt = &revokedAt
		return r.store.putJSON(ctx, refreshTokenKey(refreshTokenUUID), refreshToken)
	})
}

func (r *JWTRepository) FindByUUID(ctx context.Context, refreshTokenUUID string) (*model.RefreshToken, error) {
	var refreshToken model.RefreshToken
	if err := r.store.getJSON(ctx, refreshTokenKey(refreshTokenUUID), &refreshToken); err != nil {
		return nil, err
	}
	return &refreshToken, nil
}

func usedChallengeKey(nonce string) ds.Key { return key("used-challenges", nonce) }

// ConsumeChallenge : nonce вызова записывается один раз, повтор -> ports.ErrConflict.
// Записи с истёкшим сроком удаляются здесь же
func (r *JWTRepository) ConsumeChallenge(ctx context.Context, nonce string, expiresAt, now time.Time) error {
	return r.store.locked(func() error {
		if err := r.purgeChallenges(ctx, now); err != nil {
			return err
		}

		exists, err := r.store.has(ctx, usedChallengeKey(nonce))
		if err != nil {
			return err
		}
		if exists {
			return ports.ErrConflict
		}
		return r.store.putString(ctx, usedChallengeKey(nonce), expiresAt.UTC().Format(time.RFC3339Nano))
	})
}

func (r *JWTRepository) purgeChallenges(ctx context.Context, now time.Time) error {
	entries, err := r.store.entries(ctx, key("used-challenges"), false)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		expiresAt, err := time.Parse(time.RFC3339Nano, string(entry.Value))
		if err == nil && expiresAt.After(now) {
			continue
		}
		if err := r.store.delete(ctx, ds.NewKey(entry.Key)); err != nil {
			return err
		}
	}
	return nil
}
