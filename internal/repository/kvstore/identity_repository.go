package kvstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"paydocs-server/internal/model"
	"paydocs-server/internal/ports"
)

type IdentityRepository struct {
	store *Store
}

func NewIdentityRepository(store *Store) *IdentityRepository {
	return &IdentityRepository{store: store}
}

func identityKey(username string) []string { return []string{"identities", "by-username", username} }

func identityUUIDKey(uuid string) []string { return []string{"identities", "by-uuid", uuid} }

// Create : имя пользователя является ключом, повтор -> ports.ErrAlreadyExists
func (r *IdentityRepository) Create(ctx context.Context, identity *model.Identity) error {
	return r.store.locked(func() error {
		exists, err := r.store.has(ctx, key(identityKey(identity.Username)...))
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("[IdentityKV] пользователь %s: %w", identity.Username, ports.ErrAlreadyExists)
		}
		if err := r.store.putJSON(ctx, key(identityKey(identity.Username)...), identity); err != nil {
			return err
		}
		return r.store.putString(ctx, key(identityUUIDKey(identity.UUID)...), identity.Username)
	})
}

func (r *IdentityRepository) FindByUsername(ctx context.Context, username string) (*model.Identity, error) {
	var identity model.Identity
	if err := r.store.getJSON(ctx, key(identityKey(username)...), &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *IdentityRepository) FindByUUID(ctx context.Context, uuid string) (*model.Identity, error) {
	username, err := r.store.getString(ctx, key(identityUUIDKey(uuid)...))
	if err != nil {
		return nil, err
	}
	return r.FindByUsername(ctx, username)
}

func (r *IdentityRepository) UpdateCredential(ctx context.Context, uuid string, credential model.Credential, now time.Time) error {
	return r.modify(ctx, uuid, func(identity *model.Identity) {
		identity.Credential = credential
		identity.UpdatedAt = now
	})
}

func (r *IdentityRepository) UpdateDisplayName(ctx context.Context, uuid, displayName string, now time.Time) error {
	return r.modify(ctx, uuid, func(identity *model.Identity) {
		identity.DisplayName = displayName
		identity.UpdatedAt = now
	})
}

func (r *IdentityRepository) modify(ctx context.Context, uuid string, change func(*model.Identity)) error {
	return r.store.locked(func() error {
		identity, err := r.FindByUUID(ctx, uuid)
		if err != nil {
			return err
		}
		change(identity)
		return r.store.putJSON(ctx, key(identityKey(identity.Username)...), identity)
	})
}

func (r *IdentityRepository) Delete(ctx context.Context, uuid string) error {
	return r.store.locked(func() error {
		identity, err := r.FindByUUID(ctx, uuid)
		if err != nil {
			return err
		}
		if err := r.store.delete(ctx, key(identityKey(identity.Username)...)); err != nil {
			return err
		}
		return r.store.delete(ctx, key(identityUUIDKey(uuid)...))
	})
}

// List : порядок (created_at, uuid) по возрастанию, как в postgres реализации
func (r *IdentityRepository) List(ctx context.Context, cursor string, limit int) ([]*model.Identity, string, error) {
	identities, err := listJSON[model.Identity](ctx, r.store, key("identities", "by-username"))
	if err != nil {
		return nil, "", err
	}

	sort.Slice(identities, func(i, j int) bool {
		if identities[i].CreatedAt.Equal(identities[j].CreatedAt) {
			return identities[i].UUID < identities[j].UUID
		}
		return identities[i].CreatedAt.Before(identities[j].CreatedAt)
	})

	if cursor != "" {
		cursorTime, cursorID, err := model.DecodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		start := sort.Search(len(identities), func(i int) bool {
			c := identities[i]
			return c.CreatedAt.After(cursorTime) || (c.CreatedAt.Equal(cursorTime) && c.UUID > cursorID)
		})
		identities = identities[start:]
	}

	var nextCursor string
	if len(identities) > limit {
		identities = identities[:limit]
		last := identities[len(identities)-1]
		nextCursor = model.EncodeCursor(last.CreatedAt, last.UUID)
	}
	return identities, nextCursor, nil
}
