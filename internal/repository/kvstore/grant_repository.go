package kvstore

import (
	"context"
	"errors"
	"sort"
	"time"

	"paydocs-server/internal/model"
	"paydocs-server/internal/ports"

	ds "github.com/ipfs/go-datastore"
)

type GrantDocumentRepository struct {
	store *Store
}

func NewGrantDocumentRepository(store *Store) *GrantDocumentRepository {
	return &GrantDocumentRepository{store: store}
}

func grantKey(documentUUID, userUUID string) ds.Key {
	return key("grants", "by-document", documentUUID, userUUID)
}

func grantedToKey(userUUID, documentUUID string) ds.Key {
	return key("grants", "by-user", userUUID, documentUUID)
}

func (r *GrantDocumentRepository) HasGrant(ctx context.Context, documentUUID, userUUID string) (bool, error) {
	return r.store.has(ctx, grantKey(documentUUID, userUUID))
}

// AddGrant : повторный вызов не меняет дату выдачи
func (r *GrantDocumentRepository) AddGrant(ctx context.Context, documentUUID, targetUserUUID string, now time.Time) error {
	return r.store.locked(func() error {
		exists, err := r.store.has(ctx, grantKey(documentUUID, targetUserUUID))
		if err != nil || exists {
			return err
		}
		grant := model.DocumentGrant{DocumentUUID: documentUUID, TargetUserUUID: targetUserUUID, CreatedAt: now}
		if err := r.store.putJSON(ctx, grantKey(documentUUID, targetUserUUID), grant); err != nil {
			return err
		}
		return r.store.putString(ctx, grantedToKey(targetUserUUID, documentUUID), documentUUID)
	})
}

func (r *GrantDocumentRepository) RemoveGrant(ctx context.Context, documentUUID, targetUserUUID string) error {
	return r.store.locked(func() error {
		if err := r.store.delete(ctx, grantKey(documentUUID, targetUserUUID)); err != nil {
			return err
		}
		return r.store.delete(ctx, grantedToKey(targetUserUUID, documentUUID))
	})
}

func (r *GrantDocumentRepository) ListGrants(ctx context.Context, documentUUID string) ([]model.DocumentGrant, error) {
	items, err := listJSON[model.DocumentGrant](ctx, r.store, key("grants", "by-document", documentUUID))
	if err != nil {
		return nil, err
	}
	grants := make([]model.DocumentGrant, 0, len(items))
	for _, item := range items {
		grants = append(grants, *item)
	}
	sort.Slice(grants, func(i, j int) bool { return grants[i].CreatedAt.Before(grants[j].CreatedAt) })
	return grants, nil
}

// ListGrantedTo : удалённые документы пропускаются
func (r *GrantDocumentRepository) ListGrantedTo(ctx context.Context, userUUID string) ([]string, error) {
	entries, err := r.store.entries(ctx, key("grants", "by-user", userUUID), false)
	if err != nil {
		return nil, err
	}
	documents := NewDocumentRepository(r.store)
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		id := string(entry.Value)
		if _, err := documents.GetByID(ctx, id); err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				continue
			}
			return nil, err
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
