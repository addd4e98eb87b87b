package kvstore

import (
	"context"
	"errors"
	"time"

	"paydocs-server/internal/model"
	"paydocs-server/internal/ports"

	ds "github.com/ipfs/go-datastore"
)

type CapabilityRepository struct {
	store *Store
}

func NewCapabilityRepository(store *Store) *CapabilityRepository {
	return &CapabilityRepository{store: store}
}

func capabilityKey(token string) ds.Key { return key("capabilities", "tokens", token) }

func capabilitySlotKey(documentID, identityUUID string) ds.Key {
	return key("capabilities", "slots", documentID, identityUUID)
}

// IssueOrGet : слот пары указывает на последний выданный токен. Пока он жив, возвращается он
func (r *CapabilityRepository) IssueOrGet(ctx context.Context, candidate *model.AccessCapability, now time.Time) (*model.AccessCapability, bool, error) {
	var issued *model.AccessCapability
	var created bool
	err := r.store.locked(func() error {
		existing, err := r.FindLatest(ctx, candidate.DocumentID, candidate.IdentityUUID)
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			return err
		}
		if existing != nil && existing.IsLive(now) {
			issued = existing
			return nil
		}

		if err := r.store.putJSON(ctx, capabilityKey(candidate.Token), candidate); err != nil {
			return err
		}
		if err := r.store.putString(ctx, capabilitySlotKey(candidate.DocumentID, candidate.IdentityUUID), candidate.Token); err != nil {
			return err
		}
		issued, created = candidate, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return issued, created, nil
}

func (r *CapabilityRepository) FindByToken(ctx context.Context, token string) (*model.AccessCapability, error) {
	var capability model.AccessCapability
	if err := r.store.getJSON(ctx, capabilityKey(token), &capability); err != nil {
		return nil, err
	}
	return &capability, nil
}

func (r *CapabilityRepository) FindLatest(ctx context.Context, documentID, identityUUID string) (*model.AccessCapability, error) {
	token, err := r.store.getString(ctx, capabilitySlotKey(documentID, identityUUID))
	if err != nil {
		return nil, err
	}
	return r.FindByToken(ctx, token)
}

// Consume : проверка и запись под одним мьютексом, успешен ровно один вызов
func (r *CapabilityRepository) Consume(ctx context.Context, token string, now time.Time) (*model.AccessCapability, error) {
	var consumed *model.AccessCapability
	err := r.store.locked(func() error {
		capability, err := r.FindByToken(ctx, token)
		if err != nil {
			return err
		}
		if capability.Consumed {
			return ports.ErrConflict
		}
		if capability.IsExpired(now) {
			return ports.ErrExpired
		}
		capability.Consumed = true
		capability.ConsumedAt = &now
		consumed = capability
		return r.store.putJSON(ctx, capabilityKey(token), capability)
	})
	return consumed, err
}
