package kvstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"paydocs-server/internal/model"
	"paydocs-server/internal/ports"
)

type DocumentRepository struct {
	store *Store
}

func NewDocumentRepository(store *Store) *DocumentRepository {
	return &DocumentRepository{store: store}
}

func documentKey(id string) []string { return []string{"documents", id} }

func (r *DocumentRepository) Create(ctx context.Context, document *model.Document) error {
	return r.store.locked(func() error {
		exists, err := r.store.has(ctx, key(documentKey(document.ID)...))
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("[DocumentKV] документ %s: %w", document.ID, ports.ErrAlreadyExists)
		}
		return r.store.putJSON(ctx, key(documentKey(document.ID)...), document)
	})
}

// GetByID : мягко удалённые документы считаются отсутствующими
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*model.Document, error) {
	var document model.Document
	if err := r.store.getJSON(ctx, key(documentKey(id)...), &document); err != nil {
		return nil, err
	}
	if document.DeletedAt != nil {
		return nil, ports.ErrNotFound
	}
	return &document, nil
}

func (r *DocumentRepository) Update(ctx context.Context, id string, update model.DocumentUpdate, now time.Time) (*model.Document, error) {
	var updated *model.Document
	err := r.store.locked(func() error {
		document, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if update.Title != nil {
			document.Title = *update.Title
		}
		if update.Description != nil {
			document.Description = *update.Description
		}
		if update.Category != nil {
			document.Category = *update.Category
		}
		if update.Price != nil {
			document.Price = *update.Price
		}
		if update.Visibility != nil {
			document.Visibility = *update.Visibility
		}
		document.UpdatedAt = now
		updated = document
		return r.store.putJSON(ctx, key(documentKey(id)...), document)
	})
	return updated, err
}

func (r *DocumentRepository) IncrementViews(ctx context.Context, id string) error {
	return r.store.locked(func() error {
		document, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		document.Views++
		return r.store.putJSON(ctx, key(documentKey(id)...), document)
	})
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	return r.store.locked(func() error {
		document, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		deletedAt := time.Now().UTC()
		document.DeletedAt = &deletedAt
		return r.store.putJSON(ctx, key(documentKey(id)...), document)
	})
}

// ListPublic : та же выборка и порядок, что и в postgres реализации
func (r *DocumentRepository) ListPublic(ctx context.Context, filter model.DocumentFilter) ([]*model.Document, string, error) {
	all, err := r.live(ctx)
	if err != nil {
		return nil, "", err
	}

	var cursorTime time.Time
	var cursorID string
	if filter.Cursor != "" {
		cursorTime, cursorID, err = model.DecodeCursor(filter.Cursor)
		if err != nil {
			return nil, "", err
		}
	}

	documents := make([]*model.Document, 0, len(all))
	for _, document := range all {
		if !document.IsPublic() || document.IsExpired(filter.Now) || !document.MatchesFilter(filter) {
			continue
		}
		if filter.Cursor != "" && !document.Before(cursorTime, cursorID) {
			continue
		}
		documents = append(documents, document)
	}
	sortNewestFirst(documents)

	var nextCursor string
	if len(documents) > filter.Limit {
		documents = documents[:filter.Limit]
		last := documents[len(documents)-1]
		nextCursor = model.EncodeCursor(last.CreatedAt, last.ID)
	}
	return documents, nextCursor, nil
}

func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerUUID string) ([]*model.Document, error) {
	all, err := r.live(ctx)
	if err != nil {
		return nil, err
	}
	documents := make([]*model.Document, 0)
	for _, document := range all {
		if document.OwnerUUID == ownerUUID {
			documents = append(documents, document)
		}
	}
	sortNewestFirst(documents)
	return documents, nil
}

func (r *DocumentRepository) live(ctx context.Context) ([]*model.Document, error) {
	all, err := listJSON[model.Document](ctx, r.store, key("documents"))
	if err != nil {
		return nil, err
	}
	live := all[:0]
	for _, document := range all {
		if document.DeletedAt == nil {
			live = append(live, document)
		}
	}
	return live, nil
}

func sortNewestFirst(documents []*model.Document) {
	sort.Slice(documents, func(i, j int) bool {
		return documents[j].Before(documents[i].CreatedAt, documents[i].ID)
	})
}
