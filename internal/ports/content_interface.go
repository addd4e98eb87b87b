package ports

import (
	"context"
	"io"
	"time"

	"paydocs-server/internal/model"
)

// BlobStore : байты документов по ключу (строка CID)
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Has(ctx context.Context, key string) (bool, error)
}

type CapabilityRepository interface {
	// IssueOrGet : атомарно возвращает живой токен пары (документ, пользователь) или сохраняет candidate
	IssueOrGet(ctx context.Context, candidate *model.AccessCapability, now time.Time) (*model.AccessCapability, bool, error)
	FindByToken(ctx context.Context, token string) (*model.AccessCapability, error)
	FindLatest(ctx context.Context, documentID, identityUUID string) (*model.AccessCapability, error)
	// Consume : compare-and-set consumed=false -> true. ErrNotFound, ErrConflict (уже использован), ErrExpired
	Consume(ctx context.Context, token string, now time.Time) (*model.AccessCapability, error)
}

type ContentStore interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
	IssueCapability(ctx context.Context, contentHash, documentID, identityUUID string, ttl time.Duration) (*model.AccessCapability, bool, error)
	Resolve(ctx context.Context, token string) (io.ReadCloser, *model.AccessCapability, error)
}

type AccessCoordinator interface {
	AccessState(ctx context.Context, actor model.Actor, documentID string) (*model.AccessView, error)
	Pay(ctx context.Context, actor model.Actor, documentID, amount string) (*model.PaymentRecord, error)
	Issue(ctx context.Context, actor model.Actor, documentID string) (*model.AccessCapability, error)
	Resolve(ctx context.Context, token string) (io.ReadCloser, *model.AccessCapability, *model.Document, error)
}
