package ports

import (
	"context"
	"io"
	"time"

	"paydocs-server/internal/model"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *model.Document) error
	GetByID(ctx context.Context, id string) (*model.Document, error)
	Update(ctx context.Context, id string, update model.DocumentUpdate, now time.Time) (*model.Document, error)
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	ListPublic(ctx context.Context, filter model.DocumentFilter) ([]*model.Document, string, error)
	ListByOwner(ctx context.Context, ownerUUID string) ([]*model.Document, error)
}

type GrantDocumentRepository interface {
	AddGrant(ctx context.Context, documentUUID, targetUserUUID string, now time.Time) error
	RemoveGrant(ctx context.Context, documentUUID, targetUserUUID string) error
	HasGrant(ctx context.Context, documentUUID, userUUID string) (bool, error)
	ListGrants(ctx context.Context, documentUUID string) ([]model.DocumentGrant, error)
	ListGrantedTo(ctx context.Context, userUUID string) ([]string, error)
}

// CacheRepository : Redis слой
type CacheRepository interface {
	SetDocument(ctx context.Context, document *model.Document) error
	GetDocument(ctx context.Context, id string) (*model.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

// UploadInput : метаданные и содержимое загружаемого документа
type UploadInput struct {
	Title        string
	Description  string
	Category     string
	Price        string
	DurationDays int
	Visibility   model.Visibility
	Filename     string
	MimeType     string
	Content      io.ReadSeeker
}

type DocumentService interface {
	Upload(ctx context.Context, actor model.Actor, input UploadInput) (*model.Document, error)
	Get(ctx context.Context, actor model.Actor, id string) (*model.Document, error)
	GetPublic(ctx context.Context, id string) (*model.Document, error)
	ListPublic(ctx context.Context, filter model.DocumentFilter) ([]*model.Document, string, error)
	ListByOwner(ctx context.Context, actor model.Actor) ([]*model.Document, error)
	Update(ctx context.Context, actor model.Actor, id string, update model.DocumentUpdate) (*model.Document, error)
	Delete(ctx context.Context, actor model.Actor, id string) error
	AddGrant(ctx context.Context, actor model.Actor, id, targetUserUUID string) error
	RemoveGrant(ctx context.Context, actor model.Actor, id, targetUserUUID string) error
	ListGrants(ctx context.Context, actor model.Actor, id string) ([]model.DocumentGrant, error)
	Collection(ctx context.Context, actor model.Actor) ([]*model.Document, error)
}
