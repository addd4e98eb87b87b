package ports

import (
	"context"
	"time"

	"paydocs-server/internal/model"
)

type IdentityRepository interface {
	Create(ctx context.Context, identity *model.Identity) error
	FindByUsername(ctx context.Context, username string) (*model.Identity, error)
	FindByUUID(ctx context.Context, uuid string) (*model.Identity, error)
	UpdateCredential(ctx context.Context, uuid string, credential model.Credential, now time.Time) error
	UpdateDisplayName(ctx context.Context, uuid, displayName string, now time.Time) error
	Delete(ctx context.Context, uuid string) error
	List(ctx context.Context, cursor string, limit int) ([]*model.Identity, string, error)
}

// CredentialStore : регистрация и проверка учётных данных
type CredentialStore interface {
	Register(ctx context.Context, input model.RegisterInput) (*model.Identity, error)
	Verify(ctx context.Context, username string, presented model.Presentation) (*model.Identity, error)
	RotateCredential(ctx context.Context, uuid string, input model.RegisterInput) error
	IssueChallenge(ctx context.Context, username string) (string, time.Time, error)
}

type UserService interface {
	Register(ctx context.Context, input model.RegisterInput, userAgent, ipAddress string) (*model.Identity, *model.TokensPair, error)
	GetUser(ctx context.Context, actor model.Actor, uuid string) (*model.Identity, error)
	UpdateDisplayName(ctx context.Context, actor model.Actor, uuid, displayName string) error
	RotateCredential(ctx context.Context, actor model.Actor, uuid string, input model.RegisterInput) error
	DeleteUser(ctx context.Context, actor model.Actor, uuid string) error
	ListUsers(ctx context.Context, actor model.Actor, cursor string, limit int) ([]*model.Identity, string, error)
}
