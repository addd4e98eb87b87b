package service

import (
	"context"
	"errors"
	"strings"

	"paydocs-server/internal/apperr"
	"paydocs-server/internal/model"
	"paydocs-server/internal/ports"

	"github.com/raulk/clock"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type UserService struct {
	credentials   ports.CredentialStore
	identities    ports.IdentityRepository
	jwtService    ports.JWTServiceInterface
	jwtRepository ports.JWTRepositoryInterface
	clock         clock.Clock
}

func NewUserService(
	credentials ports.CredentialStore,
	identities ports.IdentityRepository,
	jwtService ports.JWTServiceInterface,
	jwtRepository ports.JWTRepositoryInterface,
	clk clock.Clock,
) *UserService {
	return &UserService{
		credentials:   credentials,
		identities:    identities,
		jwtService:    jwtService,
		jwtRepository: jwtRepository,
		clock:         clk,
	}
}

// Register : открытая регистрация, сразу выдаёт сессию
func (s *UserService) Register(ctx context.Context, input model.RegisterInput, userAgent, ipAddress string) (*model.Identity, *model.TokensPair, error) {
	identity, err := s.credentials.Register(ctx, input)
	if err != nil {
		return nil, nil, err
	}

	tokens, err := issueSession(ctx, s.jwtService, s.jwtRepository, identity, userAgent, ipAddress)
	if err != nil {
		return nil, nil, err
	}
	return identity, tokens, nil
}

func (s *UserService) GetUser(ctx context.Context, actor model.Actor, uuid string) (*model.Identity, error) {
	if !actor.IsAdmin && actor.UUID != uuid {
		return nil, apperr.Forbidden("доступ запрещён")
	}
	return s.find(ctx, uuid)
}

func (s *UserService) UpdateDisplayName(ctx context.Context, actor model.Actor, uuid, displayName string) error {
	if !actor.IsAdmin && actor.UUID != uuid {
		return apperr.Forbidden("доступ запрещён")
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" || len([]rune(displayName)) > 64 {
		return apperr.Validation("отображаемое имя должно быть от 1 до 64 символов")
	}

	err := s.identities.UpdateDisplayName(ctx, uuid, displayName, s.clock.Now().UTC())
	if errors.Is(err, ports.ErrNotFound) {
		return apperr.NotFound("пользователь не найден")
	}
	if err != nil {
		return apperr.Internal("[UserService] ошибка обновления пользователя", err)
	}
	return nil
}

// RotateCredential : только сам пользователь
func (s *UserService) RotateCredential(ctx context.Context, actor model.Actor, uuid string, input model.RegisterInput) error {
	if actor.UUID != uuid {
		return apperr.Forbidden("доступ запрещён")
	}
	return s.credentials.RotateCredential(ctx, uuid, input)
}

func (s *UserService) DeleteUser(ctx context.Context, actor model.Actor, uuid string) error {
	if !actor.IsAdmin && actor.UUID != uuid {
		return apperr.Forbidden("доступ запрещён")
	}

	err := s.identities.Delete(ctx, uuid)
	if errors.Is(err, ports.ErrNotFound) {
		return apperr.NotFound("пользователь не найден")
	}
	if err != nil {
		return apperr.Internal("[UserService] ошибка удаления пользователя", err)
	}
	return nil
}

func (s *UserService) ListUsers(ctx context.Context, actor model.Actor, cursor string, limit int) ([]*model.Identity, string, error) {
	if !actor.IsAdmin {
		return nil, "", apperr.Forbidden("доступ запрещён: нужен администратор")
	}

	if cursor != "" {
		if _, _, err := model.DecodeCursor(cursor); err != nil {
			return nil, "", apperr.Validation("неверный курсор")
		}
	}

	identities, nextCursor, err := s.identities.List(ctx, cursor, normalizeLimit(limit))
	if err != nil {
		return nil, "", apperr.Internal("[UserService] ошибка получения списка пользователей", err)
	}
	return identities, nextCursor, nil
}

func (s *UserService) find(ctx context.Context, uuid string) (*model.Identity, error) {
	identity, err := s.identities.FindByUUID(ctx, uuid)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, apperr.NotFound("пользователь не найден")
	}
	if err != nil {
		return nil, apperr.Internal("[UserService] ошибка поиска пользователя", err)
	}
	return identity, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
