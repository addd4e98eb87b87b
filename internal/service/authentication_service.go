package service

import (
	"context"
	"errors"
	"time"

	"paydocs-server/internal/apperr"
	"paydocs-server/internal/model"
	"paydocs-server/internal/ports"

	"github.com/raulk/clock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthenticationService struct {
	credentials   ports.CredentialStore
	identities    ports.IdentityRepository
	jwtRepository ports.JWTRepositoryInterface
	jwtService    ports.JWTServiceInterface
	notifier      ports.Notifier
	clock         clock.Clock
}

func NewAuthenticationService(
	credentials ports.CredentialStore,
	identities ports.IdentityRepository,
	jwtRepository ports.JWTRepositoryInterface,
	jwtService ports.JWTServiceInterface,
	notifier ports.Notifier,
	clk clock.Clock,
) *AuthenticationService {
	return &AuthenticationService{
		credentials:   credentials,
		identities:    identities,
		jwtRepository: jwtRepository,
		jwtService:    jwtService,
		notifier:      notifier,
		clock:         clk,
	}
}

// Login : вход по паролю или по подписи вызова, выдаёт пару access/refresh
func (s *AuthenticationService) Login(ctx context.Context, username string, presented model.Presentation, userAgent, ipAddress string) (*model.TokensPair, error) {
	identity, err := s.credentials.Verify(ctx, username, presented)
	if err != nil {
		return nil, err
	}

	return issueSession(ctx, s.jwtService, s.jwtRepository, identity, userAgent, ipAddress)
}

func (s *AuthenticationService) PasskeyChallenge(ctx context.Context, username string) (string, time.Time, error) {
	return s.credentials.IssueChallenge(ctx, username)
}

// RefreshToken обновляет пару токенов
// Выполняет следующие требования к операции refresh:
//  1. Операцию refresh можно выполнить только той парой токенов, которая была выдана вместе.
//  2. Запрещает операцию обновления токенов при изменении User-Agent.
//     При этом, после неудачной попытки выполнения операции, деавторизует пользователя,
//     который попытался выполнить обновление токенов.
//  3. При попытке обновления токенов с нового IP отправляет POST-запрос на заданный webhook
//     с информацией о попытке входа со стороннего IP. Запрещать операцию в данном случае не нужно.
//  4. Refresh-токен одноразовый: из параллельных запросов с одним токеном успешен только один.
func (s *AuthenticationService) RefreshToken(ctx context.Context, userAgent, ipAddress, accessToken, refreshToken string) (*model.TokensPair, error) {
	claims, err := s.jwtService.ValidateJWT(accessToken)
	if err != nil {
		zap.S().Debugw("[AuthenticationService] невалидный access токен", "error", err)
		return nil, unauthenticated()
	}

	refreshTokenUUID := claims.RefreshTokenUUID
	storedRefreshToken, err := s.jwtRepository.FindByUUID(ctx, refreshTokenUUID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, unauthenticated()
	}
	if err != nil {
		return nil, apperr.Internal("[AuthenticationService] ошибка поиска refresh токена", err)
	}

	if storedRefreshToken.Used {
		zap.S().Infow("[AuthenticationService] refresh токен уже использован", "uuid", refreshTokenUUID)
		return nil, unauthenticated()
	}
	if s.clock.Now().UTC().After(storedRefreshToken.ExpireAt) {
		zap.S().Infow("[AuthenticationService] refresh токен просрочен", "uuid", refreshTokenUUID)
		return nil, unauthenticated()
	}

	if storedRefreshToken.UserAgent != userAgent {
		if err := s.jwtRepository.MarkRefreshTokenUsedByUUID(ctx, refreshTokenUUID); err != nil {
			zap.S().Warnw("[AuthenticationService] не удалось отозвать токен", "uuid", refreshTokenUUID, "error", err)
		}
		zap.S().Warnw("[AuthenticationService] попытка обновления с другого User-Agent", "uuid", refreshTokenUUID)
		return nil, unauthenticated()
	}

	if bcrypt.CompareHashAndPassword([]byte(storedRefreshToken.TokenHash), []byte(refreshToken)) != nil {
		return nil, unauthenticated()
	}

	if storedRefreshToken.IpAddress != ipAddress {
		s.notifyNewIP(ctx, claims.UserUUID, ipAddress, storedRefreshToken.IpAddress)
	}

	if err := s.jwtRepository.MarkRefreshTokenUsedByUUID(ctx, refreshTokenUUID); err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return nil, unauthenticated()
		}
		return nil, apperr.Internal("[AuthenticationService] не удалось использовать токен", err)
	}

	identity, err := s.identities.FindByUUID(ctx, claims.UserUUID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, unauthenticated()
	}
	if err != nil {
		return nil, apperr.Internal("[AuthenticationService] ошибка поиска пользователя", err)
	}

	return issueSession(ctx, s.jwtService, s.jwtRepository, identity, userAgent, ipAddress)
}

// Logout : помечает refresh токен использованным, повторный выход не ошибка
func (s *AuthenticationService) Logout(ctx context.Context, refreshTokenUUID string) error {
	err := s.jwtRepository.MarkRefreshTokenUsedByUUID(ctx, refreshTokenUUID)
	switch {
	case err == nil, errors.Is(err, ports.ErrConflict):
		return nil
	case errors.Is(err, ports.ErrNotFound):
		return apperr.NotFound("сессия не найдена")
	default:
		return apperr.Internal("[AuthenticationService] не удалось завершить сессию", err)
	}
}

func (s *AuthenticationService) notifyNewIP(ctx context.Context, userUUID, newIP, oldIP string) {
	zap.S().Infow("[AuthenticationService] вход с нового ip адреса, отправка webhook", "user", userUUID)
	notifyCtx := context.WithoutCancel(ctx)
	go func() {
		if err := s.notifier.NotifyNewIP(notifyCtx, userUUID, newIP, oldIP); err != nil {
			zap.S().Warnw("[AuthenticationService] ошибка отправки webhook", "error", err)
		}
	}()
}

func issueSession(
	ctx context.Context,
	jwtService ports.JWTServiceInterface,
	jwtRepository ports.JWTRepositoryInterface,
	identity *model.Identity,
	userAgent, ipAddress string,
) (*model.TokensPair, error) {
	tokens, refreshToken, err := jwtService.GenerateAccessRefreshTokens(identity.UUID, identity.IsAdmin)
	if err != nil {
		return nil, apperr.Internal("[AuthenticationService] ошибка генерации токенов", err)
	}

	refreshToken.UserAgent = userAgent
	refreshToken.IpAddress = ipAddress
	if err := jwtRepository.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, apperr.Internal("[AuthenticationService] ошибка сохранения refresh токена", err)
	}

	return tokens, nil
}

func unauthenticated() error {
	return apperr.Auth(apperr.ReasonUnauthenticated, "невалидный токен")
}
