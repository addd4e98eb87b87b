package ports

import (
	"context"
	"time"

	"paydocs-server/internal/model"
	"paydocs-server/internal/security"
)

type AuthenticationService interface {
	Login(ctx context.Context, username string, presented model.Presentation, userAgent, ipAddress string) (*model.TokensPair, error)
	PasskeyChallenge(ctx context.Context, username string) (string, time.Time, error)
	RefreshToken(ctx context.Context, userAgent, ipAddress, accessToken, refreshToken string) (*model.TokensPair, error)
	Logout(ctx context.Context, refreshTokenUUID string) error
}

type JWTRepositoryInterface interface {
	FindByUUID(ctx context.Context, uuid string) (*model.RefreshToken, error)
	MarkRefreshTokenUsedByUUID(ctx context.Context, uuid string) error
	SaveRefreshToken(ctx context.Context, token *model.RefreshToken) error
}

type JWTServiceInterface interface {
	GenerateAccessRefreshTokens(userUUID string, isAdmin bool) (*model.TokensPair, *model.RefreshToken, error)
	ValidateJWT(tokenString string) (*security.Claims, error)
	IssueChallenge(username string) (string, time.Time, error)
	VerifyChallenge(challenge, username string) (string, time.Time, error)
}

// ChallengeRepository : одноразовость вызовов для входа по ключу
type ChallengeRepository interface {
	// ConsumeChallenge : повторное использование nonce -> ErrConflict
	ConsumeChallenge(ctx context.Context, nonce string, expiresAt, now time.Time) error
}

// Notifier : уведомление о входе с нового IP
type Notifier interface {
	NotifyNewIP(ctx context.Context, userUUID, newIP, oldIP string) error
}
