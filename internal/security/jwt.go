package security

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"paydocs-server/config"
	"paydocs-server/internal/model"
	"paydocs-server/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

const (
	issuer           = "paydocs-server"
	challengeSubject = "passkey-challenge"
)

type Claims struct {
	UserUUID         string `json:"user_uuid"`
	RefreshTokenUUID string `json:"refresh_token_id"`
	IsAdmin          bool   `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Actor() model.Actor {
	return model.Actor{UUID: c.UserUUID, IsAdmin: c.IsAdmin}
}

// challengeClaims : вызов для входа по ключу, подписывается клиентом закрытым ключом
type challengeClaims struct {
	Username string `json:"username"`
	Nonce    string `json:"nonce"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secretKey       []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	challengeTTL    time.Duration
	now             func() time.Time
}

func NewJWTService(cfg *config.JWTConfig, challengeTTL time.Duration) (*JWTService, error) {
	accessTTL, err := time.ParseDuration(cfg.AccessTokenTTL)
	if err != nil {
		return nil, util.LogError("[JWTService] ошибка парсинга access_token_ttl", err)
	}
	refreshTTL, err := time.ParseDuration(cfg.RefreshTokenTTL)
	if err != nil {
		return nil, util.LogError("[JWTService] ошибка парсинга refresh_token_ttl", err)
	}

	return &JWTService{
		secretKey:       []byte(cfg.SecretKey),
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
		challengeTTL:    challengeTTL,
		now:             time.Now,
	}, nil
}

func (service *JWTService) GenerateAccessRefreshTokens(userUUID string, isAdmin bool) (*model.TokensPair, *model.RefreshToken, error) {
	refreshToken, refreshTokenStr, err := GenerateRefreshToken()
	if err != nil {
		return nil, nil, util.LogError("[JWTService] ошибка генерации рефреш токена", err)
	}

	now := service.now().UTC()
	refreshToken.UserUUID = userUUID
	refreshToken.CreatedAt = now
	refreshToken.ExpireAt = now.Add(service.refreshTokenTTL)

	claims := Claims{
		UserUUID:         userUUID,
		RefreshTokenUUID: refreshToken.UUID,
		IsAdmin:          isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(service.accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(service.secretKey)
	if err != nil {
		return nil, nil, util.LogError("[JWTService] ошибка подписи токена", err)
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenStr,
	}, refreshToken, nil
}

func GenerateRefreshToken() (*model.RefreshToken, string, error) {
	jwtTokenBytes := make([]byte, 32)
	if _, err := rand.Read(jwtTokenBytes); err != nil {
		return nil, "", util.LogError("ошибка генерации", err)
	}
	refreshTokenStr := base64.StdEncoding.EncodeToString(jwtTokenBytes)

	hashedToken, err := bcrypt.GenerateFromPassword([]byte(refreshTokenStr), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", util.LogError("ошибка хэширования", err)
	}

	// refreshTokenStr отдается клиенту
	// hashedToken сохраняется в БД
	return &model.RefreshToken{
		UUID:      uuid.New().String(),
		TokenHash: string(hashedToken),
	}, refreshTokenStr, nil
}

func (service *JWTService) ValidateJWT(jwtTokenStr string) (*Claims, error) {
	claims := &Claims{}
	jwtToken, err := jwt.ParseWithClaims(jwtTokenStr, claims, service.keyFunc,
		jwt.WithIssuer(issuer), jwt.WithTimeFunc(service.now))
	if err != nil {
		return nil, fmt.Errorf("невалидный токен: %w", err)
	}
	if !jwtToken.Valid || claims.Subject == challengeSubject {
		return nil, fmt.Errorf("невалидный токен")
	}

	return claims, nil
}

// IssueChallenge : короткоживущий подписанный вызов, привязанный к имени пользователя
func (service *JWTService) IssueChallenge(username string) (string, time.Time, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", time.Time{}, util.LogError("[JWTService] ошибка генерации nonce", err)
	}

	now := service.now().UTC()
	expiresAt := now.Add(service.challengeTTL)
	claims := challengeClaims{
		Username: username,
		Nonce:    base64.RawURLEncoding.EncodeToString(nonce),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   challengeSubject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	challenge, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(service.secretKey)
	if err != nil {
		return "", time.Time{}, util.LogError("[JWTService] ошибка подписи вызова", err)
	}
	return challenge, expiresAt, nil
}

// VerifyChallenge : возвращает nonce и срок действия вызова, одноразовость обеспечивает вызывающий
func (service *JWTService) VerifyChallenge(challenge, username string) (string, time.Time, error) {
	claims := &challengeClaims{}
	token, err := jwt.ParseWithClaims(challenge, claims, service.keyFunc,
		jwt.WithIssuer(issuer), jwt.WithSubject(challengeSubject), jwt.WithTimeFunc(service.now))
	if err != nil || !token.Valid {
		return "", time.Time{}, fmt.Errorf("невалидный вызов: %w", err)
	}
	if claims.Username != username {
		return "", time.Time{}, fmt.Errorf("вызов выдан другому пользователю")
	}
	if claims.Nonce == "" || claims.ExpiresAt == nil {
		return "", time.Time{}, fmt.Errorf("в вызове нет nonce или срока действия")
	}
	return claims.Nonce, claims.ExpiresAt.Time, nil
}

func (service *JWTService) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method.Alg() != jwt.SigningMethodHS512.Alg() {
		return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
	}
	return service.secretKey, nil
}

type refreshTokenFinder interface {
	FindByUUID(ctx context.Context, uuid string) (*model.RefreshToken, error)
}

func JWTMiddleware(jwtService *JWTService, jwtRepository refreshTokenFinder, adminToken string) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(handleAuthentication(jwtService, jwtRepository, adminToken, false, next))
	}
}

// OptionalJWTMiddleware : запрос без заголовка Authorization проходит анонимно, неверный токен по-прежнему 401
func OptionalJWTMiddleware(jwtService *JWTService, jwtRepository refreshTokenFinder, adminToken string) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(handleAuthentication(jwtService, jwtRepository, adminToken, true, next))
	}
}

func handleAuthentication(jwtService *JWTService, jwtRepository refreshTokenFinder, adminToken string, optional bool, next http.Handler) func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		authorizationHeader := request.Header.Get("Authorization")
		if optional && authorizationHeader == "" {
			next.ServeHTTP(writer, request)
			return
		}
		if !strings.HasPrefix(authorizationHeader, "Bearer ") {
			util.HandleError(writer, "unauthorized", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authorizationHeader, "Bearer ")

		if adminToken != "" && token == adminToken {
			adminClaims := &Claims{
				UserUUID: "admin",
				IsAdmin:  true,
			}
			req := request.WithContext(context.WithValue(request.Context(), UserContextKey, adminClaims))
			next.ServeHTTP(writer, req)
			return
		}

		claims, err := jwtService.ValidateJWT(token)
		if err != nil {
			zap.S().Debugw("невалидный токен", "error", err)
			util.HandleError(writer, "невалидный токен", http.StatusUnauthorized)
			return
		}

		refreshToken, err := jwtRepository.FindByUUID(request.Context(), claims.RefreshTokenUUID)
		if err != nil {
			zap.S().Debugw("рефреш токен не найден", "error", err)
			util.HandleError(writer, "unauthorized", http.StatusUnauthorized)
			return
		}

		if refreshToken.Used {
			util.HandleError(writer, "сессия завершена", http.StatusUnauthorized)
			return
		}

		req := request.WithContext(context.WithValue(request.Context(), UserContextKey, claims))
		next.ServeHTTP(writer, req)
	}
}

func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("пользователь не авторизован")
	}
	return claims, nil
}

// WithClaims : кладёт claims в контекст (используется в тестах обработчиков)
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}
