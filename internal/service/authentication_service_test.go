package service_test

import (
	"context"
	"testing"
	"time"

	"paydocs-server/internal/apperr"
	"paydocs-server/internal/model"
	"paydocs-server/internal/security"
	"paydocs-server/internal/service"

	"github.com/raulk/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testUserAgent = "Mozilla/5.0"
	testIP        = "10.0.0.1"
)

type authFixture struct {
	*fixture
	auth       *service.AuthenticationService
	jwtService *security.JWTService
	notifier   *MockNotifier
	identity   *model.Identity
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := newFixture(t)
	jwtService := newJWTService(t)
	notifier := new(MockNotifier)
	credentials := service.NewCredentialService(f.identities, jwtService, f.jwtRepo, clock.New())

	identity, err := credentials.Register(context.Background(), model.RegisterInput{Username: "alice", Password: testPassword})
	require.NoError(t, err)

	return &authFixture{
		fixture:    f,
		auth:       service.NewAuthenticationService(credentials, f.identities, f.jwtRepo, jwtService, notifier, clock.New()),
		jwtService: jwtService,
		notifier:   notifier,
		identity:   identity,
	}
}

func (a *authFixture) login(t *testing.T) *model.TokensPair {
	t.Helper()
	tokens, err := a.auth.Login(context.Background(), "alice", model.PasswordPresentation(testPassword), testUserAgent, testIP)
	require.NoError(t, err)
	return tokens
}

// 1. Вход выдаёт access токен с UUID пользователя
func TestLogin_Success(t *testing.T) {
	a := newAuthFixture(t)

	tokens := a.login(t)
	claims, err := a.jwtService.ValidateJWT(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, a.identity.UUID, claims.UserUUID)
	assert.False(t, claims.IsAdmin)

	stored, err := a.jwtRepo.FindByUUID(context.Background(), claims.RefreshTokenUUID)
	require.NoError(t, err)
	assert.Equal(t, testUserAgent, stored.UserAgent)
	assert.Equal(t, testIP, stored.IpAddress)
}

// 2. Неверный пароль
func TestLogin_BadCredentials(t *testing.T) {
	a := newAuthFixture(t)

	_, err := a.auth.Login(context.Background(), "alice", model.PasswordPresentation("Wr0ng!Password"), testUserAgent, testIP)
	assert.Equal(t, apperr.ReasonBadCredentials, apperr.ReasonOf(err))
}

// 3. Refresh выдаёт новую пару, старая больше не работает
func TestRefreshToken_Rotates(t *testing.T) {
	a := newAuthFixture(t)
	ctx := context.Background()
	tokens := a.login(t)

	rotated, err := a.auth.RefreshToken(ctx, testUserAgent, testIP, tokens.AccessToken, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	_, err = a.auth.RefreshToken(ctx, testUserAgent, testIP, tokens.AccessToken, tokens.RefreshToken)
	assert.Equal(t, apperr.ReasonUnauthenticated, apperr.ReasonOf(err))
	a.notifier.AssertNotCalled(t, "NotifyNewIP", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// 4. Смена User-Agent отзывает токен
func TestRefreshToken_UserAgentChangeRevokes(t *testing.T) {
	a := newAuthFixture(t)
	ctx := context.Background()
	tokens := a.login(t)

	_, err := a.auth.RefreshToken(ctx, "curl/8.0", testIP, tokens.AccessToken, tokens.RefreshToken)
	assert.Equal(t, apperr.ReasonUnauthenticated, apperr.ReasonOf(err))

	_, err = a.auth.RefreshToken(ctx, testUserAgent, testIP, tokens.AccessToken, tokens.RefreshToken)
	assert.Equal(t, apperr.ReasonUnauthenticated, apperr.ReasonOf(err))
}

// 5. Новый IP не запрещает обновление, но отправляет уведомление
func TestRefreshToken_NewIPNotifies(t *testing.T) {
	a := newAuthFixture(t)
	tokens := a.login(t)

	called := make(chan struct{})
	a.notifier.On("NotifyNewIP", mock.Anything, a.identity.UUID, "10.0.0.2", testIP).
		Run(func(mock.Arguments) { close(called) }).
		Return(nil).Once()

	_, err := a.auth.RefreshToken(context.Background(), testUserAgent, "10.0.0.2", tokens.AccessToken, tokens.RefreshToken)
	require.NoError(t, err)

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("уведомление о новом IP не отправлено")
	}
	a.notifier.AssertExpectations(t)
}

// 6. Чужой refresh токен не подходит к access токену
func TestRefreshToken_WrongPair(t *testing.T) {
	a := newAuthFixture(t)
	first := a.login(t)
	second := a.login(t)

	_, err := a.auth.RefreshToken(context.Background(), testUserAgent, testIP, first.AccessToken, second.RefreshToken)
	assert.Equal(t, apperr.ReasonUnauthenticated, apperr.ReasonOf(err))

	_, err = a.auth.RefreshToken(context.Background(), testUserAgent, testIP, "not-a-jwt", first.RefreshToken)
	assert.Equal(t, apperr.ReasonUnauthenticated, apperr.ReasonOf(err))
}

// 7. Выход идемпотентен, после выхода refresh невозможен
func TestLogout(t *testing.T) {
	a := newAuthFixture(t)
	ctx := context.Background()
	tokens := a.login(t)
	claims, err := a.jwtService.ValidateJWT(tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, a.auth.Logout(ctx, claims.RefreshTokenUUID))
	require.NoError(t, a.auth.Logout(ctx, claims.RefreshTokenUUID))

	_, err = a.auth.RefreshToken(ctx, testUserAgent, testIP, tokens.AccessToken, tokens.RefreshToken)
	assert.Equal(t, apperr.ReasonUnauthenticated, apperr.ReasonOf(err))

	err = a.auth.Logout(ctx, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

// 8. Вызов для входа по ключу выдаётся и для неизвестного имени
func TestPasskeyChallenge(t *testing.T) {
	a := newAuthFixture(t)

	challenge, expiresAt, err := a.auth.PasskeyChallenge(context.Background(), "unknown-user")
	require.NoError(t, err)
	assert.NotEmpty(t, challenge)
	assert.True(t, expiresAt.After(time.Now()))

	_, err = a.jwtService.ValidateJWT(challenge)
	assert.Error(t, err)
}
