package requestresponse

import "time"

// LoginRequest : тело запроса на аутентификацию по паролю
type LoginRequest struct {
	Username string `json:"username" example:"user1"`
	Password string `json:"password" example:"P@ssw0rd123"`
}

// PasskeyChallengeRequest : запрос вызова для входа по ключу
type PasskeyChallengeRequest struct {
	Username string `json:"username" example:"user1"`
}

// PasskeyChallengeResponse : вызов, который клиент подписывает закрытым ключом ed25519
type PasskeyChallengeResponse struct {
	Response struct {
		Challenge string    `json:"challenge" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
		ExpiresAt time.Time `json:"expires_at" example:"2026-03-01T12:01:00Z"`
	} `json:"response"`
}

// PasskeyLoginRequest : подпись вызова в base64
type PasskeyLoginRequest struct {
	Username  string `json:"username" example:"user1"`
	Challenge string `json:"challenge" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
	Signature string `json:"signature" example:"q83vEjRWeJq83vEjRWeJ..."`
}

// TokensResponse : пара токенов после входа
type TokensResponse struct {
	Response struct {
		AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
		RefreshToken string `json:"refresh_token" example:"sfuqwejqjoiu93e29"`
	} `json:"response"`
}

// CurrentUserResponse : информация о текущем пользователе
type CurrentUserResponse struct {
	Response struct {
		UserUUID string `json:"user_uuid" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
		IsAdmin  bool   `json:"is_admin" example:"false"`
	} `json:"response"`
}

// RefreshTokenRequest : запрос на обновление пары токенов
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" example:"sfuqwejqjoiu93e29"`
}

// LogoutItem : элемент ответа на logout
type LogoutItem struct {
	SessionUUID string `json:"session_uuid" example:"0f8fad5b-d9cb-469f-a165-70867728950e"`
	Deleted     bool   `json:"deleted" example:"true"`
}

// LogoutResponse : ответ на завершение сессии
type LogoutResponse struct {
	Response []LogoutItem `json:"response"`
}
