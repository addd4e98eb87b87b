package handler

import (
	"encoding/base64"
	"net/http"
	"strings"

	"paydocs-server/internal/apperr"
	"paydocs-server/internal/model"
	"paydocs-server/internal/model/requestresponse"
	"paydocs-server/internal/ports"
	"paydocs-server/internal/util"

	"github.com/go-chi/chi/v5"
)

type AuthenticationHandler struct {
	ports.AuthenticationService
	ports.JWTServiceInterface
}

func NewAuthenticationHandler(
	authenticationService ports.AuthenticationService,
	jwtServiceInterface ports.JWTServiceInterface,
) *AuthenticationHandler {
	return &AuthenticationHandler{
		authenticationService,
		jwtServiceInterface}
}

// Login godoc
// @Summary Аутентификация пользователя по паролю
// @Description Получение пары токенов по имени пользователя и паролю
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.TokensResponse "Успешная аутентификация"
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON или пустые поля"
// @Failure 401 {object} requestresponse.ErrorResponse "Неверное имя пользователя или пароль"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Username == "" || req.Password == "" {
		util.HandleError(w, "username и password обязательны", http.StatusBadRequest)
		return
	}

	tokens, err := h.AuthenticationService.Login(r.Context(), req.Username, model.PasswordPresentation(req.Password), r.UserAgent(), clientIP(r))
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	writeTokens(w, tokens)
}

// PasskeyChallenge godoc
// @Summary Вызов для входа по ключу
// @Description Выдаёт вызов, который клиент подписывает закрытым ключом ed25519. Вызов выдаётся для любого имени.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.PasskeyChallengeRequest true "Тело запроса"
// @Success 200 {object} requestresponse.PasskeyChallengeResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/passkey/challenge [post]
func (h *AuthenticationHandler) PasskeyChallenge(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.PasskeyChallengeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Username == "" {
		util.HandleError(w, "username обязателен", http.StatusBadRequest)
		return
	}

	challenge, expiresAt, err := h.AuthenticationService.PasskeyChallenge(r.Context(), req.Username)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	resp := requestresponse.PasskeyChallengeResponse{}
	resp.Response.Challenge = challenge
	resp.Response.ExpiresAt = expiresAt
	util.WriteJSON(w, http.StatusOK, resp)
}

// PasskeyLogin godoc
// @Summary Вход по ключу
// @Description Проверяет подпись вызова открытым ключом пользователя и выдаёт пару токенов
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.PasskeyLoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.TokensResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/passkey [post]
func (h *AuthenticationHandler) PasskeyLogin(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.PasskeyLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}
	if req.Username == "" || req.Challenge == "" || req.Signature == "" {
		util.HandleError(w, "username, challenge и signature обязательны", http.StatusBadRequest)
		return
	}

	signature, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		util.HandleError(w, "signature должна быть в base64", http.StatusBadRequest)
		return
	}

	tokens, err := h.AuthenticationService.Login(r.Context(), req.Username, model.PasskeyPresentation(req.Challenge, signature), r.UserAgent(), clientIP(r))
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	writeTokens(w, tokens)
}

// GetCurrentUsersUUID godoc
// @Summary Получение UUID текущего пользователя
// @Description Возвращает UUID пользователя, который авторизован в системе
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.CurrentUserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /api/auth/me [get]
func (h *AuthenticationHandler) GetCurrentUsersUUID(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	resp := requestresponse.CurrentUserResponse{}
	resp.Response.UserUUID = actor.UUID
	resp.Response.IsAdmin = actor.IsAdmin
	util.WriteJSON(w, http.StatusOK, resp)
}

// RefreshToken godoc
// @Summary Обновление токенов
// @Description Обновляет пару токенов (access и refresh) по действующему access и refresh токену
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshTokenRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.TokensResponse "Новые access и refresh токены"
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный JSON"
// @Failure 401 {object} requestresponse.ErrorResponse "Не авторизован или невалидный токен"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/refresh [post]
func (h *AuthenticationHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		util.HandleAppError(w, apperr.Auth(apperr.ReasonUnauthenticated, "пустой или неверный заголовок Authorization"))
		return
	}
	accessToken := strings.TrimPrefix(authHeader, "Bearer ")

	var req requestresponse.RefreshTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	tokens, err := h.AuthenticationService.RefreshToken(r.Context(), r.UserAgent(), clientIP(r), accessToken, req.RefreshToken)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	writeTokens(w, tokens)
}

// Logout godoc
// @Summary Завершение авторизованной сессии
// @Description Инвалидирует refresh-токен сессии, к которой относится access-токен из URL. Повторный вызов не ошибка.
// @Tags Authentication
// @Produce json
// @Param token path string true "Access-токен пользователя (JWT)"
// @Success 200 {object} requestresponse.LogoutResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/{token} [delete]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	accessToken := chi.URLParam(r, "token")
	if accessToken == "" {
		util.HandleError(w, "токен не указан", http.StatusBadRequest)
		return
	}

	claims, err := h.JWTServiceInterface.ValidateJWT(accessToken)
	if err != nil {
		util.HandleAppError(w, apperr.Auth(apperr.ReasonUnauthenticated, "невалидный токен"))
		return
	}

	if err := h.AuthenticationService.Logout(r.Context(), claims.RefreshTokenUUID); err != nil {
		util.HandleAppError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.LogoutResponse{
		Response: []requestresponse.LogoutItem{
			{SessionUUID: claims.RefreshTokenUUID, Deleted: true},
		},
	})
}

func writeTokens(w http.ResponseWriter, tokens *model.TokensPair) {
	resp := requestresponse.TokensResponse{}
	resp.Response.AccessToken = tokens.AccessToken
	resp.Response.RefreshToken = tokens.RefreshToken
	util.WriteJSON(w, http.StatusOK, resp)
}

