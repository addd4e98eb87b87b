package handler

import (
	"encoding/base64"
	"net/http"

	"paydocs-server/internal/model"
	"paydocs-server/internal/model/requestresponse"
	"paydocs-server/internal/ports"
	"paydocs-server/internal/util"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

type UserHandler struct {
	ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService}
}

// RegisterUser godoc
// @Summary Регистрация нового пользователя
// @Description Создает пользователя с паролем или открытым ключом ed25519 (base64, 32 байта) и сразу открывает сессию.
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.RegisterRequest true "Тело запроса"
// @Success 201 {object} requestresponse.RegisterResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/register [post]
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	input, ok := registerInput(w, req.Username, req.DisplayName, req.Password, req.PublicKey)
	if !ok {
		return
	}

	identity, tokens, err := h.UserService.Register(r.Context(), input, r.UserAgent(), clientIP(r))
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, requestresponse.RegisterResponse{
		Response: requestresponse.RegisterData{
			User:         requestresponse.UserViewFromModel(identity),
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
		},
	})
}

// GetUser godoc
// @Summary Получение информации о пользователе
// @Description Возвращает данные пользователя. Доступен самому пользователю и администратору.
// @Tags Users
// @Produce json
// @Param uuid path string true "UUID пользователя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.UserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/users/{uuid} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	user, err := h.UserService.GetUser(r.Context(), actor, chi.URLParam(r, "uuid"))
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.UserResponse{Data: requestresponse.UserViewFromModel(user)})
}

// UpdateUser godoc
// @Summary Обновление отображаемого имени
// @Description Изменяет отображаемое имя. Доступно самому пользователю и администратору.
// @Tags Users
// @Accept json
// @Produce json
// @Param uuid path string true "UUID пользователя"
// @Param body body requestresponse.UpdateUserRequest true "Новое имя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.UpdatedResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/users/{uuid} [put]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req requestresponse.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	if err := h.UserService.UpdateDisplayName(r.Context(), actor, chi.URLParam(r, "uuid"), req.DisplayName); err != nil {
		util.HandleAppError(w, err)
		return
	}

	writeUpdated(w)
}

// UpdateCredential godoc
// @Summary Смена учётных данных
// @Description Заменяет пароль или открытый ключ. Только сам пользователь.
// @Tags Users
// @Accept json
// @Produce json
// @Param uuid path string true "UUID пользователя"
// @Param body body requestresponse.UpdateCredentialRequest true "Новый пароль или ключ"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.UpdatedResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /api/users/{uuid}/credential [put]
func (h *UserHandler) UpdateCredential(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req requestresponse.UpdateCredentialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	input, ok := registerInput(w, "", "", req.Password, req.PublicKey)
	if !ok {
		return
	}

	if err := h.UserService.RotateCredential(r.Context(), actor, chi.URLParam(r, "uuid"), input); err != nil {
		util.HandleAppError(w, err)
		return
	}

	writeUpdated(w)
}

// DeleteUser godoc
// @Summary Удаление пользователя
// @Description Удаляет пользователя. Доступно самому пользователю и администратору.
// @Tags Users
// @Param uuid path string true "UUID пользователя"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 204
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/users/{uuid} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.UserService.DeleteUser(r.Context(), actor, chi.URLParam(r, "uuid")); err != nil {
		util.HandleAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListUsers godoc
// @Summary Список пользователей
// @Description Постраничный список пользователей. Только администратор.
// @Tags Users
// @Produce json
// @Param cursor query string false "Курсор следующей страницы"
// @Param limit query int false "Размер страницы"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListUsersResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Router /api/users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	limit, err := queryLimit(r)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	users, next, err := h.UserService.ListUsers(r.Context(), actor, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	resp := requestresponse.ListUsersResponse{}
	resp.Data.Users = lo.Map(users, func(user *model.Identity, _ int) requestresponse.UserView {
		return requestresponse.UserViewFromModel(user)
	})
	resp.Data.NextCursor = next
	util.WriteJSON(w, http.StatusOK, resp)
}

// registerInput : открытый ключ приходит в base64
func registerInput(w http.ResponseWriter, username, displayName, password, publicKey string) (model.RegisterInput, bool) {
	input := model.RegisterInput{Username: username, DisplayName: displayName, Password: password}
	if publicKey != "" {
		decoded, err := base64.StdEncoding.DecodeString(publicKey)
		if err != nil {
			util.HandleError(w, "public_key должен быть в base64", http.StatusBadRequest)
			return model.RegisterInput{}, false
		}
		input.PublicKey = decoded
	}
	return input, true
}

func writeUpdated(w http.ResponseWriter) {
	resp := requestresponse.UpdatedResponse{}
	resp.Response.Updated = true
	util.WriteJSON(w, http.StatusOK, resp)
}
