package handler_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"paydocs-server/internal/apperr"
	"paydocs-server/internal/handler"
	"paydocs-server/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func userRouter(actor model.Actor, users *MockUserService) http.Handler {
	h := handler.NewUserHandler(users)
	r := chi.NewRouter()
	r.Use(withActor(actor))
	r.Post("/api/register", h.RegisterUser)
	r.Get("/api/users", h.ListUsers)
	r.Get("/api/users/{uuid}", h.GetUser)
	r.Put("/api/users/{uuid}", h.UpdateUser)
	r.Put("/api/users/{uuid}/credential", h.UpdateCredential)
	r.Delete("/api/users/{uuid}", h.DeleteUser)
	return r
}

func TestRegisterHandler_PublicKey(t *testing.T) {
	publicKey, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	users := new(MockUserService)
	users.On("Register", mock.Anything, model.RegisterInput{Username: "bob", PublicKey: publicKey}, "Mozilla/5.0", "10.0.0.1").
		Return(&model.Identity{UUID: "u-1", Username: "bob", DisplayName: "bob", Credential: model.PublicKeyCredential(publicKey)},
			&model.TokensPair{AccessToken: "access", RefreshToken: "refresh"}, nil).Once()

	rec := post(userRouter(model.Actor{}, users), "/api/register",
		`{"username":"bob","public_key":"`+base64.StdEncoding.EncodeToString(publicKey)+`"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"credential_kind":"public_key"`)
	assert.Contains(t, body, `"access_token":"access"`)
	assert.NotContains(t, body, base64.StdEncoding.EncodeToString(publicKey))
	users.AssertExpectations(t)
}

func TestRegisterHandler_Errors(t *testing.T) {
	users := new(MockUserService)
	users.On("Register", mock.Anything, model.RegisterInput{Username: "alice", Password: "weak"}, mock.Anything, mock.Anything).
		Return(nil, nil, apperr.Validation("пароль слишком простой")).Once()
	router := userRouter(model.Actor{}, users)

	rec := post(router, "/api/register", `{"username":"alice","password":"weak"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", decodeError(t, rec)["kind"])

	rec = post(router, "/api/register", `{"username":"bob","public_key":"not base64!"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	users.AssertExpectations(t)
}

func TestGetUserHandler(t *testing.T) {
	users := new(MockUserService)
	actor := model.Actor{UUID: "u-1"}
	users.On("GetUser", mock.Anything, actor, "u-1").
		Return(&model.Identity{UUID: "u-1", Username: "alice", Credential: model.PasswordCredential("$2a$hash")}, nil).Once()
	users.On("GetUser", mock.Anything, actor, "u-2").Return(nil, apperr.Forbidden("доступ запрещён")).Once()
	router := userRouter(actor, users)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/u-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "$2a$hash")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/u-2", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	userRouter(model.Actor{}, users).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/u-1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	users.AssertExpectations(t)
}

func TestUpdateCredentialHandler(t *testing.T) {
	users := new(MockUserService)
	actor := model.Actor{UUID: "u-1"}
	users.On("RotateCredential", mock.Anything, actor, "u-1", model.RegisterInput{Password: "N3w!Password"}).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/api/users/u-1/credential", strings.NewReader(`{"password":"N3w!Password"}`))
	rec := httptest.NewRecorder()
	userRouter(actor, users).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response":{"updated":true}}`, rec.Body.String())
	users.AssertExpectations(t)
}

func TestListUsersHandler(t *testing.T) {
	users := new(MockUserService)
	admin := model.Actor{UUID: "admin", IsAdmin: true}
	users.On("ListUsers", mock.Anything, admin, "c1", 2).
		Return([]*model.Identity{{UUID: "u-1"}, {UUID: "u-2"}}, "c2", nil).Once()
	router := userRouter(admin, users)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users?cursor=c1&limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"next_cursor":"c2"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	users.AssertExpectations(t)
}

func TestDeleteUserHandler(t *testing.T) {
	users := new(MockUserService)
	users.On("DeleteUser", mock.Anything, model.Actor{UUID: "u-1"}, "u-1").Return(nil).Once()

	rec := httptest.NewRecorder()
	userRouter(model.Actor{UUID: "u-1"}, users).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/users/u-1", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	users.AssertExpectations(t)
}
