package requestresponse

import (
	"time"

	"paydocs-server/internal/model"
)

// RegisterRequest : тело запроса регистрации, указывается password или public_key (base64, ed25519)
type RegisterRequest struct {
	Username    string `json:"username" example:"newuser123"`
	DisplayName string `json:"display_name,omitempty" example:"Новый пользователь"`
	Password    string `json:"password,omitempty" example:"P@ssw0rd!"`
	PublicKey   string `json:"public_key,omitempty" example:"11qYAYKxCrfVS/7TyWQHOg7hcvPapiMlrwIaaPcHURo="`
}

// RegisterResponse : созданный пользователь и его первая сессия
type RegisterResponse struct {
	Response RegisterData `json:"response"`
}

type RegisterData struct {
	User         UserView `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
}

// ErrorResponse : стандартная структура ошибки
type ErrorResponse struct {
	Error     string `json:"error" example:"Bad Request"`
	Message   string `json:"message" example:"неверное имя пользователя или учётные данные"`
	Code      int    `json:"code" example:"400"`
	Kind      string `json:"kind,omitempty" example:"validation"`
	Reason    string `json:"reason,omitempty" example:"insufficient_funds"`
	Retryable bool   `json:"retryable,omitempty" example:"false"`
}

// UserView : пользователь без учётных данных
type UserView struct {
	UUID           string    `json:"uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
	Username       string    `json:"username" example:"user1"`
	DisplayName    string    `json:"display_name" example:"Пользователь"`
	CredentialKind string    `json:"credential_kind" example:"password"`
	IsAdmin        bool      `json:"is_admin" example:"false"`
	CreatedAt      time.Time `json:"created_at"`
}

func UserViewFromModel(identity *model.Identity) UserView {
	return UserView{
		UUID:           identity.UUID,
		Username:       identity.Username,
		DisplayName:    identity.DisplayName,
		CredentialKind: string(identity.Credential.Kind),
		IsAdmin:        identity.IsAdmin,
		CreatedAt:      identity.CreatedAt,
	}
}

// UserResponse : успешный ответ с данными пользователя
type UserResponse struct {
	Data UserView `json:"data"`
}

// UpdateUserRequest : тело запроса на обновление пользователя
type UpdateUserRequest struct {
	DisplayName string `json:"display_name" example:"Новое имя"`
}

// UpdateCredentialRequest : новый пароль или новый открытый ключ
type UpdateCredentialRequest struct {
	Password  string `json:"password,omitempty" example:"P@ssw0rd123"`
	PublicKey string `json:"public_key,omitempty" example:"11qYAYKxCrfVS/7TyWQHOg7hcvPapiMlrwIaaPcHURo="`
}

// UpdatedResponse : успешный ответ
type UpdatedResponse struct {
	Response struct {
		Updated bool `json:"updated" example:"true"`
	} `json:"response"`
}

// ListUsersResponse : успешный ответ
type ListUsersResponse struct {
	Data struct {
		Users      []UserView `json:"users"`
		NextCursor string     `json:"next_cursor,omitempty"`
	} `json:"data"`
}
