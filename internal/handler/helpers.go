package handler

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"

	"paydocs-server/internal/apperr"
	"paydocs-server/internal/model"
	"paydocs-server/internal/security"
	"paydocs-server/internal/util"
)

const maxJSONBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)).Decode(target); err != nil {
		util.HandleError(w, "некорректный JSON", http.StatusBadRequest)
		return err
	}
	return nil
}

// actorFrom : пользователь из контекста запроса, пустой Actor для анонимного запроса
func actorFrom(r *http.Request) model.Actor {
	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		return model.Actor{}
	}
	return claims.Actor()
}

// requireActor : отвечает 401, если запрос без авторизации
func requireActor(w http.ResponseWriter, r *http.Request) (model.Actor, bool) {
	actor := actorFrom(r)
	if !actor.Authenticated() {
		util.HandleAppError(w, apperr.Auth(apperr.ReasonUnauthenticated, "пользователь не авторизован"))
		return model.Actor{}, false
	}
	return actor, true
}

// clientIP : адрес клиента без порта (RemoteAddr уже переписан middleware.RealIP)
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, apperr.Validation("limit должен быть неотрицательным числом")
	}
	return limit, nil
}
