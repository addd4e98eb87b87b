package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"paydocs-server/internal/apperr"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SetupLogger : создаёт zap логгер и делает его глобальным (zap.L / zap.S)
func SetupLogger(level string, development bool) (*zap.Logger, error) {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("неверный уровень логирования %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("ошибка создания логгера: %w", err)
	}
	zap.ReplaceGlobals(logger)

	return logger, nil
}

func LogError(message string, err error) error {
	zap.S().Errorw(message, "error", err)
	return fmt.Errorf("%s: %w", message, err)
}

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Code      int    `json:"code"`
	Kind      string `json:"kind,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func HandleError(w http.ResponseWriter, message string, statusCode int) {
	writeError(w, errorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// HandleAppError : отвечает клиенту по типизированной ошибке (apperr), остальное считает внутренней ошибкой
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	statusCode := apperr.HTTPStatus(appErr)
	writeError(w, errorResponse{
		Error:     http.StatusText(statusCode),
		Message:   appErr.Message,
		Code:      statusCode,
		Kind:      string(appErr.Kind),
		Reason:    string(appErr.Reason),
		Retryable: appErr.Retryable,
	})
}

func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.S().Warnw("ошибка записи ответа", "error", err)
	}
}

func writeError(w http.ResponseWriter, response errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(response.Code)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		zap.S().Warnw("ошибка записи ответа", "error", err)
	}
}
