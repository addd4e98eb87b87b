package handler

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"paydocs-server/internal/model"
	"paydocs-server/internal/model/requestresponse"
	"paydocs-server/internal/ports"
	"paydocs-server/internal/util"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	resolvePath      = "/public/resolve/"
	fallbackFilename = "document.pdf"
)

// AccessHandler : оплата, выдача одноразового токена и получение содержимого по нему
type AccessHandler struct {
	coordinator ports.AccessCoordinator
	payments    ports.PaymentService
}

func NewAccessHandler(coordinator ports.AccessCoordinator, payments ports.PaymentService) *AccessHandler {
	return &AccessHandler{coordinator: coordinator, payments: payments}
}

// AccessState godoc
// @Summary Состояние доступа к документу
// @Description Фаза доступа текущего пользователя (authenticated, payment_pending, payment_confirmed, capability_issued, consumed, expired) и её основание
// @Tags Access
// @Produce json
// @Param doc_id path string true "ID документа"
// @Param Authorization header string false "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.AccessStateResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id}/access [get]
func (h *AccessHandler) AccessState(w http.ResponseWriter, r *http.Request) {
	view, err := h.coordinator.AccessState(r.Context(), actorFrom(r), chi.URLParam(r, "doc_id"))
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.AccessStateResponse{Data: view})
}

// Pay godoc
// @Summary Оплата документа
// @Description Списывает цену документа через реестр платежей. Повторная оплата подтверждённого документа возвращает ту же запись.
// @Tags Access
// @Accept json
// @Produce json
// @Param doc_id path string true "ID документа"
// @Param body body requestresponse.PayRequest true "Сумма"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.PaymentResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 402 {object} requestresponse.ErrorResponse "Недостаточно средств"
// @Failure 409 {object} requestresponse.ErrorResponse "Платёж уже обрабатывается"
// @Failure 422 {object} requestresponse.ErrorResponse "Неверная сумма, документ или отказ реестра"
// @Failure 503 {object} requestresponse.ErrorResponse "Реестр недоступен, можно повторить"
// @Router /api/docs/{doc_id}/pay [post]
func (h *AccessHandler) Pay(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req requestresponse.PayRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return
	}

	record, err := h.coordinator.Pay(r.Context(), actor, chi.URLParam(r, "doc_id"), req.Amount)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.PaymentResponse{Data: record})
}

// IssueCapability godoc
// @Summary Выдача одноразового токена
// @Description Выдаёт токен доступа к содержимому. Пока предыдущий токен не использован и не истёк, возвращается он же.
// @Tags Access
// @Produce json
// @Param doc_id path string true "ID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.CapabilityResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Нет оплаты или другого основания"
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/docs/{doc_id}/capability [post]
func (h *AccessHandler) IssueCapability(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	capability, err := h.coordinator.Issue(r.Context(), actor, chi.URLParam(r, "doc_id"))
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	resp := requestresponse.CapabilityResponse{}
	resp.Data.Token = capability.Token
	resp.Data.ExpiresAt = capability.ExpiresAt
	resp.Data.ResolveURL = resolvePath + capability.Token
	util.WriteJSON(w, http.StatusOK, resp)
}

// Resolve godoc
// @Summary Получение содержимого по токену
// @Description Обменивает одноразовый токен на содержимое документа. Второй запрос с тем же токеном получит already_consumed.
// @Tags Public
// @Produce application/pdf
// @Param token path string true "Одноразовый токен"
// @Success 200 {file} binary
// @Failure 404 {object} requestresponse.ErrorResponse "Неизвестный токен"
// @Failure 410 {object} requestresponse.ErrorResponse "Токен использован или истёк"
// @Failure 500 {object} requestresponse.ErrorResponse "Содержимое недоступно"
// @Router /public/resolve/{token} [post]
func (h *AccessHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	stream, _, document, err := h.coordinator.Resolve(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		util.HandleAppError(w, err)
		return
	}
	defer stream.Close()

	contentType, filename := "application/pdf", fallbackFilename
	if document != nil {
		if document.MimeType != "" {
			contentType = document.MimeType
		}
		filename = downloadFilename(document.Title)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, stream); err != nil {
		zap.S().Warnw("обрыв передачи содержимого", "error", err)
	}
}

// ListPayments godoc
// @Summary Мои платежи
// @Tags Access
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListPaymentsResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /api/payments [get]
func (h *AccessHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	payments, err := h.payments.ListPayments(r.Context(), actor.UUID)
	if err != nil {
		util.HandleAppError(w, err)
		return
	}

	resp := requestresponse.ListPaymentsResponse{}
	resp.Data.Payments = payments
	if resp.Data.Payments == nil {
		resp.Data.Payments = []*model.PaymentRecord{}
	}
	util.WriteJSON(w, http.StatusOK, resp)
}

func downloadFilename(title string) string {
	name := strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r < ' ' {
			return '_'
		}
		return r
	}, title))
	if name == "" {
		return fallbackFilename
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}
