package handler_test

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"paydocs-server/internal/apperr"
	"paydocs-server/internal/handler"
	"paydocs-server/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type accessFixture struct {
	coordinator *MockAccessCoordinator
	payments    *MockPaymentService
}

func newAccessFixture() *accessFixture {
	return &accessFixture{coordinator: new(MockAccessCoordinator), payments: new(MockPaymentService)}
}

func (f *accessFixture) serve(actor model.Actor, method, target, body string) *httptest.ResponseRecorder {
	h := handler.NewAccessHandler(f.coordinator, f.payments)
	r := chi.NewRouter()
	r.Use(withActor(actor))
	r.Get("/api/docs/{doc_id}/access", h.AccessState)
	r.Post("/api/docs/{doc_id}/pay", h.Pay)
	r.Post("/api/docs/{doc_id}/capability", h.IssueCapability)
	r.Get("/api/payments", h.ListPayments)
	r.Post("/public/resolve/{token}", h.Resolve)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestResolve_StreamsContent(t *testing.T) {
	f := newAccessFixture()
	f.coordinator.On("Resolve", mock.Anything, "tok").Return(
		io.NopCloser(strings.NewReader("%PDF-1.4")),
		&model.AccessCapability{Token: "tok", Consumed: true},
		&model.Document{ID: "doc-1", Title: "Конспект", MimeType: "application/pdf"},
		nil,
	)

	rec := f.serve(model.Actor{}, http.MethodPost, "/public/resolve/tok", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4", rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	disposition, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	assert.Equal(t, "Конспект.pdf", params["filename"])
}

func TestResolve_WithoutDocumentMetadata(t *testing.T) {
	f := newAccessFixture()
	f.coordinator.On("Resolve", mock.Anything, "tok").Return(
		io.NopCloser(strings.NewReader("data")), &model.AccessCapability{Token: "tok"}, nil, nil,
	)

	rec := f.serve(model.Actor{}, http.MethodPost, "/public/resolve/tok", "")

	require.Equal(t, http.StatusOK, rec.Code)
	_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "document.pdf", params["filename"])
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		reason apperr.Reason
	}{
		{"использован", apperr.Capability(apperr.ReasonAlreadyConsumed, "токен уже использован", nil), http.StatusGone, apperr.ReasonAlreadyConsumed},
		{"истёк", apperr.Capability(apperr.ReasonCapabilityExpired, "срок токена истёк", nil), http.StatusGone, apperr.ReasonCapabilityExpired},
		{"неизвестный", apperr.Capability(apperr.ReasonUnknownCapability, "токен не найден", nil), http.StatusNotFound, apperr.ReasonUnknownCapability},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAccessFixture()
			f.coordinator.On("Resolve", mock.Anything, "tok").Return(nil, nil, nil, tt.err)

			rec := f.serve(model.Actor{}, http.MethodPost, "/public/resolve/tok", "")

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, string(tt.reason), decodeError(t, rec)["reason"])
		})
	}
}

func TestPay(t *testing.T) {
	f := newAccessFixture()
	buyer := model.Actor{UUID: "buyer"}
	f.coordinator.On("Pay", mock.Anything, buyer, "doc-1", "5.00").
		Return(&model.PaymentRecord{ID: "pay-1", DocumentID: "doc-1", PayerUUID: "buyer", Amount: 500, Status: model.PaymentConfirmed}, nil).Once()

	rec := f.serve(buyer, http.MethodPost, "/api/docs/doc-1/pay", `{"amount":"5.00"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data model.PaymentRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pay-1", resp.Data.ID)
	assert.Equal(t, model.PaymentConfirmed, resp.Data.Status)
	f.coordinator.AssertExpectations(t)
}

func TestPay_Errors(t *testing.T) {
	f := newAccessFixture()

	rec := f.serve(model.Actor{}, http.MethodPost, "/api/docs/doc-1/pay", `{"amount":"5.00"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.serve(model.Actor{UUID: "buyer"}, http.MethodPost, "/api/docs/doc-1/pay", `{amount`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.coordinator.AssertNotCalled(t, "Pay", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	f.coordinator.On("Pay", mock.Anything, model.Actor{UUID: "poor"}, "doc-1", "5.00").
		Return(nil, apperr.Payment(apperr.ReasonInsufficientFunds, "недостаточно средств", nil))
	rec = f.serve(model.Actor{UUID: "poor"}, http.MethodPost, "/api/docs/doc-1/pay", `{"amount":"5.00"}`)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, string(apperr.ReasonInsufficientFunds), decodeError(t, rec)["reason"])

	f.coordinator.On("Pay", mock.Anything, model.Actor{UUID: "late"}, "doc-1", "5.00").
		Return(nil, apperr.Payment(apperr.ReasonLedgerUnavailable, "реестр недоступен", nil))
	rec = f.serve(model.Actor{UUID: "late"}, http.MethodPost, "/api/docs/doc-1/pay", `{"amount":"5.00"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, true, decodeError(t, rec)["retryable"])
}

func TestIssueCapability(t *testing.T) {
	f := newAccessFixture()
	expiresAt := time.Date(2026, 3, 1, 12, 15, 0, 0, time.UTC)
	f.coordinator.On("Issue", mock.Anything, model.Actor{UUID: "buyer"}, "doc-1").
		Return(&model.AccessCapability{Token: "tok-1", DocumentID: "doc-1", ExpiresAt: expiresAt}, nil)

	rec := f.serve(model.Actor{UUID: "buyer"}, http.MethodPost, "/api/docs/doc-1/capability", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Token      string    `json:"token"`
			ExpiresAt  time.Time `json:"expires_at"`
			ResolveURL string    `json:"resolve_url"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "tok-1", resp.Data.Token)
	assert.True(t, expiresAt.Equal(resp.Data.ExpiresAt))
	assert.Equal(t, "/public/resolve/tok-1", resp.Data.ResolveURL)
}

func TestIssueCapability_NoAccess(t *testing.T) {
	f := newAccessFixture()
	f.coordinator.On("Issue", mock.Anything, model.Actor{UUID: "stranger"}, "doc-1").
		Return(nil, apperr.Capability(apperr.ReasonNoAccess, "нет оплаты", nil))

	rec := f.serve(model.Actor{UUID: "stranger"}, http.MethodPost, "/api/docs/doc-1/capability", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAccessState_Anonymous(t *testing.T) {
	f := newAccessFixture()
	f.coordinator.On("AccessState", mock.Anything, model.Actor{}, "doc-1").
		Return(&model.AccessView{DocumentID: "doc-1", Phase: model.PhaseUnauthenticated, Basis: model.BasisNone}, nil)

	rec := f.serve(model.Actor{}, http.MethodGet, "/api/docs/doc-1/access", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"phase":"unauthenticated"`)
}

func TestListPayments_Empty(t *testing.T) {
	f := newAccessFixture()
	f.payments.On("ListPayments", mock.Anything, "buyer").Return(nil, nil)

	rec := f.serve(model.Actor{UUID: "buyer"}, http.MethodGet, "/api/payments", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"payments":[]}}`, rec.Body.String())
}
