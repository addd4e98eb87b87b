package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"paydocs-server/internal/apperr"
	"paydocs-server/internal/model"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPGateway : внешний реестр по HTTP.
//
//	POST {endpoint}/transfers, заголовок Idempotency-Key
//	2xx {"tx_id": "..."}; 402 недостаточно средств; 404/409/422 отказ; 5xx и сетевые ошибки - реестр недоступен
type HTTPGateway struct {
	client   *http.Client
	endpoint string
	apiKey   string
}

func NewHTTPGateway(endpoint, apiKey string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
	}
}

type transferRequest struct {
	From   string       `json:"from"`
	To     string       `json:"to"`
	Amount model.Amount `json:"amount"`
	Memo   string       `json:"memo"`
}

type transferResponse struct {
	TxID  string `json:"tx_id"`
	Error string `json:"error"`
}

func (g *HTTPGateway) Transfer(ctx context.Context, transfer model.Transfer) (string, error) {
	body, err := json.Marshal(transferRequest{
		From:   transfer.From,
		To:     transfer.To,
		Amount: transfer.Amount,
		Memo:   transfer.Memo,
	})
	if err != nil {
		return "", apperr.Internal("ошибка сериализации перевода", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"/transfers", bytes.NewReader(body))
	if err != nil {
		return "", apperr.Internal("ошибка создания запроса к реестру", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", transfer.IdempotencyKey)
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", apperr.Payment(apperr.ReasonLedgerUnavailable, "реестр недоступен", err)
	}
	defer resp.Body.Close()

	var payload transferResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = json.Unmarshal(raw, &payload)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if payload.TxID == "" {
			return "", apperr.Payment(apperr.ReasonLedgerUnavailable, "реестр не вернул tx_id", nil)
		}
		return payload.TxID, nil
	case resp.StatusCode == http.StatusPaymentRequired:
		return "", apperr.Payment(apperr.ReasonInsufficientFunds, "недостаточно средств", statusError(resp.StatusCode, payload.Error))
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusConflict, resp.StatusCode == http.StatusUnprocessableEntity:
		return "", apperr.Payment(apperr.ReasonLedgerRejected, "реестр отклонил перевод", statusError(resp.StatusCode, payload.Error))
	default:
		return "", apperr.Payment(apperr.ReasonLedgerUnavailable, "реестр недоступен", statusError(resp.StatusCode, payload.Error))
	}
}

func statusError(status int, message string) error {
	if message == "" {
		return fmt.Errorf("статус %d", status)
	}
	return fmt.Errorf("статус %d: %s", status, message)
}
