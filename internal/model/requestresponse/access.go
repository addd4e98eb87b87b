package requestresponse

import (
	"time"

	"paydocs-server/internal/model"
)

// PayRequest : сумма строкой с двумя знаками, должна совпадать с ценой документа
type PayRequest struct {
	Amount string `json:"amount" example:"5.00"`
}

// PaymentResponse : запись платежа
type PaymentResponse struct {
	Data *model.PaymentRecord `json:"data"`
}

// ListPaymentsResponse : платежи текущего пользователя
type ListPaymentsResponse struct {
	Data struct {
		Payments []*model.PaymentRecord `json:"payments"`
	} `json:"data"`
}

// CapabilityResponse : одноразовый токен и адрес, по которому его можно обменять на содержимое
type CapabilityResponse struct {
	Data struct {
		Token      string    `json:"token" example:"Zm9vYmFyYmF6cXV4..."`
		ExpiresAt  time.Time `json:"expires_at"`
		ResolveURL string    `json:"resolve_url" example:"/public/resolve/Zm9vYmFyYmF6cXV4..."`
	} `json:"data"`
}

// AccessStateResponse : состояние доступа пары (документ, пользователь)
type AccessStateResponse struct {
	Data *model.AccessView `json:"data"`
}
