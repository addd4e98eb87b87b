package model

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentFailed    PaymentStatus = "failed"
)

// PaymentRecord : платёж за документ. После confirmed или failed запись не меняется
type PaymentRecord struct {
	ID            string        `db:"uuid" json:"id"`
	DocumentID    string        `db:"document_uuid" json:"document_id"`
	PayerUUID     string        `db:"payer_uuid" json:"payer_uuid"`
	Amount        Amount        `db:"amount" json:"amount"`
	TxID          string        `db:"tx_id" json:"tx_id,omitempty"`
	Status        PaymentStatus `db:"status" json:"status"`
	FailureReason string        `db:"failure_reason" json:"failure_reason,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// IsActive : pending или confirmed, на пару (документ, плательщик) такая запись одна
func (p *PaymentRecord) IsActive() bool {
	return p.Status == PaymentPending || p.Status == PaymentConfirmed
}

// Transfer : перевод в реестре. IdempotencyKey равен ID платежа
type Transfer struct {
	IdempotencyKey string `json:"idempotency_key"`
	From           string `json:"from"`
	To             string `json:"to"`
	Amount         Amount `json:"amount"`
	Memo           string `json:"memo"`
}
