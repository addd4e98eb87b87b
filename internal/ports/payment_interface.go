package ports

import (
	"context"
	"time"

	"paydocs-server/internal/model"
)

// PaymentRepository : записи платежей. На пару (документ, плательщик) не больше одной активной записи
type PaymentRepository interface {
	CreatePending(ctx context.Context, record *model.PaymentRecord) error
	FindActive(ctx context.Context, documentID, payerUUID string) (*model.PaymentRecord, error)
	GetByID(ctx context.Context, id string) (*model.PaymentRecord, error)
	Confirm(ctx context.Context, id, txID string, now time.Time) (*model.PaymentRecord, error)
	MarkFailed(ctx context.Context, id, reason string, now time.Time) error
	ListByPayer(ctx context.Context, payerUUID string) ([]*model.PaymentRecord, error)
}

// LedgerGateway : внешний реестр. Повторный Transfer с тем же IdempotencyKey возвращает тот же txID
type LedgerGateway interface {
	Transfer(ctx context.Context, transfer model.Transfer) (string, error)
}

type PaymentService interface {
	SubmitPayment(ctx context.Context, documentID, payerUUID, amount string) (*model.PaymentRecord, error)
	CheckAccess(ctx context.Context, documentID, payerUUID string) (model.AccessState, error)
	ListPayments(ctx context.Context, payerUUID string) ([]*model.PaymentRecord, error)
}
