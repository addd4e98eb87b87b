package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paydocs-server/config"
	"paydocs-server/internal/apperr"
	"paydocs-server/internal/model"
	"paydocs-server/internal/ports"

	"github.com/google/uuid"
	"github.com/jpillora/backoff"
	"github.com/raulk/clock"
	"go.uber.org/zap"
)

// PaymentOptions : таймаут отправки и параметры повторов при недоступности реестра
type PaymentOptions struct {
	SubmitTimeout time.Duration
	RetryMin      time.Duration
	RetryMax      time.Duration
	RetryFactor   float64
	MaxAttempts   int
}

func PaymentOptionsFromConfig(cfg *config.LedgerConfig) PaymentOptions {
	return PaymentOptions{
		SubmitTimeout: cfg.SubmitTimeout,
		RetryMin:      cfg.RetryMin,
		RetryMax:      cfg.RetryMax,
		RetryFactor:   cfg.RetryFactor,
		MaxAttempts:   cfg.MaxAttempts,
	}
}

// PaymentService : клиент реестра. Платёж идемпотентен по паре (документ, плательщик),
// ключ идемпотентности перевода равен ID записи платежа
type PaymentService struct {
	payments  ports.PaymentRepository
	documents ports.DocumentRepository
	gateway   ports.LedgerGateway
	clock     clock.Clock
	options   PaymentOptions
	recorder  Recorder
}

func NewPaymentService(
	payments ports.PaymentRepository,
	documents ports.DocumentRepository,
	gateway ports.LedgerGateway,
	clk clock.Clock,
	options PaymentOptions,
	recorder Recorder,
) *PaymentService {
	if recorder == nil {
		recorder = NoopRecorder{}
	}
	return &PaymentService{
		payments:  payments,
		documents: documents,
		gateway:   gateway,
		clock:     clk,
		options:   options,
		recorder:  recorder,
	}
}

func (s *PaymentService) SubmitPayment(ctx context.Context, documentID, payerUUID, amount string) (*model.PaymentRecord, error) {
	document, err := s.documents.GetByID(ctx, documentID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, apperr.Payment(apperr.ReasonInvalidDocument, "документ не найден", nil)
	}
	if err != nil {
		return nil, apperr.Internal("[PaymentService] ошибка получения документа", err)
	}

	now := s.clock.Now().UTC()
	switch {
	case document.IsExpired(now):
		return nil, apperr.Payment(apperr.ReasonInvalidDocument, "срок размещения документа истёк", nil)
	case document.OwnerUUID == payerUUID:
		return nil, apperr.Payment(apperr.ReasonInvalidDocument, "нельзя оплатить собственный документ", nil)
	case document.IsFree():
		return nil, apperr.Payment(apperr.ReasonInvalidDocument, "документ бесплатный, оплата не требуется", nil)
	}

	parsed, err := model.ParseAmount(amount)
	if err != nil {
		return nil, apperr.Payment(apperr.ReasonInvalidAmount, err.Error(), nil)
	}
	if parsed != document.Price {
		return nil, apperr.Payment(apperr.ReasonInvalidAmount,
			fmt.Sprintf("сумма %s не совпадает с ценой документа %s", parsed, document.Price), nil)
	}

	record, err := s.acquireRecord(ctx, document, payerUUID, now)
	if err != nil || record.Status == model.PaymentConfirmed {
		return record, err
	}

	return s.drive(ctx, record, document)
}

// acquireRecord : подтверждённая запись возвращается как есть, свежая pending запись -> payment_pending,
// зависшая pending запись (старше таймаута отправки) отправляется повторно с тем же ключом
func (s *PaymentService) acquireRecord(ctx context.Context, document *model.Document, payerUUID string, now time.Time) (*model.PaymentRecord, error) {
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := s.payments.FindActive(ctx, document.ID, payerUUID)
		switch {
		case err == nil:
			if existing.Status == model.PaymentConfirmed {
				s.recorder.Payment("existing")
				return existing, nil
			}
			if now.Sub(existing.UpdatedAt) < s.options.SubmitTimeout {
				s.recorder.Payment("pending")
				return nil, apperr.Payment(apperr.ReasonPaymentPending, "платёж уже обрабатывается", nil)
			}
			zap.S().Infow("[PaymentService] повторная отправка зависшего платежа", "payment", existing.ID)
			return existing, nil
		case !errors.Is(err, ports.ErrNotFound):
			return nil, apperr.Internal("[PaymentService] ошибка поиска платежа", err)
		}

		record := &model.PaymentRecord{
			ID:         uuid.NewString(),
			DocumentID: document.ID,
			PayerUUID:  payerUUID,
			Amount:     document.Price,
			CreatedAt:  now,
		}
		err = s.payments.CreatePending(ctx, record)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, ports.ErrAlreadyExists) {
			return nil, apperr.Internal("[PaymentService] ошибка создания платежа", err)
		}
		// параллельный запрос успел создать запись, перечитываем
	}
	return nil, apperr.Payment(apperr.ReasonPaymentPending, "платёж уже обрабатывается", nil)
}

func (s *PaymentService) drive(ctx context.Context, record *model.PaymentRecord, document *model.Document) (*model.PaymentRecord, error) {
	submitCtx, cancel := context.WithTimeout(ctx, s.options.SubmitTimeout)
	defer cancel()

	transfer := model.Transfer{
		IdempotencyKey: record.ID,
		From:           record.PayerUUID,
		To:             document.OwnerUUID,
		Amount:         record.Amount,
		Memo:           "document " + document.ID,
	}

	txID, err := s.transfer(submitCtx, transfer)
	// после ответа реестра отмена клиента уже ничего не меняет
	persistCtx := context.WithoutCancel(ctx)
	if err != nil {
		return nil, s.fail(persistCtx, ctx, record, err)
	}

	confirmed, err := s.payments.Confirm(persistCtx, record.ID, txID, s.clock.Now().UTC())
	if errors.Is(err, ports.ErrConflict) {
		current, getErr := s.payments.GetByID(persistCtx, record.ID)
		if getErr == nil && current.Status == model.PaymentConfirmed {
			return current, nil
		}
		return nil, apperr.Payment(apperr.ReasonLedgerRejected, "платёж уже завершён неуспешно", err)
	}
	if err != nil {
		return nil, apperr.Internal("[PaymentService] ошибка подтверждения платежа", err)
	}

	s.recorder.Payment("confirmed")
	zap.S().Infow("[PaymentService] платёж подтверждён", "payment", confirmed.ID, "tx", txID)
	return confirmed, nil
}

// fail : окончательный отказ реестра закрывает запись. Если исход перевода неизвестен (отмена клиентом,
// таймаут, исчерпаны повторы), реестр мог провести перевод, поэтому запись остаётся pending и после
// SubmitTimeout отправляется повторно с тем же ключом идемпотентности
func (s *PaymentService) fail(persistCtx, callerCtx context.Context, record *model.PaymentRecord, cause error) error {
	var result *apperr.Error
	switch {
	case callerCtx.Err() != nil:
		result = apperr.Payment(apperr.ReasonPaymentCancelled, "платёж отменён клиентом", cause)
	case errors.Is(cause, context.DeadlineExceeded):
		result = apperr.Payment(apperr.ReasonLedgerUnavailable, "реестр не ответил вовремя", cause)
	default:
		result = ledgerError(cause)
	}
	s.recorder.Payment(string(result.Reason))

	if result.Reason == apperr.ReasonPaymentCancelled || result.Retryable {
		zap.S().Warnw("[PaymentService] исход перевода неизвестен, платёж остаётся в обработке",
			"payment", record.ID, "reason", result.Reason, "error", cause)
		return result
	}

	if err := s.payments.MarkFailed(persistCtx, record.ID, string(result.Reason), s.clock.Now().UTC()); err != nil {
		zap.S().Errorw("[PaymentService] не удалось отметить платёж неуспешным", "payment", record.ID, "error", err)
	}
	return result
}

// transfer : повторяет только ошибки с Retryable, не больше MaxAttempts попыток
func (s *PaymentService) transfer(ctx context.Context, transfer model.Transfer) (string, error) {
	b := &backoff.Backoff{
		Min:    s.options.RetryMin,
		Max:    s.options.RetryMax,
		Factor: s.options.RetryFactor,
		Jitter: true,
	}

	for {
		txID, err := s.gateway.Transfer(ctx, transfer)
		if err == nil {
			return txID, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		err = ledgerError(err)
		if !apperr.IsRetryable(err) {
			return "", err
		}

		// b.Attempt() начинается с нуля
		nAttempts := b.Attempt() + 1
		if nAttempts >= float64(s.options.MaxAttempts) {
			return "", err
		}

		duration := b.Duration()
		zap.S().Warnw("[PaymentService] реестр недоступен, повтор",
			"payment", transfer.IdempotencyKey, "attempt", nAttempts, "wait", duration, "error", err)

		timer := time.NewTimer(duration)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
}

// CheckAccess : зависит только от сохранённых записей
func (s *PaymentService) CheckAccess(ctx context.Context, documentID, payerUUID string) (model.AccessState, error) {
	record, err := s.payments.FindActive(ctx, documentID, payerUUID)
	if errors.Is(err, ports.ErrNotFound) {
		return model.NoAccess(), nil
	}
	if err != nil {
		return model.NoAccess(), apperr.Internal("[PaymentService] ошибка проверки оплаты", err)
	}
	if record.Status != model.PaymentConfirmed {
		return model.NoAccess(), nil
	}
	return model.ConfirmedAccess(record), nil
}

// FindActive : активная запись пары для отображения состояния доступа, nil если её нет
func (s *PaymentService) FindActive(ctx context.Context, documentID, payerUUID string) (*model.PaymentRecord, error) {
	record, err := s.payments.FindActive(ctx, documentID, payerUUID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("[PaymentService] ошибка поиска платежа", err)
	}
	return record, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, payerUUID string) ([]*model.PaymentRecord, error) {
	records, err := s.payments.ListByPayer(ctx, payerUUID)
	if err != nil {
		return nil, apperr.Internal("[PaymentService] ошибка получения платежей", err)
	}
	return records, nil
}

func ledgerError(err error) *apperr.Error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperr.Payment(apperr.ReasonLedgerUnavailable, "реестр недоступен", err)
}
