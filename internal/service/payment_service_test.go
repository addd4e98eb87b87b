package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"paydocs-server/internal/apperr"
	"paydocs-server/internal/ledger"
	"paydocs-server/internal/model"
	"paydocs-server/internal/ports"
	"paydocs-server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unavailable() error {
	return apperr.Payment(apperr.ReasonLedgerUnavailable, "реестр недоступен", errors.New("connection refused"))
}

// 1. Оплата подтверждается и переводит деньги владельцу
func TestSubmitPayment_Confirms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	document := f.document(t, "owner", 500, "a")

	record, err := f.paymentService.SubmitPayment(ctx, document.ID, "buyer", "5.00")
	require.NoError(t, err)

	assert.Equal(t, model.PaymentConfirmed, record.Status)
	assert.NotEmpty(t, record.TxID)
	assert.Equal(t, model.Amount(500), record.Amount)
	assert.Equal(t, model.Amount(9500), f.gateway.Balance("buyer"))
	assert.Equal(t, model.Amount(10500), f.gateway.Balance("owner"))

	state, err := f.paymentService.CheckAccess(ctx, document.ID, "buyer")
	require.NoError(t, err)
	assert.True(t, state.Confirmed)
	assert.Equal(t, record.ID, state.Payment.ID)
}

// 2. Повторная оплата не списывает деньги второй раз
func TestSubmitPayment_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	document := f.document(t, "owner", 500, "a")

	first, err := f.paymentService.SubmitPayment(ctx, document.ID, "buyer", "5")
	require.NoError(t, err)
	second, err := f.paymentService.SubmitPayment(ctx, document.ID, "buyer", "5.00")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.gateway.TransferCount())
	assert.Equal(t, model.Amount(9500), f.gateway.Balance("buyer"))

	records, err := f.paymentService.ListPayments(ctx, "buyer")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

// 3. Параллельные оплаты одной пары дают один перевод
func TestSubmitPayment_ConcurrentSinglePayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	document := f.document(t, "owner", 500, "a")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.paymentService.SubmitPayment(ctx, document.ID, "buyer", "5.00")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			assert.Equal(t, apperr.ReasonPaymentPending, apperr.ReasonOf(err))
		}
	}
	assert.Equal(t, 1, f.gateway.TransferCount())
	assert.Equal(t, model.Amount(9500), f.gateway.Balance("buyer"))

	state, err := f.paymentService.CheckAccess(ctx, document.ID, "buyer")
	require.NoError(t, err)
	assert.True(t, state.Confirmed)
}

// 4. Недоступность реестра повторяется с тем же ключом идемпотентности
func TestSubmitPayment_RetriesUnavailableLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	document := f.document(t, "owner", 500, "a")
	f.gateway.InjectFaults(unavailable(), unavailable())

	record, err := f.paymentService.SubmitPayment(ctx, document.ID, "buyer", "5.00")
	require.NoError(t, err)

	assert.Equal(t, model.PaymentConfirmed, record.Status)
	assert.Equal(t, 1, f.gateway.TransferCount())
}

// 5. Исчерпание попыток -> ledger_unavailable, доступа нет, запись остаётся pending
// и после таймаута отправляется повторно тем же ключом
func TestSubmitPayment_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	document := f.document(t, "owner", 500, "a")
	f.gateway.InjectFaults(unavailable(), unavailable(), unavailable())

	_, err := f.paymentService.SubmitPayment(ctx, document.ID, "buyer", "5.00")
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonLedgerUnavailable, apperr.ReasonOf(err))
	assert.True(t, apperr.IsRetryable(err))

	state, err := f.paymentService.CheckAccess(ctx, document.ID, "buyer")
	require.NoError(t, err)
	assert.False(t, state.Confirmed)

	pending, err := f.paymentService.FindActive(ctx, document.ID, "buyer")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, model.PaymentPending, pending.Status)

	_, err = f.paymentService.SubmitPayment(ctx, document.ID, "buyer", "5.00")
	assert.Equal(t, apperr.ReasonPaymentPending, apperr.ReasonOf(err))

	f.clock.Add(testPaymentOptions().SubmitTimeout)
	record, err := f.paymentService.SubmitPayment(ctx, document.ID, "buyer", "5.00")
	require.NoError(t, err)
	assert.Equal(t, pending.ID, record.ID)
	assert.Equal(t, model.PaymentConfirmed, record.Status)
	assert.Equal(t, 1, f.gateway.TransferCount())
}

// 6. Недостаточно средств не повторяется
func TestSubmitPayment_InsufficientFundsNotRetried(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	document := f.document(t, "owner", 500, "a")
	f.gateway.SetBalance("buyer", 100)

	_, err := f.paymentService.SubmitPayment(ctx, document.ID, "buyer", "5.00")
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonInsufficientFunds, apperr.ReasonOf(err))
	assert.False(t, apperr.IsRetryable(err))
	assert.Equal(t, 0, f.gateway.TransferCount())
	assert.Equal(t, model.Amount(100), f.gateway.Balance("buyer"))

	records, err := f.paymentService.ListPayments(ctx, "buyer")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.PaymentFailed, records[0].Status)
	assert.Equal(t, string(apperr.ReasonInsufficientFunds), records[0].FailureReason)

	active, err := f.paymentService.FindActive(ctx, document.ID, "buyer")
	require.NoError(t, err)
	assert.Nil(t, active)
}

// 7. Отмена клиентом -> payment_cancelled, запись не закрывается
func TestSubmitPayment_Cancelled(t *testing.T) {
	f := newFixture(t)
	document := f.document(t, "owner", 500, "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.paymentService.SubmitPayment(ctx, document.ID, "buyer", "5.00")
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonPaymentCancelled, apperr.ReasonOf(err))

	records, err := f.paymentService.ListPayments(context.Background(), "buyer")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.PaymentPending, records[0].Status)
	assert.Equal(t, model.Amount(10000), f.gateway.Balance("buyer"))

	f.clock.Add(testPaymentOptions().SubmitTimeout)
	record, err := f.paymentService.SubmitPayment(context.Background(), document.ID, "buyer", "5.00")
	require.NoError(t, err)
	assert.Equal(t, records[0].ID, record.ID)
	assert.Equal(t, model.Amount(9500), f.gateway.Balance("buyer"))
}

// 8. Ошибки входных данных
func TestSubmitPayment_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	paid := f.document(t, "owner", 500, "a")
	free := f.document(t, "owner", 0, "b")

	tests := []struct {
		name       string
		documentID string
		payer      string
		amount     string
		want       apperr.Reason
	}{
		{"нет документа", "missing", "buyer", "5.00", apperr.ReasonInvalidDocument},
		{"свой документ", paid.ID, "owner", "5.00", apperr.ReasonInvalidDocument},
		{"бесплатный документ", free.ID, "buyer", "0", apperr.ReasonInvalidDocument},
		{"другая сумма", paid.ID, "buyer", "4.99", apperr.ReasonInvalidAmount},
		{"не число", paid.ID, "buyer", "five", apperr.ReasonInvalidAmount},
		{"отрицательная сумма", paid.ID, "buyer", "-5", apperr.ReasonInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.paymentService.SubmitPayment(ctx, tt.documentID, tt.payer, tt.amount)
			require.Error(t, err)
			assert.Equal(t, tt.want, apperr.ReasonOf(err))
		})
	}
	assert.Equal(t, 0, f.gateway.TransferCount())
}

// 9. Истёкший документ оплатить нельзя
func TestSubmitPayment_ExpiredDocument(t *testing.T) {
	f := newFixture(t)
	document := f.document(t, "owner", 500, "a")
	f.clock.Add(31 * 24 * time.Hour)

	_, err := f.paymentService.SubmitPayment(context.Background(), document.ID, "buyer", "5.00")
	assert.Equal(t, apperr.ReasonInvalidDocument, apperr.ReasonOf(err))
}

// 10. Свежая pending запись -> payment_pending, зависшая отправляется повторно тем же ключом
func TestSubmitPayment_PendingRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	document := f.document(t, "owner", 500, "a")

	pending := &model.PaymentRecord{
		ID:         "pay-1",
		DocumentID: document.ID,
		PayerUUID:  "buyer",
		Amount:     500,
		CreatedAt:  f.clock.Now().UTC(),
	}
	require.NoError(t, f.payments.CreatePending(ctx, pending))

	_, err := f.paymentService.SubmitPayment(ctx, document.ID, "buyer", "5.00")
	assert.Equal(t, apperr.ReasonPaymentPending, apperr.ReasonOf(err))
	assert.True(t, apperr.IsRetryable(err))

	f.clock.Add(time.Minute)
	record, err := f.paymentService.SubmitPayment(ctx, document.ID, "buyer", "5.00")
	require.NoError(t, err)
	assert.Equal(t, "pay-1", record.ID)
	assert.Equal(t, model.PaymentConfirmed, record.Status)
}

// 11. CheckAccess не обращается к реестру и не меняет записи
func TestCheckAccess_Pure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	document := f.document(t, "owner", 500, "a")

	state, err := f.paymentService.CheckAccess(ctx, document.ID, "buyer")
	require.NoError(t, err)
	assert.False(t, state.Confirmed)

	_, err = f.paymentService.SubmitPayment(ctx, document.ID, "buyer", "5.00")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		state, err = f.paymentService.CheckAccess(ctx, document.ID, "buyer")
		require.NoError(t, err)
		assert.True(t, state.Confirmed)
	}
	assert.Equal(t, 1, f.gateway.TransferCount())

	_, err = f.payments.FindActive(ctx, document.ID, "other")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

// lostResponseGateway : проводит перевод в реестре, но первые lose ответов теряет до истечения контекста
type lostResponseGateway struct {
	inner *ledger.MemoryGateway

	mu   sync.Mutex
	lose int
}

func (g *lostResponseGateway) Transfer(ctx context.Context, transfer model.Transfer) (string, error) {
	txID, err := g.inner.Transfer(ctx, transfer)
	if err != nil {
		return "", err
	}

	g.mu.Lock()
	lost := g.lose > 0
	if lost {
		g.lose--
	}
	g.mu.Unlock()

	if lost {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return txID, nil
}

// 12. Реестр провёл перевод, но ответ потерян: повторная оплата не списывает деньги второй раз
func TestSubmitPayment_LostLedgerResponse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	document := f.document(t, "owner", 500, "a")

	options := testPaymentOptions()
	options.SubmitTimeout = 20 * time.Millisecond
	gateway := &lostResponseGateway{inner: f.gateway, lose: 1}
	payments := service.NewPaymentService(f.payments, f.documents, gateway, f.clock, options, nil)

	_, err := payments.SubmitPayment(ctx, document.ID, "buyer", "5.00")
	require.Error(t, err)
	assert.Equal(t, apperr.ReasonLedgerUnavailable, apperr.ReasonOf(err))
	assert.Equal(t, 1, f.gateway.TransferCount())

	state, err := payments.CheckAccess(ctx, document.ID, "buyer")
	require.NoError(t, err)
	assert.False(t, state.Confirmed)

	_, err = payments.SubmitPayment(ctx, document.ID, "buyer", "5.00")
	assert.Equal(t, apperr.ReasonPaymentPending, apperr.ReasonOf(err))

	f.clock.Add(time.Second)
	record, err := payments.SubmitPayment(ctx, document.ID, "buyer", "5.00")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentConfirmed, record.Status)

	assert.Equal(t, 1, f.gateway.TransferCount())
	assert.Equal(t, model.Amount(9500), f.gateway.Balance("buyer"))
	assert.Equal(t, model.Amount(10500), f.gateway.Balance("owner"))

	records, err := payments.ListPayments(ctx, "buyer")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record.ID, records[0].ID)
}
