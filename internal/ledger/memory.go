// Package ledger : шлюзы реестра платежей. Ошибки возвращаются как *apperr.Error вида payment.
package ledger

import (
	"context"
	"sync"

	"paydocs-server/internal/apperr"
	"paydocs-server/internal/model"

	"github.com/google/uuid"
)

// MemoryGateway : реестр в памяти процесса. Счёт создаётся при первом обращении с начальным балансом
type MemoryGateway struct {
	mu             sync.Mutex
	initialBalance model.Amount
	balances       map[string]model.Amount
	transfers      map[string]string
	faults         []error
}

func NewMemoryGateway(initialBalance model.Amount) *MemoryGateway {
	return &MemoryGateway{
		initialBalance: initialBalance,
		balances:       make(map[string]model.Amount),
		transfers:      make(map[string]string),
	}
}

func (g *MemoryGateway) Transfer(ctx context.Context, transfer model.Transfer) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperr.Payment(apperr.ReasonLedgerUnavailable, "запрос к реестру отменён", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.faults) > 0 {
		fault := g.faults[0]
		g.faults = g.faults[1:]
		return "", fault
	}

	if txID, ok := g.transfers[transfer.IdempotencyKey]; ok {
		return txID, nil
	}

	if transfer.Amount < 0 {
		return "", apperr.Payment(apperr.ReasonLedgerRejected, "отрицательная сумма перевода", nil)
	}
	if g.balance(transfer.From) < transfer.Amount {
		return "", apperr.Payment(apperr.ReasonInsufficientFunds, "недостаточно средств", nil)
	}

	g.balances[transfer.From] = g.balance(transfer.From) - transfer.Amount
	g.balances[transfer.To] = g.balance(transfer.To) + transfer.Amount

	txID := "tx-" + uuid.NewString()
	g.transfers[transfer.IdempotencyKey] = txID
	return txID, nil
}

// Balance : текущий баланс счёта
func (g *MemoryGateway) Balance(account string) model.Amount {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.balance(account)
}

func (g *MemoryGateway) SetBalance(account string, amount model.Amount) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.balances[account] = amount
}

// InjectFaults : следующие вызовы Transfer вернут эти ошибки по очереди
func (g *MemoryGateway) InjectFaults(faults ...error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.faults = append(g.faults, faults...)
}

// TransferCount : число уникальных проведённых переводов
func (g *MemoryGateway) TransferCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.transfers)
}

func (g *MemoryGateway) balance(account string) model.Amount {
	if balance, ok := g.balances[account]; ok {
		return balance
	}
	return g.initialBalance
}
