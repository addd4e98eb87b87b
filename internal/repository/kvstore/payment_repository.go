package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"paydocs-server/internal/model"
	"paydocs-server/internal/ports"

	ds "github.com/ipfs/go-datastore"
)

// PaymentRepository : запись платежа плюс указатель на активную запись пары (документ, плательщик).
// Указатель снимается при переходе в failed, так что после отказа можно платить снова
type PaymentRepository struct {
	store *Store
}

func NewPaymentRepository(store *Store) *PaymentRepository {
	return &PaymentRepository{store: store}
}

func paymentKey(id string) ds.Key { return key("payments", "records", id) }

func activePaymentKey(documentID, payerUUID string) ds.Key {
	return key("payments", "active", documentID, payerUUID)
}

func payerPaymentKey(payerUUID, id string) ds.Key { return key("payments", "by-payer", payerUUID, id) }

func (r *PaymentRepository) CreatePending(ctx context.Context, record *model.PaymentRecord) error {
	return r.store.locked(func() error {
		exists, err := r.store.has(ctx, activePaymentKey(record.DocumentID, record.PayerUUID))
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("[PaymentKV] активный платёж уже существует: %w", ports.ErrAlreadyExists)
		}

		record.Status = model.PaymentPending
		record.UpdatedAt = record.CreatedAt
		if err := r.store.putJSON(ctx, paymentKey(record.ID), record); err != nil {
			return err
		}
		if err := r.store.putString(ctx, activePaymentKey(record.DocumentID, record.PayerUUID), record.ID); err != nil {
			return err
		}
		return r.store.putString(ctx, payerPaymentKey(record.PayerUUID, record.ID), record.ID)
	})
}

func (r *PaymentRepository) FindActive(ctx context.Context, documentID, payerUUID string) (*model.PaymentRecord, error) {
	id, err := r.store.getString(ctx, activePaymentKey(documentID, payerUUID))
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*model.PaymentRecord, error) {
	var record model.PaymentRecord
	if err := r.store.getJSON(ctx, paymentKey(id), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *PaymentRepository) Confirm(ctx context.Context, id, txID string, now time.Time) (*model.PaymentRecord, error) {
	var confirmed *model.PaymentRecord
	err := r.store.locked(func() error {
		record, err := r.pending(ctx, id)
		if err != nil {
			return err
		}
		record.Status = model.PaymentConfirmed
		record.TxID = txID
		record.UpdatedAt = now
		confirmed = record
		return r.store.putJSON(ctx, paymentKey(id), record)
	})
	return confirmed, err
}

func (r *PaymentRepository) MarkFailed(ctx context.Context, id, reason string, now time.Time) error {
	return r.store.locked(func() error {
		record, err := r.pending(ctx, id)
		if err != nil {
			return err
		}
		record.Status = model.PaymentFailed
		record.FailureReason = reason
		record.UpdatedAt = now
		if err := r.store.putJSON(ctx, paymentKey(id), record); err != nil {
			return err
		}
		return r.store.delete(ctx, activePaymentKey(record.DocumentID, record.PayerUUID))
	})
}

func (r *PaymentRepository) ListByPayer(ctx context.Context, payerUUID string) ([]*model.PaymentRecord, error) {
	entries, err := r.store.entries(ctx, key("payments", "by-payer", payerUUID), false)
	if err != nil {
		return nil, err
	}
	records := make([]*model.PaymentRecord, 0, len(entries))
	for _, entry := range entries {
		record, err := r.GetByID(ctx, string(entry.Value))
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				continue
			}
			return nil, err
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CreatedAt.After(records[j].CreatedAt) })
	return records, nil
}

// pending : вызывается под мьютексом. Запись не в pending -> ports.ErrConflict
func (r *PaymentRepository) pending(ctx context.Context, id string) (*model.PaymentRecord, error) {
	record, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != model.PaymentPending {
		return nil, ports.ErrConflict
	}
	return record, nil
}
