package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"paydocs-server/config"
	"paydocs-server/internal/model"
	"paydocs-server/internal/ports"
	"paydocs-server/internal/util"
)

const paymentColumns = `uuid, document_uuid, payer_uuid, amount, tx_id, status, failure_reason, created_at, updated_at`

type PaymentRepository struct {
	*config.Database
}

func NewPaymentRepository(database *config.Database) *PaymentRepository {
	return &PaymentRepository{database}
}

// CreatePending : частичный уникальный индекс payments_active_idx не даёт завести
// вторую активную запись для той же пары (документ, плательщик)
func (r *PaymentRepository) CreatePending(ctx context.Context, record *model.PaymentRecord) error {
	query := `
		INSERT INTO payments (uuid, document_uuid, payer_uuid, amount, tx_id, status, failure_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, '', 'pending', '', $5, $5)
	`
	_, err := r.ExecContext(ctx, query, record.ID, record.DocumentID, record.PayerUUID, record.Amount, record.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("[PaymentRepo] активный платёж уже существует: %w", ports.ErrAlreadyExists)
	}
	if err != nil {
		return util.LogError("[PaymentRepo] не удалось сохранить платёж", err)
	}
	record.Status = model.PaymentPending
	record.UpdatedAt = record.CreatedAt
	return nil
}

func (r *PaymentRepository) FindActive(ctx context.Context, documentID, payerUUID string) (*model.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE document_uuid = $1 AND payer_uuid = $2 AND status IN ('pending', 'confirmed')`
	return r.findOne(ctx, query, documentID, payerUUID)
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*model.PaymentRecord, error) {
	return r.findOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE uuid = $1`, id)
}

// Confirm : pending -> confirmed одним условным UPDATE. Если запись уже не pending, ports.ErrConflict
func (r *PaymentRepository) Confirm(ctx context.Context, id, txID string, now time.Time) (*model.PaymentRecord, error) {
	query := `
		UPDATE payments
		SET status = 'confirmed', tx_id = $2, updated_at = $3
		WHERE uuid = $1 AND status = 'pending'
		RETURNING ` + paymentColumns

	var record model.PaymentRecord
	err := r.GetContext(ctx, &record, query, id, txID, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.classifyMiss(ctx, id)
	}
	if err != nil {
		return nil, util.LogError("[PaymentRepo] не удалось подтвердить платёж", err)
	}
	return &record, nil
}

func (r *PaymentRepository) MarkFailed(ctx context.Context, id, reason string, now time.Time) error {
	query := `UPDATE payments SET status = 'failed', failure_reason = $2, updated_at = $3 WHERE uuid = $1 AND status = 'pending'`

	result, err := r.ExecContext(ctx, query, id, reason, now)
	if err != nil {
		return util.LogError("[PaymentRepo] не удалось отметить платёж неуспешным", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[PaymentRepo] не удалось проверить число изменённых строк", err)
	}
	if rowsAffected == 0 {
		return r.classifyMiss(ctx, id)
	}
	return nil
}

func (r *PaymentRepository) ListByPayer(ctx context.Context, payerUUID string) ([]*model.PaymentRecord, error) {
	var records []*model.PaymentRecord
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payer_uuid = $1 ORDER BY created_at DESC`
	if err := r.SelectContext(ctx, &records, query, payerUUID); err != nil {
		return nil, util.LogError("[PaymentRepo] не удалось получить платежи", err)
	}
	return records, nil
}

func (r *PaymentRepository) findOne(ctx context.Context, query string, args ...any) (*model.PaymentRecord, error) {
	var record model.PaymentRecord
	err := r.GetContext(ctx, &record, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, util.LogError("[PaymentRepo] не удалось получить платёж", err)
	}
	return &record, nil
}

// classifyMiss : условное обновление не сработало, запись либо отсутствует, либо уже не pending
func (r *PaymentRepository) classifyMiss(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ports.ErrConflict
}
