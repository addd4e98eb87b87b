package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"paydocs-server/config"
	"paydocs-server/internal/model"
	"paydocs-server/internal/ports"
	"paydocs-server/internal/util"
)

const documentColumns = `uuid, owner_uuid, title, description, category, content_hash, size_bytes, pages, mime_type,
	price, visibility, duration_days, views, created_at, updated_at, expires_at, deleted_at`

type DocumentRepository struct {
	*config.Database
}

func NewDocumentRepository(database *config.Database) *DocumentRepository {
	return &DocumentRepository{database}
}

// Create : сохраняем новый документ
func (r *DocumentRepository) Create(ctx context.Context, document *model.Document) error {
	query := `
		INSERT INTO documents (uuid, owner_uuid, title, description, category, content_hash, size_bytes, pages,
		                       mime_type, price, visibility, duration_days, views, created_at, updated_at, expires_at)
		VALUES (:uuid, :owner_uuid, :title, :description, :category, :content_hash, :size_bytes, :pages,
		        :mime_type, :price, :visibility, :duration_days, :views, :created_at, :updated_at, :expires_at)
	`
	_, err := r.NamedExecContext(ctx, query, document)
	if isUniqueViolation(err) {
		return ports.ErrAlreadyExists
	}
	if err != nil {
		return util.LogError("[DocumentRepo] не удалось сохранить документ", err)
	}
	return nil
}

// GetByID : удалённые документы не возвращаются
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*model.Document, error) {
	var document model.Document
	err := r.GetContext(ctx, &document, `SELECT `+documentColumns+` FROM documents WHERE uuid = $1 AND deleted_at IS NULL`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, util.LogError("[DocumentRepo] не удалось получить документ", err)
	}
	return &document, nil
}

// Update : частичное обновление, COALESCE оставляет поля без изменений
func (r *DocumentRepository) Update(ctx context.Context, id string, update model.DocumentUpdate, now time.Time) (*model.Document, error) {
	var price sql.NullInt64
	if update.Price != nil {
		price = sql.NullInt64{Int64: int64(*update.Price), Valid: true}
	}
	var visibility sql.NullString
	if update.Visibility != nil {
		visibility = sql.NullString{String: string(*update.Visibility), Valid: true}
	}

	query := `
		UPDATE documents
		SET title       = COALESCE($2, title),
		    description = COALESCE($3, description),
		    category    = COALESCE($4, category),
		    price       = COALESCE($5, price),
		    visibility  = COALESCE($6, visibility),
		    updated_at  = $7
		WHERE uuid = $1 AND deleted_at IS NULL
		RETURNING ` + documentColumns

	var document model.Document
	err := r.GetContext(ctx, &document, query, id,
		nullString(update.Title), nullString(update.Description), nullString(update.Category),
		price, visibility, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, util.LogError("[DocumentRepo] не удалось обновить документ", err)
	}
	return &document, nil
}

func (r *DocumentRepository) IncrementViews(ctx context.Context, id string) error {
	result, err := r.ExecContext(ctx, `UPDATE documents SET views = views + 1 WHERE uuid = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return util.LogError("[DocumentRepo] не удалось увеличить счётчик просмотров", err)
	}
	return expectOneRow(result)
}

// Delete : мягкое удаление, записи платежей и токенов продолжают ссылаться на документ
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.ExecContext(ctx, `UPDATE documents SET deleted_at = NOW() WHERE uuid = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return util.LogError("[DocumentRepo] не удалось удалить документ", err)
	}
	return expectOneRow(result)
}

// ListPublic : публичный каталог, новые первыми, курсор (created_at, uuid) последнего документа
func (r *DocumentRepository) ListPublic(ctx context.Context, filter model.DocumentFilter) ([]*model.Document, string, error) {
	conditions := []string{"visibility = 'public'", "deleted_at IS NULL", "expires_at > $1"}
	args := []any{filter.Now}

	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, "LOWER(category) = LOWER($"+strconv.Itoa(len(args))+")")
	}
	if filter.Query != "" {
		args = append(args, "%"+escapeLike(filter.Query)+"%")
		n := strconv.Itoa(len(args))
		conditions = append(conditions, "(title ILIKE $"+n+" OR description ILIKE $"+n+")")
	}
	if filter.Cursor != "" {
		cursorTime, cursorID, err := model.DecodeCursor(filter.Cursor)
		if err != nil {
			return nil, "", err
		}
		args = append(args, cursorTime, cursorID)
		conditions = append(conditions, "(created_at, uuid) < ($"+strconv.Itoa(len(args)-1)+", $"+strconv.Itoa(len(args))+")")
	}
	args = append(args, filter.Limit+1)

	query := `SELECT ` + documentColumns + ` FROM documents WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY created_at DESC, uuid DESC LIMIT $` + strconv.Itoa(len(args))

	var documents []*model.Document
	if err := r.SelectContext(ctx, &documents, query, args...); err != nil {
		return nil, "", util.LogError("[DocumentRepo] не удалось получить каталог", err)
	}

	var nextCursor string
	if len(documents) > filter.Limit {
		documents = documents[:filter.Limit]
		last := documents[len(documents)-1]
		nextCursor = model.EncodeCursor(last.CreatedAt, last.ID)
	}
	return documents, nextCursor, nil
}

// ListByOwner : все документы владельца, включая приватные и истёкшие
func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerUUID string) ([]*model.Document, error) {
	var documents []*model.Document
	query := `SELECT ` + documentColumns + ` FROM documents WHERE owner_uuid = $1 AND deleted_at IS NULL ORDER BY created_at DESC`
	if err := r.SelectContext(ctx, &documents, query, ownerUUID); err != nil {
		return nil, util.LogError("[DocumentRepo] не удалось получить документы владельца", err)
	}
	return documents, nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}
