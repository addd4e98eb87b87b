package model

import (
	"fmt"
	"strings"
	"time"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

const DefaultCategory = "Uploaded"

type Document struct {
	ID           string     `db:"uuid" json:"id"`
	OwnerUUID    string     `db:"owner_uuid" json:"owner_uuid"`
	Title        string     `db:"title" json:"title"`
	Description  string     `db:"description" json:"description"`
	Category     string     `db:"category" json:"category"`
	ContentHash  string     `db:"content_hash" json:"content_hash"`
	SizeBytes    int64      `db:"size_bytes" json:"size_bytes"`
	Pages        int        `db:"pages" json:"pages"`
	MimeType     string     `db:"mime_type" json:"mime_type"`
	Price        Amount     `db:"price" json:"price"`
	Visibility   Visibility `db:"visibility" json:"visibility"`
	DurationDays int        `db:"duration_days" json:"duration_days"`
	Views        int64      `db:"views" json:"views"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	ExpiresAt    time.Time  `db:"expires_at" json:"expires_at"`
	DeletedAt    *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

func (d *Document) IsPublic() bool {
	return d.Visibility == VisibilityPublic
}

func (d *Document) IsFree() bool {
	return d.Price.IsZero()
}

// IsExpired : срок размещения истёк (момент ExpiresAt уже считается истёкшим)
func (d *Document) IsExpired(now time.Time) bool {
	return !now.Before(d.ExpiresAt)
}

// DocumentFilter : фильтр публичного каталога
type DocumentFilter struct {
	Query    string
	Category string
	Cursor   string
	Limit    int
	Now      time.Time
}

// DocumentUpdate : правки владельца или администратора, nil поля не меняются
type DocumentUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Price       *Amount
	Visibility  *Visibility
}

type DocumentGrant struct {
	DocumentUUID   string    `db:"document_uuid" json:"document_uuid"`
	TargetUserUUID string    `db:"target_user_uuid" json:"target_user_uuid"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// EncodeCursor : курсор каталога, created_at последнего документа и его id
func EncodeCursor(createdAt time.Time, id string) string {
	return createdAt.UTC().Format(time.RFC3339Nano) + "|" + id
}

func DecodeCursor(cursor string) (time.Time, string, error) {
	rawTime, id, ok := strings.Cut(cursor, "|")
	if !ok || id == "" {
		return time.Time{}, "", fmt.Errorf("неверный формат курсора")
	}
	createdAt, err := time.Parse(time.RFC3339Nano, rawTime)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("неверный формат курсора: %w", err)
	}
	return createdAt, id, nil
}

// Before : порядок каталога, новые документы первыми
func (d *Document) Before(createdAt time.Time, id string) bool {
	if d.CreatedAt.Equal(createdAt) {
		return d.ID < id
	}
	return d.CreatedAt.Before(createdAt)
}

// MatchesFilter : текстовый поиск по названию и описанию плюс фильтр категории
func (d *Document) MatchesFilter(filter DocumentFilter) bool {
	if filter.Category != "" && !strings.EqualFold(d.Category, filter.Category) {
		return false
	}
	if filter.Query == "" {
		return true
	}
	query := strings.ToLower(filter.Query)
	return strings.Contains(strings.ToLower(d.Title), query) ||
		strings.Contains(strings.ToLower(d.Description), query)
}
