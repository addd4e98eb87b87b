package model

import "time"

// AccessCapability : одноразовый токен на получение содержимого документа
type AccessCapability struct {
	Token        string     `db:"token" json:"token"`
	DocumentID   string     `db:"document_uuid" json:"document_id"`
	ContentHash  string     `db:"content_hash" json:"content_hash"`
	IdentityUUID string     `db:"identity_uuid" json:"identity_uuid"`
	IssuedAt     time.Time  `db:"issued_at" json:"issued_at"`
	ExpiresAt    time.Time  `db:"expires_at" json:"expires_at"`
	Consumed     bool       `db:"consumed" json:"consumed"`
	ConsumedAt   *time.Time `db:"consumed_at" json:"consumed_at,omitempty"`
}

func (c *AccessCapability) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

func (c *AccessCapability) IsLive(now time.Time) bool {
	return !c.Consumed && !c.IsExpired(now)
}
