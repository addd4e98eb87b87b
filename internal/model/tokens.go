package model

import "time"

type RefreshToken struct {
	UUID      string     `db:"uuid" json:"uuid"`
	UserUUID  string     `db:"user_uuid" json:"user_uuid"`
	TokenHash string     `db:"token_hash" json:"token_hash"`
	ExpireAt  time.Time  `db:"expire_at" json:"expire_at"`
	Used      bool       `db:"used" json:"used"`
	UserAgent string     `db:"user_agent" json:"user_agent"`
	IpAddress string     `db:"ip_address" json:"ip_address"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
}

// TokensPair содержит пару access и refresh токенов
// swagger:model
type TokensPair struct {
	// Access токен (JWT)
	// example: eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"accessToken"`

	// Refresh токен (для получения новой пары)
	// example: vcSi0369y1I62wOpxZFpgZ...
	RefreshToken string `json:"refreshToken"`
}
