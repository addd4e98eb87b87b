package model

import (
	"crypto/ed25519"
	"fmt"
	"time"
)

type CredentialKind string

const (
	CredentialPassword  CredentialKind = "password"
	CredentialPublicKey CredentialKind = "public_key"
)

// Credential : материал для проверки личности. Заполнено ровно одно поле в зависимости от Kind
type Credential struct {
	Kind         CredentialKind `json:"kind"`
	PasswordHash string         `json:"password_hash,omitempty"`
	PublicKey    []byte         `json:"public_key,omitempty"`
}

func PasswordCredential(hash string) Credential {
	return Credential{Kind: CredentialPassword, PasswordHash: hash}
}

func PublicKeyCredential(publicKey []byte) Credential {
	return Credential{Kind: CredentialPublicKey, PublicKey: publicKey}
}

func (c Credential) Validate() error {
	switch c.Kind {
	case CredentialPassword:
		if c.PasswordHash == "" || len(c.PublicKey) != 0 {
			return fmt.Errorf("парольные данные заполнены неверно")
		}
	case CredentialPublicKey:
		if len(c.PublicKey) != ed25519.PublicKeySize || c.PasswordHash != "" {
			return fmt.Errorf("открытый ключ должен быть ed25519 длиной %d байт", ed25519.PublicKeySize)
		}
	default:
		return fmt.Errorf("неизвестный тип учётных данных: %q", c.Kind)
	}
	return nil
}

type Identity struct {
	UUID        string     `json:"uuid"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	Credential  Credential `json:"credential"`
	IsAdmin     bool       `json:"is_admin"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Presentation : то, что предъявляет клиент при входе
type Presentation struct {
	Kind      CredentialKind
	Password  string
	Challenge string
	Signature []byte
}

func PasswordPresentation(password string) Presentation {
	return Presentation{Kind: CredentialPassword, Password: password}
}

func PasskeyPresentation(challenge string, signature []byte) Presentation {
	return Presentation{Kind: CredentialPublicKey, Challenge: challenge, Signature: signature}
}

// RegisterInput : данные регистрации, указывается либо Password, либо PublicKey
type RegisterInput struct {
	Username    string
	DisplayName string
	Password    string
	PublicKey   []byte
}

// Actor : кто выполняет операцию (из JWT)
type Actor struct {
	UUID    string
	IsAdmin bool
}

func (a Actor) Authenticated() bool {
	return a.UUID != ""
}
