package model_test

import (
	"crypto/ed25519"
	"testing"

	"paydocs-server/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestCredentialValidate(t *testing.T) {
	pub, _, _ := ed25519.GenerateKey(nil)

	assert.NoError(t, model.PasswordCredential("$2a$10$hash").Validate())
	assert.NoError(t, model.PublicKeyCredential(pub).Validate())

	assert.Error(t, model.PasswordCredential("").Validate())
	assert.Error(t, model.PublicKeyCredential([]byte("short")).Validate())
	assert.Error(t, model.Credential{Kind: "otp"}.Validate())
	assert.Error(t, model.Credential{Kind: model.CredentialPassword, PasswordHash: "h", PublicKey: pub}.Validate())
}
