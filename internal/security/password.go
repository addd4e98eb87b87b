package security

import (
	"crypto/ed25519"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash : сравнение с ним выполняется для несуществующих пользователей,
// чтобы время ответа не выдавало наличие логина
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("paydocs-dummy-password"), bcrypt.DefaultCost)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("ошибка хэширования пароля: %w", err)
	}
	return string(hash), nil
}

// CheckPassword : сравнение за постоянное время (bcrypt)
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// VerifySignature : подпись вызова закрытым ключом ed25519 клиента
func VerifySignature(publicKey []byte, challenge string, signature []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(publicKey, []byte(challenge), signature)
}
