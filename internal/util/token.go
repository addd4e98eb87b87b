package util

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomToken : size случайных байт в base64url без паддинга
func RandomToken(size int) (string, error) {
	bytes := make([]byte, size)
	if _, err := rand.Read(bytes); err != nil {
		return "", LogError("[util] ошибка генерации токена", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
