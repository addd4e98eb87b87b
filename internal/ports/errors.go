package ports

import "errors"

// Ошибки хранилищ. Реализации возвращают их (можно обёрнутыми), сервисы проверяют через errors.Is
var (
	ErrNotFound      = errors.New("запись не найдена")
	ErrAlreadyExists = errors.New("запись уже существует")
	ErrConflict      = errors.New("запись изменена конкурентно или в неподходящем состоянии")
	ErrExpired       = errors.New("срок действия истёк")
)
