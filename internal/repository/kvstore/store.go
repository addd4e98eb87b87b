// Package kvstore : реализации репозиториев поверх go-datastore (map в памяти или badger на диске).
// Составные изменения выполняются под мьютексом хранилища, поэтому проверки уникальности,
// выдача токенов и их одноразовое использование атомарны в пределах процесса.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"paydocs-server/internal/ports"

	ds "github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/query"
)

type Store struct {
	ds ds.Batching
	mu sync.Mutex
}

func New(datastore ds.Batching) *Store {
	return &Store{ds: datastore}
}

func (s *Store) Close() error {
	return s.ds.Close()
}

// locked : выполняет fn под мьютексом хранилища
func (s *Store) locked(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Store) getJSON(ctx context.Context, key ds.Key, v any) error {
	data, err := s.ds.Get(ctx, key)
	if errors.Is(err, ds.ErrNotFound) {
		return ports.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("ошибка чтения %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("ошибка десериализации %s: %w", key, err)
	}
	return nil
}

func (s *Store) putJSON(ctx context.Context, key ds.Key, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("ошибка сериализации %s: %w", key, err)
	}
	if err := s.ds.Put(ctx, key, data); err != nil {
		return fmt.Errorf("ошибка записи %s: %w", key, err)
	}
	return nil
}

func (s *Store) getString(ctx context.Context, key ds.Key) (string, error) {
	data, err := s.ds.Get(ctx, key)
	if errors.Is(err, ds.ErrNotFound) {
		return "", ports.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("ошибка чтения %s: %w", key, err)
	}
	return string(data), nil
}

func (s *Store) putString(ctx context.Context, key ds.Key, value string) error {
	if err := s.ds.Put(ctx, key, []byte(value)); err != nil {
		return fmt.Errorf("ошибка записи %s: %w", key, err)
	}
	return nil
}

func (s *Store) has(ctx context.Context, key ds.Key) (bool, error) {
	exists, err := s.ds.Has(ctx, key)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки %s: %w", key, err)
	}
	return exists, nil
}

func (s *Store) delete(ctx context.Context, key ds.Key) error {
	if err := s.ds.Delete(ctx, key); err != nil && !errors.Is(err, ds.ErrNotFound) {
		return fmt.Errorf("ошибка удаления %s: %w", key, err)
	}
	return nil
}

// entries : все записи с префиксом (порядок не гарантирован)
func (s *Store) entries(ctx context.Context, prefix ds.Key, keysOnly bool) ([]query.Entry, error) {
	results, err := s.ds.Query(ctx, query.Query{Prefix: prefix.String(), KeysOnly: keysOnly})
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса %s: %w", prefix, err)
	}
	entries, err := results.Rest()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения результатов %s: %w", prefix, err)
	}
	return entries, nil
}

func listJSON[T any](ctx context.Context, s *Store, prefix ds.Key) ([]*T, error) {
	entries, err := s.entries(ctx, prefix, false)
	if err != nil {
		return nil, err
	}
	items := make([]*T, 0, len(entries))
	for _, entry := range entries {
		item := new(T)
		if err := json.Unmarshal(entry.Value, item); err != nil {
			return nil, fmt.Errorf("ошибка десериализации %s: %w", entry.Key, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func key(parts ...string) ds.Key {
	return ds.KeyWithNamespaces(parts)
}
