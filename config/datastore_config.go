package config

import (
	"fmt"
	"os"

	ds "github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	badger "github.com/ipfs/go-ds-badger2"
	"go.uber.org/zap"
)

// SetupDatastore : открывает локальное key-value хранилище.
// badger на диске, если задан storage.path (и драйвер не memory), иначе map в памяти.
// Закрывать через Close() возвращённого хранилища.
func SetupDatastore(cfg *StorageConfig) (ds.Batching, error) {
	if cfg.Driver == "memory" || cfg.Path == "" {
		zap.S().Infow("[Datastore] используется хранилище в памяти")
		return dssync.MutexWrap(ds.NewMapDatastore()), nil
	}

	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога хранилища %s: %w", cfg.Path, err)
	}

	store, err := badger.NewDatastore(cfg.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия badger хранилища %s: %w", cfg.Path, err)
	}

	zap.S().Infow("[Datastore] открыто badger хранилище", "path", cfg.Path)
	return store, nil
}
