package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"paydocs-server/internal/ports"

	ds "github.com/ipfs/go-datastore"
)

// DatastoreBlobs : содержимое в том же key-value хранилище (/blobs/<cid>), тип содержимого не хранится
type DatastoreBlobs struct {
	ds ds.Datastore
}

func NewDatastoreBlobs(datastore ds.Datastore) *DatastoreBlobs {
	return &DatastoreBlobs{ds: datastore}
}

func blobKey(key string) ds.Key {
	return ds.KeyWithNamespaces([]string{"blobs", key})
}

func (b *DatastoreBlobs) Put(ctx context.Context, key string, data []byte, _ string) error {
	if err := b.ds.Put(ctx, blobKey(key), data); err != nil {
		return fmt.Errorf("[DatastoreBlobs] ошибка записи %s: %w", key, err)
	}
	return nil
}

func (b *DatastoreBlobs) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, err := b.ds.Get(ctx, blobKey(key))
	if errors.Is(err, ds.ErrNotFound) {
		return nil, fmt.Errorf("[DatastoreBlobs] объект %s: %w", key, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("[DatastoreBlobs] ошибка чтения %s: %w", key, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *DatastoreBlobs) Has(ctx context.Context, key string) (bool, error) {
	exists, err := b.ds.Has(ctx, blobKey(key))
	if err != nil {
		return false, fmt.Errorf("[DatastoreBlobs] ошибка проверки %s: %w", key, err)
	}
	return exists, nil
}
