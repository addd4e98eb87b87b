package main

import (
	"context"
	"fmt"
	"io"

	"paydocs-server/config"
	"paydocs-server/internal/blob"
	"paydocs-server/internal/ports"
	"paydocs-server/internal/repository"
	"paydocs-server/internal/repository/kvstore"

	ds "github.com/ipfs/go-datastore"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// storage : репозитории выбранного драйвера и хранилище содержимого
type storage struct {
	identities   ports.IdentityRepository
	jwt          ports.JWTRepositoryInterface
	challenges   ports.ChallengeRepository
	documents    ports.DocumentRepository
	grants       ports.GrantDocumentRepository
	payments     ports.PaymentRepository
	capabilities ports.CapabilityRepository
	blobs        ports.BlobStore
	closers      []io.Closer
}

func (s *storage) Close() error {
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.closers[i].Close())
	}
	return err
}

func openStorage(ctx context.Context, cfg *config.AppConfig) (stores *storage, err error) {
	stores = &storage{}
	defer func() {
		if err != nil {
			err = multierr.Append(err, stores.Close())
		}
	}()

	var datastore ds.Batching
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
		if err != nil {
			return stores, fmt.Errorf("не удалось подключиться к БД: %w", err)
		}
		stores.closers = append(stores.closers, db)

		if cfg.DatabaseConfig.AutoMigrate {
			if err := repository.Migrate(ctx, db); err != nil {
				return stores, err
			}
		}

		stores.identities = repository.NewIdentityRepository(db)
		jwtRepository := repository.NewJWTRepository(db)
		stores.jwt = jwtRepository
		stores.challenges = jwtRepository
		stores.documents = repository.NewDocumentRepository(db)
		stores.grants = repository.NewGrantDocumentRepository(db)
		stores.payments = repository.NewPaymentRepository(db)
		stores.capabilities = repository.NewCapabilityRepository(db)
		zap.S().Infow("записи хранятся в postgres")
	default:
		datastore, err = config.SetupDatastore(&cfg.Storage)
		if err != nil {
			return stores, err
		}
		store := kvstore.New(datastore)
		stores.closers = append(stores.closers, store)

		stores.identities = kvstore.NewIdentityRepository(store)
		jwtRepository := kvstore.NewJWTRepository(store)
		stores.jwt = jwtRepository
		stores.challenges = jwtRepository
		stores.documents = kvstore.NewDocumentRepository(store)
		stores.grants = kvstore.NewGrantDocumentRepository(store)
		stores.payments = kvstore.NewPaymentRepository(store)
		stores.capabilities = kvstore.NewCapabilityRepository(store)
		zap.S().Infow("записи хранятся в key-value хранилище", "driver", cfg.Storage.Driver)
	}

	if cfg.Storage.Blobs == "s3" {
		s3Blobs, err := blob.ConnectS3(ctx, &cfg.S3Config)
		if err != nil {
			return stores, err
		}
		stores.blobs = s3Blobs
		zap.S().Infow("содержимое хранится в S3", "bucket", cfg.S3Config.Bucket)
		return stores, nil
	}

	// postgres + datastore: содержимое в отдельном key-value хранилище
	if datastore == nil {
		datastore, err = config.SetupDatastore(&cfg.Storage)
		if err != nil {
			return stores, err
		}
		stores.closers = append(stores.closers, datastore)
	}
	stores.blobs = blob.NewDatastoreBlobs(datastore)
	return stores, nil
}
