package repository

import (
	"context"
	"errors"

	"paydocs-server/config"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// beginTX : как в репозиториях выше, возвращает exec, rollback и commit
func beginTX(ctx context.Context, database *config.Database) (*sqlx.Tx, func(), func() error, error) {
	tx, err := database.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	rollback := func() { _ = tx.Rollback() }
	return tx, rollback, tx.Commit, nil
}
