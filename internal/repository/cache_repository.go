package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"paydocs-server/config"
	"paydocs-server/internal/model"
	"paydocs-server/internal/util"

	"github.com/redis/go-redis/v9"
)

type CacheRepository struct {
	client *config.RedisClient
	ttl    time.Duration
}

func NewCacheRepository(rdb *config.RedisClient, ttl time.Duration) *CacheRepository {
	return &CacheRepository{rdb, ttl}
}

func (r *CacheRepository) SetDocument(ctx context.Context, document *model.Document) error {
	data, err := json.Marshal(document)
	if err != nil {
		return util.LogError("[CacheRepo] ошибка сериализации документа", err)
	}

	cmd := r.client.Client.Set(ctx, r.key(document.ID), data, r.ttl)
	if err = cmd.Err(); err != nil {
		return util.LogError("[CacheRepo] ошибка сохранения в Redis", err)
	}
	if cmd.Val() != "OK" {
		return fmt.Errorf("неожиданный ответ Redis: %s", cmd.Val())
	}

	return nil
}

// GetDocument : nil, nil если документа нет в кэше
func (r *CacheRepository) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	val, err := r.client.Client.Get(ctx, r.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, util.LogError("[CacheRepo] ошибка получения документа из Redis", err)
	}

	var document model.Document
	if err := json.Unmarshal([]byte(val), &document); err != nil {
		return nil, util.LogError("[CacheRepo] ошибка десериализации документа из кэша", err)
	}
	return &document, nil
}

func (r *CacheRepository) DeleteDocument(ctx context.Context, id string) error {
	if err := r.client.Client.Del(ctx, r.key(id)).Err(); err != nil {
		return util.LogError("[CacheRepo] ошибка удаления документа из Redis", err)
	}
	return nil
}

func (r *CacheRepository) key(id string) string {
	return fmt.Sprintf("document:%s", id)
}

// NoopCache : используется, когда Redis выключен в конфигурации
type NoopCache struct{}

func (NoopCache) SetDocument(context.Context, *model.Document) error { return nil }

func (NoopCache) GetDocument(context.Context, string) (*model.Document, error) { return nil, nil }

func (NoopCache) DeleteDocument(context.Context, string) error { return nil }
