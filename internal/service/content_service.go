package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"paydocs-server/internal/apperr"
	"paydocs-server/internal/model"
	"paydocs-server/internal/ports"
	"paydocs-server/internal/util"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/raulk/clock"
	"go.uber.org/zap"
)

const capabilityTokenBytes = 32

// ContentHash : CIDv1 (raw, sha2-256) содержимого
func ContentHash(data []byte) (string, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", fmt.Errorf("ошибка вычисления хэша: %w", err)
	}
	return cid.NewCidV1(cid.Raw, mh).String(), nil
}

// ContentService : адресуемое по содержимому хранилище и одноразовые токены доступа к нему
type ContentService struct {
	blobs        ports.BlobStore
	capabilities ports.CapabilityRepository
	clock        clock.Clock
}

func NewContentService(blobs ports.BlobStore, capabilities ports.CapabilityRepository, clk clock.Clock) *ContentService {
	return &ContentService{
		blobs:        blobs,
		capabilities: capabilities,
		clock:        clk,
	}
}

// Put : одинаковые байты дают один и тот же хэш, повторная запись не выполняется
func (s *ContentService) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	hash, err := ContentHash(data)
	if err != nil {
		return "", apperr.Internal("[ContentService] ошибка вычисления хэша", err)
	}

	exists, err := s.blobs.Has(ctx, hash)
	if err != nil {
		return "", apperr.Internal("[ContentService] ошибка проверки содержимого", err)
	}
	if exists {
		return hash, nil
	}

	if err := s.blobs.Put(ctx, hash, data, contentType); err != nil {
		return "", apperr.Internal("[ContentService] ошибка записи содержимого", err)
	}
	return hash, nil
}

// IssueCapability : возвращает живой токен пары или выпускает новый, created сообщает, выпущен ли новый
func (s *ContentService) IssueCapability(ctx context.Context, contentHash, documentID, identityUUID string, ttl time.Duration) (*model.AccessCapability, bool, error) {
	if ttl <= 0 {
		return nil, false, apperr.Capability(apperr.ReasonIssuanceFailed, "неверный срок действия токена", nil)
	}

	token, err := util.RandomToken(capabilityTokenBytes)
	if err != nil {
		return nil, false, apperr.Capability(apperr.ReasonIssuanceFailed, "не удалось выпустить токен", err)
	}

	now := s.clock.Now().UTC()
	candidate := &model.AccessCapability{
		Token:        token,
		DocumentID:   documentID,
		ContentHash:  contentHash,
		IdentityUUID: identityUUID,
		IssuedAt:     now,
		ExpiresAt:    now.Add(ttl),
	}

	capability, created, err := s.capabilities.IssueOrGet(ctx, candidate, now)
	if err != nil {
		return nil, false, apperr.Capability(apperr.ReasonIssuanceFailed, "не удалось выпустить токен", err)
	}
	return capability, created, nil
}

// Resolve : поток открывается до использования токена и закрывается, если использование не удалось.
// Из параллельных вызовов с одним токеном успешен ровно один
func (s *ContentService) Resolve(ctx context.Context, token string) (io.ReadCloser, *model.AccessCapability, error) {
	capability, err := s.capabilities.FindByToken(ctx, token)
	if err != nil {
		return nil, nil, capabilityError(err)
	}

	now := s.clock.Now().UTC()
	if capability.Consumed {
		return nil, nil, capabilityError(ports.ErrConflict)
	}
	if capability.IsExpired(now) {
		return nil, nil, capabilityError(ports.ErrExpired)
	}

	stream, err := s.blobs.Open(ctx, capability.ContentHash)
	if err != nil {
		return nil, nil, apperr.Capability(apperr.ReasonContentUnavailable, "содержимое документа недоступно", err)
	}

	consumed, err := s.capabilities.Consume(ctx, token, now)
	if err != nil {
		if closeErr := stream.Close(); closeErr != nil {
			zap.S().Warnw("[ContentService] ошибка закрытия потока", "error", closeErr)
		}
		return nil, nil, capabilityError(err)
	}

	return stream, consumed, nil
}

func capabilityError(err error) error {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return apperr.Capability(apperr.ReasonUnknownCapability, "токен не найден", nil)
	case errors.Is(err, ports.ErrConflict):
		return apperr.Capability(apperr.ReasonAlreadyConsumed, "токен уже использован", nil)
	case errors.Is(err, ports.ErrExpired):
		return apperr.Capability(apperr.ReasonCapabilityExpired, "срок действия токена истёк, запросите новый", nil)
	default:
		return apperr.Internal("[ContentService] ошибка использования токена", err)
	}
}
