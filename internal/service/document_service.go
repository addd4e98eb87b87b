package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"time"

	"paydocs-server/internal/apperr"
	"paydocs-server/internal/model"
	"paydocs-server/internal/ports"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/raulk/clock"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	pdfMimeType         = "application/pdf"
	defaultDurationDays = 30
	maxDurationDays     = 365
	maxTitleLength      = 200
)

// paymentHistory : платежи пользователя для раздела "мои документы" и проверки доступа к закрытым документам
type paymentHistory interface {
	ListPayments(ctx context.Context, payerUUID string) ([]*model.PaymentRecord, error)
	CheckAccess(ctx context.Context, documentID, payerUUID string) (model.AccessState, error)
}

type DocumentService struct {
	documentRepository ports.DocumentRepository
	cacheRepository    ports.CacheRepository
	grantRepository    ports.GrantDocumentRepository
	identityRepository ports.IdentityRepository
	content            ports.ContentStore
	payments           paymentHistory
	clock              clock.Clock
	maxSizeBytes       int64
}

func NewDocumentService(
	documentRepository ports.DocumentRepository,
	cacheRepository ports.CacheRepository,
	grantRepository ports.GrantDocumentRepository,
	identityRepository ports.IdentityRepository,
	content ports.ContentStore,
	payments paymentHistory,
	clk clock.Clock,
	maxSizeBytes int64,
) *DocumentService {
	return &DocumentService{
		documentRepository: documentRepository,
		cacheRepository:    cacheRepository,
		grantRepository:    grantRepository,
		identityRepository: identityRepository,
		content:            content,
		payments:           payments,
		clock:              clk,
		maxSizeBytes:       maxSizeBytes,
	}
}

// Upload : принимает только PDF, содержимое уходит в хранилище по хэшу, метаданные в репозиторий
func (s *DocumentService) Upload(ctx context.Context, actor model.Actor, input ports.UploadInput) (*model.Document, error) {
	if !actor.Authenticated() {
		return nil, apperr.Auth(apperr.ReasonUnauthenticated, "требуется авторизация")
	}

	document, err := s.documentFromInput(input)
	if err != nil {
		return nil, err
	}
	if input.Content == nil {
		return nil, apperr.Validation("файл не передан")
	}

	data, err := io.ReadAll(io.LimitReader(input.Content, s.maxSizeBytes+1))
	if err != nil {
		return nil, apperr.Validation("не удалось прочитать файл")
	}
	if len(data) == 0 {
		return nil, apperr.Validation("файл пустой")
	}
	if int64(len(data)) > s.maxSizeBytes {
		return nil, apperr.Validation("файл слишком большой")
	}

	pages, err := countPages(data)
	if err != nil {
		zap.S().Infow("[DocumentService] файл отклонён", "filename", input.Filename, "error", err)
		return nil, apperr.Validation("файл не является корректным PDF")
	}

	hash, err := s.content.Put(ctx, data, pdfMimeType)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	document.ID = uuid.NewString()
	document.OwnerUUID = actor.UUID
	document.ContentHash = hash
	document.SizeBytes = int64(len(data))
	document.Pages = pages
	document.MimeType = pdfMimeType
	document.CreatedAt = now
	document.UpdatedAt = now
	document.ExpiresAt = now.Add(time.Duration(document.DurationDays) * 24 * time.Hour)

	if err := s.documentRepository.Create(ctx, document); err != nil {
		return nil, apperr.Internal("[DocumentService] не удалось сохранить документ", err)
	}

	if err := s.cacheRepository.SetDocument(ctx, document); err != nil {
		zap.S().Warnw("[DocumentService] ошибка кэширования документа", "document", document.ID, "error", err)
	}

	zap.S().Infow("[DocumentService] документ загружен", "document", document.ID, "pages", pages, "hash", hash)
	return document, nil
}

func (s *DocumentService) documentFromInput(input ports.UploadInput) (*model.Document, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = strings.TrimSuffix(strings.TrimSpace(input.Filename), ".pdf")
	}
	if title == "" || len(title) > maxTitleLength {
		return nil, apperr.Validation("название документа должно быть от 1 до 200 символов")
	}

	var price model.Amount
	if strings.TrimSpace(input.Price) != "" {
		parsed, err := model.ParseAmount(input.Price)
		if err != nil {
			return nil, apperr.Validation("неверная цена: " + err.Error())
		}
		price = parsed
	}

	duration := input.DurationDays
	if duration == 0 {
		duration = defaultDurationDays
	}
	if duration < 1 || duration > maxDurationDays {
		return nil, apperr.Validation("срок размещения должен быть от 1 до 365 дней")
	}

	visibility := input.Visibility
	if visibility == "" {
		visibility = model.VisibilityPublic
	}
	if visibility != model.VisibilityPublic && visibility != model.VisibilityPrivate {
		return nil, apperr.Validation("видимость должна быть public или private")
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = model.DefaultCategory
	}

	return &model.Document{
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		Category:     category,
		Price:        price,
		Visibility:   visibility,
		DurationDays: duration,
	}, nil
}

func countPages(data []byte) (int, error) {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	return api.PageCount(bytes.NewReader(data), conf)
}

// Get : документ по id для авторизованного пользователя, просмотр не владельца увеличивает счётчик
func (s *DocumentService) Get(ctx context.Context, actor model.Actor, id string) (*model.Document, error) {
	document, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisible(ctx, actor, document); err != nil {
		return nil, err
	}

	if document.OwnerUUID != actor.UUID {
		s.countView(ctx, document)
	}
	return document, nil
}

// checkVisible : закрытый документ видят владелец, администратор, получатели доступа и покупатели,
// для остальных его нет
func (s *DocumentService) checkVisible(ctx context.Context, actor model.Actor, document *model.Document) error {
	if document.IsPublic() || actor.IsAdmin || document.OwnerUUID == actor.UUID {
		return nil
	}
	if !actor.Authenticated() {
		return apperr.NotFound("документ не найден")
	}

	granted, err := s.grantRepository.HasGrant(ctx, document.ID, actor.UUID)
	if err != nil {
		return apperr.Internal("[DocumentService] ошибка проверки доступа", err)
	}
	if granted {
		return nil
	}

	state, err := s.payments.CheckAccess(ctx, document.ID, actor.UUID)
	if err != nil {
		return err
	}
	if !state.Confirmed {
		return apperr.NotFound("документ не найден")
	}
	return nil
}

// GetPublic : только публичные документы с действующим сроком размещения
func (s *DocumentService) GetPublic(ctx context.Context, id string) (*model.Document, error) {
	document, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !document.IsPublic() || document.IsExpired(s.clock.Now().UTC()) {
		return nil, apperr.NotFound("документ не найден")
	}

	s.countView(ctx, document)
	return document, nil
}

// load : сначала Redis, затем репозиторий с записью в кэш
func (s *DocumentService) load(ctx context.Context, id string) (*model.Document, error) {
	document, err := s.cacheRepository.GetDocument(ctx, id)
	if err != nil {
		zap.S().Warnw("[DocumentService] ошибка чтения кэша", "document", id, "error", err)
	}
	if document != nil {
		return document, nil
	}

	document, err = s.documentRepository.GetByID(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, apperr.NotFound("документ не найден")
	}
	if err != nil {
		return nil, apperr.Internal("[DocumentService] ошибка получения документа", err)
	}

	if err := s.cacheRepository.SetDocument(ctx, document); err != nil {
		zap.S().Warnw("[DocumentService] ошибка кэширования документа", "document", id, "error", err)
	}
	return document, nil
}

func (s *DocumentService) countView(ctx context.Context, document *model.Document) {
	if err := s.documentRepository.IncrementViews(ctx, document.ID); err != nil {
		zap.S().Warnw("[DocumentService] не удалось учесть просмотр", "document", document.ID, "error", err)
		return
	}
	document.Views++
	// в кэше остаётся старое значение счётчика
	if err := s.cacheRepository.DeleteDocument(ctx, document.ID); err != nil {
		zap.S().Warnw("[DocumentService] ошибка удаления документа из кэша", "document", document.ID, "error", err)
	}
}

func (s *DocumentService) ListPublic(ctx context.Context, filter model.DocumentFilter) ([]*model.Document, string, error) {
	if filter.Cursor != "" {
		if _, _, err := model.DecodeCursor(filter.Cursor); err != nil {
			return nil, "", apperr.Validation("неверный курсор")
		}
	}
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Limit = normalizeLimit(filter.Limit)
	filter.Now = s.clock.Now().UTC()

	documents, nextCursor, err := s.documentRepository.ListPublic(ctx, filter)
	if err != nil {
		return nil, "", apperr.Internal("[DocumentService] ошибка получения каталога", err)
	}
	return documents, nextCursor, nil
}

func (s *DocumentService) ListByOwner(ctx context.Context, actor model.Actor) ([]*model.Document, error) {
	if !actor.Authenticated() {
		return nil, apperr.Auth(apperr.ReasonUnauthenticated, "требуется авторизация")
	}
	documents, err := s.documentRepository.ListByOwner(ctx, actor.UUID)
	if err != nil {
		return nil, apperr.Internal("[DocumentService] ошибка получения документов", err)
	}
	return documents, nil
}

// Update : правки владельца или администратора
func (s *DocumentService) Update(ctx context.Context, actor model.Actor, id string, update model.DocumentUpdate) (*model.Document, error) {
	if _, err := s.manageable(ctx, actor, id); err != nil {
		return nil, err
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" || len(title) > maxTitleLength {
			return nil, apperr.Validation("название документа должно быть от 1 до 200 символов")
		}
		update.Title = &title
	}
	if update.Price != nil && *update.Price < 0 {
		return nil, apperr.Validation("цена не может быть отрицательной")
	}
	if update.Visibility != nil && *update.Visibility != model.VisibilityPublic && *update.Visibility != model.VisibilityPrivate {
		return nil, apperr.Validation("видимость должна быть public или private")
	}
	if update.Category != nil && strings.TrimSpace(*update.Category) == "" {
		category := model.DefaultCategory
		update.Category = &category
	}

	document, err := s.documentRepository.Update(ctx, id, update, s.clock.Now().UTC())
	if errors.Is(err, ports.ErrNotFound) {
		return nil, apperr.NotFound("документ не найден")
	}
	if err != nil {
		return nil, apperr.Internal("[DocumentService] ошибка обновления документа", err)
	}

	if err := s.cacheRepository.DeleteDocument(ctx, id); err != nil {
		zap.S().Warnw("[DocumentService] ошибка удаления документа из кэша", "document", id, "error", err)
	}
	return document, nil
}

// Delete : мягкое удаление. Содержимое остаётся в хранилище, на него могут ссылаться другие документы с тем же хэшем
func (s *DocumentService) Delete(ctx context.Context, actor model.Actor, id string) error {
	if _, err := s.manageable(ctx, actor, id); err != nil {
		return err
	}

	err := s.documentRepository.Delete(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		return apperr.NotFound("документ не найден")
	}
	if err != nil {
		return apperr.Internal("[DocumentService] ошибка удаления документа", err)
	}

	if err := s.cacheRepository.DeleteDocument(ctx, id); err != nil {
		zap.S().Warnw("[DocumentService] ошибка удаления документа из кэша", "document", id, "error", err)
	}

	zap.S().Infow("[DocumentService] документ удалён", "document", id, "by", actor.UUID)
	return nil
}

// AddGrant : владелец открывает бесплатный доступ другому пользователю
func (s *DocumentService) AddGrant(ctx context.Context, actor model.Actor, id, targetUserUUID string) error {
	document, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if targetUserUUID == document.OwnerUUID {
		return apperr.Validation("владелец уже имеет доступ к документу")
	}

	_, err = s.identityRepository.FindByUUID(ctx, targetUserUUID)
	if errors.Is(err, ports.ErrNotFound) {
		return apperr.NotFound("пользователь для доступа не найден")
	}
	if err != nil {
		return apperr.Internal("[DocumentService] ошибка проверки пользователя", err)
	}

	if err := s.grantRepository.AddGrant(ctx, id, targetUserUUID, s.clock.Now().UTC()); err != nil {
		return apperr.Internal("[DocumentService] не удалось добавить доступ к документу", err)
	}
	return nil
}

func (s *DocumentService) RemoveGrant(ctx context.Context, actor model.Actor, id, targetUserUUID string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.grantRepository.RemoveGrant(ctx, id, targetUserUUID); err != nil {
		return apperr.Internal("[DocumentService] не удалось удалить доступ к документу", err)
	}
	return nil
}

func (s *DocumentService) ListGrants(ctx context.Context, actor model.Actor, id string) ([]model.DocumentGrant, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}
	grants, err := s.grantRepository.ListGrants(ctx, id)
	if err != nil {
		return nil, apperr.Internal("[DocumentService] не удалось получить список доступа", err)
	}
	return grants, nil
}

// Collection : свои документы, открытые владельцами и оплаченные, без повторов, новые первыми
func (s *DocumentService) Collection(ctx context.Context, actor model.Actor) ([]*model.Document, error) {
	if !actor.Authenticated() {
		return nil, apperr.Auth(apperr.ReasonUnauthenticated, "требуется авторизация")
	}

	var (
		owned   []*model.Document
		granted []string
		paid    []*model.PaymentRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		owned, err = s.documentRepository.ListByOwner(gctx, actor.UUID)
		return err
	})
	g.Go(func() error {
		var err error
		granted, err = s.grantRepository.ListGrantedTo(gctx, actor.UUID)
		return err
	})
	g.Go(func() error {
		var err error
		paid, err = s.payments.ListPayments(gctx, actor.UUID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Internal("[DocumentService] ошибка сборки коллекции", err)
	}

	ownedIDs := lo.SliceToMap(owned, func(document *model.Document) (string, struct{}) {
		return document.ID, struct{}{}
	})
	paidIDs := lo.FilterMap(paid, func(record *model.PaymentRecord, _ int) (string, bool) {
		return record.DocumentID, record.Status == model.PaymentConfirmed
	})
	extraIDs := lo.Filter(lo.Uniq(append(granted, paidIDs...)), func(id string, _ int) bool {
		_, ok := ownedIDs[id]
		return !ok
	})

	collection := append([]*model.Document{}, owned...)
	for _, id := range extraIDs {
		document, err := s.documentRepository.GetByID(ctx, id)
		if errors.Is(err, ports.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, apperr.Internal("[DocumentService] ошибка получения документа", err)
		}
		collection = append(collection, document)
	}

	sort.SliceStable(collection, func(i, j int) bool {
		return collection[i].CreatedAt.After(collection[j].CreatedAt)
	})
	return collection, nil
}

// manageable : документ, который actor может менять (владелец или администратор)
func (s *DocumentService) manageable(ctx context.Context, actor model.Actor, id string) (*model.Document, error) {
	document, err := s.fresh(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && document.OwnerUUID != actor.UUID {
		return nil, apperr.Forbidden("только владелец или администратор может изменять документ")
	}
	return document, nil
}

func (s *DocumentService) owned(ctx context.Context, actor model.Actor, id string) (*model.Document, error) {
	document, err := s.fresh(ctx, id)
	if err != nil {
		return nil, err
	}
	if document.OwnerUUID != actor.UUID {
		return nil, apperr.Forbidden("доступом к документу управляет только владелец")
	}
	return document, nil
}

// fresh : проверки прав идут мимо кэша
func (s *DocumentService) fresh(ctx context.Context, id string) (*model.Document, error) {
	document, err := s.documentRepository.GetByID(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, apperr.NotFound("документ не найден")
	}
	if err != nil {
		return nil, apperr.Internal("[DocumentService] ошибка получения документа", err)
	}
	return document, nil
}
