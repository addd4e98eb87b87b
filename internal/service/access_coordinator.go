package service

import (
	"context"
	"errors"
	"io"
	"time"

	"paydocs-server/internal/apperr"
	"paydocs-server/internal/model"
	"paydocs-server/internal/ports"

	"github.com/raulk/clock"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("paydocs-server/internal/service")

// paymentLedger : то, что координатору нужно от клиента реестра
type paymentLedger interface {
	SubmitPayment(ctx context.Context, documentID, payerUUID, amount string) (*model.PaymentRecord, error)
	CheckAccess(ctx context.Context, documentID, payerUUID string) (model.AccessState, error)
	FindActive(ctx context.Context, documentID, payerUUID string) (*model.PaymentRecord, error)
}

// AccessCoordinator : связывает оплату, основания доступа и выдачу одноразовых токенов.
// Состояние доступа не хранится отдельно, оно выводится из записей платежей и токенов
type AccessCoordinator struct {
	documents     ports.DocumentRepository
	grants        ports.GrantDocumentRepository
	payments      paymentLedger
	content       ports.ContentStore
	capabilities  ports.CapabilityRepository
	clock         clock.Clock
	capabilityTTL time.Duration
	recorder      Recorder
}

func NewAccessCoordinator(
	documents ports.DocumentRepository,
	grants ports.GrantDocumentRepository,
	payments paymentLedger,
	content ports.ContentStore,
	capabilities ports.CapabilityRepository,
	clk clock.Clock,
	capabilityTTL time.Duration,
	recorder Recorder,
) *AccessCoordinator {
	if recorder == nil {
		recorder = NoopRecorder{}
	}
	return &AccessCoordinator{
		documents:     documents,
		grants:        grants,
		payments:      payments,
		content:       content,
		capabilities:  capabilities,
		clock:         clk,
		capabilityTTL: capabilityTTL,
		recorder:      recorder,
	}
}

func (c *AccessCoordinator) AccessState(ctx context.Context, actor model.Actor, documentID string) (*model.AccessView, error) {
	ctx, span := tracer.Start(ctx, "AccessCoordinator.AccessState")
	defer span.End()

	view := &model.AccessView{
		DocumentID:   documentID,
		IdentityUUID: actor.UUID,
		Phase:        model.PhaseUnauthenticated,
		Basis:        model.BasisNone,
	}

	document, err := c.document(ctx, documentID)
	if err != nil {
		return nil, traceError(span, err)
	}
	if !actor.Authenticated() {
		return view, nil
	}

	basis, record, err := c.basis(ctx, actor, document)
	if err != nil {
		return nil, traceError(span, err)
	}
	view.Basis = basis
	view.Payment = record

	if basis == model.BasisNone {
		view.Phase = model.PhaseAuthenticated
		if record == nil {
			record, err = c.payments.FindActive(ctx, document.ID, actor.UUID)
			if err != nil {
				return nil, traceError(span, err)
			}
		}
		if record != nil && record.Status == model.PaymentPending {
			view.Phase = model.PhasePaymentPending
			view.Payment = record
		}
		span.SetAttributes(attribute.String("access.phase", string(view.Phase)))
		return view, nil
	}

	view.Phase = model.PhasePaymentConfirmed
	latest, err := c.capabilities.FindLatest(ctx, document.ID, actor.UUID)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return nil, traceError(span, apperr.Internal("[AccessCoordinator] ошибка получения токена", err))
	}
	if latest != nil {
		now := c.clock.Now().UTC()
		view.Capability = latest
		switch {
		case latest.Consumed:
			view.Phase = model.PhaseConsumed
		case latest.IsExpired(now):
			view.Phase = model.PhaseExpired
		default:
			view.Phase = model.PhaseCapabilityIssued
		}
	}

	span.SetAttributes(
		attribute.String("access.phase", string(view.Phase)),
		attribute.String("access.basis", string(view.Basis)),
	)
	return view, nil
}

// Pay : оплата документа от имени actor. Повторный вызов не списывает деньги второй раз
func (c *AccessCoordinator) Pay(ctx context.Context, actor model.Actor, documentID, amount string) (*model.PaymentRecord, error) {
	ctx, span := tracer.Start(ctx, "AccessCoordinator.Pay")
	defer span.End()
	span.SetAttributes(attribute.String("document.id", documentID))

	if !actor.Authenticated() {
		return nil, traceError(span, apperr.Auth(apperr.ReasonUnauthenticated, "требуется авторизация"))
	}

	record, err := c.payments.SubmitPayment(ctx, documentID, actor.UUID, amount)
	if err != nil {
		return nil, traceError(span, err)
	}
	span.SetAttributes(attribute.String("payment.id", record.ID))
	return record, nil
}

// Issue : токен выдаётся только при наличии основания. Живой токен пары возвращается повторно
func (c *AccessCoordinator) Issue(ctx context.Context, actor model.Actor, documentID string) (*model.AccessCapability, error) {
	ctx, span := tracer.Start(ctx, "AccessCoordinator.Issue")
	defer span.End()
	span.SetAttributes(attribute.String("document.id", documentID))

	if !actor.Authenticated() {
		return nil, traceError(span, apperr.Auth(apperr.ReasonUnauthenticated, "требуется авторизация"))
	}

	document, err := c.document(ctx, documentID)
	if err != nil {
		return nil, traceError(span, err)
	}

	basis, _, err := c.basis(ctx, actor, document)
	if err != nil {
		return nil, traceError(span, err)
	}
	if basis == model.BasisNone {
		c.recorder.Capability("denied")
		return nil, traceError(span, apperr.Capability(apperr.ReasonNoAccess, "нет доступа к документу", nil))
	}

	privileged := basis == model.BasisOwner || basis == model.BasisAdmin
	if document.IsExpired(c.clock.Now().UTC()) && !privileged {
		c.recorder.Capability("denied")
		return nil, traceError(span, apperr.Capability(apperr.ReasonNoAccess, "срок размещения документа истёк", nil))
	}

	capability, created, err := c.content.IssueCapability(ctx, document.ContentHash, document.ID, actor.UUID, c.capabilityTTL)
	if err != nil {
		c.recorder.Capability("failed")
		return nil, traceError(span, err)
	}

	if created {
		c.recorder.Capability("issued")
	} else {
		c.recorder.Capability("reused")
	}
	span.SetAttributes(attribute.String("access.basis", string(basis)), attribute.Bool("capability.created", created))
	return capability, nil
}

// Resolve : обмен токена на поток содержимого. Документ может быть nil, если его удалили после выдачи токена
func (c *AccessCoordinator) Resolve(ctx context.Context, token string) (io.ReadCloser, *model.AccessCapability, *model.Document, error) {
	ctx, span := tracer.Start(ctx, "AccessCoordinator.Resolve")
	defer span.End()

	stream, capability, err := c.content.Resolve(ctx, token)
	if err != nil {
		c.recorder.Resolution(string(apperr.ReasonOf(err)))
		return nil, nil, nil, traceError(span, err)
	}
	c.recorder.Resolution("ok")
	span.SetAttributes(attribute.String("document.id", capability.DocumentID))

	document, err := c.documents.GetByID(ctx, capability.DocumentID)
	if err != nil {
		zap.S().Warnw("[AccessCoordinator] метаданные документа недоступны",
			"document_id", capability.DocumentID, "error", err)
		document = nil
	}
	return stream, capability, document, nil
}

func (c *AccessCoordinator) document(ctx context.Context, documentID string) (*model.Document, error) {
	document, err := c.documents.GetByID(ctx, documentID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, apperr.NotFound("документ не найден")
	}
	if err != nil {
		return nil, apperr.Internal("[AccessCoordinator] ошибка получения документа", err)
	}
	return document, nil
}

// basis : admin, owner, free, grant, payment в порядке проверки
func (c *AccessCoordinator) basis(ctx context.Context, actor model.Actor, document *model.Document) (model.AccessBasis, *model.PaymentRecord, error) {
	switch {
	case actor.IsAdmin:
		return model.BasisAdmin, nil, nil
	case document.OwnerUUID == actor.UUID:
		return model.BasisOwner, nil, nil
	case document.IsFree():
		return model.BasisFree, nil, nil
	}

	granted, err := c.grants.HasGrant(ctx, document.ID, actor.UUID)
	if err != nil {
		return "", nil, apperr.Internal("[AccessCoordinator] ошибка проверки доступа", err)
	}
	if granted {
		return model.BasisGrant, nil, nil
	}

	state, err := c.payments.CheckAccess(ctx, document.ID, actor.UUID)
	if err != nil {
		return "", nil, err
	}
	if state.Confirmed {
		return model.BasisPayment, state.Payment, nil
	}
	return model.BasisNone, nil, nil
}

func traceError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
