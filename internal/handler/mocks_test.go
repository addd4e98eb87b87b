package handler_test

import (
	"context"
	"io"
	"net/http"
	"time"

	"paydocs-server/internal/model"
	"paydocs-server/internal/ports"
	"paydocs-server/internal/security"

	"github.com/stretchr/testify/mock"
)

type MockAccessCoordinator struct {
	mock.Mock
}

func (m *MockAccessCoordinator) AccessState(ctx context.Context, actor model.Actor, documentID string) (*model.AccessView, error) {
	args := m.Called(ctx, actor, documentID)
	view, _ := args.Get(0).(*model.AccessView)
	return view, args.Error(1)
}

func (m *MockAccessCoordinator) Pay(ctx context.Context, actor model.Actor, documentID, amount string) (*model.PaymentRecord, error) {
	args := m.Called(ctx, actor, documentID, amount)
	record, _ := args.Get(0).(*model.PaymentRecord)
	return record, args.Error(1)
}

func (m *MockAccessCoordinator) Issue(ctx context.Context, actor model.Actor, documentID string) (*model.AccessCapability, error) {
	args := m.Called(ctx, actor, documentID)
	capability, _ := args.Get(0).(*model.AccessCapability)
	return capability, args.Error(1)
}

func (m *MockAccessCoordinator) Resolve(ctx context.Context, token string) (io.ReadCloser, *model.AccessCapability, *model.Document, error) {
	args := m.Called(ctx, token)
	stream, _ := args.Get(0).(io.ReadCloser)
	capability, _ := args.Get(1).(*model.AccessCapability)
	document, _ := args.Get(2).(*model.Document)
	return stream, capability, document, args.Error(3)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) SubmitPayment(ctx context.Context, documentID, payerUUID, amount string) (*model.PaymentRecord, error) {
	args := m.Called(ctx, documentID, payerUUID, amount)
	record, _ := args.Get(0).(*model.PaymentRecord)
	return record, args.Error(1)
}

func (m *MockPaymentService) CheckAccess(ctx context.Context, documentID, payerUUID string) (model.AccessState, error) {
	args := m.Called(ctx, documentID, payerUUID)
	return args.Get(0).(model.AccessState), args.Error(1)
}

func (m *MockPaymentService) ListPayments(ctx context.Context, payerUUID string) ([]*model.PaymentRecord, error) {
	args := m.Called(ctx, payerUUID)
	records, _ := args.Get(0).([]*model.PaymentRecord)
	return records, args.Error(1)
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, actor model.Actor, input ports.UploadInput) (*model.Document, error) {
	args := m.Called(ctx, actor, input)
	document, _ := args.Get(0).(*model.Document)
	return document, args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, actor model.Actor, id string) (*model.Document, error) {
	args := m.Called(ctx, actor, id)
	document, _ := args.Get(0).(*model.Document)
	return document, args.Error(1)
}

func (m *MockDocumentService) GetPublic(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	document, _ := args.Get(0).(*model.Document)
	return document, args.Error(1)
}

func (m *MockDocumentService) ListPublic(ctx context.Context, filter model.DocumentFilter) ([]*model.Document, string, error) {
	args := m.Called(ctx, filter)
	documents, _ := args.Get(0).([]*model.Document)
	return documents, args.String(1), args.Error(2)
}

func (m *MockDocumentService) ListByOwner(ctx context.Context, actor model.Actor) ([]*model.Document, error) {
	args := m.Called(ctx, actor)
	documents, _ := args.Get(0).([]*model.Document)
	return documents, args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, actor model.Actor, id string, update model.DocumentUpdate) (*model.Document, error) {
	args := m.Called(ctx, actor, id, update)
	document, _ := args.Get(0).(*model.Document)
	return document, args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, actor model.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockDocumentService) AddGrant(ctx context.Context, actor model.Actor, id, targetUserUUID string) error {
	return m.Called(ctx, actor, id, targetUserUUID).Error(0)
}

func (m *MockDocumentService) RemoveGrant(ctx context.Context, actor model.Actor, id, targetUserUUID string) error {
	return m.Called(ctx, actor, id, targetUserUUID).Error(0)
}

func (m *MockDocumentService) ListGrants(ctx context.Context, actor model.Actor, id string) ([]model.DocumentGrant, error) {
	args := m.Called(ctx, actor, id)
	grants, _ := args.Get(0).([]model.DocumentGrant)
	return grants, args.Error(1)
}

func (m *MockDocumentService) Collection(ctx context.Context, actor model.Actor) ([]*model.Document, error) {
	args := m.Called(ctx, actor)
	documents, _ := args.Get(0).([]*model.Document)
	return documents, args.Error(1)
}

type MockAuthenticationService struct {
	mock.Mock
}

func (m *MockAuthenticationService) Login(ctx context.Context, username string, presented model.Presentation, userAgent, ipAddress string) (*model.TokensPair, error) {
	args := m.Called(ctx, username, presented, userAgent, ipAddress)
	tokens, _ := args.Get(0).(*model.TokensPair)
	return tokens, args.Error(1)
}

func (m *MockAuthenticationService) PasskeyChallenge(ctx context.Context, username string) (string, time.Time, error) {
	args := m.Called(ctx, username)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockAuthenticationService) RefreshToken(ctx context.Context, userAgent, ipAddress, accessToken, refreshToken string) (*model.TokensPair, error) {
	args := m.Called(ctx, userAgent, ipAddress, accessToken, refreshToken)
	tokens, _ := args.Get(0).(*model.TokensPair)
	return tokens, args.Error(1)
}

func (m *MockAuthenticationService) Logout(ctx context.Context, refreshTokenUUID string) error {
	return m.Called(ctx, refreshTokenUUID).Error(0)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, input model.RegisterInput, userAgent, ipAddress string) (*model.Identity, *model.TokensPair, error) {
	args := m.Called(ctx, input, userAgent, ipAddress)
	identity, _ := args.Get(0).(*model.Identity)
	tokens, _ := args.Get(1).(*model.TokensPair)
	return identity, tokens, args.Error(2)
}

func (m *MockUserService) GetUser(ctx context.Context, actor model.Actor, uuid string) (*model.Identity, error) {
	args := m.Called(ctx, actor, uuid)
	identity, _ := args.Get(0).(*model.Identity)
	return identity, args.Error(1)
}

func (m *MockUserService) UpdateDisplayName(ctx context.Context, actor model.Actor, uuid, displayName string) error {
	return m.Called(ctx, actor, uuid, displayName).Error(0)
}

func (m *MockUserService) RotateCredential(ctx context.Context, actor model.Actor, uuid string, input model.RegisterInput) error {
	return m.Called(ctx, actor, uuid, input).Error(0)
}

func (m *MockUserService) DeleteUser(ctx context.Context, actor model.Actor, uuid string) error {
	return m.Called(ctx, actor, uuid).Error(0)
}

func (m *MockUserService) ListUsers(ctx context.Context, actor model.Actor, cursor string, limit int) ([]*model.Identity, string, error) {
	args := m.Called(ctx, actor, cursor, limit)
	identities, _ := args.Get(0).([]*model.Identity)
	return identities, args.String(1), args.Error(2)
}

// withActor : middleware теста, подставляет claims как JWTMiddleware
func withActor(actor model.Actor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actor.Authenticated() {
				r = r.WithContext(security.WithClaims(r.Context(), &security.Claims{UserUUID: actor.UUID, IsAdmin: actor.IsAdmin}))
			}
			next.ServeHTTP(w, r)
		})
	}
}
