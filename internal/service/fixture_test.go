package service_test

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"paydocs-server/config"
	"paydocs-server/internal/blob"
	"paydocs-server/internal/ledger"
	"paydocs-server/internal/model"
	"paydocs-server/internal/repository/kvstore"
	"paydocs-server/internal/security"
	"paydocs-server/internal/service"

	ds "github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	"github.com/raulk/clock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ===== MOCKS =====

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyNewIP(ctx context.Context, userUUID, newIP, oldIP string) error {
	args := m.Called(ctx, userUUID, newIP, oldIP)
	return args.Error(0)
}

// recorderSpy : запоминает исходы, которые сервисы отдают в метрики
type recorderSpy struct {
	mu          sync.Mutex
	payments    []string
	capability  []string
	resolutions []string
}

func (r *recorderSpy) Payment(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = append(r.payments, outcome)
}

func (r *recorderSpy) Capability(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capability = append(r.capability, outcome)
}

func (r *recorderSpy) Resolution(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolutions = append(r.resolutions, outcome)
}

// ===== HELPERS =====

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const (
	testCapabilityTTL = 15 * time.Minute
	testPassword      = "Str0ng!Passw0rd"
)

type fixture struct {
	identities   *kvstore.IdentityRepository
	documents    *kvstore.DocumentRepository
	grants       *kvstore.GrantDocumentRepository
	payments     *kvstore.PaymentRepository
	capabilities *kvstore.CapabilityRepository
	jwtRepo      *kvstore.JWTRepository
	blobs        *blob.DatastoreBlobs

	gateway  *ledger.MemoryGateway
	clock    *clock.Mock
	recorder *recorderSpy

	paymentService *service.PaymentService
	content        *service.ContentService
	coordinator    *service.AccessCoordinator
	documentsSvc   *service.DocumentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	datastore := dssync.MutexWrap(ds.NewMapDatastore())
	store := kvstore.New(datastore)
	t.Cleanup(func() { _ = store.Close() })

	mockClock := clock.NewMock()
	mockClock.Set(testNow)

	f := &fixture{
		identities:   kvstore.NewIdentityRepository(store),
		documents:    kvstore.NewDocumentRepository(store),
		grants:       kvstore.NewGrantDocumentRepository(store),
		payments:     kvstore.NewPaymentRepository(store),
		capabilities: kvstore.NewCapabilityRepository(store),
		jwtRepo:      kvstore.NewJWTRepository(store),
		blobs:        blob.NewDatastoreBlobs(datastore),
		gateway:      ledger.NewMemoryGateway(model.Amount(10000)),
		clock:        mockClock,
		recorder:     &recorderSpy{},
	}

	f.paymentService = service.NewPaymentService(f.payments, f.documents, f.gateway, f.clock, testPaymentOptions(), f.recorder)
	f.content = service.NewContentService(f.blobs, f.capabilities, f.clock)
	f.coordinator = service.NewAccessCoordinator(f.documents, f.grants, f.paymentService, f.content,
		f.capabilities, f.clock, testCapabilityTTL, f.recorder)
	f.documentsSvc = service.NewDocumentService(f.documents, noopCache{}, f.grants, f.identities,
		f.content, f.paymentService, f.clock, 1<<20)
	return f
}

func testPaymentOptions() service.PaymentOptions {
	return service.PaymentOptions{
		SubmitTimeout: 5 * time.Second,
		RetryMin:      time.Millisecond,
		RetryMax:      5 * time.Millisecond,
		RetryFactor:   2,
		MaxAttempts:   3,
	}
}

// document : сохраняет документ с содержимым в хранилище и возвращает его
func (f *fixture) document(t *testing.T, owner string, price model.Amount, content string) *model.Document {
	t.Helper()
	ctx := context.Background()

	hash, err := f.content.Put(ctx, []byte(content), "application/pdf")
	require.NoError(t, err)

	now := f.clock.Now().UTC()
	document := &model.Document{
		ID:           "doc-" + content,
		OwnerUUID:    owner,
		Title:        "Document " + content,
		Category:     model.DefaultCategory,
		ContentHash:  hash,
		SizeBytes:    int64(len(content)),
		MimeType:     "application/pdf",
		Price:        price,
		Visibility:   model.VisibilityPublic,
		DurationDays: 30,
		CreatedAt:    now,
		UpdatedAt:    now,
		ExpiresAt:    now.Add(30 * 24 * time.Hour),
	}
	require.NoError(t, f.documents.Create(ctx, document))
	return document
}

func newJWTService(t *testing.T) *security.JWTService {
	t.Helper()
	jwtService, err := security.NewJWTService(&config.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenTTL:  "15m",
		RefreshTokenTTL: "720h",
	}, time.Minute)
	require.NoError(t, err)
	return jwtService
}

// minimalPDF : корректный PDF из pages пустых страниц
func minimalPDF(pages int) []byte {
	var buf bytes.Buffer
	var offsets []int
	object := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", 3+i)
	}
	object("<< /Type /Catalog /Pages 2 0 R >>")
	object(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages))
	for i := 0; i < pages; i++ {
		object("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, offset := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

type noopCache struct{}

func (noopCache) SetDocument(context.Context, *model.Document) error { return nil }

func (noopCache) GetDocument(context.Context, string) (*model.Document, error) { return nil, nil }

func (noopCache) DeleteDocument(context.Context, string) error { return nil }
