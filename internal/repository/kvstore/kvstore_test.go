package kvstore_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"paydocs-server/internal/model"
	"paydocs-server/internal/ports"
	"paydocs-server/internal/repository/kvstore"

	ds "github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *kvstore.Store {
	t.Helper()
	store := kvstore.New(dssync.MutexWrap(ds.NewMapDatastore()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestIdentityRepository(t *testing.T) {
	ctx := context.Background()
	repo := kvstore.NewIdentityRepository(newStore(t))

	alice := &model.Identity{UUID: "u-1", Username: "alice", Credential: model.PasswordCredential("hash"), CreatedAt: base}
	require.NoError(t, repo.Create(ctx, alice))

	err := repo.Create(ctx, &model.Identity{UUID: "u-2", Username: "alice", CreatedAt: base})
	assert.ErrorIs(t, err, ports.ErrAlreadyExists)

	found, err := repo.FindByUUID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)
	assert.Equal(t, "hash", found.Credential.PasswordHash)

	key := make([]byte, 32)
	require.NoError(t, repo.UpdateCredential(ctx, "u-1", model.PublicKeyCredential(key), base.Add(time.Minute)))
	found, err = repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.CredentialPublicKey, found.Credential.Kind)

	require.NoError(t, repo.Delete(ctx, "u-1"))
	_, err = repo.FindByUsername(ctx, "alice")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "u-1"), ports.ErrNotFound)
}

func TestIdentityRepositoryListPages(t *testing.T) {
	ctx := context.Background()
	repo := kvstore.NewIdentityRepository(newStore(t))
	for i, name := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, &model.Identity{
			UUID: "u-" + name, Username: name, CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	page, cursor, err := repo.List(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "a", page[0].Username)
	require.NotEmpty(t, cursor)

	page, cursor, err = repo.List(ctx, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "c", page[0].Username)
	assert.Empty(t, cursor)
}

func TestDocumentRepositoryListPublic(t *testing.T) {
	ctx := context.Background()
	repo := kvstore.NewDocumentRepository(newStore(t))

	docs := []*model.Document{
		{ID: "d1", OwnerUUID: "o", Title: "Go notes", Category: "Books", Visibility: model.VisibilityPublic, CreatedAt: base, ExpiresAt: base.Add(time.Hour)},
		{ID: "d2", OwnerUUID: "o", Title: "Rust notes", Category: "Books", Visibility: model.VisibilityPublic, CreatedAt: base.Add(time.Second), ExpiresAt: base.Add(time.Hour)},
		{ID: "d3", OwnerUUID: "o", Title: "secret", Visibility: model.VisibilityPrivate, CreatedAt: base.Add(2 * time.Second), ExpiresAt: base.Add(time.Hour)},
		{ID: "d4", OwnerUUID: "o", Title: "old", Visibility: model.VisibilityPublic, CreatedAt: base.Add(3 * time.Second), ExpiresAt: base},
		{ID: "d5", OwnerUUID: "o", Title: "Go advanced", Category: "Papers", Visibility: model.VisibilityPublic, CreatedAt: base.Add(4 * time.Second), ExpiresAt: base.Add(time.Hour)},
	}
	for _, doc := range docs {
		require.NoError(t, repo.Create(ctx, doc))
	}

	page, cursor, err := repo.ListPublic(ctx, model.DocumentFilter{Limit: 2, Now: base})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "d5", page[0].ID)
	assert.Equal(t, "d2", page[1].ID)

	page, cursor, err = repo.ListPublic(ctx, model.DocumentFilter{Limit: 2, Cursor: cursor, Now: base})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "d1", page[0].ID)
	assert.Empty(t, cursor)

	page, _, err = repo.ListPublic(ctx, model.DocumentFilter{Query: "go", Category: "books", Limit: 10, Now: base})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "d1", page[0].ID)

	require.NoError(t, repo.Delete(ctx, "d5"))
	_, err = repo.GetByID(ctx, "d5")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	owned, err := repo.ListByOwner(ctx, "o")
	require.NoError(t, err)
	assert.Len(t, owned, 4)
}

func TestDocumentRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	repo := kvstore.NewDocumentRepository(newStore(t))
	require.NoError(t, repo.Create(ctx, &model.Document{ID: "d1", Title: "old", Price: 500, CreatedAt: base}))

	title := "new"
	price := model.Amount(0)
	updated, err := repo.Update(ctx, "d1", model.DocumentUpdate{Title: &title, Price: &price}, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)
	assert.True(t, updated.IsFree())
	assert.Equal(t, base.Add(time.Hour), updated.UpdatedAt)

	require.NoError(t, repo.IncrementViews(ctx, "d1"))
	found, err := repo.GetByID(ctx, "d1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, found.Views)
}

func TestGrantRepository(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	documents := kvstore.NewDocumentRepository(store)
	grants := kvstore.NewGrantDocumentRepository(store)

	require.NoError(t, documents.Create(ctx, &model.Document{ID: "d1", CreatedAt: base}))
	require.NoError(t, documents.Create(ctx, &model.Document{ID: "d2", CreatedAt: base}))
	require.NoError(t, grants.AddGrant(ctx, "d1", "bob", base))
	require.NoError(t, grants.AddGrant(ctx, "d1", "bob", base.Add(time.Hour)))
	require.NoError(t, grants.AddGrant(ctx, "d2", "bob", base))

	has, err := grants.HasGrant(ctx, "d1", "bob")
	require.NoError(t, err)
	assert.True(t, has)

	list, err := grants.ListGrants(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, base, list[0].CreatedAt)

	require.NoError(t, documents.Delete(ctx, "d2"))
	ids, err := grants.ListGrantedTo(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, ids)

	require.NoError(t, grants.RemoveGrant(ctx, "d1", "bob"))
	has, err = grants.HasGrant(ctx, "d1", "bob")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestPaymentRepositoryOneActivePerPair(t *testing.T) {
	ctx := context.Background()
	repo := kvstore.NewPaymentRepository(newStore(t))

	first := &model.PaymentRecord{ID: "p1", DocumentID: "d1", PayerUUID: "bob", Amount: 500, CreatedAt: base}
	require.NoError(t, repo.CreatePending(ctx, first))
	assert.Equal(t, model.PaymentPending, first.Status)

	err := repo.CreatePending(ctx, &model.PaymentRecord{ID: "p2", DocumentID: "d1", PayerUUID: "bob", CreatedAt: base})
	assert.ErrorIs(t, err, ports.ErrAlreadyExists)

	require.NoError(t, repo.MarkFailed(ctx, "p1", "insufficient_funds", base.Add(time.Second)))
	_, err = repo.FindActive(ctx, "d1", "bob")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	second := &model.PaymentRecord{ID: "p2", DocumentID: "d1", PayerUUID: "bob", Amount: 500, CreatedAt: base.Add(time.Minute)}
	require.NoError(t, repo.CreatePending(ctx, second))

	confirmed, err := repo.Confirm(ctx, "p2", "tx-1", base.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, model.PaymentConfirmed, confirmed.Status)
	assert.Equal(t, "tx-1", confirmed.TxID)

	_, err = repo.Confirm(ctx, "p2", "tx-2", base.Add(3*time.Minute))
	assert.ErrorIs(t, err, ports.ErrConflict)
	assert.ErrorIs(t, repo.MarkFailed(ctx, "p2", "late", base), ports.ErrConflict)
	_, err = repo.Confirm(ctx, "missing", "tx", base)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	active, err := repo.FindActive(ctx, "d1", "bob")
	require.NoError(t, err)
	assert.Equal(t, "p2", active.ID)

	history, err := repo.ListByPayer(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "p2", history[0].ID)
}

func TestCapabilityIssueOrGetReturnsLiveToken(t *testing.T) {
	ctx := context.Background()
	repo := kvstore.NewCapabilityRepository(newStore(t))

	candidate := func(token string, issuedAt time.Time) *model.AccessCapability {
		return &model.AccessCapability{
			Token: token, DocumentID: "d1", IdentityUUID: "bob", ContentHash: "cid",
			IssuedAt: issuedAt, ExpiresAt: issuedAt.Add(time.Minute),
		}
	}

	first, created, err := repo.IssueOrGet(ctx, candidate("t1", base), base)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := repo.IssueOrGet(ctx, candidate("t2", base.Add(time.Second)), base.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.Token, again.Token)

	// после истечения выдаётся новый токен
	later := base.Add(2 * time.Minute)
	fresh, created, err := repo.IssueOrGet(ctx, candidate("t3", later), later)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "t3", fresh.Token)

	latest, err := repo.FindLatest(ctx, "d1", "bob")
	require.NoError(t, err)
	assert.Equal(t, "t3", latest.Token)
}

func TestCapabilityConsume(t *testing.T) {
	ctx := context.Background()
	repo := kvstore.NewCapabilityRepository(newStore(t))
	_, _, err := repo.IssueOrGet(ctx, &model.AccessCapability{
		Token: "t1", DocumentID: "d1", IdentityUUID: "bob", IssuedAt: base, ExpiresAt: base.Add(time.Minute),
	}, base)
	require.NoError(t, err)

	_, err = repo.Consume(ctx, "missing", base)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	_, err = repo.Consume(ctx, "t1", base.Add(time.Minute))
	assert.ErrorIs(t, err, ports.ErrExpired)

	consumed, err := repo.Consume(ctx, "t1", base.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, consumed.Consumed)
	require.NotNil(t, consumed.ConsumedAt)

	_, err = repo.Consume(ctx, "t1", base.Add(2*time.Second))
	assert.ErrorIs(t, err, ports.ErrConflict)
}

func TestCapabilityConsumeConcurrentlyOnlyOnce(t *testing.T) {
	ctx := context.Background()
	repo := kvstore.NewCapabilityRepository(newStore(t))
	_, _, err := repo.IssueOrGet(ctx, &model.AccessCapability{
		Token: "t1", DocumentID: "d1", IdentityUUID: "bob", IssuedAt: base, ExpiresAt: base.Add(time.Hour),
	}, base)
	require.NoError(t, err)

	var wins, conflicts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Consume(ctx, "t1", base.Add(time.Second)); err == nil {
				wins.Add(1)
			} else if assert.ErrorIs(t, err, ports.ErrConflict) {
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins.Load())
	assert.EqualValues(t, 31, conflicts.Load())
}

func TestJWTRepositoryMarkUsedOnce(t *testing.T) {
	ctx := context.Background()
	repo := kvstore.NewJWTRepository(newStore(t))
	require.NoError(t, repo.SaveRefreshToken(ctx, &model.RefreshToken{UUID: "r1", UserUUID: "bob", ExpireAt: base}))

	require.NoError(t, repo.MarkRefreshTokenUsedByUUID(ctx, "r1"))
	assert.ErrorIs(t, repo.MarkRefreshTokenUsedByUUID(ctx, "r1"), ports.ErrConflict)
	assert.ErrorIs(t, repo.MarkRefreshTokenUsedByUUID(ctx, "r2"), ports.ErrNotFound)

	token, err := repo.FindByUUID(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, token.Used)
	assert.NotNil(t, token.RevokedAt)
}

func TestJWTRepositoryConsumeChallengeOnce(t *testing.T) {
	ctx := context.Background()
	repo := kvstore.NewJWTRepository(newStore(t))

	require.NoError(t, repo.ConsumeChallenge(ctx, "n1", base.Add(time.Minute), base))
	assert.ErrorIs(t, repo.ConsumeChallenge(ctx, "n1", base.Add(time.Minute), base), ports.ErrConflict)
	require.NoError(t, repo.ConsumeChallenge(ctx, "n2", base.Add(time.Minute), base))

	// после истечения срока запись удаляется
	later := base.Add(time.Hour)
	require.NoError(t, repo.ConsumeChallenge(ctx, "n3", later.Add(time.Minute), later))
	assert.NoError(t, repo.ConsumeChallenge(ctx, "n1", later.Add(time.Minute), later))
}
