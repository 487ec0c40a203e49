package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	redismock "github.com/go-redis/redismock/v8"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clothing-api/application/ports/mocks"
	"clothing-api/domain/core/entities"
	"clothing-api/pkg/observability"
)

const ttl = time.Minute

func sampleItem() *entities.ClothingItem {
	return &entities.ClothingItem{ID: "abc", Name: "Scarf", CreatedAt: "t0", UpdatedAt: "t0"}
}

func encode(t *testing.T, item *entities.ClothingItem) []byte {
	t.Helper()
	data, err := json.Marshal(item)
	require.NoError(t, err)
	return data
}

func newDecorator(inner *mocks.ClothingRepository) (*CachingRepository, redismock.ClientMock, *observability.Collector) {
	db, redisMock := redismock.NewClientMock()
	collector := observability.NewCollector("test")
	return NewCachingRepository(inner, NewRedisCache(db), ttl, zap.NewNop(), collector), redisMock, collector
}

func TestRedisCache_GetSetDelete(t *testing.T) {
	db, redisMock := redismock.NewClientMock()
	c := NewRedisCache(db)
	ctx := context.Background()

	redisMock.ExpectSet("k", []byte("v"), ttl).SetVal("OK")
	require.NoError(t, c.Set(ctx, "k", []byte("v"), ttl))

	redisMock.ExpectGet("k").SetVal("v")
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	redisMock.ExpectGet("missing").RedisNil()
	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	redisMock.ExpectDel("k").SetErr(errors.New("del failed"))
	assert.EqualError(t, c.Delete(ctx, "k"), "del failed")

	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestRedisCache_FillRunsConditionalScript(t *testing.T) {
	db, redisMock := redismock.NewClientMock()
	c := NewRedisCache(db)
	keys := []string{"clothing:item:abc", "clothing:deleted:abc"}

	redisMock.ExpectEvalSha(fillScript.Hash(), keys, []byte("v"), ttl.Milliseconds()).SetVal(int64(0))
	stored, err := c.Fill(context.Background(), keys[0], keys[1], []byte("v"), ttl)
	require.NoError(t, err)
	assert.False(t, stored)

	redisMock.ExpectEvalSha(fillScript.Hash(), keys, []byte("v"), ttl.Milliseconds()).SetVal(int64(1))
	stored, err = c.Fill(context.Background(), keys[0], keys[1], []byte("v"), ttl)
	require.NoError(t, err)
	assert.True(t, stored)

	assert.NoError(t, redisMock.ExpectationsWereMet())
}

// memoryCache mirrors the Redis semantics of Cache, including Fill.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return data, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) Fill(_ context.Context, key, tombstone string, value []byte, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, deleted := c.entries[tombstone]; deleted {
		return false, nil
	}
	if _, exists := c.entries[key]; exists {
		return false, nil
	}
	c.entries[key] = value
	return true, nil
}

func TestFindByID_DeleteDuringReadIsNotCached(t *testing.T) {
	// Arrange: the store read returns the item, but a delete lands before
	// the cache is filled
	inner := new(mocks.ClothingRepository)
	repo := NewCachingRepository(inner, newMemoryCache(), ttl, zap.NewNop(), nil)
	item := &entities.ClothingItem{ID: "a", Name: "Shirt"}

	inner.On("Delete", mock.Anything, "a").Return(item, nil).Once()
	inner.On("FindByID", mock.Anything, "a").Return(item, nil).Once().Run(func(args mock.Arguments) {
		_, err := repo.Delete(context.Background(), "a")
		require.NoError(t, err)
	})
	inner.On("FindByID", mock.Anything, "a").Return(nil, nil).Once()

	// Act
	first, err := repo.FindByID(context.Background(), "a")
	require.NoError(t, err)
	second, err := repo.FindByID(context.Background(), "a")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, item, first)
	assert.Nil(t, second)
	inner.AssertExpectations(t)
}

func TestFindByID_FillDoesNotOverwriteWriteThrough(t *testing.T) {
	inner := new(mocks.ClothingRepository)
	repo := NewCachingRepository(inner, newMemoryCache(), ttl, zap.NewNop(), nil)
	stale := &entities.ClothingItem{ID: "a", Name: "Shirt"}
	fresh := &entities.ClothingItem{ID: "a", Name: "Jacket"}
	payload := entities.Payload{"name": "Jacket"}

	inner.On("Update", mock.Anything, "a", payload).Return(fresh, nil).Once()
	inner.On("FindByID", mock.Anything, "a").Return(stale, nil).Once().Run(func(args mock.Arguments) {
		_, err := repo.Update(context.Background(), "a", payload)
		require.NoError(t, err)
	})

	_, err := repo.FindByID(context.Background(), "a")
	require.NoError(t, err)
	cached, err := repo.FindByID(context.Background(), "a")

	require.NoError(t, err)
	assert.Equal(t, fresh, cached)
	inner.AssertExpectations(t)
}

func TestFindByID_HitSkipsStore(t *testing.T) {
	// Arrange
	inner := new(mocks.ClothingRepository)
	repo, redisMock, collector := newDecorator(inner)
	item := sampleItem()
	redisMock.ExpectGet("clothing:item:abc").SetVal(string(encode(t, item)))

	// Act
	found, err := repo.FindByID(context.Background(), "abc")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, item, found)
	inner.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	assert.NoError(t, redisMock.ExpectationsWereMet())
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.CacheHits))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.CacheMisses))
}

func TestFindByID_MissReadsThrough(t *testing.T) {
	inner := new(mocks.ClothingRepository)
	repo, redisMock, collector := newDecorator(inner)
	item := sampleItem()

	redisMock.ExpectGet("clothing:item:abc").RedisNil()
	inner.On("FindByID", mock.Anything, "abc").Return(item, nil).Once()
	redisMock.ExpectEvalSha(fillScript.Hash(), []string{"clothing:item:abc", "clothing:deleted:abc"}, encode(t, item), ttl.Milliseconds()).
		SetVal(int64(1))

	found, err := repo.FindByID(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, item, found)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.CacheMisses))
	inner.AssertExpectations(t)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestFindByID_CacheFailureFallsBackToStore(t *testing.T) {
	inner := new(mocks.ClothingRepository)
	repo, redisMock, _ := newDecorator(inner)

	redisMock.ExpectGet("clothing:item:ghost").SetErr(errors.New("connection refused"))
	inner.On("FindByID", mock.Anything, "ghost").Return(nil, nil).Once()

	found, err := repo.FindByID(context.Background(), "ghost")

	require.NoError(t, err)
	assert.Nil(t, found)
	inner.AssertExpectations(t)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestCreate_WriteFailureDoesNotFailRequest(t *testing.T) {
	inner := new(mocks.ClothingRepository)
	repo, redisMock, _ := newDecorator(inner)
	item := sampleItem()
	payload := entities.Payload{"name": "Scarf"}

	inner.On("Create", mock.Anything, payload).Return(item, nil).Once()
	redisMock.ExpectSet("clothing:item:abc", encode(t, item), ttl).SetErr(errors.New("OOM"))

	created, err := repo.Create(context.Background(), payload)

	require.NoError(t, err)
	assert.Equal(t, item, created)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestUpdate_WritesThrough(t *testing.T) {
	inner := new(mocks.ClothingRepository)
	repo, redisMock, _ := newDecorator(inner)
	item := sampleItem()
	payload := entities.Payload{"name": "Scarf"}

	inner.On("Update", mock.Anything, "abc", payload).Return(item, nil).Once()
	redisMock.ExpectSet("clothing:item:abc", encode(t, item), ttl).SetVal("OK")

	updated, err := repo.Update(context.Background(), "abc", payload)

	require.NoError(t, err)
	assert.Equal(t, item, updated)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestDelete_Invalidates(t *testing.T) {
	inner := new(mocks.ClothingRepository)
	repo, redisMock, _ := newDecorator(inner)
	item := sampleItem()

	inner.On("Delete", mock.Anything, "abc").Return(item, nil).Once()
	redisMock.ExpectSet("clothing:deleted:abc", []byte("1"), ttl).SetVal("OK")
	redisMock.ExpectDel("clothing:item:abc").SetVal(1)

	deleted, err := repo.Delete(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, item, deleted)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}
