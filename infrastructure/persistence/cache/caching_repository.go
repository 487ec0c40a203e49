package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"clothing-api/application/ports"
	"clothing-api/domain/core/entities"
	"clothing-api/pkg/observability"
)

// KeyPrefix is prepended to the item id to build cache keys.
const KeyPrefix = "clothing:item:"

// TombstonePrefix marks ids deleted within the last TTL. A read-through
// fill never recreates an entry while its tombstone is present.
const TombstonePrefix = "clothing:deleted:"

var tombstoneValue = []byte("1")

// DefaultTTL applies when the configured TTL is not positive.
const DefaultTTL = 5 * time.Minute

// CachingRepository decorates a ClothingRepository with a read-through
// cache for FindByID. Creates and updates write through, deletes
// invalidate and leave a tombstone. Cache failures are logged and never
// reach the caller.
type CachingRepository struct {
	inner   ports.ClothingRepository
	cache   Cache
	ttl     time.Duration
	logger  *zap.Logger
	metrics *observability.Collector
}

// NewCachingRepository creates the decorator. metrics may be nil.
func NewCachingRepository(inner ports.ClothingRepository, cache Cache, ttl time.Duration, logger *zap.Logger, metrics *observability.Collector) *CachingRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingRepository{
		inner:   inner,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
	}
}

var _ ports.ClothingRepository = (*CachingRepository)(nil)

func key(id string) string {
	return KeyPrefix + id
}

func tombstone(id string) string {
	return TombstonePrefix + id
}

// Create stores the item and primes the cache
func (r *CachingRepository) Create(ctx context.Context, data entities.Payload) (*entities.ClothingItem, error) {
	item, err := r.inner.Create(ctx, data)
	if err != nil {
		return nil, err
	}
	r.store(ctx, item)
	return item, nil
}

// FindAll always reads the store
func (r *CachingRepository) FindAll(ctx context.Context, opts ports.FindAllOptions) ([]*entities.ClothingItem, error) {
	return r.inner.FindAll(ctx, opts)
}

// FindByID serves from the cache when possible. Missing items are not cached.
func (r *CachingRepository) FindByID(ctx context.Context, id string) (*entities.ClothingItem, error) {
	if id == "" {
		return r.inner.FindByID(ctx, id)
	}

	data, err := r.cache.Get(ctx, key(id))
	switch {
	case err == nil:
		var item entities.ClothingItem
		if jsonErr := json.Unmarshal(data, &item); jsonErr == nil {
			r.metrics.CacheHit()
			return &item, nil
		}
		r.logger.Warn("Discarding undecodable cache entry", zap.String("itemID", id))
	case errors.Is(err, ErrCacheMiss):
	default:
		r.logger.Warn("Cache read failed", zap.String("itemID", id), zap.Error(err))
	}
	r.metrics.CacheMiss()

	item, err := r.inner.FindByID(ctx, id)
	if err != nil || item == nil {
		return item, err
	}
	r.fill(ctx, item)
	return item, nil
}

// Update writes through to the cache
func (r *CachingRepository) Update(ctx context.Context, id string, data entities.Payload) (*entities.ClothingItem, error) {
	item, err := r.inner.Update(ctx, id, data)
	if err != nil {
		// the store may have changed before failing
		r.invalidate(ctx, id)
		return nil, err
	}
	r.store(ctx, item)
	return item, nil
}

// Delete invalidates the cached entry. The tombstone is written before the
// entry is removed so a read that started earlier cannot fill it again.
func (r *CachingRepository) Delete(ctx context.Context, id string) (*entities.ClothingItem, error) {
	item, err := r.inner.Delete(ctx, id)
	if id != "" {
		if setErr := r.cache.Set(ctx, tombstone(id), tombstoneValue, r.ttl); setErr != nil {
			r.logger.Warn("Cache tombstone write failed", zap.String("itemID", id), zap.Error(setErr))
		}
		r.invalidate(ctx, id)
	}
	return item, err
}

func (r *CachingRepository) store(ctx context.Context, item *entities.ClothingItem) {
	data, err := json.Marshal(item)
	if err != nil {
		r.logger.Warn("Cache encode failed", zap.String("itemID", item.ID), zap.Error(err))
		return
	}
	if err := r.cache.Set(ctx, key(item.ID), data, r.ttl); err != nil {
		r.logger.Warn("Cache write failed", zap.String("itemID", item.ID), zap.Error(err))
	}
}

// fill caches a store read unless a write or delete got there first.
func (r *CachingRepository) fill(ctx context.Context, item *entities.ClothingItem) {
	data, err := json.Marshal(item)
	if err != nil {
		r.logger.Warn("Cache encode failed", zap.String("itemID", item.ID), zap.Error(err))
		return
	}
	stored, err := r.cache.Fill(ctx, key(item.ID), tombstone(item.ID), data, r.ttl)
	if err != nil {
		r.logger.Warn("Cache write failed", zap.String("itemID", item.ID), zap.Error(err))
		return
	}
	if !stored {
		r.logger.Debug("Skipped stale cache fill", zap.String("itemID", item.ID))
	}
}

func (r *CachingRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, key(id)); err != nil {
		r.logger.Warn("Cache invalidation failed", zap.String("itemID", id), zap.Error(err))
	}
}
