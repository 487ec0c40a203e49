// Package decorators wraps ClothingRepository implementations with
// cross-cutting behaviour.
package decorators

import (
	"context"
	"time"

	"clothing-api/application/ports"
	"clothing-api/domain/core/entities"
	"clothing-api/pkg/observability"
)

// Operation labels recorded for each repository method.
const (
	OpCreate   = "create"
	OpFindAll  = "find_all"
	OpFindByID = "find_by_id"
	OpUpdate   = "update"
	OpDelete   = "delete"
)

// MetricsRepository counts and times every call to the wrapped repository.
type MetricsRepository struct {
	inner     ports.ClothingRepository
	collector *observability.Collector
	now       func() time.Time
}

var _ ports.ClothingRepository = (*MetricsRepository)(nil)

// NewMetricsRepository wraps inner. A nil collector records nothing.
func NewMetricsRepository(inner ports.ClothingRepository, collector *observability.Collector) *MetricsRepository {
	return &MetricsRepository{inner: inner, collector: collector, now: time.Now}
}

func (r *MetricsRepository) observe(op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.collector.ObserveStore(op, status, r.now().Sub(start))
}

func (r *MetricsRepository) Create(ctx context.Context, data entities.Payload) (*entities.ClothingItem, error) {
	start := r.now()
	item, err := r.inner.Create(ctx, data)
	r.observe(OpCreate, start, err)
	return item, err
}

func (r *MetricsRepository) FindAll(ctx context.Context, opts ports.FindAllOptions) ([]*entities.ClothingItem, error) {
	start := r.now()
	items, err := r.inner.FindAll(ctx, opts)
	r.observe(OpFindAll, start, err)
	return items, err
}

func (r *MetricsRepository) FindByID(ctx context.Context, id string) (*entities.ClothingItem, error) {
	start := r.now()
	item, err := r.inner.FindByID(ctx, id)
	r.observe(OpFindByID, start, err)
	return item, err
}

func (r *MetricsRepository) Update(ctx context.Context, id string, data entities.Payload) (*entities.ClothingItem, error) {
	start := r.now()
	item, err := r.inner.Update(ctx, id, data)
	r.observe(OpUpdate, start, err)
	return item, err
}

func (r *MetricsRepository) Delete(ctx context.Context, id string) (*entities.ClothingItem, error) {
	start := r.now()
	item, err := r.inner.Delete(ctx, id)
	r.observe(OpDelete, start, err)
	return item, err
}
