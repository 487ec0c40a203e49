// Package services holds the transport-neutral request logic shared by the
// HTTP server and the Lambda functions.
package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"clothing-api/application/ports"
	"clothing-api/domain/core/entities"
	"clothing-api/domain/core/validators"
	"clothing-api/domain/events"
	"clothing-api/pkg/errors"
	"clothing-api/pkg/observability"
)

// Client-facing messages.
const (
	MessageIDRequired = "id parameter is required"
	MessageNotFound   = "Clothing item not found"
	MessageNoData     = "No data to update"
)

// ClothingService validates requests, calls the repository and publishes
// domain events for successful mutations.
type ClothingService struct {
	repo      ports.ClothingRepository
	publisher ports.EventPublisher
	tracer    *observability.Tracer
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a ClothingService
type Option func(*ClothingService)

// WithClock overrides the clock used for event timestamps
func WithClock(now func() time.Time) Option {
	return func(s *ClothingService) { s.now = now }
}

// NewClothingService creates a new clothing service. publisher and tracer
// may be nil.
func NewClothingService(
	repo ports.ClothingRepository,
	publisher ports.EventPublisher,
	tracer *observability.Tracer,
	logger *zap.Logger,
	opts ...Option,
) *ClothingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ClothingService{
		repo:      repo,
		publisher: publisher,
		tracer:    tracer,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every stored item. The result is never nil.
func (s *ClothingService) List(ctx context.Context, limitPerPage int) ([]*entities.ClothingItem, error) {
	var items []*entities.ClothingItem
	err := s.tracer.TraceFunction(ctx, "ClothingService.List", func(ctx context.Context) error {
		var err error
		items, err = s.repo.FindAll(ctx, ports.FindAllOptions{LimitPerPage: limitPerPage})
		return err
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*entities.ClothingItem{}
	}
	return items, nil
}

// Get returns one item or a NotFound error
func (s *ClothingService) Get(ctx context.Context, id string) (*entities.ClothingItem, error) {
	if id == "" {
		return nil, errors.NewInvalidArgumentError(MessageIDRequired)
	}

	var item *entities.ClothingItem
	err := s.tracer.TraceFunction(ctx, "ClothingService.Get", func(ctx context.Context) error {
		s.tracer.AddAnnotation(ctx, "itemID", id)
		var err error
		item, err = s.existing(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Create validates a full payload and stores a new item
func (s *ClothingService) Create(ctx context.Context, payload entities.Payload) (*entities.ClothingItem, error) {
	if result := validators.ValidatePayload(payload, true); !result.Valid {
		return nil, errors.NewValidationError(result.Message)
	}

	var item *entities.ClothingItem
	err := s.tracer.TraceFunction(ctx, "ClothingService.Create", func(ctx context.Context) error {
		var err error
		item, err = s.repo.Create(ctx, payload)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Clothing item created", zap.String("itemID", item.ID))
	s.publish(ctx, events.NewClothingItemCreated(item, s.now()))
	return item, nil
}

// Update applies a partial payload to an existing item
func (s *ClothingService) Update(ctx context.Context, id string, payload entities.Payload) (*entities.ClothingItem, error) {
	if id == "" {
		return nil, errors.NewInvalidArgumentError(MessageIDRequired)
	}
	if !payload.HasAny(entities.UpdatableFields) {
		return nil, errors.NewValidationError(MessageNoData)
	}
	if result := validators.ValidatePayload(payload, false); !result.Valid {
		return nil, errors.NewValidationError(result.Message)
	}

	var item *entities.ClothingItem
	err := s.tracer.TraceFunction(ctx, "ClothingService.Update", func(ctx context.Context) error {
		s.tracer.AddAnnotation(ctx, "itemID", id)
		if _, err := s.existing(ctx, id); err != nil {
			return err
		}
		var err error
		item, err = s.repo.Update(ctx, id, payload)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Clothing item updated", zap.String("itemID", id))
	s.publish(ctx, events.NewClothingItemUpdated(item, s.now()))
	return item, nil
}

// Delete removes an item and returns its last known state
func (s *ClothingService) Delete(ctx context.Context, id string) (*entities.ClothingItem, error) {
	if id == "" {
		return nil, errors.NewInvalidArgumentError(MessageIDRequired)
	}

	var item *entities.ClothingItem
	err := s.tracer.TraceFunction(ctx, "ClothingService.Delete", func(ctx context.Context) error {
		s.tracer.AddAnnotation(ctx, "itemID", id)
		current, err := s.existing(ctx, id)
		if err != nil {
			return err
		}
		deleted, err := s.repo.Delete(ctx, id)
		if err != nil {
			return err
		}
		item = deleted
		if item == nil {
			item = current
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Clothing item deleted", zap.String("itemID", id))
	s.publish(ctx, events.NewClothingItemDeleted(item, s.now()))
	return item, nil
}

func (s *ClothingService) existing(ctx context.Context, id string) (*entities.ClothingItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.NewNotFoundError(MessageNotFound).WithDetails(map[string]interface{}{"itemID": id})
	}
	return item, nil
}

func (s *ClothingService) publish(ctx context.Context, event events.ClothingItemEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("eventType", event.GetEventType()),
			zap.String("itemID", event.GetAggregateID()),
			zap.Error(err),
		)
	}
}
