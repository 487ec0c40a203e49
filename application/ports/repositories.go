package ports

import (
	"context"

	"clothing-api/domain/core/entities"
	"clothing-api/domain/events"
)

// DefaultPageSize is the scan page size used when FindAllOptions leaves it unset.
const DefaultPageSize = 100

// FindAllOptions controls how FindAll walks the store.
type FindAllOptions struct {
	// LimitPerPage is the store page size. Values <= 0 mean DefaultPageSize.
	LimitPerPage int
}

// PageSize returns the effective page size.
func (o FindAllOptions) PageSize() int {
	if o.LimitPerPage <= 0 {
		return DefaultPageSize
	}
	return o.LimitPerPage
}

// ClothingRepository defines the interface for clothing item persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type ClothingRepository interface {
	// Create sanitizes the payload, assigns an id and timestamps, and persists the item
	Create(ctx context.Context, data entities.Payload) (*entities.ClothingItem, error)

	// FindAll returns every item, walking the store page by page
	FindAll(ctx context.Context, opts FindAllOptions) ([]*entities.ClothingItem, error)

	// FindByID returns nil, nil when the item does not exist
	FindByID(ctx context.Context, id string) (*entities.ClothingItem, error)

	// Update applies whitelisted fields and returns the full stored item
	Update(ctx context.Context, id string, data entities.Payload) (*entities.ClothingItem, error)

	// Delete returns the prior state, or nil when nothing was stored
	Delete(ctx context.Context, id string) (*entities.ClothingItem, error)
}

// EventPublisher publishes domain events to an event bus
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
}
