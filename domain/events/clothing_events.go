package events

import (
	"time"

	"clothing-api/domain/core/entities"
)

// Event detail types published for clothing item mutations.
const (
	TypeClothingItemCreated = "ClothingItemCreated"
	TypeClothingItemUpdated = "ClothingItemUpdated"
	TypeClothingItemDeleted = "ClothingItemDeleted"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregateId"`
	EventType   string    `json:"eventType"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// ClothingItemEvent carries the item state after (or, for deletes, before)
// the mutation.
type ClothingItemEvent struct {
	BaseEvent
	Item *entities.ClothingItem `json:"item"`
}

func newClothingItemEvent(eventType string, item *entities.ClothingItem, timestamp time.Time) ClothingItemEvent {
	return ClothingItemEvent{
		BaseEvent: BaseEvent{
			AggregateID: item.ID,
			EventType:   eventType,
			Timestamp:   timestamp.UTC(),
			Version:     1,
		},
		Item: item,
	}
}

// NewClothingItemCreated creates a ClothingItemCreated event
func NewClothingItemCreated(item *entities.ClothingItem, timestamp time.Time) ClothingItemEvent {
	return newClothingItemEvent(TypeClothingItemCreated, item, timestamp)
}

// NewClothingItemUpdated creates a ClothingItemUpdated event
func NewClothingItemUpdated(item *entities.ClothingItem, timestamp time.Time) ClothingItemEvent {
	return newClothingItemEvent(TypeClothingItemUpdated, item, timestamp)
}

// NewClothingItemDeleted creates a ClothingItemDeleted event
func NewClothingItemDeleted(item *entities.ClothingItem, timestamp time.Time) ClothingItemEvent {
	return newClothingItemEvent(TypeClothingItemDeleted, item, timestamp)
}
