// Package mocks holds testify doubles for the application ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clothing-api/application/ports"
	"clothing-api/domain/core/entities"
	"clothing-api/domain/events"
)

// ClothingRepository is a testify mock of ports.ClothingRepository
type ClothingRepository struct {
	mock.Mock
}

var _ ports.ClothingRepository = (*ClothingRepository)(nil)

func item(args mock.Arguments) *entities.ClothingItem {
	if v := args.Get(0); v != nil {
		return v.(*entities.ClothingItem)
	}
	return nil
}

func (m *ClothingRepository) Create(ctx context.Context, data entities.Payload) (*entities.ClothingItem, error) {
	args := m.Called(ctx, data)
	return item(args), args.Error(1)
}

func (m *ClothingRepository) FindAll(ctx context.Context, opts ports.FindAllOptions) ([]*entities.ClothingItem, error) {
	args := m.Called(ctx, opts)
	if v := args.Get(0); v != nil {
		return v.([]*entities.ClothingItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ClothingRepository) FindByID(ctx context.Context, id string) (*entities.ClothingItem, error) {
	args := m.Called(ctx, id)
	return item(args), args.Error(1)
}

func (m *ClothingRepository) Update(ctx context.Context, id string, data entities.Payload) (*entities.ClothingItem, error) {
	args := m.Called(ctx, id, data)
	return item(args), args.Error(1)
}

func (m *ClothingRepository) Delete(ctx context.Context, id string) (*entities.ClothingItem, error) {
	args := m.Called(ctx, id)
	return item(args), args.Error(1)
}

// EventPublisher is a testify mock of ports.EventPublisher
type EventPublisher struct {
	mock.Mock
}

var _ ports.EventPublisher = (*EventPublisher)(nil)

func (m *EventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
