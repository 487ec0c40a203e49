// Package di wires the application with google/wire.
package di

import (
	"go.uber.org/zap"

	"clothing-api/application/ports"
	"clothing-api/application/services"
	"clothing-api/infrastructure/config"
	"clothing-api/pkg/errors"
	"clothing-api/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Repository   ports.ClothingRepository
	Publisher    ports.EventPublisher
	Service      *services.ClothingService
	Metrics      *observability.Collector
	Tracer       *observability.Tracer
	ErrorHandler *errors.ErrorHandler
}
