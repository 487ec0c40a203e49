// Command functions runs one clothing operation per Lambda deployment. The
// operation is chosen by HANDLER_NAME, falling back to the function name.
package main

import (
	"context"
	"log"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"clothing-api/infrastructure/config"
	"clothing-api/infrastructure/di"
	"clothing-api/interfaces/lambda"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, cleanup, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()

	functions := lambda.NewFunctions(container.Service, container.ErrorHandler, container.Logger, cfg.CORSOrigin)

	container.Logger.Info("Starting function", zap.String("handler", cfg.HandlerName))
	awslambda.Start(functions.Dispatch(cfg.HandlerName))
}
