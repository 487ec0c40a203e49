package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"go.uber.org/zap"

	"clothing-api/infrastructure/config"
	"clothing-api/infrastructure/di"
	"clothing-api/interfaces/http/rest"
)

var (
	// chiLambda wraps the Chi router for AWS Lambda integration
	chiLambda *chiadapter.ChiLambdaV2

	// container holds the dependency injection container
	container *di.Container

	// coldStart tracks whether this is a cold start invocation
	coldStart = true

	// coldStartTime records when the cold start began
	coldStartTime time.Time
)

// init runs during cold start
func init() {
	coldStartTime = time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// The container lives as long as the execution environment, so its
	// cleanup is never run.
	container, _, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	router := rest.NewRouter(
		cfg,
		container.Service,
		container.ErrorHandler,
		container.Metrics,
		container.Tracer,
		container.Logger,
	)
	chiLambda = chiadapter.NewV2(router.Setup())

	container.Logger.Info("Lambda cold start completed",
		zap.Duration("duration", time.Since(coldStartTime)),
	)
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	resp, err := chiLambda.ProxyWithContextV2(ctx, req)

	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		coldStart = false
	} else {
		resp.Headers["X-Cold-Start"] = "false"
	}
	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Lambda-Request-ID"] = req.RequestContext.RequestID
	}

	container.Logger.Debug("Lambda response",
		zap.String("method", req.RequestContext.HTTP.Method),
		zap.String("path", req.RequestContext.HTTP.Path),
		zap.String("requestID", req.RequestContext.RequestID),
		zap.Int("status", resp.StatusCode),
	)

	return resp, err
}

func main() {
	lambda.Start(Handler)
}
