// Package lambda exposes each clothing operation as an individual API
// Gateway Lambda function.
package lambda

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"clothing-api/application/services"
	"clothing-api/domain/core/entities"
	"clothing-api/pkg/common"
	"clothing-api/pkg/errors"
)

// MessagePreflight is the body of every OPTIONS response.
const MessagePreflight = "CORS preflight successful"

// Service is the request logic behind the functions
type Service interface {
	List(ctx context.Context, limitPerPage int) ([]*entities.ClothingItem, error)
	Get(ctx context.Context, id string) (*entities.ClothingItem, error)
	Create(ctx context.Context, payload entities.Payload) (*entities.ClothingItem, error)
	Update(ctx context.Context, id string, payload entities.Payload) (*entities.ClothingItem, error)
	Delete(ctx context.Context, id string) (*entities.ClothingItem, error)
}

// Handler is the signature of an API Gateway proxy function
type Handler func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Functions holds one handler per clothing operation
type Functions struct {
	service      Service
	errorHandler *errors.ErrorHandler
	logger       *zap.Logger
	headers      map[string]string
}

// NewFunctions creates the function set. corsOrigin defaults to "*".
func NewFunctions(service Service, errorHandler *errors.ErrorHandler, logger *zap.Logger, corsOrigin string) *Functions {
	if logger == nil {
		logger = zap.NewNop()
	}
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	return &Functions{
		service:      service,
		errorHandler: errorHandler,
		logger:       logger,
		headers: map[string]string{
			"Content-Type":                  "application/json",
			"Access-Control-Allow-Origin":   corsOrigin,
			"Access-Control-Allow-Methods":  "GET, POST, PUT, DELETE, PATCH, OPTIONS",
			"Access-Control-Allow-Headers":  "Content-Type, Accept, X-Requested-With, Authorization, x-api-key",
			"Access-Control-Expose-Headers": "Content-Length, X-Request-Id",
		},
	}
}

// Create handles POST /clothing
func (f *Functions) Create(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	payload, err := decodeBody(req.Body)
	if err != nil {
		return f.failure(req, errors.NewInvalidArgumentError(invalidJSON).WithCause(err)), nil
	}

	item, err := f.service.Create(ctx, payload)
	if err != nil {
		return f.failure(req, err), nil
	}
	return f.respond(http.StatusCreated, common.Success(item, "Clothing item created successfully")), nil
}

// List handles GET /clothing
func (f *Functions) List(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	limit, err := common.ParseLimitPerPage(req.QueryStringParameters["limitPerPage"])
	if err != nil {
		return f.failure(req, errors.NewInvalidArgumentError(err.Error())), nil
	}

	items, err := f.service.List(ctx, limit)
	if err != nil {
		return f.failure(req, err), nil
	}
	return f.respond(http.StatusOK, common.List(items, len(items))), nil
}

// Get handles GET /clothing/{id}. The id may also come from the query string.
func (f *Functions) Get(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := req.PathParameters["id"]
	if id == "" {
		id = req.QueryStringParameters["id"]
	}

	item, err := f.service.Get(ctx, id)
	if err != nil {
		return f.failure(req, err), nil
	}
	return f.respond(http.StatusOK, common.Success(item, "")), nil
}

// Update handles PUT /clothing/{id}
func (f *Functions) Update(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := req.PathParameters["id"]
	if id == "" {
		return f.failure(req, errors.NewInvalidArgumentError(services.MessageIDRequired)), nil
	}

	payload, err := decodeBody(req.Body)
	if err != nil {
		return f.failure(req, errors.NewInvalidArgumentError(invalidJSON).WithCause(err)), nil
	}

	item, err := f.service.Update(ctx, id, payload)
	if err != nil {
		return f.failure(req, err), nil
	}
	return f.respond(http.StatusOK, common.Success(item, "Clothing item updated successfully")), nil
}

// Delete handles DELETE /clothing/{id}
func (f *Functions) Delete(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	item, err := f.service.Delete(ctx, req.PathParameters["id"])
	if err != nil {
		return f.failure(req, err), nil
	}
	return f.respond(http.StatusOK, common.Success(item, "Clothing item deleted successfully")), nil
}

// Options answers CORS preflight requests
func (f *Functions) Options(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return f.respond(http.StatusOK, map[string]string{"message": MessagePreflight}), nil
}

const invalidJSON = "Invalid JSON body"

func decodeBody(body string) (entities.Payload, error) {
	object, err := common.DecodeJSONObject([]byte(body))
	if err != nil {
		return nil, err
	}
	return entities.Payload(object), nil
}

func (f *Functions) failure(req events.APIGatewayProxyRequest, err error) events.APIGatewayProxyResponse {
	status, envelope := f.errorHandler.Resolve(err,
		zap.String("method", req.HTTPMethod),
		zap.String("path", req.Path),
		zap.String("requestID", req.RequestContext.RequestID),
	)
	return f.respond(status, envelope)
}

func (f *Functions) respond(status int, body interface{}) events.APIGatewayProxyResponse {
	headers := make(map[string]string, len(f.headers))
	for k, v := range f.headers {
		headers[k] = v
	}

	data, err := json.Marshal(body)
	if err != nil {
		f.logger.Error("Failed to encode response", zap.Error(err))
		status = http.StatusInternalServerError
		data = []byte(`{"success":false,"error":"` + errors.MessageInternal + `"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(data),
	}
}

// isPreflight reports whether the request is an OPTIONS request
func isPreflight(req events.APIGatewayProxyRequest) bool {
	return strings.EqualFold(req.HTTPMethod, http.MethodOptions)
}
