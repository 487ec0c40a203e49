package lambda

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"clothing-api/pkg/common"
)

// DefaultHandlerName is used when neither HANDLER_NAME nor the function name
// is set.
const DefaultHandlerName = "get"

// Resolve returns the handler registered for name. Names are matched
// case-insensitively against the operation aliases.
func (f *Functions) Resolve(name string) (Handler, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "create", "createclothing", "addclothing":
		return f.Create, true
	case "list", "getall", "getallclothing":
		return f.List, true
	case "get", "getitem", "getclothing":
		return f.Get, true
	case "update", "updateclothing":
		return f.Update, true
	case "delete", "remove", "deleteclothing":
		return f.Delete, true
	case "options":
		return f.Options, true
	}
	return nil, false
}

// Dispatch builds the entry point for a deployment whose function is chosen
// by name. OPTIONS requests always get the preflight response.
func (f *Functions) Dispatch(name string) Handler {
	if strings.TrimSpace(name) == "" {
		name = DefaultHandlerName
	}
	which := strings.ToLower(strings.TrimSpace(name))
	handler, ok := f.Resolve(which)

	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		if isPreflight(req) {
			return f.Options(ctx, req)
		}
		if !ok {
			message := fmt.Sprintf("Unknown handler %s", which)
			f.logger.Error(message, zap.String("requestID", req.RequestContext.RequestID))
			return f.respond(http.StatusInternalServerError, common.Failure(message)), nil
		}
		return handler(ctx, req)
	}
}
