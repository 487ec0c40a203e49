package errors

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"clothing-api/pkg/common"
)

// MessageInternal is the only detail a client sees for a 5xx response.
const MessageInternal = "Internal Server Error"

// ErrorHandler maps errors to response envelopes and logs each one once
type ErrorHandler struct {
	logger        *zap.Logger
	debug         bool
	defaultStatus int
}

// NewErrorHandler creates a new error handler. In debug mode 5xx envelopes
// carry the captured stack trace.
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorHandler{
		logger:        logger,
		debug:         debug,
		defaultStatus: http.StatusInternalServerError,
	}
}

// Resolve turns an error into a status and envelope and logs it. Transports
// that do not write to an http.ResponseWriter use it directly.
func (h *ErrorHandler) Resolve(err error, fields ...zap.Field) (int, common.Envelope) {
	appErr := GetAppError(err)
	if appErr == nil {
		appErr = NewInternalError("unhandled error").WithCause(err)
	}

	status := appErr.HTTPStatus
	if status == 0 {
		status = h.defaultStatus
	}

	h.logError(appErr, status, fields)

	if status < http.StatusInternalServerError {
		return status, common.Failure(appErr.Message)
	}

	envelope := common.Failure(MessageInternal)
	if h.debug {
		envelope.Stack = appErr.StackTrace
	}
	return status, envelope
}

// Handle processes an error and sends an HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	status, envelope := h.Resolve(err,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("requestID", common.ExtractRequestID(r)),
	)
	common.RespondJSON(w, status, envelope)
}

// logError logs an application error with appropriate level
func (h *ErrorHandler) logError(err *AppError, status int, fields []zap.Field) {
	fields = append(fields,
		zap.String("errorType", string(err.Type)),
		zap.Int("status", status),
	)

	if err.Code != "" {
		fields = append(fields, zap.String("errorCode", err.Code))
	}

	if err.Cause != nil {
		fields = append(fields, zap.Error(err.Cause))
	}

	if err.Details != nil {
		fields = append(fields, zap.Any("details", err.Details))
	}

	switch {
	case status >= 500:
		h.logger.Error(err.Message, fields...)
	case status >= 400:
		h.logger.Warn(err.Message, fields...)
	default:
		h.logger.Info(err.Message, fields...)
	}
}

// Middleware returns an HTTP middleware that turns panics into the generic
// 500 envelope
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.Handle(w, r, NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
