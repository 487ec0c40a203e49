package abstractions

import (
	"errors"

	"clothing-api/domain/core/entities"
	apperrors "clothing-api/pkg/errors"
)

// MessageNoValidFields is returned when an update carries nothing storable.
const MessageNoValidFields = "No valid fields for update"

// MessageNotFound is returned when a mutation targets a missing item.
const MessageNotFound = "Clothing item not found"

// Error codes attached to repository errors. They are logged, never sent.
const (
	CodeNoValidFields   = "NO_VALID_FIELDS"
	CodeInvalidPrice    = "INVALID_PRICE"
	CodeInvalidWishlist = "INVALID_WISHLIST"
	CodeInvalidField    = "INVALID_FIELD"
	CodeMissingID       = "MISSING_ID"
	CodeItemNotFound    = "ITEM_NOT_FOUND"
)

// InvalidInput maps a Sanitize or BuildUpdatePlan failure to the
// INVALID_ARGUMENT error every backend returns.
func InvalidInput(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, ErrNoFields):
		return apperrors.NewInvalidArgumentError(MessageNoValidFields).WithCode(CodeNoValidFields)
	case errors.Is(err, entities.ErrInvalidPrice):
		return apperrors.NewInvalidArgumentError("Invalid price value").WithCode(CodeInvalidPrice).WithCause(err)
	case errors.Is(err, entities.ErrInvalidWishlist):
		return apperrors.NewInvalidArgumentError("wishlist must be a boolean").WithCode(CodeInvalidWishlist).WithCause(err)
	default:
		return apperrors.NewInvalidArgumentError(err.Error()).WithCode(CodeInvalidField).WithCause(err)
	}
}

// MissingID is returned by mutations called without an id.
func MissingID() *apperrors.AppError {
	return apperrors.NewInvalidArgumentError("id is required").WithCode(CodeMissingID)
}

// NotFound is returned when a conditional update finds no item.
func NotFound(id string) *apperrors.AppError {
	return apperrors.NewNotFoundError(MessageNotFound).
		WithCode(CodeItemNotFound).
		WithDetails(map[string]interface{}{"itemID": id})
}
