package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidID is returned when an identifier is not a valid UUID.
	ErrInvalidID = errors.New("invalid id")
	// ErrEmailRequired is returned when a user record has no email.
	ErrEmailRequired = errors.New("email is required")
	// ErrInvalidRole is returned for a role outside the known set.
	ErrInvalidRole = errors.New("invalid user role")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrParcelNotFound is returned when a parcel is not found.
	ErrParcelNotFound = errors.New("parcel not found")
	// ErrInvalidStatus is returned for a status outside the known set.
	ErrInvalidStatus = errors.New("invalid parcel status")
	// ErrInvalidTransition is returned when a status change is not allowed.
	ErrInvalidTransition = errors.New("status transition not allowed")
	// ErrInvalidCoordinates is returned when latitude or longitude is out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrInvalidPrice is returned when price is negative.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrInvalidWeight is returned when parcel weight is negative.
	ErrInvalidWeight = errors.New("invalid parcel weight")
	// ErrUnknownField is returned when a patch names a field parcels do not have.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnknownOwner is returned when owner validation is on and the email has no account.
	ErrUnknownOwner = errors.New("parcel owner has no account")
	// ErrNotDeliveryMan is returned when assigning a parcel to a user without the delivery role.
	ErrNotDeliveryMan = errors.New("user is not a delivery man")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

var domainErrors = []struct {
	err    error
	status int
	code   string
}{
	{ErrInvalidID, http.StatusBadRequest, "INVALID_ID"},
	{ErrEmailRequired, http.StatusBadRequest, "EMAIL_REQUIRED"},
	{ErrInvalidRole, http.StatusBadRequest, "INVALID_ROLE"},
	{ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{ErrInvalidCoordinates, http.StatusBadRequest, "INVALID_COORDINATES"},
	{ErrInvalidPrice, http.StatusBadRequest, "INVALID_PRICE"},
	{ErrInvalidWeight, http.StatusBadRequest, "INVALID_WEIGHT"},
	{ErrUnknownField, http.StatusBadRequest, "UNKNOWN_FIELD"},
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrParcelNotFound, http.StatusNotFound, "PARCEL_NOT_FOUND"},
	{ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
	{ErrUnknownOwner, http.StatusUnprocessableEntity, "UNKNOWN_OWNER"},
	{ErrNotDeliveryMan, http.StatusUnprocessableEntity, "NOT_DELIVERY_MAN"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors keep their wrapper's message.
func MapErrorToHTTP(err error) *HTTPError {
	for _, d := range domainErrors {
		if errors.Is(err, d.err) {
			return NewHTTPError(d.status, err.Error(), d.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}

// Is forwards to the standard library so callers need only one errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
