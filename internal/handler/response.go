package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"parcelbook/internal/errors"
	"parcelbook/internal/model"
)

// MutationResult acknowledges a write. Counts follow the shape the web client already reads.
type MutationResult struct {
	Acknowledged  bool       `json:"acknowledged"`
	MatchedCount  int64      `json:"matchedCount"`
	ModifiedCount int64      `json:"modifiedCount"`
	UpsertedID    *uuid.UUID `json:"upsertedId"`
	DeletedCount  int64      `json:"deletedCount"`
}

// RegisterResponse reports whether a registration created a new user.
type RegisterResponse struct {
	Message string    `json:"message"`
	Created bool      `json:"created"`
	ID      uuid.UUID `json:"id"`
}

// mapError converts a service error into an echo HTTP error carrying an ErrorResponse.
func mapError(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

func badRequest(message, code string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{Error: message, Code: code})
}

// parseID reads a uuid path parameter.
func parseID(c echo.Context, name string) (uuid.UUID, error) {
	return uuidFrom(c.Param(name))
}

func uuidFrom(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, mapError(fmt.Errorf("%w: %q", errors.ErrInvalidID, raw))
	}
	return id, nil
}

// bindFields decodes a partial parcel document. In strict mode keys that are not parcel
// fields are rejected.
func bindFields(c echo.Context, strict bool) (model.ParcelFields, error) {
	var fields model.ParcelFields
	dec := json.NewDecoder(c.Request().Body)
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&fields); err != nil {
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			return fields, mapError(fmt.Errorf("%w: %s", errors.ErrUnknownField, strings.TrimPrefix(err.Error(), "json: unknown field ")))
		}
		return fields, badRequest("invalid request body", "INVALID_REQUEST")
	}
	return fields, nil
}
