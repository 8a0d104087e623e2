package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"parcelbook/internal/errors"
	"parcelbook/internal/model"
	"parcelbook/internal/service"
)

// ParcelHandler handles parcel ledger endpoints.
type ParcelHandler struct {
	parcelService service.ParcelService
}

// NewParcelHandler creates a new parcel handler.
func NewParcelHandler(parcelService service.ParcelService) *ParcelHandler {
	return &ParcelHandler{parcelService: parcelService}
}

// BookResponse acknowledges a booking.
type BookResponse struct {
	Acknowledged bool          `json:"acknowledged"`
	InsertedID   string        `json:"insertedId"`
	Parcel       *model.Parcel `json:"parcel"`
}

// AssignRequest names the delivery man for a parcel.
type AssignRequest struct {
	DeliveryManID string `json:"deliveryManId" validate:"required,uuid"`
}

// Book godoc
// @Summary Book a parcel
// @Description Status defaults to Pending and date to the current time.
// @Tags parcels
// @Accept json
// @Produce json
// @Param parcel body model.Parcel true "Parcel booking"
// @Success 201 {object} BookResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /parcel-book [post]
func (h *ParcelHandler) Book(c echo.Context) error {
	var parcel model.Parcel
	if err := c.Bind(&parcel); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}

	booked, err := h.parcelService.Book(c.Request().Context(), &parcel)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, BookResponse{
		Acknowledged: true,
		InsertedID:   booked.ID.String(),
		Parcel:       booked,
	})
}

// ListByOwner godoc
// @Summary List parcels booked by an email
// @Tags parcels
// @Produce json
// @Param email path string true "Owner email"
// @Success 200 {array} model.Parcel
// @Router /my-parcel-book/{email} [get]
// @Router /parcels/by-owner/{email} [get]
func (h *ParcelHandler) ListByOwner(c echo.Context) error {
	parcels, err := h.parcelService.FindByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, parcels)
}

// GetByID godoc
// @Summary Get a parcel by id
// @Tags parcels
// @Produce json
// @Param id path string true "Parcel ID"
// @Success 200 {object} model.Parcel
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /parcels/{id} [get]
func (h *ParcelHandler) GetByID(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	parcel, err := h.parcelService.FindByID(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	if parcel == nil {
		return mapError(errors.ErrParcelNotFound)
	}
	return c.JSON(http.StatusOK, parcel)
}

// Replace godoc
// @Summary Replace the booking fields of a parcel
// @Description Writes the booking fields present in the body, creating the parcel under the id if absent.
// @Description The owner email and delivery assignment are never changed here.
// @Tags parcels
// @Accept json
// @Produce json
// @Param id path string true "Parcel ID"
// @Param fields body model.ParcelFields true "Booking fields"
// @Success 200 {object} MutationResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /my-parcel-book/{id} [put]
func (h *ParcelHandler) Replace(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	fields, err := bindFields(c, false)
	if err != nil {
		return err
	}
	result, err := h.parcelService.ReplaceFields(c.Request().Context(), id, fields)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toMutationResult(result))
}

// Patch godoc
// @Summary Update some fields of a parcel
// @Description Status changes must follow Pending, Approved, In-Transit, Delivered; Cancelled only from Pending or Approved.
// @Tags parcels
// @Accept json
// @Produce json
// @Param id path string true "Parcel ID"
// @Param fields body model.ParcelFields true "Fields to change"
// @Success 200 {object} MutationResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /my-parcel-book/{id} [patch]
func (h *ParcelHandler) Patch(c echo.Context) error {
	return h.patch(c, false)
}

// Manage godoc
// @Summary Admin update of a parcel
// @Description Like patch, but creates the parcel under the id when it does not exist.
// @Tags parcels
// @Accept json
// @Produce json
// @Param id path string true "Parcel ID"
// @Param fields body model.ParcelFields true "Fields to change"
// @Success 200 {object} MutationResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /manage-parcel/{id} [put]
func (h *ParcelHandler) Manage(c echo.Context) error {
	return h.patch(c, true)
}

func (h *ParcelHandler) patch(c echo.Context, upsert bool) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	fields, err := bindFields(c, true)
	if err != nil {
		return err
	}
	result, err := h.parcelService.Patch(c.Request().Context(), id, fields, upsert)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toMutationResult(result))
}

// Assign godoc
// @Summary Assign a delivery man
// @Description A Pending parcel becomes Approved.
// @Tags parcels
// @Accept json
// @Produce json
// @Param id path string true "Parcel ID"
// @Param request body AssignRequest true "Delivery man"
// @Success 200 {object} model.Parcel
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /parcels/{id}/assign [patch]
func (h *ParcelHandler) Assign(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req AssignRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error(), "VALIDATION_ERROR")
	}
	manID, err := uuidFrom(req.DeliveryManID)
	if err != nil {
		return err
	}

	parcel, err := h.parcelService.AssignDeliveryMan(c.Request().Context(), id, manID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, parcel)
}

// Delete godoc
// @Summary Delete a parcel
// @Description Any status may be deleted. Deleting a missing parcel reports deletedCount 0.
// @Tags parcels
// @Produce json
// @Param id path string true "Parcel ID"
// @Success 200 {object} MutationResult
// @Failure 400 {object} errors.ErrorResponse
// @Router /parcel/{id} [delete]
func (h *ParcelHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	n, err := h.parcelService.Delete(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MutationResult{Acknowledged: true, DeletedCount: n})
}

// ListAll godoc
// @Summary List parcels
// @Tags parcels
// @Produce json
// @Param status query string false "Only parcels in this status"
// @Success 200 {array} model.Parcel
// @Failure 400 {object} errors.ErrorResponse
// @Router /all-parcels [get]
func (h *ParcelHandler) ListAll(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		parcels []model.Parcel
		err     error
	)
	if status := c.QueryParam("status"); status != "" {
		parcels, err = h.parcelService.ListByStatus(ctx, model.ParcelStatus(status))
	} else {
		parcels, err = h.parcelService.ListAll(ctx)
	}
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, parcels)
}

// History godoc
// @Summary Status history of a parcel
// @Tags parcels
// @Produce json
// @Param id path string true "Parcel ID"
// @Success 200 {array} model.ParcelStatusEvent
// @Failure 400 {object} errors.ErrorResponse
// @Router /parcels/{id}/history [get]
func (h *ParcelHandler) History(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	events, err := h.parcelService.History(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, events)
}

func toMutationResult(r *service.UpdateResult) MutationResult {
	return MutationResult{
		Acknowledged:  true,
		MatchedCount:  r.Matched,
		ModifiedCount: r.Modified,
		UpsertedID:    r.UpsertedID,
	}
}
