package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"parcelbook/internal/model"
	"parcelbook/internal/service"
)

// UserHandler handles account registry endpoints.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// RegisterRequest is the body of a registration.
type RegisterRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	Name     string     `json:"name"`
	ImgURL   string     `json:"imgUrl"`
	Phone    string     `json:"phone"`
	UserRole model.Role `json:"userRole"`
}

// ProfileRequest carries the self-editable profile fields.
type ProfileRequest struct {
	Name   string `json:"name"`
	ImgURL string `json:"imgUrl"`
	Phone  string `json:"phone"`
}

// RoleRequest carries a new role.
type RoleRequest struct {
	Role model.Role `json:"role"`
}

// Register godoc
// @Summary Register a user
// @Description Registering an email that already exists returns the existing id with created=false.
// @Tags users
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "User payload"
// @Success 200 {object} RegisterResponse
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error(), "VALIDATION_ERROR")
	}

	user, created, err := h.svc.Register(c.Request().Context(), &model.User{
		Email:    req.Email,
		Name:     req.Name,
		ImgURL:   req.ImgURL,
		Phone:    req.Phone,
		UserRole: req.UserRole,
	})
	if err != nil {
		return mapError(err)
	}
	if !created {
		return c.JSON(http.StatusOK, RegisterResponse{Message: "User Already Exists", Created: false, ID: user.ID})
	}
	return c.JSON(http.StatusCreated, RegisterResponse{Message: "user registered", Created: true, ID: user.ID})
}

// GetByEmail godoc
// @Summary Get user by email
// @Description Returns null when no user has the email.
// @Tags users
// @Produce json
// @Param email path string true "User email"
// @Success 200 {object} model.User
// @Router /user/{email} [get]
func (h *UserHandler) GetByEmail(c echo.Context) error {
	user, err := h.svc.FindByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update or create a profile
// @Tags users
// @Accept json
// @Produce json
// @Param email path string true "User email"
// @Param profile body ProfileRequest true "Profile fields"
// @Success 200 {object} MutationResult
// @Failure 400 {object} errors.ErrorResponse
// @Router /user/{email} [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	user, created, err := h.svc.UpdateProfile(c.Request().Context(), c.Param("email"), service.ProfileUpdate{
		Name:   req.Name,
		ImgURL: req.ImgURL,
		Phone:  req.Phone,
	})
	if err != nil {
		return mapError(err)
	}
	result := MutationResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}
	if created {
		result = MutationResult{Acknowledged: true, UpsertedID: &user.ID}
	}
	return c.JSON(http.StatusOK, result)
}

// UpdateRole godoc
// @Summary Change a user's role
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param role body RoleRequest true "New role"
// @Success 200 {object} MutationResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user-role/{id} [patch]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req RoleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body", "INVALID_REQUEST")
	}
	if _, err := h.svc.UpdateRole(c.Request().Context(), id, req.Role); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MutationResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1})
}

// Delete godoc
// @Summary Delete a user by email
// @Tags users
// @Produce json
// @Param email path string true "User email"
// @Success 200 {object} MutationResult
// @Router /user/{email} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	n, err := h.svc.Delete(c.Request().Context(), c.Param("email"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MutationResult{Acknowledged: true, DeletedCount: n})
}

// ListAll godoc
// @Summary List users
// @Tags users
// @Produce json
// @Param role query string false "Only users with this role"
// @Success 200 {array} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Router /all-users [get]
func (h *UserHandler) ListAll(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		users []model.User
		err   error
	)
	if c.QueryParams().Has("role") {
		users, err = h.svc.ListByRole(ctx, model.Role(c.QueryParam("role")))
	} else {
		users, err = h.svc.ListAll(ctx)
	}
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// ListDeliveryMen godoc
// @Summary List delivery men
// @Tags users
// @Produce json
// @Success 200 {array} model.User
// @Router /allDeliveryMan [get]
func (h *UserHandler) ListDeliveryMen(c echo.Context) error {
	users, err := h.svc.ListByRole(c.Request().Context(), model.RoleDeliveryMan)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, users)
}
