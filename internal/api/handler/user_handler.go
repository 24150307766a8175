package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stackpeak/account-system/internal/api/metrics"
	"github.com/stackpeak/account-system/internal/core/domain"
	"github.com/stackpeak/account-system/internal/core/ports"
)

type UserHandler struct {
	userService   ports.UserService
	tenantService ports.TenantService
}

func NewUserHandler(userService ports.UserService, tenantService ports.TenantService) *UserHandler {
	return &UserHandler{userService: userService, tenantService: tenantService}
}

type createUserRequest struct {
	UserName string `json:"user_name" validate:"required,min=4"`
	Alias    string `json:"alias" validate:"required,min=4"`
	Password string `json:"password" validate:"omitempty,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=ADMIN USER"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

// Create provisions a user in the caller's tenant. The email is derived
// from the alias and the tenant's domain, so users cannot be injected into
// foreign tenants.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tenant, err := h.tenantService.GetTenantByID(c.Request().Context(), identity.TenantID)
	if err != nil {
		return err
	}

	user, err := h.userService.CreateUser(c.Request().Context(), ports.CreateUserInput{
		UserName: req.UserName,
		Email:    fmt.Sprintf("%s@%s", req.Alias, tenant.Domain),
		TenantID: tenant.ID,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, userResponse{User: user})
}

// Get returns a single user in the caller's tenant.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.userService.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if user.TenantID != identity.TenantID {
		// Do not reveal that the user exists in another tenant.
		return domain.NotFoundError("user not found")
	}

	return c.JSON(http.StatusOK, userResponse{User: user})
}

type updateUserRequest struct {
	UserName string `json:"user_name" validate:"required,min=4"`
}

// Update renames a user in the caller's tenant.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Updated fields"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /users/{id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.UpdateUserName(c.Request().Context(), c.Param("id"), identity.TenantID, req.UserName)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userResponse{User: user})
}

// List returns every user in the caller's tenant.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {object}  map[string][]domain.User
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	users, err := h.userService.ListUsersByTenant(c.Request().Context(), identity.TenantID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string][]domain.User{"users": users})
}

// Terminate deactivates a user on behalf of the authenticated admin.
//
// @Summary      Terminate a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /users/{id}/terminate [post]
func (h *UserHandler) Terminate(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	targetID := c.Param("id")
	if err := h.userService.Terminate(c.Request().Context(), targetID, identity); err != nil {
		metrics.TerminationsTotal.WithLabelValues(terminationResult(err)).Inc()
		return err
	}

	metrics.TerminationsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, map[string]string{"message": "user terminated"})
}

func terminationResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
