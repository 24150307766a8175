package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stackpeak/account-system/internal/api/metrics"
	"github.com/stackpeak/account-system/internal/core/domain"
	"github.com/stackpeak/account-system/internal/core/ports"
)

type TenantHandler struct {
	tenantService ports.TenantService
}

func NewTenantHandler(tenantService ports.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

type createTenantRequest struct {
	Name   string `json:"name" validate:"required"`
	Domain string `json:"domain" validate:"required,fqdn"`
}

type createTenantResponse struct {
	Tenant *domain.Tenant `json:"tenant"`
	Admin  *domain.User   `json:"admin"`
}

// Create provisions a tenant and its bootstrap admin user.
//
// @Summary      Create a tenant
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        body  body      createTenantRequest  true  "Tenant details"
// @Success      201   {object}  createTenantResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /tenants [post]
func (h *TenantHandler) Create(c echo.Context) error {
	var req createTenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tenant, admin, err := h.tenantService.CreateTenant(c.Request().Context(), req.Name, req.Domain)
	if err != nil {
		return err
	}

	metrics.TenantsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, createTenantResponse{Tenant: tenant, Admin: admin})
}

// List returns all tenants.
//
// @Summary      List tenants
// @Tags         tenants
// @Produce      json
// @Success      200  {object}  map[string][]domain.Tenant
// @Router       /tenants [get]
func (h *TenantHandler) List(c echo.Context) error {
	tenants, err := h.tenantService.ListTenants(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string][]domain.Tenant{"tenants": tenants})
}
