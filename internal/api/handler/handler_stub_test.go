package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stackpeak/account-system/internal/api/middleware"
	"github.com/stackpeak/account-system/internal/core/domain"
	"github.com/stackpeak/account-system/internal/core/ports"
)

// testContext builds an echo context with the request validator installed,
// matching how the router configures the server.
func testContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withIdentity(c echo.Context, identity domain.AuthenticatedIdentity) {
	c.Set(middleware.IdentityKey, identity)
}

type stubAuthService struct {
	token    string
	err      error
	gotEmail string
	gotPass  string
}

func (s *stubAuthService) Login(_ context.Context, email, password string) (string, error) {
	s.gotEmail = email
	s.gotPass = password
	return s.token, s.err
}

func (s *stubAuthService) Authorize(context.Context, domain.AuthenticatedIdentity, string) error {
	return nil
}

type stubUserService struct {
	user     *domain.User
	users    []domain.User
	err      error
	gotInput ports.CreateUserInput
	gotID    string
	gotName  string
	gotActor domain.AuthenticatedIdentity
}

func (s *stubUserService) CreateUser(_ context.Context, input ports.CreateUserInput) (*domain.User, error) {
	s.gotInput = input
	return s.user, s.err
}

func (s *stubUserService) GetUser(_ context.Context, id string) (*domain.User, error) {
	s.gotID = id
	return s.user, s.err
}

func (s *stubUserService) ListUsersByTenant(_ context.Context, tenantID string) ([]domain.User, error) {
	s.gotID = tenantID
	return s.users, s.err
}

func (s *stubUserService) UpdateUserName(_ context.Context, id, tenantID, userName string) (*domain.User, error) {
	s.gotID = id
	s.gotName = userName
	return s.user, s.err
}

func (s *stubUserService) Terminate(_ context.Context, targetUserID string, actor domain.AuthenticatedIdentity) error {
	s.gotID = targetUserID
	s.gotActor = actor
	return s.err
}

type stubTenantService struct {
	tenant *domain.Tenant
	admin  *domain.User
	list   []domain.Tenant
	err    error
}

func (s *stubTenantService) CreateTenant(_ context.Context, name, tenantDomain string) (*domain.Tenant, *domain.User, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.tenant, s.admin, nil
}

func (s *stubTenantService) GetTenantByID(context.Context, string) (*domain.Tenant, error) {
	return s.tenant, s.err
}

func (s *stubTenantService) GetTenantByDomain(context.Context, string) (*domain.Tenant, error) {
	return s.tenant, s.err
}

func (s *stubTenantService) ListTenants(context.Context) ([]domain.Tenant, error) {
	return s.list, s.err
}
