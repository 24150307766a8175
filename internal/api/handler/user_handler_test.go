package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/stackpeak/account-system/internal/core/domain"
)

var adminIdentity = domain.AuthenticatedIdentity{UserID: "u1", TenantID: "t1", Role: domain.RoleAdmin}

func TestUserHandler_Create_DerivesEmailFromTenantDomain(t *testing.T) {
	userSvc := &stubUserService{user: &domain.User{ID: "u2", Email: "alice@acme.test", TenantID: "t1"}}
	tenantSvc := &stubTenantService{tenant: &domain.Tenant{ID: "t1", Domain: "acme.test"}}
	h := NewUserHandler(userSvc, tenantSvc)

	c, rec := testContext(http.MethodPost, "/users", `{"user_name":"alice","alias":"alice","role":"USER"}`)
	withIdentity(c, adminIdentity)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if userSvc.gotInput.Email != "alice@acme.test" {
		t.Fatalf("derived email = %q, want alice@acme.test", userSvc.gotInput.Email)
	}
	if userSvc.gotInput.TenantID != "t1" {
		t.Fatalf("tenant = %q, want caller's tenant t1", userSvc.gotInput.TenantID)
	}
}

func TestUserHandler_Create_MissingIdentity(t *testing.T) {
	h := NewUserHandler(&stubUserService{}, &stubTenantService{})

	c, _ := testContext(http.MethodPost, "/users", `{"user_name":"alice","alias":"alice"}`)
	if err := h.Create(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestUserHandler_Create_ValidationFailure(t *testing.T) {
	userSvc := &stubUserService{}
	h := NewUserHandler(userSvc, &stubTenantService{tenant: &domain.Tenant{ID: "t1", Domain: "acme.test"}})

	cases := []struct {
		name string
		body string
		want string
	}{
		{"short alias", `{"user_name":"alice","alias":"al"}`, "alias must be at least 4 characters"},
		{"short password", `{"user_name":"alice","alias":"alice","password":"short"}`, "password must be at least 8 characters"},
		{"bad role", `{"user_name":"alice","alias":"alice","role":"ROOT"}`, "role must be one of"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := testContext(http.MethodPost, "/users", tc.body)
			withIdentity(c, adminIdentity)
			err := h.Create(c)

			var httpErr *echo.HTTPError
			if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %v", err)
			}
			if msg, _ := httpErr.Message.(string); !strings.Contains(msg, tc.want) {
				t.Fatalf("message %q does not mention %q", msg, tc.want)
			}
		})
	}
	if userSvc.gotInput.UserName != "" {
		t.Fatalf("service must not be called on invalid input")
	}
}

func TestUserHandler_Get_SameTenant(t *testing.T) {
	userSvc := &stubUserService{user: &domain.User{ID: "u2", TenantID: "t1", Email: "bob@acme.test"}}
	h := NewUserHandler(userSvc, &stubTenantService{})

	c, rec := testContext(http.MethodGet, "/users/u2", "")
	c.SetParamNames("id")
	c.SetParamValues("u2")
	withIdentity(c, adminIdentity)

	if err := h.Get(c); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if userSvc.gotID != "u2" {
		t.Fatalf("looked up %q, want u2", userSvc.gotID)
	}
}

func TestUserHandler_Get_CrossTenantHidden(t *testing.T) {
	userSvc := &stubUserService{user: &domain.User{ID: "u9", TenantID: "t2"}}
	h := NewUserHandler(userSvc, &stubTenantService{})

	c, _ := testContext(http.MethodGet, "/users/u9", "")
	c.SetParamNames("id")
	c.SetParamValues("u9")
	withIdentity(c, adminIdentity)

	err := h.Get(c)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("cross-tenant user must read as not found, got %v", err)
	}
}

func TestUserHandler_Update_Renames(t *testing.T) {
	userSvc := &stubUserService{user: &domain.User{ID: "u2", TenantID: "t1", UserName: "renamed"}}
	h := NewUserHandler(userSvc, &stubTenantService{})

	c, rec := testContext(http.MethodPatch, "/users/u2", `{"user_name":"renamed"}`)
	c.SetParamNames("id")
	c.SetParamValues("u2")
	withIdentity(c, adminIdentity)

	if err := h.Update(c); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if userSvc.gotID != "u2" || userSvc.gotName != "renamed" {
		t.Fatalf("service called with id %q name %q", userSvc.gotID, userSvc.gotName)
	}
}

func TestUserHandler_Update_ValidationFailure(t *testing.T) {
	h := NewUserHandler(&stubUserService{}, &stubTenantService{})

	c, _ := testContext(http.MethodPatch, "/users/u2", `{"user_name":"ab"}`)
	c.SetParamNames("id")
	c.SetParamValues("u2")
	withIdentity(c, adminIdentity)

	err := h.Update(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestUserHandler_List_ScopedToCallerTenant(t *testing.T) {
	userSvc := &stubUserService{users: []domain.User{{ID: "u1", TenantID: "t1"}, {ID: "u2", TenantID: "t1"}}}
	h := NewUserHandler(userSvc, &stubTenantService{})

	c, rec := testContext(http.MethodGet, "/users", "")
	withIdentity(c, adminIdentity)

	if err := h.List(c); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if userSvc.gotID != "t1" {
		t.Fatalf("listed tenant %q, want caller's tenant t1", userSvc.gotID)
	}

	var body map[string][]domain.User
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body["users"]) != 2 {
		t.Fatalf("expected 2 users, got %d", len(body["users"]))
	}
}

func TestUserHandler_Terminate_Success(t *testing.T) {
	userSvc := &stubUserService{}
	h := NewUserHandler(userSvc, &stubTenantService{})

	c, rec := testContext(http.MethodPost, "/users/u2/terminate", "")
	c.SetParamNames("id")
	c.SetParamValues("u2")
	withIdentity(c, adminIdentity)

	if err := h.Terminate(c); err != nil {
		t.Fatalf("Terminate returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if userSvc.gotID != "u2" || userSvc.gotActor != adminIdentity {
		t.Fatalf("service called with target %q actor %+v", userSvc.gotID, userSvc.gotActor)
	}
}

func TestUserHandler_Terminate_ErrorPropagates(t *testing.T) {
	userSvc := &stubUserService{err: domain.Forbidden("cannot terminate last active admin")}
	h := NewUserHandler(userSvc, &stubTenantService{})

	c, _ := testContext(http.MethodPost, "/users/u2/terminate", "")
	c.SetParamNames("id")
	c.SetParamValues("u2")
	withIdentity(c, adminIdentity)

	if err := h.Terminate(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden to propagate, got %v", err)
	}
}

func TestTerminationResult(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{domain.Forbidden("self termination not allowed"), "forbidden"},
		{domain.Conflict("user already terminated"), "conflict"},
		{domain.NotFoundError("user not found"), "not_found"},
		{errors.New("mongo: connection reset"), "error"},
	}
	for _, tc := range cases {
		if got := terminationResult(tc.err); got != tc.want {
			t.Errorf("terminationResult(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
