package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stackpeak/account-system/internal/core/domain"
	"github.com/stackpeak/account-system/internal/core/ports"
)

// TenantService implements tenant provisioning and reads.
type TenantService struct {
	tenants ports.TenantRepository
	users   ports.UserService
	log     zerolog.Logger
}

func NewTenantService(tenants ports.TenantRepository, users ports.UserService, log zerolog.Logger) *TenantService {
	return &TenantService{tenants: tenants, users: users, log: log}
}

// CreateTenant provisions a tenant and bootstraps its first admin user at
// admin@<domain>. A tenant without an active admin would be unmanageable:
// the termination workflow's last-admin guard assumes every tenant starts
// with at least one.
func (s *TenantService) CreateTenant(ctx context.Context, name, tenantDomain string) (*domain.Tenant, *domain.User, error) {
	if name == "" || tenantDomain == "" {
		return nil, nil, domain.Conflict("tenant name and domain are required")
	}

	tenant, err := s.tenants.Create(ctx, &domain.Tenant{Name: name, Domain: tenantDomain})
	if err != nil {
		return nil, nil, err
	}

	admin, err := s.users.CreateUser(ctx, ports.CreateUserInput{
		UserName: "admin",
		Email:    fmt.Sprintf("admin@%s", tenantDomain),
		TenantID: tenant.ID,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		s.log.Error().Err(err).Str("tenant_id", tenant.ID).Msg("bootstrap admin creation failed")
		return nil, nil, err
	}

	s.log.Info().Str("tenant_id", tenant.ID).Str("domain", tenantDomain).Msg("tenant created")
	return tenant, admin, nil
}

func (s *TenantService) GetTenantByID(ctx context.Context, id string) (*domain.Tenant, error) {
	return s.tenants.FindByID(ctx, id)
}

func (s *TenantService) GetTenantByDomain(ctx context.Context, tenantDomain string) (*domain.Tenant, error) {
	return s.tenants.FindByDomain(ctx, tenantDomain)
}

func (s *TenantService) ListTenants(ctx context.Context) ([]domain.Tenant, error) {
	return s.tenants.List(ctx)
}
