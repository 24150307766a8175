package ports

import (
	"context"

	"github.com/stackpeak/account-system/internal/core/domain"
)

// CreateUserInput carries the fields needed to provision a user inside an
// existing tenant. Password is optional; a default is applied when blank.
type CreateUserInput struct {
	UserName string
	Email    string
	TenantID string
	Role     string
	Password string
}

// UserService implements user provisioning, reads, and the termination
// workflow.
type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	ListUsersByTenant(ctx context.Context, tenantID string) ([]domain.User, error)

	// UpdateUserName renames an active user inside tenantID.
	UpdateUserName(ctx context.Context, id, tenantID, userName string) (*domain.User, error)

	// Terminate atomically deactivates the target user on behalf of actor,
	// subject to the self-termination, tenant-isolation, idempotency, and
	// last-admin invariants.
	Terminate(ctx context.Context, targetUserID string, actor domain.AuthenticatedIdentity) error
}

// TenantService implements tenant provisioning and reads.
type TenantService interface {
	// CreateTenant provisions a tenant and bootstraps its first admin user.
	CreateTenant(ctx context.Context, name, tenantDomain string) (*domain.Tenant, *domain.User, error)
	GetTenantByID(ctx context.Context, id string) (*domain.Tenant, error)
	GetTenantByDomain(ctx context.Context, tenantDomain string) (*domain.Tenant, error)
	ListTenants(ctx context.Context) ([]domain.Tenant, error)
}
