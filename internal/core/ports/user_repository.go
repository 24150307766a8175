package ports

import (
	"context"
	"time"

	"github.com/stackpeak/account-system/internal/core/domain"
)

// UserRepository is the credential store's user surface. Methods invoked
// with a context produced by InTransaction participate in that transaction.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	ListByTenant(ctx context.Context, tenantID string) ([]domain.User, error)

	// UpdateUserName renames the user, guarded by tenant ownership and a
	// not-terminated predicate evaluated at write time. It reports false
	// when the predicate rejected the write.
	UpdateUserName(ctx context.Context, userID, tenantID, userName string) (bool, error)

	// CountActiveAdmins counts non-terminated ADMIN users in the tenant.
	CountActiveAdmins(ctx context.Context, tenantID string) (int64, error)

	// Terminate deactivates the user, guarded by tenant ownership and a
	// not-already-terminated predicate evaluated at write time. It reports
	// false when the predicate rejected the write.
	Terminate(ctx context.Context, userID, tenantID, approvedBy string, at time.Time) (bool, error)

	// InTransaction runs fn inside one atomic unit. Any error returned by fn
	// aborts the transaction before any mutation is visible; the isolation
	// level makes a count-then-write sequence within fn consistent.
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TenantRepository is the credential store's tenant surface.
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) (*domain.Tenant, error)
	FindByID(ctx context.Context, id string) (*domain.Tenant, error)
	FindByDomain(ctx context.Context, tenantDomain string) (*domain.Tenant, error)
	List(ctx context.Context) ([]domain.Tenant, error)
}
