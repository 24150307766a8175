package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/stackpeak/account-system/internal/core/domain"
	"github.com/stackpeak/account-system/internal/core/ports"
)

// defaultPassword is assigned when user creation omits a password. The
// account owner is expected to change it on first login.
const defaultPassword = "password"

// UserService implements user provisioning, reads, and the termination
// workflow.
type UserService struct {
	users   ports.UserRepository
	tenants ports.TenantRepository
	hasher  ports.PasswordHasher
	log     zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	tenants ports.TenantRepository,
	hasher ports.PasswordHasher,
	log zerolog.Logger,
) *UserService {
	return &UserService{users: users, tenants: tenants, hasher: hasher, log: log}
}

// CreateUser provisions a user inside an existing tenant. The email must be
// globally unique and the tenant must exist.
func (s *UserService) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	if input.UserName == "" || input.Email == "" || input.TenantID == "" {
		return nil, domain.Conflict("user name, email, and tenant are required")
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, domain.Conflict("unknown role")
	}

	if _, err := s.tenants.FindByID(ctx, input.TenantID); err != nil {
		return nil, err
	}

	password := input.Password
	if password == "" {
		password = defaultPassword
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, domain.Internal("hash password", err)
	}

	user := &domain.User{
		UserName:     input.UserName,
		Email:        input.Email,
		PasswordHash: hash,
		TenantID:     input.TenantID,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("tenant_id", created.TenantID).Str("role", created.Role).Msg("user created")
	return created, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) ListUsersByTenant(ctx context.Context, tenantID string) ([]domain.User, error) {
	return s.users.ListByTenant(ctx, tenantID)
}

// UpdateUserName renames an active user inside tenantID. The write carries
// the tenant and not-terminated predicates, so a rejected write is
// disambiguated afterwards.
func (s *UserService) UpdateUserName(ctx context.Context, id, tenantID, userName string) (*domain.User, error) {
	if userName == "" {
		return nil, domain.Conflict("user name is required")
	}

	applied, err := s.users.UpdateUserName(ctx, id, tenantID, userName)
	if err != nil {
		return nil, err
	}
	if !applied {
		existing, err := s.users.FindByID(ctx, id)
		if err != nil || existing.TenantID != tenantID {
			return nil, domain.NotFoundError("user not found")
		}
		return nil, domain.Conflict("user is terminated")
	}

	return s.users.FindByID(ctx, id)
}

// Terminate atomically deactivates the target user. Cheap policy checks run
// before the transaction opens; everything that reads store state runs
// inside one transaction so no partial state is ever observable.
func (s *UserService) Terminate(ctx context.Context, targetUserID string, actor domain.AuthenticatedIdentity) error {
	if actor.Role != domain.RoleAdmin {
		return domain.Forbidden("only admins can terminate users")
	}
	if actor.UserID == targetUserID {
		return domain.Forbidden("self termination not allowed")
	}

	now := time.Now().UTC()

	err := s.users.InTransaction(ctx, func(txCtx context.Context) error {
		target, err := s.users.FindByID(txCtx, targetUserID)
		if err != nil {
			return err
		}

		if target.TenantID != actor.TenantID {
			return domain.Forbidden("cross-tenant termination")
		}
		if target.IsTerminated {
			return domain.Conflict("user already terminated")
		}

		// Re-verify the actor against the store inside the transaction: a
		// concurrent demotion or termination between the pre-check and the
		// commit must abort the workflow.
		current, err := s.users.FindByID(txCtx, actor.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Forbidden("acting user no longer exists")
			}
			return err
		}
		if !current.ActiveAdmin() {
			return domain.Forbidden("acting user is no longer an active admin")
		}

		if target.Role == domain.RoleAdmin {
			admins, err := s.users.CountActiveAdmins(txCtx, actor.TenantID)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return domain.Forbidden("cannot terminate last active admin")
			}
		}

		// The write re-checks not-already-terminated, closing the race
		// window between the snapshot read above and the mutation.
		applied, err := s.users.Terminate(txCtx, targetUserID, actor.TenantID, actor.UserID, now)
		if err != nil {
			return err
		}
		if !applied {
			return domain.Conflict("user already terminated")
		}
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).
			Str("target_user_id", targetUserID).
			Str("actor_user_id", actor.UserID).
			Msg("termination rejected")
		return err
	}

	s.log.Info().
		Str("target_user_id", targetUserID).
		Str("actor_user_id", actor.UserID).
		Str("tenant_id", actor.TenantID).
		Msg("user terminated")
	return nil
}
