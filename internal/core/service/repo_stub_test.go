package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stackpeak/account-system/internal/core/domain"
)

// memoryUserRepo is a map-backed UserRepository. Transactions are
// serialized by a dedicated mutex so the count-then-write sequence inside
// the termination workflow is consistent, mirroring the store's isolation
// contract.
type memoryUserRepo struct {
	txMu  sync.Mutex
	mu    sync.Mutex
	users map[string]*domain.User
	seq   int
	reads int32
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.TerminationDetails != nil {
		details := *u.TerminationDetails
		clone.TerminationDetails = &details
	}
	return &clone
}

func (r *memoryUserRepo) seed(u *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		r.seq++
		u.ID = fmt.Sprintf("u%d", r.seq)
	}
	r.users[u.ID] = cloneUser(u)
	return cloneUser(u)
}

func (r *memoryUserRepo) storeReads() int32 {
	return atomic.LoadInt32(&r.reads)
}

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, domain.Conflict("user email already exists")
		}
	}
	r.seq++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("u%d", r.seq)
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.NotFoundError("user not found")
}

func (r *memoryUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	atomic.AddInt32(&r.reads, 1)
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NotFoundError("user not found")
	}
	return cloneUser(u), nil
}

func (r *memoryUserRepo) ListByTenant(_ context.Context, tenantID string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []domain.User
	for _, u := range r.users {
		if u.TenantID == tenantID {
			users = append(users, *cloneUser(u))
		}
	}
	return users, nil
}

func (r *memoryUserRepo) UpdateUserName(_ context.Context, userID, tenantID, userName string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || u.TenantID != tenantID || u.IsTerminated {
		return false, nil
	}
	u.UserName = userName
	return true, nil
}

func (r *memoryUserRepo) CountActiveAdmins(_ context.Context, tenantID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.TenantID == tenantID && u.ActiveAdmin() {
			n++
		}
	}
	return n, nil
}

func (r *memoryUserRepo) Terminate(_ context.Context, userID, tenantID, approvedBy string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || u.TenantID != tenantID || u.IsTerminated {
		return false, nil
	}
	u.IsTerminated = true
	u.TerminationDetails = &domain.TerminationDetails{ApprovedBy: approvedBy, TerminationDate: at}
	return true, nil
}

func (r *memoryUserRepo) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(ctx)
}

// memoryTenantRepo is a map-backed TenantRepository.
type memoryTenantRepo struct {
	mu      sync.Mutex
	tenants map[string]*domain.Tenant
	seq     int
}

func newMemoryTenantRepo() *memoryTenantRepo {
	return &memoryTenantRepo{tenants: make(map[string]*domain.Tenant)}
}

func (r *memoryTenantRepo) Create(_ context.Context, tenant *domain.Tenant) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tenants {
		if existing.Domain == tenant.Domain {
			return nil, domain.Conflict("tenant domain already exists")
		}
	}
	r.seq++
	created := *tenant
	created.ID = fmt.Sprintf("t%d", r.seq)
	created.CreatedAt = time.Now().UTC()
	r.tenants[created.ID] = &created
	clone := created
	return &clone, nil
}

func (r *memoryTenantRepo) FindByID(_ context.Context, id string) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[id]
	if !ok {
		return nil, domain.NotFoundError("tenant not found")
	}
	clone := *t
	return &clone, nil
}

func (r *memoryTenantRepo) FindByDomain(_ context.Context, tenantDomain string) (*domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tenants {
		if t.Domain == tenantDomain {
			clone := *t
			return &clone, nil
		}
	}
	return nil, domain.NotFoundError("tenant not found")
}

func (r *memoryTenantRepo) List(_ context.Context) ([]domain.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var tenants []domain.Tenant
	for _, t := range r.tenants {
		tenants = append(tenants, *t)
	}
	return tenants, nil
}

// stubLimiter is a LoginLimiter that records calls and can be primed to
// throttle.
type stubLimiter struct {
	mu       sync.Mutex
	failures map[string]int
	blocked  map[string]bool
	resets   int
}

func newStubLimiter() *stubLimiter {
	return &stubLimiter{failures: make(map[string]int), blocked: make(map[string]bool)}
}

func (l *stubLimiter) TooManyAttempts(_ context.Context, email string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.blocked[email], nil
}

func (l *stubLimiter) RecordFailure(_ context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[email]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.failures, email)
	l.resets++
	return nil
}

func (l *stubLimiter) failureCount(email string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failures[email]
}
