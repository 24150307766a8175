package domain

// AuthenticatedIdentity is the request-scoped identity decoded from a
// verified token. It is never persisted; its role claim is trusted only for
// cheap pre-checks — authoritative decisions re-read the store.
type AuthenticatedIdentity struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
}
