package domain

import "time"

// Tenant is an isolated organizational namespace owning a set of users.
// Immutable after creation; the domain is globally unique.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
}
