package domain

import "github.com/google/uuid"

// User is the external identity supplied by the auth backend. Read-only
// from this system's perspective.
type User struct {
	ID    uuid.UUID
	Email string
}
