package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// --- Shared value types ---

// SessionStatus is what the gateway reports for one instance token.
type SessionStatus struct {
	Connected bool
	Phone     *string
}

// StatusResult is the outcome of a status check for one affiliate.
type StatusResult struct {
	HasInstance bool
	Connected   bool
	Phone       *string
	Instance    *Instance
	// CheckError carries a user-facing message when the gateway check failed.
	// The failure is surfaced as "not connected", never as a hard error.
	CheckError string
}

// ClaimResult is the outcome of an instance claim.
type ClaimResult struct {
	Instance         *Instance
	AlreadyAllocated bool
	PoolExhausted    bool
	Message          string
}

// ConnectResult carries the base64-encoded pairing QR image.
type ConnectResult struct {
	QRCode  string
	Message string
}

// Diagnostics is a read-only snapshot of the pool from one affiliate's view.
type Diagnostics struct {
	User           User
	Current        *Instance
	AvailableCount int
	FirstAvailable *Instance
	History        []AllocationHistoryEntry
}

// --- Interfaces ---

// InstanceRepository abstracts instance persistence.
type InstanceRepository interface {
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*Instance, error)
	// Claim binds the lowest-numbered free instance to ownerID in a single
	// conditional update. Returns ErrPoolExhausted when no row qualifies.
	Claim(ctx context.Context, ownerID uuid.UUID, now time.Time) (*Instance, error)
	// Release returns the owner's instance to the pool. Returns
	// ErrInstanceNotFound when the owner holds nothing.
	Release(ctx context.Context, ownerID uuid.UUID) (*Instance, error)
	SetConnectedPhone(ctx context.Context, instanceID uuid.UUID, phone *string) error
	CountAvailable(ctx context.Context) (int, error)
	FirstAvailable(ctx context.Context) (*Instance, error)
}

// HistoryRepository abstracts the append-only allocation log.
type HistoryRepository interface {
	Create(ctx context.Context, instanceID, ownerID uuid.UUID, startedAt time.Time) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]AllocationHistoryEntry, error)
}

// TokenVerifier validates a bearer token against the auth backend.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, bearerToken string) (*User, error)
}

// GatewayClient talks to the Wuzapi bridge, keyed by per-instance token.
type GatewayClient interface {
	Status(ctx context.Context, token string) (*SessionStatus, error)
	Logout(ctx context.Context, token string) error
	QRImage(ctx context.Context, token string) ([]byte, error)
}

// AllocationService is the application layer contract — handlers route all
// operations through here.
type AllocationService interface {
	Status(ctx context.Context, userID uuid.UUID) (*StatusResult, error)
	Claim(ctx context.Context, userID uuid.UUID) (*ClaimResult, error)
	Connect(ctx context.Context, userID uuid.UUID) (*ConnectResult, error)
	Disconnect(ctx context.Context, userID uuid.UUID) error
	Release(ctx context.Context, userID uuid.UUID) error
	Diagnostics(ctx context.Context, user User) (*Diagnostics, error)
}
