package domain

import (
	"time"

	"github.com/google/uuid"
)

// InstanceStatus is the allocation state of a pooled gateway instance.
type InstanceStatus string

const (
	// StatusAvailable means the instance is free and can be claimed.
	StatusAvailable InstanceStatus = "available"
	// StatusInUse means the instance is bound to an owner.
	StatusInUse InstanceStatus = "in_use"
)

// Instance is a pooled Wuzapi session/credential set, allocatable to one
// affiliate at a time. OwnerID is nil exactly when Status is available.
type Instance struct {
	ID             uuid.UUID      `db:"id"`
	Number         int            `db:"instance_number"`
	Name           string         `db:"name"`
	Token          string         `db:"token"`
	Port           int            `db:"port"`
	Status         InstanceStatus `db:"status"`
	OwnerID        *uuid.UUID     `db:"owner_id"`
	ConnectedPhone *string        `db:"connected_phone"`
	ConnectedAt    *time.Time     `db:"connected_at"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// AllocationHistoryEntry is one row of the append-only allocation audit log.
type AllocationHistoryEntry struct {
	ID         uuid.UUID `db:"id"`
	InstanceID uuid.UUID `db:"instance_id"`
	OwnerID    uuid.UUID `db:"owner_id"`
	StartedAt  time.Time `db:"started_at"`
}
