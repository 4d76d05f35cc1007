package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feliciofc-debug/amz-ofertas-site/internal/domain"
)

// HistoryRepo implements domain.HistoryRepository backed by PostgreSQL.
// The table is append-only; there are no update or delete paths.
type HistoryRepo struct {
	pool *pgxpool.Pool
}

// NewHistoryRepo creates a HistoryRepo from the shared connection pool.
func NewHistoryRepo(pool *pgxpool.Pool) *HistoryRepo {
	return &HistoryRepo{pool: pool}
}

func (r *HistoryRepo) Create(ctx context.Context, instanceID, ownerID uuid.UUID, startedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO allocation_history (instance_id, owner_id, started_at)
		VALUES ($1, $2, $3)
	`, instanceID, ownerID, startedAt)
	if err != nil {
		return fmt.Errorf("failed to create history entry: %w", err)
	}
	return nil
}

func (r *HistoryRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.AllocationHistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, instance_id, owner_id, started_at
		FROM allocation_history
		WHERE owner_id = $1
		ORDER BY started_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []domain.AllocationHistoryEntry
	for rows.Next() {
		var e domain.AllocationHistoryEntry
		if err := rows.Scan(&e.ID, &e.InstanceID, &e.OwnerID, &e.StartedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history rows: %w", err)
	}

	return entries, nil
}
