package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feliciofc-debug/amz-ofertas-site/internal/domain"
)

// instanceColumns must match the Scan order in scanInstance.
const instanceColumns = `id, instance_number, name, token, port, status, owner_id, connected_phone, connected_at, created_at, updated_at`

// InstanceRepo implements domain.InstanceRepository backed by PostgreSQL.
type InstanceRepo struct {
	pool *pgxpool.Pool
}

// NewInstanceRepo creates an InstanceRepo from the shared connection pool.
func NewInstanceRepo(pool *pgxpool.Pool) *InstanceRepo {
	return &InstanceRepo{pool: pool}
}

func scanInstance(row pgx.Row) (*domain.Instance, error) {
	var inst domain.Instance
	err := row.Scan(
		&inst.ID, &inst.Number, &inst.Name, &inst.Token, &inst.Port,
		&inst.Status, &inst.OwnerID, &inst.ConnectedPhone, &inst.ConnectedAt,
		&inst.CreatedAt, &inst.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

func (r *InstanceRepo) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Instance, error) {
	inst, err := scanInstance(r.pool.QueryRow(ctx,
		`SELECT `+instanceColumns+` FROM instances WHERE owner_id = $1`, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstanceNotFound
		}
		return nil, fmt.Errorf("failed to get instance by owner: %w", err)
	}
	return inst, nil
}

// Claim binds the lowest-numbered free instance to ownerID. The subquery and
// update run as one statement, so two concurrent claimants can never take the
// same row; SKIP LOCKED makes the loser fall through to the next free instance
// instead of blocking.
func (r *InstanceRepo) Claim(ctx context.Context, ownerID uuid.UUID, now time.Time) (*domain.Instance, error) {
	inst, err := scanInstance(r.pool.QueryRow(ctx, `
		UPDATE instances
		SET owner_id = $1, status = $2, connected_at = $3, updated_at = NOW()
		WHERE id = (
			SELECT id FROM instances
			WHERE status = $4 AND owner_id IS NULL
			ORDER BY instance_number
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+instanceColumns,
		ownerID, domain.StatusInUse, now, domain.StatusAvailable))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPoolExhausted
		}
		return nil, fmt.Errorf("failed to claim instance: %w", err)
	}
	return inst, nil
}

func (r *InstanceRepo) Release(ctx context.Context, ownerID uuid.UUID) (*domain.Instance, error) {
	inst, err := scanInstance(r.pool.QueryRow(ctx, `
		UPDATE instances
		SET owner_id = NULL, status = $1, connected_phone = NULL, connected_at = NULL, updated_at = NOW()
		WHERE owner_id = $2
		RETURNING `+instanceColumns,
		domain.StatusAvailable, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstanceNotFound
		}
		return nil, fmt.Errorf("failed to release instance: %w", err)
	}
	return inst, nil
}

func (r *InstanceRepo) SetConnectedPhone(ctx context.Context, instanceID uuid.UUID, phone *string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE instances
		SET connected_phone = $1, updated_at = NOW()
		WHERE id = $2
	`, phone, instanceID)
	if err != nil {
		return fmt.Errorf("failed to update connected phone: %w", err)
	}
	return nil
}

func (r *InstanceRepo) CountAvailable(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM instances WHERE status = $1 AND owner_id IS NULL`,
		domain.StatusAvailable).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count available instances: %w", err)
	}
	return count, nil
}

func (r *InstanceRepo) FirstAvailable(ctx context.Context) (*domain.Instance, error) {
	inst, err := scanInstance(r.pool.QueryRow(ctx, `
		SELECT `+instanceColumns+` FROM instances
		WHERE status = $1 AND owner_id IS NULL
		ORDER BY instance_number
		LIMIT 1
	`, domain.StatusAvailable))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstanceNotFound
		}
		return nil, fmt.Errorf("failed to peek first available instance: %w", err)
	}
	return inst, nil
}
