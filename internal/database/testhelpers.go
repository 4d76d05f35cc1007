package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// seedTestInstance inserts an unowned, available instance with the given number.
func seedTestInstance(t *testing.T, pool *pgxpool.Pool, number int) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		INSERT INTO instances (instance_number, name, token, port, status)
		VALUES ($1, $2, $3, $4, 'available')
	`, number, fmt.Sprintf("afiliado-%02d", number), fmt.Sprintf("token-%02d", number), 8000+number)
	require.NoError(t, err)
}
