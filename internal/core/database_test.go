// AngelaMos | 2026
// database_test.go

package core

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/leafcare/internal/config"
)

func TestJitteredDuration(t *testing.T) {
	assert.Zero(t, jitteredDuration(0))

	base := 7 * time.Minute
	for range 50 {
		d := jitteredDuration(base)
		assert.GreaterOrEqual(t, d, base)
		assert.Less(t, d, base+time.Minute)
	}
}

func TestConfigurePool(t *testing.T) {
	db, err := sqlx.Open("pgx", "postgres://localhost:1/none")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	configurePool(db, config.DatabaseConfig{MaxOpenConns: 7, MaxIdleConns: 2})
	assert.Equal(t, 7, db.Stats().MaxOpenConnections)
}

func TestIsDuplicateKeyError(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, IsDuplicateKeyError(dup))
	assert.False(t, IsDuplicateKeyError(&pgconn.PgError{Code: "23514"}))
	assert.False(t, IsDuplicateKeyError(errors.New("boom")))
}
