// AngelaMos | 2026
// testdb.go

// Package testdb gives integration tests a migrated Postgres schema of
// their own. Tests skip unless LEAFCARE_TEST_DATABASE_URL is set.
package testdb

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/leafcare/internal/config"
	"github.com/carterperez-dev/leafcare/internal/core"
)

const EnvURL = "LEAFCARE_TEST_DATABASE_URL"

// Open creates a throwaway schema, points a new pool at it through
// search_path and applies the migrations. The schema is dropped on cleanup.
func Open(t *testing.T) *core.Database {
	t.Helper()

	base := os.Getenv(EnvURL)
	if base == "" {
		t.Skipf("%s not set", EnvURL)
	}

	ctx := context.Background()
	schema := "test_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	admin := connect(t, base)
	_, err := admin.DB.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA %s`, schema))
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = admin.DB.ExecContext(ctx, fmt.Sprintf(`DROP SCHEMA %s CASCADE`, schema))
		_ = admin.Close()
	})

	u, err := url.Parse(base)
	require.NoError(t, err)
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()

	db := connect(t, u.String())
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx))
	return db
}

func connect(t *testing.T, dsn string) *core.Database {
	t.Helper()

	db, err := core.NewDatabase(context.Background(), config.DatabaseConfig{
		URL:             dsn,
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
	})
	require.NoError(t, err)
	return db
}
