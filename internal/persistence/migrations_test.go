package persistence

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrationFilesAreOrdered(t *testing.T) {
	names, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_create_users.sql", names[0])
	assert.True(t, sort.StringsAreSorted(names))
}

func TestEmbeddedMigrationsDefineUserStore(t *testing.T) {
	content, err := migrationsFS.ReadFile("migrations/001_create_users.sql")
	require.NoError(t, err)

	sql := string(content)
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS users")
	assert.Contains(t, sql, "detained_till")
	assert.Contains(t, sql, "UNIQUE (issuer, subject)")
}

func TestRunMigrationsWithoutPool(t *testing.T) {
	require.NoError(t, RunMigrations(context.Background(), nil, zap.NewNop()))
}
