// Package dbtest opens migrated in-memory SQLite stores for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gratefultolord/hr_requests_bot/internal/db"
)

// New returns a migrated in-memory store seeded with teams. It is closed
// when the test ends.
func New(t testing.TB, teams ...string) *db.DB {
	t.Helper()

	database, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database))

	if len(teams) > 0 {
		require.NoError(t, db.NewTeamRepository(database.Conn).Seed(context.Background(), teams))
	}

	return database
}
