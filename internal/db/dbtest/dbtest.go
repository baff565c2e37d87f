// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/stemcapstone/smartgoals/internal/db"
)

// Latest migrates to the newest schema.
const Latest int64 = -1

// New returns a migrated database in a temp dir that is closed when the test
// ends. Pass Latest or a goose version.
func New(t testing.TB, version int64) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	database, err := db.Init(db.DriverSQLite, path)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if version == Latest {
		err = db.RunMigrations(database.DB, db.DriverSQLite)
	} else {
		err = db.MigrateTo(database.DB, db.DriverSQLite, version)
	}
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	return database
}
