package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemcapstone/smartgoals/internal/db"
	"github.com/stemcapstone/smartgoals/internal/db/dbtest"
)

func TestMigrations(t *testing.T) {
	database := dbtest.New(t, dbtest.Latest)

	v, err := db.Version(database.DB, db.DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	var n int
	err = database.Get(&n, `SELECT COUNT(*) FROM smart_goals WHERE started_early = FALSE`)
	require.NoError(t, err)
	err = database.Get(&n, `SELECT COUNT(*) FROM project_comments`)
	require.NoError(t, err)

	require.NoError(t, db.MigrateDown(database.DB, db.DriverSQLite))
	_, err = database.Exec(`SELECT id FROM project_comments`)
	assert.Error(t, err)

	require.NoError(t, db.MigrateDown(database.DB, db.DriverSQLite))
	v, err = db.Version(database.DB, db.DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, err = database.Exec(`SELECT started_early FROM smart_goals`)
	assert.Error(t, err)
}

func TestMigrateToLegacySchema(t *testing.T) {
	database := dbtest.New(t, 1)

	v, err := db.Version(database.DB, db.DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestSQLitePath(t *testing.T) {
	tests := map[string]string{
		"./data/app.db?_pragma=foreign_keys(1)": "./data/app.db",
		"file:/tmp/x.db?mode=rwc":               "/tmp/x.db",
		"plain.db":                              "plain.db",
	}
	for in, want := range tests {
		assert.Equal(t, want, db.SQLitePath(in))
	}
}
