package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVersion(t *testing.T) {
	assert.Equal(t, uint64(1), parseVersion("000001_create_requests.up.sql"))
	assert.Equal(t, uint64(0), parseVersion("notes.up.sql"))
}

func TestSelectApplied(t *testing.T) {
	files := []string{"000001_a.up.sql", "000002_b.up.sql", "000003_c.up.sql"}
	assert.Equal(t, []string{"000002_b.up.sql", "000003_c.up.sql"}, selectApplied(files, 1, 3))
	assert.Empty(t, selectApplied(files, 3, 3))
}

func TestNormalizeSQLite(t *testing.T) {
	cfg := Config{Enabled: true, Driver: "SQLite", Path: "data/bot.db", MaxConnections: 8}
	assert.NoError(t, cfg.Normalize())
	assert.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, 1, cfg.MaxConnections)
	assert.Equal(t, "sqlite://data/bot.db", cfg.MigrateURL())
	assert.Equal(t, "data/bot.db", cfg.DSN())
}

func TestNormalizePostgresDefaults(t *testing.T) {
	cfg := Config{Enabled: true, Host: "db", Name: "bot", User: "u", Password: "p@ss"}
	assert.NoError(t, cfg.Normalize())
	assert.Equal(t, DriverPostgres, cfg.Driver)
	assert.Equal(t, "5432", cfg.Port)
	assert.Equal(t, "postgres://u:p%40ss@db:5432/bot?sslmode=disable", cfg.MigrateURL())
}

func TestNormalizeRejectsUnknownDriver(t *testing.T) {
	cfg := Config{Enabled: true, Driver: "oracle"}
	assert.Error(t, cfg.Normalize())
}

func TestNormalizeDisabledSkipsValidation(t *testing.T) {
	cfg := Config{}
	assert.NoError(t, cfg.Normalize())
}
