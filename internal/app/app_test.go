package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/pqbot/core/bootstrap"
	coreconfig "github.com/m3rciful/pqbot/core/config"
	coredatabase "github.com/m3rciful/pqbot/core/database"
	"github.com/m3rciful/pqbot/internal/requestlog"
)

func noLogger(*coreconfig.Config) error { return nil }

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &Config{
		Core:     coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "123:abc"}},
		Requests: RequestsConfig{File: filepath.Join(dir, "requests.txt")},
	}
	require.NoError(t, cfg.Normalize())
	return cfg
}

func TestBootstrapWithoutDatabase(t *testing.T) {
	cfg := testConfig(t)
	a, err := bootstrapWith(cfg, bootstrap.Options{LoggerInit: noLogger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Nil(t, a.Infra.DB)
	assert.Equal(t, 4, a.Catalog.Len())
	assert.IsType(t, &requestlog.FileSink{}, a.Requests)

	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)
	assert.Same(t, &cfg.Core, opts.Config)
	assert.Same(t, a.Dispatcher, opts.Dispatcher)
	assert.NotEmpty(t, opts.Routes)
	assert.NotEmpty(t, opts.Middlewares)
	assert.Len(t, opts.Registry.ListCommands(true), 5)
}

func TestBootstrapMirrorsRequestsToSQLite(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database = coredatabase.Config{Enabled: true, Driver: coredatabase.DriverSQLite, Path: filepath.Join(t.TempDir(), "pq.db")}
	require.NoError(t, cfg.Database.Normalize())

	a, err := bootstrapWith(cfg, bootstrap.Options{LoggerInit: noLogger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.NotNil(t, a.Infra.DB)

	entry := requestlog.NewEntry("ama_k", "CS101 2019", time.Now())
	require.NoError(t, a.Requests.Append(context.Background(), entry))

	var n int
	require.NoError(t, a.Infra.DB.Get(&n, "SELECT COUNT(*) FROM requests"))
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(cfg.Requests.File)
	require.NoError(t, err)
	assert.Equal(t, "ama_k sent: CS101 2019\n", string(data))
}

func TestBootstrapFailsOnBadCatalog(t *testing.T) {
	cfg := testConfig(t)
	cfg.Catalog.File = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := bootstrapWith(cfg, bootstrap.Options{LoggerInit: noLogger})
	assert.ErrorContains(t, err, "catalog")
}

func TestBootstrapRejectsNilConfig(t *testing.T) {
	_, err := Bootstrap(nil)
	assert.Error(t, err)
}
