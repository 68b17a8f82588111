package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 5*time.Second, cfg.App.OperationTimeout)
	assert.Equal(t, 100, cfg.Outbox.BatchSize)
	assert.Equal(t, "boxoffice", cfg.Outbox.TopicPrefix)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Len(t, cfg.Server.CORSOrigins, 2)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "boxoffice.yaml")
	yaml := `
server:
  port: "9090"
  request_timeout: 3s
database:
  url: postgres://file/db
outbox:
  batch_size: 25
log:
  level: debug
  json: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("BOXOFFICE_DATABASE_URL", "postgres://env/db")
	t.Setenv("BOXOFFICE_APP_OPERATION_TIMEOUT", "750ms")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "postgres://env/db", cfg.Database.URL)
	assert.Equal(t, 750*time.Millisecond, cfg.App.OperationTimeout)
	assert.Equal(t, 25, cfg.Outbox.BatchSize)
	assert.True(t, cfg.Log.JSON)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BOXOFFICE_APP_OPERATION_TIMEOUT", "0s")

	_, err := Load("")
	assert.ErrorContains(t, err, "operation_timeout")
}

// chdir changes the working directory for the duration of the test,
// equivalent to testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
