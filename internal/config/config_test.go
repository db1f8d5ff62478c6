package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AbdouB/wiki/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
data_dir: /tmp/wiki-data
log_level: debug
suggest:
  threshold: 0.25
  limit: 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/wiki-data", cfg.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 0.25, cfg.Suggest.Threshold)
	assert.Equal(t, 5, cfg.Suggest.Limit)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := Load(writeConfig(t, "log_level: info\n"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, search.DefaultThreshold, cfg.Suggest.Threshold)
	assert.Equal(t, search.DefaultLimit, cfg.Suggest.Limit)
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	for _, body := range []string{"suggest:\n  threshold: 1.5\n", "suggest:\n  threshold: -0.1\n"} {
		_, err := Load(writeConfig(t, body))
		assert.Error(t, err)
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit path must exist")

	_, err = Load(writeConfig(t, "suggest: [not, a, map]\n"))
	assert.Error(t, err)
}

func TestLoadWithoutFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".wiki"), cfg.DataDir)
	assert.Equal(t, "warning", cfg.LogLevel)
	assert.Equal(t, filepath.Join(home, ".wiki", "config.yaml"), DefaultPath())
}

func TestLoadLocalFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.MkdirAll(".wiki", 0755))
	require.NoError(t, os.WriteFile(filepath.Join(".wiki", "config.yaml"), []byte("suggest:\n  limit: 3\n"), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Suggest.Limit)
	assert.Equal(t, ".wiki", cfg.DataDir)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir for older toolchains).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
