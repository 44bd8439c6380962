package store

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileIsEmpty(t *testing.T) {
	t.Setenv(EnvConfigDir, t.TempDir())
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadConfig_AcceptsCommentsAndTrailingCommas(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)
	body := `{
		// local postgres
		"driver": "postgres",
		"postgresDsn": "postgres://localhost/tasktree",
		"engine": {
			"maxDepth": 3,
			"upwardThreshold": 0.6,
			"allowCrossParent": true,
		},
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0o644))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Driver)
	require.NotNil(t, cfg.Engine.MaxDepth)
	assert.Equal(t, 3, *cfg.Engine.MaxDepth)
	require.NotNil(t, cfg.Engine.UpwardThreshold)
	assert.InDelta(t, 0.6, *cfg.Engine.UpwardThreshold, 1e-9)
	assert.True(t, cfg.Engine.AllowCrossParent)
	assert.Nil(t, cfg.Engine.HandleWidth)
}

func TestLoadConfig_InvalidIsWrapped(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)

	for _, body := range []string{`{"driver": `, `{"driver": "oracle"}`, `{"engine": {"maxDepth": -1}}`} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0o644))
		_, err := LoadConfig()
		assert.ErrorIs(t, err, ErrConfigInvalid, body)
	}
}

func TestSaveConfig_KeepsBackupAndSurvivesConcurrentWriters(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)

	require.NoError(t, SaveConfig(&Config{CurrentProject: "proj-seed"}))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cfg, err := LoadConfig()
			if err != nil {
				errs <- err
				return
			}
			cfg.MetricsFile = "m.prom"
			if err := SaveConfig(cfg); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent save: %v", err)
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "m.prom", cfg.MetricsFile)
	_, err = os.Stat(filepath.Join(dir, "config.json.bak"))
	assert.NoError(t, err)
}

func TestApplyEnv_OverridesFile(t *testing.T) {
	cfg := &Config{Driver: "sqlite", CurrentProject: "proj-a"}
	env := map[string]string{EnvDriver: "postgres", EnvPostgresDSN: "dsn", EnvProject: " proj-b "}
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "postgres", cfg.Driver)
	assert.Equal(t, "dsn", cfg.PostgresDSN)
	assert.Equal(t, "proj-b", cfg.CurrentProject)
	assert.Equal(t, "", cfg.Dir)
}
