package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenNoFileOrEnv(t *testing.T) {
	dir := t.TempDir()
	restore := chdir(t, dir)
	defer restore()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "stdio", cfg.Transport.Mode)
	assert.Equal(t, 6, cfg.Engine.MaxHints)
	assert.Equal(t, 4, cfg.Engine.CascadeDepthLimit)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	restore := chdir(t, dir)
	defer restore()

	path := filepath.Join(dir, "visionmcp.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[transport]
mode = "http"
port = "9999"

[engine]
max_hints = 3
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http", cfg.Transport.Mode)
	assert.Equal(t, "9999", cfg.Transport.Port)
	assert.Equal(t, 3, cfg.Engine.MaxHints)
	// Fields untouched by the file keep their defaults.
	assert.Equal(t, 4, cfg.Engine.CascadeDepthLimit)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	restore := chdir(t, dir)
	defer restore()

	path := filepath.Join(dir, "visionmcp.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[engine]
max_hints = 3
`), 0644))

	t.Setenv("VISIONMCP_MAX_HINTS", "9")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Engine.MaxHints)
}

func TestLoad_RejectsInvalidTransportMode(t *testing.T) {
	dir := t.TempDir()
	restore := chdir(t, dir)
	defer restore()

	path := filepath.Join(dir, "visionmcp.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[transport]
mode = "carrier-pigeon"
`), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEngineConfig_ToUsecaseConfig(t *testing.T) {
	e := EngineConfig{
		StalenessThresholdMinutes: 45,
		AlignmentCacheTTLMinutes:  10,
		MaxHints:                  5,
		CascadeDepthLimit:         4,
		ToolDeadlineSeconds:       7,
		OverheadBudgetMillis:      250,
	}
	uc := e.ToUsecaseConfig()
	assert.Equal(t, 45*time.Minute, uc.StalenessThreshold)
	assert.Equal(t, 10*time.Minute, uc.AlignmentCacheTTL)
	assert.Equal(t, 7*time.Second, uc.ToolDeadline)
	assert.Equal(t, 250*time.Millisecond, uc.OverheadBudget)
}

func TestWatch_NoOpWhenNoConfigFileInUse(t *testing.T) {
	dir := t.TempDir()
	restore := chdir(t, dir)
	defer restore()

	closer, err := Watch("", func(*Config) {})
	require.NoError(t, err)
	require.NotNil(t, closer)
	assert.NoError(t, closer())
}

func TestWatch_ReloadsOnFileWrite(t *testing.T) {
	dir := t.TempDir()
	restore := chdir(t, dir)
	defer restore()

	path := filepath.Join(dir, "visionmcp.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[engine]
max_hints = 3
`), 0644))

	reloaded := make(chan *Config, 1)
	closer, err := Watch(path, func(c *Config) { reloaded <- c })
	require.NoError(t, err)
	defer closer()

	require.NoError(t, os.WriteFile(path, []byte(`
[engine]
max_hints = 8
`), 0644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 8, cfg.Engine.MaxHints)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { os.Chdir(old) }
}
