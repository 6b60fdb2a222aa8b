package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", cfg.ListenAddress())
	assert.Equal(t, 30*time.Second, cfg.Game.TurnTimeout())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jokerd.hcl")
	content := `
server {
  port      = 9999
  log_level = "debug"
}

game {
  turn_timeout_ms = 5000
}

limits {
  throw_spacing_ms = 250
}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "localhost", cfg.Server.Address)
	assert.Equal(t, 5*time.Second, cfg.Game.TurnTimeout())
	assert.Equal(t, 2*time.Second, cfg.Game.TrickReveal())
	assert.Equal(t, 250*time.Millisecond, cfg.Limits.ThrowSpacing())
	assert.Equal(t, 60, cfg.Limits.ActionsPerMinute)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Game.TurnTimeoutMs = 100
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Limits.ActionsPerMinute = 0
	require.Error(t, cfg.Validate())
}
