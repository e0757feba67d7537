package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
name = "Testrealm"

[network]
bind_address = "127.0.0.1:9999"

[game]
move_exhaustion = "500ms"
idle_kick_after = "10m"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Testrealm", cfg.Server.Name)
	assert.Equal(t, "127.0.0.1:9999", cfg.Network.BindAddress)
	assert.Equal(t, 500*time.Millisecond, cfg.Game.MoveExhaustion)
	assert.Equal(t, 10*time.Minute, cfg.Game.IdleKickAfter)

	// Untouched keys keep their defaults.
	assert.Equal(t, 2*time.Second, cfg.Game.WorldClockPeriod)
	assert.Equal(t, 256, cfg.Network.OutQueueSize)
	assert.NotZero(t, cfg.Server.StartTime)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestDefaultsAreComplete(t *testing.T) {
	cfg := Defaults()
	assert.NotEmpty(t, cfg.Database.DSN)
	assert.Positive(t, cfg.Game.IdleSweepPeriod)
	assert.Positive(t, cfg.Game.CombatExhaustion)
	assert.Positive(t, cfg.Game.InCombatDuration)
	assert.NotEmpty(t, cfg.Logging.Level)
}
