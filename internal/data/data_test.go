package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadItemTable(t *testing.T) {
	path := writeFile(t, "item_list.yaml", `
items:
  - name: gold coin
    client_id: 200
    stackable: true
    movable: true
    weight: 1
  - name: torch
    client_id: 230
    movable: true
    decay_after_sec: 600
    decays_to: burnt torch
  - name: wooden chest
    client_id: 221
    capacity: 30
`)
	table, err := LoadItemTable(path)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Count())

	coin := table.Get("gold coin")
	require.NotNil(t, coin)
	assert.True(t, coin.Stackable)
	assert.Zero(t, coin.DecayDuration())

	torch := table.Get("torch")
	require.NotNil(t, torch)
	assert.Equal(t, 10*time.Minute, torch.DecayDuration())
	assert.Equal(t, "burnt torch", torch.DecaysTo)

	chest := table.Get("wooden chest")
	require.NotNil(t, chest)
	assert.Equal(t, 30, chest.Capacity)

	assert.Nil(t, table.Get("no such thing"))
}

func TestLoadMonsterTable(t *testing.T) {
	path := writeFile(t, "monster_list.yaml", `
monsters:
  - name: rat
    max_hp: 25
    attack: 8
    defense: 2
    speed: 180
    blood: red
    hostile: true
  - name: wolf
    max_hp: 60
    attack: 16
    defense: 5
    speed: 240
    attack_speed_ms: 1800
    blood: red
    hostile: true
`)
	table, err := LoadMonsterTable(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Count())

	rat := table.Get("rat")
	require.NotNil(t, rat)
	// Unset attack speed falls back to the default swing interval.
	assert.Equal(t, 2*time.Second, rat.AttackInterval())

	wolf := table.Get("wolf")
	require.NotNil(t, wolf)
	assert.Equal(t, 1800*time.Millisecond, wolf.AttackInterval())
}

func TestLoadTableErrors(t *testing.T) {
	_, err := LoadItemTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, "bad.yaml", "items: {not a list}")
	_, err = LoadItemTable(bad)
	assert.Error(t, err)
}

func TestBloodSplatter(t *testing.T) {
	assert.Equal(t, "pool of blood", BloodSplatterFor(BloodRed))
	assert.Equal(t, "pool of slime", BloodSplatterFor(BloodGreen))
	assert.Empty(t, BloodSplatterFor(BloodNone))
}
