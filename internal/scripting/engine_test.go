package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCalcStrikeDamageFallback(t *testing.T) {
	e, err := NewEngine(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	ctx := StrikeContext{AttackerLevel: 10, AttackerAttack: 20, TargetDefense: 5}
	for i := 0; i < 50; i++ {
		dmg := e.CalcStrikeDamage(ctx)
		assert.GreaterOrEqual(t, dmg, 0)
		assert.LessOrEqual(t, dmg, 20+5-5)
	}

	// Overwhelming defense always zeroes out.
	assert.Zero(t, e.CalcStrikeDamage(StrikeContext{AttackerAttack: 1, TargetDefense: 100}))
}

func TestCalcStrikeDamageFromScript(t *testing.T) {
	dir := t.TempDir()
	combat := filepath.Join(dir, "combat")
	require.NoError(t, os.MkdirAll(combat, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(combat, "strike.lua"), []byte(`
function calc_strike_damage(ctx)
    return ctx.attacker_attack - ctx.target_defense
end
`), 0o644))

	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	dmg := e.CalcStrikeDamage(StrikeContext{AttackerAttack: 20, TargetDefense: 5})
	assert.Equal(t, 15, dmg)

	// Negative script results clamp to zero.
	assert.Zero(t, e.CalcStrikeDamage(StrikeContext{AttackerAttack: 1, TargetDefense: 10}))
}

func TestBrokenScriptFailsLoad(t *testing.T) {
	dir := t.TempDir()
	combat := filepath.Join(dir, "combat")
	require.NoError(t, os.MkdirAll(combat, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(combat, "bad.lua"), []byte("this is not lua ("), 0o644))

	_, err := NewEngine(dir, zap.NewNop())
	assert.Error(t, err)
}
