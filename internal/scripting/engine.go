package scripting

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for tunable game formulas.
// Single-goroutine access only (the orchestrator's consuming loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory tree. Missing directories are fine; formulas fall back to
// built-in defaults when a function is absent.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	for _, sub := range []string{"core", "combat", "world"} {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

func (e *Engine) Close() {
	e.vm.Close()
}

// StrikeContext holds pre-packed data for one strike damage calculation.
type StrikeContext struct {
	AttackerLevel  int
	AttackerAttack int
	TargetDefense  int
	Offensive      bool // attacker in offensive stance
	Defensive      bool // target in defensive stance
}

// CalcStrikeDamage calls the Lua calc_strike_damage function, falling back
// to the built-in formula when the script does not define it.
func (e *Engine) CalcStrikeDamage(ctx StrikeContext) int {
	fn := e.vm.GetGlobal("calc_strike_damage")
	if fn == lua.LNil {
		return defaultStrikeDamage(ctx)
	}

	tbl := e.vm.NewTable()
	e.vm.SetField(tbl, "attacker_level", lua.LNumber(ctx.AttackerLevel))
	e.vm.SetField(tbl, "attacker_attack", lua.LNumber(ctx.AttackerAttack))
	e.vm.SetField(tbl, "target_defense", lua.LNumber(ctx.TargetDefense))
	e.vm.SetField(tbl, "offensive", lua.LBool(ctx.Offensive))
	e.vm.SetField(tbl, "defensive", lua.LBool(ctx.Defensive))

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, tbl); err != nil {
		e.log.Error("lua calc_strike_damage failed", zap.Error(err))
		return defaultStrikeDamage(ctx)
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	if n, ok := ret.(lua.LNumber); ok {
		if n < 0 {
			return 0
		}
		return int(n)
	}
	return defaultStrikeDamage(ctx)
}

// defaultStrikeDamage mirrors the shipped combat/strike.lua formula.
func defaultStrikeDamage(ctx StrikeContext) int {
	maxDmg := ctx.AttackerAttack + ctx.AttackerLevel/2 - ctx.TargetDefense
	if ctx.Offensive {
		maxDmg += maxDmg / 4
	}
	if ctx.Defensive {
		maxDmg -= maxDmg / 4
	}
	if maxDmg <= 0 {
		return 0
	}
	return rand.Intn(maxDmg + 1)
}
