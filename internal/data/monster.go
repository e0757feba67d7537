package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MonsterType holds static data for a monster kind loaded from YAML.
type MonsterType struct {
	Name          string    `yaml:"name"`
	Article       string    `yaml:"article"`
	MaxHP         int32     `yaml:"max_hp"`
	Attack        int32     `yaml:"attack"`
	Defense       int32     `yaml:"defense"`
	Experience    int64     `yaml:"experience"`
	Speed         int16     `yaml:"speed"`
	AttackSpeedMS int       `yaml:"attack_speed_ms"`
	Blood         BloodType `yaml:"blood"`
	Hostile       bool      `yaml:"hostile"`
}

// AttackInterval is the delay between the monster's auto-attack swings.
func (m *MonsterType) AttackInterval() time.Duration {
	return time.Duration(m.AttackSpeedMS) * time.Millisecond
}

type monsterListFile struct {
	Monsters []MonsterType `yaml:"monsters"`
}

// MonsterTable holds all monster types indexed by name.
type MonsterTable struct {
	types map[string]*MonsterType
}

// LoadMonsterTable loads monster types from a YAML file.
func LoadMonsterTable(path string) (*MonsterTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read monster list: %w", err)
	}
	var f monsterListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse monster list: %w", err)
	}
	t := &MonsterTable{types: make(map[string]*MonsterType, len(f.Monsters))}
	for i := range f.Monsters {
		m := &f.Monsters[i]
		if m.AttackSpeedMS <= 0 {
			m.AttackSpeedMS = 2000
		}
		t.types[m.Name] = m
	}
	return t, nil
}

// NewMonsterTableFromTypes builds a table directly from templates (tests,
// embedded defaults).
func NewMonsterTableFromTypes(types []MonsterType) *MonsterTable {
	t := &MonsterTable{types: make(map[string]*MonsterType, len(types))}
	for i := range types {
		if types[i].AttackSpeedMS <= 0 {
			types[i].AttackSpeedMS = 2000
		}
		t.types[types[i].Name] = &types[i]
	}
	return t
}

// Get returns a monster type by name, or nil if not found.
func (t *MonsterTable) Get(name string) *MonsterType {
	return t.types[name]
}

func (t *MonsterTable) Count() int {
	return len(t.types)
}
