package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ItemType holds static data for an item kind loaded from YAML.
type ItemType struct {
	Name          string `yaml:"name"`
	ClientID      uint16 `yaml:"client_id"`
	Stackable     bool   `yaml:"stackable"`
	Movable       bool   `yaml:"movable"`
	Blocking      bool   `yaml:"blocking"` // blocks walking when on a tile
	BlocksLOS     bool   `yaml:"blocks_los"`
	Ground        bool   `yaml:"ground"`
	Capacity      int    `yaml:"capacity"` // >0 means container
	Weight        int32  `yaml:"weight"`
	DecayAfterSec int    `yaml:"decay_after_sec"` // 0 = never decays
	DecaysTo      string `yaml:"decays_to"`       // next type name, "" = vanish
}

// DecayDuration is the item's lifetime once placed, or 0 when it never
// decays.
func (t *ItemType) DecayDuration() time.Duration {
	return time.Duration(t.DecayAfterSec) * time.Second
}

type itemListFile struct {
	Items []ItemType `yaml:"items"`
}

// ItemTable holds all item types indexed by name.
type ItemTable struct {
	types map[string]*ItemType
}

// LoadItemTable loads item types from a YAML file.
func LoadItemTable(path string) (*ItemTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item list: %w", err)
	}
	var f itemListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse item list: %w", err)
	}
	t := &ItemTable{types: make(map[string]*ItemType, len(f.Items))}
	for i := range f.Items {
		it := &f.Items[i]
		t.types[it.Name] = it
	}
	return t, nil
}

// NewItemTableFromTypes builds a table directly from templates (tests,
// embedded defaults).
func NewItemTableFromTypes(types []ItemType) *ItemTable {
	t := &ItemTable{types: make(map[string]*ItemType, len(types))}
	for i := range types {
		t.types[types[i].Name] = &types[i]
	}
	return t
}

// Get returns an item type by name, or nil if not found.
func (t *ItemTable) Get(name string) *ItemType {
	return t.types[name]
}

func (t *ItemTable) Count() int {
	return len(t.types)
}

// BloodType is carried by monster types and selects the splatter left on a
// hit.
type BloodType string

const (
	BloodRed   BloodType = "red"
	BloodGreen BloodType = "green"
	BloodNone  BloodType = "none"
)

var bloodSplatter = map[BloodType]string{
	BloodRed:   "pool of blood",
	BloodGreen: "pool of slime",
}

// BloodSplatterFor returns the predefined item type name for a splatter of
// the given blood type, or "" when the blood type leaves none.
func BloodSplatterFor(b BloodType) string {
	return bloodSplatter[b]
}
