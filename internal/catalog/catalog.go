// Package catalog loads queen and equipment definitions from YAML.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/peterkuimelis/werkroom/internal/game"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// File is the top-level YAML structure.
type File struct {
	Queens    []QueenEntry     `yaml:"queens"`
	Equipment []EquipmentEntry `yaml:"equipment"`
}

// QueenEntry is a queen card as written in a catalog file.
type QueenEntry struct {
	ID     string     `yaml:"id"`
	Name   string     `yaml:"name"`
	Cost   int        `yaml:"cost"`
	Rarity string     `yaml:"rarity"`
	Stats  game.Stats `yaml:"stats"`
	Power  string     `yaml:"power,omitempty"` // power registry id
	Flavor string     `yaml:"flavor,omitempty"`
	Set    string     `yaml:"set,omitempty"`
	Image  string     `yaml:"image,omitempty"`
}

// EquipmentEntry is an equipment card as written in a catalog file.
type EquipmentEntry struct {
	ID      string        `yaml:"id"`
	Name    string        `yaml:"name"`
	Type    string        `yaml:"type"`
	Cost    int           `yaml:"cost"`
	Rarity  string        `yaml:"rarity"`
	Boosts  game.Stats    `yaml:"boosts"`
	Effects []EffectEntry `yaml:"effects,omitempty"`
	Text    string        `yaml:"text,omitempty"`
	Flavor  string        `yaml:"flavor,omitempty"`
	Set     string        `yaml:"set,omitempty"`
	Image   string        `yaml:"image,omitempty"`
}

// Catalog is an immutable set of card definitions.
type Catalog struct {
	Queens    []*game.CardDefinition
	Equipment []*game.CardDefinition

	byID map[string]*game.CardDefinition
}

// Lookup returns the card with the given catalog id, or nil.
func (c *Catalog) Lookup(id string) *game.CardDefinition {
	return c.byID[id]
}

// Init returns the action that starts a game with every card in c.
func (c *Catalog) Init(names [2]string) game.InitializeGame {
	return game.InitializeGame{Queens: c.Queens, Equipment: c.Equipment, Names: names}
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes catalog YAML. Powers are resolved against the built-in
// power registry.
func Parse(data []byte) (*Catalog, error) {
	return ParseWith(data, game.Powers)
}

// ParseWith decodes catalog YAML, resolving queen powers against reg.
func ParseWith(data []byte, reg *game.PowerRegistry) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse YAML: %w", err)
	}
	return f.Build(reg)
}

// Build validates the entries and converts them into card definitions.
func (f File) Build(reg *game.PowerRegistry) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*game.CardDefinition)}
	if len(f.Queens) == 0 {
		return nil, fmt.Errorf("catalog: no queens")
	}
	for _, q := range f.Queens {
		def, err := q.definition(reg)
		if err != nil {
			return nil, fmt.Errorf("catalog: card %s: %w", q.ID, err)
		}
		if err := c.add(def); err != nil {
			return nil, err
		}
		c.Queens = append(c.Queens, def)
	}
	for _, e := range f.Equipment {
		def, err := e.definition()
		if err != nil {
			return nil, fmt.Errorf("catalog: card %s: %w", e.ID, err)
		}
		if err := c.add(def); err != nil {
			return nil, err
		}
		c.Equipment = append(c.Equipment, def)
	}
	return c, nil
}

func (c *Catalog) add(def *game.CardDefinition) error {
	if _, dup := c.byID[def.ID]; dup {
		return fmt.Errorf("catalog: card %s: duplicate id", def.ID)
	}
	c.byID[def.ID] = def
	return nil
}

func (q QueenEntry) definition(reg *game.PowerRegistry) (*game.CardDefinition, error) {
	if err := checkCommon(q.ID, q.Name, q.Cost); err != nil {
		return nil, err
	}
	for _, cat := range game.Categories {
		if q.Stats.Get(cat) < 0 {
			return nil, fmt.Errorf("negative %s", cat)
		}
	}
	def := &game.CardDefinition{
		ID:         q.ID,
		Name:       q.Name,
		Kind:       game.KindQueen,
		Cost:       q.Cost,
		Rarity:     q.Rarity,
		FlavorText: q.Flavor,
		EditionSet: q.Set,
		ImageFile:  q.Image,
		Stats:      q.Stats,
		PowerID:    q.Power,
	}
	if q.Power != "" {
		pw := reg.Lookup(q.Power)
		if pw == nil {
			return nil, fmt.Errorf("unknown power %q", q.Power)
		}
		def.PowerName = pw.Name
		def.PowerText = pw.Text
	}
	return def, nil
}

func (e EquipmentEntry) definition() (*game.CardDefinition, error) {
	if err := checkCommon(e.ID, e.Name, e.Cost); err != nil {
		return nil, err
	}
	if e.Type == "" {
		return nil, fmt.Errorf("missing equipment type")
	}
	def := &game.CardDefinition{
		ID:            e.ID,
		Name:          e.Name,
		Kind:          game.KindEquipment,
		Cost:          e.Cost,
		Rarity:        e.Rarity,
		FlavorText:    e.Flavor,
		EditionSet:    e.Set,
		ImageFile:     e.Image,
		EquipmentType: e.Type,
		Boosts:        e.Boosts,
		EffectText:    e.Text,
	}
	for i, entry := range e.Effects {
		fx, err := entry.Effect()
		if err != nil {
			return nil, fmt.Errorf("effect %d: %w", i, err)
		}
		def.Effects = append(def.Effects, fx)
	}
	return def, nil
}

func checkCommon(id, name string, cost int) error {
	switch {
	case id == "":
		return fmt.Errorf("missing id")
	case name == "":
		return fmt.Errorf("missing name")
	case cost < 0:
		return fmt.Errorf("negative cost %d", cost)
	}
	return nil
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalog. It panics if the embedded file is
// invalid.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultYAML)
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}

// LoadOrDefault loads path, or returns the embedded catalog when path is
// empty.
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
