package game

import (
	"slices"
	"sync/atomic"
)

// CardDefinition is the static, immutable data for a card.
type CardDefinition struct {
	ID         string
	Name       string
	Kind       CardKind
	Cost       int // gag tokens to play
	Rarity     string
	FlavorText string
	EditionSet string
	ImageFile  string

	// Queen fields
	Stats     Stats
	PowerID   string // key into the power registry, empty for vanilla queens
	PowerName string
	PowerText string

	// Equipment fields
	EquipmentType string // one per type per queen ("Wig", "Gown", ...)
	Boosts        Stats
	Effects       []Effect
	EffectText    string
}

// IsQueen reports whether the card can be played to the runway.
func (d *CardDefinition) IsQueen() bool {
	return d.Kind == KindQueen
}

// Expiry controls when a stat modifier goes away.
type Expiry int

const (
	// ExpireManaged modifiers are removed by whoever added them.
	ExpireManaged Expiry = iota
	// ExpireLipSync modifiers last until the current lip sync resolves.
	ExpireLipSync
	// ExpireOwnerUntuck modifiers last until the queen's owner leaves Untuck.
	ExpireOwnerUntuck
)

// Modifier is a transient stat change applied to a queen on the runway.
type Modifier struct {
	Tag    string   // handle used by RemoveModifier, may be empty
	Source string   // power or card name that produced it
	From   PlayerID // player whose ability applied it
	Delta  Stats
	Expiry Expiry
}

// CardInstance is a runtime card with mutable game state. Instances held by
// a GameState are never mutated in place; the reducer clones before writing.
type CardInstance struct {
	Def *CardDefinition
	ID  int // unique instance ID

	ShadeTokens   int
	Equipment     []*CardInstance // attached equipment, unique by type
	CanAttack     bool
	Modifiers     []Modifier
	OriginalStats Stats // base stats snapshot; replaced when a power resets the queen

	SpentEffects []int // indexes into Def.Effects already used this game (equipment)
	PowerSpent   bool  // once-per-game queen power used
}

func (ci *CardInstance) Name() string {
	return ci.Def.Name
}

// Clone returns a copy whose slices may be modified without touching ci.
// Attached equipment instances are shared until they are cloned themselves.
func (ci *CardInstance) Clone() *CardInstance {
	c := *ci
	c.Equipment = slices.Clone(ci.Equipment)
	c.Modifiers = slices.Clone(ci.Modifiers)
	c.SpentEffects = slices.Clone(ci.SpentEffects)
	return &c
}

// HasEquipmentType reports whether equipment of the given type is attached.
func (ci *CardInstance) HasEquipmentType(t string) bool {
	for _, eq := range ci.Equipment {
		if eq.Def.EquipmentType == t {
			return true
		}
	}
	return false
}

// FindEquipment returns the attached equipment with the given instance ID.
func (ci *CardInstance) FindEquipment(id int) (*CardInstance, int) {
	for i, eq := range ci.Equipment {
		if eq.ID == id {
			return eq, i
		}
	}
	return nil, -1
}

// EffectSpent reports whether the once-per-game effect at idx has been used.
func (ci *CardInstance) EffectSpent(idx int) bool {
	return slices.Contains(ci.SpentEffects, idx)
}

// IDGenerator hands out instance IDs for one game. IDs start at 1 so the
// zero value can mean "no card".
type IDGenerator struct {
	next atomic.Int64
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

func (g *IDGenerator) Next() int {
	return int(g.next.Add(1))
}

// NewInstance wraps def in a fresh instance.
func (g *IDGenerator) NewInstance(def *CardDefinition) *CardInstance {
	return &CardInstance{
		Def:           def,
		ID:            g.Next(),
		OriginalStats: def.Stats,
	}
}
