package game

import "fmt"

// --- Game constants ---

const (
	StartingShantay  = 25
	StartingGag      = 5
	MaxGag           = 10
	StartingHandSize = 5
	MaxHandSize      = 7
	MaxRunwayQueens  = 3
	ShadeLimit       = 3
	GagGainPerTurn   = 2
	MaxDeckSize      = 20
)

// --- Enums ---

type Phase int

const (
	PhaseNone Phase = iota
	PhaseSpillTheTea
	PhaseWerkRoom
	PhaseSelectAttacker
	PhaseSelectDefender
	PhaseReveal
	PhaseResolution
	PhaseUntuck
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseSpillTheTea:
		return "Spill the Tea"
	case PhaseWerkRoom:
		return "Werk Room"
	case PhaseSelectAttacker:
		return "Lip Sync: Select Attacker"
	case PhaseSelectDefender:
		return "Lip Sync: Select Defender"
	case PhaseReveal:
		return "Lip Sync: Reveal"
	case PhaseResolution:
		return "Lip Sync: Resolution"
	case PhaseUntuck:
		return "Untuck"
	case PhaseGameOver:
		return "Game Over"
	default:
		return "None"
	}
}

// Key is the machine name of the phase, used by the phase graph and the
// wire protocols.
func (p Phase) Key() string {
	switch p {
	case PhaseSpillTheTea:
		return "spill_the_tea"
	case PhaseWerkRoom:
		return "werk_room"
	case PhaseSelectAttacker:
		return "select_attacker"
	case PhaseSelectDefender:
		return "select_defender"
	case PhaseReveal:
		return "reveal"
	case PhaseResolution:
		return "resolution"
	case PhaseUntuck:
		return "untuck"
	case PhaseGameOver:
		return "game_over"
	default:
		return "none"
	}
}

// Interactive reports whether the phase waits on a player decision.
func (p Phase) Interactive() bool {
	switch p {
	case PhaseWerkRoom, PhaseSelectAttacker, PhaseSelectDefender:
		return true
	}
	return false
}

// ParsePhase maps a phase key back to its Phase.
func ParsePhase(key string) (Phase, bool) {
	for p := PhaseSpillTheTea; p <= PhaseGameOver; p++ {
		if p.Key() == key {
			return p, true
		}
	}
	return PhaseNone, false
}

// Category is one of the four lip sync stats.
type Category int

const (
	CategoryNone Category = iota
	CategoryCharisma
	CategoryUniqueness
	CategoryNerve
	CategoryTalent
)

// Categories lists the lip sync categories in draw order.
var Categories = []Category{CategoryCharisma, CategoryUniqueness, CategoryNerve, CategoryTalent}

func (c Category) String() string {
	switch c {
	case CategoryCharisma:
		return "Charisma"
	case CategoryUniqueness:
		return "Uniqueness"
	case CategoryNerve:
		return "Nerve"
	case CategoryTalent:
		return "Talent"
	default:
		return "None"
	}
}

// ParseCategory accepts "Charisma", "charisma" and the like.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "Charisma", "charisma":
		return CategoryCharisma, nil
	case "Uniqueness", "uniqueness":
		return CategoryUniqueness, nil
	case "Nerve", "nerve":
		return CategoryNerve, nil
	case "Talent", "talent":
		return CategoryTalent, nil
	}
	return CategoryNone, fmt.Errorf("unknown category %q", s)
}

// Stats holds the four C.U.N.T. stats.
type Stats struct {
	Charisma   int `json:"charisma" yaml:"charisma"`
	Uniqueness int `json:"uniqueness" yaml:"uniqueness"`
	Nerve      int `json:"nerve" yaml:"nerve"`
	Talent     int `json:"talent" yaml:"talent"`
}

// Get returns the stat for a category, or 0 for CategoryNone.
func (s Stats) Get(c Category) int {
	switch c {
	case CategoryCharisma:
		return s.Charisma
	case CategoryUniqueness:
		return s.Uniqueness
	case CategoryNerve:
		return s.Nerve
	case CategoryTalent:
		return s.Talent
	}
	return 0
}

// With returns a copy of s with the category stat set to v.
func (s Stats) With(c Category, v int) Stats {
	switch c {
	case CategoryCharisma:
		s.Charisma = v
	case CategoryUniqueness:
		s.Uniqueness = v
	case CategoryNerve:
		s.Nerve = v
	case CategoryTalent:
		s.Talent = v
	}
	return s
}

func (s Stats) Add(o Stats) Stats {
	return Stats{
		Charisma:   s.Charisma + o.Charisma,
		Uniqueness: s.Uniqueness + o.Uniqueness,
		Nerve:      s.Nerve + o.Nerve,
		Talent:     s.Talent + o.Talent,
	}
}

// Floor clamps every stat at zero.
func (s Stats) Floor() Stats {
	for _, c := range Categories {
		if s.Get(c) < 0 {
			s = s.With(c, 0)
		}
	}
	return s
}

// Uniform returns stats with every category set to v.
func Uniform(v int) Stats {
	return Stats{Charisma: v, Uniqueness: v, Nerve: v, Talent: v}
}

func (s Stats) String() string {
	return fmt.Sprintf("%d/%d/%d/%d", s.Charisma, s.Uniqueness, s.Nerve, s.Talent)
}

// PlayerID identifies one of the two seats.
type PlayerID string

const (
	Player1 PlayerID = "player1"
	Player2 PlayerID = "player2"
)

// Opponent returns the other seat.
func (p PlayerID) Opponent() PlayerID {
	if p == Player1 {
		return Player2
	}
	return Player1
}

// Index maps the seat onto GameState.Players.
func (p PlayerID) Index() int {
	if p == Player2 {
		return 1
	}
	return 0
}

// Valid reports whether p names one of the two seats.
func (p PlayerID) Valid() bool {
	return p == Player1 || p == Player2
}

type CardKind int

const (
	KindQueen CardKind = iota
	KindEquipment
)

func (k CardKind) String() string {
	if k == KindEquipment {
		return "Equipment"
	}
	return "Queen"
}

// SelectionState distinguishes "not yet decided" from "decided: nobody".
type SelectionState int

const (
	SelectionUndecided SelectionState = iota
	SelectionNone
	SelectionQueen
)

// Selection is a lip sync participant choice.
type Selection struct {
	State SelectionState
	Queen int // instance id when State == SelectionQueen
}

var (
	Undecided = Selection{State: SelectionUndecided}
	NoQueen   = Selection{State: SelectionNone}
)

// Chose returns a selection of the given queen instance.
func Chose(id int) Selection {
	return Selection{State: SelectionQueen, Queen: id}
}

// IsQueen reports whether a queen is selected.
func (s Selection) IsQueen() bool { return s.State == SelectionQueen }

func (s Selection) String() string {
	switch s.State {
	case SelectionNone:
		return "none"
	case SelectionQueen:
		return fmt.Sprintf("#%d", s.Queen)
	default:
		return "undecided"
	}
}

// Outcome is who took a lip sync.
type Outcome int

const (
	OutcomeAttacker Outcome = iota
	OutcomeDefender
	OutcomeTie
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAttacker:
		return "attacker"
	case OutcomeDefender:
		return "defender"
	default:
		return "tie"
	}
}
