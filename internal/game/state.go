package game

import (
	"errors"
	"fmt"
	"slices"

	"github.com/peterkuimelis/werkroom/internal/log"
)

// Runway is the fixed set of queen slots. It is the only place runway
// queens are stored; flat views are derived on demand.
type Runway [MaxRunwayQueens]*CardInstance

// Queens returns the occupied slots in slot order.
func (r Runway) Queens() []*CardInstance {
	var result []*CardInstance
	for _, q := range r {
		if q != nil {
			result = append(result, q)
		}
	}
	return result
}

// Count returns the number of queens on the runway.
func (r Runway) Count() int {
	count := 0
	for _, q := range r {
		if q != nil {
			count++
		}
	}
	return count
}

// FirstEmpty returns the index of the first empty slot, or -1.
func (r Runway) FirstEmpty() int {
	for i, q := range r {
		if q == nil {
			return i
		}
	}
	return -1
}

// Find returns the queen with the given instance ID and its slot, or nil, -1.
func (r Runway) Find(id int) (*CardInstance, int) {
	if id == 0 {
		return nil, -1
	}
	for i, q := range r {
		if q != nil && q.ID == id {
			return q, i
		}
	}
	return nil, -1
}

// Ready returns the queens that can attack this turn.
func (r Runway) Ready() []*CardInstance {
	var result []*CardInstance
	for _, q := range r {
		if q != nil && q.CanAttack {
			result = append(result, q)
		}
	}
	return result
}

// Restriction bars a player from attaching an equipment type until they
// next leave Untuck.
type Restriction struct {
	EquipmentType string
	Source        string
}

// Player represents one player's entire state.
type Player struct {
	ID            PlayerID
	Name          string
	ShantayPoints int
	GagTokens     int
	Deck          []*CardInstance // top of deck is last element (pop from end)
	Hand          []*CardInstance
	Discard       []*CardInstance
	Runway        Runway
	Restrictions  []Restriction
}

// Clone copies the player and its zone slices. Card instances are shared.
func (p *Player) Clone() *Player {
	c := *p
	c.Deck = slices.Clone(p.Deck)
	c.Hand = slices.Clone(p.Hand)
	c.Discard = slices.Clone(p.Discard)
	c.Restrictions = slices.Clone(p.Restrictions)
	return &c
}

// FindInHand returns a card in hand by instance ID and its index, or nil, -1.
func (p *Player) FindInHand(id int) (*CardInstance, int) {
	for i, c := range p.Hand {
		if c.ID == id {
			return c, i
		}
	}
	return nil, -1
}

// Restricted reports whether the player may not attach equipment of type t.
func (p *Player) Restricted(t string) bool {
	for _, r := range p.Restrictions {
		if r.EquipmentType == t {
			return true
		}
	}
	return false
}

// GameState is an immutable snapshot of a game. Only the Reducer produces
// new states; states it returns share unchanged players and cards.
type GameState struct {
	Players     [2]*Player
	CurrentTurn PlayerID
	Phase       Phase
	TurnNumber  int
	Winner      PlayerID // empty until the game is over

	SelectedAttacker Selection
	SelectedDefender Selection
	LipSyncCategory  Category
	LipSyncResult    *LipSyncResult

	Log []log.GameEvent // newest first, capped at log.MaxEntries
	Seq int             // sequence number of the newest log entry

	Registry *PowerRegistry // resolves queen powers; the built-in Powers when nil
}

// PowerOf returns the power of a queen, or nil for vanilla queens.
func (gs *GameState) PowerOf(q *CardInstance) *Power {
	if q == nil || q.Def == nil {
		return nil
	}
	reg := gs.Registry
	if reg == nil {
		reg = Powers
	}
	return reg.Lookup(q.Def.PowerID)
}

// Player returns the player in the given seat, or nil.
func (gs *GameState) Player(id PlayerID) *Player {
	if !id.Valid() {
		return nil
	}
	return gs.Players[id.Index()]
}

// Active returns the player whose turn it is.
func (gs *GameState) Active() *Player {
	return gs.Player(gs.CurrentTurn)
}

// Defending returns the player not taking the current turn.
func (gs *GameState) Defending() *Player {
	return gs.Player(gs.CurrentTurn.Opponent())
}

// Over reports whether the game has a winner.
func (gs *GameState) Over() bool {
	return gs.Winner != ""
}

// FindQueen locates a runway queen on either side.
func (gs *GameState) FindQueen(id int) (*Player, *CardInstance) {
	for _, p := range gs.Players {
		if p == nil {
			continue
		}
		if q, _ := p.Runway.Find(id); q != nil {
			return p, q
		}
	}
	return nil, nil
}

// Attacker returns the selected attacking queen, or nil.
func (gs *GameState) Attacker() *CardInstance {
	if !gs.SelectedAttacker.IsQueen() || gs.Active() == nil {
		return nil
	}
	q, _ := gs.Active().Runway.Find(gs.SelectedAttacker.Queen)
	return q
}

// Defender returns the selected defending queen, or nil.
func (gs *GameState) Defender() *CardInstance {
	if !gs.SelectedDefender.IsQueen() || gs.Defending() == nil {
		return nil
	}
	q, _ := gs.Defending().Runway.Find(gs.SelectedDefender.Queen)
	return q
}

// RunwaySlot is a derived view of one runway position.
type RunwaySlot struct {
	Index     int
	Queen     *CardInstance // nil when empty
	Stats     Stats         // effective stats, zero when empty
	Equipment []*CardInstance
	Limit     int // effective shade limit
}

// Slots returns the derived slot view of a player's runway.
func (gs *GameState) Slots(id PlayerID) []RunwaySlot {
	p := gs.Player(id)
	if p == nil {
		return nil
	}
	slots := make([]RunwaySlot, MaxRunwayQueens)
	for i, q := range p.Runway {
		slots[i].Index = i
		if q == nil {
			continue
		}
		slots[i].Queen = q
		slots[i].Stats = gs.EffectiveStats(id, q)
		slots[i].Equipment = q.Equipment
		slots[i].Limit = gs.ShadeLimitOf(id, q)
	}
	return slots
}

// Validate checks the rules every reachable state obeys: resource bounds,
// runway capacity, one equipment per type, every instance in exactly one
// zone, and a game over phase once there is a winner.
func (gs *GameState) Validate() error {
	var errs []error
	seen := map[int]string{}
	for _, p := range gs.Players {
		if p == nil {
			return errors.New("missing player")
		}
		if p.ShantayPoints < 0 {
			errs = append(errs, fmt.Errorf("%s shantay %d below zero", p.ID, p.ShantayPoints))
		}
		if p.GagTokens < 0 || p.GagTokens > MaxGag {
			errs = append(errs, fmt.Errorf("%s gag %d out of range", p.ID, p.GagTokens))
		}
		zones := []struct {
			name  string
			cards []*CardInstance
		}{{"deck", p.Deck}, {"hand", p.Hand}, {"discard", p.Discard}, {"runway", p.Runway.Queens()}}
		for _, z := range zones {
			for _, c := range z.cards {
				where := string(p.ID) + "/" + z.name
				if prev, dup := seen[c.ID]; dup {
					errs = append(errs, fmt.Errorf("instance %d in %s and %s", c.ID, prev, where))
				}
				seen[c.ID] = where
			}
		}
		for _, q := range p.Runway.Queens() {
			types := map[string]bool{}
			for _, eq := range q.Equipment {
				if types[eq.Def.EquipmentType] {
					errs = append(errs, fmt.Errorf("%s wears two %s", q.Name(), eq.Def.EquipmentType))
				}
				types[eq.Def.EquipmentType] = true
				if prev, dup := seen[eq.ID]; dup {
					errs = append(errs, fmt.Errorf("instance %d in %s and on %s", eq.ID, prev, q.Name()))
				}
				seen[eq.ID] = q.Name()
			}
		}
	}
	if gs.Over() && gs.Phase != PhaseGameOver {
		errs = append(errs, fmt.Errorf("winner %s but phase %s", gs.Winner, gs.Phase))
	}
	if len(gs.Log) > log.MaxEntries {
		errs = append(errs, fmt.Errorf("log has %d entries", len(gs.Log)))
	}
	return errors.Join(errs...)
}
