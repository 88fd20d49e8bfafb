package game

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/peterkuimelis/werkroom/internal/log"
)

var testTime = time.Date(2024, 6, 1, 15, 4, 5, 0, time.UTC)

// newTestReducer returns a reducer with a fixed clock and seeded RNG.
func newTestReducer(seed int64) *Reducer {
	return &Reducer{Now: func() time.Time { return testTime }, Rand: rand.New(rand.NewSource(seed))}
}

// vanillaQueen creates a queen definition without a power.
func vanillaQueen(name string, cost int, s Stats) *CardDefinition {
	return &CardDefinition{ID: strings.ToUpper(strings.ReplaceAll(name, " ", "_")), Name: name, Kind: KindQueen, Cost: cost, Stats: s}
}

// powerQueen creates a queen definition carrying a built-in power.
func powerQueen(name string, cost int, s Stats, power string) *CardDefinition {
	def := vanillaQueen(name, cost, s)
	def.PowerID = power
	if pw := LookupPower(power); pw != nil {
		def.PowerName = pw.Name
		def.PowerText = pw.Text
	}
	return def
}

// equipment creates an equipment definition.
func equipment(name, typ string, cost int, boosts Stats, effects ...Effect) *CardDefinition {
	return &CardDefinition{ID: strings.ToUpper(strings.ReplaceAll(name, " ", "_")), Name: name, Kind: KindEquipment,
		Cost: cost, EquipmentType: typ, Boosts: boosts, Effects: effects}
}

// makeCatalog returns n numbered queens and m numbered equipment cards.
func makeCatalog(n, m int) (queens, equip []*CardDefinition) {
	for i := range n {
		queens = append(queens, vanillaQueen(fmt.Sprintf("Queen %02d", i), 1+i%4, Stats{Charisma: 3 + i%5, Uniqueness: 4, Nerve: 2 + i%3, Talent: 5}))
	}
	for i := range m {
		equip = append(equip, equipment(fmt.Sprintf("Gear %02d", i), fmt.Sprintf("Type%d", i%4), 1, Stats{Talent: 1}))
	}
	return queens, equip
}

// board is a hand-built game state for focused reducer tests.
type board struct {
	t   *testing.T
	gs  *GameState
	ids *IDGenerator
}

func newBoard(t *testing.T, phase Phase) *board {
	b := &board{t: t, ids: NewIDGenerator()}
	b.gs = &GameState{
		Players: [2]*Player{
			{ID: Player1, Name: "Player 1", ShantayPoints: StartingShantay, GagTokens: StartingGag},
			{ID: Player2, Name: "CPU", ShantayPoints: StartingShantay, GagTokens: StartingGag},
		},
		CurrentTurn:      Player1,
		Phase:            phase,
		TurnNumber:       1,
		SelectedAttacker: NoQueen,
		SelectedDefender: Undecided,
	}
	return b
}

// hand puts a card into a player's hand.
func (b *board) hand(id PlayerID, def *CardDefinition) *CardInstance {
	c := b.ids.NewInstance(def)
	p := b.gs.Player(id)
	p.Hand = append(p.Hand, c)
	return c
}

// deck puts a card on top of a player's deck.
func (b *board) deck(id PlayerID, def *CardDefinition) *CardInstance {
	c := b.ids.NewInstance(def)
	p := b.gs.Player(id)
	p.Deck = append(p.Deck, c)
	return c
}

// runway puts a ready queen on the first free slot.
func (b *board) runway(id PlayerID, def *CardDefinition, equip ...*CardDefinition) *CardInstance {
	q := b.ids.NewInstance(def)
	q.CanAttack = true
	for _, e := range equip {
		q.Equipment = append(q.Equipment, b.ids.NewInstance(e))
	}
	p := b.gs.Player(id)
	slot := p.Runway.FirstEmpty()
	if slot < 0 {
		b.t.Fatalf("runway full for %s", id)
	}
	p.Runway[slot] = q
	return q
}

// battle sets up the selections for a lip sync in the given phase.
func (b *board) battle(phase Phase, atk, def *CardInstance, cat Category) {
	b.gs.Phase = phase
	b.gs.SelectedAttacker = Chose(atk.ID)
	if def != nil {
		b.gs.SelectedDefender = Chose(def.ID)
	} else {
		b.gs.SelectedDefender = NoQueen
	}
	b.gs.LipSyncCategory = cat
}

// reduceAll applies actions in order, returning the final state.
func reduceAll(r *Reducer, gs *GameState, actions ...Action) *GameState {
	for _, a := range actions {
		gs = r.Reduce(gs, a)
	}
	return gs
}

// logContains reports whether any log entry contains substr.
func logContains(gs *GameState, substr string) bool {
	for _, e := range gs.Log {
		if strings.Contains(e.Details, substr) {
			return true
		}
	}
	return false
}

func eventsOfType(gs *GameState, t log.EventType) []log.GameEvent {
	var out []log.GameEvent
	for _, e := range gs.Log {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func dumpLog(t *testing.T, gs *GameState) {
	t.Helper()
	for i := len(gs.Log) - 1; i >= 0; i-- {
		t.Logf("%s", log.FormatEvent(gs.Log[i]))
	}
}

// sameExceptLog reports whether two states are identical apart from the log.
func sameExceptLog(a, b *GameState) bool {
	if (a.LipSyncResult == nil) != (b.LipSyncResult == nil) {
		return false
	}
	if a.LipSyncResult != nil && *a.LipSyncResult != *b.LipSyncResult {
		return false
	}
	return a.Players == b.Players &&
		a.CurrentTurn == b.CurrentTurn &&
		a.Phase == b.Phase &&
		a.TurnNumber == b.TurnNumber &&
		a.Winner == b.Winner &&
		a.SelectedAttacker == b.SelectedAttacker &&
		a.SelectedDefender == b.SelectedDefender &&
		a.LipSyncCategory == b.LipSyncCategory
}

// checkInvariants asserts the board rules that must hold after any action.
func checkInvariants(t *testing.T, gs *GameState) {
	t.Helper()
	if err := gs.Validate(); err != nil {
		t.Errorf("invariant violated: %v", err)
	}
}
