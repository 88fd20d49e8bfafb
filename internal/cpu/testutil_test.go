package cpu

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/peterkuimelis/werkroom/internal/game"
)

func queen(name string, cost int, power string) *game.CardDefinition {
	return &game.CardDefinition{ID: name, Name: name, Kind: game.KindQueen, Cost: cost, Stats: game.Uniform(5), PowerID: power}
}

func gear(name, typ string, cost int) *game.CardDefinition {
	return &game.CardDefinition{ID: name, Name: name, Kind: game.KindEquipment, Cost: cost, EquipmentType: typ, Boosts: game.Stats{Talent: 1}}
}

// table is a hand-built state for bot tests.
type table struct {
	t   *testing.T
	gs  *game.GameState
	ids *game.IDGenerator
}

func newTable(t *testing.T, phase game.Phase, turn game.PlayerID) *table {
	return &table{t: t, ids: game.NewIDGenerator(), gs: &game.GameState{
		Players: [2]*game.Player{
			{ID: game.Player1, Name: "Player 1", ShantayPoints: game.StartingShantay, GagTokens: game.StartingGag},
			{ID: game.Player2, Name: "CPU", ShantayPoints: game.StartingShantay, GagTokens: game.StartingGag},
		},
		CurrentTurn:      turn,
		Phase:            phase,
		TurnNumber:       1,
		SelectedAttacker: game.NoQueen,
		SelectedDefender: game.Undecided,
	}}
}

func (tb *table) hand(id game.PlayerID, def *game.CardDefinition) *game.CardInstance {
	c := tb.ids.NewInstance(def)
	p := tb.gs.Player(id)
	p.Hand = append(p.Hand, c)
	return c
}

func (tb *table) runway(id game.PlayerID, def *game.CardDefinition, ready bool) *game.CardInstance {
	q := tb.ids.NewInstance(def)
	q.CanAttack = ready
	p := tb.gs.Player(id)
	slot := p.Runway.FirstEmpty()
	if slot < 0 {
		tb.t.Fatalf("runway full for %s", id)
	}
	p.Runway[slot] = q
	return q
}

// checker answers CanActivatePower with a fixed error.
type checker struct{ err error }

func (c checker) CanActivatePower(*game.GameState, game.PlayerID, int) error { return c.err }

var errNope = errors.New("nope")

func seeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
