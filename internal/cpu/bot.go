// Package cpu implements the computer opponent.
package cpu

import (
	"math/rand"

	"github.com/peterkuimelis/werkroom/internal/game"
)

// PowerChecker reports whether a runway queen's activated power can be used.
// *game.PowerManager satisfies it.
type PowerChecker interface {
	CanActivatePower(gs *game.GameState, owner game.PlayerID, queen int) error
}

// Move is one CPU decision. Actions are dispatched in order; a non-zero
// Power asks for that queen's activated power instead.
type Move struct {
	Actions []game.Action
	Power   int
}

// Advances reports whether the move ends with an AdvancePhase.
func (m Move) Advances() bool {
	if len(m.Actions) == 0 {
		return false
	}
	_, ok := m.Actions[len(m.Actions)-1].(game.AdvancePhase)
	return ok
}

// Bot plays one seat. In the Werk Room it plays the first affordable queen,
// then equips, then uses activated powers, and finally advances. Lip sync
// choices are uniformly random.
type Bot struct {
	Seat   game.PlayerID
	Rand   *rand.Rand   // nil means the global source
	Powers PowerChecker // nil disables power activation
}

func New(seat game.PlayerID, rng *rand.Rand, powers PowerChecker) *Bot {
	return &Bot{Seat: seat, Rand: rng, Powers: powers}
}

// Turn reports whether the bot has a decision to make in gs.
func (b *Bot) Turn(gs *game.GameState) bool {
	if gs == nil || gs.Over() {
		return false
	}
	switch gs.Phase {
	case game.PhaseWerkRoom, game.PhaseSelectAttacker:
		return gs.CurrentTurn == b.Seat
	case game.PhaseSelectDefender:
		return gs.CurrentTurn == b.Seat.Opponent()
	}
	return false
}

// Decide returns the bot's next move, or false when it is not the bot's
// decision.
func (b *Bot) Decide(gs *game.GameState) (Move, bool) {
	if !b.Turn(gs) {
		return Move{}, false
	}
	me := gs.Player(b.Seat)
	if me == nil {
		return Move{}, false
	}
	switch gs.Phase {
	case game.PhaseWerkRoom:
		return b.werkRoom(gs, me), true
	case game.PhaseSelectAttacker:
		var id int
		if ready := me.Runway.Ready(); len(ready) > 0 {
			id = ready[b.intn(len(ready))].ID
		}
		return advance(game.SelectAttacker{Queen: id}), true
	case game.PhaseSelectDefender:
		var id int
		if queens := me.Runway.Queens(); len(queens) > 0 {
			id = queens[b.intn(len(queens))].ID
		}
		return advance(game.SelectDefender{Queen: id}), true
	}
	return Move{}, false
}

func (b *Bot) werkRoom(gs *game.GameState, me *game.Player) Move {
	if me.Runway.Count() < game.MaxRunwayQueens {
		for _, c := range me.Hand {
			if c.Def.IsQueen() && c.Def.Cost <= me.GagTokens {
				return Move{Actions: []game.Action{game.PlayQueenCard{Player: b.Seat, Card: c.ID}}}
			}
		}
	}
	if eq, target := b.equipTarget(me); eq != nil {
		return Move{Actions: []game.Action{game.PlayEquipmentCard{Player: b.Seat, Card: eq.ID, Target: target.ID}}}
	}
	if b.Powers != nil {
		for _, q := range me.Runway.Queens() {
			pw := gs.PowerOf(q)
			if pw == nil || !pw.Activatable() {
				continue
			}
			if b.Powers.CanActivatePower(gs, b.Seat, q.ID) == nil {
				return Move{Power: q.ID}
			}
		}
	}
	return advance()
}

// equipTarget pairs the first affordable equipment in hand with the first
// runway queen lacking its type.
func (b *Bot) equipTarget(me *game.Player) (*game.CardInstance, *game.CardInstance) {
	for _, c := range me.Hand {
		if c.Def.Kind != game.KindEquipment || c.Def.Cost > me.GagTokens || me.Restricted(c.Def.EquipmentType) {
			continue
		}
		for _, q := range me.Runway.Queens() {
			if !q.HasEquipmentType(c.Def.EquipmentType) {
				return c, q
			}
		}
	}
	return nil, nil
}

func (b *Bot) intn(n int) int {
	if b.Rand == nil {
		return rand.Intn(n)
	}
	return b.Rand.Intn(n)
}

func advance(acts ...game.Action) Move {
	return Move{Actions: append(acts, game.AdvancePhase{})}
}
