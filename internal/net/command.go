package net

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/peterkuimelis/werkroom/internal/game"
	"github.com/peterkuimelis/werkroom/internal/log"
)

// Command ops.
const (
	OpPlay    = "play"    // play a queen from hand
	OpEquip   = "equip"   // attach equipment from hand to a runway queen
	OpUse     = "use"     // activate attached equipment
	OpPower   = "power"   // activate a queen power
	OpAttack  = "attack"  // select the attacker, queen 0 skips the lip sync
	OpDefend  = "defend"  // select the defender, queen 0 when the runway is empty
	OpAdvance = "advance" // end the current phase
)

var (
	ErrNotYourMove    = errors.New("not your move")
	ErrUnknownCommand = errors.New("unknown command")
	ErrRejected       = errors.New("rejected")
)

// Command is a player decision as sent over the wire. Card, Queen and
// Equipment are instance IDs.
type Command struct {
	Op        string `json:"op"`
	Card      int    `json:"card,omitempty"`
	Queen     int    `json:"queen,omitempty"`
	Equipment int    `json:"equipment,omitempty"`
}

func (c Command) String() string {
	switch c.Op {
	case OpPlay:
		return fmt.Sprintf("play %d", c.Card)
	case OpEquip:
		return fmt.Sprintf("equip %d %d", c.Card, c.Queen)
	case OpUse:
		return fmt.Sprintf("use %d %d", c.Queen, c.Equipment)
	case OpPower:
		return fmt.Sprintf("power %d", c.Queen)
	case OpAttack, OpDefend:
		if c.Queen == 0 {
			return c.Op + " none"
		}
		return fmt.Sprintf("%s %d", c.Op, c.Queen)
	default:
		return c.Op
	}
}

// ParseCommand reads a REPL line such as "play 12", "equip 14 3" or "end".
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty line", ErrUnknownCommand)
	}
	op, args := fields[0], fields[1:]
	ints := func(n int) ([]int, error) {
		if len(args) != n {
			return nil, fmt.Errorf("%s takes %d argument(s), got %d", op, n, len(args))
		}
		out := make([]int, n)
		for i, a := range args {
			v, err := strconv.Atoi(a)
			if err != nil || v < 0 {
				return nil, fmt.Errorf("%s: %q is not a card id", op, a)
			}
			out[i] = v
		}
		return out, nil
	}
	queenOrNone := func() (int, error) {
		if len(args) == 1 && (args[0] == "none" || args[0] == "skip") {
			return 0, nil
		}
		v, err := ints(1)
		if err != nil {
			return 0, err
		}
		return v[0], nil
	}

	switch op {
	case "play", "p":
		v, err := ints(1)
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpPlay, Card: v[0]}, nil
	case "equip", "e":
		v, err := ints(2)
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpEquip, Card: v[0], Queen: v[1]}, nil
	case "use", "u":
		v, err := ints(2)
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpUse, Queen: v[0], Equipment: v[1]}, nil
	case "power", "pow":
		v, err := ints(1)
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpPower, Queen: v[0]}, nil
	case "attack", "a":
		q, err := queenOrNone()
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpAttack, Queen: q}, nil
	case "skip":
		return Command{Op: OpAttack}, nil
	case "defend", "d":
		q, err := queenOrNone()
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpDefend, Queen: q}, nil
	case "end", "next", "advance", "n":
		return Command{Op: OpAdvance}, nil
	}
	return Command{}, fmt.Errorf("%w %q", ErrUnknownCommand, op)
}

// Game is the part of an engine a seat drives.
type Game interface {
	State() *game.GameState
	Dispatch(a game.Action) (*game.GameState, error)
	ActivatePower(owner game.PlayerID, queen int) (*game.GameState, error)
	CanActivatePower(owner game.PlayerID, queen int) error
}

// Mover returns the seat the game is waiting on, or "" during automatic
// phases.
func Mover(gs *game.GameState) game.PlayerID {
	if gs == nil || gs.Over() {
		return ""
	}
	switch gs.Phase {
	case game.PhaseWerkRoom, game.PhaseSelectAttacker:
		return gs.CurrentTurn
	case game.PhaseSelectDefender:
		return gs.CurrentTurn.Opponent()
	}
	return ""
}

// Apply performs cmd for seat. A command the rules refuse returns
// ErrRejected wrapping the log message.
func Apply(g Game, seat game.PlayerID, cmd Command) (*game.GameState, error) {
	prev := g.State()
	if Mover(prev) != seat {
		return prev, ErrNotYourMove
	}
	var (
		next *game.GameState
		err  error
	)
	switch cmd.Op {
	case OpPlay:
		next, err = g.Dispatch(game.PlayQueenCard{Player: seat, Card: cmd.Card})
	case OpEquip:
		next, err = g.Dispatch(game.PlayEquipmentCard{Player: seat, Card: cmd.Card, Target: cmd.Queen})
	case OpUse:
		next, err = g.Dispatch(game.ActivateEquipment{Player: seat, Queen: cmd.Queen, Equipment: cmd.Equipment})
	case OpPower:
		next, err = g.ActivatePower(seat, cmd.Queen)
	case OpAttack:
		next, err = g.Dispatch(game.SelectAttacker{Queen: cmd.Queen})
	case OpDefend:
		next, err = g.Dispatch(game.SelectDefender{Queen: cmd.Queen})
	case OpAdvance:
		next, err = g.Dispatch(game.AdvancePhase{})
	default:
		return prev, fmt.Errorf("%w %q", ErrUnknownCommand, cmd.Op)
	}
	if err != nil {
		return next, err
	}
	if ev, ok := firstSince(next, prev.Seq); ok && ev.Type == log.EventRejected {
		return next, fmt.Errorf("%w: %s", ErrRejected, ev.Details)
	}
	return next, nil
}

// firstSince returns the oldest log entry newer than seq.
func firstSince(gs *game.GameState, seq int) (log.GameEvent, bool) {
	for i := len(gs.Log) - 1; i >= 0; i-- {
		if gs.Log[i].Seq > seq {
			return gs.Log[i], true
		}
	}
	return log.GameEvent{}, false
}

// Options lists the commands seat can usefully send in gs. can reports
// whether a queen's activated power is available; nil skips powers.
func Options(gs *game.GameState, seat game.PlayerID, can func(queen int) error) []ActionView {
	if Mover(gs) != seat {
		return nil
	}
	var out []ActionView
	add := func(c Command, format string, args ...any) {
		out = append(out, ActionView{Command: c, Desc: fmt.Sprintf(format, args...)})
	}
	me := gs.Player(seat)

	switch gs.Phase {
	case game.PhaseWerkRoom:
		space := me.Runway.FirstEmpty() >= 0
		for _, c := range me.Hand {
			if c.Def.Cost > me.GagTokens {
				continue
			}
			if c.Def.IsQueen() {
				if space {
					add(Command{Op: OpPlay, Card: c.ID}, "Play %s (%d gag)", c.Name(), c.Def.Cost)
				}
				continue
			}
			if me.Restricted(c.Def.EquipmentType) {
				continue
			}
			for _, q := range me.Runway.Queens() {
				if !q.HasEquipmentType(c.Def.EquipmentType) {
					add(Command{Op: OpEquip, Card: c.ID, Queen: q.ID}, "Equip %s with %s (%d gag)", q.Name(), c.Name(), c.Def.Cost)
				}
			}
		}
		for _, q := range me.Runway.Queens() {
			for _, eq := range q.Equipment {
				if activatable(me, eq) {
					add(Command{Op: OpUse, Queen: q.ID, Equipment: eq.ID}, "Use %s on %s", eq.Name(), q.Name())
				}
			}
			if can != nil && can(q.ID) == nil {
				add(Command{Op: OpPower, Queen: q.ID}, "Activate %s's %s", q.Name(), q.Def.PowerName)
			}
		}
		add(Command{Op: OpAdvance}, "End Werk Room")

	case game.PhaseSelectAttacker:
		for _, q := range me.Runway.Ready() {
			if q.ID != gs.SelectedAttacker.Queen {
				add(Command{Op: OpAttack, Queen: q.ID}, "Attack with %s", q.Name())
			}
		}
		if atk := gs.Attacker(); atk != nil {
			add(Command{Op: OpAdvance}, "Send %s to the lip sync", atk.Name())
		} else {
			add(Command{Op: OpAdvance}, "Skip the lip sync")
		}

	case game.PhaseSelectDefender:
		queens := me.Runway.Queens()
		for _, q := range queens {
			if q.ID != gs.SelectedDefender.Queen {
				add(Command{Op: OpDefend, Queen: q.ID}, "Defend with %s", q.Name())
			}
		}
		if len(queens) == 0 && gs.SelectedDefender.State == game.SelectionUndecided {
			add(Command{Op: OpDefend}, "No defender")
		}
		if gs.SelectedDefender.State != game.SelectionUndecided {
			add(Command{Op: OpAdvance}, "Reveal the category")
		}
	}
	return out
}

// activatable reports whether eq has an unspent manual ability p can pay for.
func activatable(p *game.Player, eq *game.CardInstance) bool {
	for i, fx := range eq.Def.Effects {
		if fx.Trigger != game.TriggerActivate || (fx.OncePerGame && eq.EffectSpent(i)) {
			continue
		}
		if p.GagTokens >= fx.Cost.Gag && len(p.Hand) >= fx.Cost.Discard {
			return true
		}
	}
	return false
}
