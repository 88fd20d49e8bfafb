package game

import (
	"fmt"
	"strings"
)

// Trigger is the point in the game at which an equipment effect fires.
type Trigger int

const (
	TriggerAlways       Trigger = iota // folded into stats and limits while attached
	TriggerOnPlay                      // when the equipment is attached
	TriggerActivate                    // manual activation in the Werk Room
	TriggerLipSyncScore                // while a lip sync score is computed
	TriggerLipSyncWin                  // when the wearer wins a lip sync
	TriggerShade                       // when the wearer would receive shade
	TriggerElimination                 // when the wearer would be read for filth
)

func (t Trigger) String() string {
	switch t {
	case TriggerAlways:
		return "always"
	case TriggerOnPlay:
		return "on_play"
	case TriggerActivate:
		return "activate"
	case TriggerLipSyncScore:
		return "lip_sync_score"
	case TriggerLipSyncWin:
		return "lip_sync_win"
	case TriggerShade:
		return "shade"
	case TriggerElimination:
		return "elimination"
	default:
		return "unknown"
	}
}

// ParseTrigger maps a trigger name onto its Trigger.
func ParseTrigger(s string) (Trigger, error) {
	for t := TriggerAlways; t <= TriggerElimination; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return TriggerAlways, fmt.Errorf("unknown trigger %q", s)
}

// Target is the side an effect acts on.
type Target int

const (
	TargetSelf Target = iota
	TargetOpponent
)

func (t Target) String() string {
	if t == TargetOpponent {
		return "opponent"
	}
	return "self"
}

// EffectCost is paid before an effect applies. An unaffordable effect does
// not fire.
type EffectCost struct {
	Gag     int
	Discard int // cards discarded from hand, oldest first
}

func (c EffectCost) IsZero() bool { return c.Gag == 0 && c.Discard == 0 }

func (c EffectCost) String() string {
	var parts []string
	if c.Gag > 0 {
		parts = append(parts, fmt.Sprintf("%d gag", c.Gag))
	}
	if c.Discard > 0 {
		parts = append(parts, fmt.Sprintf("discard %d", c.Discard))
	}
	if len(parts) == 0 {
		return "free"
	}
	return strings.Join(parts, ", ")
}

// affordable reports whether p can pay c.
func (c EffectCost) affordable(p *Player) bool {
	return p.GagTokens >= c.Gag && len(p.Hand) >= c.Discard
}

// Effect is one declarative equipment ability.
type Effect struct {
	Trigger     Trigger
	Condition   Condition // nil means unconditional
	Action      EffectAction
	Target      Target
	Cost        EffectCost
	OncePerGame bool
}

func (e Effect) String() string {
	s := fmt.Sprintf("%s: %s", e.Trigger, e.Action)
	if e.Condition != nil {
		s += " if " + e.Condition.String()
	}
	if !e.Cost.IsZero() {
		s += " (" + e.Cost.String() + ")"
	}
	if e.OncePerGame {
		s += " once per game"
	}
	return s
}

// EffectAction is the closed set of things an equipment effect can do.
type EffectAction interface {
	effectAction()
	String() string
}

// AddStat adds stats to the wearer (always effects only).
type AddStat struct{ Stats Stats }

// AddScore adds to the wearer's performance score.
type AddScore struct{ Amount int }

// AddGag gives the owner gag tokens.
type AddGag struct{ Amount int }

// DrawCards draws for the owner.
type DrawCards struct{ Count int }

// AddShade gives shade tokens to the opposing lip sync queen.
type AddShade struct{ Amount int }

// RemoveShade removes shade tokens from the wearer.
type RemoveShade struct{ Amount int }

// Prevent cancels the pending shade or elimination.
type Prevent struct{}

// ReduceShade lowers the number of pending shade tokens.
type ReduceShade struct{ Amount int }

// ExtendShadeLimit raises the wearer's shade limit.
type ExtendShadeLimit struct{ Amount int }

// ProtectStat makes a stat immune to reductions from the opponent.
type ProtectStat struct{ Stat Category }

// RestrictEquipment bars the opponent from attaching a type until their
// next Untuck.
type RestrictEquipment struct{ Type string }

func (AddStat) effectAction()           {}
func (AddScore) effectAction()          {}
func (AddGag) effectAction()            {}
func (DrawCards) effectAction()         {}
func (AddShade) effectAction()          {}
func (RemoveShade) effectAction()       {}
func (Prevent) effectAction()           {}
func (ReduceShade) effectAction()       {}
func (ExtendShadeLimit) effectAction()  {}
func (ProtectStat) effectAction()       {}
func (RestrictEquipment) effectAction() {}

func (a AddStat) String() string           { return fmt.Sprintf("+%s stats", a.Stats) }
func (a AddScore) String() string          { return fmt.Sprintf("+%d score", a.Amount) }
func (a AddGag) String() string            { return fmt.Sprintf("+%d gag", a.Amount) }
func (a DrawCards) String() string         { return fmt.Sprintf("draw %d", a.Count) }
func (a AddShade) String() string          { return fmt.Sprintf("+%d shade", a.Amount) }
func (a RemoveShade) String() string       { return fmt.Sprintf("-%d shade", a.Amount) }
func (Prevent) String() string             { return "prevent" }
func (a ReduceShade) String() string       { return fmt.Sprintf("reduce shade by %d", a.Amount) }
func (a ExtendShadeLimit) String() string  { return fmt.Sprintf("+%d shade limit", a.Amount) }
func (a ProtectStat) String() string       { return "protect " + a.Stat.String() }
func (a RestrictEquipment) String() string { return "restrict " + a.Type }

// --- Derived values ---

// EffectiveStats returns a runway queen's stats: base, plus equipment
// boosts and always-effects, plus modifiers. Opponent reductions on
// protected stats are ignored. Every stat is floored at zero.
func (gs *GameState) EffectiveStats(owner PlayerID, q *CardInstance) Stats {
	s := q.OriginalStats
	base := Env{State: gs, Owner: owner, Queen: q, baseOnly: true}
	for _, eq := range q.Equipment {
		s = s.Add(eq.Def.Boosts)
		for _, e := range eq.Def.Effects {
			add, ok := e.Action.(AddStat)
			if ok && e.Trigger == TriggerAlways && Holds(e.Condition, base) {
				s = s.Add(add.Stats)
			}
		}
	}
	if len(q.Modifiers) == 0 {
		return s.Floor()
	}
	protected := gs.protectedStats(owner, q)
	for _, m := range q.Modifiers {
		delta := m.Delta
		if m.From != owner {
			for _, c := range protected {
				if delta.Get(c) < 0 {
					delta = delta.With(c, 0)
				}
			}
		}
		s = s.Add(delta)
	}
	return s.Floor()
}

// Score returns a queen's lip sync score in a category before
// performance bonuses.
func (gs *GameState) Score(owner PlayerID, q *CardInstance, c Category) int {
	if q == nil {
		return 0
	}
	return gs.EffectiveStats(owner, q).Get(c)
}

func (gs *GameState) protectedStats(owner PlayerID, q *CardInstance) []Category {
	var out []Category
	base := Env{State: gs, Owner: owner, Queen: q, baseOnly: true}
	for _, eq := range q.Equipment {
		for _, e := range eq.Def.Effects {
			if p, ok := e.Action.(ProtectStat); ok && e.Trigger == TriggerAlways && Holds(e.Condition, base) {
				out = append(out, p.Stat)
			}
		}
	}
	if pw := gs.PowerOf(q); pw != nil {
		for _, ab := range pw.Abilities {
			if ab.Trigger != PowerAlways {
				continue
			}
			for _, fx := range ab.Effects {
				if fx.Kind == PowerProtectStat {
					out = append(out, fx.Stat)
				}
			}
		}
	}
	return out
}

// ShadeLimitOf returns how many shade tokens eliminate the queen: the
// default limit, plus equipment extensions, plus passive powers of the
// opponent's runway queens.
func (gs *GameState) ShadeLimitOf(owner PlayerID, q *CardInstance) int {
	limit := ShadeLimit
	base := Env{State: gs, Owner: owner, Queen: q, baseOnly: true}
	for _, eq := range q.Equipment {
		for _, e := range eq.Def.Effects {
			if ext, ok := e.Action.(ExtendShadeLimit); ok && e.Trigger == TriggerAlways && Holds(e.Condition, base) {
				limit += ext.Amount
			}
		}
	}
	if opp := gs.Player(owner.Opponent()); opp != nil {
		for _, oq := range opp.Runway.Queens() {
			pw := gs.PowerOf(oq)
			if pw == nil {
				continue
			}
			for _, ab := range pw.Abilities {
				if ab.Trigger != PowerAlways {
					continue
				}
				for _, fx := range ab.Effects {
					if fx.Kind == PowerOpponentShadeLimit {
						limit += fx.Amount
					}
				}
			}
		}
	}
	return limit
}
