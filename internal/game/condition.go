package game

import (
	"fmt"
	"strings"
)

// Env is what a Condition is evaluated against.
type Env struct {
	State    *GameState
	Owner    PlayerID      // player owning the effect
	Queen    *CardInstance // queen carrying the effect, may be nil
	Opponent *CardInstance // opposing lip sync queen, may be nil
	Category Category      // lip sync category, CategoryNone outside lip syncs

	baseOnly bool // effective stats resolve to base stats
}

// Condition is a predicate over game state. Implementations form a small
// closed expression tree so effects stay data.
type Condition interface {
	Eval(env Env) bool
	String() string
}

// Holds evaluates c, treating a nil condition as satisfied.
func Holds(c Condition, env Env) bool {
	return c == nil || c.Eval(env)
}

// CategoryIn holds when the lip sync category is one of the listed ones.
type CategoryIn []Category

func (c CategoryIn) Eval(env Env) bool {
	for _, cat := range c {
		if env.Category == cat {
			return true
		}
	}
	return false
}

func (c CategoryIn) String() string {
	names := make([]string, len(c))
	for i, cat := range c {
		names[i] = cat.String()
	}
	return "category in [" + strings.Join(names, ", ") + "]"
}

// PhaseIs holds during the given phase.
type PhaseIs Phase

func (c PhaseIs) Eval(env Env) bool {
	return env.State != nil && env.State.Phase == Phase(c)
}

func (c PhaseIs) String() string { return "phase is " + Phase(c).String() }

// Subject names whose stats a StatCompare reads.
type Subject int

const (
	SubjectNone Subject = iota
	SubjectSelf
	SubjectSelfBase
	SubjectOpponent
	SubjectOpponentBase
)

func (s Subject) String() string {
	switch s {
	case SubjectSelf:
		return "self"
	case SubjectSelfBase:
		return "self base"
	case SubjectOpponent:
		return "opponent"
	case SubjectOpponentBase:
		return "opponent base"
	default:
		return "value"
	}
}

// Op is a comparison operator.
type Op int

const (
	OpGE Op = iota
	OpGT
	OpLE
	OpLT
	OpEQ
)

func (o Op) String() string {
	switch o {
	case OpGT:
		return ">"
	case OpLE:
		return "<="
	case OpLT:
		return "<"
	case OpEQ:
		return "=="
	default:
		return ">="
	}
}

// ParseOp maps ">=", ">" and friends onto an Op.
func ParseOp(s string) (Op, error) {
	switch s {
	case ">=", "":
		return OpGE, nil
	case ">":
		return OpGT, nil
	case "<=":
		return OpLE, nil
	case "<":
		return OpLT, nil
	case "==", "=":
		return OpEQ, nil
	}
	return OpGE, fmt.Errorf("unknown operator %q", s)
}

func (o Op) apply(a, b int) bool {
	switch o {
	case OpGT:
		return a > b
	case OpLE:
		return a <= b
	case OpLT:
		return a < b
	case OpEQ:
		return a == b
	default:
		return a >= b
	}
}

// StatCompare compares a stat of Subject with either a constant or the same
// stat of Against. Stat CategoryNone means the lip sync category.
type StatCompare struct {
	Subject Subject
	Stat    Category
	Op      Op
	Value   int
	Against Subject
}

func (c StatCompare) Eval(env Env) bool {
	stat := c.Stat
	if stat == CategoryNone {
		stat = env.Category
	}
	if stat == CategoryNone {
		return false
	}
	lhs, ok := env.stat(c.Subject, stat)
	if !ok {
		return false
	}
	rhs := c.Value
	if c.Against != SubjectNone {
		if rhs, ok = env.stat(c.Against, stat); !ok {
			return false
		}
	}
	return c.Op.apply(lhs, rhs)
}

func (c StatCompare) String() string {
	stat := "category"
	if c.Stat != CategoryNone {
		stat = c.Stat.String()
	}
	rhs := fmt.Sprint(c.Value)
	if c.Against != SubjectNone {
		rhs = c.Against.String()
	}
	return fmt.Sprintf("%s %s %s %s", c.Subject, stat, c.Op, rhs)
}

func (env Env) stat(s Subject, c Category) (int, bool) {
	switch s {
	case SubjectSelfBase:
		if env.Queen == nil {
			return 0, false
		}
		return env.Queen.OriginalStats.Get(c), true
	case SubjectSelf:
		if env.Queen == nil {
			return 0, false
		}
		if env.baseOnly || env.State == nil {
			return env.Queen.OriginalStats.Get(c), true
		}
		return env.State.EffectiveStats(env.Owner, env.Queen).Get(c), true
	case SubjectOpponentBase:
		if env.Opponent == nil {
			return 0, false
		}
		return env.Opponent.OriginalStats.Get(c), true
	case SubjectOpponent:
		if env.Opponent == nil {
			return 0, false
		}
		if env.baseOnly || env.State == nil {
			return env.Opponent.OriginalStats.Get(c), true
		}
		return env.State.EffectiveStats(env.Owner.Opponent(), env.Opponent).Get(c), true
	}
	return 0, false
}

// GagAtLeast holds when the owner has at least N gag tokens.
type GagAtLeast int

func (c GagAtLeast) Eval(env Env) bool {
	p := env.owner()
	return p != nil && p.GagTokens >= int(c)
}

func (c GagAtLeast) String() string { return fmt.Sprintf("gag >= %d", int(c)) }

// HandAtLeast holds when the owner holds at least N cards.
type HandAtLeast int

func (c HandAtLeast) Eval(env Env) bool {
	p := env.owner()
	return p != nil && len(p.Hand) >= int(c)
}

func (c HandAtLeast) String() string { return fmt.Sprintf("hand >= %d", int(c)) }

// RunwayCount holds when the owner has exactly N runway queens.
type RunwayCount int

func (c RunwayCount) Eval(env Env) bool {
	p := env.owner()
	return p != nil && p.Runway.Count() == int(c)
}

func (c RunwayCount) String() string { return fmt.Sprintf("runway == %d", int(c)) }

// EquipCountAtLeast holds when the queen has at least N equipment attached.
type EquipCountAtLeast int

func (c EquipCountAtLeast) Eval(env Env) bool {
	return env.Queen != nil && len(env.Queen.Equipment) >= int(c)
}

func (c EquipCountAtLeast) String() string { return fmt.Sprintf("equipment >= %d", int(c)) }

// OwnersTurn holds while the owner is the active player.
type OwnersTurn struct{}

func (OwnersTurn) Eval(env Env) bool {
	return env.State != nil && env.State.CurrentTurn == env.Owner
}

func (OwnersTurn) String() string { return "owner's turn" }

// OpponentHasFreeQueen holds when an opposing runway queen costs 0 gag.
type OpponentHasFreeQueen struct{}

func (OpponentHasFreeQueen) Eval(env Env) bool {
	if env.State == nil {
		return false
	}
	opp := env.State.Player(env.Owner.Opponent())
	if opp == nil {
		return false
	}
	for _, q := range opp.Runway.Queens() {
		if q.Def.Cost == 0 {
			return true
		}
	}
	return false
}

func (OpponentHasFreeQueen) String() string { return "opponent has a 0-cost queen" }

type All []Condition

func (c All) Eval(env Env) bool {
	for _, sub := range c {
		if !Holds(sub, env) {
			return false
		}
	}
	return true
}

func (c All) String() string { return joinConditions(c, " and ") }

type Any []Condition

func (c Any) Eval(env Env) bool {
	for _, sub := range c {
		if Holds(sub, env) {
			return true
		}
	}
	return false
}

func (c Any) String() string { return joinConditions(c, " or ") }

type Not struct{ C Condition }

func (c Not) Eval(env Env) bool { return !Holds(c.C, env) }

func (c Not) String() string {
	if c.C == nil {
		return "not (always)"
	}
	return "not (" + c.C.String() + ")"
}

func joinConditions(cs []Condition, sep string) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func (env Env) owner() *Player {
	if env.State == nil {
		return nil
	}
	return env.State.Player(env.Owner)
}
