package catalog

import (
	"errors"
	"fmt"

	"github.com/peterkuimelis/werkroom/internal/game"
)

// EffectEntry is one equipment effect as written in a catalog file.
type EffectEntry struct {
	Trigger     string          `yaml:"trigger"`
	Action      string          `yaml:"action"`
	Amount      int             `yaml:"amount,omitempty"`
	Stats       game.Stats      `yaml:"stats,omitempty"`
	Stat        string          `yaml:"stat,omitempty"`
	Type        string          `yaml:"type,omitempty"` // equipment type for restrict
	Target      string          `yaml:"target,omitempty"`
	Cost        CostEntry       `yaml:"cost,omitempty"`
	OncePerGame bool            `yaml:"once_per_game,omitempty"`
	Condition   *ConditionEntry `yaml:"condition,omitempty"`
}

type CostEntry struct {
	Gag     int `yaml:"gag,omitempty"`
	Discard int `yaml:"discard,omitempty"`
}

// ConditionEntry is a node of a condition tree. Exactly one field is set.
type ConditionEntry struct {
	Category          []string          `yaml:"category,omitempty"`
	Phase             string            `yaml:"phase,omitempty"`
	Stat              *StatCompareEntry `yaml:"stat,omitempty"`
	GagAtLeast        *int              `yaml:"gag_at_least,omitempty"`
	HandAtLeast       *int              `yaml:"hand_at_least,omitempty"`
	RunwayCount       *int              `yaml:"runway_count,omitempty"`
	EquipmentAtLeast  *int              `yaml:"equipment_at_least,omitempty"`
	OwnersTurn        bool              `yaml:"owners_turn,omitempty"`
	OpponentFreeQueen bool              `yaml:"opponent_free_queen,omitempty"`
	All               []ConditionEntry  `yaml:"all,omitempty"`
	Any               []ConditionEntry  `yaml:"any,omitempty"`
	Not               *ConditionEntry   `yaml:"not,omitempty"`
}

// StatCompareEntry compares a stat of Subject with Value or with the same
// stat of Against. An empty Stat means the lip sync category.
type StatCompareEntry struct {
	Subject string `yaml:"subject"`
	Stat    string `yaml:"stat,omitempty"`
	Op      string `yaml:"op,omitempty"`
	Value   int    `yaml:"value,omitempty"`
	Against string `yaml:"against,omitempty"`
}

var errEmptyCondition = errors.New("empty condition")

// Effect converts the entry into a game effect.
func (e EffectEntry) Effect() (game.Effect, error) {
	trig, err := game.ParseTrigger(e.Trigger)
	if err != nil {
		return game.Effect{}, err
	}
	target, err := parseTarget(e.Target)
	if err != nil {
		return game.Effect{}, err
	}
	if e.Cost.Gag < 0 || e.Cost.Discard < 0 {
		return game.Effect{}, fmt.Errorf("negative cost %+v", e.Cost)
	}
	act, err := e.action(trig)
	if err != nil {
		return game.Effect{}, err
	}
	out := game.Effect{
		Trigger:     trig,
		Action:      act,
		Target:      target,
		Cost:        game.EffectCost{Gag: e.Cost.Gag, Discard: e.Cost.Discard},
		OncePerGame: e.OncePerGame,
	}
	if e.Condition != nil {
		if out.Condition, err = e.Condition.Condition(); err != nil {
			return game.Effect{}, fmt.Errorf("condition: %w", err)
		}
	}
	return out, nil
}

func (e EffectEntry) action(trig game.Trigger) (game.EffectAction, error) {
	switch e.Action {
	case "add_stat":
		if trig != game.TriggerAlways {
			return nil, fmt.Errorf("add_stat needs trigger always, got %s", trig)
		}
		return game.AddStat{Stats: e.Stats}, nil
	case "add_score":
		return game.AddScore{Amount: e.Amount}, nil
	case "add_gag":
		return game.AddGag{Amount: e.Amount}, nil
	case "draw":
		return game.DrawCards{Count: e.Amount}, nil
	case "add_shade":
		return game.AddShade{Amount: e.Amount}, nil
	case "remove_shade":
		return game.RemoveShade{Amount: e.Amount}, nil
	case "prevent":
		if trig != game.TriggerShade && trig != game.TriggerElimination {
			return nil, fmt.Errorf("prevent needs trigger shade or elimination, got %s", trig)
		}
		return game.Prevent{}, nil
	case "reduce_shade":
		if trig != game.TriggerShade {
			return nil, fmt.Errorf("reduce_shade needs trigger shade, got %s", trig)
		}
		return game.ReduceShade{Amount: e.Amount}, nil
	case "extend_shade_limit":
		return game.ExtendShadeLimit{Amount: e.Amount}, nil
	case "protect_stat":
		c, err := game.ParseCategory(e.Stat)
		if err != nil {
			return nil, err
		}
		return game.ProtectStat{Stat: c}, nil
	case "restrict":
		if e.Type == "" {
			return nil, errors.New("restrict needs an equipment type")
		}
		return game.RestrictEquipment{Type: e.Type}, nil
	case "":
		return nil, errors.New("missing action")
	}
	return nil, fmt.Errorf("unknown action %q", e.Action)
}

func parseTarget(s string) (game.Target, error) {
	switch s {
	case "", "self":
		return game.TargetSelf, nil
	case "opponent":
		return game.TargetOpponent, nil
	}
	return game.TargetSelf, fmt.Errorf("unknown target %q", s)
}

// Condition converts the node into a game condition.
func (c ConditionEntry) Condition() (game.Condition, error) {
	var out []game.Condition
	add := func(cond game.Condition) { out = append(out, cond) }

	if len(c.Category) > 0 {
		cats := make(game.CategoryIn, 0, len(c.Category))
		for _, s := range c.Category {
			cat, err := game.ParseCategory(s)
			if err != nil {
				return nil, err
			}
			cats = append(cats, cat)
		}
		add(cats)
	}
	if c.Phase != "" {
		p, ok := game.ParsePhase(c.Phase)
		if !ok {
			return nil, fmt.Errorf("unknown phase %q", c.Phase)
		}
		add(game.PhaseIs(p))
	}
	if c.Stat != nil {
		sc, err := c.Stat.compare()
		if err != nil {
			return nil, err
		}
		add(sc)
	}
	if c.GagAtLeast != nil {
		add(game.GagAtLeast(*c.GagAtLeast))
	}
	if c.HandAtLeast != nil {
		add(game.HandAtLeast(*c.HandAtLeast))
	}
	if c.RunwayCount != nil {
		add(game.RunwayCount(*c.RunwayCount))
	}
	if c.EquipmentAtLeast != nil {
		add(game.EquipCountAtLeast(*c.EquipmentAtLeast))
	}
	if c.OwnersTurn {
		add(game.OwnersTurn{})
	}
	if c.OpponentFreeQueen {
		add(game.OpponentHasFreeQueen{})
	}
	if len(c.All) > 0 {
		subs, err := conditions(c.All)
		if err != nil {
			return nil, err
		}
		add(game.All(subs))
	}
	if len(c.Any) > 0 {
		subs, err := conditions(c.Any)
		if err != nil {
			return nil, err
		}
		add(game.Any(subs))
	}
	if c.Not != nil {
		sub, err := c.Not.Condition()
		if err != nil {
			return nil, err
		}
		add(game.Not{C: sub})
	}

	switch len(out) {
	case 0:
		return nil, errEmptyCondition
	case 1:
		return out[0], nil
	}
	return nil, fmt.Errorf("condition node sets %d keys, want 1 (use all: to combine)", len(out))
}

func conditions(entries []ConditionEntry) ([]game.Condition, error) {
	out := make([]game.Condition, len(entries))
	for i, e := range entries {
		c, err := e.Condition()
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func (s StatCompareEntry) compare() (game.StatCompare, error) {
	var out game.StatCompare
	var err error
	if out.Subject, err = parseSubject(s.Subject); err != nil {
		return out, err
	}
	if out.Subject == game.SubjectNone {
		return out, errors.New("stat comparison needs a subject")
	}
	if s.Stat != "" {
		if out.Stat, err = game.ParseCategory(s.Stat); err != nil {
			return out, err
		}
	}
	if out.Op, err = game.ParseOp(s.Op); err != nil {
		return out, err
	}
	out.Value = s.Value
	if out.Against, err = parseSubject(s.Against); err != nil {
		return out, err
	}
	return out, nil
}

func parseSubject(s string) (game.Subject, error) {
	switch s {
	case "":
		return game.SubjectNone, nil
	case "self":
		return game.SubjectSelf, nil
	case "self_base":
		return game.SubjectSelfBase, nil
	case "opponent":
		return game.SubjectOpponent, nil
	case "opponent_base":
		return game.SubjectOpponentBase, nil
	}
	return game.SubjectNone, fmt.Errorf("unknown subject %q", s)
}
