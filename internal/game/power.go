package game

import "fmt"

// PowerTrigger is the game event a queen power responds to.
type PowerTrigger int

const (
	PowerAlways        PowerTrigger = iota // passive rule read by the reducer
	PowerOnPlay                            // queen played to the runway
	PowerLipSyncStart                      // category revealed with the queen in the lip sync
	PowerLipSyncWin                        // queen won a lip sync
	PowerLipSyncLose                       // queen lost a lip sync
	PowerWouldShade                        // queen is about to receive shade (reducer)
	PowerWouldEliminate                    // queen is about to be read for filth (reducer)
	PowerEliminated                        // queen was read for filth
	PowerPhaseChange                       // a new phase began
	PowerActivate                          // manual activation
)

func (t PowerTrigger) String() string {
	switch t {
	case PowerAlways:
		return "ALWAYS"
	case PowerOnPlay:
		return "ON_PLAY"
	case PowerLipSyncStart:
		return "ON_LIP_SYNC_START"
	case PowerLipSyncWin:
		return "ON_LIP_SYNC_WIN"
	case PowerLipSyncLose:
		return "ON_LIP_SYNC_LOSE"
	case PowerWouldShade:
		return "ON_SHADE"
	case PowerWouldEliminate:
		return "ON_WOULD_ELIMINATE"
	case PowerEliminated:
		return "ON_ELIMINATION"
	case PowerPhaseChange:
		return "ON_PHASE_CHANGE"
	case PowerActivate:
		return "ON_ACTIVATE"
	default:
		return "UNKNOWN"
	}
}

// inReducer reports whether abilities on this trigger are resolved inside
// the reducer rather than dispatched by the PowerManager.
func (t PowerTrigger) inReducer() bool {
	return t == PowerAlways || t == PowerWouldShade || t == PowerWouldEliminate
}

// PowerMode says how an ability is started.
type PowerMode int

const (
	ModePassive   PowerMode = iota // applies whenever its condition holds
	ModeReactive                   // applies when the trigger fires and it can be paid for
	ModeActivated                  // applies only through ActivatePower
)

func (m PowerMode) String() string {
	switch m {
	case ModeReactive:
		return "reactive"
	case ModeActivated:
		return "activated"
	default:
		return "passive"
	}
}

// PowerEffectKind is the closed set of power effects.
type PowerEffectKind int

const (
	PowerModifyStat         PowerEffectKind = iota // add Stats, or Value to Stat
	PowerRaiseStat                                 // raise the non-zero Stats categories to that value
	PowerModifyShade                               // add Amount shade (negative removes)
	PowerExtraDamage                               // opponent loses Value shantay points
	PowerHeal                                      // owner gains Amount shantay points
	PowerGainGag                                   // owner gains Amount gag
	PowerDraw                                      // owner draws Amount cards
	PowerDiscard                                   // target player discards Amount random cards
	PowerSearchDeck                                // look at top Amount cards, keep one
	PowerReturnToHand                              // eliminated queen returns to hand with Stats
	PowerPreventShade                              // cancel pending shade (reducer)
	PowerPreventElimination                        // cancel pending elimination (reducer)
	PowerProtectStat                               // Stat cannot be reduced by the opponent (reducer)
	PowerOpponentShadeLimit                        // opponent queens' shade limit +Amount (reducer)
)

func (k PowerEffectKind) String() string {
	switch k {
	case PowerModifyStat:
		return "MODIFY_STAT"
	case PowerRaiseStat:
		return "RAISE_STAT"
	case PowerModifyShade:
		return "MODIFY_SHADE"
	case PowerExtraDamage:
		return "MODIFY_DAMAGE"
	case PowerHeal:
		return "HEAL"
	case PowerGainGag:
		return "GAIN_GAG"
	case PowerDraw:
		return "DRAW_CARDS"
	case PowerDiscard:
		return "DISCARD_CARDS"
	case PowerSearchDeck:
		return "SEARCH_DECK"
	case PowerReturnToHand:
		return "RETURN_TO_HAND"
	case PowerPreventShade:
		return "PREVENT_SHADE"
	case PowerPreventElimination:
		return "PREVENT_ELIMINATION"
	case PowerProtectStat:
		return "PROTECT_STAT"
	case PowerOpponentShadeLimit:
		return "MODIFY_LIMIT"
	default:
		return "UNKNOWN"
	}
}

// Scope is who a power effect lands on.
type Scope int

const (
	ScopeSelf           Scope = iota // the queen holding the power
	ScopeOwner                       // the holder's player
	ScopeOpponent                    // the other player
	ScopeOwnQueens                   // every queen on the holder's runway
	ScopeOtherOwnQueen               // the holder's most-shaded other queen
	ScopeOpponentQueens              // every queen on the opposing runway
	ScopeBattleOpponent              // the opposing lip sync queen
)

func (s Scope) String() string {
	switch s {
	case ScopeSelf:
		return "SELF"
	case ScopeOwner:
		return "OWNER"
	case ScopeOpponent:
		return "OPPONENT"
	case ScopeOwnQueens:
		return "OWN_QUEENS"
	case ScopeOtherOwnQueen:
		return "OTHER_OWN_QUEEN"
	case ScopeOpponentQueens:
		return "OPPONENT_QUEENS"
	case ScopeBattleOpponent:
		return "BATTLE_OPPONENT"
	default:
		return "UNKNOWN"
	}
}

// TriggerContext is the situation a power is evaluated in.
type TriggerContext struct {
	State    *GameState
	Owner    PlayerID
	Queen    *CardInstance // holder; may sit in discard for PowerEliminated
	Opponent *CardInstance // opposing lip sync queen, if any
	Category Category
}

func (tc TriggerContext) env() Env {
	return Env{State: tc.State, Owner: tc.Owner, Queen: tc.Queen, Opponent: tc.Opponent, Category: tc.Category}
}

// scoreDiff is the holder's margin in the last resolved lip sync.
func (tc TriggerContext) scoreDiff() int {
	res := tc.State.LipSyncResult
	if res == nil {
		return 0
	}
	d := res.AttackerScore - res.DefenderScore
	if tc.Queen != nil && tc.Queen.ID == res.Defender {
		d = -d
	}
	if d < 0 {
		return 0
	}
	return d
}

// Value is a number computed when a power applies.
type Value interface {
	Eval(tc TriggerContext) int
	String() string
}

// Const is a fixed value.
type Const int

func (v Const) Eval(TriggerContext) int { return int(v) }
func (v Const) String() string          { return fmt.Sprint(int(v)) }

// ScoreDiffTimes is the holder's winning margin multiplied by K.
type ScoreDiffTimes int

func (v ScoreDiffTimes) Eval(tc TriggerContext) int { return tc.scoreDiff() * int(v) }
func (v ScoreDiffTimes) String() string             { return fmt.Sprintf("score difference x %d", int(v)) }

// EquipmentCount is the number of equipment cards on the holder.
type EquipmentCount struct{}

func (EquipmentCount) Eval(tc TriggerContext) int {
	if tc.Queen == nil {
		return 0
	}
	return len(tc.Queen.Equipment)
}

func (EquipmentCount) String() string { return "equipment count" }

// PowerEffect is one consequence of an ability.
type PowerEffect struct {
	Kind   PowerEffectKind
	Scope  Scope
	Stats  Stats    // stat deltas or raise targets
	Stat   Category // for Value-driven stat changes; CategoryNone is the lip sync category
	Value  Value    // for Value-driven effects
	Amount int
}

// amount returns e.Value evaluated, or Amount when no Value is set.
func (e PowerEffect) amount(tc TriggerContext) int {
	if e.Value != nil {
		return e.Value.Eval(tc)
	}
	return e.Amount
}

// Ability is one triggered or activated part of a power.
type Ability struct {
	Trigger     PowerTrigger
	Mode        PowerMode
	Condition   Condition
	Cost        EffectCost
	Cooldown    int // turns before it can apply again
	Duration    int // stat changes last this many Untucks; 0 is the default lifetime
	OncePerGame bool
	Priority    int // lower resolves first
	Effects     []PowerEffect
}

// Power is a queen's special ability.
type Power struct {
	ID        string
	Name      string
	Text      string
	Abilities []Ability
}

// Activatable reports whether the power has a manually activated ability.
func (p *Power) Activatable() bool {
	for _, ab := range p.Abilities {
		if ab.Mode == ModeActivated {
			return true
		}
	}
	return false
}

// ability returns the first ability on the trigger matching the effect kind.
func (p *Power) ability(t PowerTrigger, kind PowerEffectKind) (Ability, bool) {
	if p == nil {
		return Ability{}, false
	}
	for _, ab := range p.Abilities {
		if ab.Trigger != t {
			continue
		}
		for _, fx := range ab.Effects {
			if fx.Kind == kind {
				return ab, true
			}
		}
	}
	return Ability{}, false
}
