package game

import (
	"errors"
	"fmt"
	"sort"
)

// Holder is a queen whose power is considered when a trigger fires.
type Holder struct {
	Owner    PlayerID
	Queen    int
	Opponent int // opposing lip sync queen, 0 if none
}

// TimedEffect is a stat change the manager will remove after Remaining
// more Untucks.
type TimedEffect struct {
	Tag       string
	Power     string
	Owner     PlayerID
	Remaining int
}

// PowerManager tracks per-game power bookkeeping: cooldowns, once-per-game
// use and timed effects. It never changes a GameState itself; every effect
// is turned into reducer actions and handed to dispatch.
type PowerManager struct {
	registry  *PowerRegistry
	dispatch  func(Action) *GameState
	cooldowns map[string]int
	used      map[string]bool
	active    []TimedEffect
	seq       int
}

// NewPowerManager returns a manager dispatching through fn. A nil registry
// means the built-in powers.
func NewPowerManager(reg *PowerRegistry, fn func(Action) *GameState) *PowerManager {
	if reg == nil {
		reg = Powers
	}
	return &PowerManager{
		registry:  reg,
		dispatch:  fn,
		cooldowns: make(map[string]int),
		used:      make(map[string]bool),
	}
}

var (
	ErrNoPower      = errors.New("queen has no activatable power")
	ErrPowerUsed    = errors.New("power already used this game")
	ErrCooldown     = errors.New("power is on cooldown")
	ErrCannotAfford = errors.New("power cost cannot be paid")
	ErrCondition    = errors.New("power condition not met")
	ErrNoTarget     = errors.New("power has no valid target")
	ErrGameOver     = errors.New("game is over")
	ErrNoQueen      = errors.New("queen not on runway")
)

func abilityKey(owner PlayerID, queen int, power string, idx int) string {
	return fmt.Sprintf("%s/%d/%s/%d", owner, queen, power, idx)
}

type pendingAbility struct {
	holder Holder
	power  *Power
	idx    int
}

// HandleTrigger applies the abilities on trigger t held by the given queens,
// lowest priority first. Passive abilities apply when their condition
// holds; reactive ones also need cooldown, use, cost and target checks.
// It returns the state after the last dispatch.
func (m *PowerManager) HandleTrigger(gs *GameState, t PowerTrigger, holders []Holder) *GameState {
	if t.inReducer() {
		return gs
	}
	candidates := make(map[string]*Power)
	for _, pw := range m.registry.ByTrigger(t) {
		candidates[pw.ID] = pw
	}
	if len(candidates) == 0 {
		return gs
	}
	var pending []pendingAbility
	for _, h := range holders {
		q := m.locate(gs, h.Owner, h.Queen, t)
		if q == nil {
			continue
		}
		pw := candidates[q.Def.PowerID]
		if pw == nil {
			continue
		}
		for i, ab := range pw.Abilities {
			if ab.Trigger == t && ab.Mode != ModeActivated {
				pending = append(pending, pendingAbility{holder: h, power: pw, idx: i})
			}
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].power.Abilities[pending[i].idx].Priority < pending[j].power.Abilities[pending[j].idx].Priority
	})

	for _, p := range pending {
		if gs.Over() {
			break
		}
		q := m.locate(gs, p.holder.Owner, p.holder.Queen, t)
		if q == nil {
			continue
		}
		tc := m.context(gs, p.holder, q)
		ab := p.power.Abilities[p.idx]
		key := abilityKey(p.holder.Owner, p.holder.Queen, p.power.ID, p.idx)
		if ab.Mode == ModePassive {
			if !Holds(ab.Condition, tc.env()) {
				continue
			}
		} else if err := m.check(tc, key, ab); err != nil {
			continue
		}
		gs = m.apply(gs, p.holder, key, p.power, ab)
	}
	return gs
}

// CanActivatePower reports why the queen's activated power cannot be used,
// or nil if it can.
func (m *PowerManager) CanActivatePower(gs *GameState, owner PlayerID, queen int) error {
	_, _, _, err := m.activatable(gs, owner, queen)
	return err
}

// ActivatePower uses the queen's manually activated power.
func (m *PowerManager) ActivatePower(gs *GameState, owner PlayerID, queen int) (*GameState, error) {
	h, pw, idx, err := m.activatable(gs, owner, queen)
	if err != nil {
		return gs, err
	}
	key := abilityKey(owner, queen, pw.ID, idx)
	return m.apply(gs, h, key, pw, pw.Abilities[idx]), nil
}

func (m *PowerManager) activatable(gs *GameState, owner PlayerID, queen int) (Holder, *Power, int, error) {
	h := Holder{Owner: owner, Queen: queen}
	if gs.Over() {
		return h, nil, 0, ErrGameOver
	}
	p := gs.Player(owner)
	if p == nil {
		return h, nil, 0, ErrNoQueen
	}
	q, _ := p.Runway.Find(queen)
	if q == nil {
		return h, nil, 0, ErrNoQueen
	}
	pw := m.registry.Lookup(q.Def.PowerID)
	if pw == nil {
		return h, nil, 0, ErrNoPower
	}
	err := ErrNoPower
	for i, ab := range pw.Abilities {
		if ab.Mode != ModeActivated {
			continue
		}
		tc := m.context(gs, h, q)
		if err = m.check(tc, abilityKey(owner, queen, pw.ID, i), ab); err == nil {
			return h, pw, i, nil
		}
	}
	return h, pw, 0, err
}

// check runs the activation rules for a non-passive ability.
func (m *PowerManager) check(tc TriggerContext, key string, ab Ability) error {
	if tc.State.Over() {
		return ErrGameOver
	}
	if m.cooldowns[key] > 0 {
		return ErrCooldown
	}
	if ab.OncePerGame && m.used[key] {
		return ErrPowerUsed
	}
	if !ab.Cost.affordable(tc.State.Player(tc.Owner)) {
		return ErrCannotAfford
	}
	if !Holds(ab.Condition, tc.env()) {
		return ErrCondition
	}
	if !m.hasTarget(tc, ab) {
		return ErrNoTarget
	}
	return nil
}

func (m *PowerManager) hasTarget(tc TriggerContext, ab Ability) bool {
	for _, fx := range ab.Effects {
		switch fx.Kind {
		case PowerModifyStat, PowerRaiseStat, PowerModifyShade:
			if len(m.targets(tc, fx.Scope)) == 0 {
				return false
			}
		case PowerReturnToHand:
			if len(tc.State.Player(tc.Owner).Hand) >= MaxHandSize {
				return false
			}
		}
	}
	return true
}

// apply books the ability and dispatches its cost and effects.
func (m *PowerManager) apply(gs *GameState, h Holder, key string, pw *Power, ab Ability) *GameState {
	if ab.OncePerGame {
		m.used[key] = true
	}
	if ab.Cooldown > 0 {
		m.cooldowns[key] = ab.Cooldown
	}
	if ab.Cost.Gag > 0 {
		gs = m.dispatch(SpendGag{Player: h.Owner, Amount: ab.Cost.Gag, Source: pw.Name})
	}
	if ab.Cost.Discard > 0 {
		gs = m.dispatch(DiscardCards{Player: h.Owner, Count: ab.Cost.Discard, Source: pw.Name})
	}
	for _, fx := range ab.Effects {
		q := m.locate(gs, h.Owner, h.Queen, ab.Trigger)
		if q == nil || gs.Over() {
			break
		}
		tc := m.context(gs, h, q)
		for _, a := range m.translate(tc, pw, ab, fx) {
			gs = m.dispatch(a)
		}
	}
	return gs
}

// translate turns one power effect into reducer actions.
func (m *PowerManager) translate(tc TriggerContext, pw *Power, ab Ability, fx PowerEffect) []Action {
	owner, opp := tc.Owner, tc.Owner.Opponent()
	player := opp
	if fx.Scope == ScopeSelf || fx.Scope == ScopeOwner || fx.Scope == ScopeOwnQueens || fx.Scope == ScopeOtherOwnQueen {
		player = owner
	}
	n := fx.amount(tc)

	var out []Action
	switch fx.Kind {
	case PowerModifyStat, PowerRaiseStat:
		for _, t := range m.targets(tc, fx.Scope) {
			delta := m.delta(tc, fx, t)
			if delta == (Stats{}) {
				continue
			}
			mod := Modifier{Source: pw.Name, From: owner, Delta: delta}
			switch {
			case ab.Duration > 0:
				m.seq++
				mod.Tag = fmt.Sprintf("%s#%d", pw.ID, m.seq)
				mod.Expiry = ExpireManaged
				m.active = append(m.active, TimedEffect{Tag: mod.Tag, Power: pw.ID, Owner: owner, Remaining: ab.Duration})
			case ab.Trigger == PowerLipSyncStart:
				mod.Expiry = ExpireLipSync
			}
			out = append(out, AddModifier{Player: t.owner, Queen: t.queen.ID, Modifier: mod})
		}
	case PowerModifyShade:
		for _, t := range m.targets(tc, fx.Scope) {
			out = append(out, ModifyShade{Player: t.owner, Queen: t.queen.ID, Delta: n, Source: pw.Name})
		}
	case PowerExtraDamage:
		if n > 0 {
			out = append(out, ApplyShantayDamage{Player: player, Amount: n, Source: pw.Name})
		}
	case PowerHeal:
		if n > 0 {
			out = append(out, ApplyShantayDamage{Player: owner, Amount: -n, Source: pw.Name})
		}
	case PowerGainGag:
		if n > 0 {
			out = append(out, GainGag{Player: player, Amount: n})
		}
	case PowerDraw:
		for range n {
			out = append(out, DrawCard{Player: player})
		}
	case PowerDiscard:
		out = append(out, DiscardCards{Player: player, Count: n, Random: true, Source: pw.Name})
	case PowerSearchDeck:
		out = append(out, SearchDeck{Player: owner, Depth: n, Source: pw.Name})
	case PowerReturnToHand:
		out = append(out, ReturnToHand{Player: owner, Card: tc.Queen.ID, Stats: fx.Stats, Source: pw.Name})
	}
	return out
}

func (m *PowerManager) delta(tc TriggerContext, fx PowerEffect, t target) Stats {
	if fx.Kind == PowerRaiseStat {
		cur := tc.State.EffectiveStats(t.owner, t.queen)
		var delta Stats
		for _, c := range Categories {
			if v := fx.Stats.Get(c); v > 0 && cur.Get(c) < v {
				delta = delta.With(c, v-cur.Get(c))
			}
		}
		return delta
	}
	if fx.Value != nil {
		cat := fx.Stat
		if cat == CategoryNone {
			cat = tc.Category
		}
		return Stats{}.With(cat, fx.Value.Eval(tc))
	}
	return fx.Stats
}

type target struct {
	owner PlayerID
	queen *CardInstance
}

// targets resolves a queen scope to the queens currently on the runways.
func (m *PowerManager) targets(tc TriggerContext, s Scope) []target {
	gs, owner, opp := tc.State, tc.Owner, tc.Owner.Opponent()
	var out []target
	switch s {
	case ScopeSelf:
		if q, _ := gs.Player(owner).Runway.Find(tc.Queen.ID); q != nil {
			out = append(out, target{owner, q})
		}
	case ScopeOwnQueens:
		for _, q := range gs.Player(owner).Runway.Queens() {
			out = append(out, target{owner, q})
		}
	case ScopeOtherOwnQueen:
		var best *CardInstance
		for _, q := range gs.Player(owner).Runway.Queens() {
			if q.ID != tc.Queen.ID && q.ShadeTokens > 0 && (best == nil || q.ShadeTokens > best.ShadeTokens) {
				best = q
			}
		}
		if best != nil {
			out = append(out, target{owner, best})
		}
	case ScopeOpponentQueens:
		for _, q := range gs.Player(opp).Runway.Queens() {
			out = append(out, target{opp, q})
		}
	case ScopeBattleOpponent:
		if tc.Opponent != nil {
			if q, _ := gs.Player(opp).Runway.Find(tc.Opponent.ID); q != nil {
				out = append(out, target{opp, q})
			}
		}
	}
	return out
}

// locate finds the holder; an eliminated holder is looked up in discard.
func (m *PowerManager) locate(gs *GameState, owner PlayerID, id int, t PowerTrigger) *CardInstance {
	p := gs.Player(owner)
	if p == nil {
		return nil
	}
	if t == PowerEliminated {
		for _, c := range p.Discard {
			if c.ID == id {
				return c
			}
		}
		return nil
	}
	q, _ := p.Runway.Find(id)
	return q
}

func (m *PowerManager) context(gs *GameState, h Holder, q *CardInstance) TriggerContext {
	tc := TriggerContext{State: gs, Owner: h.Owner, Queen: q, Category: gs.LipSyncCategory}
	if h.Opponent != 0 {
		if opp := gs.Player(h.Owner.Opponent()); opp != nil {
			tc.Opponent, _ = opp.Runway.Find(h.Opponent)
		}
	}
	return tc
}

// EndOfTurn ticks cooldowns and timed effects once per Untuck, removing
// effects that ran out.
func (m *PowerManager) EndOfTurn(gs *GameState) *GameState {
	for k, v := range m.cooldowns {
		if v <= 1 {
			delete(m.cooldowns, k)
		} else {
			m.cooldowns[k] = v - 1
		}
	}
	kept := m.active[:0]
	var expired []string
	for _, e := range m.active {
		e.Remaining--
		if e.Remaining <= 0 {
			expired = append(expired, e.Tag)
			continue
		}
		kept = append(kept, e)
	}
	m.active = kept
	for _, tag := range expired {
		gs = m.dispatch(RemoveModifier{Tag: tag})
	}
	return gs
}

// Active returns the timed effects still running.
func (m *PowerManager) Active() []TimedEffect {
	return append([]TimedEffect(nil), m.active...)
}

// Cooldown returns the remaining cooldown of a holder's ability.
func (m *PowerManager) Cooldown(owner PlayerID, queen int, power string, idx int) int {
	return m.cooldowns[abilityKey(owner, queen, power, idx)]
}

// --- Holder helpers ---

// BattleHolders returns the attacker and defender of the current lip sync.
func BattleHolders(gs *GameState) []Holder {
	atk, def := gs.Attacker(), gs.Defender()
	if atk == nil {
		return nil
	}
	h := []Holder{{Owner: gs.CurrentTurn, Queen: atk.ID}}
	if def != nil {
		h[0].Opponent = def.ID
		h = append(h, Holder{Owner: gs.CurrentTurn.Opponent(), Queen: def.ID, Opponent: atk.ID})
	}
	return h
}

// ResultHolders returns the winner and loser of the resolved lip sync.
// Ties have neither.
func ResultHolders(gs *GameState) (winner, loser []Holder) {
	res := gs.LipSyncResult
	if res == nil || res.Outcome == OutcomeTie {
		return nil, nil
	}
	win, lose := res.Attacker, res.Defender
	if res.Outcome == OutcomeDefender {
		win, lose = res.Defender, res.Attacker
	}
	if win != 0 {
		winner = []Holder{{Owner: res.Winner, Queen: win, Opponent: lose}}
	}
	if lose != 0 {
		loser = []Holder{{Owner: res.Winner.Opponent(), Queen: lose, Opponent: win}}
	}
	return winner, loser
}

// RunwayHolders returns every queen on both runways, active player first.
func RunwayHolders(gs *GameState) []Holder {
	var h []Holder
	for _, id := range []PlayerID{gs.CurrentTurn, gs.CurrentTurn.Opponent()} {
		p := gs.Player(id)
		if p == nil {
			continue
		}
		for _, q := range p.Runway.Queens() {
			h = append(h, Holder{Owner: id, Queen: q.ID})
		}
	}
	return h
}
