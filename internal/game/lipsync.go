package game

import (
	"github.com/peterkuimelis/werkroom/internal/log"
)

// LipSyncResult is a judged lip sync.
type LipSyncResult struct {
	Category      Category
	Attacker      int // attacking queen instance ID
	Defender      int // defending queen instance ID, 0 for a solo performance
	AttackerScore int
	DefenderScore int
	Outcome       Outcome
	Winner        PlayerID // empty on a tie
	Damage        int
	AttackerShade bool
	DefenderShade bool
}

// Judge applies the lip sync scoring rules. With no defender the attacker
// wins for half its score rounded up and nobody is shaded. A losing
// attacker takes shade but no damage.
func Judge(attackerScore, defenderScore int, solo bool) (outcome Outcome, damage int, attackerShade, defenderShade bool) {
	switch {
	case solo:
		return OutcomeAttacker, (attackerScore + 1) / 2, false, false
	case attackerScore > defenderScore:
		return OutcomeAttacker, max(1, attackerScore-defenderScore), false, true
	case defenderScore > attackerScore:
		return OutcomeDefender, 0, true, false
	default:
		return OutcomeTie, 0, true, true
	}
}

// ComputeLipSync judges the selected queens on the current category using
// their effective stats. Performance-score bonuses from equipment are added
// when the result is resolved.
func (gs *GameState) ComputeLipSync() LipSyncResult {
	res := LipSyncResult{Category: gs.LipSyncCategory}
	atk, def := gs.Attacker(), gs.Defender()
	if atk != nil {
		res.Attacker = atk.ID
		res.AttackerScore = gs.Score(gs.CurrentTurn, atk, gs.LipSyncCategory)
	}
	if def != nil {
		res.Defender = def.ID
		res.DefenderScore = gs.Score(gs.CurrentTurn.Opponent(), def, gs.LipSyncCategory)
	}
	res.Outcome, res.Damage, res.AttackerShade, res.DefenderShade = Judge(res.AttackerScore, res.DefenderScore, def == nil)
	res.Winner = gs.winnerOf(res.Outcome)
	return res
}

func (gs *GameState) winnerOf(o Outcome) PlayerID {
	switch o {
	case OutcomeAttacker:
		return gs.CurrentTurn
	case OutcomeDefender:
		return gs.CurrentTurn.Opponent()
	}
	return ""
}

func (d *draft) resolveLipSync(res LipSyncResult) {
	if d.gs.Phase != PhaseResolution {
		d.warn(d.gs.CurrentTurn, "Resolve Fail: Not in %s phase (Current: %s).", PhaseResolution, d.gs.Phase)
		return
	}
	atk := d.gs.Attacker()
	if atk == nil {
		d.warn(d.gs.CurrentTurn, "Resolve Fail: no attacking Queen selected.")
		return
	}
	attacker, defender := d.gs.CurrentTurn, d.gs.CurrentTurn.Opponent()
	def := d.gs.Defender()
	res.Category = d.gs.LipSyncCategory
	res.Attacker = atk.ID
	res.Defender = 0
	if def != nil {
		res.Defender = def.ID
	}

	// Performance-score bonuses. The outcome is re-judged only if one fired.
	bonus := 0
	actx := &EffectContext{Trigger: TriggerLipSyncScore, Owner: attacker, Queen: atk.ID, Opponent: res.Defender, Category: res.Category, Score: res.AttackerScore}
	d.fireEquipment(actx)
	bonus += actx.Fired
	res.AttackerScore = actx.Score
	if def != nil {
		dctx := &EffectContext{Trigger: TriggerLipSyncScore, Owner: defender, Queen: def.ID, Opponent: atk.ID, Category: res.Category, Score: res.DefenderScore}
		d.fireEquipment(dctx)
		bonus += dctx.Fired
		res.DefenderScore = dctx.Score
	}
	if bonus > 0 {
		res.Outcome, res.Damage, res.AttackerShade, res.DefenderShade = Judge(res.AttackerScore, res.DefenderScore, def == nil)
	}
	res.Winner = d.gs.winnerOf(res.Outcome)
	d.gs.LipSyncResult = &res

	defName := "None"
	if def != nil {
		defName = def.Name()
	}
	d.info(log.EventLipSyncResult, attacker, atk.Name(), "Lip Sync Result: %s (%d) vs %s (%d). Winner: %s, Damage: %d.",
		atk.Name(), res.AttackerScore, defName, res.DefenderScore, d.outcomeName(res), res.Damage)

	if res.Damage > 0 && res.Outcome != OutcomeTie {
		d.applyDamage(res.Winner.Opponent(), res.Damage, "lip sync")
	}
	if res.AttackerShade {
		d.addShade(attacker, res.Attacker, 1)
	}
	if res.DefenderShade && res.Defender != 0 {
		d.addShade(defender, res.Defender, 1)
	}

	// On-win equipment of the winning queen, if she is still standing.
	if res.Outcome != OutcomeTie {
		winQ, loseQ := res.Attacker, res.Defender
		if res.Outcome == OutcomeDefender {
			winQ, loseQ = res.Defender, res.Attacker
		}
		if d.peekQueen(res.Winner, winQ) != nil {
			if d.peekQueen(res.Winner.Opponent(), loseQ) == nil {
				loseQ = 0
			}
			d.fireEquipment(&EffectContext{Trigger: TriggerLipSyncWin, Owner: res.Winner, Queen: winQ, Opponent: loseQ, Category: res.Category})
		}
	}

	d.dropModifiers(func(_ PlayerID, m Modifier) bool { return m.Expiry == ExpireLipSync })
	d.checkWinner()
}

func (d *draft) outcomeName(res LipSyncResult) string {
	if res.Outcome == OutcomeTie {
		return "tie"
	}
	return d.name(res.Winner)
}

// --- Shade and elimination ---

func (d *draft) modifyShade(act ModifyShade) {
	if d.gs.Player(act.Player) == nil {
		d.fail(act.Player, "Shade Error: Player %s not found.", act.Player)
		return
	}
	if d.peekQueen(act.Player, act.Queen) == nil {
		d.warn(act.Player, "Shade Fail: Queen %d not on %s's runway.", act.Queen, d.name(act.Player))
		return
	}
	switch {
	case act.Delta > 0:
		d.addShade(act.Player, act.Queen, act.Delta)
	case act.Delta < 0:
		d.removeShade(act.Player, act.Queen, -act.Delta, act.Source)
	}
}

// addShade gives a queen shade tokens after prevention effects, capped at
// her shade limit. Reaching the limit reads her for filth.
func (d *draft) addShade(owner PlayerID, queenID int, amount int) {
	q := d.peekQueen(owner, queenID)
	if q == nil || amount <= 0 {
		return
	}
	ctx := &EffectContext{Trigger: TriggerShade, Owner: owner, Queen: queenID, Amount: amount, Category: d.gs.LipSyncCategory}
	d.fireEquipment(ctx)
	if !ctx.Prevented && ctx.Amount > 0 {
		ctx.Prevented = d.powerPreventsShade(owner, queenID)
	}
	if ctx.Prevented || ctx.Amount <= 0 {
		d.info(log.EventShadePrevented, owner, q.Name(), "%s avoids the Shade!", q.Name())
		return
	}

	w := d.queen(owner, queenID)
	limit := d.gs.ShadeLimitOf(owner, w)
	w.ShadeTokens = min(limit, w.ShadeTokens+ctx.Amount)
	d.info(log.EventShade, owner, w.Name(), "%s gets Shade (%d/%d).", w.Name(), w.ShadeTokens, limit)
	if w.ShadeTokens >= limit {
		d.eliminate(owner, queenID)
	}
}

func (d *draft) removeShade(owner PlayerID, queenID int, amount int, source string) {
	q := d.peekQueen(owner, queenID)
	if q == nil || q.ShadeTokens == 0 || amount <= 0 {
		return
	}
	w := d.queen(owner, queenID)
	w.ShadeTokens = max(0, w.ShadeTokens-amount)
	d.info(log.EventShade, owner, w.Name(), "%s removes Shade from %s (%d/%d).", source, w.Name(), w.ShadeTokens, d.gs.ShadeLimitOf(owner, w))
}

// eliminate reads a queen for filth unless an equipment or power prevents
// it: the queen and her equipment go to the discard pile.
func (d *draft) eliminate(owner PlayerID, queenID int) bool {
	q := d.peekQueen(owner, queenID)
	if q == nil {
		return false
	}
	ctx := &EffectContext{Trigger: TriggerElimination, Owner: owner, Queen: queenID}
	d.fireEquipment(ctx)
	if !ctx.Prevented {
		ctx.Prevented = d.powerPreventsElimination(owner, queenID)
	}
	if ctx.Prevented {
		d.info(log.EventEliminationPrevented, owner, q.Name(), "%s refuses to sashay away!", q.Name())
		return false
	}

	p := d.player(owner)
	_, slot := p.Runway.Find(queenID)
	p.Runway[slot] = nil
	gone := d.own(q)
	equipment := gone.Equipment
	gone.Equipment = nil
	gone.Modifiers = nil
	gone.CanAttack = false
	p.Discard = append(p.Discard, gone)
	p.Discard = append(p.Discard, equipment...)
	d.info(log.EventEliminate, owner, gone.Name(), "%s is Read for Filth and sashays away!", gone.Name())
	return true
}

// powerPreventsShade resolves a once-per-game shade prevention power
// on the queen herself, applying its stat bonus until her owner's Untuck.
func (d *draft) powerPreventsShade(owner PlayerID, queenID int) bool {
	q := d.peekQueen(owner, queenID)
	pw := d.gs.PowerOf(q)
	ab, ok := pw.ability(PowerWouldShade, PowerPreventShade)
	if !ok || !d.canUseInReducer(owner, q, ab) {
		return false
	}
	d.payCost(owner, ab.Cost, pw.Name)
	w := d.queen(owner, queenID)
	if ab.OncePerGame {
		w.PowerSpent = true
	}
	d.info(log.EventPower, owner, w.Name(), "%s activates %s!", w.Name(), pw.Name)
	for _, fx := range ab.Effects {
		if fx.Kind == PowerModifyStat {
			w.Modifiers = append(w.Modifiers, Modifier{Source: pw.Name, From: owner, Delta: fx.Stats, Expiry: ExpireOwnerUntuck})
		}
	}
	return true
}

// powerPreventsElimination resolves an elimination prevention power on the
// queen herself.
func (d *draft) powerPreventsElimination(owner PlayerID, queenID int) bool {
	q := d.peekQueen(owner, queenID)
	pw := d.gs.PowerOf(q)
	ab, ok := pw.ability(PowerWouldEliminate, PowerPreventElimination)
	if !ok || !d.canUseInReducer(owner, q, ab) {
		return false
	}
	d.payCost(owner, ab.Cost, pw.Name)
	if ab.OncePerGame {
		d.queen(owner, queenID).PowerSpent = true
	}
	d.info(log.EventPower, owner, q.Name(), "%s activates %s!", q.Name(), pw.Name)
	return true
}

func (d *draft) canUseInReducer(owner PlayerID, q *CardInstance, ab Ability) bool {
	if ab.OncePerGame && q.PowerSpent {
		return false
	}
	if !ab.Cost.affordable(d.gs.Player(owner)) {
		return false
	}
	return Holds(ab.Condition, Env{State: d.gs, Owner: owner, Queen: q, Category: d.gs.LipSyncCategory})
}
