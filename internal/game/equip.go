package game

import "github.com/peterkuimelis/werkroom/internal/log"

// EffectContext is the mutable firing context handed to equipment effects.
// Callers read Score, Amount and Prevented after the pass.
type EffectContext struct {
	Trigger   Trigger
	Owner     PlayerID
	Queen     int // wearer instance ID
	Equipment int // restrict the pass to this equipment when non-zero
	Opponent  int // opposing lip sync queen, 0 if none
	Category  Category

	Score     int  // performance score, for TriggerLipSyncScore
	Amount    int  // pending shade tokens, for TriggerShade
	Prevented bool // set by Prevent
	Fired     int  // effects applied in this pass
}

// fireEquipment visits the wearer's equipment once, in attachment order,
// and applies every effect on ctx.Trigger whose condition holds and whose
// cost can be paid. The pass stops early once the pending change is
// prevented.
func (d *draft) fireEquipment(ctx *EffectContext) {
	q := d.peekQueen(ctx.Owner, ctx.Queen)
	if q == nil {
		return
	}
	for _, eq := range q.Equipment {
		if ctx.Equipment != 0 && eq.ID != ctx.Equipment {
			continue
		}
		for i, e := range eq.Def.Effects {
			if e.Trigger != ctx.Trigger {
				continue
			}
			if ctx.Prevented || (ctx.Trigger == TriggerShade && ctx.Amount <= 0) {
				return
			}
			if e.OncePerGame && eq.EffectSpent(i) {
				continue
			}
			if !Holds(e.Condition, d.effectEnv(ctx)) {
				continue
			}
			p := d.gs.Player(ctx.Owner)
			if !e.Cost.affordable(p) {
				continue
			}
			d.payCost(ctx.Owner, e.Cost, eq.Def.Name)
			if e.OncePerGame {
				if w := d.equipment(ctx.Owner, ctx.Queen, eq.ID); w != nil {
					w.SpentEffects = append(w.SpentEffects, i)
				}
			}
			ctx.Fired++
			d.applyEquipmentEffect(eq, e, ctx)
		}
	}
}

func (d *draft) effectEnv(ctx *EffectContext) Env {
	env := Env{State: d.gs, Owner: ctx.Owner, Queen: d.peekQueen(ctx.Owner, ctx.Queen), Category: ctx.Category}
	if ctx.Opponent != 0 {
		env.Opponent = d.peekQueen(ctx.Owner.Opponent(), ctx.Opponent)
	}
	return env
}

// peekQueen returns the current, read-only runway queen.
func (d *draft) peekQueen(owner PlayerID, id int) *CardInstance {
	p := d.gs.Player(owner)
	if p == nil {
		return nil
	}
	q, _ := p.Runway.Find(id)
	return q
}

func (d *draft) payCost(owner PlayerID, cost EffectCost, source string) {
	if cost.Gag > 0 {
		d.spendGag(SpendGag{Player: owner, Amount: cost.Gag, Source: source})
	}
	if cost.Discard > 0 {
		d.discardCards(DiscardCards{Player: owner, Count: cost.Discard, Source: source})
	}
}

func (d *draft) applyEquipmentEffect(eq *CardInstance, e Effect, ctx *EffectContext) {
	target := ctx.Owner
	if e.Target == TargetOpponent {
		target = ctx.Owner.Opponent()
	}
	switch a := e.Action.(type) {
	case AddScore:
		ctx.Score += a.Amount
		d.info(log.EventPower, ctx.Owner, eq.Def.Name, "%s adds %d to the Performance Score.", eq.Def.Name, a.Amount)
	case AddGag:
		d.gainGag(target, a.Amount)
	case DrawCards:
		for range a.Count {
			if !d.draw(target) {
				break
			}
		}
	case AddShade:
		if ctx.Opponent != 0 {
			d.info(log.EventPower, ctx.Owner, eq.Def.Name, "%s throws shade!", eq.Def.Name)
			d.addShade(ctx.Owner.Opponent(), ctx.Opponent, a.Amount)
		}
	case RemoveShade:
		d.removeShade(ctx.Owner, ctx.Queen, a.Amount, eq.Def.Name)
	case Prevent:
		ctx.Prevented = true
	case ReduceShade:
		ctx.Amount -= a.Amount
		d.info(log.EventShadePrevented, ctx.Owner, eq.Def.Name, "%s reduces the Shade by %d.", eq.Def.Name, a.Amount)
	case RestrictEquipment:
		p := d.player(target)
		p.Restrictions = append(p.Restrictions, Restriction{EquipmentType: a.Type, Source: eq.Def.Name})
		d.info(log.EventPower, target, eq.Def.Name, "%s cannot play %s accessories next turn (%s).", p.Name, a.Type, eq.Def.Name)
	case AddStat, ExtendShadeLimit, ProtectStat:
		// folded into derived stats and limits
	}
}

func (d *draft) playEquipment(act PlayEquipmentCard) {
	cur := d.gs.Player(act.Player)
	if cur == nil {
		d.fail(act.Player, "Equip Error: Player %s not found.", act.Player)
		return
	}
	if d.gs.Phase != PhaseWerkRoom {
		d.warn(act.Player, "Equip Fail: Not in Werk Room phase (Current: %s).", d.gs.Phase)
		return
	}
	if d.gs.CurrentTurn != act.Player {
		d.warn(act.Player, "Equip Fail: Not %s's turn.", act.Player)
		return
	}
	card, idx := cur.FindInHand(act.Card)
	if card == nil {
		d.warn(act.Player, "Equip Error: Card %d not in %s's hand.", act.Card, act.Player)
		return
	}
	if card.Def.Kind != KindEquipment {
		d.warn(act.Player, "Equip Fail: %s is not an Equipment card.", card.Name())
		return
	}
	target, _ := cur.Runway.Find(act.Target)
	if target == nil {
		d.warn(act.Player, "Equip Fail: target Queen %d not found on %s's runway.", act.Target, cur.Name)
		return
	}
	if target.HasEquipmentType(card.Def.EquipmentType) {
		d.warn(act.Player, "Equip Fail: %s already wears a %s.", target.Name(), card.Def.EquipmentType)
		return
	}
	if cur.Restricted(card.Def.EquipmentType) {
		d.warn(act.Player, "Equip Fail: %s accessories are restricted this turn.", card.Def.EquipmentType)
		return
	}
	if cur.GagTokens < card.Def.Cost {
		d.warn(act.Player, "Equip Fail: %s needs %d Gag (has %d).", card.Name(), card.Def.Cost, cur.GagTokens)
		return
	}

	p := d.player(act.Player)
	p.GagTokens -= card.Def.Cost
	p.Hand = removeAt(p.Hand, idx)
	eq := d.own(card)
	q := d.queen(act.Player, act.Target)
	q.Equipment = append(q.Equipment, eq)
	d.info(log.EventAttachEquipment, act.Player, eq.Name(), "%s equips %s with %s (Cost: %d). Gag tokens remaining: %d.",
		p.Name, q.Name(), eq.Name(), eq.Def.Cost, p.GagTokens)
	d.fireEquipment(&EffectContext{Trigger: TriggerOnPlay, Owner: act.Player, Queen: act.Target, Equipment: eq.ID})
}

func (d *draft) activateEquipment(act ActivateEquipment) {
	cur := d.gs.Player(act.Player)
	if cur == nil {
		d.fail(act.Player, "Activate Error: Player %s not found.", act.Player)
		return
	}
	if d.gs.Phase != PhaseWerkRoom {
		d.warn(act.Player, "Activate Fail: Not in Werk Room phase (Current: %s).", d.gs.Phase)
		return
	}
	if d.gs.CurrentTurn != act.Player {
		d.warn(act.Player, "Activate Fail: Not %s's turn.", act.Player)
		return
	}
	q, _ := cur.Runway.Find(act.Queen)
	if q == nil {
		d.warn(act.Player, "Activate Fail: Queen %d not on %s's runway.", act.Queen, cur.Name)
		return
	}
	eq, _ := q.FindEquipment(act.Equipment)
	if eq == nil {
		d.warn(act.Player, "Activate Fail: Equipment %d not found on %s.", act.Equipment, q.Name())
		return
	}
	ctx := &EffectContext{Trigger: TriggerActivate, Owner: act.Player, Queen: act.Queen, Equipment: act.Equipment}
	d.fireEquipment(ctx)
	if ctx.Fired == 0 {
		d.warn(act.Player, "Activate Fail: %s cannot be activated now (cost unmet or no ability).", eq.Name())
		return
	}
	d.info(log.EventActivate, act.Player, eq.Name(), "%s activates %s.", cur.Name, eq.Name())
}
