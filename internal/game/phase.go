package game

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/peterkuimelis/werkroom/internal/log"
)

func edge(to Phase, from ...Phase) fsm.EventDesc {
	src := make([]string, len(from))
	for i, p := range from {
		src[i] = p.Key()
	}
	return fsm.EventDesc{Name: "to_" + to.Key(), Src: src, Dst: to.Key()}
}

// phaseGraph is every legal phase transition.
var phaseGraph = fsm.Events{
	edge(PhaseWerkRoom, PhaseSpillTheTea),
	edge(PhaseSelectAttacker, PhaseWerkRoom),
	edge(PhaseSelectDefender, PhaseSelectAttacker),
	edge(PhaseReveal, PhaseSelectAttacker, PhaseSelectDefender),
	edge(PhaseResolution, PhaseReveal),
	edge(PhaseUntuck, PhaseWerkRoom, PhaseSelectAttacker, PhaseResolution),
	edge(PhaseSpillTheTea, PhaseUntuck),
	edge(PhaseGameOver, PhaseSpillTheTea, PhaseWerkRoom, PhaseSelectAttacker, PhaseSelectDefender,
		PhaseReveal, PhaseResolution, PhaseUntuck),
}

// CheckTransition reports an error if from → to is not an edge of the
// phase graph.
func CheckTransition(from, to Phase) error {
	m := fsm.NewFSM(from.Key(), phaseGraph, fsm.Callbacks{})
	if err := m.Event(context.Background(), "to_"+to.Key()); err != nil {
		return fmt.Errorf("phase %s -> %s: %w", from, to, err)
	}
	return nil
}

// NextPhases lists the phases reachable from p in one step.
func NextPhases(p Phase) []Phase {
	m := fsm.NewFSM(p.Key(), phaseGraph, fsm.Callbacks{})
	var out []Phase
	for _, ev := range m.AvailableTransitions() {
		if next, ok := ParsePhase(ev[len("to_"):]); ok {
			out = append(out, next)
		}
	}
	return out
}

// advancePhase moves the game to its next phase. The target depends on the
// current phase and the board: a Werk Room without ready queens skips the
// lip sync, a skipped attacker goes to Untuck, an empty opposing runway
// makes a solo performance.
func (d *draft) advancePhase() {
	gs := d.gs
	active, opp := gs.Active(), gs.Defending()
	next := gs.Phase
	switch gs.Phase {
	case PhaseSpillTheTea:
		next = PhaseWerkRoom
	case PhaseWerkRoom:
		if len(active.Runway.Ready()) > 0 {
			next = PhaseSelectAttacker
		} else {
			d.info(log.EventPhaseChange, gs.CurrentTurn, "", "%s has no Queens ready to Lip Sync. Skipping to Untuck.", active.Name)
			next = PhaseUntuck
		}
	case PhaseSelectAttacker:
		switch {
		case gs.Attacker() == nil:
			d.info(log.EventSelectAttacker, gs.CurrentTurn, "", "%s chose not to initiate a Lip Sync.", active.Name)
			gs.SelectedAttacker = NoQueen
			next = PhaseUntuck
		case opp.Runway.Count() > 0:
			next = PhaseSelectDefender
		default:
			d.info(log.EventSelectDefender, opp.ID, "", "%s has no Queens on the runway. %s performs solo!", opp.Name, active.Name)
			gs.SelectedDefender = NoQueen
			next = PhaseReveal
		}
	case PhaseSelectDefender:
		if gs.SelectedDefender.State == SelectionUndecided {
			d.warn(opp.ID, "Advance Fail: %s has not chosen a defender.", opp.Name)
			return
		}
		next = PhaseReveal
	case PhaseReveal:
		if gs.LipSyncCategory == CategoryNone {
			d.setCategory(SetLipSyncCategory{Category: Categories[d.r.intn(len(Categories))]})
		}
		next = PhaseResolution
	case PhaseResolution:
		next = PhaseUntuck
	case PhaseUntuck:
		next = PhaseSpillTheTea
	default:
		d.warn("", "Cannot advance from phase: %s", gs.Phase)
		return
	}

	if err := CheckTransition(gs.Phase, next); err != nil {
		d.fail("", "Advance Error: %v", err)
		return
	}

	if gs.Phase == PhaseUntuck {
		d.endTurn()
		return
	}
	gs.Phase = next
	d.info(log.EventPhaseChange, gs.CurrentTurn, "", "Advancing to: %s", next)
}

// endTurn leaves Untuck: both hands are trimmed, the departing player's
// queens become ready and their turn-scoped rules expire, then the turn
// passes.
func (d *draft) endTurn() {
	gs := d.gs
	leaving := gs.CurrentTurn
	d.trimHand(Player1)
	d.trimHand(Player2)
	d.readyQueens(leaving)
	if len(gs.Player(leaving).Restrictions) > 0 {
		d.player(leaving).Restrictions = nil
	}
	d.dropModifiers(func(owner PlayerID, m Modifier) bool {
		return owner == leaving && m.Expiry == ExpireOwnerUntuck
	})

	gs.CurrentTurn = leaving.Opponent()
	if gs.CurrentTurn == Player1 {
		gs.TurnNumber++
	}
	gs.Phase = PhaseSpillTheTea
	d.resetLipSync()
	d.info(log.EventNewTurn, gs.CurrentTurn, "", "Advancing to: %s | Turn: %d (%s)", gs.Phase, gs.TurnNumber, d.name(gs.CurrentTurn))
}

func (d *draft) resetLipSync() {
	d.gs.SelectedAttacker = NoQueen
	d.gs.SelectedDefender = Undecided
	d.gs.LipSyncCategory = CategoryNone
	d.gs.LipSyncResult = nil
}

// --- Lip sync selections ---

func (d *draft) selectAttacker(act SelectAttacker) {
	gs := d.gs
	if gs.Phase != PhaseSelectAttacker {
		d.warn(gs.CurrentTurn, "Select Fail: Not in %s phase (Current: %s).", PhaseSelectAttacker, gs.Phase)
		return
	}
	active := gs.Active()
	if act.Queen == 0 {
		gs.SelectedAttacker = NoQueen
		return
	}
	q, _ := active.Runway.Find(act.Queen)
	if q == nil || !q.CanAttack {
		d.warn(active.ID, "Cannot select Queen %d as attacker. Not ready or not found.", act.Queen)
		gs.SelectedAttacker = NoQueen
		return
	}
	gs.SelectedAttacker = Chose(q.ID)
	d.info(log.EventSelectAttacker, active.ID, q.Name(), "%s selects %s to Lip Sync!", active.Name, q.Name())
}

func (d *draft) selectDefender(act SelectDefender) {
	gs := d.gs
	if gs.Phase != PhaseSelectDefender {
		d.warn(gs.CurrentTurn.Opponent(), "Select Fail: Not in %s phase (Current: %s).", PhaseSelectDefender, gs.Phase)
		return
	}
	opp := gs.Defending()
	if act.Queen == 0 {
		if opp.Runway.Count() > 0 {
			d.warn(opp.ID, "%s must choose a defender while Queens are on the runway.", opp.Name)
			return
		}
		gs.SelectedDefender = NoQueen
		d.info(log.EventSelectDefender, opp.ID, "", "%s has no defender for this Lip Sync.", opp.Name)
		return
	}
	q, _ := opp.Runway.Find(act.Queen)
	if q == nil {
		d.warn(opp.ID, "Cannot select Queen %d as defender for %s. Not found.", act.Queen, opp.Name)
		gs.SelectedDefender = NoQueen
		return
	}
	gs.SelectedDefender = Chose(q.ID)
	d.info(log.EventSelectDefender, opp.ID, q.Name(), "%s's %s is selected to defend!", opp.Name, q.Name())
}

func (d *draft) setCategory(act SetLipSyncCategory) {
	if d.gs.Phase != PhaseReveal {
		d.warn(d.gs.CurrentTurn, "Category Fail: Not in %s phase (Current: %s).", PhaseReveal, d.gs.Phase)
		return
	}
	if act.Category == CategoryNone {
		d.warn(d.gs.CurrentTurn, "Category Fail: no category given.")
		return
	}
	d.gs.LipSyncCategory = act.Category
	d.info(log.EventCategoryReveal, "", "", "The Lip Sync category is... %s!", act.Category)
}
