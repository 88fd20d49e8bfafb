package engine

import "github.com/peterkuimelis/werkroom/internal/game"

// fireTriggers compares the state before a top-level action with the
// current one and hands the resulting power triggers to the PowerManager.
// Triggers fire in a fixed order: queens played, lip sync start, lip sync
// result, eliminations, then end of turn and phase change.
func (e *Engine) fireTriggers(prev *game.GameState) {
	if prev == nil {
		return
	}
	if h := played(prev, e.gs); len(h) > 0 {
		e.pm.HandleTrigger(e.gs, game.PowerOnPlay, h)
	}
	if prev.LipSyncCategory == game.CategoryNone && e.gs.LipSyncCategory != game.CategoryNone {
		e.pm.HandleTrigger(e.gs, game.PowerLipSyncStart, game.BattleHolders(e.gs))
	}
	if prev.LipSyncResult == nil && e.gs.LipSyncResult != nil {
		win, lose := game.ResultHolders(e.gs)
		if len(win) > 0 {
			e.pm.HandleTrigger(e.gs, game.PowerLipSyncWin, win)
		}
		if len(lose) > 0 {
			e.pm.HandleTrigger(e.gs, game.PowerLipSyncLose, lose)
		}
	}
	if h := eliminated(prev, e.gs); len(h) > 0 {
		e.pm.HandleTrigger(e.gs, game.PowerEliminated, h)
	}
	if prev.Phase != e.gs.Phase || prev.CurrentTurn != e.gs.CurrentTurn {
		if prev.Phase == game.PhaseUntuck {
			e.pm.EndOfTurn(e.gs)
		}
		e.pm.HandleTrigger(e.gs, game.PowerPhaseChange, game.RunwayHolders(e.gs))
	}
}

// played returns the queens on next's runways that were not on prev's.
func played(prev, next *game.GameState) []game.Holder {
	var out []game.Holder
	for i, p := range next.Players {
		if p == nil {
			continue
		}
		for _, q := range p.Runway.Queens() {
			if old := prev.Players[i]; old != nil {
				if found, _ := old.Runway.Find(q.ID); found != nil {
					continue
				}
			}
			out = append(out, game.Holder{Owner: p.ID, Queen: q.ID})
		}
	}
	return out
}

// eliminated returns the queens that left a runway for the discard pile.
func eliminated(prev, next *game.GameState) []game.Holder {
	var out []game.Holder
	for i, p := range next.Players {
		old := prev.Players[i]
		if p == nil || old == nil || p == old {
			continue
		}
		for _, q := range old.Runway.Queens() {
			if found, _ := p.Runway.Find(q.ID); found != nil {
				continue
			}
			for _, c := range p.Discard {
				if c.ID == q.ID {
					out = append(out, game.Holder{Owner: p.ID, Queen: q.ID})
					break
				}
			}
		}
	}
	return out
}
