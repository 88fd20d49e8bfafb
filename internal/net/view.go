package net

import (
	"time"

	"github.com/peterkuimelis/werkroom/internal/game"
	"github.com/peterkuimelis/werkroom/internal/log"
)

// BuildStateView creates a StateView from the perspective of the given seat.
// The opponent's hand is reduced to a count.
func BuildStateView(gs *game.GameState, seat game.PlayerID) *StateView {
	if gs == nil || gs.Player(seat) == nil {
		return nil
	}
	sv := &StateView{
		You:        buildPlayerView(gs, seat, true),
		Opponent:   buildPlayerView(gs, seat.Opponent(), false),
		Turn:       gs.TurnNumber,
		Phase:      gs.Phase.String(),
		PhaseKey:   gs.Phase.Key(),
		IsYourTurn: gs.CurrentTurn == seat,
		Attacker:   gs.SelectedAttacker.String(),
		Defender:   gs.SelectedDefender.String(),
		Winner:     string(gs.Winner),
	}
	if gs.LipSyncCategory != game.CategoryNone {
		sv.Category = gs.LipSyncCategory.String()
	}
	if r := gs.LipSyncResult; r != nil {
		sv.Result = &ResultView{
			Category:      r.Category.String(),
			AttackerScore: r.AttackerScore,
			DefenderScore: r.DefenderScore,
			Outcome:       r.Outcome.String(),
			Winner:        string(r.Winner),
			Damage:        r.Damage,
		}
	}
	return sv
}

func buildPlayerView(gs *game.GameState, id game.PlayerID, owner bool) PlayerView {
	p := gs.Player(id)
	pv := PlayerView{
		ID:           string(p.ID),
		Name:         p.Name,
		Shantay:      p.ShantayPoints,
		Gag:          p.GagTokens,
		HandCount:    len(p.Hand),
		DeckCount:    len(p.Deck),
		DiscardCount: len(p.Discard),
		Runway:       make([]*QueenView, game.MaxRunwayQueens),
	}
	if owner {
		for _, c := range p.Hand {
			pv.Hand = append(pv.Hand, CardInfo(c))
		}
	}
	for _, slot := range gs.Slots(id) {
		q := slot.Queen
		if q == nil {
			continue
		}
		qv := &QueenView{
			ID:         q.ID,
			Slot:       slot.Index,
			Name:       q.Name(),
			Stats:      statsView(slot.Stats),
			Base:       statsView(q.OriginalStats),
			Shade:      q.ShadeTokens,
			ShadeLimit: slot.Limit,
			Ready:      q.CanAttack,
			Power:      q.Def.PowerName,
			PowerText:  q.Def.PowerText,
		}
		for _, eq := range slot.Equipment {
			qv.Equipment = append(qv.Equipment, CardInfo(eq))
		}
		pv.Runway[slot.Index] = qv
	}
	for _, r := range p.Restrictions {
		pv.Restrictions = append(pv.Restrictions, r.EquipmentType)
	}
	return pv
}

// CardInfo describes a card instance.
func CardInfo(c *game.CardInstance) CardView {
	d := c.Def
	cv := CardView{
		ID:     c.ID,
		CardID: d.ID,
		Name:   d.Name,
		Kind:   d.Kind.String(),
		Cost:   d.Cost,
	}
	if d.IsQueen() {
		st := statsView(c.OriginalStats)
		cv.Stats = &st
		cv.Text = d.PowerText
	} else {
		cv.Type = d.EquipmentType
		cv.Text = d.EffectText
		if d.Boosts != (game.Stats{}) {
			st := statsView(d.Boosts)
			cv.Stats = &st
		}
	}
	return cv
}

func statsView(s game.Stats) Stats {
	return Stats{Charisma: s.Charisma, Uniqueness: s.Uniqueness, Nerve: s.Nerve, Talent: s.Talent}
}

// EventInfo converts a game log entry.
func EventInfo(e log.GameEvent) EventView {
	return EventView{
		Seq:     e.Seq,
		Time:    e.Time.Format(time.TimeOnly),
		Level:   e.Level.String(),
		Turn:    e.Turn,
		Phase:   e.Phase,
		Player:  e.Player,
		Type:    e.Type.String(),
		Card:    e.Card,
		Details: e.Details,
	}
}

// EventsSince returns the log entries of gs newer than seq, oldest first.
func EventsSince(gs *game.GameState, seq int) []EventView {
	if gs == nil {
		return nil
	}
	var out []EventView
	for i := len(gs.Log) - 1; i >= 0; i-- {
		if gs.Log[i].Seq > seq {
			out = append(out, EventInfo(gs.Log[i]))
		}
	}
	return out
}
