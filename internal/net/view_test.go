package net

import (
	"testing"

	"github.com/peterkuimelis/werkroom/internal/game"
	"github.com/peterkuimelis/werkroom/internal/log"
)

// TestBuildStateView: each seat sees its own hand and only the opponent's hand size.
func TestBuildStateView(t *testing.T) {
	e := startGame(t, cheapCatalog(t), [2]bool{false, true})
	gs := e.State()

	you := BuildStateView(gs, game.Player1)
	if you.You.ID != "player1" || you.Opponent.ID != "player2" || !you.IsYourTurn {
		t.Errorf("Expected player1's perspective, got %+v", you)
	}
	if len(you.You.Hand) != len(gs.Players[0].Hand) || you.You.HandCount != len(gs.Players[0].Hand) {
		t.Errorf("Expected %d visible cards, got %d", len(gs.Players[0].Hand), len(you.You.Hand))
	}
	if you.Opponent.Hand != nil || you.Opponent.HandCount != len(gs.Players[1].Hand) {
		t.Errorf("Expected a hidden opponent hand of %d, got %+v", len(gs.Players[1].Hand), you.Opponent)
	}
	if len(you.You.Runway) != game.MaxRunwayQueens {
		t.Errorf("Expected %d runway slots, got %d", game.MaxRunwayQueens, len(you.You.Runway))
	}
	if you.PhaseKey != "werk_room" || you.Phase != "Werk Room" {
		t.Errorf("Expected the Werk Room, got %s/%s", you.PhaseKey, you.Phase)
	}

	them := BuildStateView(gs, game.Player2)
	if them.IsYourTurn || them.You.Hand == nil || them.Opponent.Hand != nil {
		t.Errorf("Expected player2's perspective, got %+v", them)
	}
	if BuildStateView(nil, game.Player1) != nil {
		t.Errorf("Expected nil view for a nil state")
	}
}

// TestQueenView: runway queens carry effective stats, shade limits and equipment.
func TestQueenView(t *testing.T) {
	wig := &game.CardDefinition{ID: "E1", Name: "Wig", Kind: game.KindEquipment, EquipmentType: "Wig", Boosts: game.Stats{Nerve: 2}}
	q := &game.CardInstance{
		ID:            4,
		Def:           &game.CardDefinition{ID: "Q1", Name: "Aja", Kind: game.KindQueen, PowerName: "Death Drop"},
		OriginalStats: game.Uniform(5),
		ShadeTokens:   1,
		CanAttack:     true,
		Equipment:     []*game.CardInstance{{ID: 9, Def: wig}},
	}
	gs := &game.GameState{
		Players: [2]*game.Player{
			{ID: game.Player1, Runway: game.Runway{nil, q}},
			{ID: game.Player2},
		},
		CurrentTurn: game.Player1,
		Phase:       game.PhaseWerkRoom,
	}

	sv := BuildStateView(gs, game.Player2)
	if sv.Opponent.Runway[0] != nil {
		t.Errorf("Expected an empty first slot")
	}
	qv := sv.Opponent.Runway[1]
	if qv == nil {
		t.Fatalf("Expected a queen in slot 1")
	}
	if qv.Stats.Nerve != 7 || qv.Base.Nerve != 5 {
		t.Errorf("Expected nerve 7 over base 5, got %d over %d", qv.Stats.Nerve, qv.Base.Nerve)
	}
	if qv.ShadeLimit != game.ShadeLimit || qv.Shade != 1 || !qv.Ready || qv.Power != "Death Drop" {
		t.Errorf("Expected queen details, got %+v", qv)
	}
	if len(qv.Equipment) != 1 || qv.Equipment[0].Type != "Wig" || qv.Equipment[0].Stats.Nerve != 2 {
		t.Errorf("Expected the wig, got %+v", qv.Equipment)
	}
}

// TestEventsSince: log entries come back oldest first, newer than the cursor.
func TestEventsSince(t *testing.T) {
	gs := &game.GameState{Log: []log.GameEvent{
		{Seq: 3, Time: testTime, Details: "third"},
		{Seq: 2, Time: testTime, Details: "second"},
		{Seq: 1, Time: testTime, Details: "first", Level: log.LevelWarn},
	}}
	got := EventsSince(gs, 1)
	if len(got) != 2 || got[0].Details != "second" || got[1].Details != "third" {
		t.Errorf("Expected second then third, got %+v", got)
	}
	all := EventsSince(gs, 0)
	if len(all) != 3 || all[0].Level != "WARN" || all[0].Time != "15:04:05" {
		t.Errorf("Expected the warn entry with its time first, got %+v", all[0])
	}
	if EventsSince(nil, 0) != nil {
		t.Errorf("Expected no events for a nil state")
	}
}
