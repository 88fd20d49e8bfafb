package net

import (
	"errors"
	"testing"

	"github.com/peterkuimelis/werkroom/internal/game"
)

// TestParseCommand: REPL lines map onto wire commands.
func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"play 12", Command{Op: OpPlay, Card: 12}},
		{"P 3", Command{Op: OpPlay, Card: 3}},
		{"equip 14 3", Command{Op: OpEquip, Card: 14, Queen: 3}},
		{"use 3 14", Command{Op: OpUse, Queen: 3, Equipment: 14}},
		{"power 7", Command{Op: OpPower, Queen: 7}},
		{"attack 7", Command{Op: OpAttack, Queen: 7}},
		{"attack none", Command{Op: OpAttack}},
		{"skip", Command{Op: OpAttack}},
		{"defend 9", Command{Op: OpDefend, Queen: 9}},
		{"defend none", Command{Op: OpDefend}},
		{"  end  ", Command{Op: OpAdvance}},
		{"next", Command{Op: OpAdvance}},
	}
	for _, tt := range tests {
		got, err := ParseCommand(tt.line)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.line, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: expected %+v, got %+v", tt.line, tt.want, got)
		}
	}
}

// TestParseCommandErrors: malformed lines are refused.
func TestParseCommandErrors(t *testing.T) {
	for _, line := range []string{"", "dance", "play", "play x", "play -1", "equip 1", "use 1 2 3"} {
		if _, err := ParseCommand(line); err == nil {
			t.Errorf("%q: expected an error", line)
		}
	}
	if _, err := ParseCommand("dance"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Expected ErrUnknownCommand, got %v", err)
	}
}

// TestCommandString: String round-trips through ParseCommand.
func TestCommandString(t *testing.T) {
	for _, c := range []Command{
		{Op: OpPlay, Card: 4}, {Op: OpEquip, Card: 4, Queen: 2}, {Op: OpUse, Queen: 2, Equipment: 4},
		{Op: OpPower, Queen: 2}, {Op: OpAttack}, {Op: OpDefend, Queen: 5}, {Op: OpAdvance},
	} {
		got, err := ParseCommand(c.String())
		if err != nil || got != c {
			t.Errorf("Expected %+v from %q, got %+v (%v)", c, c.String(), got, err)
		}
	}
}

// TestMover: the defender decides during Select Defender, the active player otherwise.
func TestMover(t *testing.T) {
	gs := &game.GameState{CurrentTurn: game.Player1}
	for phase, want := range map[game.Phase]game.PlayerID{
		game.PhaseWerkRoom:       game.Player1,
		game.PhaseSelectAttacker: game.Player1,
		game.PhaseSelectDefender: game.Player2,
		game.PhaseReveal:         "",
		game.PhaseSpillTheTea:    "",
	} {
		gs.Phase = phase
		if got := Mover(gs); got != want {
			t.Errorf("%s: expected %q, got %q", phase, want, got)
		}
	}
	gs.Phase, gs.Winner = game.PhaseWerkRoom, game.Player2
	if got := Mover(gs); got != "" {
		t.Errorf("Expected nobody to move after game over, got %q", got)
	}
}

// TestApply: commands run for the seat to move and rejections surface as errors.
func TestApply(t *testing.T) {
	e := startGame(t, cheapCatalog(t), [2]bool{false, true})
	gs := e.State()
	if gs.Phase != game.PhaseWerkRoom || gs.CurrentTurn != game.Player1 {
		t.Fatalf("Expected Player 1's Werk Room, got %s for %s", gs.Phase, gs.CurrentTurn)
	}

	if _, err := Apply(e, game.Player2, Command{Op: OpAdvance}); !errors.Is(err, ErrNotYourMove) {
		t.Errorf("Expected ErrNotYourMove, got %v", err)
	}
	if _, err := Apply(e, game.Player1, Command{Op: "dance"}); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Expected ErrUnknownCommand, got %v", err)
	}
	if _, err := Apply(e, game.Player1, Command{Op: OpPlay, Card: 9999}); !errors.Is(err, ErrRejected) {
		t.Errorf("Expected ErrRejected, got %v", err)
	}

	card := gs.Players[0].Hand[0]
	next, err := Apply(e, game.Player1, Command{Op: OpPlay, Card: card.ID})
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if q, _ := next.Players[0].Runway.Find(card.ID); q == nil {
		t.Errorf("Expected %s on the runway", card.Name())
	}
	if next.Players[0].GagTokens != gs.Players[0].GagTokens-1 {
		t.Errorf("Expected gag %d, got %d", gs.Players[0].GagTokens-1, next.Players[0].GagTokens)
	}
}

// TestOptions: Werk Room options list affordable plays and always end with advancing.
func TestOptions(t *testing.T) {
	e := startGame(t, cheapCatalog(t), [2]bool{false, true})
	gs := e.State()

	opts := Options(gs, game.Player1, nil)
	if len(opts) != len(gs.Players[0].Hand)+1 {
		t.Fatalf("Expected %d options, got %d", len(gs.Players[0].Hand)+1, len(opts))
	}
	if opts[0].Command.Op != OpPlay {
		t.Errorf("Expected a play option first, got %+v", opts[0])
	}
	if last := opts[len(opts)-1]; last.Command.Op != OpAdvance {
		t.Errorf("Expected advance last, got %+v", last)
	}
	if got := Options(gs, game.Player2, nil); got != nil {
		t.Errorf("Expected no options for the waiting seat, got %v", got)
	}
}

// TestLipSyncOptions: attacker and defender options follow the selections.
func TestLipSyncOptions(t *testing.T) {
	ready := &game.CardInstance{ID: 3, Def: &game.CardDefinition{Name: "Ready"}, CanAttack: true}
	rookie := &game.CardInstance{ID: 4, Def: &game.CardDefinition{Name: "Rookie"}}
	guard := &game.CardInstance{ID: 5, Def: &game.CardDefinition{Name: "Guard"}}
	gs := &game.GameState{
		Players: [2]*game.Player{
			{ID: game.Player1, Runway: game.Runway{ready, rookie}},
			{ID: game.Player2, Runway: game.Runway{guard}},
		},
		CurrentTurn:      game.Player1,
		Phase:            game.PhaseSelectAttacker,
		SelectedAttacker: game.NoQueen,
		SelectedDefender: game.Undecided,
	}

	opts := Options(gs, game.Player1, nil)
	if len(opts) != 2 || opts[0].Command != (Command{Op: OpAttack, Queen: 3}) || opts[1].Desc != "Skip the lip sync" {
		t.Errorf("Expected attack with Ready then skip, got %+v", opts)
	}
	gs.SelectedAttacker = game.Chose(3)
	opts = Options(gs, game.Player1, nil)
	if len(opts) != 1 || opts[0].Command.Op != OpAdvance {
		t.Errorf("Expected only advance once the attacker is chosen, got %+v", opts)
	}

	gs.Phase = game.PhaseSelectDefender
	opts = Options(gs, game.Player2, nil)
	if len(opts) != 1 || opts[0].Command != (Command{Op: OpDefend, Queen: 5}) {
		t.Errorf("Expected defend with Guard, got %+v", opts)
	}
	gs.SelectedDefender = game.Chose(5)
	opts = Options(gs, game.Player2, nil)
	if len(opts) != 1 || opts[0].Command.Op != OpAdvance {
		t.Errorf("Expected only advance once the defender is chosen, got %+v", opts)
	}

	gs.Players[1].Runway = game.Runway{}
	gs.SelectedDefender = game.Undecided
	opts = Options(gs, game.Player2, nil)
	if len(opts) != 1 || opts[0].Command != (Command{Op: OpDefend}) {
		t.Errorf("Expected no-defender option for an empty runway, got %+v", opts)
	}
}

// TestEquipmentOptions: equipment is offered per queen lacking its type and activations need their cost.
func TestEquipmentOptions(t *testing.T) {
	wig := &game.CardDefinition{ID: "W", Name: "Wig", Kind: game.KindEquipment, EquipmentType: "Wig", Cost: 1}
	fan := &game.CardDefinition{ID: "F", Name: "Fan", Kind: game.KindEquipment, EquipmentType: "Prop", Cost: 1,
		Effects: []game.Effect{{Trigger: game.TriggerActivate, Action: game.DrawCards{Count: 1}, Cost: game.EffectCost{Gag: 1}}}}
	a := &game.CardInstance{ID: 1, Def: &game.CardDefinition{Name: "A"}, Equipment: []*game.CardInstance{{ID: 9, Def: wig}}}
	b := &game.CardInstance{ID: 2, Def: &game.CardDefinition{Name: "B"}, Equipment: []*game.CardInstance{{ID: 8, Def: fan}}}
	me := &game.Player{ID: game.Player1, GagTokens: 1, Runway: game.Runway{a, b}, Hand: []*game.CardInstance{{ID: 7, Def: wig}}}
	gs := &game.GameState{
		Players:     [2]*game.Player{me, {ID: game.Player2}},
		CurrentTurn: game.Player1,
		Phase:       game.PhaseWerkRoom,
	}

	opts := Options(gs, game.Player1, func(int) error { return errors.New("no power") })
	want := []Command{
		{Op: OpEquip, Card: 7, Queen: 2},
		{Op: OpUse, Queen: 2, Equipment: 8},
		{Op: OpAdvance},
	}
	if len(opts) != len(want) {
		t.Fatalf("Expected %d options, got %+v", len(want), opts)
	}
	for i, w := range want {
		if opts[i].Command != w {
			t.Errorf("option %d: expected %+v, got %+v", i, w, opts[i].Command)
		}
	}

	me.GagTokens = 0
	for _, o := range Options(gs, game.Player1, nil) {
		if o.Command.Op == OpUse || o.Command.Op == OpEquip {
			t.Errorf("Expected nothing affordable without gag, got %+v", o)
		}
	}
}
