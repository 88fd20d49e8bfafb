package game

import (
	"testing"

	"github.com/peterkuimelis/werkroom/internal/log"
)

// TestInitializeGame: a 20 card pool is split evenly and each player draws 5.
func TestInitializeGame(t *testing.T) {
	queens, equip := makeCatalog(12, 8)
	r := newTestReducer(1)
	gs := r.Reduce(nil, InitializeGame{Queens: queens, Equipment: equip})

	if gs.Phase != PhaseSpillTheTea || gs.TurnNumber != 1 || gs.CurrentTurn != Player1 {
		t.Fatalf("Expected turn 1 Spill the Tea for player1, got turn %d %s %s", gs.TurnNumber, gs.Phase, gs.CurrentTurn)
	}
	for _, p := range gs.Players {
		if p.ShantayPoints != StartingShantay || p.GagTokens != StartingGag {
			t.Errorf("%s: expected %d shantay and %d gag, got %d and %d", p.ID, StartingShantay, StartingGag, p.ShantayPoints, p.GagTokens)
		}
		if len(p.Hand) != StartingHandSize {
			t.Errorf("%s: expected %d cards in hand, got %d", p.ID, StartingHandSize, len(p.Hand))
		}
		if len(p.Deck) != 5 {
			t.Errorf("%s: expected 5 cards left in deck, got %d", p.ID, len(p.Deck))
		}
		if p.Runway.Count() != 0 {
			t.Errorf("%s: expected empty runway", p.ID)
		}
	}
	if gs.SelectedAttacker != NoQueen || gs.SelectedDefender != Undecided {
		t.Errorf("Expected attacker none and defender undecided, got %s / %s", gs.SelectedAttacker, gs.SelectedDefender)
	}
	if gs.Players[0].Name != "Player 1" || gs.Players[1].Name != "CPU" {
		t.Errorf("Expected default names, got %q and %q", gs.Players[0].Name, gs.Players[1].Name)
	}
	if !logContains(gs, "Game Started! Turn 1: Player 1 - Spill the Tea") {
		dumpLog(t, gs)
		t.Error("Expected game start log entry")
	}
	checkInvariants(t, gs)
}

// TestInitializeGameCapsDecks: each deck holds at most 20 cards.
func TestInitializeGameCapsDecks(t *testing.T) {
	queens, equip := makeCatalog(30, 20)
	gs := newTestReducer(2).Reduce(nil, InitializeGame{Queens: queens, Equipment: equip, Names: [2]string{"Alice", "Bob"}})
	for _, p := range gs.Players {
		if total := len(p.Deck) + len(p.Hand); total != MaxDeckSize {
			t.Errorf("%s: expected %d cards, got %d", p.ID, MaxDeckSize, total)
		}
	}
	if gs.Players[0].Name != "Alice" || gs.Players[1].Name != "Bob" {
		t.Errorf("Expected custom names, got %q and %q", gs.Players[0].Name, gs.Players[1].Name)
	}
	checkInvariants(t, gs)
}

func TestInitializeGameWithoutQueens(t *testing.T) {
	gs := newTestReducer(1).Reduce(nil, InitializeGame{})
	if gs.Players[0] != nil || gs.Players[1] != nil {
		t.Fatal("Expected no players without queen data")
	}
	if gs.Log[0].Level != log.LevelError {
		t.Errorf("Expected an error entry, got %s", gs.Log[0].Level)
	}

	// Any action on the empty state is rejected.
	next := newTestReducer(1).Reduce(gs, AdvancePhase{})
	if next.Phase != PhaseNone || !logContains(next, "No game in progress") {
		t.Error("Expected advance to be rejected with no game in progress")
	}
}

// TestInitializeGameIsDeterministic: the same seed deals the same hands.
func TestInitializeGameIsDeterministic(t *testing.T) {
	queens, equip := makeCatalog(10, 10)
	a := newTestReducer(7).Reduce(nil, InitializeGame{Queens: queens, Equipment: equip})
	b := newTestReducer(7).Reduce(nil, InitializeGame{Queens: queens, Equipment: equip})
	for i := range a.Players {
		for j := range a.Players[i].Hand {
			if a.Players[i].Hand[j].Name() != b.Players[i].Hand[j].Name() {
				t.Fatalf("Expected identical deals for the same seed")
			}
		}
	}
}

// TestPlayQueen: a 3 cost queen played with 5 gag lands in slot 0 and cannot attack.
func TestPlayQueen(t *testing.T) {
	b := newBoard(t, PhaseWerkRoom)
	card := b.hand(Player1, vanillaQueen("Jinkx", 3, Stats{5, 6, 4, 7}))
	prev := b.gs

	gs := newTestReducer(1).Reduce(prev, PlayQueenCard{Player: Player1, Card: card.ID})

	p := gs.Players[0]
	if p.GagTokens != 2 {
		t.Errorf("Expected 2 gag left, got %d", p.GagTokens)
	}
	if len(p.Hand) != 0 {
		t.Errorf("Expected empty hand, got %d cards", len(p.Hand))
	}
	q := p.Runway[0]
	if q == nil || q.ID != card.ID {
		t.Fatal("Expected Jinkx in runway slot 0")
	}
	if q.CanAttack {
		t.Error("Expected a freshly played queen not to attack")
	}
	if !logContains(gs, "Player 1 plays Jinkx (Cost: 3). Gag tokens remaining: 2.") {
		dumpLog(t, gs)
		t.Error("Expected play log entry")
	}

	// The input state is untouched.
	if prev.Players[0].GagTokens != 5 || len(prev.Players[0].Hand) != 1 || prev.Players[0].Runway[0] != nil {
		t.Error("Expected previous state to be unchanged")
	}
	if gs.Players[1] != prev.Players[1] {
		t.Error("Expected untouched opponent to be shared")
	}
	checkInvariants(t, gs)
}

// TestPlayQueenRejections: every failed validation is a logged no-op.
func TestPlayQueenRejections(t *testing.T) {
	pricey := vanillaQueen("Pricey", 7, Uniform(9))
	cheap := vanillaQueen("Cheap", 1, Uniform(2))
	gear := equipment("Wig", "Wig", 1, Stats{})

	cases := []struct {
		name   string
		phase  Phase
		player PlayerID
		def    *CardDefinition
		full   bool
		reason string
	}{
		{"not enough gag", PhaseWerkRoom, Player1, pricey, false, "needs 7 Gag"},
		{"wrong phase", PhaseSpillTheTea, Player1, cheap, false, "Not in Werk Room"},
		{"not your turn", PhaseWerkRoom, Player2, cheap, false, "Not player2's turn"},
		{"runway full", PhaseWerkRoom, Player1, cheap, true, "Runway full"},
		{"not a queen", PhaseWerkRoom, Player1, gear, false, "not a valid Queen"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newBoard(t, tc.phase)
			if tc.full {
				for range MaxRunwayQueens {
					b.runway(tc.player, cheap)
				}
			}
			card := b.hand(tc.player, tc.def)
			prev := b.gs
			gs := newTestReducer(1).Reduce(prev, PlayQueenCard{Player: tc.player, Card: card.ID})
			if !sameExceptLog(prev, gs) {
				t.Fatal("Expected rejected play to leave the state unchanged")
			}
			if gs.Seq != prev.Seq+1 || gs.Log[0].Level != log.LevelWarn {
				t.Errorf("Expected one warn entry, got seq %d level %s", gs.Seq, gs.Log[0].Level)
			}
			if !logContains(gs, tc.reason) {
				dumpLog(t, gs)
				t.Errorf("Expected log to mention %q", tc.reason)
			}
		})
	}
}

func TestPlayUnknownCard(t *testing.T) {
	b := newBoard(t, PhaseWerkRoom)
	gs := newTestReducer(1).Reduce(b.gs, PlayQueenCard{Player: Player1, Card: 999})
	if !sameExceptLog(b.gs, gs) || !logContains(gs, "Card 999 not in player1's hand") {
		t.Error("Expected unknown card to be rejected")
	}
}

// TestGainGagCaps: gag never rises above 10.
func TestGainGagCaps(t *testing.T) {
	b := newBoard(t, PhaseSpillTheTea)
	r := newTestReducer(1)
	gs := r.Reduce(b.gs, GainGag{Player: Player1, Amount: 4})
	if gs.Players[0].GagTokens != 9 {
		t.Fatalf("Expected 9 gag, got %d", gs.Players[0].GagTokens)
	}
	gs = r.Reduce(gs, GainGag{Player: Player1, Amount: GagGainPerTurn})
	if gs.Players[0].GagTokens != MaxGag {
		t.Fatalf("Expected gag capped at %d, got %d", MaxGag, gs.Players[0].GagTokens)
	}
	prev := gs
	gs = r.Reduce(gs, GainGag{Player: Player1, Amount: 1})
	if gs.Players[0] != prev.Players[0] || !logContains(gs, "at max Gag") {
		t.Error("Expected gain at max gag to change nothing but the log")
	}
}

// TestGainGagRejectsNonPositive: a zero or negative gain is refused below the cap.
func TestGainGagRejectsNonPositive(t *testing.T) {
	b := newBoard(t, PhaseSpillTheTea)
	r := newTestReducer(1)
	for _, amount := range []int{0, -2} {
		gs := r.Reduce(b.gs, GainGag{Player: Player1, Amount: amount})
		if gs.Players[0] != b.gs.Players[0] {
			t.Errorf("Expected gain of %d to leave the player unchanged", amount)
		}
		if logContains(gs, "at max Gag") || !logContains(gs, "cannot gain") {
			t.Errorf("Expected a warning for gain of %d, got %+v", amount, gs.Log)
		}
	}
}

func TestDrawCard(t *testing.T) {
	b := newBoard(t, PhaseSpillTheTea)
	b.deck(Player1, vanillaQueen("Bottom", 1, Uniform(1)))
	top := b.deck(Player1, vanillaQueen("Top", 1, Uniform(1)))
	r := newTestReducer(1)

	gs := r.Reduce(b.gs, DrawCard{Player: Player1})
	p := gs.Players[0]
	if len(p.Hand) != 1 || p.Hand[0].ID != top.ID {
		t.Fatal("Expected the top card (last element) to be drawn")
	}
	if len(p.Deck) != 1 {
		t.Errorf("Expected 1 card left in deck, got %d", len(p.Deck))
	}
	if !logContains(gs, "Player 1 draws (Top). Hand: 1") {
		dumpLog(t, gs)
		t.Error("Expected draw log entry")
	}

	gs = r.Reduce(gs, DrawCard{Player: Player1})
	prev := gs
	gs = r.Reduce(gs, DrawCard{Player: Player1})
	if !sameExceptLog(prev, gs) || !logContains(gs, "deck empty") {
		t.Error("Expected drawing from an empty deck to be rejected")
	}
}

func TestDrawCardHandFull(t *testing.T) {
	b := newBoard(t, PhaseSpillTheTea)
	for range MaxHandSize {
		b.hand(Player1, vanillaQueen("Filler", 1, Uniform(1)))
	}
	b.deck(Player1, vanillaQueen("Top", 1, Uniform(1)))
	gs := newTestReducer(1).Reduce(b.gs, DrawCard{Player: Player1})
	if !sameExceptLog(b.gs, gs) || !logContains(gs, "hand full") {
		t.Error("Expected draw with a full hand to be rejected")
	}
}

// TestDiscardToHandSize: the oldest cards go to discard until 7 remain.
func TestDiscardToHandSize(t *testing.T) {
	b := newBoard(t, PhaseUntuck)
	var cards []*CardInstance
	for range 9 {
		cards = append(cards, b.hand(Player1, vanillaQueen("Filler", 1, Uniform(1))))
	}
	gs := newTestReducer(1).Reduce(b.gs, DiscardToHandSize{Player: Player1})
	p := gs.Players[0]
	if len(p.Hand) != MaxHandSize {
		t.Fatalf("Expected %d cards in hand, got %d", MaxHandSize, len(p.Hand))
	}
	if len(p.Discard) != 2 || p.Discard[0].ID != cards[0].ID || p.Discard[1].ID != cards[1].ID {
		t.Error("Expected the two oldest cards in discard")
	}
	if p.Hand[0].ID != cards[2].ID {
		t.Error("Expected remaining hand to keep its order")
	}
	if len(eventsOfType(gs, log.EventHandSizeDiscard)) != 1 {
		t.Error("Expected a hand size discard event")
	}
	checkInvariants(t, gs)

	b2 := newBoard(t, PhaseWerkRoom)
	gs = newTestReducer(1).Reduce(b2.gs, DiscardToHandSize{Player: Player1})
	if !logContains(gs, "Not in Untuck phase") {
		t.Error("Expected discard outside Untuck to be rejected")
	}
}

// TestDamageEndsGame: shantay is floored at zero and the opponent wins.
func TestDamageEndsGame(t *testing.T) {
	b := newBoard(t, PhaseWerkRoom)
	r := newTestReducer(1)
	gs := r.Reduce(b.gs, ApplyShantayDamage{Player: Player1, Amount: 30, Source: "test"})
	if gs.Players[0].ShantayPoints != 0 {
		t.Errorf("Expected shantay floored at 0, got %d", gs.Players[0].ShantayPoints)
	}
	if gs.Winner != Player2 || gs.Phase != PhaseGameOver {
		t.Fatalf("Expected player2 to win, got winner %q phase %s", gs.Winner, gs.Phase)
	}
	if !logContains(gs, "GAME OVER! CPU snatches the crown!") {
		dumpLog(t, gs)
		t.Error("Expected game over log entry")
	}

	// Advancing a finished game returns the same state.
	if next := r.Reduce(gs, AdvancePhase{}); next != gs {
		t.Error("Expected advance after game over to return the identical state")
	}

	// Anything else is a logged rejection.
	next := r.Reduce(gs, GainGag{Player: Player1, Amount: 1})
	if !sameExceptLog(gs, next) || next.Log[0].Level != log.LevelWarn {
		t.Error("Expected actions after game over to be rejected")
	}
	checkInvariants(t, next)
}

func TestHealing(t *testing.T) {
	b := newBoard(t, PhaseWerkRoom)
	gs := newTestReducer(1).Reduce(b.gs, ApplyShantayDamage{Player: Player2, Amount: -2, Source: "test"})
	if gs.Players[1].ShantayPoints != StartingShantay+2 {
		t.Errorf("Expected %d shantay, got %d", StartingShantay+2, gs.Players[1].ShantayPoints)
	}
}

func TestSetGameOver(t *testing.T) {
	b := newBoard(t, PhaseReveal)
	gs := newTestReducer(1).Reduce(b.gs, SetGameOver{Winner: Player1})
	if gs.Winner != Player1 || gs.Phase != PhaseGameOver {
		t.Fatal("Expected explicit game over")
	}
	bad := newTestReducer(1).Reduce(b.gs, SetGameOver{Winner: "nobody"})
	if bad.Over() {
		t.Error("Expected an invalid winner to be rejected")
	}
}

type bogusAction struct{}

func (bogusAction) Type() ActionType { return ActionType(-1) }

func TestUnknownAndNilActions(t *testing.T) {
	b := newBoard(t, PhaseWerkRoom)
	r := newTestReducer(1)
	gs := r.Reduce(b.gs, bogusAction{})
	if !sameExceptLog(b.gs, gs) || !logContains(gs, "Unknown action type: UNKNOWN") {
		t.Error("Expected unknown actions to be rejected")
	}
	gs = r.Reduce(b.gs, nil)
	if !sameExceptLog(b.gs, gs) || gs.Log[0].Level != log.LevelError {
		t.Error("Expected nil action to log an error")
	}
}

// TestLogCapped: the log keeps only the newest 50 entries.
func TestLogCapped(t *testing.T) {
	b := newBoard(t, PhaseSpillTheTea)
	b.gs.Players[0].GagTokens = MaxGag
	r := newTestReducer(1)
	gs := b.gs
	for range 60 {
		gs = r.Reduce(gs, GainGag{Player: Player1, Amount: 1})
	}
	if len(gs.Log) != log.MaxEntries {
		t.Fatalf("Expected %d log entries, got %d", log.MaxEntries, len(gs.Log))
	}
	if gs.Log[0].Seq != 60 || gs.Log[len(gs.Log)-1].Seq != 11 {
		t.Errorf("Expected newest first from 60 to 11, got %d..%d", gs.Log[0].Seq, gs.Log[len(gs.Log)-1].Seq)
	}
	if !gs.Log[0].Time.Equal(testTime) {
		t.Error("Expected log timestamps from the reducer clock")
	}
}

// TestSearchDeck: the strongest of the top three is kept, the rest go under the deck.
func TestSearchDeck(t *testing.T) {
	b := newBoard(t, PhaseWerkRoom)
	a := b.deck(Player1, equipment("A", "Wig", 1, Stats{}))
	weak := b.deck(Player1, vanillaQueen("Weak", 1, Stats{1, 2, 3, 4}))
	c := b.deck(Player1, equipment("C", "Heels", 4, Stats{}))
	strong := b.deck(Player1, vanillaQueen("Strong", 2, Uniform(5)))

	gs := newTestReducer(1).Reduce(b.gs, SearchDeck{Player: Player1, Depth: 3, Source: "test"})
	p := gs.Players[0]
	if len(p.Hand) != 1 || p.Hand[0].ID != strong.ID {
		t.Fatal("Expected the strongest queen in hand")
	}
	want := []int{c.ID, weak.ID, a.ID}
	if len(p.Deck) != len(want) {
		t.Fatalf("Expected %d cards in deck, got %d", len(want), len(p.Deck))
	}
	for i, id := range want {
		if p.Deck[i].ID != id {
			t.Errorf("deck[%d]: expected %d, got %d", i, id, p.Deck[i].ID)
		}
	}
	checkInvariants(t, gs)
}

func TestReturnToHand(t *testing.T) {
	b := newBoard(t, PhaseResolution)
	q := b.ids.NewInstance(vanillaQueen("Phoenix", 3, Stats{4, 6, 5, 3}))
	q.ShadeTokens = 3
	b.gs.Players[0].Discard = []*CardInstance{q}

	gs := newTestReducer(1).Reduce(b.gs, ReturnToHand{Player: Player1, Card: q.ID, Cost: 3, Stats: Uniform(5), Source: "test"})
	p := gs.Players[0]
	if len(p.Discard) != 0 || len(p.Hand) != 1 {
		t.Fatal("Expected the queen to move from discard to hand")
	}
	back := p.Hand[0]
	if back.OriginalStats != Uniform(5) || back.ShadeTokens != 0 {
		t.Errorf("Expected reset queen, got stats %s shade %d", back.OriginalStats, back.ShadeTokens)
	}
	if p.GagTokens != 2 {
		t.Errorf("Expected 2 gag after paying 3, got %d", p.GagTokens)
	}
	if q.OriginalStats != (Stats{4, 6, 5, 3}) {
		t.Error("Expected the discarded instance to be left untouched")
	}

	poor := newBoard(t, PhaseResolution)
	poor.gs.Players[0].GagTokens = 2
	q2 := poor.ids.NewInstance(vanillaQueen("Phoenix", 3, Uniform(3)))
	poor.gs.Players[0].Discard = []*CardInstance{q2}
	gs = newTestReducer(1).Reduce(poor.gs, ReturnToHand{Player: Player1, Card: q2.ID, Cost: 3})
	if !sameExceptLog(poor.gs, gs) {
		t.Error("Expected unaffordable return to be rejected")
	}
}

func TestDiscardCards(t *testing.T) {
	b := newBoard(t, PhaseWerkRoom)
	for range 3 {
		b.hand(Player2, vanillaQueen("Filler", 1, Uniform(1)))
	}
	gs := newTestReducer(3).Reduce(b.gs, DiscardCards{Player: Player2, Count: 1, Random: true, Source: "test"})
	if len(gs.Players[1].Hand) != 2 || len(gs.Players[1].Discard) != 1 {
		t.Errorf("Expected one card discarded, hand %d discard %d", len(gs.Players[1].Hand), len(gs.Players[1].Discard))
	}
	checkInvariants(t, gs)

	empty := newBoard(t, PhaseWerkRoom)
	gs = newTestReducer(3).Reduce(empty.gs, DiscardCards{Player: Player2, Count: 1, Source: "test"})
	if !logContains(gs, "no cards to discard") {
		t.Error("Expected empty hand discard to be logged")
	}
}

func TestModifiersByTag(t *testing.T) {
	b := newBoard(t, PhaseWerkRoom)
	q := b.runway(Player2, vanillaQueen("Target", 1, Uniform(5)))
	r := newTestReducer(1)
	gs := r.Reduce(b.gs, AddModifier{Player: Player2, Queen: q.ID, Modifier: Modifier{Tag: "x#1", Source: "Curse", From: Player1, Delta: Uniform(-1), Expiry: ExpireManaged}})
	if got := gs.EffectiveStats(Player2, gs.Players[1].Runway[0]); got != Uniform(4) {
		t.Fatalf("Expected 4/4/4/4, got %s", got)
	}
	gs = r.Reduce(gs, RemoveModifier{Tag: "x#1"})
	if got := gs.EffectiveStats(Player2, gs.Players[1].Runway[0]); got != Uniform(5) {
		t.Errorf("Expected stats restored, got %s", got)
	}
	if !logContains(gs, "Curse effect wears off") {
		t.Error("Expected wear off log entry")
	}
	if len(b.gs.Players[1].Runway[0].Modifiers) != 0 {
		t.Error("Expected the original queen to be untouched")
	}
}

func TestSpendGag(t *testing.T) {
	b := newBoard(t, PhaseWerkRoom)
	r := newTestReducer(1)
	gs := r.Reduce(b.gs, SpendGag{Player: Player1, Amount: 3, Source: "test"})
	if gs.Players[0].GagTokens != 2 {
		t.Fatalf("Expected 2 gag, got %d", gs.Players[0].GagTokens)
	}
	prev := gs
	gs = r.Reduce(gs, SpendGag{Player: Player1, Amount: 3, Source: "test"})
	if !sameExceptLog(prev, gs) {
		t.Error("Expected overspend to be rejected")
	}
}
