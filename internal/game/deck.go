package game

import (
	"github.com/peterkuimelis/werkroom/internal/log"
)

// DefaultNames are the seat names used when InitializeGame leaves them empty.
var DefaultNames = [2]string{"Player 1", "CPU"}

// initialize builds a fresh game. The combined pool of queens and equipment
// is shuffled and split, each player getting at most MaxDeckSize cards.
func (r *Reducer) initialize(act InitializeGame) *GameState {
	d := r.begin(&GameState{SelectedAttacker: NoQueen, SelectedDefender: Undecided})
	d.info(log.EventGameStart, "", "", "Initializing New Game...")
	if len(act.Queens) == 0 {
		d.fail("", "Init Error: missing queen card data.")
		return d.gs
	}
	for _, def := range append(append([]*CardDefinition(nil), act.Queens...), act.Equipment...) {
		if def == nil {
			d.fail("", "Init Error: nil card definition.")
			return d.gs
		}
	}

	ids := act.IDs
	if ids == nil {
		ids = NewIDGenerator()
	}
	var pool []*CardInstance
	for _, def := range act.Queens {
		pool = append(pool, ids.NewInstance(def))
	}
	for _, def := range act.Equipment {
		pool = append(pool, ids.NewInstance(def))
	}
	p1Size := min(len(pool)/2, MaxDeckSize)
	p2Size := min(len(pool)-p1Size, MaxDeckSize)
	r.shuffle(pool)
	decks := [2][]*CardInstance{
		append([]*CardInstance(nil), pool[:p1Size]...),
		append([]*CardInstance(nil), pool[p1Size:p1Size+p2Size]...),
	}

	names := act.Names
	for i := range names {
		if names[i] == "" {
			names[i] = DefaultNames[i]
		}
	}
	for i, id := range []PlayerID{Player1, Player2} {
		p := &Player{
			ID:            id,
			Name:          names[i],
			ShantayPoints: StartingShantay,
			GagTokens:     StartingGag,
			Deck:          decks[i],
		}
		for range StartingHandSize {
			if len(p.Deck) == 0 {
				break
			}
			p.Hand = append(p.Hand, p.Deck[len(p.Deck)-1])
			p.Deck = p.Deck[:len(p.Deck)-1]
		}
		d.gs.Players[i] = p
	}
	d.gs.CurrentTurn = Player1
	d.gs.Phase = PhaseSpillTheTea
	d.gs.TurnNumber = 1
	d.info(log.EventGameStart, "", "", "Game Started! Turn 1: %s - %s", names[0], PhaseSpillTheTea)
	d.info(log.EventGameStart, "", "", "Init complete. P1 starts. P1 Deck: %d, P2 Deck: %d", len(d.gs.Players[0].Deck), len(d.gs.Players[1].Deck))
	return d.gs
}
