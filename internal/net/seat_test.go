package net

import (
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/peterkuimelis/werkroom/internal/game"
)

// servePeer runs ServeSeat for seat id over a pipe and returns the far end.
func servePeer(t *testing.T, tbl Table, id game.PlayerID) (*peer, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	a, b := net.Pipe()
	errCh := make(chan error, 1)
	go func() { errCh <- ServeSeat(ctx, a, tbl, id) }()
	t.Cleanup(func() {
		cancel()
		a.Close()
		b.Close()
	})
	return &peer{t: t, enc: json.NewEncoder(b), dec: json.NewDecoder(b)}, errCh
}

// TestServeSeatWelcome: a seat is greeted and gets a state with options on its turn.
func TestServeSeatWelcome(t *testing.T) {
	e := startGame(t, cheapCatalog(t), [2]bool{false, true})
	p, _ := servePeer(t, e, game.Player1)

	if msg := p.recv(); msg.Type != MsgWelcome || msg.Seat != "player1" {
		t.Fatalf("Expected welcome for player1, got %+v", msg)
	}
	msg := p.recvType(MsgState)
	if msg.State == nil || msg.State.PhaseKey != "werk_room" {
		t.Fatalf("Expected the Werk Room state, got %+v", msg.State)
	}
	if len(msg.Options) == 0 || len(msg.Events) == 0 {
		t.Errorf("Expected options and the game log so far, got %d options and %d events", len(msg.Options), len(msg.Events))
	}
}

// TestServeSeatErrors: rejected and malformed messages come back as errors.
func TestServeSeatErrors(t *testing.T) {
	e := startGame(t, cheapCatalog(t), [2]bool{false, true})
	p, _ := servePeer(t, e, game.Player1)
	p.recvType(MsgState)

	p.send(Command{Op: OpPlay, Card: 9999})
	if msg := p.recvType(MsgError); !strings.Contains(msg.Error, "rejected") {
		t.Errorf("Expected a rejection, got %q", msg.Error)
	}
	if err := p.enc.Encode(ClientMessage{Type: MsgJoin}); err != nil {
		t.Fatal(err)
	}
	if msg := p.recvType(MsgError); !strings.Contains(msg.Error, "unexpected") {
		t.Errorf("Expected an unexpected-message error, got %q", msg.Error)
	}
}

// TestServeSeatWaitingSeat: the seat not on the move is refused.
func TestServeSeatWaitingSeat(t *testing.T) {
	e := startGame(t, cheapCatalog(t), [2]bool{false, false})
	p, _ := servePeer(t, e, game.Player2)
	if msg := p.recvType(MsgState); len(msg.Options) != 0 {
		t.Errorf("Expected no options while waiting, got %v", msg.Options)
	}
	p.send(Command{Op: OpAdvance})
	if msg := p.recvType(MsgError); msg.Error != ErrNotYourMove.Error() {
		t.Errorf("Expected %q, got %q", ErrNotYourMove, msg.Error)
	}
}

// TestServeSeatPlaysToGameOver: a seat that always takes its last option reaches game over.
func TestServeSeatPlaysToGameOver(t *testing.T) {
	e := startGame(t, cheapCatalog(t), [2]bool{false, true})
	p, errCh := servePeer(t, e, game.Player1)

	for range 10000 {
		msg := p.recv()
		switch msg.Type {
		case MsgState:
			if n := len(msg.Options); n > 0 {
				p.send(msg.Options[n-1].Command)
			}
		case MsgGameOver:
			if msg.Result == "" || msg.State == nil {
				t.Errorf("Expected a result and final state, got %+v", msg)
			}
			if msg.Winner != "" && msg.Winner != msg.State.Winner {
				t.Errorf("Expected winner %q in the state, got %q", msg.Winner, msg.State.Winner)
			}
			if err := <-errCh; err != nil {
				t.Errorf("Expected a clean finish, got %v", err)
			}
			return
		}
	}
	t.Fatalf("game did not finish")
}

// TestResult: finished, halted and closed games are described.
func TestResult(t *testing.T) {
	gs := &game.GameState{
		Players:    [2]*game.Player{{ID: game.Player1, Name: "Ru"}, {ID: game.Player2, Name: "CPU"}},
		Winner:     game.Player1,
		TurnNumber: 6,
	}
	if got := Result(gs, false); got != "Ru wins after 6 turn(s)!" {
		t.Errorf("Expected a win message, got %q", got)
	}
	gs.Winner = ""
	if got := Result(gs, true); !strings.Contains(got, "halted") {
		t.Errorf("Expected a halted message, got %q", got)
	}
	if got := Result(nil, false); !strings.Contains(got, "closed") {
		t.Errorf("Expected a closed message, got %q", got)
	}
}
