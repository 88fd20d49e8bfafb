package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/peterkuimelis/werkroom/internal/game"
)

// Table is a running game that seats can watch and drive.
type Table interface {
	Game
	Subscribe(fn func(*game.GameState)) func()
	Done() <-chan struct{}
	Halted() bool
}

// seat streams a game to one player's connection and applies the commands
// it sends.
type seat struct {
	id    game.PlayerID
	table Table
	enc   *json.Encoder
	dec   *json.Decoder

	mu     sync.Mutex
	latest *game.GameState
	wake   chan struct{}
	errs   chan string
	sent   int // newest log entry already sent
}

// ServeSeat plays seat id of t over rw until the game ends, the peer
// disconnects or ctx is done. The caller owns rw and closes it afterwards.
func ServeSeat(ctx context.Context, rw io.ReadWriter, t Table, id game.PlayerID) error {
	return serveSeat(ctx, json.NewEncoder(rw), json.NewDecoder(rw), t, id)
}

// ReadJoin reads the join handshake from a new connection. The decoder may
// hold buffered input and must be passed on to ServeJoined.
func ReadJoin(r io.Reader) (ClientMessage, *json.Decoder, error) {
	dec := json.NewDecoder(r)
	var join ClientMessage
	if err := dec.Decode(&join); err != nil {
		return join, nil, fmt.Errorf("read join message: %w", err)
	}
	if join.Type != MsgJoin {
		return join, nil, fmt.Errorf("read join message: unexpected %q", join.Type)
	}
	return join, dec, nil
}

// ServeJoined is ServeSeat for a connection whose join was read by ReadJoin.
func ServeJoined(ctx context.Context, w io.Writer, dec *json.Decoder, t Table, id game.PlayerID) error {
	return serveSeat(ctx, json.NewEncoder(w), dec, t, id)
}

func serveSeat(ctx context.Context, enc *json.Encoder, dec *json.Decoder, t Table, id game.PlayerID) error {
	s := &seat{
		id:    id,
		table: t,
		enc:   enc,
		dec:   dec,
		wake:  make(chan struct{}, 1),
		errs:  make(chan string, 8),
	}
	if err := s.enc.Encode(ServerMessage{Type: MsgWelcome, Seat: string(id)}); err != nil {
		return fmt.Errorf("send welcome: %w", err)
	}
	unsubscribe := t.Subscribe(s.push)
	defer unsubscribe()
	s.push(t.State())

	quit := make(chan struct{})
	defer close(quit)
	readErr := make(chan error, 1)
	go func() { readErr <- s.readLoop(quit) }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case msg := <-s.errs:
			if err := s.enc.Encode(ServerMessage{Type: MsgError, Error: msg}); err != nil {
				return fmt.Errorf("send error: %w", err)
			}
		case <-s.wake:
			if err := s.sendState(); err != nil {
				return err
			}
		case <-t.Done():
			return s.sendGameOver()
		}
	}
}

// push records the newest state. It runs inside the engine and must not
// block or call back into it.
func (s *seat) push(gs *game.GameState) {
	if gs == nil {
		return
	}
	s.mu.Lock()
	s.latest = gs
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *seat) readLoop(quit <-chan struct{}) error {
	for {
		var msg ClientMessage
		if err := s.dec.Decode(&msg); err != nil {
			return err
		}
		if msg.Type != MsgCommand || msg.Command == nil {
			s.report(quit, fmt.Sprintf("unexpected %q message", msg.Type))
			continue
		}
		if _, err := Apply(s.table, s.id, *msg.Command); err != nil {
			s.report(quit, err.Error())
		}
	}
}

func (s *seat) report(quit <-chan struct{}, msg string) {
	select {
	case s.errs <- msg:
	case <-quit:
	}
}

func (s *seat) snapshot() *game.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

func (s *seat) sendState() error {
	gs := s.snapshot()
	if gs == nil {
		return nil
	}
	msg := ServerMessage{
		Type:   MsgState,
		Events: EventsSince(gs, s.sent),
		State:  BuildStateView(gs, s.id),
		Options: Options(gs, s.id, func(queen int) error {
			return s.table.CanActivatePower(s.id, queen)
		}),
	}
	s.sent = gs.Seq
	if err := s.enc.Encode(msg); err != nil {
		return fmt.Errorf("send state: %w", err)
	}
	return nil
}

func (s *seat) sendGameOver() error {
	gs := s.table.State()
	msg := ServerMessage{
		Type:   MsgGameOver,
		Events: EventsSince(gs, s.sent),
		State:  BuildStateView(gs, s.id),
		Result: Result(gs, s.table.Halted()),
	}
	if gs != nil {
		msg.Winner = string(gs.Winner)
	}
	if err := s.enc.Encode(msg); err != nil {
		return fmt.Errorf("send game_over: %w", err)
	}
	return nil
}

// Result describes how a finished game ended.
func Result(gs *game.GameState, halted bool) string {
	switch {
	case gs != nil && gs.Over():
		return fmt.Sprintf("%s wins after %d turn(s)!", gs.Player(gs.Winner).Name, gs.TurnNumber)
	case halted:
		return "The game was halted before a winner was found."
	default:
		return "The game was closed."
	}
}
