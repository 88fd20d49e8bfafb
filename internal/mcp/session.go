package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	stdnet "net"
	"sync"

	"github.com/google/uuid"
	"github.com/peterkuimelis/werkroom/internal/engine"
	"github.com/peterkuimelis/werkroom/internal/game"
	wrnet "github.com/peterkuimelis/werkroom/internal/net"
)

// Opponent kinds for start_game.
const (
	OpponentCPU   = "cpu"
	OpponentHuman = "human"
)

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	GameID   string             `json:"game_id"`
	Seat     string             `json:"seat"`
	Events   []wrnet.EventView  `json:"events"`
	State    *wrnet.StateView   `json:"state,omitempty"`
	Options  []wrnet.ActionView `json:"options,omitempty"`
	YourMove bool               `json:"your_move"`
	GameOver bool               `json:"game_over"`
	Winner   string             `json:"winner,omitempty"`
	Result   string             `json:"result,omitempty"`
	Addr     string             `json:"addr,omitempty"`
}

// GameSession is one game played by the agent. The opponent is the CPU or
// a human connected over TCP with `werkroom join`.
type GameSession struct {
	ID   string
	Seat game.PlayerID
	Addr string // human opponent's listen address

	eng  *engine.Engine
	wake chan struct{}

	mu   sync.Mutex
	sent int // highest log seq already reported

	unsubscribe func()
	human       stdnet.Conn
	humanDone   chan error
	closeOnce   sync.Once
}

// NewGameSession starts a game against the CPU. The agent takes seat.
func NewGameSession(cfg engine.Config, seat game.PlayerID, name string) (*GameSession, error) {
	cfg.CPU = [2]bool{seat != game.Player1, seat != game.Player2}
	cfg.Pacing = engine.Pacing{}
	cfg.Names = seatNames(seat, name, "")
	return startSession(cfg, seat, nil)
}

// NewHumanSession listens on ln, waits for one `werkroom join`, then starts a
// game between the agent and the joined human. It blocks until the human
// connects or ctx ends.
func NewHumanSession(ctx context.Context, cfg engine.Config, ln stdnet.Listener, seat game.PlayerID, name string) (*GameSession, error) {
	type accepted struct {
		conn stdnet.Conn
		err  error
	}
	ch := make(chan accepted, 1)
	go func() {
		conn, err := ln.Accept()
		ch <- accepted{conn, err}
	}()
	var a accepted
	select {
	case a = <-ch:
	case <-ctx.Done():
		ln.Close()
		return nil, ctx.Err()
	}
	ln.Close()
	if a.err != nil {
		return nil, fmt.Errorf("accept: %w", a.err)
	}

	join, dec, err := wrnet.ReadJoin(a.conn)
	if err != nil {
		a.conn.Close()
		return nil, err
	}

	cfg.CPU = [2]bool{}
	cfg.Names = seatNames(seat, name, join.Name)
	sess, err := startSession(cfg, seat, a.conn)
	if err != nil {
		a.conn.Close()
		return nil, err
	}
	sess.Addr = ln.Addr().String()
	go func() {
		err := wrnet.ServeJoined(context.Background(), a.conn, dec, sess.eng, seat.Opponent())
		sess.eng.Close()
		sess.humanDone <- err
	}()
	return sess, nil
}

func startSession(cfg engine.Config, seat game.PlayerID, human stdnet.Conn) (*GameSession, error) {
	eng, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}
	s := &GameSession{
		ID:        uuid.NewString(),
		Seat:      seat,
		eng:       eng,
		wake:      make(chan struct{}, 1),
		human:     human,
		humanDone: make(chan error, 1),
	}
	s.unsubscribe = eng.Subscribe(func(*game.GameState) {
		select {
		case s.wake <- struct{}{}:
		default:
		}
	})
	if err := eng.Start(); err != nil {
		s.unsubscribe()
		eng.Close()
		return nil, fmt.Errorf("start game: %w", err)
	}
	return s, nil
}

func seatNames(seat game.PlayerID, agent, other string) [2]string {
	if seat == game.Player1 {
		return [2]string{agent, other}
	}
	return [2]string{other, agent}
}

// Apply performs cmd for the agent and waits until it is the agent's move
// again or the game ends.
func (s *GameSession) Apply(ctx context.Context, cmd wrnet.Command) (*ToolResponse, error) {
	if _, err := wrnet.Apply(s.eng, s.Seat, cmd); err != nil {
		return nil, err
	}
	return s.Wait(ctx)
}

// Wait blocks until the agent is on the move or the game is over, then
// reports everything that happened since the previous response.
func (s *GameSession) Wait(ctx context.Context) (*ToolResponse, error) {
	for {
		gs := s.eng.State()
		if wrnet.Mover(gs) == s.Seat || gs.Over() || s.eng.Halted() {
			return s.respond(gs), nil
		}
		select {
		case <-s.wake:
		case <-s.eng.Done():
			return s.respond(s.eng.State()), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Snapshot reports the current state without waiting.
func (s *GameSession) Snapshot() *ToolResponse {
	return s.respond(s.eng.State())
}

func (s *GameSession) respond(gs *game.GameState) *ToolResponse {
	s.mu.Lock()
	events := wrnet.EventsSince(gs, s.sent)
	if gs != nil {
		s.sent = gs.Seq
	}
	s.mu.Unlock()
	if events == nil {
		events = []wrnet.EventView{}
	}

	resp := &ToolResponse{
		GameID: s.ID,
		Seat:   string(s.Seat),
		Events: events,
		State:  wrnet.BuildStateView(gs, s.Seat),
		Addr:   s.Addr,
	}
	if gs.Over() || s.eng.Halted() || isClosed(s.eng) {
		resp.GameOver = true
		resp.Winner = string(gs.Winner)
		resp.Result = wrnet.Result(gs, s.eng.Halted())
		return resp
	}
	resp.Options = wrnet.Options(gs, s.Seat, func(queen int) error {
		return s.eng.CanActivatePower(s.Seat, queen)
	})
	resp.YourMove = wrnet.Mover(gs) == s.Seat
	return resp
}

func isClosed(e *engine.Engine) bool {
	select {
	case <-e.Done():
		return true
	default:
		return false
	}
}

// Close stops the game and drops the human opponent, if any.
func (s *GameSession) Close() {
	s.closeOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		s.eng.Close()
		if s.human != nil {
			s.human.Close()
			<-s.humanDone
		}
	})
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
