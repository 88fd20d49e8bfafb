package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/peterkuimelis/werkroom/internal/engine"
	"github.com/peterkuimelis/werkroom/internal/game"
)

// joinerGrace is how long the host waits for the joiner to receive the
// final message once the local game is over.
const joinerGrace = 2 * time.Second

// Server hosts a game between the local terminal and one TCP client.
type Server struct {
	Addr   string
	Name   string // host's player name
	Engine engine.Config
	In     io.Reader
	Out    io.Writer
}

// Run listens on Addr, waits for a client to join, then plays the host's
// seat in a local REPL. The host is Player 1.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()
	return s.Serve(ctx, ln)
}

// Serve accepts exactly one joiner from ln and runs the game.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	fmt.Fprintf(s.Out, "Waiting for opponent on %s...\n", ln.Addr())

	conn, err := ln.Accept()
	if err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()
	fmt.Fprintf(s.Out, "Opponent connected from %s\n", conn.RemoteAddr())

	join, dec, err := ReadJoin(conn)
	if err != nil {
		return err
	}

	cfg := s.Engine
	cfg.CPU = [2]bool{}
	cfg.Names = [2]string{s.Name, join.Name}
	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()
	if err := eng.Start(); err != nil {
		return err
	}
	fmt.Fprintf(s.Out, "Game seed: %d\n", eng.Seed())

	joinerErr := make(chan error, 1)
	go func() {
		err := ServeJoined(ctx, conn, dec, eng, game.Player2)
		// Without the joiner the game cannot go on.
		eng.Close()
		joinerErr <- err
	}()

	if err := playLocal(ctx, eng, game.Player1, s.In, s.Out); err != nil {
		return err
	}
	eng.Close()
	var jerr error
	select {
	case jerr = <-joinerErr:
	case <-time.After(joinerGrace):
		conn.Close()
		jerr = <-joinerErr
	}
	if jerr != nil && !errors.Is(jerr, net.ErrClosed) && !errors.Is(jerr, context.Canceled) {
		return fmt.Errorf("opponent: %w", jerr)
	}
	return nil
}

// Play runs a local game against the CPU in the terminal. The human is
// Player 1.
func Play(ctx context.Context, cfg engine.Config, in io.Reader, out io.Writer) error {
	cfg.CPU = [2]bool{false, true}
	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()
	if err := eng.Start(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Game seed: %d\n", eng.Seed())

	return playLocal(ctx, eng, game.Player1, in, out)
}

// playLocal connects a terminal REPL to seat id through an in-memory pipe
// and returns when the REPL does.
func playLocal(ctx context.Context, t Table, id game.PlayerID, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client, server := net.Pipe()
	seatErr := make(chan error, 1)
	go func() {
		err := ServeSeat(ctx, server, t, id)
		server.Close()
		seatErr <- err
	}()

	err := NewClient(client, in, out).RunREPL(ctx)
	client.Close()
	cancel()
	if serr := <-seatErr; serr != nil && !errors.Is(serr, context.Canceled) && !errors.Is(serr, io.ErrClosedPipe) {
		return serr
	}
	return err
}
