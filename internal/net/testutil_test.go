package net

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/peterkuimelis/werkroom/internal/catalog"
	"github.com/peterkuimelis/werkroom/internal/engine"
	"github.com/peterkuimelis/werkroom/internal/game"
)

var testTime = time.Date(2024, 6, 1, 15, 4, 5, 0, time.UTC)

// cheapCatalog holds only vanilla queens costing 1 gag.
func cheapCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	var f catalog.File
	for i := range 12 {
		f.Queens = append(f.Queens, catalog.QueenEntry{
			ID: fmt.Sprintf("Q%02d", i), Name: fmt.Sprintf("Queen %02d", i), Cost: 1,
			Stats: game.Stats{Charisma: 4, Uniqueness: 4, Nerve: 4, Talent: 4},
		})
	}
	c, err := f.Build(game.Powers)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return c
}

// startGame starts a game with instant pacing. cpu picks the CPU seats.
func startGame(t *testing.T, cat *catalog.Catalog, cpu [2]bool) *engine.Engine {
	t.Helper()
	e, err := engine.New(engine.Config{
		Catalog:  cat,
		CPU:      cpu,
		Seed:     11,
		MaxTurns: 200,
		Now:      func() time.Time { return testTime },
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

// peer is the far end of a seat connection.
type peer struct {
	t   *testing.T
	enc *json.Encoder
	dec *json.Decoder
}

func (p *peer) recv() ServerMessage {
	p.t.Helper()
	var msg ServerMessage
	if err := p.dec.Decode(&msg); err != nil {
		p.t.Fatalf("decode: %v", err)
	}
	return msg
}

// recvType skips messages until one of type typ arrives.
func (p *peer) recvType(typ string) ServerMessage {
	p.t.Helper()
	for range 1000 {
		if msg := p.recv(); msg.Type == typ {
			return msg
		}
	}
	p.t.Fatalf("no %q message", typ)
	return ServerMessage{}
}

func (p *peer) send(cmd Command) {
	p.t.Helper()
	if err := p.enc.Encode(ClientMessage{Type: MsgCommand, Command: &cmd}); err != nil {
		p.t.Fatalf("encode: %v", err)
	}
}
