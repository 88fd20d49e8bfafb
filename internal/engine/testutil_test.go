package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/peterkuimelis/werkroom/internal/catalog"
	"github.com/peterkuimelis/werkroom/internal/game"
)

var testTime = time.Date(2024, 6, 1, 15, 4, 5, 0, time.UTC)

func fixedNow() time.Time { return testTime }

// singleQueenCatalog returns n copies of one queen, plus m plain wigs.
func singleQueenCatalog(t *testing.T, n, m, cost int, power string) *catalog.Catalog {
	t.Helper()
	var f catalog.File
	for i := range n {
		f.Queens = append(f.Queens, catalog.QueenEntry{
			ID: fmt.Sprintf("Q%02d", i), Name: fmt.Sprintf("Queen %02d", i), Cost: cost,
			Stats: game.Stats{Charisma: 5, Uniqueness: 5, Nerve: 5, Talent: 5}, Power: power,
		})
	}
	for i := range m {
		f.Equipment = append(f.Equipment, catalog.EquipmentEntry{
			ID: fmt.Sprintf("E%02d", i), Name: fmt.Sprintf("Wig %02d", i), Type: "Wig", Cost: 1,
			Boosts: game.Stats{Charisma: 1},
		})
	}
	c, err := f.Build(game.Powers)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return c
}

// newVsCPU starts a headless game with a human in seat 1.
func newVsCPU(t *testing.T, cat *catalog.Catalog, seed int64) *Engine {
	t.Helper()
	e, err := New(Config{Catalog: cat, CPU: [2]bool{false, true}, Seed: seed, Now: fixedNow})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, e *Engine, d time.Duration, cond func(*game.GameState) bool) *game.GameState {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if gs := e.State(); cond(gs) {
			return gs
		}
		time.Sleep(5 * time.Millisecond)
	}
	gs := e.State()
	t.Fatalf("condition not met within %s (phase %s, turn %s)", d, gs.Phase, gs.CurrentTurn)
	return gs
}
