package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/peterkuimelis/werkroom/internal/catalog"
	"github.com/peterkuimelis/werkroom/internal/game"
	"github.com/peterkuimelis/werkroom/internal/log"
)

// Pacing holds the presentation delays between automatic steps. The zero
// value runs every step synchronously.
type Pacing struct {
	SpillTheTea time.Duration // income and draw, then advance
	Untuck      time.Duration // hand trim and readiness, then advance
	Reveal      time.Duration // category shown before scoring
	Resolution  time.Duration // result shown before Untuck
	CPUPlay     time.Duration // between CPU Werk Room moves
	CPUThink    time.Duration // before the CPU's first move in a phase
}

// DefaultPacing is the pacing used for interactive play.
func DefaultPacing() Pacing {
	return Pacing{
		SpillTheTea: 50 * time.Millisecond,
		Untuck:      50 * time.Millisecond,
		Reveal:      1500 * time.Millisecond,
		Resolution:  4500 * time.Millisecond,
		CPUPlay:     1000 * time.Millisecond,
		CPUThink:    1500 * time.Millisecond,
	}
}

// Scaled returns p with every delay multiplied by f.
func (p Pacing) Scaled(f float64) Pacing {
	scale := func(d time.Duration) time.Duration { return time.Duration(float64(d) * f) }
	return Pacing{
		SpillTheTea: scale(p.SpillTheTea),
		Untuck:      scale(p.Untuck),
		Reveal:      scale(p.Reveal),
		Resolution:  scale(p.Resolution),
		CPUPlay:     scale(p.CPUPlay),
		CPUThink:    scale(p.CPUThink),
	}
}

// Config holds configuration for a new engine.
type Config struct {
	Catalog  *catalog.Catalog    // defaults to catalog.Default()
	Registry *game.PowerRegistry // defaults to game.Powers
	Names    [2]string
	CPU      [2]bool // seats played by the computer
	Seed     int64   // RNG seed (0 for random)
	Pacing   Pacing
	Logger   log.EventLogger // receives every log entry, oldest first
	MaxTurns int             // halt after this many turns (0 = no limit)
	Now      func() time.Time
}

// NewSeed returns a seed read from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
