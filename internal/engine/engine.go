// Package engine drives a game: it performs the automatic phases, schedules
// CPU decisions, fires queen powers and fans states out to subscribers.
package engine

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/peterkuimelis/werkroom/internal/catalog"
	"github.com/peterkuimelis/werkroom/internal/cpu"
	"github.com/peterkuimelis/werkroom/internal/game"
	"github.com/peterkuimelis/werkroom/internal/log"
)

var (
	ErrNotStarted = errors.New("engine: game not started")
	ErrStarted    = errors.New("engine: game already started")
	ErrClosed     = errors.New("engine: closed")
	ErrInitAction = errors.New("engine: games are initialized by Start")
	ErrInitFailed = errors.New("engine: game failed to initialize")
)

// maxBotMoves bounds the moves a bot may make in one phase before the
// engine gives up on it.
const maxBotMoves = 64

// stepKey identifies the point in the game a step was scheduled for.
type stepKey struct {
	phase  game.Phase
	turn   game.PlayerID
	number int
}

func keyOf(gs *game.GameState) stepKey {
	return stepKey{phase: gs.Phase, turn: gs.CurrentTurn, number: gs.TurnNumber}
}

// Engine owns one game. All methods are safe for concurrent use; exactly
// one dispatch runs at a time.
type Engine struct {
	mu sync.Mutex

	cfg     Config
	cat     *catalog.Catalog
	rng     *rand.Rand
	reducer *game.Reducer
	pm      *game.PowerManager
	bots    [2]*cpu.Bot

	gs     *game.GameState
	logSeq int // newest log entry forwarded to cfg.Logger

	subs    map[int]func(*game.GameState)
	nextSub int

	timer    *time.Timer
	gen      int     // bumped on every schedule; older timers are stale
	prepared stepKey // automatic phase whose work is done
	botKey   stepKey
	botMoves int

	started  bool
	halted   bool
	closed   bool
	done     chan struct{}
	doneOnce sync.Once
}

// New creates an engine. The game starts with Start.
func New(cfg Config) (*Engine, error) {
	if cfg.Seed == 0 {
		seed, err := NewSeed()
		if err != nil {
			return nil, err
		}
		cfg.Seed = seed
	}
	if cfg.Registry == nil {
		cfg.Registry = game.Powers
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	e := &Engine{
		cfg:  cfg,
		cat:  cfg.Catalog,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
		subs: make(map[int]func(*game.GameState)),
		done: make(chan struct{}),
	}
	if e.cat == nil {
		e.cat = catalog.Default()
	}
	e.reducer = &game.Reducer{Now: cfg.Now, Rand: e.rng, Powers: cfg.Registry}
	e.pm = game.NewPowerManager(cfg.Registry, e.reduce)
	for i, seat := range []game.PlayerID{game.Player1, game.Player2} {
		if cfg.CPU[i] {
			e.bots[i] = cpu.New(seat, e.rng, e.pm)
		}
	}
	return e, nil
}

// Seed returns the RNG seed the game runs with.
func (e *Engine) Seed() int64 {
	return e.cfg.Seed
}

// Start deals the game and runs it until it needs human input.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.started {
		return ErrStarted
	}
	e.started = true
	e.gs = nil
	e.reduce(e.cat.Init(e.cfg.Names))
	if e.gs.Phase != game.PhaseSpillTheTea {
		e.halted = true
		e.finish()
		return ErrInitFailed
	}
	e.drive()
	return nil
}

// State returns the current snapshot, nil before Start.
func (e *Engine) State() *game.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gs
}

// Dispatch applies a player action and lets the game run on.
func (e *Engine) Dispatch(a game.Action) (*game.GameState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return e.gs, err
	}
	if _, ok := a.(game.InitializeGame); ok {
		return e.gs, ErrInitAction
	}
	e.apply(a)
	e.drive()
	return e.gs, nil
}

// ActivatePower uses a runway queen's activated power.
func (e *Engine) ActivatePower(owner game.PlayerID, queen int) (*game.GameState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return e.gs, err
	}
	prev := e.gs
	if _, err := e.pm.ActivatePower(e.gs, owner, queen); err != nil {
		return e.gs, err
	}
	e.fireTriggers(prev)
	e.drive()
	return e.gs, nil
}

// CanActivatePower reports why a queen's activated power is unavailable.
func (e *Engine) CanActivatePower(owner game.PlayerID, queen int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}
	return e.pm.CanActivatePower(e.gs, owner, queen)
}

// ActiveEffects returns the timed power effects still running.
func (e *Engine) ActiveEffects() []game.TimedEffect {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pm.Active()
}

// Subscribe registers fn to receive every new state. fn runs with the
// engine locked and must not call back into it. The returned func
// unsubscribes.
func (e *Engine) Subscribe(fn func(*game.GameState)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// Done is closed when the game is won, halted or the engine is closed.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Halted reports whether the engine stopped before a winner was found.
func (e *Engine) Halted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.halted
}

// Wait blocks until Done or ctx ends and returns the final state.
func (e *Engine) Wait(ctx context.Context) (*game.GameState, error) {
	select {
	case <-e.done:
		return e.State(), nil
	case <-ctx.Done():
		return e.State(), ctx.Err()
	}
}

// Close stops pending timers. The game cannot be driven afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.cancel()
	e.finish()
}

func (e *Engine) ready() error {
	switch {
	case e.closed:
		return ErrClosed
	case !e.started:
		return ErrNotStarted
	}
	return nil
}

// reduce runs one reducer step, forwards its log entries and notifies
// subscribers. It is also the PowerManager's dispatch function.
func (e *Engine) reduce(a game.Action) *game.GameState {
	e.gs = e.reducer.Reduce(e.gs, a)
	e.forwardLog()
	for _, fn := range e.subs {
		fn(e.gs)
	}
	return e.gs
}

func (e *Engine) forwardLog() {
	if e.cfg.Logger == nil {
		e.logSeq = e.gs.Seq
		return
	}
	for i := len(e.gs.Log) - 1; i >= 0; i-- {
		if ev := e.gs.Log[i]; ev.Seq > e.logSeq {
			e.cfg.Logger.Log(ev)
		}
	}
	e.logSeq = e.gs.Seq
}

// apply reduces a top-level action and fires the powers it triggers.
func (e *Engine) apply(a game.Action) {
	prev := e.gs
	e.reduce(a)
	e.fireTriggers(prev)
}

// --- Driver ---

// drive performs automatic work until the game waits for a human or a
// delay. Zero delays run inline.
func (e *Engine) drive() {
	for !e.closed && !e.halted {
		gs := e.gs
		if gs.Over() {
			e.cancel()
			e.finish()
			return
		}
		if e.cfg.MaxTurns > 0 && gs.TurnNumber > e.cfg.MaxTurns {
			e.halt("Turn limit %d reached.", e.cfg.MaxTurns)
			return
		}
		delay, step := e.next()
		if step == nil {
			e.cancel()
			return
		}
		if e.gs.Over() {
			continue
		}
		if delay <= 0 {
			e.cancel()
			step()
			continue
		}
		e.schedule(delay, step)
		return
	}
}

// next does the current phase's immediate work and returns the step to take
// after delay, or nil when a human must act.
func (e *Engine) next() (time.Duration, func()) {
	gs := e.gs
	p := e.cfg.Pacing
	key := keyOf(gs)
	switch gs.Phase {
	case game.PhaseSpillTheTea:
		if e.prepared != key {
			e.prepared = key
			e.apply(game.GainGag{Player: gs.CurrentTurn, Amount: game.GagGainPerTurn})
			e.apply(game.DrawCard{Player: gs.CurrentTurn})
		}
		return p.SpillTheTea, e.advance
	case game.PhaseUntuck:
		if e.prepared != key {
			e.prepared = key
			e.apply(game.DiscardToHandSize{Player: gs.CurrentTurn})
			e.apply(game.PrepareQueensForNextTurn{Player: gs.CurrentTurn})
		}
		return p.Untuck, e.advance
	case game.PhaseReveal:
		if gs.LipSyncCategory == game.CategoryNone {
			cat := game.Categories[e.rng.Intn(len(game.Categories))]
			e.apply(game.SetLipSyncCategory{Category: cat})
		}
		return p.Reveal, e.advance
	case game.PhaseResolution:
		if gs.LipSyncResult == nil && gs.Attacker() != nil {
			e.apply(game.ResolveLipSync{Result: gs.ComputeLipSync()})
		}
		return p.Resolution, e.advance
	case game.PhaseWerkRoom, game.PhaseSelectAttacker, game.PhaseSelectDefender:
		if e.botFor(gs) == nil {
			return 0, nil
		}
		if e.botKey == key {
			return p.CPUPlay, e.botMove
		}
		return p.CPUThink, e.botMove
	}
	return 0, nil
}

func (e *Engine) advance() {
	e.apply(game.AdvancePhase{})
}

// schedule runs step after delay unless the game moved on in the meantime.
func (e *Engine) schedule(delay time.Duration, step func()) {
	e.cancel()
	e.gen++
	gen, key := e.gen, keyOf(e.gs)
	e.timer = time.AfterFunc(delay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.closed || e.halted || e.gen != gen || keyOf(e.gs) != key {
			return
		}
		e.timer = nil
		step()
		e.drive()
	})
}

func (e *Engine) cancel() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) finish() {
	e.doneOnce.Do(func() { close(e.done) })
}

func (e *Engine) halt(format string, args ...any) {
	e.halted = true
	e.cancel()
	if e.cfg.Logger != nil {
		ev := log.Warn("", format, args...)
		ev.Time = e.cfg.Now()
		ev.Turn = e.gs.TurnNumber
		ev.Phase = e.gs.Phase.String()
		e.cfg.Logger.Log(ev)
	}
	e.finish()
}

// --- CPU ---

func (e *Engine) botFor(gs *game.GameState) *cpu.Bot {
	for _, b := range e.bots {
		if b != nil && b.Turn(gs) {
			return b
		}
	}
	return nil
}

// botMove plays one CPU move. A rejected move is followed by an advance so
// the bot never stalls a phase.
func (e *Engine) botMove() {
	gs := e.gs
	bot := e.botFor(gs)
	if bot == nil {
		return
	}
	key := keyOf(gs)
	if e.botKey != key {
		e.botKey = key
		e.botMoves = 0
	}
	e.botMoves++
	if e.botMoves > maxBotMoves {
		e.halt("%s made %d moves in %s without leaving it.", bot.Seat, maxBotMoves, gs.Phase)
		return
	}
	mv, ok := bot.Decide(gs)
	if !ok {
		return
	}
	if mv.Power != 0 {
		if _, err := e.pm.ActivatePower(gs, bot.Seat, mv.Power); err != nil {
			e.advance()
			return
		}
		e.fireTriggers(gs)
		return
	}
	for _, a := range mv.Actions {
		prev := e.gs
		e.apply(a)
		if unchanged(prev, e.gs) {
			if _, adv := a.(game.AdvancePhase); !adv {
				e.advance()
			}
			return
		}
	}
}

// unchanged reports whether next differs from prev only in its log.
func unchanged(prev, next *game.GameState) bool {
	return prev.Players == next.Players &&
		prev.Phase == next.Phase &&
		prev.CurrentTurn == next.CurrentTurn &&
		prev.Winner == next.Winner &&
		prev.SelectedAttacker == next.SelectedAttacker &&
		prev.SelectedDefender == next.SelectedDefender &&
		prev.LipSyncCategory == next.LipSyncCategory &&
		prev.LipSyncResult == next.LipSyncResult
}
