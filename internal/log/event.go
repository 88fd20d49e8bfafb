package log

import (
	"fmt"
	"time"
)

// EventType enumerates all observable game events.
type EventType int

const (
	EventPhaseChange EventType = iota
	EventNewTurn
	EventGameStart
	EventDraw
	EventGagChange
	EventPlayQueen
	EventAttachEquipment
	EventActivate
	EventSelectAttacker
	EventSelectDefender
	EventCategoryReveal
	EventLipSyncResult
	EventShantayChange
	EventShade
	EventShadePrevented
	EventEliminate
	EventEliminationPrevented
	EventDiscard
	EventHandSizeDiscard
	EventReady
	EventStatModifier
	EventAddToHand
	EventPower
	EventRejected
	EventWin
)

func (e EventType) String() string {
	switch e {
	case EventPhaseChange:
		return "PhaseChange"
	case EventNewTurn:
		return "NewTurn"
	case EventGameStart:
		return "GameStart"
	case EventDraw:
		return "Draw"
	case EventGagChange:
		return "GagChange"
	case EventPlayQueen:
		return "PlayQueen"
	case EventAttachEquipment:
		return "AttachEquipment"
	case EventActivate:
		return "Activate"
	case EventSelectAttacker:
		return "SelectAttacker"
	case EventSelectDefender:
		return "SelectDefender"
	case EventCategoryReveal:
		return "CategoryReveal"
	case EventLipSyncResult:
		return "LipSyncResult"
	case EventShantayChange:
		return "ShantayChange"
	case EventShade:
		return "Shade"
	case EventShadePrevented:
		return "ShadePrevented"
	case EventEliminate:
		return "Eliminate"
	case EventEliminationPrevented:
		return "EliminationPrevented"
	case EventDiscard:
		return "Discard"
	case EventHandSizeDiscard:
		return "HandSizeDiscard"
	case EventReady:
		return "Ready"
	case EventStatModifier:
		return "StatModifier"
	case EventAddToHand:
		return "AddToHand"
	case EventPower:
		return "Power"
	case EventRejected:
		return "Rejected"
	case EventWin:
		return "Win"
	default:
		return "Unknown"
	}
}

// Level is the severity of a game event.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// GameEvent represents a single observable event in a game.
type GameEvent struct {
	Seq     int       // monotonic sequence number, assigned by the state log
	Time    time.Time // wall-clock time the reducer produced the event
	Level   Level
	Turn    int    // which turn (1-based)
	Phase   string // current phase name (e.g. "Werk Room")
	Player  string // acting player id, empty for game-wide events
	Type    EventType
	Card    string // card name (if applicable)
	Details string // human-readable detail string
}

// String renders the event the way the game log shows it: "[15:04:05] details".
func (e GameEvent) String() string {
	return fmt.Sprintf("[%s] %s", e.Time.Format("15:04:05"), e.Details)
}

// Event builds a GameEvent with the given type and formatted details.
// Turn, phase and time are filled in by whoever appends it to a game log.
func Event(t EventType, player, card string, format string, args ...any) GameEvent {
	return GameEvent{
		Player:  player,
		Type:    t,
		Card:    card,
		Details: fmt.Sprintf(format, args...),
	}
}

// Warn builds a rejected-action event at warn severity.
func Warn(player string, format string, args ...any) GameEvent {
	e := Event(EventRejected, player, "", format, args...)
	e.Level = LevelWarn
	return e
}

// Error builds a rejected-action event at error severity.
func Error(player string, format string, args ...any) GameEvent {
	e := Event(EventRejected, player, "", format, args...)
	e.Level = LevelError
	return e
}
