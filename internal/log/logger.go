package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// MaxEntries is the capacity of a game log.
const MaxEntries = 50

// Prepend returns a new log with event at the front, truncated to MaxEntries.
// The input slice is never modified so earlier snapshots keep their view.
func Prepend(entries []GameEvent, event GameEvent) []GameEvent {
	n := min(len(entries)+1, MaxEntries)
	out := make([]GameEvent, n)
	out[0] = event
	copy(out[1:], entries)
	return out
}

// EventLogger receives game events, oldest first.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: keeps every event for test assertions and replays ---

// MemoryLogger is safe for use by the engine's timer goroutines while a
// test reads it.
type MemoryLogger struct {
	mu     sync.Mutex
	events []GameEvent
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

// Events returns a copy of everything logged so far.
func (l *MemoryLogger) Events() []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]GameEvent(nil), l.events...)
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.Events() {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// --- TextLogger: writes one formatted line per event ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- Formatting ---

// FormatEvent renders "T3  Lip Sync: Resolution ... | details", with the level
// shown for warnings and errors.
func FormatEvent(e GameEvent) string {
	level := ""
	if e.Level != LevelInfo {
		level = e.Level.String() + " "
	}
	return fmt.Sprintf("T%-2d %-26s| %s%s", e.Turn, e.Phase, level, e.Details)
}

// FormatAll formats events one per line.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}
