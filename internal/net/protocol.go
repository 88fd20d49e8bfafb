package net

// Message types for the JSON protocol over TCP and websockets.

// --- Server → Client messages ---

const (
	MsgWelcome  = "welcome"
	MsgState    = "state"
	MsgError    = "error"
	MsgGameOver = "game_over"
)

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "welcome"
	Seat string `json:"seat,omitempty"`

	// For "state" and "game_over"
	Events  []EventView  `json:"events,omitempty"`
	State   *StateView   `json:"state,omitempty"`
	Options []ActionView `json:"options,omitempty"`

	// For "error"
	Error string `json:"error,omitempty"`

	// For "game_over"
	Winner string `json:"winner,omitempty"`
	Result string `json:"result,omitempty"`
}

// EventView is a simplified game event for the client.
type EventView struct {
	Seq     int    `json:"seq"`
	Time    string `json:"time"`
	Level   string `json:"level"`
	Turn    int    `json:"turn"`
	Phase   string `json:"phase"`
	Player  string `json:"player,omitempty"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Details string `json:"details"`
}

// ActionView is a command the receiving seat may send now.
type ActionView struct {
	Command Command `json:"command"`
	Desc    string  `json:"desc"`
}

// CardView describes a card in hand or attached to a queen.
type CardView struct {
	ID     int    `json:"id"`
	CardID string `json:"card_id"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Cost   int    `json:"cost"`
	Type   string `json:"type,omitempty"` // equipment type
	Text   string `json:"text,omitempty"`
	Stats  *Stats `json:"stats,omitempty"`
}

// Stats mirrors game.Stats with JSON names.
type Stats struct {
	Charisma   int `json:"charisma"`
	Uniqueness int `json:"uniqueness"`
	Nerve      int `json:"nerve"`
	Talent     int `json:"talent"`
}

// QueenView is a queen on the runway.
type QueenView struct {
	ID         int        `json:"id"`
	Slot       int        `json:"slot"`
	Name       string     `json:"name"`
	Stats      Stats      `json:"stats"` // effective
	Base       Stats      `json:"base"`
	Shade      int        `json:"shade"`
	ShadeLimit int        `json:"shade_limit"`
	Ready      bool       `json:"ready"`
	Power      string     `json:"power,omitempty"`
	PowerText  string     `json:"power_text,omitempty"`
	Equipment  []CardView `json:"equipment,omitempty"`
}

// PlayerView shows one side of the board.
type PlayerView struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Shantay      int          `json:"shantay"`
	Gag          int          `json:"gag"`
	HandCount    int          `json:"hand_count"`
	Hand         []CardView   `json:"hand,omitempty"` // only for "you"
	DeckCount    int          `json:"deck_count"`
	DiscardCount int          `json:"discard_count"`
	Runway       []*QueenView `json:"runway"` // one entry per slot, nil when empty
	Restrictions []string     `json:"restrictions,omitempty"`
}

// ResultView is the judged lip sync of the current turn.
type ResultView struct {
	Category      string `json:"category"`
	AttackerScore int    `json:"attacker_score"`
	DefenderScore int    `json:"defender_score"`
	Outcome       string `json:"outcome"`
	Winner        string `json:"winner,omitempty"`
	Damage        int    `json:"damage"`
}

// StateView is the game state from one player's perspective.
type StateView struct {
	You        PlayerView  `json:"you"`
	Opponent   PlayerView  `json:"opponent"`
	Turn       int         `json:"turn"`
	Phase      string      `json:"phase"`
	PhaseKey   string      `json:"phase_key"`
	IsYourTurn bool        `json:"is_your_turn"`
	Category   string      `json:"category,omitempty"`
	Attacker   string      `json:"attacker"`
	Defender   string      `json:"defender"`
	Result     *ResultView `json:"result,omitempty"`
	Winner     string      `json:"winner,omitempty"`
}

// --- Client → Server messages ---

const (
	MsgJoin    = "join"
	MsgCommand = "command"
)

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "join" (initial handshake)
	Name string `json:"name,omitempty"`

	// For "command"
	Command *Command `json:"command,omitempty"`
}
