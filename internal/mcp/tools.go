package mcp

import (
	"context"
	"fmt"
	stdnet "net"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/peterkuimelis/werkroom/internal/engine"
	"github.com/peterkuimelis/werkroom/internal/game"
	wrnet "github.com/peterkuimelis/werkroom/internal/net"
)

// Tools holds the games played over one MCP connection.
type Tools struct {
	engine engine.Config
	addr   string // listen address for human opponents

	mu       sync.Mutex
	sessions map[string]*GameSession
	current  string // most recently started game
}

// NewTools creates the tool set. Games use cfg as a template; human
// opponents join on addr.
func NewTools(cfg engine.Config, addr string) *Tools {
	return &Tools{engine: cfg, addr: addr, sessions: make(map[string]*GameSession)}
}

// RegisterTools adds all game tools to the MCP server.
func RegisterTools(s *server.MCPServer, t *Tools) {
	s.AddTool(startGameTool(), t.handleStartGame)
	s.AddTool(playCardTool(), t.handlePlayCard)
	s.AddTool(equipTool(), t.handleEquip)
	s.AddTool(activateTool(), t.handleActivate)
	s.AddTool(selectAttackerTool(), t.handleSelectAttacker)
	s.AddTool(selectDefenderTool(), t.handleSelectDefender)
	s.AddTool(endPhaseTool(), t.handleEndPhase)
	s.AddTool(getGameStateTool(), t.handleGetGameState)
	s.AddTool(endGameTool(), t.handleEndGame)
}

// --- Tool definitions ---

func gameIDParam() mcp.ToolOption {
	return mcp.WithString("game_id", mcp.Description("Game to act in. Defaults to the most recently started game."))
}

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Start a new Werk Room lip sync game. Returns the game id, the initial state and the moves available to you. "+
			"Against a human, the human connects with `werkroom join --addr <addr>` in a separate terminal and this call blocks until they do."),
		mcp.WithString("opponent", mcp.Description("'cpu' (default) or 'human'"), mcp.Enum(OpponentCPU, OpponentHuman)),
		mcp.WithBoolean("go_second", mcp.Description("Play as player2. Player1 moves first.")),
		mcp.WithString("name", mcp.Description("Your player name")),
		mcp.WithNumber("seed", mcp.Description("RNG seed for a reproducible game, 0 for random")),
	)
}

func playCardTool() mcp.Tool {
	return mcp.NewTool("play_card",
		mcp.WithDescription("Play a queen from your hand to an empty runway slot during your Werk Room. Costs the card's gag tokens."),
		mcp.WithNumber("card", mcp.Required(), mcp.Description("Instance id of the queen card in your hand")),
		gameIDParam(),
	)
}

func equipTool() mcp.Tool {
	return mcp.NewTool("equip",
		mcp.WithDescription("Attach an equipment card from your hand to one of your runway queens during your Werk Room. A queen holds one equipment of each type."),
		mcp.WithNumber("card", mcp.Required(), mcp.Description("Instance id of the equipment card in your hand")),
		mcp.WithNumber("queen", mcp.Required(), mcp.Description("Instance id of your runway queen")),
		gameIDParam(),
	)
}

func activateTool() mcp.Tool {
	return mcp.NewTool("activate",
		mcp.WithDescription("Activate a queen's power, or the ability of equipment attached to her when equipment is given, during your Werk Room."),
		mcp.WithNumber("queen", mcp.Required(), mcp.Description("Instance id of your runway queen")),
		mcp.WithNumber("equipment", mcp.Description("Instance id of attached equipment to activate instead of the queen's power")),
		gameIDParam(),
	)
}

func selectAttackerTool() mcp.Tool {
	return mcp.NewTool("select_attacker",
		mcp.WithDescription("Choose which ready queen you send to the lip sync. Call end_phase afterwards to confirm. Queen 0 skips the lip sync."),
		mcp.WithNumber("queen", mcp.Required(), mcp.Description("Instance id of your ready runway queen, or 0 to skip")),
		gameIDParam(),
	)
}

func selectDefenderTool() mcp.Tool {
	return mcp.NewTool("select_defender",
		mcp.WithDescription("Choose which of your queens defends against the attacker. Call end_phase afterwards to reveal the category. Queen 0 is only allowed with an empty runway."),
		mcp.WithNumber("queen", mcp.Required(), mcp.Description("Instance id of your runway queen, or 0 for no defender")),
		gameIDParam(),
	)
}

func endPhaseTool() mcp.Tool {
	return mcp.NewTool("end_phase",
		mcp.WithDescription("End the current phase: leave the Werk Room, send the selected attacker, or confirm the selected defender."),
		gameIDParam(),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the current game state, new events and the moves available to you without acting. Read-only."),
		gameIDParam(),
	)
}

func endGameTool() mcp.Tool {
	return mcp.NewTool("end_game",
		mcp.WithDescription("Abandon a game and free its resources."),
		gameIDParam(),
	)
}

// --- Tool handlers ---

func (t *Tools) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opponent := request.GetString("opponent", OpponentCPU)
	seat := game.Player1
	if request.GetBool("go_second", false) {
		seat = game.Player2
	}
	cfg := t.engine
	if seed := request.GetInt("seed", 0); seed != 0 {
		cfg.Seed = int64(seed)
	}
	name := request.GetString("name", "")

	var (
		sess *GameSession
		err  error
	)
	switch opponent {
	case OpponentCPU:
		sess, err = NewGameSession(cfg, seat, name)
	case OpponentHuman:
		var ln stdnet.Listener
		var lc stdnet.ListenConfig
		ln, err = lc.Listen(ctx, "tcp", t.addr)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("listen for opponent", err), nil
		}
		sess, err = NewHumanSession(ctx, cfg, ln, seat, name)
	default:
		return mcp.NewToolResultErrorf("opponent must be %q or %q", OpponentCPU, OpponentHuman), nil
	}
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Failed to start game", err), nil
	}

	t.mu.Lock()
	t.sessions[sess.ID] = sess
	t.current = sess.ID
	t.mu.Unlock()

	resp, err := sess.Wait(ctx)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("Error waiting for your first move", err), nil
	}
	return t.result(sess, resp), nil
}

func (t *Tools) handlePlayCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.apply(ctx, request, wrnet.Command{Op: wrnet.OpPlay, Card: request.GetInt("card", 0)})
}

func (t *Tools) handleEquip(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.apply(ctx, request, wrnet.Command{
		Op:    wrnet.OpEquip,
		Card:  request.GetInt("card", 0),
		Queen: request.GetInt("queen", 0),
	})
}

func (t *Tools) handleActivate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	queen := request.GetInt("queen", 0)
	if eq := request.GetInt("equipment", 0); eq != 0 {
		return t.apply(ctx, request, wrnet.Command{Op: wrnet.OpUse, Queen: queen, Equipment: eq})
	}
	return t.apply(ctx, request, wrnet.Command{Op: wrnet.OpPower, Queen: queen})
}

func (t *Tools) handleSelectAttacker(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.apply(ctx, request, wrnet.Command{Op: wrnet.OpAttack, Queen: request.GetInt("queen", 0)})
}

func (t *Tools) handleSelectDefender(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.apply(ctx, request, wrnet.Command{Op: wrnet.OpDefend, Queen: request.GetInt("queen", 0)})
}

func (t *Tools) handleEndPhase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.apply(ctx, request, wrnet.Command{Op: wrnet.OpAdvance})
}

func (t *Tools) handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := t.lookup(request)
	if errResult != nil {
		return errResult, nil
	}
	return t.result(sess, sess.Snapshot()), nil
}

func (t *Tools) handleEndGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, errResult := t.lookup(request)
	if errResult != nil {
		return errResult, nil
	}
	t.drop(sess)
	return mcp.NewToolResultText(fmt.Sprintf("Game %s ended.", sess.ID)), nil
}

// apply runs cmd in the requested game. Refused moves come back as tool
// errors and leave the game unchanged.
func (t *Tools) apply(ctx context.Context, request mcp.CallToolRequest, cmd wrnet.Command) (*mcp.CallToolResult, error) {
	sess, errResult := t.lookup(request)
	if errResult != nil {
		return errResult, nil
	}
	resp, err := sess.Apply(ctx, cmd)
	if err != nil {
		return mcp.NewToolResultErrorFromErr(cmd.String(), err), nil
	}
	return t.result(sess, resp), nil
}

func (t *Tools) lookup(request mcp.CallToolRequest) (*GameSession, *mcp.CallToolResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := request.GetString("game_id", t.current)
	if id == "" {
		return nil, mcp.NewToolResultError("No game is running. Use start_game first.")
	}
	sess, ok := t.sessions[id]
	if !ok {
		return nil, mcp.NewToolResultErrorf("Unknown game %q.", id)
	}
	return sess, nil
}

// result wraps resp for the client and forgets finished games.
func (t *Tools) result(sess *GameSession, resp *ToolResponse) *mcp.CallToolResult {
	if resp.GameOver {
		t.drop(sess)
	}
	return mcp.NewToolResultStructured(resp, respondJSON(resp))
}

func (t *Tools) drop(sess *GameSession) {
	t.mu.Lock()
	delete(t.sessions, sess.ID)
	if t.current == sess.ID {
		t.current = ""
	}
	t.mu.Unlock()
	sess.Close()
}

// Close ends every open game.
func (t *Tools) Close() {
	t.mu.Lock()
	sessions := t.sessions
	t.sessions = make(map[string]*GameSession)
	t.current = ""
	t.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}
