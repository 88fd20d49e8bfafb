package net

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
)

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn io.ReadWriter
	in   io.Reader
	out  io.Writer

	seat    string
	last    *StateView
	options []ActionView
}

// NewClient returns a REPL that plays over conn, reading commands from in
// and rendering to out.
func NewClient(conn io.ReadWriter, in io.Reader, out io.Writer) *Client {
	return &Client{conn: conn, in: in, out: out}
}

// Connect connects to a server, joins under name and runs the REPL.
func Connect(ctx context.Context, addr, name string, in io.Reader, out io.Writer) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(ClientMessage{Type: MsgJoin, Name: name}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}
	fmt.Fprintln(out, "Connected! Waiting for the game to start...")
	return NewClient(conn, in, out).RunREPL(ctx)
}

// RunREPL renders server messages and sends the commands typed on in. It
// returns when the game ends, the input closes or ctx is done.
func (c *Client) RunREPL(ctx context.Context) error {
	enc := json.NewEncoder(c.conn)

	msgs := make(chan ServerMessage)
	readErr := make(chan error, 1)
	go func() {
		dec := json.NewDecoder(c.conn)
		for {
			var msg ServerMessage
			if err := dec.Decode(&msg); err != nil {
				readErr <- err
				return
			}
			select {
			case msgs <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return fmt.Errorf("read message: %w", err)
		case msg := <-msgs:
			if c.handle(msg) {
				return nil
			}
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := c.input(enc, line)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

// handle renders msg and reports whether the game is over.
func (c *Client) handle(msg ServerMessage) bool {
	switch msg.Type {
	case MsgWelcome:
		c.seat = msg.Seat
		fmt.Fprintf(c.out, "You are %s. Type 'help' for commands.\n", msg.Seat)
	case MsgState:
		for _, ev := range msg.Events {
			c.renderEvent(ev)
		}
		c.last, c.options = msg.State, msg.Options
		if len(msg.Options) > 0 {
			c.renderState(msg.State)
			c.renderOptions()
		}
	case MsgError:
		fmt.Fprintf(c.out, "! %s\n", msg.Error)
	case MsgGameOver:
		for _, ev := range msg.Events {
			c.renderEvent(ev)
		}
		c.renderState(msg.State)
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "═══════════════════════════════════")
		fmt.Fprintln(c.out, "          GAME OVER")
		fmt.Fprintln(c.out, "═══════════════════════════════════")
		fmt.Fprintln(c.out, msg.Result)
		fmt.Fprintln(c.out, "═══════════════════════════════════")
		return true
	}
	return false
}

// input handles one typed line and reports whether the user quit.
func (c *Client) input(enc *json.Encoder, line string) (bool, error) {
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "":
		return false, nil
	case "quit", "exit", "q":
		return true, nil
	case "help", "h", "?":
		c.renderHelp()
		return false, nil
	case "state", "s":
		c.renderState(c.last)
		c.renderOptions()
		return false, nil
	}

	var cmd Command
	if n, err := strconv.Atoi(line); err == nil {
		if n < 1 || n > len(c.options) {
			fmt.Fprintf(c.out, "Enter a number between 1 and %d\n", len(c.options))
			return false, nil
		}
		cmd = c.options[n-1].Command
	} else {
		cmd, err = ParseCommand(line)
		if err != nil {
			fmt.Fprintf(c.out, "! %v\n", err)
			return false, nil
		}
	}
	if err := enc.Encode(ClientMessage{Type: MsgCommand, Command: &cmd}); err != nil {
		return false, fmt.Errorf("send command: %w", err)
	}
	return false, nil
}

func (c *Client) renderEvent(ev EventView) {
	phase := ev.Phase
	for len(phase) < 16 {
		phase += " "
	}
	fmt.Fprintf(c.out, "T%-2d %s| %s\n", ev.Turn, phase, ev.Details)
}

func (c *Client) renderState(sv *StateView) {
	if sv == nil {
		return
	}
	w := c.out
	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════╗")
	opp := sv.Opponent
	fmt.Fprintf(w, "║  %s  Shantay: %d  Gag: %d  Hand: %d  Deck: %d  Discard: %d\n",
		strings.ToUpper(opp.Name), opp.Shantay, opp.Gag, opp.HandCount, opp.DeckCount, opp.DiscardCount)
	renderRunway(w, opp.Runway)
	fmt.Fprintln(w, "║──────────────────────────────────────────────────────")
	you := sv.You
	renderRunway(w, you.Runway)
	fmt.Fprintf(w, "║  YOU (%s)  Shantay: %d  Gag: %d  Hand: %d  Deck: %d  Discard: %d\n",
		you.Name, you.Shantay, you.Gag, you.HandCount, you.DeckCount, you.DiscardCount)
	if len(you.Restrictions) > 0 {
		fmt.Fprintf(w, "║  Restricted: %s\n", strings.Join(you.Restrictions, ", "))
	}
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════╝")

	info := fmt.Sprintf("Turn %d | %s", sv.Turn, sv.Phase)
	if sv.Category != "" {
		info += " | Category: " + sv.Category
	}
	if sv.IsYourTurn {
		info += " | Your turn"
	} else {
		info += " | Opponent's turn"
	}
	fmt.Fprintln(w, info)

	if len(you.Hand) > 0 {
		fmt.Fprintf(w, "\nHand: ")
		for _, card := range you.Hand {
			fmt.Fprintf(w, "[%d] %s  ", card.ID, formatCard(card))
		}
		fmt.Fprintln(w)
	}
}

func renderRunway(w io.Writer, runway []*QueenView) {
	fmt.Fprintf(w, "║  Runway: ")
	for _, q := range runway {
		fmt.Fprintf(w, "%s ", formatQueen(q))
	}
	fmt.Fprintln(w)
}

func formatQueen(q *QueenView) string {
	if q == nil {
		return "[ ]"
	}
	s := q.Stats
	out := fmt.Sprintf("[#%d %s %d/%d/%d/%d shade %d/%d", q.ID, q.Name,
		s.Charisma, s.Uniqueness, s.Nerve, s.Talent, q.Shade, q.ShadeLimit)
	if q.Ready {
		out += " ready"
	}
	for _, eq := range q.Equipment {
		out += fmt.Sprintf(" +%s#%d", eq.Name, eq.ID)
	}
	return out + "]"
}

func formatCard(c CardView) string {
	if c.Kind == "Queen" && c.Stats != nil {
		s := c.Stats
		return fmt.Sprintf("%s (%d gag, %d/%d/%d/%d)", c.Name, c.Cost, s.Charisma, s.Uniqueness, s.Nerve, s.Talent)
	}
	return fmt.Sprintf("%s (%s, %d gag)", c.Name, c.Type, c.Cost)
}

func (c *Client) renderOptions() {
	if len(c.options) == 0 {
		return
	}
	fmt.Fprintln(c.out, "\nActions:")
	for i, a := range c.options {
		fmt.Fprintf(c.out, "  %d) %s  [%s]\n", i+1, a.Desc, a.Command)
	}
}

func (c *Client) renderHelp() {
	fmt.Fprint(c.out, `Commands:
  <n>                    pick action n from the list
  play <card>            play a queen from your hand
  equip <card> <queen>   attach equipment to a runway queen
  use <queen> <equip>    activate attached equipment
  power <queen>          activate a queen power
  attack <queen>|none    choose your attacker
  defend <queen>|none    choose your defender
  end                    end the current phase
  state                  show the board again
  quit                   leave the game
`)
}
