package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/peterkuimelis/werkroom/internal/catalog"
	"github.com/peterkuimelis/werkroom/internal/engine"
	wrnet "github.com/peterkuimelis/werkroom/internal/net"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(engine.Config{Seed: 21, MaxTurns: 200})
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return srv, ts
}

func getJSON(t *testing.T, url string, want int, v any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		t.Fatalf("GET %s: expected status %d, got %d", url, want, resp.StatusCode)
	}
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
}

// TestIndex: the embedded page and its assets are served.
func TestIndex(t *testing.T) {
	_, ts := newTestServer(t)

	for path, want := range map[string]int{
		"/":              http.StatusOK,
		"/static/app.js": http.StatusOK,
		"/missing":       http.StatusNotFound,
	} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Errorf("%s: expected status %d, got %d", path, want, resp.StatusCode)
		}
		if path == "/" && !strings.Contains(string(body), "Werk Room") {
			t.Errorf("Expected the index page, got %q", body)
		}
	}
}

// TestCards: every catalog card is listed with its stats.
func TestCards(t *testing.T) {
	_, ts := newTestServer(t)

	var cards []CardInfo
	getJSON(t, ts.URL+"/api/cards", http.StatusOK, &cards)
	cat := catalog.Default()
	if len(cards) != len(cat.Queens)+len(cat.Equipment) {
		t.Fatalf("Expected %d cards, got %d", len(cat.Queens)+len(cat.Equipment), len(cards))
	}
	first := cards[0]
	if first.ID != cat.Queens[0].ID || first.Kind != "Queen" || first.Stats == nil {
		t.Errorf("Expected the first queen with stats, got %+v", first)
	}
	last := cards[len(cards)-1]
	if last.Type == "" || last.Kind != "Equipment" {
		t.Errorf("Expected equipment last, got %+v", last)
	}
}

// TestGames: games can be created, listed, inspected and deleted.
func TestGames(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/games?name=Ru", "", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	var created GameInfo
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated || created.ID == "" || created.Seed != 21 {
		t.Fatalf("Expected a created game, got %d %+v", resp.StatusCode, created)
	}
	if created.Players[0] != "Ru" {
		t.Errorf("Expected Ru as player1, got %q", created.Players[0])
	}

	var list []GameInfo
	getJSON(t, ts.URL+"/api/games", http.StatusOK, &list)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("Expected the created game listed, got %+v", list)
	}

	var sv wrnet.StateView
	getJSON(t, ts.URL+"/api/games/"+created.ID, http.StatusOK, &sv)
	if sv.You.Name != "Ru" || sv.Opponent.Hand != nil {
		t.Errorf("Expected player1's view, got %+v", sv)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/games/"+created.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", resp.StatusCode)
	}
	getJSON(t, ts.URL+"/api/games/"+created.ID, http.StatusNotFound, nil)
}

// TestWebSocketUnknownGame: joining a missing game is refused before upgrading.
func TestWebSocketUnknownGame(t *testing.T) {
	_, ts := newTestServer(t)
	getJSON(t, ts.URL+"/ws?game=nope", http.StatusNotFound, nil)
}

// TestWebSocketPlaysGame: a browser seat plays its last option until the game ends.
func TestWebSocketPlaysGame(t *testing.T) {
	_, ts := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws?name=Ru", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.CloseNow()

	var welcome wrnet.ServerMessage
	if err := wsjson.Read(ctx, c, &welcome); err != nil {
		t.Fatalf("read: %v", err)
	}
	if welcome.Type != wrnet.MsgWelcome || welcome.Seat != "player1" {
		t.Fatalf("Expected welcome for player1, got %+v", welcome)
	}

	for range 20000 {
		var msg wrnet.ServerMessage
		if err := wsjson.Read(ctx, c, &msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		switch msg.Type {
		case wrnet.MsgState:
			if n := len(msg.Options); n > 0 {
				cmd := msg.Options[n-1].Command
				if err := wsjson.Write(ctx, c, wrnet.ClientMessage{Type: wrnet.MsgCommand, Command: &cmd}); err != nil {
					t.Fatalf("write: %v", err)
				}
			}
		case wrnet.MsgGameOver:
			if msg.Result == "" || msg.State == nil || msg.State.You.Name != "Ru" {
				t.Errorf("Expected a result for Ru, got %+v", msg)
			}
			return
		case wrnet.MsgError:
			t.Errorf("Expected listed options to be accepted, got %q", msg.Error)
		}
	}
	t.Fatalf("game did not finish")
}
