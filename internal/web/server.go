package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/peterkuimelis/werkroom/internal/catalog"
	"github.com/peterkuimelis/werkroom/internal/engine"
	"github.com/peterkuimelis/werkroom/internal/game"
	wrnet "github.com/peterkuimelis/werkroom/internal/net"
)

//go:embed static
var staticFiles embed.FS

// CardInfo is the JSON representation of a card for the /api/cards endpoint.
type CardInfo struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Kind      string       `json:"kind"`
	Cost      int          `json:"cost"`
	Rarity    string       `json:"rarity,omitempty"`
	Stats     *wrnet.Stats `json:"stats,omitempty"`
	Power     string       `json:"power,omitempty"`
	PowerText string       `json:"powerText,omitempty"`
	Type      string       `json:"type,omitempty"`
	Text      string       `json:"text,omitempty"`
	Flavor    string       `json:"flavor,omitempty"`
	Image     string       `json:"image,omitempty"`
}

// GameInfo summarizes a hosted game for the /api/games endpoint.
type GameInfo struct {
	ID      string    `json:"id"`
	Seed    int64     `json:"seed"`
	Created time.Time `json:"created"`
	Turn    int       `json:"turn"`
	Phase   string    `json:"phase"`
	Winner  string    `json:"winner,omitempty"`
	Players [2]string `json:"players"`
}

type session struct {
	id      string
	eng     *engine.Engine
	created time.Time
}

func (s *session) info() GameInfo {
	gi := GameInfo{ID: s.id, Seed: s.eng.Seed(), Created: s.created}
	if gs := s.eng.State(); gs != nil {
		gi.Turn = gs.TurnNumber
		gi.Phase = gs.Phase.Key()
		gi.Winner = string(gs.Winner)
		gi.Players = [2]string{gs.Players[0].Name, gs.Players[1].Name}
	}
	return gi
}

// Server is the werkroom web UI server. Each browser plays Player 1
// against the CPU.
type Server struct {
	engine engine.Config
	mux    *http.ServeMux

	mu    sync.Mutex
	games map[string]*session
}

// NewServer creates a web server whose games use cfg as a template.
func NewServer(cfg engine.Config) *Server {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	s := &Server{
		engine: cfg,
		mux:    http.NewServeMux(),
		games:  make(map[string]*session),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Embedded static files
	staticFS, _ := fs.Sub(staticFiles, "static")

	// Serve index.html at root
	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		io.Copy(w, f)
	})

	// Static CSS/JS
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// API endpoints
	s.mux.HandleFunc("GET /api/cards", s.handleCards)
	s.mux.HandleFunc("GET /api/games", s.handleListGames)
	s.mux.HandleFunc("POST /api/games", s.handleCreateGame)
	s.mux.HandleFunc("GET /api/games/{id}", s.handleGetGame)
	s.mux.HandleFunc("DELETE /api/games/{id}", s.handleDeleteGame)

	// Game socket
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	cat := s.engine.Catalog
	cards := make([]CardInfo, 0, len(cat.Queens)+len(cat.Equipment))
	for _, d := range append(append([]*game.CardDefinition{}, cat.Queens...), cat.Equipment...) {
		ci := CardInfo{
			ID:     d.ID,
			Name:   d.Name,
			Kind:   d.Kind.String(),
			Cost:   d.Cost,
			Rarity: d.Rarity,
			Flavor: d.FlavorText,
			Image:  d.ImageFile,
		}
		st := d.Stats
		if d.IsQueen() {
			ci.Power = d.PowerName
			ci.PowerText = d.PowerText
		} else {
			st = d.Boosts
			ci.Type = d.EquipmentType
			ci.Text = d.EffectText
		}
		ci.Stats = &wrnet.Stats{Charisma: st.Charisma, Uniqueness: st.Uniqueness, Nerve: st.Nerve, Talent: st.Talent}
		cards = append(cards, ci)
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	infos := make([]GameInfo, 0, len(s.games))
	for _, g := range s.games {
		infos = append(infos, g.info())
	}
	s.mu.Unlock()
	sort.Slice(infos, func(i, j int) bool { return infos[i].Created.Before(infos[j].Created) })
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.newGame(r.URL.Query().Get("name"))
	if err != nil {
		log.Printf("create game: %v", err)
		http.Error(w, "could not create game", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, sess.info())
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess := s.lookup(r.PathValue("id"))
	if sess == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, wrnet.BuildStateView(sess.eng.State(), game.Player1))
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if !s.remove(r.PathValue("id")) {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleWebSocket plays Player 1 of the game named by ?game=, or of a new
// game when it is absent, over the JSON seat protocol.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	var sess *session
	if id := r.URL.Query().Get("game"); id != "" {
		if sess = s.lookup(id); sess == nil {
			http.NotFound(w, r)
			return
		}
	} else {
		var err error
		if sess, err = s.newGame(r.URL.Query().Get("name")); err != nil {
			log.Printf("create game: %v", err)
			http.Error(w, "could not create game", http.StatusInternalServerError)
			return
		}
	}

	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		log.Printf("WebSocket accept error: %v", err)
		return
	}
	defer wsConn.CloseNow()

	ctx := r.Context()
	conn := websocket.NetConn(ctx, wsConn, websocket.MessageText)
	err = wrnet.ServeSeat(ctx, conn, sess.eng, game.Player1)
	if err != nil && !errors.Is(err, context.Canceled) && websocket.CloseStatus(err) == -1 {
		log.Printf("game %s: %v", sess.id, err)
	}
	if gs := sess.eng.State(); gs == nil || gs.Over() || sess.eng.Halted() {
		s.remove(sess.id)
	}
	wsConn.Close(websocket.StatusNormalClosure, "game ended")
}

func (s *Server) newGame(name string) (*session, error) {
	cfg := s.engine
	cfg.CPU = [2]bool{false, true}
	cfg.Names = [2]string{name, ""}
	eng, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := eng.Start(); err != nil {
		return nil, err
	}
	sess := &session{id: uuid.NewString(), eng: eng, created: time.Now()}
	s.mu.Lock()
	s.games[sess.id] = sess
	s.mu.Unlock()
	return sess, nil
}

func (s *Server) lookup(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.games[id]
}

func (s *Server) remove(id string) bool {
	s.mu.Lock()
	sess, ok := s.games[id]
	delete(s.games, id)
	s.mu.Unlock()
	if ok {
		sess.eng.Close()
	}
	return ok
}

// Close stops every hosted game.
func (s *Server) Close() {
	s.mu.Lock()
	games := s.games
	s.games = make(map[string]*session)
	s.mu.Unlock()
	for _, g := range games {
		g.eng.Close()
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
