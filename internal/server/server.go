package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/table"
)

// Server exposes table actors over HTTP and WebSocket.
type Server struct {
	manager  *table.Manager
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu          sync.Mutex
	connections map[*Connection]struct{}
}

// NewServer creates a server for the manager's tables.
func NewServer(manager *table.Manager, logger *log.Logger) *Server {
	return &Server{
		manager: manager,
		upgrader: websocket.Upgrader{
			// Bots connect from anywhere; there is no browser session to protect.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:      logger.WithPrefix("server"),
		connections: make(map[*Connection]struct{}),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /tables", s.handleListTables)
	mux.HandleFunc("GET /tables/{id}", s.handleGetTable)
	mux.HandleFunc("GET /tables/{id}/ws", s.handleWebSocket)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then closes every
// connection.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.closeAll()
		return err
	})
	return g.Wait()
}

// Connections returns the number of open WebSocket sessions.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.connections)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.connections))
	for c := range s.connections {
		conns = append(conns, c)
	}
	s.mu.Unlock()
	for _, c := range conns {
		_ = c.Close()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	snaps := []game.Snapshot{}
	for _, a := range s.manager.Tables() {
		snap, err := a.Snapshot(r.Context())
		if err != nil {
			s.writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		snaps = append(snaps, snap)
	}
	s.writeJSON(w, http.StatusOK, snaps)
}

func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	a, ok := s.manager.Table(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	snap, err := a.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// handleWebSocket upgrades /tables/{id}/ws?player=<name>.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	a, ok := s.manager.Table(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	player := r.URL.Query().Get("player")
	if player == "" {
		http.Error(w, "player is required", http.StatusBadRequest)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	c := newConnection(ws, a, player, s.logger)
	c.onClose = s.unregister

	// The newest session for a seat wins.
	var stale []*Connection
	s.mu.Lock()
	for other := range s.connections {
		if other.actor == a && other.player == player {
			stale = append(stale, other)
		}
	}
	s.connections[c] = struct{}{}
	s.mu.Unlock()
	for _, other := range stale {
		s.logger.Info("Replacing session", "table", a.ID(), "player", player)
		_ = other.Close()
	}

	if err := c.start(); err != nil {
		s.logger.Error("Failed to open session", "table", a.ID(), "player", player, "error", err)
		_ = c.Close()
		return
	}
	s.logger.Info("Client connected", "table", a.ID(), "player", player, "total", s.Connections())
}

// unregister marks the player's seat disconnected; the seat is kept.
func (s *Server) unregister(c *Connection) {
	s.mu.Lock()
	delete(s.connections, c)
	total := len(s.connections)
	replaced := false
	for other := range s.connections {
		if other.actor == c.actor && other.player == c.player {
			replaced = true
		}
	}
	s.mu.Unlock()
	if replaced {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if seat, err := c.actor.SeatOf(ctx, c.player); err == nil && seat >= 0 {
		if err := c.actor.Disconnect(ctx, seat); err != nil {
			s.logger.Debug("Disconnect not applied", "player", c.player, "error", err)
		}
	}
	s.logger.Info("Client disconnected", "table", c.actor.ID(), "player", c.player, "total", total)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorData(err))
}
