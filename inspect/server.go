// Package inspect serves read-only simulation snapshots over websocket
// so external overlays can watch mob states without touching the core.
package inspect

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/thicket-engine/thicket/sim"
)

// SnapshotSource produces the frames the server broadcasts. Call it from
// the simulation's own goroutine via Publish, not from the server.
type SnapshotSource func() []sim.MobSnapshot

// Frame is one broadcast message.
type Frame struct {
	Tick int64             `json:"tick"`
	Mobs []sim.MobSnapshot `json:"mobs"`
}

// Server fans simulation snapshots out to every connected client. It
// never reads from the simulation itself; the owner calls Publish each
// tick (or as often as it cares to).
type Server struct {
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	tick    int64
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewServer(log zerolog.Logger) *Server {
	return &Server{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 8192,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: map[*client]struct{}{},
	}
}

// ServeHTTP upgrades the connection and streams frames until the client
// goes away.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("inspector upgrade failed")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 8)}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("inspector client connected")

	go s.writeLoop(c)
	s.readLoop(c)
}

func (s *Server) readLoop(c *client) {
	defer s.drop(c)
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(c *client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.drop(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.drop(c)
				return
			}
		}
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	_ = c.conn.Close()
}

// Publish broadcasts one frame. Slow clients miss frames rather than
// stalling the simulation.
func (s *Server) Publish(mobs []sim.MobSnapshot) {
	s.mu.Lock()
	s.tick++
	frame := Frame{Tick: s.tick, Mobs: mobs}
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	if len(clients) == 0 {
		return
	}
	data, err := json.Marshal(frame)
	if err != nil {
		s.log.Error().Err(err).Msg("inspector frame marshal failed")
		return
	}
	for _, c := range clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// ClientCount reports connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Run serves the inspector on addr until the context ends. Typically
// launched as a goroutine beside the tick loop.
func Run(ctx context.Context, addr string, s *Server) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", s)
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
