package bridge

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// DefaultAddr is where the bridge listens for dashboard connections.
	DefaultAddr = ":8765"

	// pingInterval keeps idle connections alive; a client that misses a
	// full interval past the deadline is dropped.
	pingInterval = 20 * time.Second
	pongWait     = 2 * pingInterval
	writeWait    = 10 * time.Second

	// queueSize bounds the stdin-to-broadcast queue, matching the
	// upstream sample rate with a generous margin.
	queueSize = 1000

	// maxLineSize caps one telemetry line; samples are a few hundred
	// bytes, so 1 MiB is sabotage territory.
	maxLineSize = 1 << 20
)

// Server fans out JSON lines read from an input stream to every
// connected WebSocket client. Clients are pull-only; anything they send
// is discarded.
type Server struct {
	upgrader websocket.Upgrader
	logf     func(format string, args ...any)

	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

// NewServer creates a bridge server. logf receives operational messages
// (connects, disconnects, listen address); nil discards them.
func NewServer(logf func(format string, args ...any)) *Server {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Server{
		upgrader: websocket.Upgrader{
			// The dashboard is opened straight from disk, so accept any
			// origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logf:    logf,
		clients: make(map[string]*websocket.Conn),
	}
}

// ServeHTTP upgrades the connection and registers the client for
// broadcasts until it disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logf("upgrade failed: %v", err)
		return
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.clients[id] = conn
	s.mu.Unlock()
	s.logf("client %s connected from %s", id, r.RemoteAddr)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Read pump: we expect no messages, but reading is what surfaces
	// close frames and pongs.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.drop(id)
				return
			}
		}
	}()
}

// Broadcast sends one line to every connected client, dropping clients
// whose writes fail.
func (s *Server) Broadcast(line []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dead []string
	for id, conn := range s.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, line); err != nil {
			dead = append(dead, id)
		}
	}
	for _, id := range dead {
		s.dropLocked(id)
	}
}

// ping nudges every client so half-open connections get noticed.
func (s *Server) ping() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dead []string
	for id, conn := range s.clients {
		if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
			dead = append(dead, id)
		}
	}
	for _, id := range dead {
		s.dropLocked(id)
	}
}

func (s *Server) drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLocked(id)
}

func (s *Server) dropLocked(id string) {
	conn, ok := s.clients[id]
	if !ok {
		return
	}
	delete(s.clients, id)
	_ = conn.Close()
	s.logf("client %s disconnected", id)
}

// ClientCount returns how many clients are currently connected.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// closeAll disconnects every client.
func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.clients {
		s.dropLocked(id)
	}
}

// ReadLines scans input line by line into out, skipping blank lines,
// and closes out at EOF. Exported for the pipeline in Run; also used
// directly in tests.
func ReadLines(input io.Reader, out chan<- []byte) {
	defer close(out)
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		// Scanner reuses its buffer; copy before handing off.
		msg := make([]byte, len(line))
		copy(msg, line)
		out <- msg
	}
}

// Run serves WebSocket clients on addr and broadcasts every line read
// from input until EOF or context cancellation.
func (s *Server) Run(ctx context.Context, input io.Reader, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	httpServer := &http.Server{Handler: s}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()
	s.logf("WebSocket server listening on ws://%s", listener.Addr())

	lines := make(chan []byte, queueSize)
	go ReadLines(input, lines)

	pinger := time.NewTicker(pingInterval)
	defer pinger.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case err := <-serveErr:
			return fmt.Errorf("websocket server: %w", err)
		case <-pinger.C:
			s.ping()
		case line, ok := <-lines:
			if !ok {
				// Input closed: upstream ended the run.
				break loop
			}
			s.Broadcast(line)
		}
	}

	s.closeAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
