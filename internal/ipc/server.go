package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/atomicstack/popup-launcher/internal/logging"
)

// ErrSessionClosed is returned when a session has already been answered.
var ErrSessionClosed = errors.New("ipc session already answered")

// Session is an open request handed to the event loop. Dmenu sessions keep
// their connection until Send answers them; they act as the attached sender.
type Session struct {
	Request Request

	conn net.Conn
	once sync.Once
	done chan struct{}
}

// Params returns the open parameters, never nil.
func (s *Session) Params() OpenParams {
	if s.Request.Open == nil {
		return OpenParams{}
	}
	return *s.Request.Open
}

// Attached reports whether a client is waiting for a value.
func (s *Session) Attached() bool {
	return s != nil && s.conn != nil
}

// Send answers the waiting client with text and closes the connection. Only
// the first call has an effect.
func (s *Session) Send(text string) error {
	if !s.Attached() {
		return ErrSessionClosed
	}
	err := ErrSessionClosed
	s.once.Do(func() {
		err = json.NewEncoder(s.conn).Encode(Response{Status: StatusOK, Result: text})
		if cerr := s.conn.Close(); err == nil && cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
		close(s.done)
	})
	return err
}

// Server hosts the launcher service socket.
type Server struct {
	socketPath string
	sessions   chan *Session

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a server bound to path, or the default socket path when empty.
func NewServer(path string) (*Server, error) {
	if path == "" {
		var err error
		path, err = DefaultSocketPath()
		if err != nil {
			return nil, err
		}
	}
	return &Server{socketPath: path, sessions: make(chan *Session)}, nil
}

// SocketPath returns the socket the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Sessions delivers open requests to the event loop.
func (s *Server) Sessions() <-chan *Session {
	return s.sessions
}

// Serve listens on the socket until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.prepareSocket(); err != nil {
		return err
	}
	defer s.cleanup()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		if s.listener != nil {
			s.listener.Close()
		}
		s.mu.Unlock()
	}()

	for {
		conn, err := s.accept(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			logging.Error(fmt.Errorf("ipc accept: %w", err))
			continue
		}
		go s.handle(ctx, conn)
	}
}

func (s *Server) accept(ctx context.Context) (net.Conn, error) {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return nil, context.Canceled
	}
	conn, err := listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return conn, nil
}

func (s *Server) prepareSocket() error {
	dir := filepath.Dir(s.socketPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create socket dir: %w", err)
	}
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on service socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		listener.Close()
		return fmt.Errorf("chmod service socket: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	return nil
}

func (s *Server) cleanup() {
	s.mu.Lock()
	listener := s.listener
	s.listener = nil
	s.mu.Unlock()
	if listener != nil {
		listener.Close()
	}
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn(fmt.Sprintf("remove service socket: %v", err))
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		writeError(conn, fmt.Errorf("decode request: %w", err))
		conn.Close()
		return
	}
	switch req.Action {
	case ActionPing:
		writeOK(conn)
		conn.Close()
	case ActionOpen:
		s.handleOpen(ctx, conn, req)
	default:
		writeError(conn, fmt.Errorf("unknown action %q", req.Action))
		conn.Close()
	}
}

func (s *Server) handleOpen(ctx context.Context, conn net.Conn, req Request) {
	sess := &Session{Request: req, done: make(chan struct{})}
	if req.Open != nil && req.Open.Dmenu {
		sess.conn = conn
	} else {
		writeOK(conn)
		conn.Close()
	}
	select {
	case s.sessions <- sess:
	case <-ctx.Done():
		if sess.Attached() {
			_ = sess.Send(Cancelled)
		}
		return
	}
	if !sess.Attached() {
		return
	}
	select {
	case <-sess.done:
	case <-ctx.Done():
		_ = sess.Send(Cancelled)
	}
}

func writeOK(conn net.Conn) {
	_ = json.NewEncoder(conn).Encode(Response{Status: StatusOK})
}

func writeError(conn net.Conn, err error) {
	_ = json.NewEncoder(conn).Encode(Response{Status: StatusError, Error: err.Error()})
}
