package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/custodia-labs/glaximini/internal/core/domain"
	"github.com/custodia-labs/glaximini/internal/core/ports/driving"
	"github.com/custodia-labs/glaximini/internal/logger"
)

// Inbound message types.
const (
	msgLogin = "login"
	msgEdit  = "document.edit"
	msgSave  = "document.save"
)

// inbound is the union of every client message.
type inbound struct {
	Type    string          `json:"type"`
	Command string          `json:"command"`
	Data    json.RawMessage `json:"data"`
	User    *domain.User    `json:"user"`
}

// Server accepts realtime connections and serves document exports over HTTP.
type Server struct {
	hub      driving.Hub
	exports  driving.ExportService
	auth     Authenticator
	limiters *limiterSet
	upgrader websocket.Upgrader

	mu      sync.Mutex
	conns   map[*connection]struct{}
	wg      sync.WaitGroup
	closing bool
}

// NewServer creates a server. exports may be nil, which disables the
// /documents routes.
func NewServer(hub driving.Hub, exports driving.ExportService, auth Authenticator, limits Limits) *Server {
	if auth == nil {
		auth = TrustingAuthenticator{}
	}
	return &Server{
		hub:      hub,
		exports:  exports,
		auth:     auth,
		limiters: newLimiterSet(limits),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		conns: make(map[*connection]struct{}),
	}
}

// SetLimits retunes the inbound throttle of every connection, open or future.
func (s *Server) SetLimits(limits Limits) {
	s.limiters.set(limits)
}

// Limits returns the current inbound throttle.
func (s *Server) Limits() Limits {
	return s.limiters.current()
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /ws", s)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.exports != nil {
		mux.HandleFunc("GET /documents", s.serveList)
		mux.HandleFunc("GET /documents/{id}", s.serveInfo)
		mux.HandleFunc("GET /documents/{id}/lottie", s.serveLottie)
		mux.HandleFunc("GET /documents/{id}/sticker", s.serveSticker)
	}
	return mux
}

// Shutdown closes every open connection and waits until their sessions have
// disconnected, which saves their documents.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	for c := range s.conns {
		c.close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ServeHTTP runs one realtime connection until it closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	socket, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the request.
		logger.Debug("websocket upgrade from %s: %v", r.RemoteAddr, err)
		return
	}
	socket.SetReadLimit(maxMessageSize)

	conn := newConnection(socket)
	defer conn.wait()
	defer conn.close()

	if !s.track(conn) {
		return
	}
	defer s.untrack(conn)

	ctx := r.Context()

	if err := conn.Send(ctx, domain.NewConnectMessage()); err != nil {
		return
	}

	user, err := s.login(r, socket)
	if err != nil {
		logger.Debug("login from %s: %v", r.RemoteAddr, err)
		_ = conn.Send(ctx, domain.NewErrorMessage("Login failed"))
		return
	}

	session := &domain.Session{ID: uuid.NewString(), User: user, Conn: conn}
	if err := conn.Send(ctx, domain.NewWelcomeMessage(user)); err != nil {
		return
	}

	if err := s.hub.Connect(ctx, session); err != nil {
		logger.Error("session %s of user %d: %v", session.ID, user.ID, err)
		_ = conn.Send(ctx, domain.NewErrorMessage("Could not open document"))
		return
	}
	defer func() {
		if err := s.hub.Disconnect(context.WithoutCancel(ctx), session); err != nil {
			logger.Error("disconnect session %s: %v", session.ID, err)
		}
	}()

	limiter, release := s.limiters.acquire()
	defer release()

	_ = socket.SetReadDeadline(time.Now().Add(pongWait))
	socket.SetPongHandler(func(string) error {
		return socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("session %s read: %v", session.ID, err)
			}
			return
		}
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		s.dispatch(ctx, session, data)
	}
}

// login reads the first message, which must carry the user identity.
func (s *Server) login(r *http.Request, socket *websocket.Conn) (domain.User, error) {
	if err := socket.SetReadDeadline(time.Now().Add(loginWait)); err != nil {
		return domain.User{}, err
	}
	_, data, err := socket.ReadMessage()
	if err != nil {
		return domain.User{}, fmt.Errorf("reading login: %w", err)
	}

	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if msg.Type != msgLogin || msg.User == nil {
		return domain.User{}, fmt.Errorf("%w: expected login, got %q", domain.ErrInvalidInput, msg.Type)
	}

	return s.auth.Authenticate(r.Context(), r, *msg.User)
}

func (s *Server) dispatch(ctx context.Context, session *domain.Session, data []byte) {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		s.reply(ctx, session, "Malformed message")
		return
	}

	switch msg.Type {
	case msgEdit:
		cmd, err := domain.ParseCommand(msg.Command, msg.Data)
		switch {
		case errors.Is(err, domain.ErrUnknownCommand):
			logger.Debug("session %s: %v", session.ID, err)
			return
		case err != nil:
			logger.Debug("session %s: %v", session.ID, err)
			s.reply(ctx, session, "Malformed command")
			return
		}
		if err := s.hub.HandleEdit(ctx, session, cmd); err != nil {
			logger.Warn("edit from session %s: %v", session.ID, err)
		}

	case msgSave:
		if err := s.hub.Save(ctx, session); err != nil {
			logger.Error("save for session %s: %v", session.ID, err)
			s.reply(ctx, session, "Save failed")
		}

	default:
		s.reply(ctx, session, "Unknown command")
	}
}

func (s *Server) reply(ctx context.Context, session *domain.Session, msg string) {
	if err := session.Send(ctx, domain.NewErrorMessage(msg)); err != nil {
		logger.Debug("error reply to session %s: %v", session.ID, err)
	}
}

func (s *Server) track(c *connection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.conns[c] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(c *connection) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	s.wg.Done()
}
