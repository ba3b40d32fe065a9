package stream

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/dungeonwalk/internal/config"
	"github.com/lawnchairsociety/dungeonwalk/internal/logger"
)

// Server exposes a hub over HTTP at /ws.
type Server struct {
	cfg     config.StreamConfig
	hub     *Hub
	limiter *ConnLimiter
	http    *http.Server
}

// NewServer creates a server for hub using the stream settings.
func NewServer(cfg config.StreamConfig, hub *Hub) *Server {
	s := &Server{
		cfg:     cfg,
		hub:     hub,
		limiter: NewConnLimiter(cfg.MaxPerIP, cfg.MaxTotal),
	}
	s.http = &http.Server{Addr: cfg.Address, Handler: s.Handler()}
	return s
}

// Hub returns the hub the server feeds from.
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the HTTP handler serving the feed.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleUpgrade)
	return mux
}

// ListenAndServe blocks serving spectators until Shutdown.
func (s *Server) ListenAndServe() error {
	logger.Info("Spectator feed listening", "address", s.cfg.Address)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown disconnects spectators and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.http.Shutdown(ctx)
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r, s.cfg.IsTrustedProxy)

	if !s.limiter.TryAcquire(ip) {
		logger.Warning("Spectator rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", ip)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("Spectator rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", "error", err)
		s.limiter.Release(ip)
		return
	}

	spectator := newSpectator(conn, ip)
	if !s.hub.add(spectator) {
		conn.Close()
		s.limiter.Release(ip)
		return
	}
	logger.Info("Spectator connected", "client_ip", ip, "spectators", s.hub.Count())

	go spectator.writePump()
	go func() {
		defer func() {
			s.hub.remove(spectator)
			s.limiter.Release(ip)
			logger.Info("Spectator disconnected", "client_ip", ip)
		}()
		spectator.readPump()
	}()
}
