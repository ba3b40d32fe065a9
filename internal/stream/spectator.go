package stream

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/dungeonwalk/internal/logger"
)

const (
	sendBuffer = 64
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Spectator is one read-only websocket viewer.
type Spectator struct {
	conn *websocket.Conn
	ip   string
	send chan []byte
	once sync.Once
}

func newSpectator(conn *websocket.Conn, ip string) *Spectator {
	return &Spectator{
		conn: conn,
		ip:   ip,
		send: make(chan []byte, sendBuffer),
	}
}

// RemoteAddr returns the spectator's client IP.
func (s *Spectator) RemoteAddr() string { return s.ip }

// enqueue hands a message to the write pump, reporting false when the
// spectator has fallen too far behind.
func (s *Spectator) enqueue(msg []byte) bool {
	select {
	case s.send <- msg:
		return true
	default:
		return false
	}
}

// stop closes the send channel, which makes the write pump hang up.
func (s *Spectator) stop() {
	s.once.Do(func() { close(s.send) })
}

func (s *Spectator) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("Spectator write failed", "client_ip", s.ip, "error", err)
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards anything the spectator sends and returns when the
// connection goes away.
func (s *Spectator) readPump() {
	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warning("Spectator read failed", "client_ip", s.ip, "error", err)
			}
			return
		}
	}
}
