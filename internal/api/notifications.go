package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/deepthink-labs/deepthink-engine/internal/notify"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// pingInterval keeps idle notification sockets alive through proxies
const pingInterval = 30 * time.Second

func (s *Server) handleRecentNotifications(w http.ResponseWriter, r *http.Request) {
	recent := s.hub.Recent()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": recent,
		"total":         len(recent),
	})
}

// handleNotificationsWS streams live notifications to the dashboard. The
// recent feed is replayed on connect so a reloading client misses nothing.
func (s *Server) handleNotificationsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("notifications websocket connected", "remote_addr", r.RemoteAddr)

	ch, cancel := s.hub.Subscribe()
	defer cancel()

	for _, n := range s.hub.Recent() {
		if err := s.sendNotification(conn, n); err != nil {
			return
		}
	}

	// Reads are only used to observe the close handshake
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Debug("websocket read error", "error", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			slog.Info("notifications websocket disconnected", "remote_addr", r.RemoteAddr)
			return
		case n := <-ch:
			if err := s.sendNotification(conn, n); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
				slog.Debug("failed to ping websocket", "error", err)
				return
			}
		}
	}
}

func (s *Server) sendNotification(conn *websocket.Conn, n notify.Notification) error {
	if err := conn.WriteJSON(n); err != nil {
		slog.Debug("failed to send notification", "error", err)
		return err
	}
	return nil
}
