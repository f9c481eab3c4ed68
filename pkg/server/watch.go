package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/formtabs/internal/errors"
	"github.com/vango-dev/formtabs/pkg/formdef"
)

// watchMessage is one frame of a watch stream.
type watchMessage struct {
	Type     string            `json:"type"`
	Form     string            `json:"form"`
	Sequence uint64            `json:"seq"`
	Snapshot *formdef.Snapshot `json:"snapshot,omitempty"`
}

// handleWatch streams the snapshots of a form over a WebSocket: the
// current one first, then one after every change. The stream ends when
// the client goes away or the server shuts down.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	form := formParam(r)

	// Subscribe before upgrading so unknown forms get a plain 404.
	updates, cancel, err := s.catalog.Subscribe(r.Context(), form)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer cancel()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		s.logger.Warn("websocket upgrade failed", "form", form, "error", errors.New("E121").Wrap(err))
		if s.metrics != nil {
			s.metrics.RecordWebSocketError("upgrade")
		}
		return
	}
	defer conn.Close()

	if s.metrics != nil {
		s.metrics.RecordWatchStart()
		defer s.metrics.RecordWatchEnd()
	}
	s.logger.Debug("watch started", "form", form)

	// The read loop only handles control frames and notices the client
	// leaving.
	pongWait := 2 * s.config.HeartbeatInterval
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
					websocket.CloseNormalClosure) {
					s.logger.Debug("watch read error", "form", form, "error", err)
					if s.metrics != nil {
						s.metrics.RecordWebSocketError("read")
					}
				}
				return
			}
		}
	}()

	heartbeat := time.NewTicker(s.config.HeartbeatInterval)
	defer heartbeat.Stop()

	var seq uint64
	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				s.closeWatch(conn, websocket.CloseGoingAway, "server shutting down")
				return
			}
			seq++
			msg := watchMessage{Type: "snapshot", Form: form, Sequence: seq, Snapshot: &snap}
			conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				s.logger.Debug("watch write failed", "form", form, "error", err)
				if s.metrics != nil {
					s.metrics.RecordWebSocketError("write")
				}
				return
			}

		case <-heartbeat.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				if s.metrics != nil {
					s.metrics.RecordWebSocketError("ping")
				}
				return
			}

		case <-gone:
			s.logger.Debug("watch ended", "form", form)
			return
		}
	}
}

func (s *Server) closeWatch(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.config.WriteTimeout))
}
