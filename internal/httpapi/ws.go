package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/thenoetrevino/quadro/internal/events"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

// BoardEvents upgrades to a websocket that streams the board's committed
// changes. Access is checked before the upgrade so hidden boards get 404.
func (s *Server) BoardEvents(c *gin.Context) {
	boardID := c.Param("id")
	if _, err := s.app.BoardService.GetBoard(c.Request.Context(), currentUser(c), boardID); err != nil {
		respondError(c, err)
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied to the client
		s.logger.Warn("websocket upgrade failed", "board_id", boardID, "error", err)
		return
	}

	sub := s.app.Hub.Subscribe(boardID)
	s.logger.Debug("websocket connected", "board_id", boardID, "user_id", currentUser(c))

	go s.writePump(conn, sub)
	s.readPump(conn, sub)
}

// readPump drains client frames so pongs are processed. It returns on
// disconnect and ends the subscription.
func (s *Server) readPump(conn *websocket.Conn, sub *events.Subscription) {
	defer func() {
		s.app.Hub.Unsubscribe(sub)
		_ = conn.Close()
	}()

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump is the only writer on conn
func (s *Server) writePump(conn *websocket.Conn, sub *events.Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-sub.C():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				s.logger.Debug("websocket write failed", "board_id", sub.BoardID(), "error", err)
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
