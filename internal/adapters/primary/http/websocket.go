package http

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mdlive/mdlive/internal/domain/services"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// wsClient is one websocket live-reload connection. Unlike the long poll it
// stays open across signals; the feed loop resubscribes after each fire.
type wsClient struct {
	conn   *websocket.Conn
	send   chan services.ReloadSignal
	done   chan struct{}
	once   sync.Once
	logger *HTTPLogger
}

// createUpgrader creates a WebSocket upgrader restricted to same-host origins
func (s *Server) createUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			u, err := url.Parse(origin)
			return err == nil && u.Host == r.Host
		},
	}
}

// handleWebSocket upgrades the connection and streams reload signals for the
// requesting page over it.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.createUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed: %v", err)
		return
	}

	client := &wsClient{
		conn:   conn,
		send:   make(chan services.ReloadSignal, 8),
		done:   make(chan struct{}),
		logger: s.logger,
	}

	page := s.subscribedPage(r)

	go client.writePump()
	go s.feedReloads(client, page)
	client.readPump()
}

// feedReloads bridges hub subscriptions onto the client's send channel. Hub
// subscriptions fire once; the replacement is registered with fresh paths of
// interest before the signal is delivered, so a flush landing during the
// handoff still finds a subscriber.
func (s *Server) feedReloads(client *wsClient, page string) {
	sub := s.hub.Subscribe(s.pathsOfInterest(page))

	for {
		select {
		case sig := <-sub.C():
			sub = s.hub.Subscribe(s.pathsOfInterest(page))

			select {
			case client.send <- sig:
			case <-client.done:
				s.hub.Unsubscribe(sub.ID)
				return
			}

		case <-client.done:
			s.hub.Unsubscribe(sub.ID)
			return
		}
	}
}

// readPump consumes control frames and detects the peer going away.
func (c *wsClient) readPump() {
	defer func() {
		c.close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			// A dropped connection is expected, not an error.
			c.logger.Debug("websocket closed: %v", err)
			return
		}
	}
}

// writePump delivers reload signals and keeps the connection alive with pings.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case sig := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(sig); err != nil {
				c.close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}

		case <-c.done:
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (c *wsClient) close() {
	c.once.Do(func() { close(c.done) })
}
