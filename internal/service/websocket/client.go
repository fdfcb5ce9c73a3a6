package websocket

import (
	"time"

	"burrowwatch/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// MaxMessageSize bounds one inbound message; webcam frames arrive as base64 data URLs.
	MaxMessageSize = 4 << 20
)

// Client is one socket connection registered with the hub.
// Only the write pump writes to conn.
type Client struct {
	ID     string
	hub    *HubService
	conn   *websocket.Conn
	send   chan []byte
	logger *logger.Logger
}

// Serve runs the write pump and blocks in the read pump until the
// connection closes. Every inbound text message is passed to onMessage.
func (c *Client) Serve(onMessage func(message []byte)) {
	go c.writePump()
	c.readPump(onMessage)
}

func (c *Client) readPump(onMessage func(message []byte)) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info("Client %s disconnected normally", c.ID)
			} else {
				c.logger.Warning("Client %s disconnected with error: %v", c.ID, err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		onMessage(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error("Error sending message to %s: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
