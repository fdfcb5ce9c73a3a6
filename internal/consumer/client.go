package consumer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"burrowwatch/internal/dto"
	"burrowwatch/internal/logger"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Client subscribes to relay broadcasts and keeps a History and Display current.
type Client struct {
	conn    *websocket.Conn
	History *History
	Display *Display
	logger  *logger.Logger
	now     func() time.Time

	// OnEntry is called for each detection newly added to the history.
	OnEntry func(Entry)
	// OnStats is called after each stats event.
	OnStats func(Snapshot)

	writeMu sync.Mutex
}

// Dial connects to the relay socket at url.
func Dial(ctx context.Context, url string, logger *logger.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	return &Client{
		conn:    conn,
		History: NewHistory(HistorySize, HistoryWindow),
		Display: NewDisplay(),
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Start asks the relay to stream and clears local history and counters.
func (c *Client) Start() error {
	c.History.Reset()
	c.Display.Start(c.now())
	return c.send(dto.EventStartStream)
}

// Stop asks the relay to stop streaming.
func (c *Client) Stop() error {
	c.Display.Stop()
	return c.send(dto.EventStopStream)
}

func (c *Client) send(event string) error {
	msg, err := dto.NewEnvelope(event, nil)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("failed to send %s: %w", event, err)
	}
	return nil
}

// Run reads broadcasts until ctx is done or the connection drops, and
// samples the frame rate once per second.
func (c *Client) Run(ctx context.Context) error {
	errs := make(chan error, 1)
	go func() {
		for {
			_, message, err := c.conn.ReadMessage()
			if err != nil {
				errs <- err
				return
			}
			c.handleMessage(message)
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Close()
			<-errs
			return nil
		case err := <-errs:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)
		case <-ticker.C:
			c.Display.Tick(c.now())
		}
	}
}

func (c *Client) handleMessage(message []byte) {
	env, err := dto.ParseEnvelope(message)
	if err != nil {
		c.logger.Warning("Ignoring malformed message: %v", err)
		return
	}

	switch env.Type {
	case dto.EventFrame:
		var frame dto.FrameResult
		if err := env.Decode(&frame); err != nil {
			c.logger.Warning("%v", err)
			return
		}
		c.Display.ObserveFrame()
		// webcam frames only update overlay state; there is nothing to redraw
		now := c.now()
		for _, d := range frame.Detections {
			if c.History.Add(d, now) && c.OnEntry != nil {
				c.OnEntry(Entry{Detection: d, SeenAt: now})
			}
		}

	case dto.EventStats:
		var stats dto.Stats
		if err := env.Decode(&stats); err != nil {
			c.logger.Warning("%v", err)
			return
		}
		c.Display.ObserveStats(stats)
		if c.OnStats != nil {
			c.OnStats(c.Display.Snapshot(c.now(), c.History))
		}
	}
}

// Close sends a close frame and drops the connection.
func (c *Client) Close() error {
	c.writeMu.Lock()
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.writeMu.Unlock()
	return c.conn.Close()
}
