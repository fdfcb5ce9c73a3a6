package producer

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"burrowwatch/internal/dto"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Publisher delivers frames and stream control to the relay.
type Publisher interface {
	Start() error
	Publish(jpeg []byte, capturedAt time.Time) error
	Stop() error
}

// WSPublisher talks to the relay over its socket endpoint.
type WSPublisher struct {
	url  string
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewWSPublisher validates rawURL (ws:// or wss://) without dialing.
func NewWSPublisher(rawURL string) (*WSPublisher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid relay url %q: %w", rawURL, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("invalid relay url %q: scheme must be ws or wss", rawURL)
	}
	return &WSPublisher{url: u.String()}, nil
}

// Start dials the relay and asks it to begin streaming.
func (p *WSPublisher) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		conn, _, err := websocket.DefaultDialer.Dial(p.url, nil)
		if err != nil {
			return fmt.Errorf("failed to connect to %s: %w", p.url, err)
		}
		p.conn = conn
		go p.discardInbound(conn)
	}
	return p.send(dto.EventStartStream, nil)
}

// discardInbound reads and drops relay broadcasts so control frames are processed.
func (p *WSPublisher) discardInbound(conn *websocket.Conn) {
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

// Publish sends one frame as a data URL.
func (p *WSPublisher) Publish(jpeg []byte, capturedAt time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.send(dto.EventWebcamFrame, dto.WebcamFrame{
		Frame:     dto.EncodeJPEGDataURL(jpeg),
		Timestamp: capturedAt.UnixMilli(),
	})
}

// Stop asks the relay to stop streaming and closes the connection.
func (p *WSPublisher) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil
	}

	err := p.send(dto.EventStopStream, nil)
	p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	p.conn.Close()
	p.conn = nil
	return err
}

func (p *WSPublisher) send(event string, data interface{}) error {
	if p.conn == nil {
		return fmt.Errorf("not connected to %s", p.url)
	}
	msg, err := dto.NewEnvelope(event, data)
	if err != nil {
		return err
	}
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("failed to send %s: %w", event, err)
	}
	return nil
}
