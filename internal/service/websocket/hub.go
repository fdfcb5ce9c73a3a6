package websocket

import (
	"sync"

	"burrowwatch/internal/config"
	"burrowwatch/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// HubService maintains connected socket clients and fans messages out to all of them.
// The client set is owned by the Run loop; a client whose send buffer is full
// is dropped instead of stalling the broadcast.
type HubService struct {
	clients      map[*Client]bool
	broadcast    chan []byte
	register     chan *Client
	unregister   chan *Client
	done         chan struct{}
	stopOnce     sync.Once
	mutex        sync.RWMutex
	clientBuffer int
	logger       *logger.Logger
}

func NewHubService(config *config.Config, logger *logger.Logger) *HubService {
	buffer := config.HubClientBuffer
	if buffer <= 0 {
		buffer = 64
	}
	return &HubService{
		clients:      make(map[*Client]bool),
		broadcast:    make(chan []byte, 256),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		done:         make(chan struct{}),
		clientBuffer: buffer,
		logger:       logger,
	}
}

// Run is the hub's main loop. It returns after Stop.
func (h *HubService) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("🔌 Client %s connected. Total: %d", client.ID, count)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("🔌 Client %s disconnected. Total: %d", client.ID, count)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					delete(h.clients, client)
					close(client.send)
					h.logger.Warning("Dropped slow client %s", client.ID)
				}
			}
			h.mutex.Unlock()

		case <-h.done:
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Stop ends the Run loop and disconnects every client.
func (h *HubService) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Register wraps conn in a Client and adds it to the hub.
func (h *HubService) Register(conn *websocket.Conn) *Client {
	client := &Client{
		ID:     uuid.NewString(),
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, h.clientBuffer),
		logger: h.logger,
	}
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
	return client
}

// Unregister removes client from the hub.
func (h *HubService) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues message for every connected client.
func (h *HubService) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warning("Broadcast channel full, dropping message")
	}
}

func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
