package handler

import (
	"net/http"
	"time"

	"burrowwatch/internal/dto"
	"burrowwatch/internal/logger"
	"burrowwatch/internal/metrics"
	"burrowwatch/internal/service/relay"
	"burrowwatch/internal/service/websocket"

	gorilla "github.com/gorilla/websocket"
)

// Upgrader upgrades HTTP connections to WebSocket; CheckOrigin allows all origins.
var Upgrader = gorilla.Upgrader{
	ReadBufferSize:  32 << 10,
	WriteBufferSize: 32 << 10,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SocketHandler accepts producer and consumer connections on one endpoint.
// Every connection receives the relay's broadcasts; inbound control and
// frame events are forwarded to the relay.
func SocketHandler(r *relay.Relay, hub *websocket.HubService, m *metrics.Metrics, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		conn, err := Upgrader.Upgrade(w, req, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}

		client := hub.Register(conn)
		client.Serve(func(message []byte) {
			dispatch(r, m, logger, client.ID, message)
		})
	}
}

func dispatch(r *relay.Relay, m *metrics.Metrics, logger *logger.Logger, clientID string, message []byte) {
	env, err := dto.ParseEnvelope(message)
	if err != nil {
		logger.Warning("Ignoring message from %s: %v", clientID, err)
		return
	}

	switch env.Type {
	case dto.EventStartStream:
		r.Start()

	case dto.EventStopStream:
		r.Stop()

	case dto.EventWebcamFrame:
		var payload dto.WebcamFrame
		if err := env.Decode(&payload); err != nil || payload.Frame == "" {
			m.Drop(metrics.DropMalformed)
			logger.Warning("Ignoring malformed frame from %s: %v", clientID, err)
			return
		}
		r.SubmitFrame(payload.ToFrame(time.Now()))

	default:
		logger.Warning("Ignoring unknown event %q from %s", env.Type, clientID)
	}
}
