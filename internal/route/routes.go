package route

import (
	"net/http"
	"os"
	"path/filepath"

	"burrowwatch/internal/handler"
	"burrowwatch/internal/logger"
	"burrowwatch/internal/metrics"
	"burrowwatch/internal/service/relay"
	"burrowwatch/internal/service/websocket"
)

// Deps is everything the routes need from the running application.
type Deps struct {
	Relay     *relay.Relay
	Hub       *websocket.HubService
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
	Detector  string
	Sightings handler.SightingSource
	StaticDir string
}

// indexHandler serves /path as <static>/path.html if the file exists; otherwise 404.
func indexHandler(staticDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" {
			path = "/index"
		}

		filePath := filepath.Join(staticDir, filepath.Clean("/"+path)+".html")
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}

		http.ServeFile(w, r, filePath)
	}
}

// SetupRoutes registers the socket endpoint, JSON API, metrics, log views
// and static file serving.
func SetupRoutes(d Deps) http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(d.StaticDir))))

	// Socket
	mux.HandleFunc("GET /ws", handler.SocketHandler(d.Relay, d.Hub, d.Metrics, d.Logger))

	// API endpoints
	mux.HandleFunc("GET /api/detections", handler.DetectionsHandler(d.Relay))
	mux.HandleFunc("GET /api/status", handler.StatusHandler(d.Relay, d.Hub, d.Detector))
	mux.HandleFunc("GET /api/sightings", handler.SightingsHandler(d.Sightings, d.Logger))
	mux.Handle("GET /metrics", d.Metrics.Handler())

	// Log endpoints
	mux.HandleFunc("GET /logs/info", handler.LogsHandler(d.Logger, logger.InfoFile))
	mux.HandleFunc("GET /logs/warning", handler.LogsHandler(d.Logger, logger.WarningFile))
	mux.HandleFunc("GET /logs/error", handler.LogsHandler(d.Logger, logger.ErrorFile))

	// Automatic HTML handler mapping, for example /about -> static/about.html
	mux.HandleFunc("GET /", indexHandler(d.StaticDir))

	return mux
}
