package http

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// Services are the collaborators the routes dispatch to.
type Services struct {
	Zones     ZoneManager
	Monitor   MonitorController
	Tags      TagNamer
	Snapshots SnapshotSource
	Stream    Streamer
	// Origins gates websocket upgrades the same way CORS gates requests.
	Origins []string
	Logger  *log.Logger
}

// NewRouter wires every route. Unknown paths and wrong methods answer with
// JSON errors.
func NewRouter(s Services) *mux.Router {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}

	r := mux.NewRouter()
	r.NotFoundHandler = NotFoundHandler()
	r.MethodNotAllowedHandler = MethodNotAllowedHandler()

	r.HandleFunc("/health", HandleHealth(s.Snapshots)).Methods(http.MethodGet)

	r.HandleFunc("/start", HandleStart(s.Monitor, logger)).Methods(http.MethodPost)
	r.HandleFunc("/stop", HandleStop(s.Monitor, logger)).Methods(http.MethodPost)
	r.HandleFunc("/config", HandleConfig(s.Monitor, logger)).Methods(http.MethodPost)

	r.HandleFunc("/tag/name", HandleSetTagName(s.Tags, logger)).Methods(http.MethodPost)
	r.HandleFunc("/tags", HandleListTags(s.Tags, logger)).Methods(http.MethodGet)

	r.HandleFunc("/zones", HandleListZones(s.Zones, logger)).Methods(http.MethodGet)
	r.HandleFunc("/zones", HandleCreateZone(s.Zones, logger)).Methods(http.MethodPost)
	// Registered before /zones/{id} so the literal segments win.
	r.HandleFunc("/zones/start-all", HandleStartAll(s.Zones, logger)).Methods(http.MethodPost)
	r.HandleFunc("/zones/stop-all", HandleStopAll(s.Zones, logger)).Methods(http.MethodPost)
	r.HandleFunc("/zones/{id}", HandleUpdateZone(s.Zones, logger)).Methods(http.MethodPut)
	r.HandleFunc("/zones/{id}", HandleDeleteZone(s.Zones, logger)).Methods(http.MethodDelete)
	r.HandleFunc("/zones/{id}/start", HandleStartZone(s.Zones, logger)).Methods(http.MethodPost)
	r.HandleFunc("/zones/{id}/stop", HandleStopZone(s.Zones, logger)).Methods(http.MethodPost)

	r.HandleFunc("/status", HandleStatus(s.Snapshots)).Methods(http.MethodGet)
	r.HandleFunc("/ws", HandleStream(s.Stream, s.Origins, logger)).Methods(http.MethodGet)

	return r
}
