package http

import (
	"context"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/app"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

// ZoneManager is the zone registry as the HTTP layer sees it.
type ZoneManager interface {
	ListZones(ctx context.Context) ([]app.ZoneView, error)
	CreateZone(ctx context.Context, in app.ZoneInput) (app.ZoneView, error)
	UpdateZone(ctx context.Context, id string, in app.ZoneInput) (app.ZoneView, error)
	DeleteZone(ctx context.Context, id string) error
	StartZone(ctx context.Context, id string) error
	StopZone(ctx context.Context, id string) error
	StartAll(ctx context.Context) ([]app.ZoneResult, error)
	StopAll(ctx context.Context) ([]app.ZoneResult, error)
}

type zoneRequest struct {
	Name           string   `json:"name"`
	ReaderIP       string   `json:"reader_ip"`
	ReaderPort     *int     `json:"reader_port,omitempty"`
	Timeout        *float64 `json:"timeout,omitempty"`
	MappedZoneID   *string  `json:"mapped_zone_id,omitempty"`
	SimulationMode bool     `json:"simulation_mode"`
}

func (req zoneRequest) input() (app.ZoneInput, error) {
	in := app.ZoneInput{
		Name:           req.Name,
		ReaderAddress:  req.ReaderIP,
		ReaderPort:     domain.DefaultReaderPort,
		MissingTimeout: domain.DefaultMissingTimeout,
		SimulationMode: req.SimulationMode,
		MappedZoneID:   req.MappedZoneID,
	}
	if req.ReaderPort != nil {
		in.ReaderPort = *req.ReaderPort
	}
	if req.Timeout != nil {
		d, err := secondsToDuration("timeout", *req.Timeout)
		if err != nil {
			return app.ZoneInput{}, err
		}
		in.MissingTimeout = d
	}
	return in, nil
}

// secondsToDuration rejects values that cannot be a missing timeout before
// the float conversion can overflow.
func secondsToDuration(field string, secs float64) (time.Duration, error) {
	if math.IsNaN(secs) || secs <= 0 || secs > domain.MaxMissingTimeout.Seconds() {
		return 0, domain.Validation(field, "must be greater than 0 and at most 3600 seconds")
	}
	return time.Duration(secs * float64(time.Second)), nil
}

type zoneResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	ReaderIP        string    `json:"reader_ip"`
	ReaderPort      int       `json:"reader_port"`
	Timeout         float64   `json:"timeout"`
	MappedZoneID    *string   `json:"mapped_zone_id"`
	SimulationMode  bool      `json:"simulation_mode"`
	ConnectionState string    `json:"connection_state"`
	Running         bool      `json:"running"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newZoneResponse(v app.ZoneView) zoneResponse {
	return zoneResponse{
		ID:              v.ID,
		Name:            v.Name,
		ReaderIP:        v.ReaderAddress,
		ReaderPort:      v.ReaderPort,
		Timeout:         v.MissingTimeout.Seconds(),
		MappedZoneID:    v.MappedZoneID,
		SimulationMode:  v.SimulationMode,
		ConnectionState: string(v.ConnectionState),
		Running:         v.Running,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

type zoneListResponse struct {
	Zones []zoneResponse `json:"zones"`
}

type zoneStatusResponse struct {
	Status string `json:"status"`
	ZoneID string `json:"zone_id"`
}

type zoneResultResponse struct {
	ZoneID string `json:"zone_id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type zoneResultsResponse struct {
	Results []zoneResultResponse `json:"results"`
}

// HandleListZones returns every configured zone with its runtime state.
func HandleListZones(svc ZoneManager, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		zones, err := svc.ListZones(r.Context())
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		resp := zoneListResponse{Zones: make([]zoneResponse, 0, len(zones))}
		for _, z := range zones {
			resp.Zones = append(resp.Zones, newZoneResponse(z))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func HandleCreateZone(svc ZoneManager, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req zoneRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		in, err := req.input()
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		zone, err := svc.CreateZone(r.Context(), in)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, newZoneResponse(zone))
	}
}

// HandleUpdateZone replaces a zone's configuration. Omitted port and timeout
// fall back to their defaults as on create.
func HandleUpdateZone(svc ZoneManager, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		var req zoneRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		in, err := req.input()
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		zone, err := svc.UpdateZone(r.Context(), id, in)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, newZoneResponse(zone))
	}
}

func HandleDeleteZone(svc ZoneManager, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if err := svc.DeleteZone(r.Context(), id); err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, zoneStatusResponse{Status: "deleted", ZoneID: id})
	}
}

func HandleStartZone(svc ZoneManager, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if err := svc.StartZone(r.Context(), id); err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, zoneStatusResponse{Status: "started", ZoneID: id})
	}
}

func HandleStopZone(svc ZoneManager, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if err := svc.StopZone(r.Context(), id); err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, zoneStatusResponse{Status: "stopped", ZoneID: id})
	}
}

// HandleStartAll starts every zone and reports each outcome; one failing
// zone does not fail the request.
func HandleStartAll(svc ZoneManager, logger *log.Logger) http.HandlerFunc {
	return handleBulk(svc.StartAll, "started", logger)
}

func HandleStopAll(svc ZoneManager, logger *log.Logger) http.HandlerFunc {
	return handleBulk(svc.StopAll, "stopped", logger)
}

func handleBulk(run func(context.Context) ([]app.ZoneResult, error), okStatus string, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := run(r.Context())
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		resp := zoneResultsResponse{Results: make([]zoneResultResponse, 0, len(results))}
		for _, res := range results {
			item := zoneResultResponse{ZoneID: res.ZoneID, Status: okStatus}
			if res.Err != nil {
				item.Status = "error"
				item.Error = domain.Message(res.Err)
			}
			resp.Results = append(resp.Results, item)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
