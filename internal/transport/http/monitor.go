package http

import (
	"context"
	"log"
	"net/http"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/app"
)

// MonitorController drives the single implicit zone behind the legacy
// endpoints.
type MonitorController interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Configure(ctx context.Context, cfg app.MonitorConfig) (app.ZoneView, error)
}

type configRequest struct {
	Timeout    float64 `json:"timeout"`
	IP         string  `json:"ip"`
	Simulation bool    `json:"simulation"`
	Port       int     `json:"port,omitempty"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type configResponse struct {
	Status string        `json:"status"`
	Config configRequest `json:"config"`
}

func HandleStart(svc MonitorController, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Start(r.Context()); err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "started"})
	}
}

func HandleStop(svc MonitorController, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Stop(r.Context()); err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "stopped"})
	}
}

// HandleConfig applies reader settings and restarts monitoring. The accepted
// request is echoed back.
func HandleConfig(svc MonitorController, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req configRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		timeout, err := secondsToDuration("timeout", req.Timeout)
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		_, err = svc.Configure(r.Context(), app.MonitorConfig{
			Timeout:    timeout,
			IP:         req.IP,
			Port:       req.Port,
			Simulation: req.Simulation,
		})
		if err != nil {
			writeDomainError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, configResponse{Status: "updated", Config: req})
	}
}
