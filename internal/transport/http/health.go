package http

import "net/http"

type healthResponse struct {
	Status      string `json:"status"`
	Sequence    uint64 `json:"sequence"`
	Zones       int    `json:"zones"`
	ActiveZones int    `json:"active_zones"`
}

// HandleHealth reports liveness along with how far the pipeline has
// published. It never touches the store.
func HandleHealth(src SnapshotSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := src.Snapshot()
		writeJSON(w, http.StatusOK, healthResponse{
			Status:      "ok",
			Sequence:    snap.Sequence,
			Zones:       snap.TotalZones,
			ActiveZones: snap.ActiveZones,
		})
	}
}
