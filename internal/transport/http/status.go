package http

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

type SnapshotSource interface {
	Snapshot() *domain.Snapshot
}

// Streamer pushes snapshots to an upgraded connection until it goes away.
type Streamer interface {
	Serve(ctx context.Context, conn *websocket.Conn) error
}

// HandleStatus returns the latest published snapshot.
func HandleStatus(src SnapshotSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, src.Snapshot())
	}
}

// HandleStream upgrades to a websocket and streams snapshots. The current
// snapshot is sent first, then every push.
func HandleStream(streamer Streamer, allowedOrigins []string, logger *log.Logger) http.HandlerFunc {
	if logger == nil {
		logger = log.Default()
	}
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     newOriginPolicy(allowedOrigins).checkOrigin,
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			writeError(w, status, codeInvalidRequestBody, reason.Error())
		},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Printf("websocket upgrade: %v", err)
			return
		}
		if err := streamer.Serve(r.Context(), conn); err != nil {
			logger.Printf("websocket stream ended: %v", err)
		}
	}
}
