package hub

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Serve streams frames from a new subscription to conn until the peer goes
// away, a write fails or ctx is done. It closes conn before returning.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn) error {
	sub := h.Subscribe()
	defer sub.Close()
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Reader: the peer sends nothing we use, but reading is how close frames
	// and dead connections are noticed.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		frame, err := sub.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, ErrClosed) {
				return nil
			}
			return err
		}
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			h.logger.Printf("hub subscriber=%d write: %v (dropped=%d)", sub.id, err, sub.Dropped())
			return err
		}
	}
}
