package hub

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func runHub(t *testing.T, queue int) *Hub {
	t.Helper()
	h := New(queue, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h
}

func decode(t *testing.T, frame []byte) domain.Snapshot {
	t.Helper()
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(frame, &snap))
	return snap
}

func TestHub_DeliversToEverySubscriber(t *testing.T) {
	t.Parallel()

	h := runHub(t, 4)
	a := h.Subscribe()
	b := h.Subscribe()
	defer a.Close()
	defer b.Close()

	h.Publish(&domain.Snapshot{Sequence: 7})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, sub := range []*Subscription{a, b} {
		frame, err := sub.Next(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(7), decode(t, frame).Sequence)
	}
}

func TestHub_SlowSubscriberDropsOldest(t *testing.T) {
	t.Parallel()

	h := New(2, quietLogger())
	slow := h.Subscribe()
	defer slow.Close()

	for _, f := range []string{"1", "2", "3", "4"} {
		h.broadcast([]byte(f))
	}

	require.Equal(t, uint64(2), slow.Dropped())
	ctx := context.Background()
	first, err := slow.Next(ctx)
	require.NoError(t, err)
	second, err := slow.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "3", string(first))
	require.Equal(t, "4", string(second))
}

func TestHub_NewSubscriberGetsLatestFrame(t *testing.T) {
	t.Parallel()

	h := New(2, quietLogger())
	h.broadcast([]byte("current"))

	sub := h.Subscribe()
	defer sub.Close()
	frame, err := sub.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, "current", string(frame))
}

func TestHub_CloseUnsubscribes(t *testing.T) {
	t.Parallel()

	h := New(2, quietLogger())
	sub := h.Subscribe()
	require.Equal(t, 1, h.Subscribers())

	sub.Close()
	sub.Close()
	require.Zero(t, h.Subscribers())

	_, err := sub.Next(context.Background())
	require.ErrorIs(t, err, ErrClosed)
}

func TestHub_ServeStreamsOverWebsocket(t *testing.T) {
	t.Parallel()

	h := runHub(t, 4)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = h.Serve(r.Context(), conn)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.Subscribers() == 1 }, 2*time.Second, 5*time.Millisecond)
	h.Publish(&domain.Snapshot{Sequence: 42, Zones: []domain.ZoneSnapshot{{ZoneID: "zone-a"}}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	snap := decode(t, frame)
	require.Equal(t, uint64(42), snap.Sequence)
	require.Equal(t, "zone-a", snap.Zones[0].ZoneID)

	conn.Close()
	require.Eventually(t, func() bool { return h.Subscribers() == 0 }, 2*time.Second, 5*time.Millisecond)
}
