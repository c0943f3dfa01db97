package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/app"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

type fakeZones struct {
	mu      sync.Mutex
	created []app.ZoneInput
	updated map[string]app.ZoneInput
	calls   []string
	err     error
	results []app.ZoneResult
}

func (f *fakeZones) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeZones) ListZones(ctx context.Context) ([]app.ZoneView, error) {
	if err := f.record("list"); err != nil {
		return nil, err
	}
	return []app.ZoneView{{
		Zone:            domain.Zone{ID: "z1", Name: "Dock", ReaderAddress: "10.0.0.1", ReaderPort: 2189, MissingTimeout: domain.DefaultMissingTimeout},
		ConnectionState: domain.ConnectionConnected,
		Running:         true,
	}}, nil
}

func (f *fakeZones) CreateZone(ctx context.Context, in app.ZoneInput) (app.ZoneView, error) {
	if err := f.record("create"); err != nil {
		return app.ZoneView{}, err
	}
	f.mu.Lock()
	f.created = append(f.created, in)
	f.mu.Unlock()
	return app.ZoneView{
		Zone: domain.Zone{
			ID:             "new-zone",
			Name:           in.Name,
			ReaderAddress:  in.ReaderAddress,
			ReaderPort:     in.ReaderPort,
			MissingTimeout: in.MissingTimeout,
			SimulationMode: in.SimulationMode,
			MappedZoneID:   in.MappedZoneID,
		},
		ConnectionState: domain.ConnectionDisconnected,
	}, nil
}

func (f *fakeZones) UpdateZone(ctx context.Context, id string, in app.ZoneInput) (app.ZoneView, error) {
	if err := f.record("update " + id); err != nil {
		return app.ZoneView{}, err
	}
	f.mu.Lock()
	if f.updated == nil {
		f.updated = make(map[string]app.ZoneInput)
	}
	f.updated[id] = in
	f.mu.Unlock()
	return app.ZoneView{Zone: domain.Zone{ID: id, Name: in.Name, ReaderPort: in.ReaderPort, MissingTimeout: in.MissingTimeout}}, nil
}

func (f *fakeZones) DeleteZone(ctx context.Context, id string) error {
	return f.record("delete " + id)
}

func (f *fakeZones) StartZone(ctx context.Context, id string) error {
	return f.record("start " + id)
}

func (f *fakeZones) StopZone(ctx context.Context, id string) error {
	return f.record("stop " + id)
}

func (f *fakeZones) StartAll(ctx context.Context) ([]app.ZoneResult, error) {
	if err := f.record("start-all"); err != nil {
		return nil, err
	}
	return f.results, nil
}

func (f *fakeZones) StopAll(ctx context.Context) ([]app.ZoneResult, error) {
	if err := f.record("stop-all"); err != nil {
		return nil, err
	}
	return f.results, nil
}

func (f *fakeZones) lastCall() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}

type fakeMonitor struct {
	calls []string
	cfg   app.MonitorConfig
	err   error
}

func (f *fakeMonitor) Start(ctx context.Context) error {
	f.calls = append(f.calls, "start")
	return f.err
}

func (f *fakeMonitor) Stop(ctx context.Context) error {
	f.calls = append(f.calls, "stop")
	return f.err
}

func (f *fakeMonitor) Configure(ctx context.Context, cfg app.MonitorConfig) (app.ZoneView, error) {
	f.calls = append(f.calls, "configure")
	f.cfg = cfg
	return app.ZoneView{}, f.err
}

type fakeTags struct {
	names map[string]string
}

func (f *fakeTags) SetDisplayName(ctx context.Context, tagID, name string) (app.TagName, error) {
	if _, ok := f.names[tagID]; !ok {
		return app.TagName{}, domain.ErrTagNotFound
	}
	f.names[tagID] = name
	return app.TagName{TagID: tagID, Name: name}, nil
}

func (f *fakeTags) ListNames(ctx context.Context) ([]app.TagName, error) {
	return []app.TagName{{TagID: "E2001000ABCD", Name: f.names["E2001000ABCD"]}}, nil
}

type fakeSnapshots struct{ snap *domain.Snapshot }

func (f fakeSnapshots) Snapshot() *domain.Snapshot { return f.snap }

type fakeStreamer struct{}

func (fakeStreamer) Serve(ctx context.Context, conn *websocket.Conn) error {
	defer conn.Close()
	return conn.WriteMessage(websocket.TextMessage, []byte(`{"sequence":1}`))
}

type testServices struct {
	zones   *fakeZones
	monitor *fakeMonitor
	tags    *fakeTags
	router  http.Handler
}

func newTestServices() *testServices {
	ts := &testServices{
		zones:   &fakeZones{},
		monitor: &fakeMonitor{},
		tags:    &fakeTags{names: map[string]string{"E2001000ABCD": "Asset-ABCD"}},
	}
	ts.router = NewRouter(Services{
		Zones:     ts.zones,
		Monitor:   ts.monitor,
		Tags:      ts.tags,
		Snapshots: fakeSnapshots{snap: &domain.Snapshot{Sequence: 42, TotalZones: 1}},
		Stream:    fakeStreamer{},
		Origins:   []string{"*"},
		Logger:    log.New(io.Discard, "", 0),
	})
	return ts
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) errorResponse {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d (%s)", status, rec.Code, rec.Body.String())
	}
	var resp errorResponse
	decodeBody(t, rec, &resp)
	if resp.Code != code {
		t.Fatalf("expected code %s, got %s", code, resp.Code)
	}
	return resp
}
