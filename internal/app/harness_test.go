package app

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/aggregator"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/clock"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/reader"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/storage/memory"
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

type fakeSources struct {
	mu    sync.Mutex
	opens map[string]int
	addrs map[string]string
	tags  []string
}

func (f *fakeSources) factory(zone domain.Zone) reader.Source {
	return &fakeSource{parent: f, zone: zone}
}

func (f *fakeSources) opened(zoneID string) (int, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens[zoneID], f.addrs[zoneID]
}

type fakeSource struct {
	parent *fakeSources
	zone   domain.Zone
}

func (s *fakeSource) Describe() string { return s.zone.ReaderAddress }

func (s *fakeSource) Open(ctx context.Context) (reader.Session, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	if s.parent.opens == nil {
		s.parent.opens = make(map[string]int)
		s.parent.addrs = make(map[string]string)
	}
	s.parent.opens[s.zone.ID]++
	s.parent.addrs[s.zone.ID] = s.zone.ReaderAddress
	return fakeSession{tags: s.parent.tags}, nil
}

type fakeSession struct{ tags []string }

func (f fakeSession) Poll(ctx context.Context) (reader.Read, error) {
	if err := ctx.Err(); err != nil {
		return reader.Read{}, err
	}
	return reader.Read{Tags: f.tags}, nil
}

func (fakeSession) Close() error { return nil }

type harness struct {
	store   *memory.Store
	agg     *aggregator.Aggregator
	sources *fakeSources
	zones   *ZoneService
	tags    *TagService
	monitor *MonitorService
}

func newHarness(t *testing.T, tags ...string) *harness {
	t.Helper()

	quiet := log.New(io.Discard, "", 0)
	clk := clock.NewManual(t0)
	store := memory.New()
	agg := aggregator.New(
		aggregator.WithClock(clk),
		aggregator.WithLogger(quiet),
		aggregator.WithSweepInterval(0),
		aggregator.WithPublishInterval(0),
		aggregator.WithHeartbeatInterval(0),
		aggregator.WithDefaultZone(DefaultZoneID),
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = agg.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	sources := &fakeSources{tags: tags}
	zones := NewZoneService(store, agg, clk,
		WithSourceFactory(sources.factory),
		WithLinkOptions(reader.WithPollInterval(5*time.Millisecond), reader.WithLogger(quiet)),
		WithZoneLogger(quiet),
	)
	t.Cleanup(zones.Shutdown)

	return &harness{
		store:   store,
		agg:     agg,
		sources: sources,
		zones:   zones,
		tags:    NewTagService(store, agg),
		monitor: NewMonitorService(zones, MonitorDefaults{ReaderAddress: "192.168.29.201"}),
	}
}

func (h *harness) snapshot(t *testing.T) *domain.Snapshot {
	t.Helper()
	if err := h.agg.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	return h.agg.Snapshot()
}

func validInput(name string) ZoneInput {
	return ZoneInput{
		Name:           name,
		ReaderAddress:  "10.0.0.1",
		ReaderPort:     2189,
		MissingTimeout: 8 * time.Second,
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
