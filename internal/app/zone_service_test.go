package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

func TestZoneService_CreateZoneValidation(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*ZoneInput)
	}{
		{name: "name required", mutate: func(in *ZoneInput) { in.Name = "  " }},
		{name: "name too long", mutate: func(in *ZoneInput) { in.Name = strings.Repeat("x", 101) }},
		{name: "address required", mutate: func(in *ZoneInput) { in.ReaderAddress = "" }},
		{name: "address with whitespace", mutate: func(in *ZoneInput) { in.ReaderAddress = "10.0.0.1 2" }},
		{name: "port zero", mutate: func(in *ZoneInput) { in.ReaderPort = 0 }},
		{name: "port too high", mutate: func(in *ZoneInput) { in.ReaderPort = 70000 }},
		{name: "timeout zero", mutate: func(in *ZoneInput) { in.MissingTimeout = 0 }},
		{name: "timeout too long", mutate: func(in *ZoneInput) { in.MissingTimeout = time.Hour + time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput("Dock")
			tt.mutate(&in)
			_, err := h.zones.CreateZone(ctx, in)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	zones, err := h.zones.ListZones(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(zones) != 0 {
		t.Fatalf("expected no zones stored, got %d", len(zones))
	}
}

func TestZoneService_CreateZone(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	zone, err := h.zones.CreateZone(ctx, validInput(" Dock "))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := uuid.Parse(zone.ID); err != nil {
		t.Fatalf("expected uuid id, got %q", zone.ID)
	}
	if zone.Name != "Dock" {
		t.Fatalf("expected trimmed name, got %q", zone.Name)
	}
	if zone.Running {
		t.Fatalf("expected new zone to be idle")
	}
	if zone.ConnectionState != domain.ConnectionDisconnected {
		t.Fatalf("expected disconnected, got %s", zone.ConnectionState)
	}

	snap := h.snapshot(t)
	if _, ok := snap.Zone(zone.ID); !ok {
		t.Fatalf("expected zone in snapshot")
	}
}

func TestZoneService_MappedZoneReference(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	dock, err := h.zones.CreateZone(ctx, validInput("Dock"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	ghost := "5b7c0a43-0000-4000-8000-000000000000"
	in := validInput("Yard")
	in.MappedZoneID = &ghost
	if _, err := h.zones.CreateZone(ctx, in); !errors.Is(err, domain.ErrInvalidReference) {
		t.Fatalf("expected invalid reference, got %v", err)
	}

	self := validInput("Dock")
	self.MappedZoneID = &dock.ID
	if _, err := h.zones.UpdateZone(ctx, dock.ID, self); !errors.Is(err, domain.ErrInvalidReference) {
		t.Fatalf("expected invalid reference for self mapping, got %v", err)
	}

	in.MappedZoneID = &dock.ID
	yard, err := h.zones.CreateZone(ctx, in)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if yard.MappedTo() != dock.ID {
		t.Fatalf("expected mapping to %s, got %q", dock.ID, yard.MappedTo())
	}
}

func TestZoneService_StartStopAreIdempotent(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "E2001000AAAA")
	ctx := context.Background()

	zone, err := h.zones.CreateZone(ctx, validInput("Dock"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := h.zones.StartZone(ctx, zone.ID); err != nil {
			t.Fatalf("start %d: expected no error, got %v", i, err)
		}
	}
	waitFor(t, "tag to be reported", func() bool {
		z, _ := h.snapshot(t).Zone(zone.ID)
		return z.ActiveCount == 1
	})
	if opens, _ := h.sources.opened(zone.ID); opens != 1 {
		t.Fatalf("expected a single connection, got %d", opens)
	}

	view, err := h.zones.GetZone(ctx, zone.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !view.Running {
		t.Fatalf("expected zone to be running")
	}

	for i := 0; i < 2; i++ {
		if err := h.zones.StopZone(ctx, zone.ID); err != nil {
			t.Fatalf("stop %d: expected no error, got %v", i, err)
		}
	}
	z, _ := h.snapshot(t).Zone(zone.ID)
	if z.Monitoring || z.ActiveCount != 0 || z.ConnectionState != domain.ConnectionDisconnected {
		t.Fatalf("expected stopped zone without tags, got %+v", z)
	}

	if err := h.zones.StopZone(ctx, "5b7c0a43-0000-4000-8000-000000000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestZoneService_UpdateRunningZoneReconnects(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "E2001000AAAA")
	ctx := context.Background()

	zone, err := h.zones.CreateZone(ctx, validInput("Dock"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := h.zones.StartZone(ctx, zone.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	waitFor(t, "first connection", func() bool {
		opens, _ := h.sources.opened(zone.ID)
		return opens == 1
	})

	in := validInput("Dock")
	in.ReaderAddress = "10.0.0.2"
	in.MissingTimeout = 20 * time.Second
	updated, err := h.zones.UpdateZone(ctx, zone.ID, in)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !updated.Running {
		t.Fatalf("expected zone to keep running")
	}
	if updated.MissingTimeout != 20*time.Second {
		t.Fatalf("expected timeout 20s, got %s", updated.MissingTimeout)
	}

	waitFor(t, "reconnect with new address", func() bool {
		opens, addr := h.sources.opened(zone.ID)
		return opens == 2 && addr == "10.0.0.2"
	})
	stored, err := h.store.GetZone(ctx, zone.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if stored.ReaderAddress != "10.0.0.2" {
		t.Fatalf("expected stored address to change, got %s", stored.ReaderAddress)
	}
}

func TestZoneService_DeleteZone(t *testing.T) {
	t.Parallel()

	h := newHarness(t, "E2001000AAAA")
	ctx := context.Background()

	dock, err := h.zones.CreateZone(ctx, validInput("Dock"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	yardIn := validInput("Yard")
	yardIn.MappedZoneID = &dock.ID
	yard, err := h.zones.CreateZone(ctx, yardIn)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := h.zones.StartZone(ctx, dock.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	waitFor(t, "tag in dock", func() bool {
		z, _ := h.snapshot(t).Zone(dock.ID)
		return z.ActiveCount == 1
	})

	if err := h.zones.DeleteZone(ctx, dock.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	snap := h.snapshot(t)
	if _, ok := snap.Zone(dock.ID); ok {
		t.Fatalf("expected deleted zone to leave the snapshot")
	}
	for _, z := range snap.Zones {
		if z.ActiveCount != 0 {
			t.Fatalf("expected no tags left, got %+v", z)
		}
	}
	if _, err := h.zones.GetZone(ctx, dock.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	got, err := h.zones.GetZone(ctx, yard.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.MappedZoneID != nil {
		t.Fatalf("expected mapping to be cleared, got %v", *got.MappedZoneID)
	}
	if err := h.zones.DeleteZone(ctx, dock.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestZoneService_StartAllStopAll(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"Dock", "Yard", "Gate"} {
		z, err := h.zones.CreateZone(ctx, validInput(name))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		ids = append(ids, z.ID)
	}

	results, err := h.zones.StartAll(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(results) != len(ids) {
		t.Fatalf("expected %d results, got %d", len(ids), len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("zone %s: expected no error, got %v", r.ZoneID, r.Err)
		}
		if r.ZoneID != ids[i] {
			t.Fatalf("expected results in zone order, got %s at %d", r.ZoneID, i)
		}
	}
	if snap := h.snapshot(t); snap.ActiveZones != 3 {
		t.Fatalf("expected 3 active zones, got %d", snap.ActiveZones)
	}

	if _, err := h.zones.StopAll(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if snap := h.snapshot(t); snap.ActiveZones != 0 {
		t.Fatalf("expected no active zones, got %d", snap.ActiveZones)
	}
}

func TestZoneService_LoadAnnouncesStoredZones(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	zone := domain.Zone{
		ID:             "5b7c0a43-0000-4000-8000-000000000001",
		Name:           "Stored",
		ReaderAddress:  "10.0.0.5",
		ReaderPort:     2189,
		MissingTimeout: 8 * time.Second,
		SimulationMode: true,
		CreatedAt:      t0,
		UpdatedAt:      t0,
	}
	if err := h.store.CreateZone(ctx, zone); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := h.zones.Load(ctx, true); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	z, ok := h.snapshot(t).Zone(zone.ID)
	if !ok {
		t.Fatalf("expected stored zone in snapshot")
	}
	if !z.Monitoring {
		t.Fatalf("expected autostart to start the zone")
	}
}
