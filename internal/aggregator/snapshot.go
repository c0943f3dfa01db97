package aggregator

import (
	"math"
	"sort"
	"time"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

func (a *Aggregator) build(now time.Time, heartbeat bool) *domain.Snapshot {
	snap := &domain.Snapshot{
		Sequence:    a.seq,
		GeneratedAt: now,
		Heartbeat:   heartbeat,
		Zones:       make([]domain.ZoneSnapshot, 0, len(a.zones)),
		Transfers:   make([]domain.TransferEntry, 0, len(a.transfers)),
		Logs:        append(make([]domain.LogEntry, 0, len(a.logs)), a.logs...),

		ConnectionState: domain.ConnectionDisconnected,
		ActiveTags:      []domain.TagEntry{},
		MissingTags:     []domain.TagEntry{},
	}

	states := make([]*zoneState, 0, len(a.zones))
	for _, zs := range a.zones {
		states = append(states, zs)
	}
	sort.Slice(states, func(i, j int) bool {
		zi, zj := states[i].zone, states[j].zone
		if !zi.CreatedAt.Equal(zj.CreatedAt) {
			return zi.CreatedAt.Before(zj.CreatedAt)
		}
		return zi.ID < zj.ID
	})

	for _, zs := range states {
		zsnap := a.zoneSnapshot(zs, now)
		snap.Zones = append(snap.Zones, zsnap)
		snap.TotalZones++
		if zs.running {
			snap.ActiveZones++
		}
		if zs.zone.ID == a.defaultZoneID {
			snap.ConnectionState = zsnap.ConnectionState
			snap.Monitoring = zsnap.Monitoring
			snap.IP = zsnap.IP
			snap.ActiveCount = zsnap.ActiveCount
			snap.MissingCount = zsnap.MissingCount
			snap.ActiveTags = zsnap.ActiveTags
			snap.MissingTags = zsnap.MissingTags
		}
	}

	for _, ev := range a.transfers {
		snap.Transfers = append(snap.Transfers, domain.TransferEntry{
			TagID:      ev.TagID,
			TagName:    ev.TagName,
			FromZone:   ev.FromZone,
			ToZone:     ev.ToZone,
			FromZoneID: ev.FromZoneID,
			ToZoneID:   ev.ToZoneID,
			Time:       ev.DetectedAt.Local().Format(domain.LogTimeLayout),
		})
	}
	return snap
}

func (a *Aggregator) zoneSnapshot(zs *zoneState, now time.Time) domain.ZoneSnapshot {
	out := domain.ZoneSnapshot{
		ZoneID:          zs.zone.ID,
		ZoneName:        zs.zone.Name,
		IP:              zs.zone.ReaderAddress,
		Port:            zs.zone.ReaderPort,
		ConnectionState: zs.state,
		Monitoring:      zs.running,
		ActiveTags:      []domain.TagEntry{},
		MissingTags:     []domain.TagEntry{},
	}
	for _, e := range zs.ledger.Entries(now) {
		age := now.Sub(e.LastSeen)
		entry := domain.TagEntry{
			ID:         e.TagID,
			Name:       a.tagName(e.TagID),
			LastSeen:   float64(e.LastSeen.UnixNano()) / 1e9,
			AgeSeconds: math.Round(age.Seconds()*10) / 10,
		}
		if e.State == domain.TagActive {
			out.ActiveTags = append(out.ActiveTags, entry)
		} else {
			out.MissingTags = append(out.MissingTags, entry)
		}
	}
	// Entries come sorted by id, so stable sorts keep ties deterministic.
	sort.SliceStable(out.ActiveTags, func(i, j int) bool {
		return out.ActiveTags[i].AgeSeconds < out.ActiveTags[j].AgeSeconds
	})
	sort.SliceStable(out.MissingTags, func(i, j int) bool {
		return out.MissingTags[i].AgeSeconds > out.MissingTags[j].AgeSeconds
	})
	out.ActiveCount = len(out.ActiveTags)
	out.MissingCount = len(out.MissingTags)
	return out
}
