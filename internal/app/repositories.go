package app

import (
	"context"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/reader"
)

// ZoneRepository persists zone configuration. Lookups of unknown ids return
// domain.ErrZoneNotFound.
type ZoneRepository interface {
	ListZones(ctx context.Context) ([]domain.Zone, error)
	GetZone(ctx context.Context, id string) (domain.Zone, error)
	CreateZone(ctx context.Context, zone domain.Zone) error
	UpdateZone(ctx context.Context, zone domain.Zone) error
	// DeleteZone also clears mapped_zone_id on zones that referenced it.
	DeleteZone(ctx context.Context, id string) error
}

type TagNameRepository interface {
	ListTagNames(ctx context.Context) (map[string]string, error)
	SetTagName(ctx context.Context, tagID, name string) error
}

// Pipeline is the part of the aggregator the services drive.
type Pipeline interface {
	reader.Sink
	ZoneConfigured(ctx context.Context, zone domain.Zone) error
	ZoneStarted(ctx context.Context, zoneID string) error
	ZoneStopped(ctx context.Context, zoneID string) error
	ZoneRemoved(ctx context.Context, zoneID string) error
	Rename(ctx context.Context, tagID, name string) error
	SetNames(ctx context.Context, names map[string]string) error
	Known(ctx context.Context, tagID string) (bool, error)
	Snapshot() *domain.Snapshot
}
