package app

import (
	"context"
	"errors"
	"time"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

// MonitorDefaults seed the implicit zone the first time it is needed.
type MonitorDefaults struct {
	ReaderAddress  string
	ReaderPort     int
	MissingTimeout time.Duration
	SimulationMode bool
}

// MonitorService keeps the single-reader endpoints working on top of zones:
// they all act on one implicit zone with a fixed id.
type MonitorService struct {
	zones    *ZoneService
	defaults MonitorDefaults
}

func NewMonitorService(zones *ZoneService, defaults MonitorDefaults) *MonitorService {
	if defaults.ReaderPort == 0 {
		defaults.ReaderPort = domain.DefaultReaderPort
	}
	if defaults.MissingTimeout <= 0 {
		defaults.MissingTimeout = domain.DefaultMissingTimeout
	}
	return &MonitorService{zones: zones, defaults: defaults}
}

type MonitorConfig struct {
	Timeout    time.Duration
	IP         string
	Port       int
	Simulation bool
}

func (s *MonitorService) ensure(ctx context.Context) (ZoneView, error) {
	v, err := s.zones.GetZone(ctx, DefaultZoneID)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return ZoneView{}, err
	}
	return s.zones.createZone(ctx, DefaultZoneID, ZoneInput{
		Name:           DefaultZoneName,
		ReaderAddress:  s.defaults.ReaderAddress,
		ReaderPort:     s.defaults.ReaderPort,
		MissingTimeout: s.defaults.MissingTimeout,
		SimulationMode: s.defaults.SimulationMode,
	})
}

// Start creates the implicit zone if needed and starts it.
func (s *MonitorService) Start(ctx context.Context) error {
	if _, err := s.ensure(ctx); err != nil {
		return err
	}
	return s.zones.StartZone(ctx, DefaultZoneID)
}

// Stop stops the implicit zone. It is a no-op when the zone does not exist.
func (s *MonitorService) Stop(ctx context.Context) error {
	err := s.zones.StopZone(ctx, DefaultZoneID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

// Configure applies new settings and restarts the implicit zone, dropping the
// tags it tracked.
func (s *MonitorService) Configure(ctx context.Context, cfg MonitorConfig) (ZoneView, error) {
	current, err := s.ensure(ctx)
	if err != nil {
		return ZoneView{}, err
	}

	in := ZoneInput{
		Name:           current.Name,
		ReaderAddress:  current.ReaderAddress,
		ReaderPort:     current.ReaderPort,
		MissingTimeout: cfg.Timeout,
		SimulationMode: cfg.Simulation,
		MappedZoneID:   current.MappedZoneID,
	}
	if cfg.IP != "" {
		in.ReaderAddress = cfg.IP
	}
	if cfg.Port != 0 {
		in.ReaderPort = cfg.Port
	}
	in = in.normalized()
	if err := in.validate(); err != nil {
		return ZoneView{}, err
	}

	if err := s.zones.StopZone(ctx, DefaultZoneID); err != nil {
		return ZoneView{}, err
	}
	if _, err := s.zones.UpdateZone(ctx, DefaultZoneID, in); err != nil {
		return ZoneView{}, err
	}
	if err := s.zones.StartZone(ctx, DefaultZoneID); err != nil {
		return ZoneView{}, err
	}
	return s.zones.GetZone(ctx, DefaultZoneID)
}
