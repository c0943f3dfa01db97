package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/clock"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/reader"
)

// SourceFactory picks the reader transport for a zone.
type SourceFactory func(zone domain.Zone) reader.Source

// DefaultSources simulates zones in simulation mode and dials the rest.
func DefaultSources(dialTimeout time.Duration) SourceFactory {
	return func(zone domain.Zone) reader.Source {
		if zone.SimulationMode {
			return reader.NewSimSource(zone.ID)
		}
		return reader.NewTCPSource(zone.ReaderAddress, zone.ReaderPort, dialTimeout)
	}
}

type ZoneService struct {
	repo     ZoneRepository
	pipeline Pipeline
	clock    clock.Clock
	sources  SourceFactory
	linkOpts []reader.LinkOption
	poll     time.Duration
	logger   *log.Logger

	locks keyedMutex
	mu    sync.Mutex
	links map[string]*reader.Link
}

type ZoneServiceOption func(*ZoneService)

func WithSourceFactory(f SourceFactory) ZoneServiceOption {
	return func(s *ZoneService) {
		if f != nil {
			s.sources = f
		}
	}
}

// WithLinkOptions applies to every link the service creates.
func WithLinkOptions(opts ...reader.LinkOption) ZoneServiceOption {
	return func(s *ZoneService) {
		s.linkOpts = append(s.linkOpts, opts...)
	}
}

// WithReaderPollInterval sets the poll cadence of hardware readers.
// Simulated zones keep reader.SimPollInterval.
func WithReaderPollInterval(d time.Duration) ZoneServiceOption {
	return func(s *ZoneService) {
		s.poll = d
	}
}

func WithZoneLogger(logger *log.Logger) ZoneServiceOption {
	return func(s *ZoneService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewZoneService(repo ZoneRepository, pipeline Pipeline, clk clock.Clock, opts ...ZoneServiceOption) *ZoneService {
	svc := &ZoneService{
		repo:     repo,
		pipeline: pipeline,
		clock:    clk,
		sources:  DefaultSources(reader.DefaultDialTimeout),
		logger:   log.Default(),
		links:    make(map[string]*reader.Link),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ZoneInput struct {
	Name           string
	ReaderAddress  string
	ReaderPort     int
	MissingTimeout time.Duration
	SimulationMode bool
	MappedZoneID   *string
}

// ZoneView is a stored zone plus its runtime state.
type ZoneView struct {
	domain.Zone
	ConnectionState domain.ConnectionState
	Running         bool
}

// ZoneResult reports the outcome of a bulk start or stop for one zone.
type ZoneResult struct {
	ZoneID string
	Err    error
}

func (in ZoneInput) normalized() ZoneInput {
	in.Name = strings.TrimSpace(in.Name)
	in.ReaderAddress = strings.TrimSpace(in.ReaderAddress)
	if in.MappedZoneID != nil {
		id := strings.TrimSpace(*in.MappedZoneID)
		if id == "" {
			in.MappedZoneID = nil
		} else {
			in.MappedZoneID = &id
		}
	}
	return in
}

func (in ZoneInput) validate() error {
	switch {
	case in.Name == "":
		return domain.Validation("name", "is required")
	case len(in.Name) > domain.MaxNameLength:
		return domain.Validation("name", fmt.Sprintf("must be at most %d characters", domain.MaxNameLength))
	case in.ReaderAddress == "":
		return domain.Validation("reader_ip", "is required")
	case strings.ContainsAny(in.ReaderAddress, " \t\r\n"):
		return domain.Validation("reader_ip", "must not contain whitespace")
	case in.ReaderPort < 1 || in.ReaderPort > 65535:
		return domain.Validation("reader_port", "must be between 1 and 65535")
	case in.MissingTimeout <= 0 || in.MissingTimeout > domain.MaxMissingTimeout:
		return domain.Validation("timeout", fmt.Sprintf("must be greater than 0 and at most %d seconds", int(domain.MaxMissingTimeout.Seconds())))
	}
	return nil
}

func (s *ZoneService) checkMapping(ctx context.Context, zoneID string, mapped *string) error {
	if mapped == nil {
		return nil
	}
	if *mapped == zoneID {
		return domain.ErrZoneSelfMapping
	}
	if _, err := s.repo.GetZone(ctx, *mapped); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrMappedZoneAbsent
		}
		return err
	}
	return nil
}

func (s *ZoneService) view(zone domain.Zone) ZoneView {
	v := ZoneView{Zone: zone, ConnectionState: domain.ConnectionDisconnected}
	if zs, ok := s.pipeline.Snapshot().Zone(zone.ID); ok {
		v.ConnectionState = zs.ConnectionState
	}
	s.mu.Lock()
	if link, ok := s.links[zone.ID]; ok {
		v.Running = link.Running()
	}
	s.mu.Unlock()
	return v
}

func (s *ZoneService) ListZones(ctx context.Context) ([]ZoneView, error) {
	zones, err := s.repo.ListZones(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ZoneView, 0, len(zones))
	for _, z := range zones {
		out = append(out, s.view(z))
	}
	return out, nil
}

func (s *ZoneService) GetZone(ctx context.Context, id string) (ZoneView, error) {
	zone, err := s.repo.GetZone(ctx, id)
	if err != nil {
		return ZoneView{}, err
	}
	return s.view(zone), nil
}

func (s *ZoneService) CreateZone(ctx context.Context, in ZoneInput) (ZoneView, error) {
	return s.createZone(ctx, newZoneID(), in)
}

func (s *ZoneService) createZone(ctx context.Context, id string, in ZoneInput) (ZoneView, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return ZoneView{}, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.checkMapping(ctx, id, in.MappedZoneID); err != nil {
		return ZoneView{}, err
	}

	now := s.clock.Now()
	zone := domain.Zone{
		ID:             id,
		Name:           in.Name,
		ReaderAddress:  in.ReaderAddress,
		ReaderPort:     in.ReaderPort,
		MissingTimeout: in.MissingTimeout,
		SimulationMode: in.SimulationMode,
		MappedZoneID:   in.MappedZoneID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreateZone(ctx, zone); err != nil {
		return ZoneView{}, err
	}
	if err := s.pipeline.ZoneConfigured(ctx, zone); err != nil {
		return ZoneView{}, err
	}
	return s.view(zone), nil
}

// UpdateZone replaces a zone's settings. A running zone is reconnected with
// the new settings; the tags it already tracks are kept.
func (s *ZoneService) UpdateZone(ctx context.Context, id string, in ZoneInput) (ZoneView, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return ZoneView{}, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	existing, err := s.repo.GetZone(ctx, id)
	if err != nil {
		return ZoneView{}, err
	}
	if err := s.checkMapping(ctx, id, in.MappedZoneID); err != nil {
		return ZoneView{}, err
	}

	zone := existing
	zone.Name = in.Name
	zone.ReaderAddress = in.ReaderAddress
	zone.ReaderPort = in.ReaderPort
	zone.MissingTimeout = in.MissingTimeout
	zone.SimulationMode = in.SimulationMode
	zone.MappedZoneID = in.MappedZoneID
	zone.UpdatedAt = s.clock.Now()

	running := s.disconnect(id)
	if err := s.repo.UpdateZone(ctx, zone); err != nil {
		if running {
			_ = s.connect(ctx, existing)
		}
		return ZoneView{}, err
	}
	if err := s.pipeline.ZoneConfigured(ctx, zone); err != nil {
		return ZoneView{}, err
	}
	if running {
		if err := s.connect(ctx, zone); err != nil {
			return ZoneView{}, err
		}
	}
	return s.view(zone), nil
}

// DeleteZone stops the zone, removes it and clears references to it.
func (s *ZoneService) DeleteZone(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if _, err := s.repo.GetZone(ctx, id); err != nil {
		return err
	}
	zones, err := s.repo.ListZones(ctx)
	if err != nil {
		return err
	}
	var referencing []string
	for _, z := range zones {
		if z.MappedTo() == id {
			referencing = append(referencing, z.ID)
		}
	}

	s.disconnect(id)
	if err := s.repo.DeleteZone(ctx, id); err != nil {
		return err
	}
	if err := s.pipeline.ZoneRemoved(ctx, id); err != nil {
		return err
	}
	for _, refID := range referencing {
		z, err := s.repo.GetZone(ctx, refID)
		if err != nil {
			continue
		}
		if err := s.pipeline.ZoneConfigured(ctx, z); err != nil {
			return err
		}
	}
	return nil
}

// StartZone connects the zone's reader. Starting a running zone does nothing.
func (s *ZoneService) StartZone(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	zone, err := s.repo.GetZone(ctx, id)
	if err != nil {
		return err
	}
	if s.running(id) {
		return nil
	}
	if err := s.pipeline.ZoneConfigured(ctx, zone); err != nil {
		return err
	}
	if err := s.pipeline.ZoneStarted(ctx, id); err != nil {
		return err
	}
	return s.connect(ctx, zone)
}

// StopZone disconnects the zone's reader and drops its tags. Stopping an idle
// zone does nothing beyond confirming it exists.
func (s *ZoneService) StopZone(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if _, err := s.repo.GetZone(ctx, id); err != nil {
		return err
	}
	s.disconnect(id)
	return s.pipeline.ZoneStopped(ctx, id)
}

func (s *ZoneService) StartAll(ctx context.Context) ([]ZoneResult, error) {
	return s.forEach(ctx, s.StartZone)
}

func (s *ZoneService) StopAll(ctx context.Context) ([]ZoneResult, error) {
	return s.forEach(ctx, s.StopZone)
}

func (s *ZoneService) forEach(ctx context.Context, fn func(context.Context, string) error) ([]ZoneResult, error) {
	zones, err := s.repo.ListZones(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]ZoneResult, len(zones))
	var wg sync.WaitGroup
	for i, z := range zones {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			results[i] = ZoneResult{ZoneID: id, Err: fn(ctx, id)}
		}(i, z.ID)
	}
	wg.Wait()
	return results, nil
}

// Load announces every stored zone to the pipeline and optionally starts them.
func (s *ZoneService) Load(ctx context.Context, autostart bool) error {
	zones, err := s.repo.ListZones(ctx)
	if err != nil {
		return fmt.Errorf("load zones: %w", err)
	}
	for _, z := range zones {
		if err := s.pipeline.ZoneConfigured(ctx, z); err != nil {
			return err
		}
	}
	if !autostart {
		return nil
	}
	results, err := s.StartAll(ctx)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Err != nil {
			s.logger.Printf("autostart zone=%s: %v", r.ZoneID, r.Err)
		}
	}
	return nil
}

// Shutdown disconnects every link without touching stored state.
func (s *ZoneService) Shutdown() {
	s.mu.Lock()
	links := make([]*reader.Link, 0, len(s.links))
	for id, l := range s.links {
		links = append(links, l)
		delete(s.links, id)
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, l := range links {
		wg.Add(1)
		go func(l *reader.Link) {
			defer wg.Done()
			l.Disconnect()
		}(l)
	}
	wg.Wait()
}

func (s *ZoneService) running(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[id]
	return ok && link.Running()
}

func (s *ZoneService) connect(ctx context.Context, zone domain.Zone) error {
	opts := []reader.LinkOption{reader.WithClock(s.clock), reader.WithLogger(s.logger)}
	switch {
	case zone.SimulationMode:
		opts = append(opts, reader.WithPollInterval(reader.SimPollInterval))
	case s.poll > 0:
		opts = append(opts, reader.WithPollInterval(s.poll))
	}
	opts = append(opts, s.linkOpts...)
	link := reader.NewLink(zone.ID, s.sources(zone), s.pipeline, opts...)

	s.mu.Lock()
	s.links[zone.ID] = link
	s.mu.Unlock()
	return link.Connect(ctx)
}

// disconnect stops the zone's link, if any, and reports whether it was running.
func (s *ZoneService) disconnect(id string) bool {
	s.mu.Lock()
	link, ok := s.links[id]
	delete(s.links, id)
	s.mu.Unlock()
	if !ok {
		return false
	}
	wasRunning := link.Running()
	link.Disconnect()
	return wasRunning
}
