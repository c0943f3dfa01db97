// Package memory is an in-process config store used by tests and by
// store.driver=memory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

type Store struct {
	mu    sync.RWMutex
	zones map[string]domain.Zone
	names map[string]string
}

func New() *Store {
	return &Store{
		zones: make(map[string]domain.Zone),
		names: make(map[string]string),
	}
}

func copyZone(z domain.Zone) domain.Zone {
	if z.MappedZoneID != nil {
		id := *z.MappedZoneID
		z.MappedZoneID = &id
	}
	return z
}

func (s *Store) ListZones(ctx context.Context) ([]domain.Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Zone, 0, len(s.zones))
	for _, z := range s.zones {
		out = append(out, copyZone(z))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetZone(ctx context.Context, id string) (domain.Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	z, ok := s.zones[id]
	if !ok {
		return domain.Zone{}, domain.ErrZoneNotFound
	}
	return copyZone(z), nil
}

func (s *Store) CreateZone(ctx context.Context, zone domain.Zone) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.zones[zone.ID]; ok {
		return domain.Validation("id", fmt.Sprintf("zone %s already exists", zone.ID))
	}
	s.zones[zone.ID] = copyZone(zone)
	return nil
}

func (s *Store) UpdateZone(ctx context.Context, zone domain.Zone) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.zones[zone.ID]; !ok {
		return domain.ErrZoneNotFound
	}
	s.zones[zone.ID] = copyZone(zone)
	return nil
}

func (s *Store) DeleteZone(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.zones[id]; !ok {
		return domain.ErrZoneNotFound
	}
	delete(s.zones, id)
	for zid, z := range s.zones {
		if z.MappedTo() == id {
			z.MappedZoneID = nil
			s.zones[zid] = z
		}
	}
	return nil
}

func (s *Store) ListTagNames(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.names))
	for k, v := range s.names {
		out[k] = v
	}
	return out, nil
}

func (s *Store) SetTagName(ctx context.Context, tagID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[tagID] = name
	return nil
}

func (s *Store) Close() error { return nil }
