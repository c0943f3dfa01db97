// Package storetest holds the behavior every config store backend must share.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/app"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

type Store interface {
	app.ZoneRepository
	app.TagNameRepository
}

var base = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// Zone returns a valid zone fixture.
func Zone(id, name string, created time.Duration) domain.Zone {
	return domain.Zone{
		ID:             id,
		Name:           name,
		ReaderAddress:  "192.168.29.201",
		ReaderPort:     domain.DefaultReaderPort,
		MissingTimeout: 8 * time.Second,
		CreatedAt:      base.Add(created),
		UpdatedAt:      base.Add(created),
	}
}

// Run exercises a store. open must return an empty store.
func Run(t *testing.T, open func(t *testing.T) Store) {
	t.Run("create get and list zones", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		b := Zone("00000000-0000-4000-8000-00000000000b", "Warehouse", time.Minute)
		a := Zone("00000000-0000-4000-8000-00000000000a", "Dock", 0)
		a.SimulationMode = true
		a.MissingTimeout = 2500 * time.Millisecond
		require.NoError(t, s.CreateZone(ctx, b))
		require.NoError(t, s.CreateZone(ctx, a))

		got, err := s.GetZone(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, a.Name, got.Name)
		require.Equal(t, a.ReaderAddress, got.ReaderAddress)
		require.Equal(t, a.ReaderPort, got.ReaderPort)
		require.Equal(t, a.MissingTimeout, got.MissingTimeout)
		require.True(t, got.SimulationMode)
		require.Nil(t, got.MappedZoneID)
		require.True(t, a.CreatedAt.Equal(got.CreatedAt))

		zones, err := s.ListZones(ctx)
		require.NoError(t, err)
		require.Len(t, zones, 2)
		require.Equal(t, a.ID, zones[0].ID, "zones are listed in creation order")
		require.Equal(t, b.ID, zones[1].ID)
	})

	t.Run("unknown zone is not found", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		missing := "00000000-0000-4000-8000-0000000000ff"

		_, err := s.GetZone(ctx, missing)
		require.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)
		require.ErrorIs(t, s.UpdateZone(ctx, Zone(missing, "Ghost", 0)), domain.ErrNotFound)
		require.ErrorIs(t, s.DeleteZone(ctx, missing), domain.ErrNotFound)
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		z := Zone("00000000-0000-4000-8000-00000000000a", "Dock", 0)
		require.NoError(t, s.CreateZone(ctx, z))
		require.ErrorIs(t, s.CreateZone(ctx, z), domain.ErrValidation)
	})

	t.Run("update zone", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		a := Zone("00000000-0000-4000-8000-00000000000a", "Dock", 0)
		b := Zone("00000000-0000-4000-8000-00000000000b", "Warehouse", time.Minute)
		require.NoError(t, s.CreateZone(ctx, a))
		require.NoError(t, s.CreateZone(ctx, b))

		a.Name = "Loading Dock"
		a.ReaderAddress = "10.0.0.9"
		a.ReaderPort = 4001
		a.MissingTimeout = 30 * time.Second
		a.MappedZoneID = &b.ID
		a.UpdatedAt = base.Add(time.Hour)
		require.NoError(t, s.UpdateZone(ctx, a))

		got, err := s.GetZone(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, "Loading Dock", got.Name)
		require.Equal(t, "10.0.0.9", got.ReaderAddress)
		require.Equal(t, 4001, got.ReaderPort)
		require.Equal(t, 30*time.Second, got.MissingTimeout)
		require.NotNil(t, got.MappedZoneID)
		require.Equal(t, b.ID, *got.MappedZoneID)
	})

	t.Run("delete clears references", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		a := Zone("00000000-0000-4000-8000-00000000000a", "Dock", 0)
		b := Zone("00000000-0000-4000-8000-00000000000b", "Warehouse", time.Minute)
		b.MappedZoneID = &a.ID
		require.NoError(t, s.CreateZone(ctx, a))
		require.NoError(t, s.CreateZone(ctx, b))

		require.NoError(t, s.DeleteZone(ctx, a.ID))

		_, err := s.GetZone(ctx, a.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
		got, err := s.GetZone(ctx, b.ID)
		require.NoError(t, err)
		require.Nil(t, got.MappedZoneID)
	})

	t.Run("tag names", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		names, err := s.ListTagNames(ctx)
		require.NoError(t, err)
		require.Empty(t, names)

		require.NoError(t, s.SetTagName(ctx, "E2001000ABCD", "Forklift"))
		require.NoError(t, s.SetTagName(ctx, "E2001000ABCD", "Forklift 2"))
		require.NoError(t, s.SetTagName(ctx, "E20010000001", "Pallet"))

		names, err = s.ListTagNames(ctx)
		require.NoError(t, err)
		require.Equal(t, map[string]string{
			"E2001000ABCD": "Forklift 2",
			"E20010000001": "Pallet",
		}, names)
	})
}
