package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/app"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/config"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/storage/memory"
)

func sqliteEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	path := filepath.Join(dir, "rfid.db")
	t.Setenv("SENTINEL_CONFIG", "")
	t.Setenv("SENTINEL_STORE_DRIVER", "sqlite")
	t.Setenv("SENTINEL_STORE_SQLITE_PATH", path)
	return path
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.ExecuteContext(context.Background()))
	return out.String()
}

func TestMigrate_SeedsDefaultZoneOnce(t *testing.T) {
	sqliteEnv(t)

	out := run(t, "migrate")
	require.Contains(t, out, "CREATE")
	require.Contains(t, out, "Default Zone 192.168.29.201:2189")

	out = run(t, "migrate")
	require.Contains(t, out, "EXISTS")

	out = run(t, "zones")
	require.Contains(t, out, app.DefaultZoneID)
	require.Contains(t, out, "192.168.29.201:2189")
	require.Contains(t, out, "8s")
}

func TestMigrate_NoSeed(t *testing.T) {
	sqliteEnv(t)

	run(t, "migrate", "--no-seed")
	out := run(t, "zones")
	require.Contains(t, out, "No zones configured")
}

func TestSeedDefaultZone_UsesLegacySettings(t *testing.T) {
	t.Parallel()
	store := memory.New()
	var out bytes.Buffer
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	err := seedDefaultZone(context.Background(), &out, store, config.LegacyConfig{
		ReaderIP:   "10.0.0.5",
		ReaderPort: 4001,
		Timeout:    3 * time.Second,
		Simulation: true,
	}, now)
	require.NoError(t, err)

	z, err := store.GetZone(context.Background(), app.DefaultZoneID)
	require.NoError(t, err)
	require.Equal(t, "Default Zone", z.Name)
	require.Equal(t, "10.0.0.5", z.ReaderAddress)
	require.Equal(t, 4001, z.ReaderPort)
	require.Equal(t, 3*time.Second, z.MissingTimeout)
	require.True(t, z.SimulationMode)
}

func TestPrintZones_ResolvesMappedNames(t *testing.T) {
	t.Parallel()
	dockID := "zone-dock"
	gone := "zone-gone"
	zones := []domain.Zone{
		{ID: dockID, Name: "Dock", ReaderAddress: "10.0.0.1", ReaderPort: 2189, MissingTimeout: 8 * time.Second},
		{ID: "zone-yard", Name: "Yard", ReaderAddress: "10.0.0.2", ReaderPort: 2189, MissingTimeout: 5 * time.Second, MappedZoneID: &dockID, SimulationMode: true},
		{ID: "zone-gate", Name: "Gate", ReaderAddress: "10.0.0.3", ReaderPort: 2189, MissingTimeout: 5 * time.Second, MappedZoneID: &gone},
	}

	var out bytes.Buffer
	printZones(&out, zones)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	require.Contains(t, lines[3], "simulated")
	require.True(t, strings.HasSuffix(strings.TrimSpace(lines[3]), "Dock"))
	require.Contains(t, lines[4], "MISSING")
}
