package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/app"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/config"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

// MigrateCmd returns the command that prepares the config store.
func MigrateCmd() *cobra.Command {
	var noSeed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the config store schema",
		Long: `Brings the configured store's schema up to date and, unless --no-seed is
given, creates the "Default Zone" used by /start, /stop and /config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := log.New(cmd.ErrOrStderr(), "", 0)
			st, err := openStores(cmd.Context(), cfg.Store, logger)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s schema up to date (%s)\n", color.New(color.FgGreen).Sprint("✓"), cfg.Store.Driver)
			if noSeed {
				return nil
			}
			return seedDefaultZone(cmd.Context(), out, st.zones, cfg.Legacy, time.Now().UTC())
		},
	}
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "skip creating the default zone")
	return cmd
}

func seedDefaultZone(ctx context.Context, out io.Writer, repo app.ZoneRepository, legacy config.LegacyConfig, now time.Time) error {
	_, err := repo.GetZone(ctx, app.DefaultZoneID)
	if err == nil {
		fmt.Fprintf(out, "  %s %s already exists\n", color.New(color.FgBlue).Sprint("EXISTS"), app.DefaultZoneName)
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("look up default zone: %w", err)
	}

	zone := domain.Zone{
		ID:             app.DefaultZoneID,
		Name:           app.DefaultZoneName,
		ReaderAddress:  legacy.ReaderIP,
		ReaderPort:     legacy.ReaderPort,
		MissingTimeout: legacy.Timeout,
		SimulationMode: legacy.Simulation,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := repo.CreateZone(ctx, zone); err != nil {
		return fmt.Errorf("create default zone: %w", err)
	}
	fmt.Fprintf(out, "  %s %s %s:%d timeout=%s\n",
		color.New(color.FgGreen).Sprint("CREATE"), zone.Name, zone.ReaderAddress, zone.ReaderPort, zone.MissingTimeout)
	return nil
}
