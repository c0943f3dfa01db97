package cli

import (
	"fmt"
	"io"
	"log"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pravinkannan18/RFID-Reader-Application/internal/config"
	"github.com/pravinkannan18/RFID-Reader-Application/internal/domain"
)

// ZonesCmd returns the command that lists stored zones.
func ZonesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "zones",
		Short: "List configured zones",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			st, err := openStores(cmd.Context(), cfg.Store, log.New(cmd.ErrOrStderr(), "", 0))
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.close()

			zones, err := st.zones.ListZones(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list zones: %w", err)
			}
			printZones(cmd.OutOrStdout(), zones)
			return nil
		},
	}
}

func printZones(out io.Writer, zones []domain.Zone) {
	if len(zones) == 0 {
		fmt.Fprintln(out, "No zones configured. Run `sentinel migrate` to create the default zone.")
		return
	}

	byID := make(map[string]string, len(zones))
	for _, z := range zones {
		byID[z.ID] = z.Name
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tREADER\tTIMEOUT\tMODE\tMAPPED")
	fmt.Fprintln(w, "--\t----\t------\t-------\t----\t------")
	for _, z := range zones {
		mode := "reader"
		if z.SimulationMode {
			mode = color.New(color.FgYellow).Sprint("simulated")
		}
		mapped := "-"
		if id := z.MappedTo(); id != "" {
			mapped = byID[id]
			if mapped == "" {
				mapped = color.New(color.FgRed).Sprint("MISSING")
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s:%d\t%s\t%s\t%s\n",
			z.ID,
			z.Name,
			z.ReaderAddress,
			z.ReaderPort,
			z.MissingTimeout,
			mode,
			mapped,
		)
	}
	_ = w.Flush()
}
