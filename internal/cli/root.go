// Package cli holds the sentinel command tree.
package cli

import "github.com/spf13/cobra"

// NewRootCmd assembles every subcommand.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sentinel",
		Short: "Sentinel - live RFID asset presence across reader zones",
		Long: `Sentinel polls RFID readers, one per zone, tracks which tagged assets are
present or missing, detects moves between zones and streams the result to
dashboards over a websocket.`,
		SilenceUsage: true,
	}

	root.AddCommand(ServeCmd())
	root.AddCommand(MigrateCmd())
	root.AddCommand(ZonesCmd())
	return root
}
