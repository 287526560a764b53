package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/logshare/internal/output"
	"github.com/bimmerbailey/logshare/internal/recent"
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List logs you recently shared",
	Long: `List the logs shared from this machine, newest first. Only the last
client.recent_size uploads are kept (10 by default).

Examples:
  logshare recent
  logshare recent --format json
  logshare recent --clear`,
	Args: cobra.NoArgs,
	RunE: runRecent,
}

func init() {
	recentCmd.Flags().Bool("clear", false, "forget all recent uploads")

	rootCmd.AddCommand(recentCmd)
}

func runRecent(cmd *cobra.Command, args []string) error {
	clearAll, _ := cmd.Flags().GetBool("clear")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ring, err := recent.Load(cfg.Client.RecentFile, cfg.Client.RecentSize)
	if err != nil {
		return err
	}

	if clearAll {
		ring.Clear()
		if err := ring.Save(cfg.Client.RecentFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Recent uploads cleared.")
		return nil
	}

	entries := ring.All()
	format := output.ParseFormat(cfg.Format)
	if len(entries) == 0 && (format == output.FormatText || format == output.FormatTable) {
		fmt.Fprintln(cmd.OutOrStdout(), "No recent uploads.")
		return nil
	}

	items := make([]output.Upload, 0, len(entries))
	for _, e := range entries {
		items = append(items, output.Upload{
			ID:        e.ID,
			URL:       e.URL,
			Context:   e.Context,
			Redacted:  e.Redacted,
			CreatedAt: e.CreatedAt,
		})
	}
	return newWriter(cmd, cfg).WriteUploads(items)
}
