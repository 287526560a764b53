package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/logshare/internal/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats [flags]",
	Short: "Show how many shared logs came from each context",
	Long: `Display the number of logs on the server per detected context, most
common first.

Examples:
  logshare stats
  logshare stats --format json
  logshare stats --endpoint https://logs.example.com`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := newClient(cfg)
	if err != nil {
		return err
	}

	stats, err := c.ContextStats(commandContext(cmd))
	if err != nil {
		return err
	}

	if len(stats) == 0 && output.ParseFormat(cfg.Format) == output.FormatText {
		fmt.Fprintln(cmd.OutOrStdout(), "No logs shared yet.")
		return nil
	}
	return newWriter(cmd, cfg).WriteContextStats(stats)
}
