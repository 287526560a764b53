package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/logshare/internal/config"
	"github.com/bimmerbailey/logshare/internal/logs"
)

var listCmd = &cobra.Command{
	Use:   "list [flags]",
	Short: "List logs shared on the server",
	Long: `List logs stored on a logshare server, newest first.

Examples:
  logshare list
  logshare list --context Docker --limit 50
  logshare list --search "connection refused" --since 24h`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().Int("page", 1, "page number")
	listCmd.Flags().Int("limit", logs.DefaultLimit, fmt.Sprintf("logs per page (1-%d)", logs.MaxLimit))
	listCmd.Flags().String("context", "", "only logs classified with this context (e.g. Docker)")
	listCmd.Flags().String("search", "", "only logs containing this text")
	listCmd.Flags().String("since", "", "only logs created after this time (relative like '24h' or absolute)")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")
	contextFilter, _ := cmd.Flags().GetString("context")
	search, _ := cmd.Flags().GetString("search")
	sinceStr, _ := cmd.Flags().GetString("since")

	if page < 1 {
		return fmt.Errorf("invalid --page value: must be greater than 0")
	}
	if limit < 1 || limit > logs.MaxLimit {
		return fmt.Errorf("invalid --limit value: must be between 1 and %d", logs.MaxLimit)
	}

	params := logs.ListParams{
		Page:    page,
		Limit:   limit,
		Context: contextFilter,
		Search:  search,
	}
	if sinceStr != "" {
		since, err := config.ParseTimeRef(sinceStr)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		params.Since = since
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, err := newClient(cfg)
	if err != nil {
		return err
	}

	res, err := c.List(commandContext(cmd), params)
	if err != nil {
		return err
	}
	return newWriter(cmd, cfg).WriteLogList(res)
}
