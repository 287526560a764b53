package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/logshare/internal/output"
	"github.com/bimmerbailey/logshare/internal/redact"
)

var scanCmd = &cobra.Command{
	Use:   "scan [flags] [file...]",
	Short: "List the kinds of sensitive data in output",
	Long: `Report which kinds of sensitive data (API keys, tokens, JWTs, passwords,
email addresses, SSH keys, database URLs) appear in some output without
changing it. Reads stdin when no file is given.

Examples:
  logshare scan build.log
  kubectl logs pod/api | logshare scan --format json
  logshare scan --remote build.log
  logshare scan --kinds`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().Bool("remote", false, "ask the server instead of scanning locally")
	scanCmd.Flags().Bool("kinds", false, "list the kinds scan can report and exit")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	remote, _ := cmd.Flags().GetBool("remote")
	if listKinds, _ := cmd.Flags().GetBool("kinds"); listKinds {
		if len(args) > 0 {
			return fmt.Errorf("--kinds takes no arguments")
		}
		for _, kind := range redact.Kinds() {
			fmt.Fprintln(cmd.OutOrStdout(), kind)
		}
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	inputs, err := readInputs(cmd, args)
	if err != nil {
		return err
	}

	scan := func(_ context.Context, content string) (redact.Findings, error) {
		return redact.Scan(content), nil
	}
	if remote {
		c, err := newClient(cfg)
		if err != nil {
			return err
		}
		scan = c.Scan
	}

	ctx := commandContext(cmd)

	items := make([]output.ScanResult, 0, len(inputs))
	for _, in := range inputs {
		f, err := scan(ctx, in.Content)
		if err != nil {
			return err
		}
		items = append(items, output.ScanResult{Source: in.Source, Kinds: f.Kinds})
	}

	return newWriter(cmd, cfg).WriteScanResults(items)
}
