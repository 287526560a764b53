package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/logshare/internal/output"
	"github.com/bimmerbailey/logshare/internal/redact"
)

var redactCmd = &cobra.Command{
	Use:   "redact [flags] [file...]",
	Short: "Strip secrets and personal data from output",
	Long: `Replace API keys, tokens, emails, home paths, IP addresses, card
numbers, private keys, credentials in database URLs and passwords with
[REDACTED_*] markers. Reads stdin when no file is given.

Examples:
  cat deploy.log | logshare redact
  logshare redact --format table deploy.log
  logshare redact --check deploy.log`,
	RunE: runRedact,
}

func init() {
	redactCmd.Flags().Bool("check", false, "exit with an error if anything would be redacted")

	rootCmd.AddCommand(redactCmd)
}

func runRedact(cmd *cobra.Command, args []string) error {
	check, _ := cmd.Flags().GetBool("check")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	inputs, err := readInputs(cmd, args)
	if err != nil {
		return err
	}

	redactor := redact.Default()
	items := make([]output.Redaction, 0, len(inputs))
	dirty := 0
	for _, in := range inputs {
		res := redactor.Redact(in.Content)
		if res.Redacted {
			dirty++
		}
		items = append(items, output.Redaction{
			Source:   in.Source,
			Text:     res.Text,
			Redacted: res.Redacted,
			Hits:     res.Hits,
		})
	}

	if err := newWriter(cmd, cfg).WriteRedactions(items); err != nil {
		return err
	}
	if check && dirty > 0 {
		return fmt.Errorf("%d of %d inputs contain sensitive data", dirty, len(inputs))
	}
	return nil
}
