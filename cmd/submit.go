package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/logshare/internal/config"
	"github.com/bimmerbailey/logshare/internal/logs"
	"github.com/bimmerbailey/logshare/internal/output"
	"github.com/bimmerbailey/logshare/internal/recent"
	"github.com/bimmerbailey/logshare/internal/redact"
)

var submitCmd = &cobra.Command{
	Use:   "submit [flags] [file]",
	Short: "Redact output and share it through the server",
	Long: `Redact terminal output locally, classify it and upload it to a logshare
server. Prints the share URL and remembers it in the recent list.

A warning listing the kinds of sensitive data found is printed to stderr
before anything is sent. Reads stdin when no file is given.

Examples:
  go test ./... 2>&1 | logshare submit
  logshare submit --expires 7d build.log
  logshare submit --dry-run build.log`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().String("expires", "", "delete the log after this long (e.g. 24h, 7d)")
	submitCmd.Flags().Bool("dry-run", false, "print what would be uploaded and exit")

	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	expires, _ := cmd.Flags().GetString("expires")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if expires != "" {
		if _, err := config.ParseDuration(expires); err != nil {
			return fmt.Errorf("invalid --expires value: %w", err)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	in, err := readSingleInput(cmd, args)
	if err != nil {
		return err
	}

	if dryRun {
		if err := output.WriteWarning(cmd.ErrOrStderr(), redact.Scan(in.Content).Kinds); err != nil {
			return err
		}
		res := redact.Default().Redact(in.Content)
		return newWriter(cmd, cfg).WriteRedactions([]output.Redaction{{
			Source:   in.Source,
			Text:     res.Text,
			Redacted: res.Redacted,
			Hits:     res.Hits,
		}})
	}

	up, err := share(commandContext(cmd), cmd.ErrOrStderr(), cfg, in.Content, expires)
	if err != nil {
		return err
	}
	return newWriter(cmd, cfg).WriteUploads([]output.Upload{up})
}

// share warns about sensitive data on warn, redacts and classifies content
// locally, uploads the sanitized text and records it in the recent list.
// Classification runs on the original text.
func share(ctx context.Context, warn io.Writer, cfg *config.Config, content, expires string) (output.Upload, error) {
	if err := output.WriteWarning(warn, redact.Scan(content).Kinds); err != nil {
		return output.Upload{}, err
	}

	classifier, err := newClassifier(cfg)
	if err != nil {
		return output.Upload{}, err
	}
	label := classifier.Classify(content)
	res := redact.Default().Redact(content)

	c, err := newClient(cfg)
	if err != nil {
		return output.Upload{}, err
	}

	meta := map[string]any{
		logs.MetaTerminal: terminalName(),
		logs.MetaOS:       runtime.GOOS,
		logs.MetaContext:  label,
	}
	created, err := c.Upload(ctx, res.Text, meta, expires)
	if err != nil {
		return output.Upload{}, err
	}

	up := output.Upload{
		ID:        created.ID,
		URL:       created.URL,
		Context:   label,
		Redacted:  res.Redacted || created.Redacted,
		CreatedAt: time.Now().UTC(),
	}
	if err := remember(cfg, up); err != nil {
		// The upload succeeded; losing the history entry is not fatal.
		fmt.Fprintf(warn, "warning: could not update recent list: %v\n", err)
	}
	return up, nil
}

// remember pushes up onto the persisted recent-uploads ring.
func remember(cfg *config.Config, up output.Upload) error {
	ring, err := recent.Load(cfg.Client.RecentFile, cfg.Client.RecentSize)
	if err != nil {
		return err
	}
	ring.Push(recent.Entry{
		ID:        up.ID,
		URL:       up.URL,
		Context:   up.Context,
		Redacted:  up.Redacted,
		CreatedAt: up.CreatedAt,
	})
	return ring.Save(cfg.Client.RecentFile)
}

// terminalName guesses the terminal program for upload metadata.
func terminalName() string {
	for _, key := range []string{"TERM_PROGRAM", "TERMINAL_EMULATOR", "TERM"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "unknown"
}
