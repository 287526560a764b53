package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/logshare/internal/config"
	"github.com/bimmerbailey/logshare/internal/output"
	"github.com/bimmerbailey/logshare/internal/tail"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <file>",
	Short: "Follow a file and print it with secrets redacted",
	Long: `Watch a file in real-time, similar to 'tail -f', printing every line
with sensitive data replaced by [REDACTED_*] markers.

With --upload the lines shown during the session are shared through the
server when the watch ends (Ctrl-C, rotation or --no-follow).

Examples:
  logshare watch /var/log/app.log
  logshare watch --pattern "ERROR|WARN" app.log
  logshare watch --upload --expires 24h app.log
  logshare watch --follow-rotate /var/log/app.log`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringP("pattern", "p", "", "only show lines matching regex pattern (matched after redaction)")
	watchCmd.Flags().IntP("lines", "n", 10, "number of initial lines to show")
	watchCmd.Flags().Bool("no-follow", false, "print last N lines and exit (don't follow)")
	watchCmd.Flags().Bool("follow-rotate", false, "follow through log rotations (continue when file is renamed/removed)")
	watchCmd.Flags().Bool("upload", false, "share the watched lines when the watch ends")
	watchCmd.Flags().String("expires", "", "with --upload, delete the log after this long (e.g. 24h, 7d)")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	patternStr, _ := cmd.Flags().GetString("pattern")
	lines, _ := cmd.Flags().GetInt("lines")
	noFollow, _ := cmd.Flags().GetBool("no-follow")
	followRotate, _ := cmd.Flags().GetBool("follow-rotate")
	upload, _ := cmd.Flags().GetBool("upload")
	expires, _ := cmd.Flags().GetString("expires")

	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file does not exist: %s", filePath)
	}

	var pattern *regexp.Regexp
	if patternStr != "" {
		var err error
		pattern, err = regexp.Compile(patternStr)
		if err != nil {
			return fmt.Errorf("invalid pattern: %w", err)
		}
	}
	if expires != "" {
		if _, err := config.ParseDuration(expires); err != nil {
			return fmt.Errorf("invalid --expires value: %w", err)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	colorize := output.ShouldColorize(output.ParseColorMode(cfg.Color), out)

	tailer := tail.New(tail.Options{
		FilePath:     filePath,
		Lines:        lines,
		Follow:       !noFollow,
		FollowRotate: followRotate,
		Pattern:      pattern,
		Capture:      upload,
		Logger:       newLogger(cfg),
		OutputFunc: func(l tail.Line) error {
			_, err := fmt.Fprintln(out, output.FormatLine(l.Text, colorize))
			return err
		},
	})

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tailer.Run(ctx); err != nil && !errors.Is(err, tail.ErrRotated) {
		return err
	}

	if !upload {
		return nil
	}
	captured := tailer.Captured()
	if strings.TrimSpace(captured) == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "Nothing captured, skipping upload.")
		return nil
	}

	// The watch context is cancelled by now; the upload gets a fresh one.
	up, err := share(context.WithoutCancel(ctx), cmd.ErrOrStderr(), cfg, captured, expires)
	if err != nil {
		return err
	}
	return newWriter(cmd, cfg).WriteUploads([]output.Upload{up})
}
