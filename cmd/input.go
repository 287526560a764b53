package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/logshare/internal/client"
	"github.com/bimmerbailey/logshare/internal/config"
	"github.com/bimmerbailey/logshare/internal/detect"
	"github.com/bimmerbailey/logshare/internal/output"
)

// errNoInput is returned when a command that reads text gets neither a file
// nor piped stdin.
var errNoInput = errors.New("no input: pass a file or pipe text on stdin")

// input is one piece of text read from a file or stdin.
type input struct {
	Source  string
	Content string
}

// readInputs reads every file named in args, expanding globs. With no args,
// or "-", it reads stdin, refusing an interactive terminal.
func readInputs(cmd *cobra.Command, args []string) ([]input, error) {
	if len(args) == 0 {
		args = []string{config.Stdin}
	}

	files, err := config.ExpandGlobs(args)
	if err != nil {
		return nil, err
	}

	inputs := make([]input, 0, len(files))
	for _, f := range files {
		if f == config.Stdin {
			content, err := readStdin(cmd)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, input{Source: "stdin", Content: content})
			continue
		}

		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		inputs = append(inputs, input{Source: f, Content: string(data)})
	}
	return inputs, nil
}

func readStdin(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && output.IsTerminal(f) {
		return "", errNoInput
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

// readSingleInput is readInputs for commands that take at most one source.
func readSingleInput(cmd *cobra.Command, args []string) (input, error) {
	inputs, err := readInputs(cmd, args)
	if err != nil {
		return input{}, err
	}
	if len(inputs) != 1 {
		return input{}, fmt.Errorf("expected one input, got %d", len(inputs))
	}
	if strings.TrimSpace(inputs[0].Content) == "" {
		return input{}, fmt.Errorf("%s is empty", inputs[0].Source)
	}
	return inputs[0], nil
}

// loadConfig decodes and validates the global viper configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// newLogger builds the stderr logger from log_level, with --verbose forcing
// debug.
func newLogger(cfg *config.Config) *slog.Logger {
	level := config.ParseLevel(cfg.LogLevel)
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newClassifier returns the built-in classifier extended with the
// configured signatures.
func newClassifier(cfg *config.Config) (*detect.Classifier, error) {
	c, err := detect.Default().Extend(cfg.SignaturePairs())
	if err != nil {
		return nil, fmt.Errorf("detect.signatures: %w", err)
	}
	return c, nil
}

func newClient(cfg *config.Config) (*client.Client, error) {
	return client.New(cfg.Client.Endpoint, config.Duration(cfg.Client.Timeout, 30*time.Second))
}

func newWriter(cmd *cobra.Command, cfg *config.Config) *output.Writer {
	return output.New(cmd.OutOrStdout(), output.ParseFormat(cfg.Format)).
		WithColor(output.ParseColorMode(cfg.Color))
}

// commandContext returns the command's context, or Background when the
// command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
