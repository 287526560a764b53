package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/logshare/internal/api"
	"github.com/bimmerbailey/logshare/internal/config"
	"github.com/bimmerbailey/logshare/internal/logs"
	"github.com/bimmerbailey/logshare/internal/metrics"
	"github.com/bimmerbailey/logshare/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve [flags]",
	Short: "Run the log sharing server",
	Long: `Run the HTTP API and log viewer. Logs are classified and redacted on
creation; only the sanitized text is stored.

Without --data-file logs live in memory and are lost on exit.

Examples:
  logshare serve
  logshare serve --addr :9000 --data-file /var/lib/logshare/logs.json
  LOGSHARE_SERVER_BASE_URL=https://logs.example.com logshare serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().String("data-file", "", "persist logs to this JSON file")
	serveCmd.Flags().String("base-url", "", "public URL used in share links")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.data_file", serveCmd.Flags().Lookup("data-file"))
	_ = viper.BindPFlag("server.base_url", serveCmd.Flags().Lookup("base-url"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	srv, st, err := newAPIServer(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("closing store", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx, cfg.Server.Addr)
}

// newAPIServer wires the store, metrics and service behind an api.Server.
// The caller closes the returned store.
func newAPIServer(cfg *config.Config, logger *slog.Logger) (*api.Server, logs.Store, error) {
	var st logs.Store = store.NewMemoryStore()
	if cfg.Server.DataFile != "" {
		fs, err := store.OpenFileStore(cfg.Server.DataFile, logger)
		if err != nil {
			return nil, nil, err
		}
		st = fs
	}

	classifier, err := newClassifier(cfg)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	m := metrics.New()
	svc := logs.NewService(st,
		logs.WithClassifier(classifier),
		logs.WithRecorder(m),
		logs.WithLogger(logger),
		logs.WithDefaultExpiry(config.Duration(cfg.Server.DefaultExpiry, 0)),
	)

	srv, err := api.New(svc, logger, api.Options{
		BaseURL:         cfg.Server.BaseURL,
		MaxContentBytes: cfg.Server.MaxContentBytes,
		SweepInterval:   config.Duration(cfg.Server.SweepInterval, 10*time.Minute),
		Metrics:         m,
	})
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("creating server: %w", err)
	}
	return srv, st, nil
}
