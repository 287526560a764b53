package cmd

import (
	"bytes"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/bimmerbailey/logshare/internal/client"
	"github.com/bimmerbailey/logshare/internal/config"
)

// resetConfig gives each test fresh defaults, a private recent-uploads file
// and uncolored output.
func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	config.SetDefaults(viper.GetViper())
	viper.Set("client.recent_file", filepath.Join(t.TempDir(), "recent.json"))
	viper.Set("color", "never")
}

// startServer runs the serve wiring behind httptest and points the client
// endpoint at it.
func startServer(t *testing.T) *client.Client {
	t.Helper()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	srv, st, err := newAPIServer(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("newAPIServer() error = %v", err)
	}

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		st.Close()
	})
	viper.Set("client.endpoint", ts.URL)

	c, err := client.New(ts.URL, 0)
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}
	return c
}

func writeTempFile(t *testing.T, dir string, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func stdin(s string) *bytes.Buffer {
	return bytes.NewBufferString(s)
}
