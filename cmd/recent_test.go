package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/logshare/internal/output"
)

func newRecentTestCmd(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{Use: "recent"}
	cmd.SetOut(out)
	cmd.Flags().Bool("clear", false, "forget all")
	return cmd
}

func TestRecentEmpty(t *testing.T) {
	resetConfig(t)

	var out bytes.Buffer
	if err := runRecent(newRecentTestCmd(&out), nil); err != nil {
		t.Fatalf("runRecent() error = %v", err)
	}
	if strings.TrimSpace(out.String()) != "No recent uploads." {
		t.Errorf("output = %q", out.String())
	}
}

func TestRecentListsNewestFirst(t *testing.T) {
	resetConfig(t)
	viper.Set("format", "json")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	base := time.Date(2025, 1, 26, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		up := output.Upload{ID: id, URL: "http://localhost:8080/log/" + id, Context: "Docker", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := remember(cfg, up); err != nil {
			t.Fatalf("remember() error = %v", err)
		}
	}

	var out bytes.Buffer
	if err := runRecent(newRecentTestCmd(&out), nil); err != nil {
		t.Fatalf("runRecent() error = %v", err)
	}

	var ups []output.Upload
	if err := json.Unmarshal(out.Bytes(), &ups); err != nil {
		t.Fatalf("failed to unmarshal JSON: %v\noutput: %s", err, out.String())
	}
	if len(ups) != 3 {
		t.Fatalf("got %d uploads, want 3", len(ups))
	}
	if ups[0].ID != "third" || ups[2].ID != "first" {
		t.Errorf("order = %s, %s, %s; want newest first", ups[0].ID, ups[1].ID, ups[2].ID)
	}
}

func TestRecentRespectsSize(t *testing.T) {
	resetConfig(t)
	viper.Set("client.recent_size", 2)
	viper.Set("format", "json")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"a", "b", "c"} {
		if err := remember(cfg, output.Upload{ID: id}); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	if err := runRecent(newRecentTestCmd(&out), nil); err != nil {
		t.Fatalf("runRecent() error = %v", err)
	}
	var ups []output.Upload
	if err := json.Unmarshal(out.Bytes(), &ups); err != nil {
		t.Fatal(err)
	}
	if len(ups) != 2 || ups[0].ID != "c" || ups[1].ID != "b" {
		t.Errorf("uploads = %+v, want c then b", ups)
	}
}

func TestRecentClear(t *testing.T) {
	resetConfig(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if err := remember(cfg, output.Upload{ID: "x"}); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := newRecentTestCmd(&out)
	if err := cmd.Flags().Set("clear", "true"); err != nil {
		t.Fatal(err)
	}
	if err := runRecent(cmd, nil); err != nil {
		t.Fatalf("runRecent(--clear) error = %v", err)
	}
	if !strings.Contains(out.String(), "cleared") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	if err := runRecent(newRecentTestCmd(&out), nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != "No recent uploads." {
		t.Errorf("after clear output = %q", out.String())
	}
}
