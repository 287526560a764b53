package cmd

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/logshare/internal/output"
)

func newScanTestCmd(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{Use: "scan"}
	cmd.SetOut(out)
	cmd.Flags().Bool("remote", false, "scan on the server")
	cmd.Flags().Bool("kinds", false, "list kinds")
	return cmd
}

func TestScanLocal(t *testing.T) {
	resetConfig(t)

	var out bytes.Buffer
	cmd := newScanTestCmd(&out)
	cmd.SetIn(stdin("password: hunter2 and jane@example.com"))

	if err := runScan(cmd, nil); err != nil {
		t.Fatalf("runScan() error = %v", err)
	}
	want := "stdin: Passwords, Email Addresses\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestScanCleanFile(t *testing.T) {
	resetConfig(t)

	file := writeTempFile(t, t.TempDir(), "ok.log", []string{"all good"})

	var out bytes.Buffer
	cmd := newScanTestCmd(&out)

	if err := runScan(cmd, []string{file}); err != nil {
		t.Fatalf("runScan() error = %v", err)
	}
	if !strings.Contains(out.String(), "no sensitive data found") {
		t.Errorf("expected clean report, got:\n%s", out.String())
	}
}

func TestScanRemote(t *testing.T) {
	resetConfig(t)
	viper.Set("format", "json")
	startServer(t)

	var out bytes.Buffer
	cmd := newScanTestCmd(&out)
	cmd.SetIn(stdin("password: hunter2 and jane@example.com"))
	if err := cmd.Flags().Set("remote", "true"); err != nil {
		t.Fatal(err)
	}

	if err := runScan(cmd, nil); err != nil {
		t.Fatalf("runScan() error = %v", err)
	}

	var items []output.ScanResult
	if err := json.Unmarshal(out.Bytes(), &items); err != nil {
		t.Fatalf("failed to unmarshal JSON: %v\noutput: %s", err, out.String())
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	want := []string{"Passwords", "Email Addresses"}
	if !reflect.DeepEqual(items[0].Kinds, want) {
		t.Errorf("kinds = %v, want %v", items[0].Kinds, want)
	}
}

func TestScanRemoteUnreachable(t *testing.T) {
	resetConfig(t)
	viper.Set("client.endpoint", "http://127.0.0.1:1")
	viper.Set("client.timeout", "2s")

	var out bytes.Buffer
	cmd := newScanTestCmd(&out)
	cmd.SetIn(stdin("anything"))
	if err := cmd.Flags().Set("remote", "true"); err != nil {
		t.Fatal(err)
	}

	if err := runScan(cmd, nil); err == nil {
		t.Error("expected error when the server is unreachable")
	}
}

func TestScanKinds(t *testing.T) {
	resetConfig(t)

	var out bytes.Buffer
	cmd := newScanTestCmd(&out)
	cmd.Flags().Set("kinds", "true")

	if err := runScan(cmd, nil); err != nil {
		t.Fatalf("runScan() error = %v", err)
	}
	want := "API Keys\nTokens\nJWT\nPasswords\nEmail Addresses\nSSH Keys\nDatabase URLs\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}
