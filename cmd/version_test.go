package cmd

import (
	"bytes"
	"fmt"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
)

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{Use: "version"}
	cmd.SetOut(&out)

	versionCmd.Run(cmd, nil)

	want := fmt.Sprintf("logshare dev (commit: none, built: unknown, %s %s/%s)\n",
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"classify", "explain", "list", "mcp", "recent", "redact", "scan", "serve", "stats", "submit", "version", "watch"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("command %q is not registered", name)
		}
	}
}
