package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	warnTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")) // yellow
	dimStyle       = lipgloss.NewStyle().Faint(true)
)

var warnBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("3")).
	Padding(0, 1)

// SensitiveWarning renders the pre-submission warning for the given kinds.
// It returns "" when kinds is empty.
func SensitiveWarning(kinds []string) string {
	if len(kinds) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(warnTitleStyle.Render("Sensitive data detected"))
	b.WriteString("\n")
	for _, k := range kinds {
		fmt.Fprintf(&b, "  • %s\n", k)
	}
	b.WriteString(dimStyle.Render("It will be redacted before upload."))
	return warnBoxStyle.Render(b.String())
}

// WriteWarning writes SensitiveWarning(kinds) followed by a newline.
func WriteWarning(w io.Writer, kinds []string) error {
	msg := SensitiveWarning(kinds)
	if msg == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, msg)
	return err
}
