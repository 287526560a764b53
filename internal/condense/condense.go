// Package condense shortens long terminal output so it fits a model's
// context window.
//
// Lines of the same shape are collapsed into one "[xN] pattern" line with
// Drain clustering, keeping the order in which each shape first appeared.
// If that is still too long the middle is dropped, keeping more of the end
// of the output, where failures usually are.
package condense

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// charsPerToken approximates English text and code.
const charsPerToken = 4

// EstimateTokens returns a rough token count for text.
func EstimateTokens(text string) int {
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// Result describes one Condense call.
type Result struct {
	Text      string
	Condensed bool
	Lines     int // non-blank input lines
	Templates int // distinct line shapes; zero when not condensed
	Omitted   int // condensed lines dropped to meet the budget
}

// Condense returns text unchanged when it fits in tokenLimit, or when
// tokenLimit is not positive. Otherwise it returns a condensed version
// whose EstimateTokens is at most tokenLimit.
func Condense(text string, tokenLimit int) Result {
	if tokenLimit <= 0 || EstimateTokens(text) <= tokenLimit {
		return Result{Text: text, Lines: countLines(text)}
	}

	d := NewDrain(0, 0, 0)
	lines := 0
	for i, line := range strings.Split(text, "\n") {
		if d.Add(i, line) != nil {
			lines++
		}
	}

	// d.templates is in first-seen order.
	rendered := make([]string, 0, d.Len())
	for _, t := range d.templates {
		rendered = append(rendered, render(t))
	}

	kept, omitted := fit(rendered, tokenLimit*charsPerToken)
	return Result{
		Text:      strings.Join(kept, "\n"),
		Condensed: true,
		Lines:     lines,
		Templates: d.Len(),
		Omitted:   omitted,
	}
}

func render(t *Template) string {
	if t.Count == 1 {
		return t.Example
	}
	return fmt.Sprintf("[x%d] %s", t.Count, t.Pattern)
}

// fit keeps as many leading and trailing lines as fit in budget bytes,
// giving the tail three quarters of the room, and replaces the rest with
// one marker line.
func fit(lines []string, budget int) ([]string, int) {
	total := 0
	for _, l := range lines {
		total += len(l) + 1
	}
	if total-1 <= budget {
		return lines, 0
	}

	marker := func(n int) string { return fmt.Sprintf("... %d lines omitted ...", n) }
	avail := max(budget-len(marker(len(lines)))-1, 0)

	var head []string
	used := 0
	for _, l := range lines {
		if used+len(l)+1 > avail/4 {
			break
		}
		head = append(head, l)
		used += len(l) + 1
	}

	var tail []string // newest first
	for i := len(lines) - 1; i >= len(head); i-- {
		l := lines[i]
		if used+len(l)+1 > avail {
			break
		}
		tail = append(tail, l)
		used += len(l) + 1
	}

	omitted := len(lines) - len(head) - len(tail)
	if len(tail) == 0 && omitted > 0 {
		// The last line alone is over budget; keep its end.
		if cut := lastBytes(lines[len(lines)-1], avail-used-1); cut != "" {
			tail = append(tail, cut)
			omitted--
		}
	}

	out := make([]string, 0, len(head)+len(tail)+1)
	out = append(out, head...)
	if omitted > 0 {
		out = append(out, marker(omitted))
	}
	for i := len(tail) - 1; i >= 0; i-- {
		out = append(out, tail[i])
	}
	return out, omitted
}

// lastBytes returns at most n trailing bytes of s without splitting a rune.
func lastBytes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	cut := s[len(s)-n:]
	for len(cut) > 0 && !utf8.RuneStart(cut[0]) {
		cut = cut[1:]
	}
	return cut
}

func countLines(text string) int {
	n := 0
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}
	return n
}
