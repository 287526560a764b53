// Package highlight renders sanitized log content as per-line HTML with
// syntax highlighting chosen from the log's detected context.
package highlight

import (
	"fmt"
	"html"
	"html/template"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/bimmerbailey/logshare/internal/detect"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "github"

// Line is one highlighted line of a log, numbered from 1.
type Line struct {
	Number int
	HTML   template.HTML
}

// Highlighter turns log text into class-annotated HTML lines. It is safe for
// concurrent use.
type Highlighter struct {
	style *chroma.Style
}

// New creates a Highlighter for the named chroma style. Unknown names fall
// back to chroma's default style.
func New(styleName string) *Highlighter {
	if styleName == "" {
		styleName = DefaultStyle
	}
	return &Highlighter{style: styles.Get(styleName)}
}

// Lexer returns the lexer for a detected context label.
func Lexer(label string) chroma.Lexer {
	if label == "HTTP" {
		return httpLexer
	}
	lexer := lexers.Get(detect.Language(label))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// Lines highlights source for the given context label. It always returns
// exactly one Line per "\n"-separated line of source.
func (h *Highlighter) Lines(source, label string) ([]Line, error) {
	raw := strings.Split(source, "\n")

	it, err := Lexer(label).Tokenise(nil, source)
	if err != nil {
		return plainLines(raw), fmt.Errorf("tokenising %s log: %w", label, err)
	}

	tokenLines := chroma.SplitTokensIntoLines(it.Tokens())
	out := make([]Line, len(raw))
	for i := range raw {
		var b strings.Builder
		if i < len(tokenLines) {
			for _, tok := range tokenLines[i] {
				writeToken(&b, tok)
			}
		}
		out[i] = Line{Number: i + 1, HTML: template.HTML(b.String())}
	}
	return out, nil
}

// CSS writes the stylesheet for the classes Lines emits. Rules are scoped
// under the "chroma" class.
func (h *Highlighter) CSS(w io.Writer) error {
	return chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(w, h.style)
}

func writeToken(b *strings.Builder, tok chroma.Token) {
	value := strings.TrimSuffix(tok.Value, "\n")
	if value == "" {
		return
	}
	escaped := html.EscapeString(value)

	class := tokenClass(tok.Type)
	if class == "" {
		b.WriteString(escaped)
		return
	}
	fmt.Fprintf(b, `<span class="%s">%s</span>`, class, escaped)
}

// tokenClass returns the short CSS class chroma uses for t, walking up to
// the token's category when the exact type has none.
func tokenClass(t chroma.TokenType) string {
	for i := 0; i < 3; i++ {
		if class, ok := chroma.StandardTypes[t]; ok && class != "" {
			return class
		}
		t = t.Parent()
	}
	return ""
}

func plainLines(raw []string) []Line {
	out := make([]Line, len(raw))
	for i, l := range raw {
		out[i] = Line{Number: i + 1, HTML: template.HTML(html.EscapeString(l))}
	}
	return out
}
