package highlight

import (
	"github.com/alecthomas/chroma/v2"
)

// httpLexer accents request lines of dev-server and access logs: methods,
// versions, paths, queries, header names, addresses, status classes,
// timings and metric labels. Everything else is plain text.
var httpLexer = chroma.MustNewLexer(
	&chroma.Config{
		Name:      "HTTP log",
		Aliases:   []string{"httplog"},
		MimeTypes: []string{"text/x-http-log"},
	},
	func() chroma.Rules {
		return chroma.Rules{
			"root": {
				{Pattern: `^[A-Z][A-Za-z-]+:`, Type: chroma.NameAttribute},
				{Pattern: `\b(?:GET|POST|PUT|DELETE|PATCH|HEAD|OPTIONS|CONNECT|TRACE)\b`, Type: chroma.KeywordReserved},
				{Pattern: `HTTP/[0-9.]+`, Type: chroma.KeywordType},
				{Pattern: `/[^\s?]*`, Type: chroma.NameTag},
				{Pattern: `\?\S+`, Type: chroma.NameAttribute},
				{Pattern: `\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`, Type: chroma.NameConstant},
				{Pattern: `\d+(?:\.\d+)?(?:ms|μs|s)\b`, Type: chroma.LiteralNumberFloat},
				{Pattern: `\b1\d{2}\b`, Type: chroma.GenericOutput},
				{Pattern: `\b2\d{2}\b`, Type: chroma.GenericInserted},
				{Pattern: `\b3\d{2}\b`, Type: chroma.GenericSubheading},
				{Pattern: `\b[45]\d{2}\b`, Type: chroma.GenericError},
				{Pattern: `(?i)\b(?:compile|render|info|debug|warn|error):`, Type: chroma.NameLabel},
				{Pattern: `\[REDACTED_[A-Z_]+\]`, Type: chroma.CommentSpecial},
				{Pattern: `[A-Za-z_][\w.-]*`, Type: chroma.Text},
				{Pattern: `\d+`, Type: chroma.Text},
				{Pattern: `\s+`, Type: chroma.TextWhitespace},
				{Pattern: `.`, Type: chroma.Text},
			},
		}
	},
)
