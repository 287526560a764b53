package redact

import (
	"regexp"
)

// Findings lists the categories of sensitive data present in a text.
type Findings struct {
	Present bool     `json:"present"`
	Kinds   []string `json:"kinds"`
}

type check struct {
	kind  string
	regex *regexp.Regexp
}

// checks are presence tests only. They are looser than the redaction rules
// and are used for warnings before anything is submitted.
var checks = []check{
	{"API Keys", regexp.MustCompile(`(?i)\b(?:api[_-]?key|apikey|api[_-]?secret)`)},
	{"Tokens", regexp.MustCompile(`(?i)\baccess[_-]?token|bearer\s+[a-z0-9]`)},
	{"JWT", regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ`)},
	{"Passwords", regexp.MustCompile(`(?i)(?:password|passwd|pwd)[=:\s]`)},
	{"Email Addresses", regexp.MustCompile(`@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)},
	{"SSH Keys", regexp.MustCompile(`-----BEGIN.*PRIVATE KEY-----`)},
	{"Database URLs", regexp.MustCompile(`(?i)(?:postgres|mysql|mongodb)://`)},
}

// Kinds returns every category Scan can report, in report order.
func Kinds() []string {
	kinds := make([]string, len(checks))
	for i, c := range checks {
		kinds[i] = c.kind
	}
	return kinds
}

// Scan reports which categories of sensitive data appear in text without
// modifying it.
func Scan(text string) Findings {
	f := Findings{Kinds: []string{}}
	for _, c := range checks {
		if c.regex.MatchString(text) {
			f.Kinds = append(f.Kinds, c.kind)
		}
	}
	f.Present = len(f.Kinds) > 0
	return f
}
