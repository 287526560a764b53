// Package redact removes sensitive substrings from terminal output before it
// is stored.
//
// Rules are applied in a fixed order, each to the output of the previous one:
//
//	"contact jane.doe@example.com from 192.168.1.1"
//	  → "contact [REDACTED_EMAIL] from [REDACTED_IP]"
//
// Markers are bracketed upper-case words, which none of the rules can match
// in a way that changes the text, so redacting sanitized text is a no-op.
package redact

// Hit records how many matches one rule replaced.
type Hit struct {
	Rule  string `json:"rule"`
	Count int    `json:"count"`
}

// Result is the outcome of one redaction pass.
type Result struct {
	Text     string `json:"text"`
	Redacted bool   `json:"redacted"`
	Hits     []Hit  `json:"hits,omitempty"`
}

// Redactor applies an ordered rule list. It holds no mutable state and is
// safe for concurrent use.
type Redactor struct {
	rules []Rule
}

// New creates a Redactor over rules, applied in the given order.
// With no rules the built-in set is used.
func New(rules ...Rule) *Redactor {
	if len(rules) == 0 {
		rules = defaultRules
	}
	rs := make([]Rule, len(rules))
	copy(rs, rules)
	return &Redactor{rules: rs}
}

var defaultRedactor = New()

// Default returns the Redactor over the built-in rules.
func Default() *Redactor {
	return defaultRedactor
}

// Redact runs every rule once, in order, over the progressively redacted text.
//
// A rule counts as having fired only if its substitution changed the text.
// Once any rule fires, Result.Redacted stays true for the rest of the pass.
func (r *Redactor) Redact(text string) Result {
	res := Result{Text: text}

	for _, rule := range r.rules {
		replaced, n := applyRule(res.Text, rule)
		if n == 0 {
			continue
		}
		res.Text = replaced
		res.Redacted = true
		res.Hits = append(res.Hits, Hit{Rule: rule.Name, Count: n})
	}

	return res
}

// applyRule substitutes every match of rule and returns the new text with the
// number of matches that actually changed.
func applyRule(text string, rule Rule) (string, int) {
	locs := rule.Regex.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return text, 0
	}

	var (
		out     []byte
		last    int
		changed int
	)
	for _, loc := range locs {
		out = append(out, text[last:loc[0]]...)
		before := len(out)
		out = rule.Regex.ExpandString(out, rule.Replacement, text, loc)
		if string(out[before:]) != text[loc[0]:loc[1]] {
			changed++
		}
		last = loc[1]
	}
	out = append(out, text[last:]...)

	if changed == 0 {
		return text, 0
	}
	return string(out), changed
}

// Redact runs the default rule set over text.
func Redact(text string) Result {
	return defaultRedactor.Redact(text)
}

// Rules returns the rules of r in application order.
func (r *Redactor) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}
