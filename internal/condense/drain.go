package condense

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const wildcard = "<*>"

// Drain groups lines of the same shape into templates using the Drain
// algorithm: a fixed-depth parse tree keyed on token count and the leading
// tokens, with a similarity check at the leaves.
//
// Tokens that look like values (numbers, hex, IPs, UUIDs, timestamps, long
// paths) become wildcards, so "retry 1 of 5" and "retry 2 of 5" share a
// template. Redaction markers are ordinary tokens and cluster like any
// constant word.
//
// Drain is not safe for concurrent use.
type Drain struct {
	root         *node
	depth        int
	simThreshold float64
	maxChildren  int
	templates    []*Template
}

type node struct {
	children  map[string]*node
	templates []*Template
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// Template is one line shape and the lines that matched it.
type Template struct {
	ID      int
	Pattern string
	Tokens  []string
	Count   int
	First   int    // index of the first line added with this shape
	Example string // the first line added with this shape
}

// Defaults for NewDrain.
const (
	DefaultDepth        = 4
	DefaultSimThreshold = 0.5
	DefaultMaxChildren  = 100
)

// NewDrain creates an extractor. Non-positive arguments take the defaults.
func NewDrain(depth int, simThreshold float64, maxChildren int) *Drain {
	if depth <= 0 {
		depth = DefaultDepth
	}
	if simThreshold <= 0 || simThreshold > 1 {
		simThreshold = DefaultSimThreshold
	}
	if maxChildren <= 0 {
		maxChildren = DefaultMaxChildren
	}
	return &Drain{
		root:         newNode(),
		depth:        depth,
		simThreshold: simThreshold,
		maxChildren:  maxChildren,
	}
}

// Add files line under a template, creating one if nothing similar exists,
// and returns it. Blank lines return nil.
func (d *Drain) Add(index int, line string) *Template {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil
	}

	t := d.match(tokens)
	if t == nil {
		t = d.create(index, line, tokens)
	}
	t.Count++
	return t
}

// Templates returns every template, most frequent first. Equal counts keep
// first-seen order.
func (d *Drain) Templates() []*Template {
	out := make([]*Template, len(d.templates))
	copy(out, d.templates)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// Len returns the number of templates.
func (d *Drain) Len() int {
	return len(d.templates)
}

// leaf walks the tree for tokens, creating nodes on the way.
func (d *Drain) leaf(tokens []string) *node {
	lengthKey := fmt.Sprintf("len_%d", len(tokens))
	cur, ok := d.root.children[lengthKey]
	if !ok {
		cur = newNode()
		d.root.children[lengthKey] = cur
	}

	for i := 0; i < len(tokens) && i < d.depth-1; i++ {
		key := tokens[i]
		if isVariable(key) {
			key = wildcard
		}

		next, ok := cur.children[key]
		if !ok {
			if len(cur.children) >= d.maxChildren {
				key = wildcard
				next, ok = cur.children[key]
			}
			if !ok {
				next = newNode()
				cur.children[key] = next
			}
		}
		cur = next
	}
	return cur
}

func (d *Drain) match(tokens []string) *Template {
	for _, t := range d.leaf(tokens).templates {
		if similarity(tokens, t.Tokens) >= d.simThreshold {
			t.Tokens = merge(t.Tokens, tokens)
			t.Pattern = strings.Join(t.Tokens, " ")
			return t
		}
	}
	return nil
}

func (d *Drain) create(index int, line string, tokens []string) *Template {
	tt := make([]string, len(tokens))
	for i, tok := range tokens {
		if isVariable(tok) {
			tt[i] = wildcard
		} else {
			tt[i] = tok
		}
	}

	t := &Template{
		ID:      len(d.templates) + 1,
		Pattern: strings.Join(tt, " "),
		Tokens:  tt,
		First:   index,
		Example: line,
	}
	d.templates = append(d.templates, t)

	leaf := d.leaf(tokens)
	leaf.templates = append(leaf.templates, t)
	return t
}

var variablePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^-?\d+(\.\d+)?$`),
	regexp.MustCompile(`^0[xX][0-9a-fA-F]+$`),
	regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`),
	regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`),
	regexp.MustCompile(`^\d{2}:\d{2}:\d{2}(\.\d+)?$`),
}

// isVariable reports whether a token is likely a value rather than part of
// the line's shape.
func isVariable(token string) bool {
	for _, re := range variablePatterns {
		if re.MatchString(token) {
			return true
		}
	}
	return strings.HasPrefix(token, "/") && len(token) > 20
}

// similarity is the share of positions where the sequences agree, over the
// longer length. Wildcards agree with anything.
func similarity(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	matches := 0
	for i := 0; i < min(len(a), len(b)); i++ {
		if a[i] == wildcard || b[i] == wildcard || a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(max(len(a), len(b)))
}

// merge turns every position where the sequences differ into a wildcard.
func merge(existing, tokens []string) []string {
	n := max(len(existing), len(tokens))
	out := make([]string, n)
	for i := 0; i < n; i++ {
		switch {
		case i >= len(existing) || i >= len(tokens):
			out[i] = wildcard
		case existing[i] == wildcard || existing[i] != tokens[i]:
			out[i] = wildcard
		default:
			out[i] = existing[i]
		}
	}
	return out
}
