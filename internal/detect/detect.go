// Package detect classifies pasted terminal output by the tool, framework or
// language that most likely produced it.
//
// Classification counts the matches of every signature in the text and picks
// the label with the most matches. Ties go to the signature declared first.
// Text matching no signature is labelled PlainText.
package detect

import (
	"fmt"
	"sort"
)

// PlainText is the label returned when no signature matches.
const PlainText = "Plain Text"

// Score is the number of matches one signature found in a text.
type Score struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Classifier scores text against an ordered signature table.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	signatures []Signature
}

// New creates a Classifier over the given signatures, in order.
func New(signatures []Signature) *Classifier {
	sigs := make([]Signature, len(signatures))
	copy(sigs, signatures)
	return &Classifier{signatures: sigs}
}

// Default returns a Classifier over the built-in table.
func Default() *Classifier {
	return defaultClassifier
}

var defaultClassifier = New(builtIn)

// WithSignatures returns a new Classifier with extra signatures appended
// after the existing ones. Appended signatures lose ties to built-in ones.
func (c *Classifier) WithSignatures(extra ...Signature) *Classifier {
	sigs := make([]Signature, 0, len(c.signatures)+len(extra))
	sigs = append(sigs, c.signatures...)
	sigs = append(sigs, extra...)
	return &Classifier{signatures: sigs}
}

// Extend compiles label/pattern pairs and appends them in the given order.
func (c *Classifier) Extend(pairs [][2]string) (*Classifier, error) {
	extra := make([]Signature, 0, len(pairs))
	for _, p := range pairs {
		sig, err := NewSignature(p[0], p[1])
		if err != nil {
			return nil, fmt.Errorf("signature %q: %w", p[0], err)
		}
		extra = append(extra, sig)
	}
	return c.WithSignatures(extra...), nil
}

// Labels returns the labels of the table in declaration order.
func (c *Classifier) Labels() []string {
	labels := make([]string, len(c.signatures))
	for i, sig := range c.signatures {
		labels[i] = sig.Label
	}
	return labels
}

// Scores returns every signature with at least one match, sorted by count
// descending. Equal counts keep declaration order.
func (c *Classifier) Scores(text string) []Score {
	var scores []Score
	for _, sig := range c.signatures {
		if n := sig.count(text); n > 0 {
			scores = append(scores, Score{Label: sig.Label, Count: n})
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Count > scores[j].Count
	})

	return scores
}

// Classify returns the best matching label for text, or PlainText.
func (c *Classifier) Classify(text string) string {
	scores := c.Scores(text)
	if len(scores) == 0 {
		return PlainText
	}
	return scores[0].Label
}

// Classify runs the default classifier.
func Classify(text string) string {
	return defaultClassifier.Classify(text)
}

// count returns the number of non-overlapping matches of the signature.
func (s Signature) count(text string) int {
	if s.Pattern == nil || text == "" {
		return 0
	}

	locs := s.Pattern.FindAllStringIndex(text, -1)
	if s.Exclude == nil {
		return len(locs)
	}

	n := 0
	for _, loc := range locs {
		if !s.Exclude.MatchString(text[loc[0]:loc[1]]) {
			n++
		}
	}
	return n
}
