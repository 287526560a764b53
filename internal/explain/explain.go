// Package explain asks a local LLM to explain a piece of terminal output.
//
// The text is always redacted before it leaves the process: the model sees
// the same sanitized content a shared log would contain, plus the context
// label the classifier picked for the original.
package explain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/bimmerbailey/logshare/internal/condense"
	"github.com/bimmerbailey/logshare/internal/detect"
	"github.com/bimmerbailey/logshare/internal/redact"
)

// Streamer is the part of an LLM provider Explainer needs.
type Streamer interface {
	ChatStream(ctx context.Context, messages []Message, opts *ChatOptions) (<-chan StreamEvent, error)
}

// Result describes one explanation.
type Result struct {
	Context      string
	Redacted     bool
	Condensed    bool
	Model        string
	TokensPrompt int
	TokensEval   int
}

// Explainer sanitizes and classifies terminal output and streams an
// explanation of it.
type Explainer struct {
	llm        Streamer
	classifier *detect.Classifier
	redactor   *redact.Redactor
	opts       ChatOptions
	budget     int
	logger     *slog.Logger
}

// New creates an Explainer. A nil classifier or redactor uses the built-in
// one.
func New(llm Streamer, c *detect.Classifier, r *redact.Redactor, opts ChatOptions, logger *slog.Logger) (*Explainer, error) {
	if llm == nil {
		return nil, errors.New("llm provider cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if c == nil {
		c = detect.Default()
	}
	if r == nil {
		r = redact.Default()
	}
	return &Explainer{llm: llm, classifier: c, redactor: r, opts: opts, logger: logger}, nil
}

// WithTokenBudget condenses output estimated above n tokens before it is
// sent. Zero or less sends it whole.
func (e *Explainer) WithTokenBudget(n int) *Explainer {
	e.budget = n
	return e
}

// Explain writes the model's explanation of content to w as it streams in.
func (e *Explainer) Explain(ctx context.Context, content string, w io.Writer) (Result, error) {
	if strings.TrimSpace(content) == "" {
		return Result{}, errors.New("nothing to explain: input is empty")
	}

	label := e.classifier.Classify(content)
	sanitized := e.redactor.Redact(content)
	short := condense.Condense(sanitized.Text, e.budget)
	res := Result{Context: label, Redacted: sanitized.Redacted, Condensed: short.Condensed}

	e.logger.Debug("explaining log",
		"context", label,
		"redacted", sanitized.Redacted,
		"chars", len(sanitized.Text),
		"condensed", short.Condensed,
	)
	if short.Condensed {
		e.logger.Info("output condensed to fit the model context",
			"lines", short.Lines,
			"templates", short.Templates,
			"omitted", short.Omitted,
			"budget", e.budget,
		)
	}

	stream, err := e.llm.ChatStream(ctx, Messages(label, short.Text, short.Condensed), &e.opts)
	if err != nil {
		return res, err
	}

	for event := range stream {
		if event.Error != nil {
			return res, event.Error
		}
		if event.Content != "" {
			if _, err := io.WriteString(w, event.Content); err != nil {
				return res, fmt.Errorf("writing explanation: %w", err)
			}
		}
		if event.Done {
			res.Model = event.Model
			res.TokensPrompt = event.TokensPrompt
			res.TokensEval = event.TokensEval
		}
	}
	return res, nil
}

// Messages builds the conversation sent to the model. sanitized must already
// be redacted.
func Messages(label, sanitized string, condensed bool) []Message {
	var sb strings.Builder
	if label != detect.PlainText {
		fmt.Fprintf(&sb, "This output appears to come from %s.\n\n", label)
	}
	if condensed {
		sb.WriteString("The output was shortened to fit: a line starting with [xN] stands for N lines " +
			"of that shape, with <*> where they differed, and omitted stretches are marked.\n\n")
	}
	sb.WriteString("Explain the following terminal output:\n\n")
	sb.WriteString("```\n")
	sb.WriteString(sanitized)
	if !strings.HasSuffix(sanitized, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("```")

	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: sb.String()},
	}
}

// systemPrompt sets up the assistant for short, evidence-based explanations
// of sanitized terminal output.
const systemPrompt = `You are an expert developer helping a colleague understand terminal output they shared.

Guidelines:
1. Only reference information present in the provided output
2. Distinguish observations ("the output shows...") from inferences ("this suggests...")
3. Values like [REDACTED_EMAIL] or [REDACTED_TOKEN] were removed for privacy; do not guess them
4. Never invent lines that are not in the output
5. Keep the answer short and concrete

Your answer should include:
- What happened: one or two sentences
- Likely cause: evidence-based, quoting the relevant lines
- Next steps: what to check or run next`
