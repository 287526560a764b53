// Package output renders command results as text, JSON, YAML or tables.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bimmerbailey/logshare/internal/detect"
	"github.com/bimmerbailey/logshare/internal/logs"
	"github.com/bimmerbailey/logshare/internal/redact"
)

// Format represents an output format type.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// ParseFormat converts a string to a Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// Writer handles writing formatted output.
type Writer struct {
	w      io.Writer
	format Format
	color  ColorMode
}

// New creates a new output Writer.
func New(w io.Writer, format Format) *Writer {
	return &Writer{w: w, format: format}
}

// WithColor sets the color mode used by text output.
func (wr *Writer) WithColor(mode ColorMode) *Writer {
	wr.color = mode
	return wr
}

// Classification is the classify result for one input.
type Classification struct {
	Source   string         `json:"source" yaml:"source"`
	Context  string         `json:"context" yaml:"context"`
	Language string         `json:"language" yaml:"language"`
	Scores   []detect.Score `json:"scores,omitempty" yaml:"scores,omitempty"`
}

// Redaction is the redact result for one input.
type Redaction struct {
	Source   string       `json:"source" yaml:"source"`
	Text     string       `json:"text" yaml:"text"`
	Redacted bool         `json:"redacted" yaml:"redacted"`
	Hits     []redact.Hit `json:"hits,omitempty" yaml:"hits,omitempty"`
}

// ScanResult is the scan result for one input.
type ScanResult struct {
	Source string   `json:"source" yaml:"source"`
	Kinds  []string `json:"kinds" yaml:"kinds"`
}

// Upload is a log shared through a server.
type Upload struct {
	ID        string    `json:"id" yaml:"id"`
	URL       string    `json:"url" yaml:"url"`
	Context   string    `json:"context" yaml:"context"`
	Redacted  bool      `json:"redacted" yaml:"redacted"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// WriteJSON outputs any value as indented JSON.
func (wr *Writer) WriteJSON(v any) error {
	enc := json.NewEncoder(wr.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML outputs any value as YAML.
func (wr *Writer) WriteYAML(v any) error {
	enc := yaml.NewEncoder(wr.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// structured writes v for the machine-readable formats and reports whether
// it did.
func (wr *Writer) structured(v any) (bool, error) {
	switch wr.format {
	case FormatJSON:
		return true, wr.WriteJSON(v)
	case FormatYAML:
		return true, wr.WriteYAML(v)
	default:
		return false, nil
	}
}

// WriteClassifications outputs classify results.
func (wr *Writer) WriteClassifications(items []Classification) error {
	if ok, err := wr.structured(items); ok {
		return err
	}

	if wr.format == FormatTable {
		tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SOURCE\tCONTEXT\tLANGUAGE\tMATCHES")
		fmt.Fprintln(tw, "------\t-------\t--------\t-------")
		for _, it := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.Source, it.Context, it.Language, formatScores(it.Scores))
		}
		return tw.Flush()
	}

	for _, it := range items {
		if len(items) > 1 {
			fmt.Fprintf(wr.w, "%s: ", it.Source)
		}
		fmt.Fprintln(wr.w, it.Context)
		if len(it.Scores) > 0 {
			fmt.Fprintf(wr.w, "  matches: %s\n", formatScores(it.Scores))
		}
	}
	return nil
}

// WriteRedactions outputs redact results. Text output is the sanitized text
// itself, with markers colored on a terminal.
func (wr *Writer) WriteRedactions(items []Redaction) error {
	if ok, err := wr.structured(items); ok {
		return err
	}

	if wr.format == FormatTable {
		tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SOURCE\tREDACTED\tRULE\tCOUNT")
		fmt.Fprintln(tw, "------\t--------\t----\t-----")
		for _, it := range items {
			if len(it.Hits) == 0 {
				fmt.Fprintf(tw, "%s\t%t\t-\t0\n", it.Source, it.Redacted)
				continue
			}
			for _, h := range it.Hits {
				fmt.Fprintf(tw, "%s\t%t\t%s\t%d\n", it.Source, it.Redacted, h.Rule, h.Count)
			}
		}
		return tw.Flush()
	}

	colorize := shouldColorize(wr.color, wr.w)
	for _, it := range items {
		text := it.Text
		if colorize {
			text = ColorizeMarkers(text)
		}
		fmt.Fprint(wr.w, text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(wr.w)
		}
	}
	return nil
}

// WriteScanResults outputs scan results.
func (wr *Writer) WriteScanResults(items []ScanResult) error {
	if ok, err := wr.structured(items); ok {
		return err
	}

	if wr.format == FormatTable {
		tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SOURCE\tKINDS")
		fmt.Fprintln(tw, "------\t-----")
		for _, it := range items {
			kinds := "-"
			if len(it.Kinds) > 0 {
				kinds = strings.Join(it.Kinds, ", ")
			}
			fmt.Fprintf(tw, "%s\t%s\n", it.Source, kinds)
		}
		return tw.Flush()
	}

	for _, it := range items {
		if len(it.Kinds) == 0 {
			fmt.Fprintf(wr.w, "%s: no sensitive data found\n", it.Source)
			continue
		}
		fmt.Fprintf(wr.w, "%s: %s\n", it.Source, strings.Join(it.Kinds, ", "))
	}
	return nil
}

// WriteUploads outputs shared logs, newest first.
func (wr *Writer) WriteUploads(items []Upload) error {
	if ok, err := wr.structured(items); ok {
		return err
	}

	if wr.format == FormatTable {
		tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CREATED\tCONTEXT\tREDACTED\tURL")
		fmt.Fprintln(tw, "-------\t-------\t--------\t---")
		for _, it := range items {
			fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", it.CreatedAt.Local().Format("2006-01-02 15:04"), it.Context, it.Redacted, it.URL)
		}
		return tw.Flush()
	}

	for _, it := range items {
		fmt.Fprintf(wr.w, "%s  %-12s %s\n", it.CreatedAt.Local().Format("2006-01-02 15:04"), it.Context, it.URL)
	}
	return nil
}

// WriteLogList outputs one page of server logs.
func (wr *Writer) WriteLogList(res logs.ListResult) error {
	if ok, err := wr.structured(res); ok {
		return err
	}

	tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tCONTEXT\tLINES\tVIEWS\tREDACTED")
	fmt.Fprintln(tw, "--\t-------\t-------\t-----\t-----\t--------")
	for _, l := range res.Logs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%t\n",
			l.ID, l.CreatedAt.Local().Format("2006-01-02 15:04"), l.DetectedContext, l.LineCount(), l.ViewCount, l.Redacted)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	pages := (res.Total + res.Limit - 1) / max(res.Limit, 1)
	fmt.Fprintf(wr.w, "\npage %d of %d (%d logs)\n", res.Page, max(pages, 1), res.Total)
	return nil
}

// WriteContextStats outputs log counts per context.
func (wr *Writer) WriteContextStats(stats []logs.ContextCount) error {
	if ok, err := wr.structured(stats); ok {
		return err
	}

	total := 0
	for _, s := range stats {
		total += s.Count
	}

	tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONTEXT\tLOGS\tSHARE")
	fmt.Fprintln(tw, "-------\t----\t-----")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", s.Context, s.Count, 100*float64(s.Count)/float64(max(total, 1)))
	}
	return tw.Flush()
}

func formatScores(scores []detect.Score) string {
	if len(scores) == 0 {
		return "-"
	}
	parts := make([]string, len(scores))
	for i, s := range scores {
		parts[i] = fmt.Sprintf("%s=%d", s.Label, s.Count)
	}
	return strings.Join(parts, " ")
}
