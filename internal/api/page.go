package api

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/bimmerbailey/logshare/internal/highlight"
	"github.com/bimmerbailey/logshare/internal/logs"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/log.html"))

// pageLine is one rendered row of the log table.
type pageLine struct {
	highlight.Line
	Commented bool
}

type pageData struct {
	Log          logs.Log
	Preview      string
	Lines        []pageLine
	LineCount    int
	CommentCount int
	Comments     []*logs.Comment
}

// logPage renders the read-only view of one log with numbered, anchored
// lines (#L<n>) and its comment threads.
func (s *Server) logPage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !logs.ValidID(id) {
		http.NotFound(w, r)
		return
	}

	log, err := s.svc.GetLog(r.Context(), id)
	if errors.Is(err, logs.ErrNotFound) {
		http.Error(w, "Log not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("rendering log page", "id", id, "error", err)
		http.Error(w, "Failed to fetch log", http.StatusInternalServerError)
		return
	}

	comments, err := s.svc.CommentsByLog(r.Context(), id)
	if err != nil {
		s.logger.Error("rendering log page", "id", id, "error", err)
		http.Error(w, "Failed to fetch comments", http.StatusInternalServerError)
		return
	}
	commented, err := s.svc.LinesWithComments(r.Context(), id)
	if err != nil {
		s.logger.Error("rendering log page", "id", id, "error", err)
		http.Error(w, "Failed to fetch comments", http.StatusInternalServerError)
		return
	}
	count, err := s.svc.CommentCount(r.Context(), id)
	if err != nil {
		s.logger.Error("rendering log page", "id", id, "error", err)
		http.Error(w, "Failed to fetch comments", http.StatusInternalServerError)
		return
	}

	highlighted, err := s.highlighter.Lines(log.Content, log.DetectedContext)
	if err != nil {
		// Lines still returns escaped plain text.
		s.logger.Warn("highlighting failed", "id", id, "context", log.DetectedContext, "error", err)
	}

	marked := make(map[int]bool, len(commented))
	for _, n := range commented {
		marked[n] = true
	}
	lines := make([]pageLine, len(highlighted))
	for i, l := range highlighted {
		lines[i] = pageLine{Line: l, Commented: marked[l.Number]}
	}

	lineCount := log.LineCount()
	if lineCount == 0 {
		lineCount = len(lines)
	}

	preview, _, _ := strings.Cut(log.Content, "\n")
	if len([]rune(preview)) > 100 {
		preview = string([]rune(preview)[:100])
	}

	data := pageData{
		Log:          log,
		Preview:      preview,
		Lines:        lines,
		LineCount:    lineCount,
		CommentCount: count,
		Comments:     comments,
	}

	s.countView(r.Context(), id)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("executing log page template", "id", id, "error", err)
	}
}

func (s *Server) highlightCSS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := s.highlighter.CSS(w); err != nil {
		s.logger.Error("writing highlight css", "error", err)
	}
}
