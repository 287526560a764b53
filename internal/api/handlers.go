package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bimmerbailey/logshare/internal/config"
	"github.com/bimmerbailey/logshare/internal/logs"
	"github.com/bimmerbailey/logshare/internal/redact"
)

// ---------- logs ----------

func (s *Server) createLog(w http.ResponseWriter, r *http.Request) {
	var req CreateLogRequest
	if !s.decode(w, r, &req) {
		return
	}

	var expiresIn time.Duration
	if req.ExpiresIn != "" {
		d, err := config.ParseDuration(req.ExpiresIn)
		if err != nil || d <= 0 {
			writeErr(w, http.StatusBadRequest, "expiresIn must be a positive duration such as 24h or 7d")
			return
		}
		expiresIn = d
	}

	log, err := s.svc.CreateLog(r.Context(), req.Content, req.Metadata, expiresIn)
	if err != nil {
		s.fail(w, "Failed to create log", err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateLogResponse{
		ID:       log.ID,
		URL:      s.baseURL(r) + "/log/" + log.ID,
		Redacted: log.Redacted,
	})
}

func (s *Server) listLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, ok := queryInt(q.Get("page"), 1)
	if !ok || page < 1 {
		writeErr(w, http.StatusBadRequest, "Page must be greater than 0")
		return
	}
	limit, ok := queryInt(q.Get("limit"), logs.DefaultLimit)
	if !ok || limit < 1 || limit > logs.MaxLimit {
		writeErr(w, http.StatusBadRequest, fmt.Sprintf("Limit must be between 1 and %d", logs.MaxLimit))
		return
	}

	params := logs.ListParams{
		Page:    page,
		Limit:   limit,
		Context: q.Get("context"),
		Search:  q.Get("search"),
	}
	if since := q.Get("since"); since != "" {
		t, err := config.ParseTimeRef(since)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "since must be a timestamp or a duration such as 24h")
			return
		}
		params.Since = t
	}

	res, err := s.svc.ListLogs(r.Context(), params)
	if err != nil {
		s.fail(w, "Failed to list logs", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) getLog(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Invalid log ID format")
	if !ok {
		return
	}

	log, err := s.svc.GetLog(r.Context(), id)
	if err != nil {
		s.fail(w, "Failed to fetch log", err)
		return
	}

	s.countView(r.Context(), id)
	writeJSON(w, http.StatusOK, log)
}

func (s *Server) deleteLog(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Invalid log ID format")
	if !ok {
		return
	}
	if err := s.svc.DeleteLog(r.Context(), id); err != nil {
		s.fail(w, "Failed to delete log", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) logLines(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Invalid log ID format")
	if !ok {
		return
	}
	if _, err := s.svc.GetLog(r.Context(), id); err != nil {
		s.fail(w, "Failed to fetch log", err)
		return
	}

	lines, err := s.svc.LinesWithComments(r.Context(), id)
	if err != nil {
		s.fail(w, "Failed to fetch comment lines", err)
		return
	}
	count, err := s.svc.CommentCount(r.Context(), id)
	if err != nil {
		s.fail(w, "Failed to fetch comment lines", err)
		return
	}
	writeJSON(w, http.StatusOK, LinesResponse{Lines: lines, CommentCount: count})
}

// countView increments the view counter without holding up the response.
func (s *Server) countView(ctx context.Context, id string) {
	ctx = context.WithoutCancel(ctx)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		if err := s.svc.IncrementViewCount(ctx, id); err != nil {
			s.logger.Warn("failed to increment view count", "id", id, "error", err)
		}
	}()
}

// ---------- comments ----------

func (s *Server) createComment(w http.ResponseWriter, r *http.Request) {
	var req CreateCommentRequest
	if !s.decode(w, r, &req) {
		return
	}

	c, err := s.svc.CreateComment(r.Context(), logs.NewComment{
		LogID:       req.LogID,
		LineNumber:  req.LineNumber,
		Content:     req.Content,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		ParentID:    req.ParentID,
	})
	if err != nil {
		s.fail(w, "Failed to create comment", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	logID := r.URL.Query().Get("logId")
	if logID == "" {
		writeErr(w, http.StatusBadRequest, "logId query parameter is required")
		return
	}

	var (
		tree []*logs.Comment
		err  error
	)
	if raw := r.URL.Query().Get("line"); raw != "" {
		line, convErr := strconv.Atoi(raw)
		if convErr != nil || line < 1 {
			writeErr(w, http.StatusBadRequest, "line must be a positive number")
			return
		}
		tree, err = s.svc.CommentsByLine(r.Context(), logID, line)
	} else {
		tree, err = s.svc.CommentsByLog(r.Context(), logID)
	}
	if err != nil {
		s.fail(w, "Failed to fetch comments", err)
		return
	}
	writeJSON(w, http.StatusOK, CommentsResponse{Comments: tree})
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "Invalid comment ID format")
	if !ok {
		return
	}
	if err := s.svc.DeleteComment(r.Context(), id); err != nil {
		s.fail(w, "Failed to delete comment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------- misc ----------

func (s *Server) contextStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.ContextStats(r.Context())
	if err != nil {
		s.fail(w, "Failed to fetch stats", err)
		return
	}
	writeJSON(w, http.StatusOK, ContextStatsResponse{Contexts: stats})
}

func (s *Server) scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if !s.decode(w, r, &req) {
		return
	}
	findings := redact.Scan(req.Content)
	s.metrics.ScanFindings(findings.Kinds)
	writeJSON(w, http.StatusOK, findings)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// ---------- helpers ----------

// decode reads a JSON body capped at MaxContentBytes. On failure it writes
// the error response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxContentBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErr(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeErr(w, http.StatusBadRequest, "Request body must be valid JSON")
		return false
	}
	return true
}

// fail maps service errors to status codes. Validation failures carry their
// own message; anything unexpected is logged and reported as 500.
func (s *Server) fail(w http.ResponseWriter, summary string, err error) {
	switch {
	case errors.Is(err, logs.ErrInvalid):
		writeErr(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), logs.ErrInvalid.Error()+": "))
	case errors.Is(err, logs.ErrNotFound):
		writeErr(w, http.StatusNotFound, "Not found")
	default:
		s.logger.Error(summary, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: summary, Message: err.Error()})
	}
}

// baseURL is the configured public URL, else the caller's Origin, else the
// scheme and host the request arrived on.
func (s *Server) baseURL(r *http.Request) string {
	if s.opts.BaseURL != "" {
		return strings.TrimRight(s.opts.BaseURL, "/")
	}
	if origin := r.Header.Get("Origin"); origin != "" {
		return strings.TrimRight(origin, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func pathID(w http.ResponseWriter, r *http.Request, msg string) (string, bool) {
	id := r.PathValue("id")
	if !logs.ValidID(id) {
		writeErr(w, http.StatusBadRequest, msg)
		return "", false
	}
	return id, true
}

func queryInt(raw string, fallback int) (int, bool) {
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
