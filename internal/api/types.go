package api

import (
	"github.com/bimmerbailey/logshare/internal/logs"
)

// CreateLogRequest is the body of POST /api/logs/create.
type CreateLogRequest struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
	// ExpiresIn is a duration such as "24h" or "7d". Empty uses the server
	// default.
	ExpiresIn string `json:"expiresIn,omitempty"`
}

// CreateLogResponse is returned with 201 after a log is created.
type CreateLogResponse struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Redacted bool   `json:"redacted"`
}

// CreateCommentRequest is the body of POST /api/comments.
type CreateCommentRequest struct {
	LogID       string `json:"logId"`
	LineNumber  int    `json:"lineNumber"`
	Content     string `json:"content"`
	AuthorName  string `json:"authorName"`
	AuthorEmail string `json:"authorEmail,omitempty"`
	ParentID    string `json:"parentId,omitempty"`
}

// CommentsResponse wraps a comment tree.
type CommentsResponse struct {
	Comments []*logs.Comment `json:"comments"`
}

// LinesResponse is returned by GET /api/logs/{id}/lines.
type LinesResponse struct {
	Lines        []int `json:"lines"`
	CommentCount int   `json:"commentCount"`
}

// ContextStatsResponse is returned by GET /api/stats/contexts.
type ContextStatsResponse struct {
	Contexts []logs.ContextCount `json:"contexts"`
}

// ScanRequest is the body of POST /api/scan.
type ScanRequest struct {
	Content string `json:"content"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
