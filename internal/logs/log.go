// Package logs implements the shared-log model: creating sanitized logs from
// raw terminal output, listing and expiring them, and threading line comments.
package logs

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a log or comment does not exist or has expired.
	ErrNotFound = errors.New("not found")

	// ErrInvalid wraps every validation failure. The wrapping error's message
	// names the offending field.
	ErrInvalid = errors.New("invalid request")
)

// Metadata keys computed at creation time. Caller-supplied values for these
// keys are overwritten.
const (
	MetaLineCount      = "lineCount"
	MetaOriginalLength = "originalLength"
	MetaRedactedLength = "redactedLength"
)

// Metadata keys the companion commands send.
const (
	MetaTerminal = "terminal"
	MetaOS       = "os"
	MetaContext  = "context"
)

// Log is one shared, sanitized piece of terminal output.
type Log struct {
	ID              string         `json:"id"`
	Content         string         `json:"content"`
	Metadata        map[string]any `json:"metadata"`
	DetectedContext string         `json:"detected_context"`
	CreatedAt       time.Time      `json:"created_at"`
	ExpiresAt       *time.Time     `json:"expires_at"`
	ViewCount       int            `json:"view_count"`
	IsPrivate       bool           `json:"is_private"`
	Redacted        bool           `json:"redacted"`
}

// LineCount returns the line count recorded at creation. Metadata decoded
// from JSON carries numbers as float64.
func (l *Log) LineCount() int {
	switch v := l.Metadata[MetaLineCount].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Expired reports whether l has an expiry at or before now.
func (l *Log) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// Comment is a note attached to one line of a log. Replies reference their
// parent through ParentID and are nested under it when read back as a tree.
type Comment struct {
	ID          string     `json:"id"`
	LogID       string     `json:"log_id"`
	LineNumber  int        `json:"line_number"`
	Content     string     `json:"content"`
	AuthorName  string     `json:"author_name"`
	AuthorEmail *string    `json:"author_email"`
	CreatedAt   time.Time  `json:"created_at"`
	ParentID    *string    `json:"parent_id"`
	Replies     []*Comment `json:"replies,omitempty"`
}

// ListParams filters and paginates ListLogs.
type ListParams struct {
	Page    int
	Limit   int
	Context string    // exact detected context
	Search  string    // case-insensitive substring of the sanitized content
	Since   time.Time // zero means no lower bound
}

// ListResult is one page of logs, newest first, with the total match count.
type ListResult struct {
	Logs  []Log `json:"logs"`
	Total int   `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// ContextCount is the number of live logs classified with one label.
type ContextCount struct {
	Context string `json:"context"`
	Count   int    `json:"count"`
}

// Store persists logs and comments. Implementations return ErrNotFound for
// missing ids and must be safe for concurrent use.
type Store interface {
	CreateLog(ctx context.Context, log Log) error
	GetLog(ctx context.Context, id string) (Log, error)
	// UpdateLog applies fn to the stored log under the store's lock.
	UpdateLog(ctx context.Context, id string, fn func(*Log)) error
	// DeleteLog removes the log and all of its comments.
	DeleteLog(ctx context.Context, id string) error
	Logs(ctx context.Context) ([]Log, error)

	CreateComment(ctx context.Context, c Comment) error
	GetComment(ctx context.Context, id string) (Comment, error)
	// Comments returns the comments of one log in creation order, flat.
	Comments(ctx context.Context, logID string) ([]Comment, error)
	DeleteComments(ctx context.Context, ids []string) error

	Close() error
}
