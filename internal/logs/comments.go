package logs

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// NewComment is the input of CreateComment.
type NewComment struct {
	LogID       string
	LineNumber  int
	Content     string
	AuthorName  string
	AuthorEmail string // optional
	ParentID    string // optional; must be a comment on the same log
}

// CreateComment attaches a comment to one line of a live log.
func (s *Service) CreateComment(ctx context.Context, in NewComment) (Comment, error) {
	if in.LogID == "" {
		return Comment{}, fmt.Errorf("%w: logId is required and must be a string", ErrInvalid)
	}
	if in.LineNumber < 1 {
		return Comment{}, fmt.Errorf("%w: lineNumber is required and must be a positive number", ErrInvalid)
	}
	if strings.TrimSpace(in.Content) == "" {
		return Comment{}, fmt.Errorf("%w: content is required and must be a non-empty string", ErrInvalid)
	}
	if strings.TrimSpace(in.AuthorName) == "" {
		return Comment{}, fmt.Errorf("%w: authorName is required and must be a non-empty string", ErrInvalid)
	}

	log, err := s.GetLog(ctx, in.LogID)
	if err != nil {
		return Comment{}, err
	}
	if n := log.LineCount(); n > 0 && in.LineNumber > n {
		return Comment{}, fmt.Errorf("%w: lineNumber %d is past the last line (%d)", ErrInvalid, in.LineNumber, n)
	}

	c := Comment{
		ID:         uuid.NewString(),
		LogID:      in.LogID,
		LineNumber: in.LineNumber,
		Content:    in.Content,
		AuthorName: strings.TrimSpace(in.AuthorName),
		CreatedAt:  s.now().UTC(),
	}
	if in.AuthorEmail != "" {
		email := in.AuthorEmail
		c.AuthorEmail = &email
	}
	if in.ParentID != "" {
		parent, err := s.store.GetComment(ctx, in.ParentID)
		if err != nil || parent.LogID != in.LogID {
			return Comment{}, fmt.Errorf("%w: parentId %q is not a comment on this log", ErrInvalid, in.ParentID)
		}
		pid := in.ParentID
		c.ParentID = &pid
	}

	if err := s.store.CreateComment(ctx, c); err != nil {
		return Comment{}, fmt.Errorf("creating comment: %w", err)
	}
	return c, nil
}

// CommentsByLog returns the comments of a log as a tree: top-level comments
// in creation order, each with its replies nested.
func (s *Service) CommentsByLog(ctx context.Context, logID string) ([]*Comment, error) {
	flat, err := s.store.Comments(ctx, logID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return buildTree(flat), nil
}

// CommentsByLine returns the comment tree of one line. Replies whose parent
// is on another line are dropped.
func (s *Service) CommentsByLine(ctx context.Context, logID string, line int) ([]*Comment, error) {
	flat, err := s.store.Comments(ctx, logID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}

	onLine := flat[:0:0]
	for _, c := range flat {
		if c.LineNumber == line {
			onLine = append(onLine, c)
		}
	}
	return buildTree(onLine), nil
}

// CommentCount returns the number of comments on a log, replies included.
func (s *Service) CommentCount(ctx context.Context, logID string) (int, error) {
	flat, err := s.store.Comments(ctx, logID)
	if err != nil {
		return 0, fmt.Errorf("listing comments: %w", err)
	}
	return len(flat), nil
}

// LinesWithComments returns the sorted distinct line numbers that carry at
// least one comment.
func (s *Service) LinesWithComments(ctx context.Context, logID string) ([]int, error) {
	flat, err := s.store.Comments(ctx, logID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}

	seen := make(map[int]struct{}, len(flat))
	lines := make([]int, 0, len(flat))
	for _, c := range flat {
		if _, ok := seen[c.LineNumber]; ok {
			continue
		}
		seen[c.LineNumber] = struct{}{}
		lines = append(lines, c.LineNumber)
	}
	sort.Ints(lines)
	return lines, nil
}

// DeleteComment removes a comment and every reply beneath it.
func (s *Service) DeleteComment(ctx context.Context, id string) error {
	target, err := s.store.GetComment(ctx, id)
	if err != nil {
		return err
	}

	flat, err := s.store.Comments(ctx, target.LogID)
	if err != nil {
		return fmt.Errorf("listing comments: %w", err)
	}

	children := make(map[string][]string)
	for _, c := range flat {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	ids := []string{id}
	for i := 0; i < len(ids); i++ {
		ids = append(ids, children[ids[i]]...)
	}

	if err := s.store.DeleteComments(ctx, ids); err != nil {
		return fmt.Errorf("deleting comments: %w", err)
	}
	return nil
}

// buildTree nests replies under their parents. flat must be in creation
// order; replies whose parent is absent are dropped.
func buildTree(flat []Comment) []*Comment {
	nodes := make(map[string]*Comment, len(flat))
	for i := range flat {
		c := flat[i]
		c.Replies = nil
		nodes[c.ID] = &c
	}

	roots := make([]*Comment, 0)
	for i := range flat {
		node := nodes[flat[i].ID]
		if node.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*node.ParentID]; ok {
			parent.Replies = append(parent.Replies, node)
		}
	}
	return roots
}
