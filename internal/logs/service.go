package logs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/bimmerbailey/logshare/internal/detect"
	"github.com/bimmerbailey/logshare/internal/redact"
)

// Pagination bounds for ListLogs.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Recorder receives pipeline outcomes for metrics.
type Recorder interface {
	LogCreated(context string, hits []redact.Hit)
	LogsExpired(n int)
}

type nopRecorder struct{}

func (nopRecorder) LogCreated(string, []redact.Hit) {}
func (nopRecorder) LogsExpired(int)                 {}

// Service runs the create pipeline and the read, comment and expiry operations
// on top of a Store.
type Service struct {
	store         Store
	classifier    *detect.Classifier
	redactor      *redact.Redactor
	recorder      Recorder
	logger        *slog.Logger
	now           func() time.Time
	defaultExpiry time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithClassifier replaces the built-in classifier.
func WithClassifier(c *detect.Classifier) Option {
	return func(s *Service) { s.classifier = c }
}

// WithRedactor replaces the built-in redactor.
func WithRedactor(r *redact.Redactor) Option {
	return func(s *Service) { s.redactor = r }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDefaultExpiry sets the lifetime of logs created without an explicit one.
// Zero means logs never expire.
func WithDefaultExpiry(d time.Duration) Option {
	return func(s *Service) { s.defaultExpiry = d }
}

// NewService creates a Service over store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		classifier: detect.Default(),
		redactor:   redact.Default(),
		recorder:   nopRecorder{},
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateLog classifies content, redacts it and stores the sanitized result.
// Classification runs on the original text; only the sanitized text is kept.
// Clients that redact before uploading send the label they computed on the
// original in metadata["context"]; a known label there wins over classifying
// the already sanitized content. A zero expiresIn uses the service default.
func (s *Service) CreateLog(ctx context.Context, content string, metadata map[string]any, expiresIn time.Duration) (Log, error) {
	if strings.TrimSpace(content) == "" {
		return Log{}, fmt.Errorf("%w: content is required and must be a non-empty string", ErrInvalid)
	}

	label := s.classifier.Classify(content)
	if hinted, ok := metadata[MetaContext].(string); ok && s.knownLabel(hinted) {
		label = hinted
	}
	res := s.redactor.Redact(content)

	meta := make(map[string]any, len(metadata)+3)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[MetaLineCount] = strings.Count(content, "\n") + 1
	meta[MetaOriginalLength] = utf8.RuneCountInString(content)
	meta[MetaRedactedLength] = utf8.RuneCountInString(res.Text)

	now := s.now().UTC()
	log := Log{
		ID:              uuid.NewString(),
		Content:         res.Text,
		Metadata:        meta,
		DetectedContext: label,
		CreatedAt:       now,
		Redacted:        res.Redacted,
	}
	if expiresIn == 0 {
		expiresIn = s.defaultExpiry
	}
	if expiresIn > 0 {
		exp := now.Add(expiresIn)
		log.ExpiresAt = &exp
	}

	if err := s.store.CreateLog(ctx, log); err != nil {
		return Log{}, fmt.Errorf("creating log: %w", err)
	}

	s.recorder.LogCreated(label, res.Hits)
	s.logger.Debug("log created",
		"id", log.ID,
		"context", label,
		"redacted", res.Redacted,
		"lines", meta[MetaLineCount],
	)
	return log, nil
}

func (s *Service) knownLabel(label string) bool {
	return label == detect.PlainText || slices.Contains(s.classifier.Labels(), label)
}

// GetLog returns a live log. Expired logs are reported as ErrNotFound.
func (s *Service) GetLog(ctx context.Context, id string) (Log, error) {
	log, err := s.store.GetLog(ctx, id)
	if err != nil {
		return Log{}, err
	}
	if log.Expired(s.now()) {
		return Log{}, ErrNotFound
	}
	return log, nil
}

// IncrementViewCount adds one view to a live log.
func (s *Service) IncrementViewCount(ctx context.Context, id string) error {
	if _, err := s.GetLog(ctx, id); err != nil {
		return err
	}
	return s.store.UpdateLog(ctx, id, func(l *Log) { l.ViewCount++ })
}

// DeleteLog removes a log and its comments.
func (s *Service) DeleteLog(ctx context.Context, id string) error {
	return s.store.DeleteLog(ctx, id)
}

// ListLogs returns one page of live logs matching p, newest first.
func (s *Service) ListLogs(ctx context.Context, p ListParams) (ListResult, error) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Page < 1 {
		return ListResult{}, fmt.Errorf("%w: page must be greater than 0", ErrInvalid)
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		return ListResult{}, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalid, MaxLimit)
	}

	all, err := s.store.Logs(ctx)
	if err != nil {
		return ListResult{}, fmt.Errorf("listing logs: %w", err)
	}

	now := s.now()
	search := strings.ToLower(p.Search)
	matched := make([]Log, 0, len(all))
	// Stores return creation order; walk it backwards so equal timestamps
	// still list newest first.
	for i := len(all) - 1; i >= 0; i-- {
		l := all[i]
		if l.Expired(now) {
			continue
		}
		if p.Context != "" && l.DetectedContext != p.Context {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(l.Content), search) {
			continue
		}
		if !p.Since.IsZero() && l.CreatedAt.Before(p.Since) {
			continue
		}
		matched = append(matched, l)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	res := ListResult{Logs: []Log{}, Total: len(matched), Page: p.Page, Limit: p.Limit}
	start := (p.Page - 1) * p.Limit
	if start < len(matched) {
		end := min(start+p.Limit, len(matched))
		res.Logs = matched[start:end]
	}
	return res, nil
}

// ContextStats counts live logs per detected context, most common first.
// Equal counts are ordered by label.
func (s *Service) ContextStats(ctx context.Context) ([]ContextCount, error) {
	all, err := s.store.Logs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing logs: %w", err)
	}

	now := s.now()
	counts := make(map[string]int)
	for _, l := range all {
		if l.Expired(now) {
			continue
		}
		counts[l.DetectedContext]++
	}

	stats := make([]ContextCount, 0, len(counts))
	for label, n := range counts {
		stats = append(stats, ContextCount{Context: label, Count: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Context < stats[j].Context
	})
	return stats, nil
}

// Sweep deletes every expired log and returns how many were removed.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	all, err := s.store.Logs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing logs: %w", err)
	}

	now := s.now()
	removed := 0
	for _, l := range all {
		if !l.Expired(now) {
			continue
		}
		if err := s.store.DeleteLog(ctx, l.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return removed, fmt.Errorf("deleting expired log %s: %w", l.ID, err)
		}
		removed++
	}

	if removed > 0 {
		s.recorder.LogsExpired(removed)
		s.logger.Info("expired logs swept", "count", removed)
	}
	return removed, nil
}

// ValidID reports whether id has the shape of a log or comment id.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil && len(id) == 36
}
