// Package tail follows a file and redacts each new line before it is shown.
//
// It implements "tail -f" like functionality with optional pattern matching,
// log rotation detection and in-memory capture of the followed session so it
// can be shared once the watch ends.
package tail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/bimmerbailey/logshare/internal/redact"
	"github.com/fsnotify/fsnotify"
)

// ErrRotated is returned by Run when the file is rotated away and
// FollowRotate is off.
var ErrRotated = errors.New("file rotated")

const maxScanTokenSize = 1024 * 1024 // 1MB

// maxBlockLines caps how long a private key block is buffered while waiting
// for its END line.
const maxBlockLines = 200

var (
	pemBegin = regexp.MustCompile(`-----BEGIN (?:RSA |DSA |EC |OPENSSH )?PRIVATE KEY-----`)
	pemEnd   = regexp.MustCompile(`-----END (?:RSA |DSA |EC |OPENSSH )?PRIVATE KEY-----`)
)

// Line is one sanitized line of the followed file.
type Line struct {
	Number   int    // position in this session, starting at 1
	Text     string // redacted text
	Redacted bool
}

// Options configures the tailer behavior.
type Options struct {
	FilePath     string           // Path to the file
	Lines        int              // Number of initial lines to show
	Follow       bool             // Whether to follow the file for new content
	FollowRotate bool             // Whether to follow through log rotations
	Pattern      *regexp.Regexp   // Optional filter, matched against the redacted text
	Capture      bool             // Keep the shown lines so Captured can return them
	Redactor     *redact.Redactor // nil uses the built-in rules
	Logger       *slog.Logger     // nil discards
	OutputFunc   func(Line) error // Called for each displayed line
}

// unit is what gets redacted and shown as one Line: a single raw line, or a
// private key block from its BEGIN line to its END line.
type unit struct {
	raw      string
	withheld bool // key block that never reached its END line
}

// Tailer follows one file.
type Tailer struct {
	opts    Options
	file    *os.File
	offset  int64
	lineNum int
	watcher *fsnotify.Watcher
	block   []string // open private key block

	mu       sync.Mutex
	captured []string
}

// New creates a new Tailer with the given options.
func New(opts Options) *Tailer {
	if opts.Redactor == nil {
		opts.Redactor = redact.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.OutputFunc == nil {
		opts.OutputFunc = func(Line) error { return nil }
	}
	return &Tailer{opts: opts}
}

// Run starts tailing. It blocks until ctx is cancelled or an error occurs.
func (t *Tailer) Run(ctx context.Context) error {
	if err := t.openFile(); err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer t.close()

	if t.opts.Lines > 0 {
		if err := t.readInitialLines(); err != nil {
			return fmt.Errorf("failed to read initial lines: %w", err)
		}
	}

	if !t.opts.Follow {
		return nil
	}

	if err := t.setupWatcher(); err != nil {
		return fmt.Errorf("failed to setup watcher: %w", err)
	}

	err := t.watch(ctx)
	if u, ok := t.flushBlock(); ok && err == nil {
		err = t.show(u)
	}
	return err
}

// Captured returns the original text of every displayed line, joined with
// newlines. It is empty unless Options.Capture is set. The raw text never
// leaves memory; callers redact it again before sharing.
func (t *Tailer) Captured() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.captured, "\n")
}

func (t *Tailer) openFile() error {
	f, err := os.Open(t.opts.FilePath)
	if err != nil {
		return err
	}
	t.file = f

	if t.opts.Follow {
		stat, err := f.Stat()
		if err != nil {
			return err
		}
		t.offset = stat.Size()
	}
	return nil
}

// readInitialLines emits the last N non-blank units of the file.
func (t *Tailer) readInitialLines() error {
	stat, err := t.file.Stat()
	if err != nil {
		return err
	}
	fileSize := stat.Size()
	if fileSize == 0 {
		return nil
	}

	// Assume lines average ~300 bytes and read twice what that needs.
	startPos := fileSize - int64(t.opts.Lines*300*2)
	if startPos < 0 {
		startPos = 0
	}

	units, stray, err := t.scanUnits(startPos)
	if err != nil {
		return err
	}
	if stray && startPos > 0 {
		// The window opened inside a key block; read it whole.
		t.block = nil
		if units, _, err = t.scanUnits(0); err != nil {
			return err
		}
	}
	if !t.opts.Follow {
		if u, ok := t.flushBlock(); ok {
			units = append(units, u)
		}
	}

	type shownUnit struct {
		u   unit
		res redact.Result
	}
	var shown []shownUnit
	for _, u := range units {
		res := t.sanitize(u)
		if t.matches(res) {
			shown = append(shown, shownUnit{u, res})
		}
	}
	if len(shown) > t.opts.Lines {
		shown = shown[len(shown)-t.opts.Lines:]
	}
	for _, s := range shown {
		if err := t.emit(s.u, s.res); err != nil {
			return err
		}
	}

	t.offset, err = t.file.Seek(0, io.SeekEnd)
	return err
}

// scanUnits groups the non-blank lines from start to EOF into units. stray
// reports an END line seen with no BEGIN before it.
func (t *Tailer) scanUnits(start int64) (units []unit, stray bool, err error) {
	if _, err := t.file.Seek(start, io.SeekStart); err != nil {
		return nil, false, err
	}

	scanner := newScanner(t.file)

	// Mid-file, the first line is partial.
	if start > 0 {
		scanner.Scan()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if t.block == nil && pemEnd.MatchString(line) && !pemBegin.MatchString(line) {
			stray = true
		}
		if u, ok := t.collect(line); ok {
			units = append(units, u)
		}
	}
	return units, stray, scanner.Err()
}

func (t *Tailer) setupWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	t.watcher = watcher
	return watcher.Add(t.opts.FilePath)
}

func (t *Tailer) watch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-t.watcher.Events:
			if !ok {
				return errors.New("watcher closed unexpectedly")
			}
			if err := t.handleEvent(ctx, event); err != nil {
				return err
			}

		case err, ok := <-t.watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (t *Tailer) handleEvent(ctx context.Context, event fsnotify.Event) error {
	switch {
	case event.Has(fsnotify.Write):
		return t.readNewContent()
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return t.handleRotation(ctx)
	}
	return nil
}

// readNewContent emits everything appended since the last read. A file that
// shrank was truncated in place and is read again from the start.
func (t *Tailer) readNewContent() error {
	if t.file == nil {
		return nil
	}
	stat, err := t.file.Stat()
	if err != nil {
		return err
	}
	if stat.Size() < t.offset {
		t.opts.Logger.Info("file truncated, reading from start", "path", t.opts.FilePath)
		t.offset = 0
	}

	if _, err := t.file.Seek(t.offset, io.SeekStart); err != nil {
		return err
	}

	scanner := newScanner(t.file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		u, ok := t.collect(line)
		if !ok {
			continue
		}
		if err := t.show(u); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	t.offset, err = t.file.Seek(0, io.SeekCurrent)
	return err
}

func (t *Tailer) handleRotation(ctx context.Context) error {
	if !t.opts.FollowRotate {
		t.opts.Logger.Info("file rotated, stopping", "path", t.opts.FilePath)
		return ErrRotated
	}

	if t.file != nil {
		t.file.Close()
		t.file = nil
	}

	timeout := time.After(10 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timeout:
			return errors.New("timeout waiting for rotated file to reappear")
		case <-ticker.C:
			f, err := os.Open(t.opts.FilePath)
			if err != nil {
				continue
			}
			t.file = f
			t.offset = 0

			if err := t.watcher.Add(t.opts.FilePath); err != nil {
				return fmt.Errorf("failed to watch rotated file: %w", err)
			}
			t.opts.Logger.Info("file rotated, following new file", "path", t.opts.FilePath)
			// Anything written before the watch was re-added.
			return t.readNewContent()
		}
	}
}

// collect feeds one raw line through the key block buffer. It returns a
// finished unit, or false while a block is still open. A block is redacted
// whole because the private key rule needs both its BEGIN and END lines.
func (t *Tailer) collect(line string) (unit, bool) {
	if t.block == nil {
		if !pemBegin.MatchString(line) || pemEnd.MatchString(line) {
			return unit{raw: line}, true
		}
		t.block = []string{line}
		return unit{}, false
	}

	t.block = append(t.block, line)
	if pemEnd.MatchString(line) {
		u := unit{raw: strings.Join(t.block, "\n")}
		t.block = nil
		return u, true
	}
	if len(t.block) >= maxBlockLines {
		t.opts.Logger.Warn("private key block has no END line, withholding it", "lines", len(t.block))
		return t.flushBlock()
	}
	return unit{}, false
}

// flushBlock closes an open key block. Its content is withheld since
// without an END line the redaction rules cannot recognize it.
func (t *Tailer) flushBlock() (unit, bool) {
	if t.block == nil {
		return unit{}, false
	}
	u := unit{raw: strings.Join(t.block, "\n"), withheld: true}
	t.block = nil
	return u, true
}

func (t *Tailer) sanitize(u unit) redact.Result {
	if u.withheld {
		return redact.Result{Text: redact.MarkerSSHKey, Redacted: true}
	}
	return t.opts.Redactor.Redact(u.raw)
}

// matches reports whether a unit passes the pattern filter. The pattern
// sees the redacted text so a filter cannot be used to probe secrets.
func (t *Tailer) matches(res redact.Result) bool {
	if t.opts.Pattern == nil {
		return true
	}
	return t.opts.Pattern.MatchString(res.Text)
}

// show redacts u and emits it if it passes the pattern filter.
func (t *Tailer) show(u unit) error {
	res := t.sanitize(u)
	if !t.matches(res) {
		return nil
	}
	return t.emit(u, res)
}

func (t *Tailer) emit(u unit, res redact.Result) error {
	t.lineNum++

	if t.opts.Capture {
		// Withheld blocks are captured as shown, since redacting them again
		// before upload would not remove them either.
		raw := u.raw
		if u.withheld {
			raw = res.Text
		}
		t.mu.Lock()
		t.captured = append(t.captured, raw)
		t.mu.Unlock()
	}

	return t.opts.OutputFunc(Line{
		Number:   t.lineNum,
		Text:     res.Text,
		Redacted: res.Redacted,
	})
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, maxScanTokenSize), maxScanTokenSize)
	return scanner
}

func (t *Tailer) close() {
	if t.file != nil {
		t.file.Close()
	}
	if t.watcher != nil {
		t.watcher.Close()
	}
}
