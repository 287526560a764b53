// Package recent keeps a bounded, persisted list of the logs this machine
// uploaded most recently.
package recent

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 10

// Entry is one uploaded log.
type Entry struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Context   string    `json:"context"`
	Redacted  bool      `json:"redacted"`
	CreatedAt time.Time `json:"created_at"`
}

// Ring is a thread-safe fixed-size circular buffer of entries with
// oldest-first eviction.
type Ring struct {
	entries  []Entry
	head     int // index of oldest element
	tail     int // index where next element will be inserted
	size     int
	capacity int
	mu       sync.RWMutex
}

// New creates a ring holding at most capacity entries.
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{
		entries:  make([]Entry, capacity),
		capacity: capacity,
	}
}

// Push inserts e, evicting the oldest entry when full. It reports whether
// an entry was evicted.
func (r *Ring) Push(e Entry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.push(e)
}

func (r *Ring) push(e Entry) bool {
	r.entries[r.tail] = e
	r.tail = (r.tail + 1) % r.capacity

	if r.size < r.capacity {
		r.size++
		return false
	}
	r.head = (r.head + 1) % r.capacity
	return true
}

// All returns the entries newest first.
func (r *Ring) All() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, r.size)
	for i := r.size - 1; i >= 0; i-- {
		out = append(out, r.entries[(r.head+i)%r.capacity])
	}
	return out
}

// Newest returns the most recent entry.
func (r *Ring) Newest() (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.size == 0 {
		return Entry{}, false
	}
	return r.entries[(r.tail-1+r.capacity)%r.capacity], true
}

// Len returns the current number of entries.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Capacity returns the maximum number of entries.
func (r *Ring) Capacity() int {
	return r.capacity
}

// Clear removes all entries.
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.entries)
	r.head = 0
	r.tail = 0
	r.size = 0
}

// Load reads the ring persisted at path. A missing file yields an empty
// ring. When the file holds more entries than capacity, the newest are kept.
func Load(path string, capacity int) (*Ring, error) {
	r := New(capacity)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading recent uploads: %w", err)
	}
	if len(data) == 0 {
		return r, nil
	}

	// Stored oldest first so replaying pushes restores order.
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing recent uploads %s: %w", path, err)
	}
	for _, e := range entries {
		r.push(e)
	}
	return r, nil
}

// Save writes the ring to path, creating parent directories as needed.
func (r *Ring) Save(path string) error {
	r.mu.RLock()
	entries := make([]Entry, 0, r.size)
	for i := 0; i < r.size; i++ {
		entries = append(entries, r.entries[(r.head+i)%r.capacity])
	}
	r.mu.RUnlock()

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding recent uploads: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing recent uploads: %w", err)
	}
	return os.Rename(tmp, path)
}
