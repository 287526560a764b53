// Package store provides logs.Store implementations: an in-memory store and
// a JSON-file store that snapshots the in-memory state after every change.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/bimmerbailey/logshare/internal/logs"
)

// ErrNotFound is returned for unknown log and comment ids.
var ErrNotFound = logs.ErrNotFound

// MemoryStore is an in-memory implementation of logs.Store.
type MemoryStore struct {
	mu       sync.RWMutex
	logs     map[string]logs.Log
	order    []string // log ids in creation order
	comments map[string]logs.Comment
	byLog    map[string][]string // comment ids per log, in creation order
}

var _ logs.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		logs:     make(map[string]logs.Log),
		comments: make(map[string]logs.Comment),
		byLog:    make(map[string][]string),
	}
}

// CreateLog stores a new log. The id must be unused.
func (s *MemoryStore) CreateLog(_ context.Context, l logs.Log) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.logs[l.ID]; ok {
		return fmt.Errorf("log %s already exists", l.ID)
	}
	s.logs[l.ID] = cloneLog(l)
	s.order = append(s.order, l.ID)
	return nil
}

// GetLog retrieves a log by id.
func (s *MemoryStore) GetLog(_ context.Context, id string) (logs.Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.logs[id]
	if !ok {
		return logs.Log{}, ErrNotFound
	}
	return cloneLog(l), nil
}

// UpdateLog applies fn to a stored log.
func (s *MemoryStore) UpdateLog(_ context.Context, id string, fn func(*logs.Log)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.logs[id]
	if !ok {
		return ErrNotFound
	}
	fn(&l)
	l.ID = id
	s.logs[id] = l
	return nil
}

// DeleteLog removes a log and its comments.
func (s *MemoryStore) DeleteLog(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.logs[id]; !ok {
		return ErrNotFound
	}
	delete(s.logs, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	for _, cid := range s.byLog[id] {
		delete(s.comments, cid)
	}
	delete(s.byLog, id)
	return nil
}

// Logs returns every stored log in creation order.
func (s *MemoryStore) Logs(_ context.Context) ([]logs.Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]logs.Log, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneLog(s.logs[id]))
	}
	return out, nil
}

// CreateComment stores a comment on an existing log.
func (s *MemoryStore) CreateComment(_ context.Context, c logs.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.logs[c.LogID]; !ok {
		return ErrNotFound
	}
	if _, ok := s.comments[c.ID]; ok {
		return fmt.Errorf("comment %s already exists", c.ID)
	}
	c.Replies = nil
	s.comments[c.ID] = c
	s.byLog[c.LogID] = append(s.byLog[c.LogID], c.ID)
	return nil
}

// GetComment retrieves a comment by id.
func (s *MemoryStore) GetComment(_ context.Context, id string) (logs.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return logs.Comment{}, ErrNotFound
	}
	return c, nil
}

// Comments returns the comments of a log in creation order. An unknown log
// has no comments.
func (s *MemoryStore) Comments(_ context.Context, logID string) ([]logs.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byLog[logID]
	out := make([]logs.Comment, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.comments[id])
	}
	return out, nil
}

// DeleteComments removes the given comments. Unknown ids are ignored.
func (s *MemoryStore) DeleteComments(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	touched := make(map[string]struct{})
	for _, id := range ids {
		c, ok := s.comments[id]
		if !ok {
			continue
		}
		drop[id] = struct{}{}
		touched[c.LogID] = struct{}{}
		delete(s.comments, id)
	}

	for logID := range touched {
		kept := s.byLog[logID][:0]
		for _, cid := range s.byLog[logID] {
			if _, gone := drop[cid]; !gone {
				kept = append(kept, cid)
			}
		}
		s.byLog[logID] = kept
	}
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// state is a copy of a MemoryStore's contents.
type state struct {
	logs     map[string]logs.Log
	order    []string
	comments map[string]logs.Comment
	byLog    map[string][]string
}

func (s *MemoryStore) save() state {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := state{
		logs:     make(map[string]logs.Log, len(s.logs)),
		order:    append([]string(nil), s.order...),
		comments: make(map[string]logs.Comment, len(s.comments)),
		byLog:    make(map[string][]string, len(s.byLog)),
	}
	for id, l := range s.logs {
		st.logs[id] = cloneLog(l)
	}
	for id, c := range s.comments {
		st.comments[id] = c
	}
	for id, cids := range s.byLog {
		st.byLog[id] = append([]string(nil), cids...)
	}
	return st
}

func (s *MemoryStore) restore(st state) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = st.logs
	s.order = st.order
	s.comments = st.comments
	s.byLog = st.byLog
}

// cloneLog copies the metadata map so callers cannot mutate stored state.
func cloneLog(l logs.Log) logs.Log {
	if l.Metadata != nil {
		meta := make(map[string]any, len(l.Metadata))
		for k, v := range l.Metadata {
			meta[k] = v
		}
		l.Metadata = meta
	}
	if l.ExpiresAt != nil {
		exp := *l.ExpiresAt
		l.ExpiresAt = &exp
	}
	return l
}
