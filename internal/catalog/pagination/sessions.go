// internal/catalog/pagination/sessions.go
package pagination

import (
	"sync"
	"time"

	"course-workers/internal/common/logger"
	"course-workers/internal/models"
)

type sessionEntry struct {
	loader   *Loader
	lastUsed time.Time
}

// Sessions keeps one Loader per browse session so that successive page
// requests continue the same cursor. Sessions unused for longer than the
// idle timeout are evicted.
type Sessions struct {
	mu       sync.Mutex
	fetcher  Fetcher
	pageSize int
	idle     time.Duration
	entries  map[string]*sessionEntry
	now      func() time.Time
	base     logger.Logger
	logger   logger.Logger
}

func NewSessions(f Fetcher, pageSize int, idle time.Duration, log logger.Logger) *Sessions {
	return &Sessions{
		fetcher:  f,
		pageSize: ClampPageSize(pageSize),
		idle:     idle,
		entries:  make(map[string]*sessionEntry),
		now:      time.Now,
		base:     log,
		logger:   logger.Component(log, "page-sessions"),
	}
}

// Loader returns the session's loader, creating it on first use. A changed
// query context or page size resets the loader. pageSize <= 0 keeps the
// session's current size.
func (s *Sessions) Loader(sessionID string, query models.CatalogQuery, pageSize int) *Loader {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictLocked(now)

	query = query.Normalize()
	entry, ok := s.entries[sessionID]
	if !ok {
		size := s.pageSize
		if pageSize > 0 {
			size = ClampPageSize(pageSize)
		}
		entry = &sessionEntry{loader: NewLoader(s.fetcher, query, size, s.base)}
		s.entries[sessionID] = entry
	} else {
		size := 0
		if pageSize > 0 && ClampPageSize(pageSize) != entry.loader.Cursor().PageSize {
			size = ClampPageSize(pageSize)
		}
		if size > 0 || !query.Equal(entry.loader.Query()) {
			s.logger.Debug("query context changed, resetting session", map[string]interface{}{
				"sessionId": sessionID,
				"query":     query.Key(),
			})
			entry.loader.reset(query, size)
		}
	}
	entry.lastUsed = now
	return entry.loader
}

// Remove drops a session, cancelling its request in flight.
func (s *Sessions) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[sessionID]; ok {
		entry.loader.Reset(entry.loader.Query())
		delete(s.entries, sessionID)
	}
}

// Sweep evicts idle sessions and returns how many were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked(s.now())
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Sessions) evictLocked(now time.Time) int {
	if s.idle <= 0 {
		return 0
	}
	evicted := 0
	for id, entry := range s.entries {
		if now.Sub(entry.lastUsed) > s.idle {
			entry.loader.Reset(entry.loader.Query())
			delete(s.entries, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Debug("evicted idle sessions", map[string]interface{}{"count": evicted})
	}
	return evicted
}
