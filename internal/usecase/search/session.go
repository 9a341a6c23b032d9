package search

import (
	"context"
	"sync"

	"github.com/kailas-cloud/trialscout/internal/domain"
	"github.com/kailas-cloud/trialscout/internal/domain/search/criteria"
	"github.com/kailas-cloud/trialscout/internal/domain/search/request"
	"github.com/kailas-cloud/trialscout/internal/domain/search/result"
)

// Session arbitrates one client's searches: last request wins. A full-set
// fetch that completes after a newer search has been issued is discarded on
// arrival, and a fresh search (new zip, radius, or date range) clears any
// active filter before running.
type Session struct {
	svc *Service

	mu       sync.Mutex
	gen      uint64
	hasScope bool
	scope    request.Request
}

// NewSession creates a session over the search service.
func NewSession(svc *Service) *Session {
	return &Session{svc: svc}
}

// Search runs one search through the session. Returns domain.ErrStaleSearch
// when a newer search was issued while this one was in flight; stale results
// never reach the caller.
func (s *Session) Search(ctx context.Context, req request.Request) (result.Page, error) {
	s.mu.Lock()
	if s.hasScope && !s.scope.SameScope(req) {
		// New search clears old filters: the request runs with the identity
		// criteria before any constraint can apply to the new pool.
		req = req.WithFilter(criteria.Identity())
	}
	s.gen++
	gen := s.gen
	s.scope = req
	s.hasScope = true
	s.mu.Unlock()

	page, err := s.svc.Search(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return result.Page{}, domain.ErrStaleSearch
	}
	if err != nil {
		return result.Page{}, err
	}
	return page, nil
}

// maxSessions bounds the registry; beyond it the oldest state is dropped
// wholesale. Sessions are cheap to rebuild (one cleared filter at worst).
const maxSessions = 10000

// Registry hands out per-client sessions keyed by an opaque session id.
type Registry struct {
	svc *Service

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates a session registry over the search service.
func NewRegistry(svc *Service) *Registry {
	return &Registry{svc: svc, sessions: make(map[string]*Session)}
}

// Session returns the session for the given id, creating it if needed.
func (r *Registry) Session(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		return s
	}
	if len(r.sessions) >= maxSessions {
		r.sessions = make(map[string]*Session)
	}
	s := NewSession(r.svc)
	r.sessions[id] = s
	return s
}
