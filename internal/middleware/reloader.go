package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// swapHandler holds the currently active handler chain for a hot-reloaded
// middleware. build produces a new chain around next; when it returns nil the
// previous chain stays active.
type swapHandler struct {
	next     http.Handler
	interval time.Duration
	build    func(ctx context.Context, next http.Handler) http.Handler

	mu      sync.RWMutex
	current http.Handler
}

func (s *swapHandler) wrap(next http.Handler) http.Handler {
	s.next = next
	s.reload(context.Background())
	return s
}

func (s *swapHandler) reload(ctx context.Context) {
	if s.next == nil {
		return
	}
	h := s.build(ctx, s.next)
	if h == nil {
		return
	}
	s.mu.Lock()
	s.current = h
	s.mu.Unlock()
}

// run reloads on every tick until ctx is cancelled.
func (s *swapHandler) run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reload(ctx)
		}
	}
}

func (s *swapHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.mu.RLock()
	h := s.current
	s.mu.RUnlock()
	if h != nil {
		h.ServeHTTP(w, req)
		return
	}
	if s.next != nil {
		s.next.ServeHTTP(w, req)
	}
}
