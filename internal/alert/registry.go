package alert

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/taskify_api/internal/models"
)

// Registry owns one Reconciler per session. Stock changes fan out to every
// session; dismissals stay local to the session that made them.
type Registry struct {
	opts Options

	mu       sync.RWMutex
	sessions map[string]*Reconciler
}

// NewRegistry creates an empty registry. opts is applied to every reconciler
// it creates.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:     opts.withDefaults(),
		sessions: make(map[string]*Reconciler),
	}
}

// For returns the reconciler for owner, creating it when missing. created is
// true when a new, empty reconciler was made so the caller can seed it.
func (g *Registry) For(owner string) (rec *Reconciler, created bool) {
	g.mu.RLock()
	rec, ok := g.sessions[owner]
	g.mu.RUnlock()
	if ok {
		return rec, false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if rec, ok = g.sessions[owner]; ok {
		return rec, false
	}
	rec = NewReconciler(owner, g.opts)
	g.sessions[owner] = rec
	log.Debug().Str("owner", owner).Int("sessions", len(g.sessions)).Msg("alert session created")
	return rec, true
}

// ProductChanged runs ReconcileOne for p in every session. Fan-out does not
// count as session use for EvictIdle.
func (g *Registry) ProductChanged(p models.Product) {
	for _, rec := range g.snapshot() {
		rec.reconcileOne(p, false)
	}
}

// SnapshotChanged runs ReconcileAll against products in every session
// without marking them used.
func (g *Registry) SnapshotChanged(products []models.Product) {
	for _, rec := range g.snapshot() {
		rec.reconcileAll(products, false)
	}
}

// EvictIdle closes and forgets sessions unused for longer than maxIdle.
// It returns the number of sessions evicted.
func (g *Registry) EvictIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	now := g.opts.Clock.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	evicted := 0
	for owner, rec := range g.sessions {
		if now.Sub(rec.LastUsed()) > maxIdle {
			rec.Close()
			delete(g.sessions, owner)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of live sessions.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.sessions)
}

// Close closes every session.
func (g *Registry) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for owner, rec := range g.sessions {
		rec.Close()
		delete(g.sessions, owner)
	}
}

func (g *Registry) snapshot() []*Reconciler {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Reconciler, 0, len(g.sessions))
	for _, rec := range g.sessions {
		out = append(out, rec)
	}
	return out
}
