package alert

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GTDGit/taskify_api/internal/models"
)

const (
	titleLowStock    = "Low Stock Alert"
	titleReplenished = "Stock Replenished"
)

// Timer is the handle returned by Clock.AfterFunc.
type Timer interface {
	Stop() bool
}

// Clock abstracts time so expiry can be driven deterministically.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Publisher receives every change to a session's active alert set. It is
// called with the reconciler lock held, so it must not block or call back
// into the reconciler.
type Publisher interface {
	AlertRaised(owner string, a Alert)
	AlertRemoved(owner string, a Alert, reason RemovalReason)
}

type nopPublisher struct{}

func (nopPublisher) AlertRaised(string, Alert)                 {}
func (nopPublisher) AlertRemoved(string, Alert, RemovalReason) {}

// NoExpiry passed as Alert.AutoExpire to Add keeps the alert until it is
// dismissed. A zero AutoExpire means the default TTL.
const NoExpiry time.Duration = -1

// Options configures reconcilers. Zero TTLs disable expiry for that kind.
type Options struct {
	DefaultTTL     time.Duration
	LowStockTTL    time.Duration
	ReplenishedTTL time.Duration

	Clock     Clock
	Publisher Publisher
	NewID     func() string
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = realClock{}
	}
	if o.Publisher == nil {
		o.Publisher = nopPublisher{}
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

type entry struct {
	alert Alert
	timer Timer
}

// Reconciler holds the active alerts of one session. All methods are safe
// for concurrent use and each is atomic with respect to the alert set.
type Reconciler struct {
	owner string
	opts  Options

	mu       sync.Mutex
	entries  []*entry
	byID     map[string]*entry
	lowStock map[int]*entry
	lastUsed time.Time
	seeded   bool
	closed   bool
}

// NewReconciler creates an empty reconciler for owner.
func NewReconciler(owner string, opts Options) *Reconciler {
	opts = opts.withDefaults()
	return &Reconciler{
		owner:    owner,
		opts:     opts,
		byID:     make(map[string]*entry),
		lowStock: make(map[int]*entry),
		lastUsed: opts.Clock.Now(),
	}
}

// Owner returns the session key this reconciler was created for.
func (r *Reconciler) Owner() string { return r.owner }

// ReconcileAll treats products as the authoritative snapshot. It raises a
// LowStock alert for every low product that has none and retracts every
// LowStock alert whose product is no longer low or no longer present.
// Other alerts are left alone. It returns the low-stock subset.
func (r *Reconciler) ReconcileAll(products []models.Product) []models.Product {
	return r.reconcileAll(products, true)
}

func (r *Reconciler) reconcileAll(products []models.Product, touch bool) []models.Product {
	low := make([]models.Product, 0)
	lowIDs := make(map[int]struct{})
	for i := range products {
		if products[i].IsLowStock() {
			low = append(low, products[i])
			lowIDs[products[i].ID] = struct{}{}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if touch {
		r.touchLocked()
	}
	r.seeded = true

	for id, e := range r.lowStock {
		if _, ok := lowIDs[id]; !ok {
			r.removeLocked(e, ReasonRetracted)
		}
	}
	for i := range low {
		if _, ok := r.lowStock[low[i].ID]; !ok {
			r.insertLocked(r.lowStockAlert(&low[i]))
		}
	}
	return low
}

// ReconcileOne applies a single product update incrementally. A low product
// without an alert gets one; a product above threshold that still has a
// LowStock alert has it retracted and a Replenished alert raised. Anything
// else, including a low product that is already alerted, is left as is.
func (r *Reconciler) ReconcileOne(p models.Product) {
	r.reconcileOne(p, true)
}

func (r *Reconciler) reconcileOne(p models.Product, touch bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if touch {
		r.touchLocked()
	}

	e, alerted := r.lowStock[p.ID]
	switch {
	case p.IsLowStock() && !alerted:
		r.insertLocked(r.lowStockAlert(&p))
	case !p.IsLowStock() && alerted:
		r.removeLocked(e, ReasonRetracted)
		r.insertLocked(Alert{
			ProductID:  p.ID,
			Kind:       KindReplenished,
			Title:      titleReplenished,
			Message:    replenishedMessage(&p),
			AutoExpire: r.opts.ReplenishedTTL,
		})
	}
}

// Add raises an arbitrary alert. Kind defaults to general and a zero
// AutoExpire to the default TTL; NoExpiry or any negative value keeps the
// alert until dismissed. A LowStock alert for an already alerted product
// returns the existing alert unchanged.
func (r *Reconciler) Add(a Alert) Alert {
	if a.Kind == "" {
		a.Kind = KindGeneral
	}
	switch {
	case a.AutoExpire == 0:
		a.AutoExpire = r.opts.DefaultTTL
	case a.AutoExpire < 0:
		a.AutoExpire = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.touchLocked()

	if a.Kind == KindLowStock && a.ProductID != 0 {
		if e, ok := r.lowStock[a.ProductID]; ok {
			return e.alert
		}
	}
	return r.insertLocked(a)
}

// Dismiss removes one alert by id.
func (r *Reconciler) Dismiss(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touchLocked()

	e, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	r.removeLocked(e, ReasonDismissed)
	return nil
}

// DismissAll removes every active alert.
func (r *Reconciler) DismissAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touchLocked()

	for len(r.entries) > 0 {
		r.removeLocked(r.entries[0], ReasonCleared)
	}
}

// DismissForProduct removes every alert that references productID and
// returns how many were removed.
func (r *Reconciler) DismissForProduct(productID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touchLocked()

	var matched []*entry
	for _, e := range r.entries {
		if e.alert.ProductID == productID {
			matched = append(matched, e)
		}
	}
	for _, e := range matched {
		r.removeLocked(e, ReasonDismissed)
	}
	return len(matched)
}

// List returns the active alerts in the order they were raised.
func (r *Reconciler) List() []Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touchLocked()

	out := make([]Alert, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.alert
	}
	return out
}

// Seeded reports whether the reconciler has received at least one full
// snapshot through ReconcileAll.
func (r *Reconciler) Seeded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seeded
}

// LastUsed returns when the reconciler was last operated on.
func (r *Reconciler) LastUsed() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastUsed
}

// Close stops every pending expiry and drops all alerts without publishing.
// A closed reconciler accepts calls but raises nothing.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	r.entries = nil
	r.byID = make(map[string]*entry)
	r.lowStock = make(map[int]*entry)
	r.closed = true
}

func (r *Reconciler) lowStockAlert(p *models.Product) Alert {
	return Alert{
		ProductID:  p.ID,
		Kind:       KindLowStock,
		Title:      titleLowStock,
		Message:    lowStockMessage(p),
		AutoExpire: r.opts.LowStockTTL,
	}
}

func (r *Reconciler) touchLocked() {
	r.lastUsed = r.opts.Clock.Now()
}

func (r *Reconciler) insertLocked(a Alert) Alert {
	if r.closed {
		return a
	}
	a.ID = r.opts.NewID()
	a.CreatedAt = r.opts.Clock.Now()

	e := &entry{alert: a}
	r.entries = append(r.entries, e)
	r.byID[a.ID] = e
	if a.Kind == KindLowStock && a.ProductID != 0 {
		r.lowStock[a.ProductID] = e
	}
	if a.AutoExpire > 0 {
		e.timer = r.opts.Clock.AfterFunc(a.AutoExpire, func() { r.expire(e) })
	}

	r.opts.Publisher.AlertRaised(r.owner, a)
	return a
}

// removeLocked drops e from every index, cancels its timer and publishes
// the removal.
func (r *Reconciler) removeLocked(e *entry, reason RemovalReason) {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	for i, cur := range r.entries {
		if cur == e {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
	delete(r.byID, e.alert.ID)
	if cur, ok := r.lowStock[e.alert.ProductID]; ok && cur == e {
		delete(r.lowStock, e.alert.ProductID)
	}

	r.opts.Publisher.AlertRemoved(r.owner, e.alert, reason)
}

// expire runs on the timer goroutine. An entry already removed by a
// dismissal or retraction is ignored.
func (r *Reconciler) expire(e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.byID[e.alert.ID]; !ok || cur != e {
		return
	}
	e.timer = nil
	r.removeLocked(e, ReasonExpired)
}
