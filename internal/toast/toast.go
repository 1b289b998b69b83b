// Package toast holds the notification queue shared by every page: an ordered
// list of short-lived messages, each with its own cancellable expiry timer.
package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Severity classifies a notification.
type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Error   Severity = "error"
)

// DefaultExpiry applies when neither the queue nor the push sets one.
const DefaultExpiry = 3 * time.Second

// Notification is one queued message. Expiry 0 means it stays until dismissed.
type Notification struct {
	ID        string
	Message   string
	Severity  Severity
	Expiry    time.Duration
	CreatedAt time.Time
}

// Queue is safe for concurrent use. Insertion order is display order and
// removal never reorders the remaining entries.
type Queue struct {
	mu      sync.Mutex
	items   []Notification
	timers  map[string]*time.Timer
	issued  map[string]struct{}
	closed  bool
	changes chan struct{}

	defaultExpiry time.Duration
	newID         func() string
	logger        zerolog.Logger
	now           func() time.Time
}

// Option configures a Queue.
type Option func(*Queue)

// WithDefaultExpiry sets the expiry used by pushes that do not choose one.
func WithDefaultExpiry(d time.Duration) Option {
	return func(q *Queue) {
		if d >= 0 {
			q.defaultExpiry = d
		}
	}
}

// WithIDFunc replaces the uuid id generator.
func WithIDFunc(fn func() string) Option {
	return func(q *Queue) { q.newID = fn }
}

// WithLogger logs every push and dismissal.
func WithLogger(l zerolog.Logger) Option {
	return func(q *Queue) { q.logger = l }
}

// NewQueue creates an empty queue.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		timers:        make(map[string]*time.Timer),
		issued:        make(map[string]struct{}),
		changes:       make(chan struct{}, 1),
		defaultExpiry: DefaultExpiry,
		newID:         uuid.NewString,
		logger:        zerolog.Nop(),
		now:           time.Now,
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

// PushOption adjusts a single Push.
type PushOption func(*Notification)

// WithSeverity sets the severity (default Info).
func WithSeverity(s Severity) PushOption {
	return func(n *Notification) { n.Severity = s }
}

// WithExpiry sets how long the notification stays. 0 keeps it until dismissed.
func WithExpiry(d time.Duration) PushOption {
	return func(n *Notification) {
		if d >= 0 {
			n.Expiry = d
		}
	}
}

// Push appends a notification and returns its id. When the expiry is
// positive a timer removes exactly this id once it elapses, unless it was
// dismissed first.
func (q *Queue) Push(msg string, opts ...PushOption) string {
	n := Notification{
		Message:  msg,
		Severity: Info,
		Expiry:   q.defaultExpiry,
	}
	for _, o := range opts {
		o(&n)
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ""
	}
	n.ID = q.uniqueIDLocked()
	n.CreatedAt = q.now()
	q.items = append(q.items, n)
	if n.Expiry > 0 {
		id := n.ID
		q.timers[id] = time.AfterFunc(n.Expiry, func() { q.expire(id) })
	}
	q.mu.Unlock()

	q.logger.Info().
		Str("id", n.ID).
		Str("severity", string(n.Severity)).
		Dur("expiry", n.Expiry).
		Msg(n.Message)
	q.notify()
	return n.ID
}

// Info pushes an info notification with the default expiry.
func (q *Queue) Info(msg string) string { return q.Push(msg, WithSeverity(Info)) }

// Success pushes a success notification with the default expiry.
func (q *Queue) Success(msg string) string { return q.Push(msg, WithSeverity(Success)) }

// Error pushes an error notification with the default expiry.
func (q *Queue) Error(msg string) string { return q.Push(msg, WithSeverity(Error)) }

// Dismiss removes the notification with id and cancels its timer. Unknown,
// expired and already dismissed ids are ignored.
func (q *Queue) Dismiss(id string) {
	if q.remove(id) {
		q.logger.Debug().Str("id", id).Msg("notification dismissed")
		q.notify()
	}
}

// DismissOldest removes the first notification, if any.
func (q *Queue) DismissOldest() {
	q.mu.Lock()
	if len(q.items) == 0 {
		q.mu.Unlock()
		return
	}
	id := q.items[0].ID
	q.mu.Unlock()
	q.Dismiss(id)
}

// Items returns a snapshot in insertion order.
func (q *Queue) Items() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

// Len reports the number of live notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Changes signals after every push, dismissal or expiry. Signals coalesce:
// a reader that falls behind sees one pending signal, not one per change.
// The channel is closed by Close.
func (q *Queue) Changes() <-chan struct{} {
	return q.changes
}

// Close stops all pending timers. Later pushes are ignored.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
	close(q.changes)
}

func (q *Queue) expire(id string) {
	if q.remove(id) {
		q.logger.Debug().Str("id", id).Msg("notification expired")
		q.notify()
	}
}

func (q *Queue) remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// maxIDAttempts bounds how often a custom id func may repeat itself before
// the queue falls back to uuids.
const maxIDAttempts = 16

// uniqueIDLocked draws ids until one has never been issued by this queue.
func (q *Queue) uniqueIDLocked() string {
	gen := q.newID
	for attempt := 0; ; attempt++ {
		if attempt == maxIDAttempts {
			gen = uuid.NewString
		}
		id := gen()
		if _, dup := q.issued[id]; dup || id == "" {
			continue
		}
		q.issued[id] = struct{}{}
		return id
	}
}

func (q *Queue) notify() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	select {
	case q.changes <- struct{}{}:
	default:
	}
}
