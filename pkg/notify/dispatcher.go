package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultDuration is how long a toast stays visible.
const DefaultDuration = 4 * time.Second

// Kind classifies a toast.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Toast is a transient notification shown to one scope (usually a browser
// session or terminal run).
type Toast struct {
	ID        string    `json:"id"`
	Scope     string    `json:"scope"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Notifier is the interface pages and controllers use to surface toasts.
type Notifier interface {
	Push(scope string, kind Kind, message string) Toast
}

// Dispatcher is the process-wide toast queue.
type Dispatcher struct {
	mu       sync.Mutex
	duration time.Duration
	now      func() time.Time
	logger   *zap.Logger
	queue    []Toast
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithDuration sets the display duration.
func WithDuration(duration time.Duration) Option {
	return func(d *Dispatcher) {
		if duration > 0 {
			d.duration = duration
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		duration: DefaultDuration,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Duration reports the configured display duration.
func (d *Dispatcher) Duration() time.Duration {
	return d.duration
}

// Push enqueues a toast for scope.
func (d *Dispatcher) Push(scope string, kind Kind, message string) Toast {
	now := d.now()
	toast := Toast{
		ID:        uuid.NewString(),
		Scope:     scope,
		Message:   message,
		Kind:      kind,
		CreatedAt: now,
		ExpiresAt: now.Add(d.duration),
	}
	d.mu.Lock()
	d.pruneLocked(now)
	d.queue = append(d.queue, toast)
	d.mu.Unlock()

	d.logger.Debug("toast pushed",
		zap.String("id", toast.ID),
		zap.String("scope", scope),
		zap.String("kind", string(kind)),
	)
	return toast
}

// Active returns the unexpired toasts for scope, oldest first.
func (d *Dispatcher) Active(scope string) []Toast {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pruneLocked(d.now())
	var out []Toast
	for _, toast := range d.queue {
		if toast.Scope == scope {
			out = append(out, toast)
		}
	}
	return out
}

// Dismiss removes a toast early. It reports whether the id was queued.
func (d *Dispatcher) Dismiss(id string) bool {
	return d.DismissIf(id, nil)
}

// DismissIf removes toast id only when owns accepts its scope; a nil owns
// accepts every scope. A toast in a foreign scope is reported as not found.
func (d *Dispatcher) DismissIf(id string, owns func(scope string) bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, toast := range d.queue {
		if toast.ID != id {
			continue
		}
		if owns != nil && !owns(toast.Scope) {
			return false
		}
		d.queue = append(d.queue[:i], d.queue[i+1:]...)
		return true
	}
	return false
}

// DropScope forgets every toast of scope.
func (d *Dispatcher) DropScope(scope string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.queue[:0]
	for _, toast := range d.queue {
		if toast.Scope != scope {
			kept = append(kept, toast)
		}
	}
	d.queue = kept
}

func (d *Dispatcher) pruneLocked(now time.Time) {
	kept := d.queue[:0]
	for _, toast := range d.queue {
		if now.Before(toast.ExpiresAt) {
			kept = append(kept, toast)
		}
	}
	d.queue = kept
}

// Scoped binds a Notifier to a fixed scope.
type Scoped struct {
	Notifier Notifier
	Scope    string
}

// Success pushes a success toast.
func (s Scoped) Success(message string) Toast {
	return s.Notifier.Push(s.Scope, KindSuccess, message)
}

// Error pushes an error toast.
func (s Scoped) Error(message string) Toast {
	return s.Notifier.Push(s.Scope, KindError, message)
}
