package status

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
)

// watchBuffer is the channel buffer size used by [Store.Watch].
const watchBuffer = 16

// Snapshot is a point-in-time copy of every field held by a [Store].
type Snapshot struct {
	// WifiName is the display label for the current network.
	WifiName string `json:"wifi_name"`

	// Health is the aggregate system health.
	Health Health `json:"health"`
}

// Listener is a zero-argument notification callback.
//
// Listeners read the fields they care about back from the store. They may
// call any method, setters included. A setter called from inside a listener
// stores its value and returns at once; the notification pass already in
// progress runs every listener again once the current pass finishes.
type Listener func()

type registration struct {
	id uint64
	fn Listener
}

// Store is the process-wide observable status container.
//
// Store is safe for concurrent use. Every setter replaces its field and then
// invokes all registered listeners before returning. Only one goroutine
// notifies at a time: a setter that finds a notification pass running marks
// the store pending and returns, and the running pass repeats until no
// change is pending. Listeners therefore never run concurrently with each
// other, and each pass reads the latest values.
type Store struct {
	mu        sync.RWMutex
	wifiName  string
	health    Health
	listeners []registration
	nextID    uint64

	emitting bool
	pending  bool

	logger *slog.Logger
}

// Option configures a [Store] during construction.
type Option func(*Store)

// WithLogger sets the logger used for listener panics and invalid values.
// A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithInitialWifiName seeds the network label before any listener exists.
func WithInitialWifiName(name string) Option {
	return func(s *Store) {
		s.wifiName = name
	}
}

// New creates a [Store] with default values: an empty network label and
// [HealthGood].
func New(opts ...Option) *Store {
	s := &Store{
		health: HealthGood,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WifiName returns the last network label set, or "" if never set.
func (s *Store) WifiName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wifiName
}

// Health returns the last health value set, or [HealthGood] if never set.
func (s *Store) Health() Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.health
}

// Snapshot returns a consistent copy of all fields.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{WifiName: s.wifiName, Health: s.health}
}

// SetWifiName replaces the network label and notifies every listener.
func (s *Store) SetWifiName(name string) {
	s.set(func() { s.wifiName = name })
}

// SetHealth replaces the health value and notifies every listener.
//
// A value outside the enumeration is a caller error. It is stored as
// [HealthGood] and logged rather than rejected, so the status bus never
// fails at runtime.
func (s *Store) SetHealth(h Health) {
	if !h.Valid() {
		s.logger.Warn("invalid health value, falling back to good", "health", string(h))
		h = HealthGood
	}

	s.set(func() { s.health = h })
}

// Subscribe registers a listener and returns a function that removes it.
//
// Each call creates a separate registration, so the same function may be
// subscribed more than once and each registration is removed independently.
// The returned unsubscribe function is idempotent.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, registration{id: id, fn: l})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

// Watch returns a channel that receives a [Snapshot] after every change.
//
// The channel is buffered; if the consumer falls behind, snapshots are
// dropped rather than blocking the setter. The channel is closed once ctx
// is done.
func (s *Store) Watch(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, watchBuffer)

	var closeMu sync.Mutex
	closed := false

	unsubscribe := s.Subscribe(func() {
		snap := s.Snapshot()
		closeMu.Lock()
		defer closeMu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- snap:
		default:
			// consumer is slow, drop the snapshot
		}
	})

	go func() {
		<-ctx.Done()
		unsubscribe()
		closeMu.Lock()
		closed = true
		close(ch)
		closeMu.Unlock()
	}()

	return ch
}

// Len returns the number of active listener registrations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners)
}

func (s *Store) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.listeners {
		if r.id == id {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

// set applies update under the write lock and then drains notifications,
// unless another call is already draining.
func (s *Store) set(update func()) {
	s.mu.Lock()
	update()
	s.pending = true
	if s.emitting {
		s.mu.Unlock()
		return
	}
	s.emitting = true
	s.mu.Unlock()

	s.drain()
}

// drain runs notification passes until no change is pending. Each pass
// invokes a copy of the listener list in subscription order.
func (s *Store) drain() {
	for {
		s.mu.Lock()
		if !s.pending {
			s.emitting = false
			s.mu.Unlock()
			return
		}
		s.pending = false
		listeners := make([]registration, len(s.listeners))
		copy(listeners, s.listeners)
		s.mu.Unlock()

		for _, r := range listeners {
			s.invokeSafe(r.fn)
		}
	}
}

// invokeSafe calls a listener with panic recovery.
// Panics are logged with a correlation ID and do not propagate.
func (s *Store) invokeSafe(l Listener) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("status listener panicked",
				"correlation_id", uuid.NewString(),
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	l()
}
