package status

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultRefreshInterval is how often a [Watcher] re-reads the network state.
	DefaultRefreshInterval = 15 * time.Second

	// fallbackLabel is shown when the network state cannot be determined.
	fallbackLabel = "Wi-Fi"

	// offlineLabel is shown when the host reports no connection.
	offlineLabel = "Offline"
)

// NetworkState describes the host's current network connection.
type NetworkState struct {
	// Connected reports whether the host has any connection. The zero
	// value means disconnected, so the zero NetworkState is labelled
	// "Offline". Sources that cannot tell must report true; the config
	// loader does this when network.connected is omitted.
	Connected bool

	// SSID is the wireless network name, if known.
	SSID string

	// Type is the connection type (e.g. "wifi", "cellular"), if known.
	Type string
}

// NetworkSource reports the host's current network state.
//
// Implementations are supplied by the host platform. valvedash itself never
// performs network access.
type NetworkSource interface {
	NetworkState(ctx context.Context) (NetworkState, error)
}

// StaticSource is a [NetworkSource] that always reports the same state.
type StaticSource NetworkState

// NetworkState implements [NetworkSource].
func (s StaticSource) NetworkState(context.Context) (NetworkState, error) {
	return NetworkState(s), nil
}

// NetworkLabel derives the display label for a network state.
//
// A connected host shows its SSID, falling back to the upper-cased
// connection type and then to "Wi-Fi". A disconnected host shows "Offline".
func NetworkLabel(state NetworkState) string {
	if !state.Connected {
		return offlineLabel
	}
	if ssid := strings.TrimSpace(state.SSID); ssid != "" {
		return ssid
	}
	if typ := strings.TrimSpace(state.Type); typ != "" {
		return strings.ToUpper(typ)
	}
	return fallbackLabel
}

// Watcher periodically refreshes the network label held by a [Store].
//
// The watcher reads the [NetworkSource] immediately on start and then at
// every interval. A failed read leaves the current label untouched, except
// that an empty label is replaced by "Wi-Fi".
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Watcher struct {
	store    *Store
	source   NetworkSource
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewWatcher creates a [Watcher] that writes into st.
//
// A non-positive interval selects [DefaultRefreshInterval]. A nil logger
// selects slog.Default().
func NewWatcher(st *Store, source NetworkSource, interval time.Duration, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		store:    st,
		source:   source,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the refresh loop in a background goroutine.
//
// Start is idempotent. If Stop was called before Start, Start is a no-op.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started || w.stopped {
		w.mu.Unlock()
		return
	}
	w.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()

		w.Refresh(ctx)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.Refresh(ctx)
			}
		}
	}()
}

// Stop halts the refresh loop and waits for it to exit.
// Stop is idempotent and safe to call before Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		if w.cancel != nil {
			w.cancel()
		}
	}
	w.mu.Unlock()

	w.wg.Wait()
}

// Refresh reads the network source once and updates the store.
func (w *Watcher) Refresh(ctx context.Context) {
	state, err := w.safeRead(ctx)
	if err != nil {
		w.logger.Debug("network state unavailable", "error", err)
		if w.store.WifiName() == "" {
			w.store.SetWifiName(fallbackLabel)
		}
		return
	}

	label := NetworkLabel(state)
	if label == w.store.WifiName() {
		return
	}
	w.store.SetWifiName(label)
}

// safeRead calls the source with panic recovery.
func (w *Watcher) safeRead(ctx context.Context) (state NetworkState, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			w.logger.Error("network source panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("network source panic (correlation_id: %s)", correlationID)
		}
	}()
	if w.source == nil {
		return NetworkState{}, fmt.Errorf("no network source configured")
	}
	return w.source.NetworkState(ctx)
}
