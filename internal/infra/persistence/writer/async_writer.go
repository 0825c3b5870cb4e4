// Package writer applies the store's persistence effects on a background goroutine.
package writer

import (
	"context"
	"log/slog"
	"sync"

	"campus/config"
	"campus/internal/domain/lifecycle"
	"campus/internal/domain/repository"
	"campus/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// ErrClosed is returned by Flush after the writer has been closed with effects still pending.
var ErrClosed = errors.New("snapshot writer closed")

// asyncWriter keeps at most one pending effect per key. Keys are written in the
// order they were first enqueued; a later snapshot for a pending key replaces the
// earlier one, so durable state converges on the newest in-memory state.
type asyncWriter struct {
	store  repository.KVStore
	logger *slog.Logger

	mu       sync.Mutex
	pending  map[string]service.PersistEffect
	order    []string
	busy     bool
	closed   bool
	barriers []chan struct{}

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

// New starts a writer over store. Call Close to drain and stop it.
func New(store repository.KVStore, logger *slog.Logger) *asyncWriter {
	w := &asyncWriter{
		store:   store,
		logger:  logger.With(slog.String("component", "snapshot_writer")),
		pending: make(map[string]service.PersistEffect),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go w.run()

	return w
}

// Params holds dependencies for the writer, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Store  repository.KVStore
	Logger *slog.Logger
}

// NewSnapshotWriter provides the writer to Fx and drains it on shutdown.
func NewSnapshotWriter(params Params) service.SnapshotWriter {
	w := New(params.Store, params.Logger)

	drainTimeout := params.Config.Writer.DrainTimeout
	if drainTimeout <= 0 {
		drainTimeout = lifecycle.DefaultTimeout
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			drainCtx, cancel := context.WithTimeout(ctx, drainTimeout)
			defer cancel()

			return w.Close(drainCtx)
		},
	})

	return w
}

func (w *asyncWriter) Enqueue(effect service.PersistEffect) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Warn("Dropping persistence effect after close", slog.String("key", effect.Key))

		return
	}
	if _, ok := w.pending[effect.Key]; !ok {
		w.order = append(w.order, effect.Key)
	}
	w.pending[effect.Key] = effect
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *asyncWriter) Flush(ctx context.Context) error {
	w.mu.Lock()
	if len(w.order) == 0 && !w.busy {
		w.mu.Unlock()

		return nil
	}
	if w.closed {
		w.mu.Unlock()

		return ErrClosed
	}
	barrier := make(chan struct{})
	w.barriers = append(w.barriers, barrier)
	w.mu.Unlock()

	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "flush interrupted")
	}
}

func (w *asyncWriter) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()

		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.stop)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "snapshot writer did not drain in time")
	}
}

func (w *asyncWriter) run() {
	defer close(w.done)

	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.stop:
			w.drain()

			return
		}
	}
}

// drain applies pending effects until none remain, then releases waiting Flush calls.
func (w *asyncWriter) drain() {
	for {
		w.mu.Lock()
		if len(w.order) == 0 {
			w.busy = false
			barriers := w.barriers
			w.barriers = nil
			w.mu.Unlock()

			for _, barrier := range barriers {
				close(barrier)
			}

			return
		}

		key := w.order[0]
		w.order = w.order[1:]
		effect := w.pending[key]
		delete(w.pending, key)
		w.busy = true
		w.mu.Unlock()

		w.apply(effect)
	}
}

func (w *asyncWriter) apply(effect service.PersistEffect) {
	ctx := context.Background()

	var err error
	if effect.Remove {
		err = w.store.Remove(ctx, effect.Key)
	} else {
		err = w.store.Set(ctx, effect.Key, effect.Value)
	}

	if err != nil {
		// No retry: the next mutation of this key writes a fresh snapshot.
		w.logger.Warn("Failed to persist snapshot",
			slog.String("key", effect.Key),
			slog.Bool("remove", effect.Remove),
			slog.Any("error", err),
		)

		return
	}

	w.logger.Debug("Persisted snapshot", slog.String("key", effect.Key), slog.Bool("remove", effect.Remove))
}
