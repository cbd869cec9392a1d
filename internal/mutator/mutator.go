// Package mutator runs every write as one store transaction: optional
// per-parent locks, commit, error classification, metrics, then the
// change event. Nothing is published for a transaction that rolled back.
package mutator

import (
	"context"
	"log/slog"
	"time"

	"github.com/thenoetrevino/quadro/internal/database"
	"github.com/thenoetrevino/quadro/internal/events"
	"github.com/thenoetrevino/quadro/internal/locker"
	"github.com/thenoetrevino/quadro/internal/metrics"
	"github.com/thenoetrevino/quadro/internal/models"
)

// Func performs the writes of one mutation. A non-nil event is published
// once the transaction has committed.
type Func func(ctx context.Context, tx *database.Tx) (*events.Event, error)

// Mutator executes mutations against a store
type Mutator struct {
	store        *database.Store
	locker       locker.Locker
	publisher    events.Publisher
	metrics      *metrics.Metrics
	logger       *slog.Logger
	beforeCommit func(op string) error
}

// Option configures a Mutator
type Option func(*Mutator)

// WithLocker serializes mutations sharing a lock key
func WithLocker(l locker.Locker) Option {
	return func(m *Mutator) { m.locker = l }
}

// WithPublisher sets where committed change events go
func WithPublisher(p events.Publisher) Option {
	return func(m *Mutator) { m.publisher = p }
}

// WithMetrics records per-op counts and latency
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Mutator) { m.metrics = mt }
}

// WithLogger sets the logger used for failed mutations
func WithLogger(l *slog.Logger) Option {
	return func(m *Mutator) { m.logger = l }
}

// WithBeforeCommit installs a hook that runs after fn succeeds and before
// commit. A non-nil error aborts the transaction. Used by tests to inject
// failures between the last write and commit.
func WithBeforeCommit(hook func(op string) error) Option {
	return func(m *Mutator) { m.beforeCommit = hook }
}

// New creates a Mutator over store
func New(store *database.Store, opts ...Option) *Mutator {
	m := &Mutator{
		store:     store,
		publisher: events.Discard{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NeedsKeys reports whether lock keys are used. Callers skip the pre-read
// of a mutation's parents when it is false.
func (m *Mutator) NeedsKeys() bool {
	return m.locker != nil
}

// Do runs fn in a single transaction. Lock keys are acquired in sorted
// order before the transaction begins. Returned errors are always
// classified; conflicts are surfaced, never retried.
func (m *Mutator) Do(ctx context.Context, op string, keys []string, fn Func) error {
	start := time.Now()
	event, err := m.run(ctx, op, keys, fn)
	m.metrics.ObserveMutation(op, outcome(err), time.Since(start))

	if err != nil {
		m.logFailure(op, err)
		return err
	}

	if event != nil {
		if event.Op == "" {
			event.Op = op
		}
		if perr := m.publisher.Publish(*event); perr != nil {
			m.logger.Warn("failed to publish change event", "op", op, "board_id", event.BoardID, "error", perr)
		}
	}
	return nil
}

func (m *Mutator) run(ctx context.Context, op string, keys []string, fn Func) (*events.Event, error) {
	if m.locker != nil && len(keys) > 0 {
		release, err := m.locker.Lock(ctx, keys)
		if err != nil {
			return nil, database.Classify(err)
		}
		defer release()
	}

	var event *events.Event
	err := m.store.WithTx(ctx, func(tx *database.Tx) error {
		ev, err := fn(ctx, tx)
		if err != nil {
			return err
		}
		if m.beforeCommit != nil {
			if err := m.beforeCommit(op); err != nil {
				return err
			}
		}
		event = ev
		return nil
	})
	if err != nil {
		return nil, database.Classify(err)
	}
	return event, nil
}

// View runs a read-only transaction
func (m *Mutator) View(ctx context.Context, fn func(*database.Tx) error) error {
	return m.store.View(ctx, fn)
}

func (m *Mutator) logFailure(op string, err error) {
	switch models.KindOf(err) {
	case models.KindNotFound, models.KindValidation, models.KindUnauthorized:
		m.logger.Debug("mutation rejected", "op", op, "error", err)
	case models.KindConflict:
		m.logger.Warn("mutation conflicted", "op", op, "error", err)
	default:
		m.logger.Error("mutation failed", "op", op, "error", err)
	}
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	switch models.KindOf(err) {
	case models.KindNotFound, models.KindUnauthorized:
		return metrics.OutcomeNotFound
	case models.KindValidation:
		return metrics.OutcomeValidation
	case models.KindConflict:
		return metrics.OutcomeConflict
	default:
		return metrics.OutcomeError
	}
}
