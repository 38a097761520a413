// Package stream implements live subscriptions against the document store.
// Each subscription wraps one query and pushes the complete current result
// set downstream whenever the collection changes.
package stream

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shifa-care/shifa-api/internal/observability"
	"github.com/shifa-care/shifa-api/internal/store"
)

const (
	defaultSnapshotBuffer = 8
	errorBuffer           = 4
)

// Snapshot is one full-result-set push for a single collection. It replaces,
// never amends, whatever snapshot the consumer holds for that collection.
type Snapshot struct {
	Collection string
	Docs       []store.Document
	Seq        uint64
	At         time.Time
}

// Options tunes a subscription.
type Options struct {
	Logger zerolog.Logger
	Buffer int
}

// Subscription is an explicit live-query handle with Start/Cancel semantics,
// deliberately decoupled from any presentation component's lifetime.
type Subscription struct {
	id     string
	source store.Store
	query  store.Query
	logger zerolog.Logger

	alive      atomic.Bool
	cancelOnce sync.Once
	stop       chan struct{}

	snapshots chan Snapshot
	errs      chan error
	seq       atomic.Uint64
	now       func() time.Time
}

// Subscribe prepares a live query. Nothing runs until Start is called.
func Subscribe(source store.Store, query store.Query, opts Options) *Subscription {
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = defaultSnapshotBuffer
	}

	sub := &Subscription{
		id:        uuid.NewString(),
		source:    source,
		query:     query,
		logger:    opts.Logger.With().Str("component", "subscription").Str("collection", query.Collection).Logger(),
		stop:      make(chan struct{}),
		snapshots: make(chan Snapshot, buffer),
		errs:      make(chan error, errorBuffer),
		now:       time.Now,
	}
	sub.alive.Store(true)
	return sub
}

// ID identifies the subscription for logging.
func (s *Subscription) ID() string { return s.id }

// Snapshots is the downstream delivery channel. It is closed after Cancel.
func (s *Subscription) Snapshots() <-chan Snapshot { return s.snapshots }

// Errors surfaces transient transport failures for observability only. A
// failed fetch never clears the last known good snapshot downstream. The
// channel is closed alongside Snapshots once the loop stops.
func (s *Subscription) Errors() <-chan error { return s.errs }

// Start runs the subscription loop: one initial fetch, then one re-fetch per
// change signal. It returns once the loop goroutine is launched.
func (s *Subscription) Start(ctx context.Context) {
	changes, cancelChanges := s.source.Changes(s.query.Collection)

	go func() {
		defer cancelChanges()
		defer close(s.snapshots)
		defer close(s.errs)

		s.refresh(ctx)

		for {
			select {
			case <-ctx.Done():
				s.Cancel()
				return
			case <-s.stop:
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				s.refresh(ctx)
			}
		}
	}()
}

// Cancel stops delivery. It is idempotent, and any push already in flight
// when Cancel is invoked becomes a no-op.
func (s *Subscription) Cancel() {
	s.cancelOnce.Do(func() {
		s.alive.Store(false)
		close(s.stop)
	})
}

func (s *Subscription) refresh(ctx context.Context) {
	if !s.alive.Load() {
		return
	}

	docs, err := s.source.Fetch(ctx, s.query)
	if err != nil {
		// Transient by policy: keep the last known good snapshot and only
		// surface the error for observability.
		observability.SubscriptionErrorsTotal().WithLabelValues(s.query.Collection).Inc()
		s.logger.Warn().Err(err).Msg("fetch failed, retaining last known snapshot")
		select {
		case s.errs <- err:
		default:
		}
		return
	}

	s.deliver(Snapshot{
		Collection: s.query.Collection,
		Docs:       docs,
		Seq:        s.seq.Add(1),
		At:         s.now().UTC(),
	})
}

// deliver hands one snapshot downstream. The liveness check runs at the top
// so a push racing Cancel mutates nothing.
func (s *Subscription) deliver(snapshot Snapshot) {
	if !s.alive.Load() {
		return
	}

	select {
	case s.snapshots <- snapshot:
		observability.SnapshotsDeliveredTotal().WithLabelValues(snapshot.Collection).Inc()
	case <-s.stop:
	}
}
