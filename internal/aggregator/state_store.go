// Package aggregator keeps the latest snapshot per tracked collection and
// recomputes every derived dashboard metric whenever any snapshot changes.
package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shifa-care/shifa-api/internal/models"
	"github.com/shifa-care/shifa-api/internal/observability"
	"github.com/shifa-care/shifa-api/internal/store"
	"github.com/shifa-care/shifa-api/internal/stream"
)

const watcherBuffer = 4

// Metrics is the closed set of values derived from the resident snapshots.
// Every recomputation starts from zero: no metric ever depends on its own
// previous value, so identical snapshots always produce identical metrics.
type Metrics struct {
	TotalItems            int `json:"total_items"`
	CriticalShortageCount int `json:"critical_shortage_count"`
	TotalStockUnits       int `json:"total_stock_units"`
	ActiveShipmentCount   int `json:"active_shipment_count"`
	DelayedShipmentCount  int `json:"delayed_shipment_count"`
	PendingReportCount    int `json:"pending_report_count"`
}

// View is a consistent copy of the store state handed to readers.
type View struct {
	Metrics   Metrics                     `json:"metrics"`
	Snapshots map[string][]store.Document `json:"-"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// Docs returns the resident snapshot for one collection.
func (v View) Docs(collection string) []store.Document {
	return v.Snapshots[collection]
}

// StateStore is the single shared mutable object of the monitoring core. All
// writes are serialized through one apply loop; replacing a snapshot and
// recomputing metrics happen under one lock so no reader observes a half
// applied step.
type StateStore struct {
	logger zerolog.Logger
	events chan stream.Snapshot

	mu        sync.RWMutex
	snapshots map[string][]store.Document
	metrics   Metrics
	updatedAt time.Time

	watcherMu sync.RWMutex
	watchers  map[chan View]struct{}

	now func() time.Time
}

// New constructs an empty state store.
func New(logger zerolog.Logger) *StateStore {
	return &StateStore{
		logger:    logger.With().Str("component", "state_store").Logger(),
		events:    make(chan stream.Snapshot, 32),
		snapshots: make(map[string][]store.Document),
		watchers:  make(map[chan View]struct{}),
		now:       time.Now,
	}
}

// Feed forwards a subscription's snapshots into the apply loop. Forwarding
// goroutines fan in; the loop itself is the only writer.
func (s *StateStore) Feed(snapshots <-chan stream.Snapshot) {
	go func() {
		for snapshot := range snapshots {
			s.events <- snapshot
		}
	}()
}

// Run consumes snapshot events until the context is cancelled. Each event is
// applied to completion before the next one is read, which gives downstream
// consumers the single-scheduler ordering they rely on.
func (s *StateStore) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snapshot := <-s.events:
			s.Apply(snapshot.Collection, snapshot.Docs)
		}
	}
}

// Apply replaces one collection's snapshot wholesale, recomputes all derived
// metrics and notifies watchers, as one atomic step.
func (s *StateStore) Apply(collection string, docs []store.Document) {
	s.mu.Lock()
	s.snapshots[collection] = docs
	s.metrics = computeMetrics(s.snapshots)
	s.updatedAt = s.now().UTC()
	view := s.viewLocked()
	s.mu.Unlock()

	observability.SnapshotsAppliedTotal().WithLabelValues(collection).Inc()
	s.broadcast(view)
}

// View returns a consistent copy of the current state.
func (s *StateStore) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked()
}

// Metrics returns the current derived metrics.
func (s *StateStore) Metrics() Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

// Watch registers a view observer. Slow observers miss intermediate views
// rather than stalling the apply loop.
func (s *StateStore) Watch() (<-chan View, func()) {
	ch := make(chan View, watcherBuffer)

	s.watcherMu.Lock()
	s.watchers[ch] = struct{}{}
	s.watcherMu.Unlock()

	cancel := func() {
		s.watcherMu.Lock()
		defer s.watcherMu.Unlock()
		if _, ok := s.watchers[ch]; ok {
			delete(s.watchers, ch)
			close(ch)
		}
	}

	return ch, cancel
}

func (s *StateStore) viewLocked() View {
	snapshots := make(map[string][]store.Document, len(s.snapshots))
	for collection, docs := range s.snapshots {
		snapshots[collection] = append([]store.Document(nil), docs...)
	}
	return View{Metrics: s.metrics, Snapshots: snapshots, UpdatedAt: s.updatedAt}
}

func (s *StateStore) broadcast(view View) {
	s.watcherMu.RLock()
	defer s.watcherMu.RUnlock()

	for ch := range s.watchers {
		select {
		case ch <- view:
		default:
			s.logger.Debug().Msg("dropping view for slow watcher")
		}
	}
}

// computeMetrics derives the dashboard metrics from the complete current set
// of snapshots. Pure: same snapshots in, same metrics out.
func computeMetrics(snapshots map[string][]store.Document) Metrics {
	var m Metrics

	for _, doc := range snapshots[store.CollectionMedicines] {
		stock := doc.Int("stock")
		if stock < 0 {
			stock = 0
		}
		m.TotalItems++
		m.TotalStockUnits += stock
		if stock < models.LowStockThreshold {
			m.CriticalShortageCount++
		}
	}

	for _, doc := range snapshots[store.CollectionShipments] {
		switch doc.String("status") {
		case models.ShipmentStatusTransit:
			m.ActiveShipmentCount++
		case models.ShipmentStatusDelayed:
			m.DelayedShipmentCount++
		}
	}

	for _, doc := range snapshots[store.CollectionReports] {
		if doc.String("status") == models.ReportStatusPending {
			m.PendingReportCount++
		}
	}

	return m
}
