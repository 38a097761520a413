package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/shifa-care/shifa-api/internal/models"
	"github.com/shifa-care/shifa-api/internal/observability"
	"github.com/shifa-care/shifa-api/internal/store"
)

const defaultAuditQueueSize = 256

// AuditEntry captures one mutation for the append-only activity feed.
type AuditEntry struct {
	Actor    string
	Action   string
	Type     string
	Metadata map[string]interface{}
}

// AuditRecorder accepts audit entries on a best-effort basis. Recording never
// blocks and never fails the mutation that produced the entry.
type AuditRecorder interface {
	Record(entry AuditEntry)
}

// AuditTrail drains recorded entries into the activities collection through a
// bounded queue. Persistence failures are logged and discarded: the audit
// trail is eventually consistent, not transactional.
type AuditTrail struct {
	docs   store.Store
	queue  chan AuditEntry
	logger zerolog.Logger
}

// NewAuditTrail constructs the audit side channel.
func NewAuditTrail(docs store.Store, queueSize int, logger zerolog.Logger) *AuditTrail {
	if queueSize <= 0 {
		queueSize = defaultAuditQueueSize
	}
	return &AuditTrail{
		docs:   docs,
		queue:  make(chan AuditEntry, queueSize),
		logger: logger.With().Str("component", "audit_trail").Logger(),
	}
}

// Record enqueues an entry. When the queue is full the entry is dropped and
// counted; the caller is never delayed.
func (t *AuditTrail) Record(entry AuditEntry) {
	select {
	case t.queue <- entry:
	default:
		observability.AuditDroppedTotal().Inc()
		t.logger.Warn().Str("action", entry.Action).Msg("audit queue full, dropping entry")
	}
}

// Run drains the queue until the context is cancelled.
func (t *AuditTrail) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case entry := <-t.queue:
			t.persist(ctx, entry)
		}
	}
}

func (t *AuditTrail) persist(ctx context.Context, entry AuditEntry) {
	fields := store.Document{
		"user":   normalizeActor(entry.Actor),
		"action": strings.TrimSpace(entry.Action),
		"type":   normalizeActivityType(entry.Type),
	}
	if len(entry.Metadata) > 0 {
		fields["metadata"] = datatypes.JSONMap(entry.Metadata)
	}

	if _, err := t.docs.Create(ctx, store.CollectionActivities, fields); err != nil {
		observability.AuditFailedTotal().Inc()
		t.logger.Error().Err(err).Str("action", entry.Action).Msg("failed to persist audit entry")
		return
	}

	observability.AuditRecordedTotal().WithLabelValues(fields.String("type")).Inc()
}

func normalizeActor(actor string) string {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return "system"
	}
	return actor
}

func normalizeActivityType(activityType string) string {
	switch strings.ToLower(strings.TrimSpace(activityType)) {
	case models.ActivityTypeSuccess:
		return models.ActivityTypeSuccess
	case models.ActivityTypeWarning:
		return models.ActivityTypeWarning
	case models.ActivityTypeInfo:
		return models.ActivityTypeInfo
	default:
		return models.ActivityTypeDefault
	}
}
