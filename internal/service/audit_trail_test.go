package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shifa-care/shifa-api/internal/models"
	"github.com/shifa-care/shifa-api/internal/store"
)

func waitForActivities(t *testing.T, docs *memoryStore, want int) []store.Document {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if activities := docs.all(store.CollectionActivities); len(activities) >= want {
			return activities
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d persisted activities", want)
	return nil
}

func TestAuditTrailPersistsEntries(t *testing.T) {
	docs := newMemoryStore()
	trail := NewAuditTrail(docs, 8, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go trail.Run(ctx)

	trail.Record(AuditEntry{
		Actor:    "pharmacist-1",
		Action:   "reported shortage of Insulin in سوهاج",
		Type:     models.ActivityTypeWarning,
		Metadata: map[string]interface{}{"report_id": "r1"},
	})

	activities := waitForActivities(t, docs, 1)
	assert.Equal(t, "pharmacist-1", activities[0].String("user"))
	assert.Equal(t, models.ActivityTypeWarning, activities[0].String("type"))
}

func TestAuditTrailNormalizesActorAndType(t *testing.T) {
	docs := newMemoryStore()
	trail := NewAuditTrail(docs, 8, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go trail.Run(ctx)

	trail.Record(AuditEntry{Actor: "  ", Action: "housekeeping", Type: "bogus"})

	activities := waitForActivities(t, docs, 1)
	assert.Equal(t, "system", activities[0].String("user"))
	assert.Equal(t, models.ActivityTypeDefault, activities[0].String("type"))
}

func TestAuditTrailDropsWhenQueueFull(t *testing.T) {
	docs := newMemoryStore()
	trail := NewAuditTrail(docs, 1, testLogger())

	// No Run loop: the queue holds one entry, the rest must be dropped
	// without blocking the caller.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			trail.Record(AuditEntry{Actor: "a", Action: "overflow"})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full queue")
	}
}

func TestAuditTrailDiscardsPersistenceFailures(t *testing.T) {
	docs := newMemoryStore()
	docs.failWrites = errors.New("database offline")
	trail := NewAuditTrail(docs, 8, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go trail.Run(ctx)

	trail.Record(AuditEntry{Actor: "admin-1", Action: "doomed entry"})
	time.Sleep(50 * time.Millisecond)

	require.Empty(t, docs.all(store.CollectionActivities))

	// A later entry still lands once the store recovers.
	docs.mu.Lock()
	docs.failWrites = nil
	docs.mu.Unlock()

	trail.Record(AuditEntry{Actor: "admin-1", Action: "recovered entry"})
	activities := waitForActivities(t, docs, 1)
	assert.Equal(t, "recovered entry", activities[0].String("action"))
}

func TestMutationsSurviveAuditFailure(t *testing.T) {
	docs := newMemoryStore()
	svc := newReportService(docs, &recordingAudit{})

	// The recordingAudit never persists anywhere, which is exactly the
	// fire-and-forget contract: the mutation itself must still succeed.
	report, err := svc.Create(context.Background(), "pharmacist-1", dtoReportFixture())
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, report.Status)
}
