package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const changeSubjectPrefix = "shifa.changes."

// columnAliases maps document field names onto the relational column names
// used to avoid reserved words. The mapping is applied in both directions.
var columnAliases = map[string]map[string]string{
	CollectionShipments: {
		"from": "from_location",
		"to":   "to_location",
	},
	CollectionActivities: {
		"user": "actor",
	},
}

// GormStore is a document store backed by a relational database through GORM.
// Every successful write fans a change signal out to local registrations and,
// when a NATS connection is configured, to peer nodes on
// "shifa.changes.<collection>".
type GormStore struct {
	db     *gorm.DB
	nats   *nats.Conn
	logger zerolog.Logger
	nodeID string

	mu        sync.RWMutex
	listeners map[string]map[chan struct{}]struct{}
	subs      []*nats.Subscription
}

// NewGormStore constructs the store. The NATS connection may be nil for
// single-node deployments.
func NewGormStore(db *gorm.DB, natsConn *nats.Conn, logger zerolog.Logger) (*GormStore, error) {
	if db == nil {
		return nil, fmt.Errorf("store: database handle must not be nil")
	}

	s := &GormStore{
		db:        db,
		nats:      natsConn,
		logger:    logger.With().Str("component", "gorm_store").Logger(),
		nodeID:    uuid.NewString(),
		listeners: make(map[string]map[chan struct{}]struct{}),
	}

	if natsConn != nil {
		if err := s.subscribeRemoteChanges(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Close drains the NATS subscriptions, if any.
func (s *GormStore) Close() {
	for _, sub := range s.subs {
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain change feed subscription")
		}
	}
}

// Fetch runs the query and returns the complete current result set.
func (s *GormStore) Fetch(ctx context.Context, query Query) ([]Document, error) {
	if query.Collection == "" {
		return nil, fmt.Errorf("store: query collection must not be empty")
	}

	tx := s.db.WithContext(ctx).Table(query.Collection)
	for _, filter := range query.Filters {
		tx = tx.Where(fmt.Sprintf("%s = ?", s.columnFor(query.Collection, filter.Field)), filter.Value)
	}
	if query.OrderBy != "" {
		order := s.columnFor(query.Collection, query.OrderBy)
		if query.Descending {
			order += " DESC"
		}
		tx = tx.Order(order)
	}
	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}

	var rows []map[string]interface{}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: fetch %s: %w", query.Collection, err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, s.documentFor(query.Collection, row))
	}
	return docs, nil
}

// Create inserts a document with a generated id and server-side timestamp.
func (s *GormStore) Create(ctx context.Context, collection string, fields Document) (string, error) {
	id := uuid.NewString()

	row := s.rowFor(collection, fields)
	row["id"] = id
	now := time.Now().UTC()
	row["created_at"] = now
	if collection != CollectionActivities {
		row["updated_at"] = now
	}

	if err := s.db.WithContext(ctx).Table(collection).Create(row).Error; err != nil {
		return "", fmt.Errorf("store: create in %s: %w", collection, err)
	}

	s.publishChange(collection)
	return id, nil
}

// Update applies a partial field update to one document.
func (s *GormStore) Update(ctx context.Context, collection, id string, fields Document) error {
	row := s.rowFor(collection, fields)
	row["updated_at"] = time.Now().UTC()

	result := s.db.WithContext(ctx).Table(collection).Where("id = ?", id).Updates(row)
	if result.Error != nil {
		return fmt.Errorf("store: update %s/%s: %w", collection, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	s.publishChange(collection)
	return nil
}

// Delete removes one document entirely.
func (s *GormStore) Delete(ctx context.Context, collection, id string) error {
	result := s.db.WithContext(ctx).Table(collection).Where("id = ?", id).Delete(nil)
	if result.Error != nil {
		return fmt.Errorf("store: delete %s/%s: %w", collection, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	s.publishChange(collection)
	return nil
}

// Changes registers a local listener for change signals on one collection.
// Signals coalesce: a pending undelivered signal absorbs newer ones, which is
// safe because consumers re-fetch the full result set either way.
func (s *GormStore) Changes(collection string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	if _, ok := s.listeners[collection]; !ok {
		s.listeners[collection] = make(map[chan struct{}]struct{})
	}
	s.listeners[collection][ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if listeners, ok := s.listeners[collection]; ok {
			if _, registered := listeners[ch]; registered {
				delete(listeners, ch)
				close(ch)
			}
			if len(listeners) == 0 {
				delete(s.listeners, collection)
			}
		}
	}

	return ch, cancel
}

func (s *GormStore) publishChange(collection string) {
	s.notifyLocal(collection)

	if s.nats != nil {
		if err := s.nats.Publish(changeSubjectPrefix+collection, []byte(s.nodeID)); err != nil {
			s.logger.Warn().Err(err).Str("collection", collection).Msg("failed to publish change signal")
		}
	}
}

func (s *GormStore) notifyLocal(collection string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch := range s.listeners[collection] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *GormStore) subscribeRemoteChanges() error {
	for _, collection := range []string{CollectionMedicines, CollectionReports, CollectionShipments, CollectionActivities} {
		collection := collection
		sub, err := s.nats.Subscribe(changeSubjectPrefix+collection, func(msg *nats.Msg) {
			if string(msg.Data) == s.nodeID {
				return
			}
			s.notifyLocal(collection)
		})
		if err != nil {
			return fmt.Errorf("store: subscribe change feed for %s: %w", collection, err)
		}
		s.subs = append(s.subs, sub)
	}
	return nil
}

func (s *GormStore) columnFor(collection, field string) string {
	if aliases, ok := columnAliases[collection]; ok {
		if column, ok := aliases[field]; ok {
			return column
		}
	}
	return field
}

func (s *GormStore) documentFor(collection string, row map[string]interface{}) Document {
	doc := make(Document, len(row))
	for column, value := range row {
		doc[s.fieldFor(collection, column)] = value
	}
	return doc
}

func (s *GormStore) rowFor(collection string, fields Document) map[string]interface{} {
	row := make(map[string]interface{}, len(fields))
	for field, value := range fields {
		row[s.columnFor(collection, strings.ToLower(field))] = value
	}
	return row
}

func (s *GormStore) fieldFor(collection, column string) string {
	if aliases, ok := columnAliases[collection]; ok {
		for field, aliased := range aliases {
			if aliased == column {
				return field
			}
		}
	}
	return column
}
