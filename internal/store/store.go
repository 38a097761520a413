package store

import (
	"context"
	"errors"
)

// ErrNotFound indicates the referenced document does not exist.
var ErrNotFound = errors.New("store: document not found")

// Filter is one equality predicate applied server-side.
type Filter struct {
	Field string
	Value interface{}
}

// Query describes a subscribe-to-query request: equality filters, ordering by
// one field and an optional result limit. Results are always delivered as the
// complete current result set, never as deltas.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// Where appends an equality filter and returns the query for chaining.
func (q Query) Where(field string, value interface{}) Query {
	q.Filters = append(q.Filters, Filter{Field: field, Value: value})
	return q
}

// Store is the remote document collaborator. Fetch returns the full current
// result set for a query; writes assign server-side timestamps and trigger a
// change signal on the written collection.
type Store interface {
	Fetch(ctx context.Context, query Query) ([]Document, error)
	Create(ctx context.Context, collection string, fields Document) (string, error)
	Update(ctx context.Context, collection, id string, fields Document) error
	Delete(ctx context.Context, collection, id string) error

	// Changes registers for change signals on one collection. The returned
	// cancel func releases the registration; the channel carries no payload
	// because consumers re-fetch the full result set on every signal.
	Changes(collection string) (<-chan struct{}, func())
}
