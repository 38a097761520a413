// Package store defines the boundary to the remote document collections the
// dashboards are built on: loosely typed documents, equality-filtered queries
// delivered as complete result sets, and a change feed per collection.
package store

import (
	"strconv"
	"time"
)

// Collection identifiers tracked by the monitoring core.
const (
	CollectionMedicines  = "medicines"
	CollectionReports    = "reports"
	CollectionShipments  = "shipments"
	CollectionActivities = "activities"
)

// Document is one loosely typed record as delivered by the document store.
// Field access goes through coercing helpers so a single malformed document
// can never halt aggregation for its whole collection.
type Document map[string]interface{}

// ID returns the document identifier, or "" when absent.
func (d Document) ID() string {
	return d.String("id")
}

// String returns the named field as a string, or "" when missing or not
// a string.
func (d Document) String(key string) string {
	if v, ok := d[key].(string); ok {
		return v
	}
	return ""
}

// Int returns the named field as an integer. Missing, null and non-numeric
// values coerce to 0; numeric strings are parsed; floats are truncated.
func (d Document) Int(key string) int {
	switch v := d[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

// Float returns the named field as a float64, coercing like Int.
func (d Document) Float(key string) float64 {
	switch v := d[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}

// Time returns the named field as a time.Time. RFC 3339 strings are parsed;
// anything else yields the zero time.
func (d Document) Time(key string) time.Time {
	switch v := d[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
