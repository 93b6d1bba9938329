// Package source looks up user records by identifier.
package source

import (
	"context"
	"slices"
	"time"

	"github.com/zoobzio/qrcard"
)

// Source resolves an identifier to a record.
type Source interface {
	// Lookup returns the record for id, or an error wrapping
	// qrcard.ErrNotFound. The caller owns the returned record.
	Lookup(ctx context.Context, id string) (*qrcard.Record, error)
}

// Option configures a MemorySource.
type Option func(*MemorySource)

// WithDelay simulates lookup latency. Zero disables it.
func WithDelay(d time.Duration) Option {
	return func(s *MemorySource) {
		if d > 0 {
			s.delay = d
		}
	}
}

// MemorySource serves records from memory.
// It is read-only after construction and safe for concurrent use.
type MemorySource struct {
	records map[string]*qrcard.Record
	delay   time.Duration
}

// NewMemorySource returns a source over records. The map is copied.
func NewMemorySource(records map[string]*qrcard.Record, opts ...Option) *MemorySource {
	s := &MemorySource{records: make(map[string]*qrcard.Record, len(records))}
	for id, r := range records {
		s.records[id] = r.Clone()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup waits for the configured delay, then returns a copy of the record.
// A cancelled context aborts the wait with ctx.Err().
func (s *MemorySource) Lookup(ctx context.Context, id string) (*qrcard.Record, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	r, ok := s.records[id]
	if !ok {
		return nil, qrcard.NotFound(id)
	}
	return r.Clone(), nil
}

// IDs returns the known identifiers in sorted order.
func (s *MemorySource) IDs() []string {
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
