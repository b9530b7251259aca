package collector

import (
	"context"
	"errors"

	"github.com/psvitals/vitals/model"
)

// ErrSourceUnavailable means an adapter cannot answer a query right now:
// its command or pseudo-filesystem is missing, permission was denied, the
// tool exited non-zero, or parsing yielded zero usable records. The
// orchestrator silently moves on to the next adapter in priority order.
var ErrSourceUnavailable = errors.New("source unavailable")

// Query selects what an adapter should collect.
type Query int

const (
	QueryProcesses Query = iota
	QuerySystem
)

func (q Query) String() string {
	switch q {
	case QueryProcesses:
		return "processes"
	case QuerySystem:
		return "system"
	}
	return "unknown"
}

// Partial is one adapter's contribution to a snapshot. Either side may be
// missing: a process-table adapter leaves System nil, a system-stats
// adapter leaves Processes empty, and unknown markers inside System are
// normal (partial population is allowed).
type Partial struct {
	Source    string
	Processes []model.ProcessRecord
	System    *model.SystemSnapshot
}

// Adapter queries exactly one concrete data source and parses its raw
// output into unified model values. Implementations must return an error
// wrapping ErrSourceUnavailable instead of failing hard, and must
// normalize units (bytes, 0-100 percentages) during parsing.
type Adapter interface {
	Name() string
	TryCollect(ctx context.Context, kind Query) (*Partial, error)
}

// SourceError attributes a failure to the adapter that produced it.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return e.Source + ": " + e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
