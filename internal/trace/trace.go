// Package trace provides the append-only execution record of a chain run
// and renders it into the prompt-chain log and output files.
//
// The recorder is owned by the caller and handed to the resolver; it is the
// only shared sink of the run, safe for concurrent appends from the worker
// pool.
package trace

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record is the per-node execution record. One record is appended for every
// node that resolved or failed; nodes that never started get none.
type Record struct {
	// Node is the node identifier.
	Node string
	// Static is true when the node resolved without a generation call.
	Static bool
	// Level is the index of the execution level the node ran in.
	Level int
	// Prompt is the fully substituted prompt sent for generation. Empty for
	// static nodes.
	Prompt string
	// Value is the resolved value. Empty when Err is set.
	Value string
	// Err is the failure cause, nil for resolved nodes.
	Err error
	// Duration is the wall-clock time the node took to resolve or fail.
	Duration time.Duration
}

// Recorder collects execution records for one run, append-only.
type Recorder struct {
	mu      sync.Mutex
	runID   string
	started time.Time
	records []Record
}

// NewRecorder creates an empty recorder stamped with a fresh run ID.
func NewRecorder() *Recorder {
	return &Recorder{
		runID:   uuid.NewString(),
		started: time.Now(),
	}
}

// RunID returns the unique identifier of this run.
func (r *Recorder) RunID() string {
	return r.runID
}

// Started returns the time the recorder was created.
func (r *Recorder) Started() time.Time {
	return r.started
}

// Append adds a record. Safe for concurrent use.
func (r *Recorder) Append(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// Records returns a copy of all records appended so far.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}
