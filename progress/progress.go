// Package progress tracks counters of an import run. The tracker travels in
// the context so importer workers can update it without a registry.
package progress

import (
	"context"
	"sync"
	"time"
)

// Delta represents an incremental counter change
type Delta struct {
	Files  int
	Parsed int
	Failed int
	Notes  int
}

// Progress keeps aggregated import counters. It is safe for concurrent use.
type Progress struct {
	RunID     string
	StartedAt time.Time

	Files  int
	Parsed int
	Failed int
	Notes  int

	mu       sync.Mutex
	onChange func(Snapshot)
}

// Snapshot is a read-only copy of tracker counters
type Snapshot struct {
	RunID     string
	StartedAt time.Time
	Files     int
	Parsed    int
	Failed    int
	Notes     int
}

// Done returns true when every file was either parsed or failed
func (s Snapshot) Done() bool {
	return s.Files > 0 && s.Parsed+s.Failed >= s.Files
}

// Update applies delta; the callback runs outside the lock
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.Files += d.Files
	p.Parsed += d.Parsed
	p.Failed += d.Failed
	p.Notes += d.Notes
	snapshot := p.snapshot()
	cb := p.onChange
	p.mu.Unlock()
	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns current counters
func (p *Progress) Snapshot() Snapshot {
	if p == nil {
		return Snapshot{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

func (p *Progress) snapshot() Snapshot {
	return Snapshot{
		RunID:     p.RunID,
		StartedAt: p.StartedAt,
		Files:     p.Files,
		Parsed:    p.Parsed,
		Failed:    p.Failed,
		Notes:     p.Notes,
	}
}

// SetRunID sets run identifier
func (p *Progress) SetRunID(runID string) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.RunID = runID
	p.mu.Unlock()
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker embeds a new tracker in a derived context; onChange is
// optional
func WithNewTracker(ctx context.Context, onChange func(Snapshot)) (context.Context, *Progress) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := &Progress{StartedAt: time.Now(), onChange: onChange}
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext returns the tracker carried by ctx
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// UpdateCtx applies delta to the tracker in ctx, if any
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
