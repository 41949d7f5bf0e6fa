package importer

import (
	"fmt"
	"time"
)

// Summary describes an import run
type Summary struct {
	RunID        string    `json:"runId"`
	URLs         []string  `json:"urls"`
	Documents    []string  `json:"documents"`
	Notes        int       `json:"notes"`
	Duplicates   int       `json:"duplicates"`
	Unterminated int       `json:"unterminated"`
	Stale        int       `json:"stale,omitempty"`
	StartedAt    time.Time `json:"startedAt"`
	CompletedAt  time.Time `json:"completedAt"`
}

// Elapsed returns run duration
func (s *Summary) Elapsed() time.Duration {
	return s.CompletedAt.Sub(s.StartedAt)
}

// String returns a one line description of the summary
func (s *Summary) String() string {
	return fmt.Sprintf("run %s: %d documents, %d notes, %d duplicates, %d unterminated",
		s.RunID, len(s.Documents), s.Notes, s.Duplicates, s.Unterminated)
}
