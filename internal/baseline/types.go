package baseline

import (
	"time"

	"ficconf/internal/artifact"
)

// Baseline is a saved snapshot of effective settings to compare later
// configurations against.
type Baseline struct {
	Name      string            `json:"name"`
	Settings  artifact.Settings `json:"settings"`
	Sources   []string          `json:"sources"` // files that were read, in order
	Timestamp time.Time         `json:"timestamp"`
}

// Summary is a lightweight view for listing baselines.
type Summary struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	Site      string    `json:"site"`
	Format    string    `json:"format,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
