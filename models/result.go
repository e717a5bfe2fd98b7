package models

import (
	"time"
)

// ResultStatus is the outcome of one job.
type ResultStatus string

const (
	StatusSucceeded ResultStatus = "succeeded"
	StatusFailed    ResultStatus = "failed"
	StatusSkipped   ResultStatus = "skipped"
)

// Result is what the optimizer hands back for a single job instead of
// raising. Sizes are in bytes.
type Result struct {
	Job            OptimizationJob `json:"job"`
	Status         ResultStatus    `json:"status"`
	Message        string          `json:"message,omitempty"`
	SourceFormat   string          `json:"source_format,omitempty"` // detected MIME type
	OriginalSize   int64           `json:"original_size"`
	OptimizedSize  int64           `json:"optimized_size"`
	OriginalWidth  int             `json:"original_width"`
	OriginalHeight int             `json:"original_height"`
	Width          int             `json:"width"`
	Height         int             `json:"height"`
	Flattened      bool            `json:"flattened"`
	Reduction      float64         `json:"reduction"` // percent
	Mirrored       string          `json:"mirrored,omitempty"`
	MirrorError    string          `json:"mirror_error,omitempty"`
	Duration       time.Duration   `json:"duration"`
}

func (r Result) OK() bool {
	return r.Status == StatusSucceeded
}

// Summary aggregates one batch run.
type Summary struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Results   []Result  `json:"results"`
}

func (s Summary) count(status ResultStatus) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

func (s Summary) Succeeded() int { return s.count(StatusSucceeded) }
func (s Summary) Failed() int    { return s.count(StatusFailed) }
func (s Summary) Skipped() int   { return s.count(StatusSkipped) }

// BytesSaved sums original minus optimized size over successful jobs.
// Jobs that grew count negatively.
func (s Summary) BytesSaved() int64 {
	var saved int64
	for _, r := range s.Results {
		if r.OK() {
			saved += r.OriginalSize - r.OptimizedSize
		}
	}
	return saved
}
