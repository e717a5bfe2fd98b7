// Package manifest holds the embedded table of assets to optimize.
package manifest

import (
	_ "embed"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"assetshrink/models"
)

//go:embed jobs.yaml
var embedded []byte

// Entry is one row of the job table, with filenames relative to the
// public directory.
type Entry struct {
	Input   string         `yaml:"input"`
	Output  string         `yaml:"output"`
	MaxSize models.MaxSize `yaml:"max_size"`
	Quality int            `yaml:"quality"`
}

type document struct {
	Jobs []Entry `yaml:"jobs"`
}

// Parse decodes a job table. A missing output means "overwrite the input".
func Parse(data []byte) ([]Entry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse job table: %w", err)
	}
	for i := range doc.Jobs {
		e := &doc.Jobs[i]
		if e.Input == "" {
			return nil, fmt.Errorf("job table entry %d has no input", i)
		}
		if e.Output == "" {
			e.Output = e.Input
		}
	}
	return doc.Jobs, nil
}

// Default returns the embedded job table.
func Default() ([]Entry, error) {
	return Parse(embedded)
}

// Resolve turns table entries into jobs rooted at publicDir and validates
// them.
func Resolve(publicDir string, entries []Entry) ([]models.OptimizationJob, error) {
	jobs := make([]models.OptimizationJob, 0, len(entries))
	for _, e := range entries {
		job := models.OptimizationJob{
			InputPath:  filepath.Join(publicDir, e.Input),
			OutputPath: filepath.Join(publicDir, e.Output),
			MaxSize:    e.MaxSize,
			Quality:    e.Quality,
		}
		if err := job.Validate(); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Load parses the embedded table and resolves it against publicDir.
func Load(publicDir string) ([]models.OptimizationJob, error) {
	entries, err := Default()
	if err != nil {
		return nil, err
	}
	return Resolve(publicDir, entries)
}
