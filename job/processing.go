package job

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"assetshrink/history"
	"assetshrink/logger"
	"assetshrink/mirror"
	"assetshrink/models"
	"assetshrink/optimizer"
)

// Options carries the optional side effects of a batch run. The zero
// value runs the batch with no history and no mirroring.
type Options struct {
	History    *history.Store
	MirrorType string
	MirrorInfo map[string]string
}

// RunBatch processes jobs one after another. A missing input is skipped, a
// failing job is recorded and the batch moves on; the only early exit is
// ctx being cancelled between jobs.
func RunBatch(ctx context.Context, jobs []models.OptimizationJob, opts Options) models.Summary {
	summary := models.Summary{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		Results:   make([]models.Result, 0, len(jobs)),
	}
	logger.Infof("Starting image optimization (run %s, %d jobs)", summary.RunID, len(jobs))

	for i, j := range jobs {
		if err := ctx.Err(); err != nil {
			logger.Warnf("Batch interrupted before job %d of %d: %v", i+1, len(jobs), err)
			break
		}

		res := processJob(ctx, j, opts)
		summary.Results = append(summary.Results, res)

		if opts.History != nil {
			if err := opts.History.Put(summary.RunID, i, res); err != nil {
				// History is informational; the batch carries on.
				logger.Errorf("Failed to record history for %s: %v", j.InputPath, err)
			}
		}
	}

	logSummary(summary)
	return summary
}

// processJob runs a single job and never returns an error: every outcome
// is a Result.
func processJob(ctx context.Context, j models.OptimizationJob, opts Options) models.Result {
	if _, err := os.Stat(j.InputPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			msg := fmt.Sprintf("File not found: %s", j.InputPath)
			logger.Warn(msg)
			return models.Result{Job: j, Status: models.StatusSkipped, Message: msg}
		}
		msg := fmt.Sprintf("Error optimizing %s: %v", j.InputPath, err)
		logger.Error(msg)
		return models.Result{Job: j, Status: models.StatusFailed, Message: msg}
	}

	logger.Infof("Processing %s...", filepath.Base(j.InputPath))
	res := optimizer.Optimize(j)

	if res.OK() && opts.MirrorType != "" {
		dest, err := mirror.Mirror(ctx, opts.MirrorType, opts.MirrorInfo, j.OutputPath)
		if err != nil {
			// The local file is already optimized; a mirror failure does not undo that.
			res.MirrorError = err.Error()
			logger.Errorf("Failed to mirror %s to %s: %v", j.OutputPath, opts.MirrorType, err)
		} else {
			res.Mirrored = dest
			logger.Infof("  Mirrored to %s", dest)
		}
	}
	return res
}

func logSummary(s models.Summary) {
	logger.Infof("Image optimization complete! %d optimized, %d failed, %d skipped, %s saved in %s",
		s.Succeeded(), s.Failed(), s.Skipped(), optimizer.FormatMB(s.BytesSaved()),
		time.Since(s.StartedAt).Round(time.Millisecond))
	for _, r := range s.Results {
		if r.Status == models.StatusFailed {
			logger.Errorf("  failed: %s", r.Message)
		}
	}
}
