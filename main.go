package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assetshrink/config"
	"assetshrink/history"
	"assetshrink/job"
	"assetshrink/logger"
	"assetshrink/manifest"
	"assetshrink/mirror"
	"assetshrink/optimizer"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code. Individual job failures only change
// it in strict mode.
func run() int {
	level, known := logger.ParseLevel(config.GetLogLevel())
	if err := logger.Init(config.GetLogFile(), level); err != nil {
		logger.Errorf("Failed to initialize logger: %v", err)
		return 1
	}
	defer logger.Close()
	if !known {
		logger.Warnf("Unknown log level %q, using %s", config.GetLogLevel(), level)
	}

	publicDir := config.GetPublicDir()
	jobs, err := manifest.Load(publicDir)
	if err != nil {
		logger.Errorf("Failed to load job table: %v", err)
		return 1
	}
	logger.Debugf("Loaded %d jobs for %s", len(jobs), publicDir)

	opts := job.Options{}

	if dbPath := config.GetHistoryDBPath(); dbPath != "" {
		if err := os.MkdirAll(config.GetDataDir(), 0755); err != nil {
			logger.Errorf("Failed to create data directory: %v", err)
			return 1
		}
		store, err := history.Open(dbPath)
		if err != nil {
			logger.Errorf("Failed to initialize history store: %v", err)
			return 1
		}
		defer store.Close()

		logPreviousRun(store)

		maxAge := config.GetHistoryMaxAge()
		if n, err := store.CleanupOldRecords(maxAge); err != nil {
			logger.Errorf("Failed to cleanup old history records: %v", err)
		} else if n > 0 {
			logger.Infof("Removed %d history records older than %v", n, maxAge)
		}
		opts.History = store
	} else {
		logger.Debug("Run history disabled")
	}

	if backend := config.GetMirrorType(); backend != "" {
		if !mirror.Supported(backend) {
			logger.Errorf("Unknown mirror backend %q (want dir, s3, gcs or sftp)", backend)
			return 1
		}
		opts.MirrorType = backend
		opts.MirrorInfo = config.GetMirrorAccessInfo()
		logger.Info("Mirroring optimized files to " + backend)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary := job.RunBatch(ctx, jobs, opts)

	if config.IsStrict() && summary.Failed() > 0 {
		logger.Errorf("%d of %d jobs failed (strict mode)", summary.Failed(), len(jobs))
		return 1
	}
	return 0
}

// logPreviousRun reports the tally of the last recorded run, if any.
func logPreviousRun(store *history.Store) {
	records, err := store.LastRun()
	if err != nil {
		logger.Warnf("Failed to read run history: %v", err)
		return
	}
	if len(records) == 0 {
		return
	}
	prev := history.Summarize(records)
	logger.Infof("Previous run %s at %s: %d optimized, %d failed, %d skipped, %s saved",
		prev.RunID, prev.StartedAt.Format(time.RFC3339), prev.Succeeded(), prev.Failed(), prev.Skipped(),
		optimizer.FormatMB(prev.BytesSaved()))
}
