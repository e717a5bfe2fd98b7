package job

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"assetshrink/history"
	"assetshrink/logger"
	"assetshrink/mirror"
	"assetshrink/models"
)

func fixture(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 30, G: 90, B: 160, A: 255})
	for x := 0; x < w; x += 3 {
		img.Set(x, x%h, color.White)
	}
	path := filepath.Join(dir, name)
	if err := imaging.Save(img, path, imaging.JPEGQuality(100)); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func jobFor(dir, name string, w, h int) models.OptimizationJob {
	path := filepath.Join(dir, name)
	return models.OptimizationJob{
		InputPath:  path,
		OutputPath: path,
		MaxSize:    models.MaxSize{Width: w, Height: h},
		Quality:    80,
	}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })
	return &buf
}

func TestRunBatchIsolatesJobs(t *testing.T) {
	logs := captureLogs(t)
	public := t.TempDir()

	fixture(t, public, "operating-room.jpg", 400, 300)
	if err := os.WriteFile(filepath.Join(public, "broken.png"), []byte{}, 0644); err != nil {
		t.Fatal(err)
	}
	fixture(t, public, "pharmacy service.jpg", 100, 50)

	jobs := []models.OptimizationJob{
		jobFor(public, "operating-room.jpg", 192, 108),
		jobFor(public, "missing.jpg", 192, 108),
		jobFor(public, "broken.png", 120, 80),
		jobFor(public, "pharmacy service.jpg", 120, 80),
	}

	summary := RunBatch(context.Background(), jobs, Options{})

	if len(summary.Results) != len(jobs) {
		t.Fatalf("Expected %d results, got %d", len(jobs), len(summary.Results))
	}
	want := []models.ResultStatus{models.StatusSucceeded, models.StatusSkipped, models.StatusFailed, models.StatusSucceeded}
	for i, r := range summary.Results {
		if r.Status != want[i] {
			t.Errorf("Job %d (%s): expected %s, got %s (%s)", i, r.Job.InputPath, want[i], r.Status, r.Message)
		}
	}
	if summary.Succeeded() != 2 || summary.Failed() != 1 || summary.Skipped() != 1 {
		t.Errorf("Unexpected tally %d/%d/%d", summary.Succeeded(), summary.Failed(), summary.Skipped())
	}
	if summary.RunID == "" {
		t.Error("Expected a run ID")
	}

	if r := summary.Results[0]; r.Width != 144 || r.Height != 108 {
		t.Errorf("Expected 144x108, got %dx%d", r.Width, r.Height)
	}
	if r := summary.Results[3]; r.Width != 100 || r.Height != 50 {
		t.Errorf("Small image should keep 100x50, got %dx%d", r.Width, r.Height)
	}
	if _, err := os.Stat(filepath.Join(public, "missing.jpg")); !os.IsNotExist(err) {
		t.Error("Skipped job must not create an output")
	}

	out := logs.String()
	if !strings.Contains(out, "File not found: "+filepath.Join(public, "missing.jpg")) {
		t.Errorf("Expected a file-not-found notice, got:\n%s", out)
	}
	if !strings.Contains(out, "Error optimizing "+filepath.Join(public, "broken.png")) {
		t.Errorf("Expected an error line for broken.png, got:\n%s", out)
	}
	if !strings.Contains(out, "Image optimization complete! 2 optimized, 1 failed, 1 skipped") {
		t.Errorf("Expected a final tally, got:\n%s", out)
	}
}

func TestRunBatchRecordsHistoryAndMirrors(t *testing.T) {
	captureLogs(t)
	public := t.TempDir()
	mirrorDir := t.TempDir()
	fixture(t, public, "Newark (1).jpg", 300, 200)

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	jobs := []models.OptimizationJob{
		jobFor(public, "Newark (1).jpg", 150, 150),
		jobFor(public, "ghost.png", 150, 150),
	}
	summary := RunBatch(context.Background(), jobs, Options{
		History:    store,
		MirrorType: mirror.BackendDir,
		MirrorInfo: map[string]string{"baseDir": mirrorDir, "folder": "cdn"},
	})

	mirrored := filepath.Join(mirrorDir, "cdn", "Newark (1).jpg")
	if got := summary.Results[0].Mirrored; got != mirrored {
		t.Errorf("Expected mirror destination %s, got %q (err %q)", mirrored, got, summary.Results[0].MirrorError)
	}
	f, err := os.Open(mirrored)
	if err != nil {
		t.Fatalf("Mirrored file missing: %v", err)
	}
	cfg, _, err := image.DecodeConfig(f)
	f.Close()
	if err != nil || cfg.Width != 150 || cfg.Height != 100 {
		t.Errorf("Mirrored file should be the optimized 150x100 image, got %dx%d (%v)", cfg.Width, cfg.Height, err)
	}

	records, err := store.ListRun(summary.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 history records, got %d", len(records))
	}
	if records[0].Result.Status != models.StatusSucceeded || records[1].Result.Status != models.StatusSkipped {
		t.Errorf("Unexpected recorded statuses: %s, %s", records[0].Result.Status, records[1].Result.Status)
	}
}

func TestRunBatchMirrorFailureKeepsSuccess(t *testing.T) {
	captureLogs(t)
	public := t.TempDir()
	fixture(t, public, "oncology.jpg", 50, 50)

	summary := RunBatch(context.Background(), []models.OptimizationJob{jobFor(public, "oncology.jpg", 40, 40)}, Options{
		MirrorType: mirror.BackendS3,
		MirrorInfo: map[string]string{},
	})

	r := summary.Results[0]
	if !r.OK() {
		t.Fatalf("Mirror failure must not fail the job: %s", r.Message)
	}
	if r.MirrorError == "" || r.Mirrored != "" {
		t.Errorf("Expected a recorded mirror error, got mirrored=%q err=%q", r.Mirrored, r.MirrorError)
	}
}

func TestRunBatchStopsWhenCancelled(t *testing.T) {
	captureLogs(t)
	public := t.TempDir()
	fixture(t, public, "a.jpg", 20, 20)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary := RunBatch(ctx, []models.OptimizationJob{jobFor(public, "a.jpg", 10, 10)}, Options{})
	if len(summary.Results) != 0 {
		t.Errorf("Expected no jobs to run after cancellation, got %d", len(summary.Results))
	}
}
