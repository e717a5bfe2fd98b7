// Package optimizer resizes and recompresses a single image file.
package optimizer

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	"assetshrink/encoder"
	"assetshrink/logger"
	"assetshrink/models"
)

// ErrNotImage is returned when the input's content is not an image.
var ErrNotImage = errors.New("input is not an image")

// Optimize loads job.InputPath, flattens transparency onto white, fits it
// into job.MaxSize and writes it to job.OutputPath in the format implied by
// the output extension. It never fails outward: any error ends up in the
// returned Result with StatusFailed.
func Optimize(job models.OptimizationJob) (res models.Result) {
	start := time.Now()
	res = models.Result{Job: job}

	defer func() {
		if r := recover(); r != nil {
			res.Status = models.StatusFailed
			res.Message = fmt.Sprintf("Error optimizing %s: panic: %v", job.InputPath, r)
			logger.Error(res.Message)
		}
		res.Duration = time.Since(start)
	}()

	if err := optimize(job, &res); err != nil {
		res.Status = models.StatusFailed
		res.Message = fmt.Sprintf("Error optimizing %s: %v", job.InputPath, err)
		logger.Error(res.Message)
		return res
	}

	res.Status = models.StatusSucceeded
	res.Message = SizeLine(res.OriginalSize, res.OptimizedSize)
	logger.Infof("Optimized: %s -> %s (%dx%d -> %dx%d)", job.InputPath, job.OutputPath,
		res.OriginalWidth, res.OriginalHeight, res.Width, res.Height)
	logger.Infof("  %s", res.Message)
	return res
}

func optimize(job models.OptimizationJob, res *models.Result) error {
	// Sized up front: the output may overwrite the input.
	info, err := os.Stat(job.InputPath)
	if err != nil {
		return err
	}
	res.OriginalSize = info.Size()

	img, mime, err := load(job.InputPath)
	res.SourceFormat = mime
	if err != nil {
		return err
	}

	b := img.Bounds()
	res.OriginalWidth, res.OriginalHeight = b.Dx(), b.Dy()

	if NeedsFlatten(img) {
		img = Flatten(img)
		res.Flattened = true
	}
	img = Fit(img, job.MaxSize)
	res.Width, res.Height = img.Bounds().Dx(), img.Bounds().Dy()

	format, err := writeImage(job.OutputPath, img, encoder.EncodeOptions{Quality: job.Quality})
	if err != nil {
		return err
	}
	logger.Debugf("encoded %s as %s (source %s)", job.OutputPath, format, mime)

	out, err := os.Stat(job.OutputPath)
	if err != nil {
		return err
	}
	res.OptimizedSize = out.Size()
	res.Reduction = ReductionPercent(res.OriginalSize, res.OptimizedSize)
	return nil
}

// load sniffs and decodes the file at path. The handle is closed on every
// return path.
func load(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sniff content type: %w", err)
	}
	mime := mtype.String()
	if !strings.HasPrefix(mime, "image/") {
		return nil, mime, fmt.Errorf("%w: detected %s", ErrNotImage, mime)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, mime, err
	}
	img, err := imaging.Decode(f)
	if err != nil {
		return nil, mime, fmt.Errorf("failed to decode %s: %w", mime, err)
	}
	return img, mime, nil
}

// writeImage encodes into a temporary file next to path and renames it
// into place, so a failed encode leaves any existing file untouched.
func writeImage(path string, img image.Image, opts encoder.EncodeOptions) (encoder.Format, error) {
	// Reject unknown extensions before touching the filesystem.
	if _, err := encoder.FormatFromPath(path); err != nil {
		return encoder.FormatUnknown, err
	}

	mode := os.FileMode(0644)
	if existing, err := os.Stat(path); err == nil {
		mode = existing.Mode().Perm()
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return encoder.FormatUnknown, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	format, err := encoder.EncodeForPath(tmp, img, path, opts)
	if err != nil {
		tmp.Close()
		return format, err
	}
	if err := tmp.Close(); err != nil {
		return format, fmt.Errorf("failed to flush %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return format, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return format, fmt.Errorf("failed to replace %s: %w", path, err)
	}
	committed = true
	return format, nil
}
