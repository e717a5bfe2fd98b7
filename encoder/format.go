package encoder

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when an output extension has no encoder.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Format is an output image format chosen from a file extension.
type Format int

const (
	FormatUnknown Format = iota
	FormatJPEG
	FormatPNG
	FormatGIF
	FormatTIFF
	FormatBMP
	FormatWebP
)

var formatNames = map[Format]string{
	FormatUnknown: "unknown",
	FormatJPEG:    "jpeg",
	FormatPNG:     "png",
	FormatGIF:     "gif",
	FormatTIFF:    "tiff",
	FormatBMP:     "bmp",
	FormatWebP:    "webp",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// extensions maps lower-cased file extensions to output formats.
var extensions = map[string]Format{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".jpe":  FormatJPEG,
	".jfif": FormatJPEG,
	".png":  FormatPNG,
	".gif":  FormatGIF,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".bmp":  FormatBMP,
	".webp": FormatWebP,
}

// FormatFromPath picks the output format from path's extension,
// case-insensitively. The path itself is never rewritten.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	if ext == "" {
		return FormatUnknown, fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, filepath.Base(path))
	}
	return FormatUnknown, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}
