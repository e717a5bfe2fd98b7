package encoder

import (
	"fmt"
	"image"
	"io"
	"sync"

	"assetshrink/logger"
)

// EncodeFunc is the function signature for any encoder
type EncodeFunc func(w io.Writer, img image.Image, opts EncodeOptions) error

type EncodeOptions struct {
	Quality int // 1–100; lossless encoders ignore it
}

// Registry maps format → encoder function
var Registry = map[Format]EncodeFunc{}

var registerOnce sync.Once

// Register adds or replaces the encoder for a format
func Register(format Format, fn EncodeFunc) {
	Registry[format] = fn
	logger.Debugf("encoder [%s] registered", format)
}

// Lookup encoder by format
func Get(format Format) (EncodeFunc, bool) {
	fn, ok := Registry[format]
	return fn, ok
}

// RegisterDefaults registers the built-in encoders once per process.
func RegisterDefaults() {
	registerOnce.Do(func() {
		Register(FormatJPEG, EncodeJPEG)
		Register(FormatPNG, EncodePNG)
		Register(FormatGIF, EncodeGIF)
		Register(FormatTIFF, EncodeTIFF)
		Register(FormatBMP, EncodeBMP)
		Register(FormatWebP, EncodeWebP)
	})
}

// EncodeForPath encodes img to w in the format implied by path's extension.
func EncodeForPath(w io.Writer, img image.Image, path string, opts EncodeOptions) (Format, error) {
	RegisterDefaults()

	format, err := FormatFromPath(path)
	if err != nil {
		return FormatUnknown, err
	}
	enc, ok := Get(format)
	if !ok {
		return format, fmt.Errorf("%w: no encoder registered for %s", ErrUnsupportedFormat, format)
	}
	if err := enc(w, img, opts); err != nil {
		return format, fmt.Errorf("%s encode: %w", format, err)
	}
	return format, nil
}
