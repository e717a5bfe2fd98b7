package encoder

import (
	"image"
	"io"

	"github.com/chai2010/webp"
)

// EncodeWebP writes lossy WebP at opts.Quality.
func EncodeWebP(w io.Writer, img image.Image, opts EncodeOptions) error {
	return webp.Encode(w, img, &webp.Options{
		Lossless: false,
		Quality:  float32(clampQuality(opts.Quality)),
	})
}
