package encoder

import (
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
)

// EncodeJPEG writes baseline JPEG at opts.Quality. The stdlib encoder has
// no optimize switch: it always writes the standard Huffman tables with
// 4:2:0 chroma subsampling.
func EncodeJPEG(w io.Writer, img image.Image, opts EncodeOptions) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(clampQuality(opts.Quality)))
}

// EncodePNG writes PNG at best zlib compression. Quality is ignored.
func EncodePNG(w io.Writer, img image.Image, _ EncodeOptions) error {
	return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
}

// EncodeGIF quantizes to a full 256 colour palette.
func EncodeGIF(w io.Writer, img image.Image, _ EncodeOptions) error {
	return imaging.Encode(w, img, imaging.GIF, imaging.GIFNumColors(256))
}

// EncodeTIFF uses imaging's deflate + predictor settings.
func EncodeTIFF(w io.Writer, img image.Image, _ EncodeOptions) error {
	return imaging.Encode(w, img, imaging.TIFF)
}

// EncodeBMP has nothing to tune; BMP is stored uncompressed.
func EncodeBMP(w io.Writer, img image.Image, _ EncodeOptions) error {
	return imaging.Encode(w, img, imaging.BMP)
}

func clampQuality(q int) int {
	switch {
	case q < 1:
		return 1
	case q > 100:
		return 100
	}
	return q
}
