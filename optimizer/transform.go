package optimizer

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"assetshrink/models"
)

// NeedsFlatten reports whether img must be composited onto an opaque
// background before encoding. Paletted images always are; images whose
// model can carry alpha are when at least one pixel is not fully opaque.
func NeedsFlatten(img image.Image) bool {
	switch m := img.(type) {
	case *image.Paletted:
		return true
	case *image.Gray, *image.Gray16, *image.YCbCr, *image.CMYK:
		return false
	case interface{ Opaque() bool }:
		return !m.Opaque()
	}
	return true
}

// Flatten alpha-composites img over an opaque white canvas of the same
// size. Palette entries are expanded to NRGBA first, so fully transparent
// pixels come out pure white.
func Flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}

// FitSize returns the largest dimensions no bigger than box that keep the
// w:h aspect ratio. Images already inside the box are left as they are.
func FitSize(w, h int, box models.MaxSize) (int, int) {
	if w <= 0 || h <= 0 || box.Width <= 0 || box.Height <= 0 {
		return w, h
	}
	if w <= box.Width && h <= box.Height {
		return w, h
	}

	ratio := math.Max(float64(w)/float64(box.Width), float64(h)/float64(box.Height))
	nw := clamp(int(math.Round(float64(w)/ratio)), 1, box.Width)
	nh := clamp(int(math.Round(float64(h)/ratio)), 1, box.Height)
	return nw, nh
}

// Fit downsamples img with a Lanczos filter so it fits inside box. It
// never upscales; an image already inside the box is returned unchanged.
func Fit(img image.Image, box models.MaxSize) image.Image {
	b := img.Bounds()
	nw, nh := FitSize(b.Dx(), b.Dy(), box)
	if nw == b.Dx() && nh == b.Dy() {
		return img
	}
	return imaging.Resize(img, nw, nh, imaging.Lanczos)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
