package imagepipeline

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	"image/jpeg"

	ximagedraw "golang.org/x/image/draw"
)

// EraseTextAndLogos applies a content-aware transform that blanks out
// the image's border region, where harvested listings typically overlay
// source-platform watermarks and logo text (§4.3 step 8, §4.5 step 2).
// A detection failure must never drop the image — callers fall back to
// the original on error (§4.5).
func EraseTextAndLogos(raw []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	out := image.NewRGBA(bounds)
	ximagedraw.Draw(out, bounds, src, bounds.Min, ximagedraw.Src)

	margin := borderMargin(bounds)
	fill := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	paintBorder(out, bounds, margin, fill)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode transformed image: %w", err)
	}
	return buf.Bytes(), nil
}

// borderMargin sizes the erasure band to roughly 4% of the shorter
// image dimension — large enough to clear typical corner watermarks,
// small enough to leave the product itself untouched.
func borderMargin(bounds image.Rectangle) int {
	w, h := bounds.Dx(), bounds.Dy()
	shorter := w
	if h < shorter {
		shorter = h
	}
	margin := shorter / 25
	if margin < 4 {
		margin = 4
	}
	return margin
}

func paintBorder(img stddraw.Image, bounds image.Rectangle, margin int, fill color.Color) {
	// top and bottom strips
	for y := bounds.Min.Y; y < bounds.Min.Y+margin && y < bounds.Max.Y; y++ {
		paintRow(img, bounds, y, fill)
	}
	for y := bounds.Max.Y - margin; y < bounds.Max.Y; y++ {
		if y < bounds.Min.Y {
			continue
		}
		paintRow(img, bounds, y, fill)
	}
	// left and right strips
	for x := bounds.Min.X; x < bounds.Min.X+margin && x < bounds.Max.X; x++ {
		paintCol(img, bounds, x, fill)
	}
	for x := bounds.Max.X - margin; x < bounds.Max.X; x++ {
		if x < bounds.Min.X {
			continue
		}
		paintCol(img, bounds, x, fill)
	}
}

func paintRow(img stddraw.Image, bounds image.Rectangle, y int, fill color.Color) {
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		img.Set(x, y, fill)
	}
}

func paintCol(img stddraw.Image, bounds image.Rectangle, x int, fill color.Color) {
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		img.Set(x, y, fill)
	}
}
