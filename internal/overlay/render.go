package overlay

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/alex-li-fetchai/evitsam-agent/internal/segment"
)

// tintOpacity is how strongly region fills show through the source image.
const tintOpacity = 0.45

// Render composites mask regions over the source image: each region gets a
// distinct fill color blended over the source, plus a solid bounding-box
// outline. Used when the backend reports mask metadata without a rendered
// overlay of its own.
func Render(src image.Image, masks []segment.Mask) *image.NRGBA {
	base := imaging.Clone(src)
	if len(masks) == 0 {
		return base
	}

	bounds := base.Bounds()
	colors := Palette(len(masks))

	fills := image.NewNRGBA(bounds)
	for i, m := range masks {
		fillRect(fills, clampBBox(m.BBox, bounds), colors[i])
	}

	blended := blend.Opacity(base, fills, tintOpacity)
	out := imaging.Clone(blended)

	for i, m := range masks {
		drawRectOutline(out, clampBBox(m.BBox, bounds), colors[i])
	}
	return out
}

// Palette returns n visually distinct, fully opaque colors with evenly
// spaced hues.
func Palette(n int) []color.NRGBA {
	out := make([]color.NRGBA, n)
	for i := range out {
		hue := float64(i) * 360.0 / float64(n)
		r, g, b := colorful.Hsv(hue, 0.65, 0.95).RGB255()
		out[i] = color.NRGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}

// clampBBox converts [x, y, w, h] to an image.Rectangle clipped to bounds.
func clampBBox(bbox [4]int, bounds image.Rectangle) image.Rectangle {
	r := image.Rect(bbox[0], bbox[1], bbox[0]+bbox[2], bbox[1]+bbox[3])
	return r.Intersect(bounds)
}

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func drawRectOutline(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetNRGBA(x, r.Min.Y, c)
		img.SetNRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetNRGBA(r.Min.X, y, c)
		img.SetNRGBA(r.Max.X-1, y, c)
	}
}
