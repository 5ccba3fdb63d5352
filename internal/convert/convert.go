// Package convert re-encodes image attachments into other formats. The set
// of registered encoders doubles as the runtime capability probe consumed
// by format selection.
package convert

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/innovinitylabs/obsidian-paste-image-rename/pkg/types"
)

type encodeFunc func(w io.Writer, img image.Image, quality float64) error

// encoders holds the encode targets this runtime supports. webp and avif
// have no encoder here, so the probe reports them unsupported and format
// selection falls through to the next preference tier.
var encoders = map[types.OutputFormat]encodeFunc{
	types.FormatJPG: func(w io.Writer, img image.Image, quality float64) error {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: qualityPercent(quality)})
	},
	types.FormatPNG: func(w io.Writer, img image.Image, _ float64) error {
		return png.Encode(w, img)
	},
	types.FormatGIF: func(w io.Writer, img image.Image, _ float64) error {
		return gif.Encode(w, img, nil)
	},
}

func qualityPercent(q float64) int {
	if q <= 0 || q > 1 {
		return jpeg.DefaultQuality
	}
	return int(q * 100)
}

// Probe reports encode support from the encoder registry. Results are
// computed per call; nothing is cached.
type Probe struct{}

// Supports reports whether the runtime can encode the given format.
func (Probe) Supports(format types.OutputFormat) bool {
	_, ok := encoders[format]
	return ok
}

// Converter re-encodes images per the configured bounds and qualities.
type Converter struct {
	maxWidth   int
	maxHeight  int
	jpgQuality float64
}

// New creates a converter. Zero bounds mean no downscaling.
func New(maxWidth, maxHeight int, jpgQuality float64) *Converter {
	return &Converter{
		maxWidth:   maxWidth,
		maxHeight:  maxHeight,
		jpgQuality: jpgQuality,
	}
}

// Convert decodes data and re-encodes it as target. The input bytes are
// never modified; on any failure the caller keeps the original attachment
// untouched.
func (c *Converter) Convert(data []byte, target types.OutputFormat) ([]byte, error) {
	encode, ok := encoders[target]
	if !ok {
		return nil, fmt.Errorf("no encoder for format %s", target)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img = c.downscale(img)

	var buf bytes.Buffer
	if err := encode(&buf, img, c.jpgQuality); err != nil {
		return nil, fmt.Errorf("failed to encode as %s: %w", target, err)
	}

	return buf.Bytes(), nil
}

// downscale shrinks img to fit the configured bounds, preserving aspect
// ratio. Nearest-neighbor is good enough for paste-sized screenshots.
func (c *Converter) downscale(img image.Image) image.Image {
	if c.maxWidth <= 0 && c.maxHeight <= 0 {
		return img
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	scale := 1.0
	if c.maxWidth > 0 && w > c.maxWidth {
		scale = float64(c.maxWidth) / float64(w)
	}
	if c.maxHeight > 0 && h > c.maxHeight {
		if s := float64(c.maxHeight) / float64(h); s < scale {
			scale = s
		}
	}
	if scale >= 1.0 {
		return img
	}

	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	for y := 0; y < nh; y++ {
		sy := b.Min.Y + y*h/nh
		for x := 0; x < nw; x++ {
			sx := b.Min.X + x*w/nw
			dst.Set(x, y, color.RGBAModel.Convert(img.At(sx, sy)))
		}
	}
	return dst
}
