package convert

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/innovinitylabs/obsidian-paste-image-rename/pkg/types"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test png: %v", err)
	}
	return buf.Bytes()
}

func TestProbe(t *testing.T) {
	p := Probe{}

	if !p.Supports(types.FormatJPG) || !p.Supports(types.FormatPNG) {
		t.Error("jpg and png must be supported")
	}
	if p.Supports(types.FormatWebP) || p.Supports(types.FormatAVIF) {
		t.Error("webp and avif have no encoder in this runtime")
	}
}

func TestConvert_PNGToJPG(t *testing.T) {
	c := New(0, 0, 0.85)

	out, err := c.Convert(pngBytes(t, 10, 10), types.FormatJPG)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	img, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output not decodable: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("expected jpeg output, got %s", format)
	}
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 10 {
		t.Fatalf("unexpected dimensions: %v", img.Bounds())
	}
}

func TestConvert_UnsupportedTarget(t *testing.T) {
	c := New(0, 0, 0.85)

	if _, err := c.Convert(pngBytes(t, 4, 4), types.FormatAVIF); err == nil {
		t.Fatal("expected error for unsupported target")
	}
}

func TestConvert_GarbageInput(t *testing.T) {
	c := New(0, 0, 0.85)

	if _, err := c.Convert([]byte("not an image"), types.FormatJPG); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestConvert_DownscalesToBounds(t *testing.T) {
	c := New(8, 0, 0.85)

	out, err := c.Convert(pngBytes(t, 32, 16), types.FormatPNG)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output not decodable: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 4 {
		t.Fatalf("expected 8x4 after downscale, got %v", img.Bounds())
	}
}

func TestConvert_NoUpscaling(t *testing.T) {
	c := New(100, 100, 0.85)

	out, err := c.Convert(pngBytes(t, 10, 10), types.FormatPNG)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output not decodable: %v", err)
	}
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 10 {
		t.Fatalf("image must not be upscaled, got %v", img.Bounds())
	}
}
