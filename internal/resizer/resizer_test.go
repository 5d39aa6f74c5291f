package resizer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/chai2010/webp"
)

// helper: generate a w×h image of a solid colour encoded with enc
func generate(t *testing.T, w, h int, enc func(io.Writer, image.Image) error) io.Reader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	if err := enc(buf, img); err != nil {
		t.Fatalf("failed to generate image: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func encodePNG(w io.Writer, img image.Image) error { return png.Encode(w, img) }
func encodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
}
func encodeWebP(w io.Writer, img image.Image) error {
	return webp.Encode(w, img, &webp.Options{Quality: 80})
}

func TestResize(t *testing.T) {
	tests := []struct {
		name         string
		enc          func(io.Writer, image.Image) error
		srcW, srcH   int
		width        int
		wantW, wantH int
	}{
		{"png downscale", encodePNG, 400, 200, 100, 100, 50},
		{"jpeg downscale", encodeJPEG, 300, 300, 150, 150, 150},
		{"webp downscale", encodeWebP, 200, 100, 50, 50, 25},
		{"never upscales", encodePNG, 40, 20, 150, 40, 20},
		{"thin strip keeps one row", encodePNG, 1000, 2, 100, 100, 1},
	}

	r := NewResizer(ChaiWebP{})
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := r.Resize(generate(t, tc.srcW, tc.srcH, tc.enc), tc.width)
			if err != nil {
				t.Fatalf("Resize returned error: %v", err)
			}
			if out.ContentType != "image/webp" {
				t.Errorf("content type = %q", out.ContentType)
			}
			if out.Width != tc.wantW || out.Height != tc.wantH {
				t.Errorf("reported size = %dx%d; want %dx%d", out.Width, out.Height, tc.wantW, tc.wantH)
			}

			img, format, err := image.Decode(bytes.NewReader(out.Data))
			if err != nil {
				t.Fatalf("decoding output failed: %v", err)
			}
			if format != "webp" {
				t.Errorf("expected format 'webp', got %q", format)
			}
			if img.Bounds().Dx() != tc.wantW || img.Bounds().Dy() != tc.wantH {
				t.Errorf("decoded size = %dx%d; want %dx%d", img.Bounds().Dx(), img.Bounds().Dy(), tc.wantW, tc.wantH)
			}
		})
	}
}

func TestResize_InvalidInput(t *testing.T) {
	r := NewResizer(ChaiWebP{})

	if _, err := r.Resize(strings.NewReader("not an image"), 100); err == nil {
		t.Error("expected decode error")
	}
	if _, err := r.Resize(strings.NewReader(""), 0); err == nil {
		t.Error("expected width error")
	}
}

type failingEncoder struct{ ChaiWebP }

func (failingEncoder) Encode(image.Image, int, io.Writer) error { return errors.New("encode failed") }

func TestResize_EncodeError(t *testing.T) {
	r := NewResizer(failingEncoder{})
	_, err := r.Resize(generate(t, 10, 10, encodePNG), 5)
	if err == nil || !strings.Contains(err.Error(), "encode failed") {
		t.Fatalf("expected encode error, got %v", err)
	}
}
