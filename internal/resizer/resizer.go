package resizer

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/fhuszti/medias-display-go/internal/port"
	"golang.org/x/image/draw"
)

const (
	DefaultQuality = 80
	contentType    = "image/webp"
)

type Resizer struct {
	enc     WebPEncoder
	quality int
}

// compile-time check: *Resizer must satisfy port.FileResizer
var _ port.FileResizer = (*Resizer)(nil)

func NewResizer(enc WebPEncoder) *Resizer {
	return &Resizer{enc: enc, quality: DefaultQuality}
}

// Resize decodes a JPEG, PNG or WebP image, scales it to width keeping the
// aspect ratio and re-encodes it as WebP. Images narrower than width are
// re-encoded at their own size, never upscaled.
func (r *Resizer) Resize(in io.Reader, width int) (port.ResizedImage, error) {
	if width <= 0 {
		return port.ResizedImage{}, fmt.Errorf("resizer: invalid width %d", width)
	}

	src, _, err := r.enc.Decode(in)
	if err != nil {
		return port.ResizedImage{}, fmt.Errorf("resizer: failed to decode image: %w", err)
	}

	w, h := targetSize(src.Bounds(), width)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	buf := &bytes.Buffer{}
	if err := r.enc.Encode(dst, r.quality, buf); err != nil {
		return port.ResizedImage{}, fmt.Errorf("resizer: failed to encode WebP: %w", err)
	}
	return port.ResizedImage{
		Data:        buf.Bytes(),
		ContentType: contentType,
		Width:       w,
		Height:      h,
	}, nil
}

func targetSize(b image.Rectangle, width int) (int, int) {
	sw, sh := b.Dx(), b.Dy()
	if sw <= width {
		return sw, sh
	}
	h := sh * width / sw
	if h < 1 {
		h = 1
	}
	return width, h
}
