package resizer

import (
	"image"
	"io"

	"github.com/chai2010/webp"

	_ "golang.org/x/image/webp"
	_ "image/jpeg"
	_ "image/png"
)

// ChaiWebP decodes any registered image format and encodes lossy WebP.
type ChaiWebP struct{}

func (ChaiWebP) Encode(img image.Image, quality int, w io.Writer) error {
	return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
}

func (ChaiWebP) Decode(r io.Reader) (image.Image, string, error) {
	return image.Decode(r)
}
