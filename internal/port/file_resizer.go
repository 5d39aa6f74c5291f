package port

import "io"

type ResizedImage struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// FileResizer scales an encoded image down to the given width.
type FileResizer interface {
	Resize(r io.Reader, width int) (ResizedImage, error)
}
