package mock

import (
	"io"

	"github.com/fhuszti/medias-display-go/internal/port"
)

// FileResizer implements port.FileResizer for tests.
type FileResizer struct {
	Out port.ResizedImage
	Err error

	Called bool
	Width  int
}

func (m *FileResizer) Resize(r io.Reader, width int) (port.ResizedImage, error) {
	m.Called = true
	m.Width = width
	if m.Err != nil {
		return port.ResizedImage{}, m.Err
	}
	return m.Out, nil
}
