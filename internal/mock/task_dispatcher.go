package mock

import (
	"context"
	"sync"

	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/uuid"
)

// Dispatcher implements task dispatching for tests.
type Dispatcher struct {
	mu sync.Mutex

	ResizeCalled bool
	ResizeIDs    []uuid.UUID
	ResizeSizes  []model.Size
	ResizeErr    error
}

func (m *Dispatcher) EnqueueResizeImage(ctx context.Context, id uuid.UUID, size model.Size) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResizeCalled = true
	m.ResizeIDs = append(m.ResizeIDs, id)
	m.ResizeSizes = append(m.ResizeSizes, size)
	return m.ResizeErr
}
