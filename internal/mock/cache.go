package mock

import (
	"context"
	"sync"

	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/uuid"
)

// Cache implements port.Cache for tests.
type Cache struct {
	mu sync.Mutex

	// stored values
	MediaOut *model.Media

	// errors
	GetMediaErr error
	DelMediaErr error

	// call flags
	GetMediaCalled bool
	SetMediaCalled bool
	DelMediaCalled bool
}

func (c *Cache) GetMedia(ctx context.Context, id uuid.UUID) (*model.Media, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GetMediaCalled = true
	if c.GetMediaErr != nil {
		return nil, c.GetMediaErr
	}
	return c.MediaOut, nil
}

func (c *Cache) SetMedia(ctx context.Context, media *model.Media) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetMediaCalled = true
	c.MediaOut = media
}

func (c *Cache) DeleteMedia(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.DelMediaCalled = true
	return c.DelMediaErr
}
