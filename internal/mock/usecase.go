package mock

import (
	"context"
	"sync"

	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/uuid"
)

// MediaGetter implements port.MediaGetter for tests.
type MediaGetter struct {
	Medias map[uuid.UUID]*model.Media
	Err    error
	Called bool
}

func (m *MediaGetter) GetMedia(ctx context.Context, id uuid.UUID) (*model.Media, error) {
	m.Called = true
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Medias[id], nil
}

// BlobFetcher implements port.BlobFetcher for tests. When Gate is set every
// fetch blocks until Gate is closed or the fetch context is cancelled.
type BlobFetcher struct {
	mu sync.Mutex

	Blobs map[model.CacheKey]model.Blob
	Err   error
	Gate  chan struct{}

	calls   int
	started chan struct{}
}

func (m *BlobFetcher) FetchBlob(ctx context.Context, media *model.Media, size model.Size) (model.Blob, error) {
	m.mu.Lock()
	m.calls++
	gate := m.Gate
	started := m.started
	m.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return model.Blob{}, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return model.Blob{}, m.Err
	}
	if b, ok := m.Blobs[model.CacheKey{FileID: media.ID.String(), Size: size}]; ok {
		return b, nil
	}
	return model.Blob{Data: []byte(media.ID.String() + "@" + size.String()), ContentType: media.MimeType}, nil
}

// Calls returns how many fetches were started.
func (m *BlobFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Started returns a channel receiving one value per started fetch.
func (m *BlobFetcher) Started() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started == nil {
		m.started = make(chan struct{}, 16)
	}
	return m.started
}
