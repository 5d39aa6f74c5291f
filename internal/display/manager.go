package display

import (
	"context"
	"errors"
	"sync"

	"github.com/fhuszti/medias-display-go/internal/logger"
	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/port"
	"github.com/fhuszti/medias-display-go/internal/uuid"
)

var (
	ErrDisplayNotFound = errors.New("display: not found")
	ErrManagerClosed   = errors.New("display: manager shut down")
)

// Manager owns the live displays of the process.
type Manager struct {
	registry port.URLRegistry
	getter   port.MediaGetter
	fetcher  port.BlobFetcher

	mu       sync.RWMutex
	displays map[uuid.UUID]*Display
	closed   bool
}

func NewManager(registry port.URLRegistry, getter port.MediaGetter, fetcher port.BlobFetcher) *Manager {
	return &Manager{
		registry: registry,
		getter:   getter,
		fetcher:  fetcher,
		displays: make(map[uuid.UUID]*Display),
	}
}

// Mount creates a display for fileID at size. A nil fileID mounts an empty
// display. Catalogue errors (unknown media, media not ready) are returned as is.
func (m *Manager) Mount(ctx context.Context, fileID *uuid.UUID, size model.Size) (Snapshot, error) {
	media, err := m.lookup(ctx, fileID)
	if err != nil {
		return Snapshot{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Snapshot{}, ErrManagerClosed
	}

	d := New(ctx, uuid.NewUUID(), m.registry, m.fetcher)
	if err := d.Mount(media, size); err != nil {
		return Snapshot{}, err
	}
	m.displays[d.ID()] = d
	logger.Infof(ctx, "display #%s mounted for %s", d.ID(), describe(fileID, size))
	return d.Snapshot(), nil
}

func (m *Manager) Get(id uuid.UUID) (Snapshot, error) {
	d, err := m.display(id)
	if err != nil {
		return Snapshot{}, err
	}
	return d.Snapshot(), nil
}

// Wait long-polls a display for a version newer than since.
func (m *Manager) Wait(ctx context.Context, id uuid.UUID, since uint64) (Snapshot, error) {
	d, err := m.display(id)
	if err != nil {
		return Snapshot{}, err
	}
	return d.Wait(ctx, since)
}

func (m *Manager) Update(ctx context.Context, id uuid.UUID, fileID *uuid.UUID, size model.Size) (Snapshot, error) {
	d, err := m.display(id)
	if err != nil {
		return Snapshot{}, err
	}
	media, err := m.lookup(ctx, fileID)
	if err != nil {
		return Snapshot{}, err
	}
	if err := d.Update(media, size); err != nil {
		if errors.Is(err, ErrUnmounted) {
			return Snapshot{}, ErrDisplayNotFound
		}
		return Snapshot{}, err
	}
	logger.Infof(ctx, "display #%s switched to %s", id, describe(fileID, size))
	return d.Snapshot(), nil
}

func (m *Manager) Unmount(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	d, ok := m.displays[id]
	delete(m.displays, id)
	m.mu.Unlock()
	if !ok {
		return ErrDisplayNotFound
	}

	d.Unmount()
	logger.Infof(ctx, "display #%s unmounted", id)
	return nil
}

// Shutdown unmounts every display and rejects new mounts.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	m.closed = true
	displays := make([]*Display, 0, len(m.displays))
	for _, d := range m.displays {
		displays = append(displays, d)
	}
	m.displays = make(map[uuid.UUID]*Display)
	m.mu.Unlock()

	for _, d := range displays {
		d.Unmount()
	}
	logger.Infof(ctx, "unmounted %d displays", len(displays))
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.displays)
}

func (m *Manager) display(id uuid.UUID) (*Display, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.displays[id]
	if !ok {
		return nil, ErrDisplayNotFound
	}
	return d, nil
}

func (m *Manager) lookup(ctx context.Context, fileID *uuid.UUID) (*model.Media, error) {
	if fileID == nil {
		return nil, nil
	}
	return m.getter.GetMedia(ctx, *fileID)
}

func describe(fileID *uuid.UUID, size model.Size) string {
	if fileID == nil {
		return "no file"
	}
	return model.CacheKey{FileID: fileID.String(), Size: size}.String()
}
