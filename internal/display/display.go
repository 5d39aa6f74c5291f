package display

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/fhuszti/medias-display-go/internal/api_context"
	"github.com/fhuszti/medias-display-go/internal/logger"
	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/port"
	mediaService "github.com/fhuszti/medias-display-go/internal/usecase/media"
	"github.com/fhuszti/medias-display-go/internal/uuid"
)

type State string

const (
	StateNoFile  State = "no_file"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

var ErrUnmounted = errors.New("display: unmounted")

// Snapshot is what clients see of a display. Failure causes stay internal.
type Snapshot struct {
	ID       uuid.UUID  `json:"id"`
	FileID   *uuid.UUID `json:"file_id"`
	Size     model.Size `json:"size"`
	State    State      `json:"state"`
	URL      string     `json:"url,omitempty"`
	SharedBy int        `json:"shared_by,omitempty"`
	Version  uint64     `json:"version"`
}

// Display shows one media at one size. It holds at most one registry
// reference at a time and gives it back on Update and Unmount.
//
// Lock order is d.mu then the registry lock. Registry callbacks only touch
// sharedBy, which is atomic, so they never need d.mu.
type Display struct {
	id       uuid.UUID
	registry port.URLRegistry
	fetcher  port.BlobFetcher
	ctx      context.Context

	mu        sync.Mutex
	media     *model.Media
	size      model.Size
	state     State
	url       string
	err       error
	key       model.CacheKey
	held      bool
	unsub     func()
	cancel    context.CancelFunc
	gen       uint64
	unmounted bool
	version   uint64
	changed   chan struct{}

	sharedBy atomic.Int64
	wg       sync.WaitGroup
}

// New creates an idle display. Fetches started by the display outlive ctx's
// cancellation but keep its values for logging.
func New(ctx context.Context, id uuid.UUID, registry port.URLRegistry, fetcher port.BlobFetcher) *Display {
	base := context.WithValue(context.WithoutCancel(ctx), api_context.DisplayIDKey, id)
	return &Display{
		id:       id,
		registry: registry,
		fetcher:  fetcher,
		ctx:      base,
		state:    StateNoFile,
		changed:  make(chan struct{}),
	}
}

func (d *Display) ID() uuid.UUID {
	return d.id
}

// Mount starts showing m at size. A nil or non-image media goes straight to
// no_file without fetching or acquiring anything. Mounting a live display
// gives back whatever it held before restarting.
func (d *Display) Mount(m *model.Media, size model.Size) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unmounted {
		return ErrUnmounted
	}
	d.releaseLocked()
	d.startLocked(m, size)
	return nil
}

// Update switches to another media or size. The previous registry reference
// is released first. Updating to the media and size already shown is a no-op.
func (d *Display) Update(m *model.Media, size model.Size) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unmounted {
		return ErrUnmounted
	}
	if sameMedia(d.media, m) && d.size == size {
		return nil
	}
	d.releaseLocked()
	d.startLocked(m, size)
	return nil
}

// Unmount cancels any fetch in flight, gives back the registry reference and
// waits for the fetch goroutine to exit. It is idempotent.
func (d *Display) Unmount() {
	d.mu.Lock()
	if d.unmounted {
		d.mu.Unlock()
		return
	}
	d.unmounted = true
	d.gen++
	d.releaseLocked()
	d.url = ""
	d.setStateLocked(StateNoFile)
	d.mu.Unlock()

	d.wg.Wait()
	logger.Debug(d.ctx, "display unmounted")
}

func (d *Display) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

// Wait blocks until the display version moves past since, the display is
// unmounted, or ctx is done. It always returns the latest snapshot.
func (d *Display) Wait(ctx context.Context, since uint64) (Snapshot, error) {
	for {
		d.mu.Lock()
		if d.version != since || d.unmounted {
			s := d.snapshotLocked()
			d.mu.Unlock()
			return s, nil
		}
		ch := d.changed
		d.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return d.Snapshot(), ctx.Err()
		}
	}
}

// Err returns the cause of the error state, if any.
func (d *Display) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

func (d *Display) startLocked(m *model.Media, size model.Size) {
	d.gen++
	d.media, d.size = m, size
	d.url, d.err = "", nil

	if !m.IsImage() {
		d.setStateLocked(StateNoFile)
		return
	}

	d.key = model.CacheKey{FileID: m.ID.String(), Size: size}
	d.unsub = d.registry.Subscribe(d.key, d.onRegistryEvent)

	if url, ok := d.registry.Retain(d.key.FileID, size); ok {
		d.held = true
		d.url = url
		d.setStateLocked(StateReady)
		return
	}

	fetchCtx, cancel := context.WithCancel(d.ctx)
	d.cancel = cancel
	d.setStateLocked(StateLoading)

	d.wg.Add(1)
	go d.fetch(fetchCtx, d.gen, m, size)
}

func (d *Display) fetch(ctx context.Context, gen uint64, m *model.Media, size model.Size) {
	defer d.wg.Done()

	blob, err := d.fetcher.FetchBlob(ctx, m, size)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unmounted || gen != d.gen {
		// torn down or switched while fetching; registering now would orphan the entry
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}

	if err != nil {
		if errors.Is(err, mediaService.ErrNotAnImage) {
			d.setStateLocked(StateNoFile)
			return
		}
		logger.Warnf(d.ctx, "fetching %s failed: %v", d.key, err)
		d.err = err
		d.setStateLocked(StateError)
		return
	}

	url, err := d.registry.Acquire(d.key.FileID, size, blob)
	if err != nil {
		logger.Errorf(d.ctx, "registering %s failed: %v", d.key, err)
		d.err = err
		d.setStateLocked(StateError)
		return
	}
	d.held = true
	d.url = url
	d.setStateLocked(StateReady)
}

func (d *Display) releaseLocked() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.unsub != nil {
		d.unsub()
		d.unsub = nil
	}
	if d.held {
		d.registry.Release(d.key.FileID, d.key.Size)
		d.held = false
	}
	d.sharedBy.Store(0)
}

func (d *Display) onRegistryEvent(ev port.RegistryEvent) {
	d.sharedBy.Store(int64(ev.RefCount))
}

func (d *Display) setStateLocked(s State) {
	d.state = s
	d.bumpLocked()
}

func (d *Display) bumpLocked() {
	d.version++
	close(d.changed)
	d.changed = make(chan struct{})
}

func (d *Display) snapshotLocked() Snapshot {
	s := Snapshot{
		ID:      d.id,
		Size:    d.size,
		State:   d.state,
		Version: d.version,
	}
	if d.media != nil {
		id := d.media.ID
		s.FileID = &id
	}
	if d.state == StateReady && !d.unmounted {
		s.URL = d.url
		s.SharedBy = int(d.sharedBy.Load())
	}
	return s
}

func sameMedia(a, b *model.Media) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}
