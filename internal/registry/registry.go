// Package registry hands out shared, reference-counted object URLs for
// fetched media blobs. One URL exists per (file, size) key; it stays
// resolvable while at least one holder keeps it and is revoked as soon as the
// last one lets go.
package registry

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fhuszti/medias-display-go/internal/logger"
	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/port"
	"github.com/google/uuid"
)

var (
	ErrEmptyFileID = errors.New("registry: empty file id")
	ErrClosed      = errors.New("registry: closed")
)

// Entry is a point-in-time copy of a registry entry.
type Entry struct {
	Key         model.CacheKey `json:"-"`
	URL         string         `json:"url"`
	Token       string         `json:"token"`
	RefCount    int            `json:"ref_count"`
	BlobRef     string         `json:"blob_ref"`
	ContentType string         `json:"content_type"`
	SizeBytes   int            `json:"size_bytes"`
	CreatedAt   time.Time      `json:"created_at"`
}

type entry struct {
	key       model.CacheKey
	url       string
	token     string
	refCount  int
	blob      model.Blob
	blobRef   string
	createdAt time.Time
}

func (e *entry) snapshot() Entry {
	return Entry{
		Key:         e.key,
		URL:         e.url,
		Token:       e.token,
		RefCount:    e.refCount,
		BlobRef:     e.blobRef,
		ContentType: e.blob.ContentType,
		SizeBytes:   e.blob.Len(),
		CreatedAt:   e.createdAt,
	}
}

type Option func(*Registry)

// WithRecorder reports allocations, revocations and stale re-acquisitions.
func WithRecorder(rec port.RegistryRecorder) Option {
	return func(r *Registry) { r.rec = rec }
}

// WithTokenGenerator replaces the random URL token source.
func WithTokenGenerator(fn func() string) Option {
	return func(r *Registry) { r.newToken = fn }
}

// Registry is safe for concurrent use. Every change to a reference count
// happens under mu, and nothing blocking runs while it is held.
type Registry struct {
	origin   string
	rec      port.RegistryRecorder
	newToken func() string

	mu      sync.Mutex
	entries map[model.CacheKey]*entry
	tokens  map[string]*entry
	subs    map[model.CacheKey]map[uint64]func(port.RegistryEvent)
	nextSub uint64
	closed  bool
}

// compile-time check: *Registry must satisfy port.URLRegistry
var _ port.URLRegistry = (*Registry)(nil)

// New creates an empty registry whose URLs are rooted at origin.
func New(origin string, opts ...Option) *Registry {
	r := &Registry{
		origin:   strings.TrimRight(origin, "/"),
		rec:      noopRecorder{},
		newToken: uuid.NewString,
		entries:  make(map[model.CacheKey]*entry),
		tokens:   make(map[string]*entry),
		subs:     make(map[model.CacheKey]map[uint64]func(port.RegistryEvent)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Acquire returns the URL for (fileID, size), creating it from blob when no
// holder exists yet. When the key is already held the existing URL is reused
// and blob is ignored, even if its content differs.
func (r *Registry) Acquire(fileID string, size model.Size, blob model.Blob) (string, error) {
	if fileID == "" {
		return "", ErrEmptyFileID
	}
	key := model.CacheKey{FileID: fileID, Size: size}
	ref := blob.Ref()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return "", ErrClosed
	}

	if e, ok := r.entries[key]; ok {
		e.refCount++
		stale := e.blobRef != ref
		if stale {
			r.rec.StaleReacquire()
		}
		url, count, prev := e.url, e.refCount, e.blobRef
		r.notifyLocked(key, port.RegistryEntryAcquired, url, count)
		r.mu.Unlock()

		if stale {
			logger.Warnf(context.Background(), "re-acquired %s with different content (held %s, got %s), keeping existing url", key, prev, ref)
		}
		return url, nil
	}

	token := r.newToken()
	e := &entry{
		key:       key,
		url:       r.origin + "/objects/" + token,
		token:     token,
		refCount:  1,
		blob:      blob,
		blobRef:   ref,
		createdAt: time.Now(),
	}
	r.entries[key] = e
	r.tokens[token] = e
	r.rec.EntryAllocated()
	r.notifyLocked(key, port.RegistryEntryAcquired, e.url, 1)
	r.mu.Unlock()

	logger.Debugf(context.Background(), "allocated %s for %s (%d bytes)", e.url, key, blob.Len())
	return e.url, nil
}

// Retain takes one more reference on an existing entry without supplying a
// payload. It reports false when the key is not held by anyone.
func (r *Registry) Retain(fileID string, size model.Size) (string, bool) {
	key := model.CacheKey{FileID: fileID, Size: size}

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok || r.closed {
		return "", false
	}
	e.refCount++
	r.notifyLocked(key, port.RegistryEntryRetained, e.url, e.refCount)
	return e.url, true
}

// Release drops one reference. The last release revokes the URL. Releasing a
// key that is not held is a no-op.
func (r *Registry) Release(fileID string, size model.Size) {
	key := model.CacheKey{FileID: fileID, Size: size}

	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		r.mu.Unlock()
		logger.Debugf(context.Background(), "release of unknown key %s ignored", key)
		return
	}

	e.refCount--
	if e.refCount > 0 {
		r.notifyLocked(key, port.RegistryEntryReleased, e.url, e.refCount)
		r.mu.Unlock()
		return
	}

	r.revokeLocked(e)
	r.mu.Unlock()
	logger.Debugf(context.Background(), "revoked %s for %s", e.url, key)
}

// Lookup returns a copy of the entry for (fileID, size).
func (r *Registry) Lookup(fileID string, size model.Size) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[model.CacheKey{FileID: fileID, Size: size}]
	if !ok {
		return Entry{}, false
	}
	return e.snapshot(), true
}

// Resolve returns the payload behind a live URL token. Revoked tokens never
// resolve again.
func (r *Registry) Resolve(token string) (model.Blob, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.tokens[token]
	if !ok {
		return model.Blob{}, false
	}
	return e.blob, true
}

// Subscribe registers fn for every change to key. fn runs synchronously with
// the registry locked, in mutation order, and must not call back into the
// registry.
func (r *Registry) Subscribe(key model.CacheKey, fn func(port.RegistryEvent)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextSub++
	id := r.nextSub
	if r.subs[key] == nil {
		r.subs[key] = make(map[uint64]func(port.RegistryEvent))
	}
	r.subs[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.subs[key], id)
			if len(r.subs[key]) == 0 {
				delete(r.subs, key)
			}
		})
	}
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close revokes every entry and rejects further acquisitions.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for _, e := range r.entries {
		r.revokeLocked(e)
	}
	r.subs = make(map[model.CacheKey]map[uint64]func(port.RegistryEvent))
}

func (r *Registry) revokeLocked(e *entry) {
	e.refCount = 0
	delete(r.entries, e.key)
	delete(r.tokens, e.token)
	r.rec.EntryRevoked()
	r.notifyLocked(e.key, port.RegistryEntryRevoked, e.url, 0)
}

func (r *Registry) notifyLocked(key model.CacheKey, typ port.RegistryEventType, url string, count int) {
	subs := r.subs[key]
	if len(subs) == 0 {
		return
	}
	ev := port.RegistryEvent{Key: key, Type: typ, URL: url, RefCount: count}
	for _, fn := range subs {
		fn(ev)
	}
}

type noopRecorder struct{}

func (noopRecorder) EntryAllocated() {}
func (noopRecorder) EntryRevoked()   {}
func (noopRecorder) StaleReacquire() {}
