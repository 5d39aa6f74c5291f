package mock

import (
	"sync"
	"time"

	"github.com/fhuszti/medias-display-go/internal/model"
)

// FetchRecorder implements port.FetchRecorder for tests.
type FetchRecorder struct {
	mu        sync.Mutex
	Outcomes  []string
	Fallbacks []model.Size
}

func (r *FetchRecorder) FetchCompleted(size model.Size, outcome string, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Outcomes = append(r.Outcomes, outcome)
}

func (r *FetchRecorder) ThumbnailFallback(size model.Size) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Fallbacks = append(r.Fallbacks, size)
}

// RegistryRecorder implements port.RegistryRecorder for tests.
type RegistryRecorder struct {
	mu          sync.Mutex
	Allocated   int
	Revoked     int
	StaleEvents int
}

func (r *RegistryRecorder) EntryAllocated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Allocated++
}

func (r *RegistryRecorder) EntryRevoked() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Revoked++
}

func (r *RegistryRecorder) StaleReacquire() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StaleEvents++
}

func (r *RegistryRecorder) Counts() (allocated, revoked, stale int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Allocated, r.Revoked, r.StaleEvents
}
