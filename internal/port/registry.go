package port

import "github.com/fhuszti/medias-display-go/internal/model"

type RegistryEventType string

const (
	RegistryEntryAcquired RegistryEventType = "acquired"
	RegistryEntryRetained RegistryEventType = "retained"
	RegistryEntryReleased RegistryEventType = "released"
	RegistryEntryRevoked  RegistryEventType = "revoked"
)

// RegistryEvent reports a change to a single registry entry.
type RegistryEvent struct {
	Key      model.CacheKey
	Type     RegistryEventType
	URL      string
	RefCount int
}

// URLRegistry hands out shared, reference-counted object URLs for fetched blobs.
type URLRegistry interface {
	Acquire(fileID string, size model.Size, blob model.Blob) (string, error)
	Retain(fileID string, size model.Size) (string, bool)
	Release(fileID string, size model.Size)
	Subscribe(key model.CacheKey, fn func(RegistryEvent)) (unsubscribe func())
}
