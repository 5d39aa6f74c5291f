package port

import (
	"time"

	"github.com/fhuszti/medias-display-go/internal/model"
)

type RegistryRecorder interface {
	EntryAllocated()
	EntryRevoked()
	StaleReacquire()
}

type FetchRecorder interface {
	FetchCompleted(size model.Size, outcome string, elapsed time.Duration)
	ThumbnailFallback(size model.Size)
}
