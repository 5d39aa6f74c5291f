package cache

import (
	"context"

	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/port"
	"github.com/fhuszti/medias-display-go/internal/uuid"
)

// NoopCache is used when no Redis address is configured.
type NoopCache struct{}

// compile-time check: *NoopCache must satisfy port.Cache
var _ port.Cache = (*NoopCache)(nil)

func NewNoop() *NoopCache {
	return &NoopCache{}
}

func (n *NoopCache) GetMedia(ctx context.Context, id uuid.UUID) (*model.Media, error) {
	return nil, nil // always cache miss
}

func (n *NoopCache) SetMedia(ctx context.Context, m *model.Media) {}

func (n *NoopCache) DeleteMedia(ctx context.Context, id uuid.UUID) error { return nil }
