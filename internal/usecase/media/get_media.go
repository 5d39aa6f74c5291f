package media

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fhuszti/medias-display-go/internal/logger"
	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/port"
	"github.com/fhuszti/medias-display-go/internal/uuid"
)

type mediaGetterSrv struct {
	repo  port.MediaRepository
	cache port.Cache
}

// compile-time check: *mediaGetterSrv must satisfy port.MediaGetter
var _ port.MediaGetter = (*mediaGetterSrv)(nil)

func NewMediaGetter(repo port.MediaRepository, cache port.Cache) port.MediaGetter {
	return &mediaGetterSrv{repo: repo, cache: cache}
}

// GetMedia returns the catalogue record, from cache when possible. Only
// completed medias are returned.
func (s *mediaGetterSrv) GetMedia(ctx context.Context, id uuid.UUID) (*model.Media, error) {
	cached, err := s.cache.GetMedia(ctx, id)
	if err != nil {
		logger.Warnf(ctx, "cache lookup failed for media #%s: %v", id, err)
	} else if cached != nil {
		return cached, nil
	}

	media, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	if media.Status != model.MediaStatusCompleted {
		return nil, ErrMediaNotReady
	}

	s.cache.SetMedia(ctx, media)
	return media, nil
}
