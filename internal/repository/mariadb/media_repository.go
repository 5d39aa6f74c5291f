package mariadb

import (
	"context"
	"database/sql"

	"github.com/fhuszti/medias-display-go/internal/logger"
	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/port"
	"github.com/fhuszti/medias-display-go/internal/uuid"
)

type MediaRepository struct {
	db *sql.DB
}

// compile-time check: *MediaRepository must satisfy port.MediaRepository
var _ port.MediaRepository = (*MediaRepository)(nil)

func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Media, error) {
	logger.Debugf(ctx, "fetching media #%s from the database...", id)

	const query = `
      SELECT id, bucket, object_key, original_filename, mime_type, size_bytes, status, width, height, variants, created_at, updated_at
      FROM medias
      WHERE id = ?
    `
	row := r.db.QueryRowContext(ctx, query, id)
	var media model.Media
	if err := row.Scan(
		&media.ID, &media.Bucket, &media.ObjectKey,
		&media.OriginalFilename, &media.MimeType,
		&media.SizeBytes, &media.Status,
		&media.Width, &media.Height, &media.Variants,
		&media.CreatedAt, &media.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &media, nil
}

func (r *MediaRepository) UpdateVariants(ctx context.Context, id uuid.UUID, variants model.Variants) error {
	logger.Infof(ctx, "updating variants of media #%s (%d recorded)...", id, len(variants))

	const query = `
      UPDATE medias
      SET variants = ?
      WHERE id = ?
    `
	_, err := r.db.ExecContext(ctx, query, variants, id)
	return err
}
