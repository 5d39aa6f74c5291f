package mock

import (
	"context"

	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/uuid"
)

// MediaRepo implements port.MediaRepository for tests.
type MediaRepo struct {
	MediaRecord *model.Media

	GetErr    error
	UpdateErr error

	GetCalled       bool
	UpdatedID       uuid.UUID
	UpdatedVariants model.Variants
	UpdateCalled    bool
}

func (m *MediaRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Media, error) {
	m.GetCalled = true
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.MediaRecord, nil
}

func (m *MediaRepo) UpdateVariants(ctx context.Context, id uuid.UUID, variants model.Variants) error {
	m.UpdateCalled = true
	m.UpdatedID = id
	m.UpdatedVariants = variants
	return m.UpdateErr
}
