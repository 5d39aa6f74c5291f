package task

import (
	"encoding/json"
	"fmt"

	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/uuid"
	"github.com/fhuszti/medias-display-go/internal/validation"
	"github.com/hibiken/asynq"
)

const TypeResizeImage = "image:resize"

type ResizeImagePayload struct {
	ID   uuid.UUID  `json:"id" validate:"required"`
	Size model.Size `json:"size" validate:"thumbsize"`
}

// NewResizeImageTask creates an Asynq task generating one thumbnail of a media.
func NewResizeImageTask(id uuid.UUID, size model.Size) (*asynq.Task, error) {
	p := ResizeImagePayload{ID: id, Size: size}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("could not marshal resize-image payload: %w", err)
	}
	return asynq.NewTask(TypeResizeImage, data), nil
}

// ParseResizeImagePayload parses and validates the task payload.
func ParseResizeImagePayload(t *asynq.Task) (ResizeImagePayload, error) {
	var p ResizeImagePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return ResizeImagePayload{}, fmt.Errorf("could not unmarshal payload: %w", err)
	}
	if err := validation.ValidateStruct(p); err != nil {
		return ResizeImagePayload{}, fmt.Errorf("invalid payload: %w", err)
	}
	return p, nil
}

// resizeTaskID lets asynq reject a second resize of the same thumbnail while
// the first one is still queued.
func resizeTaskID(id uuid.UUID, size model.Size) string {
	return fmt.Sprintf("%s:%s:%s", TypeResizeImage, id, size)
}
