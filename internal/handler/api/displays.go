package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fhuszti/medias-display-go/internal/api_context"
	"github.com/fhuszti/medias-display-go/internal/display"
	"github.com/fhuszti/medias-display-go/internal/logger"
	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/renderer"
	mediaService "github.com/fhuszti/medias-display-go/internal/usecase/media"
	"github.com/fhuszti/medias-display-go/internal/uuid"
	"github.com/fhuszti/medias-display-go/internal/validation"
)

// DefaultMaxWait bounds a long-poll on GET /displays/{displayID}?wait=1.
const DefaultMaxWait = 30 * time.Second

type DisplayManager interface {
	Mount(ctx context.Context, fileID *uuid.UUID, size model.Size) (display.Snapshot, error)
	Get(id uuid.UUID) (display.Snapshot, error)
	Wait(ctx context.Context, id uuid.UUID, since uint64) (display.Snapshot, error)
	Update(ctx context.Context, id uuid.UUID, fileID *uuid.UUID, size model.Size) (display.Snapshot, error)
	Unmount(ctx context.Context, id uuid.UUID) error
}

// DisplayInput is the body of mount and update requests. A null file_id shows nothing.
type DisplayInput struct {
	FileID *uuid.UUID `json:"file_id"`
	Size   model.Size `json:"size" validate:"imgsize"`
}

func MountDisplayHandler(mgr DisplayManager, rndr renderer.HTTPRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodeDisplayInput(w, r)
		if !ok {
			return
		}

		snap, err := mgr.Mount(r.Context(), in.FileID, in.Size)
		if err != nil {
			writeDisplayError(w, err, "Could not mount display")
			return
		}

		w.Header().Set("Location", "/displays/"+snap.ID.String())
		respondSnapshot(w, r, rndr, http.StatusCreated, snap)
		logger.Infof(r.Context(), "✅  Successfully mounted display #%s", snap.ID)
	}
}

// GetDisplayHandler returns the current snapshot. With ?wait=1 it long-polls
// until the version moves past ?since= (the current version when omitted)
// or maxWait elapses, in which case the unchanged snapshot is returned.
func GetDisplayHandler(mgr DisplayManager, rndr renderer.HTTPRenderer, maxWait time.Duration) http.HandlerFunc {
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.DisplayIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "display ID is required", nil)
			return
		}

		snap, err := mgr.Get(id)
		if err != nil {
			writeDisplayError(w, err, "Could not get display")
			return
		}

		q := r.URL.Query()
		if q.Get("wait") == "1" || q.Get("wait") == "true" {
			since := snap.Version
			if raw := q.Get("since"); raw != "" {
				since, err = strconv.ParseUint(raw, 10, 64)
				if err != nil {
					WriteError(w, http.StatusBadRequest, fmt.Sprintf("since %q is not a version", raw), nil)
					return
				}
			}

			ctx, cancel := context.WithTimeout(r.Context(), maxWait)
			snap, err = mgr.Wait(ctx, id, since)
			cancel()
			if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
				// client went away; nobody is left to answer
				logger.Debugf(r.Context(), "long-poll on display #%s abandoned by client", id)
				return
			}
			if err != nil && !errors.Is(err, context.DeadlineExceeded) {
				writeDisplayError(w, err, "Could not wait for display")
				return
			}
		}

		respondSnapshot(w, r, rndr, http.StatusOK, snap)
		logger.Debugf(r.Context(), "returned display #%s at version %d", id, snap.Version)
	}
}

func UpdateDisplayHandler(mgr DisplayManager, rndr renderer.HTTPRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.DisplayIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "display ID is required", nil)
			return
		}
		in, ok := decodeDisplayInput(w, r)
		if !ok {
			return
		}

		snap, err := mgr.Update(r.Context(), id, in.FileID, in.Size)
		if err != nil {
			writeDisplayError(w, err, "Could not update display")
			return
		}

		respondSnapshot(w, r, rndr, http.StatusOK, snap)
		logger.Infof(r.Context(), "✅  Successfully updated display #%s", id)
	}
}

func UnmountDisplayHandler(mgr DisplayManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.DisplayIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "display ID is required", nil)
			return
		}

		if err := mgr.Unmount(r.Context(), id); err != nil {
			writeDisplayError(w, err, "Could not unmount display")
			return
		}

		w.WriteHeader(http.StatusNoContent)
		logger.Infof(r.Context(), "✅  Successfully unmounted display #%s", id)
	}
}

func decodeDisplayInput(w http.ResponseWriter, r *http.Request) (DisplayInput, bool) {
	var in DisplayInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request", fmt.Errorf("invalid JSON: %w", err))
		return in, false
	}

	if errs := validation.ValidateStruct(in); errs != nil {
		errsJSON, err := validation.ErrorsToJson(errs)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "Validation error (could not encode details)", fmt.Errorf("encoding validation errors: %w", err))
			return in, false
		}

		// return the validation errors payload directly
		RespondRawJSON(w, http.StatusBadRequest, []byte(errsJSON))
		logger.Warnf(r.Context(), "❌  Validation failed: %s", errsJSON)
		return in, false
	}

	// "original" and "" name the same size
	in.Size, _ = model.ParseSize(string(in.Size))
	return in, true
}

func respondSnapshot(w http.ResponseWriter, r *http.Request, rndr renderer.HTTPRenderer, status int, snap display.Snapshot) {
	raw, etag, err := rndr.RenderSnapshot(snap)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Could not render display", err)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if status == http.StatusOK && r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	RespondRawJSON(w, status, raw)
}

func writeDisplayError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, display.ErrDisplayNotFound):
		WriteError(w, http.StatusNotFound, "Display not found", nil)
	case errors.Is(err, mediaService.ErrObjectNotFound):
		WriteError(w, http.StatusNotFound, "Media not found", nil)
	case errors.Is(err, mediaService.ErrMediaNotReady):
		WriteError(w, http.StatusUnprocessableEntity, "Media is not ready for display", nil)
	case errors.Is(err, display.ErrManagerClosed):
		WriteError(w, http.StatusServiceUnavailable, "Service is shutting down", nil)
	default:
		WriteError(w, http.StatusInternalServerError, msg, err)
	}
}
