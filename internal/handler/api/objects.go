package api

import (
	"net/http"
	"strconv"

	"github.com/fhuszti/medias-display-go/internal/logger"
	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/go-chi/chi/v5"
)

type ObjectResolver interface {
	Resolve(token string) (model.Blob, bool)
}

// GetObjectHandler serves the payload behind an object URL for as long as
// the URL is live. Revoked URLs answer 404.
func GetObjectHandler(objects ObjectResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")
		blob, ok := objects.Resolve(token)
		if !ok {
			WriteError(w, http.StatusNotFound, "Object not found", nil)
			return
		}

		etag := `"` + blob.Ref() + `"`
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "private, max-age=0")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if match := r.Header.Get("If-None-Match"); match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		contentType := blob.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(blob.Len()))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		if _, err := w.Write(blob.Data); err != nil {
			logger.Errorf(r.Context(), "❌  Failed to write object payload: %v", err)
		}
	}
}
