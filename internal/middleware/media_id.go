package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fhuszti/medias-display-go/internal/api_context"
	"github.com/fhuszti/medias-display-go/internal/handler/api"
	"github.com/fhuszti/medias-display-go/internal/uuid"
	"github.com/go-chi/chi/v5"
)

// WithMediaID parses the {id} URL parameter into api_context.IDKey.
func WithMediaID() func(http.Handler) http.Handler {
	return withUUIDParam("id", "ID", api_context.IDKey)
}

// WithDisplayID parses the {displayID} URL parameter into api_context.DisplayIDKey.
func WithDisplayID() func(http.Handler) http.Handler {
	return withUUIDParam("displayID", "display ID", api_context.DisplayIDKey)
}

func withUUIDParam(param, label string, key any) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := chi.URLParam(r, param)
			if raw == "" {
				api.WriteError(w, http.StatusBadRequest, label+" is required", nil)
				return
			}
			parsedID, err := uuid.Parse(raw)
			if err != nil {
				api.WriteError(w, http.StatusBadRequest, fmt.Sprintf("%s %q is not a valid UUID", label, raw), nil)
				return
			}

			// stash it in context and call the real handler
			ctx := context.WithValue(r.Context(), key, parsedID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
