package api

import (
	"fmt"
	"net/http"

	"github.com/fhuszti/medias-display-go/internal/api_context"
	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/registry"
)

type RegistryInspector interface {
	Lookup(fileID string, size model.Size) (registry.Entry, bool)
}

// GetRegistryEntryHandler exposes the live registry entry of a media at
// ?size= (original when omitted).
func GetRegistryEntryHandler(reg RegistryInspector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "ID is required", nil)
			return
		}
		size, err := model.ParseSize(r.URL.Query().Get("size"))
		if err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("size %q is not supported", r.URL.Query().Get("size")), nil)
			return
		}

		entry, ok := reg.Lookup(id.String(), size)
		if !ok {
			WriteError(w, http.StatusNotFound, "No live registry entry", nil)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		RespondJSON(w, http.StatusOK, entry)
	}
}
