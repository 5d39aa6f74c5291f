package api_context

import (
	"context"

	"github.com/fhuszti/medias-display-go/internal/uuid"
)

type ctxKey string

const (
	IDKey         ctxKey = "id"
	DisplayIDKey  ctxKey = "displayID"
	AuthUserIDKey ctxKey = "authUserID"
	AuthRolesKey  ctxKey = "authRoles"
)

func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(IDKey).(uuid.UUID)
	return id, ok
}

func DisplayIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(DisplayIDKey).(uuid.UUID)
	return id, ok
}

// AuthUserIDFromContext returns the token subject stored by the auth middleware.
func AuthUserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(AuthUserIDKey).(string)
	return id, ok && id != ""
}

func AuthRolesFromContext(ctx context.Context) ([]string, bool) {
	roles, ok := ctx.Value(AuthRolesKey).([]string)
	return roles, ok
}
