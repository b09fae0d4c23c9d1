package callercontext

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/soundstall-backend/api/middleware"
	"github.com/angelmondragon/soundstall-backend/api/validators"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
)

// ResolveUserID returns the authenticated caller or an unauthorized error.
func ResolveUserID(r *http.Request) (uuid.UUID, error) {
	if r == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID := middleware.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return userID, nil
}

// URLParamUUID parses a chi path parameter as a UUID.
func URLParamUUID(r *http.Request, name string) (uuid.UUID, error) {
	return validators.ParseUUIDParam(chi.URLParam(r, name), name)
}
