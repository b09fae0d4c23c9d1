package callercontext

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/soundstall-backend/api/middleware"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
)

func TestResolveUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := ResolveUserID(req); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	userID := uuid.New()
	req = req.WithContext(middleware.WithIdentity(req.Context(), middleware.Identity{UserID: userID}))
	got, err := ResolveUserID(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != userID {
		t.Fatalf("expected %s got %s", userID, got)
	}
}

func TestURLParamUUID(t *testing.T) {
	productID := uuid.New()
	build := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rc := chi.NewRouteContext()
		rc.URLParams.Add("productId", value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	}

	got, err := URLParamUUID(build(productID.String()), "productId")
	if err != nil || got != productID {
		t.Fatalf("expected %s, got %s (%v)", productID, got, err)
	}

	_, err = URLParamUUID(build("nope"), "productId")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
