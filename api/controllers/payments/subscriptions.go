package payments

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/soundstall-backend/api/controllers/callercontext"
	"github.com/angelmondragon/soundstall-backend/api/middleware"
	"github.com/angelmondragon/soundstall-backend/api/responses"
	"github.com/angelmondragon/soundstall-backend/api/validators"
	subsvc "github.com/angelmondragon/soundstall-backend/internal/subscriptions"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
	"github.com/angelmondragon/soundstall-backend/pkg/logger"
)

type subscriptionCreateRequest struct {
	PriceID string `json:"price_id" validate:"required"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Name    string `json:"name,omitempty" validate:"omitempty,max=120"`
}

// SubscriptionCreate starts a Stripe subscription for the caller. Email and
// name default to the token claims.
func SubscriptionCreate(svc subsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		userID, err := callercontext.ResolveUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload subscriptionCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		identity, _ := middleware.IdentityFromContext(r.Context())
		email := validators.SanitizeString(payload.Email, 254)
		if email == "" {
			email = identity.Email
		}
		name := validators.SanitizeString(payload.Name, 120)
		if name == "" {
			name = identity.Name
		}

		result, err := svc.Create(r.Context(), subsvc.CreateSubscriptionInput{
			UserID:  userID,
			Email:   email,
			Name:    name,
			PriceID: payload.PriceID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// SubscriptionCancel cancels one of the caller's subscriptions.
func SubscriptionCancel(svc subsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		userID, err := callercontext.ResolveUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Cancel(r.Context(), userID, chi.URLParam(r, "subscriptionId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
