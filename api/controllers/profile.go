package controllers

import (
	"net/http"

	"github.com/sellerdesk/sellerdesk-backend/api/responses"
	"github.com/sellerdesk/sellerdesk-backend/api/validators"
	"github.com/sellerdesk/sellerdesk-backend/internal/profile"
	pkgerrors "github.com/sellerdesk/sellerdesk-backend/pkg/errors"
	"github.com/sellerdesk/sellerdesk-backend/pkg/logger"
)

// ProfileGet returns the seller profile with its effective commission rate.
func ProfileGet(svc profile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		sellerID, err := validators.ParseUUIDParam(r, "sellerID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, err := svc.Get(ctx, sellerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
