package controllers

import (
	"net/http"

	"github.com/sellerdesk/sellerdesk-backend/api/responses"
	"github.com/sellerdesk/sellerdesk-backend/api/validators"
	"github.com/sellerdesk/sellerdesk-backend/internal/reports"
	pkgerrors "github.com/sellerdesk/sellerdesk-backend/pkg/errors"
	"github.com/sellerdesk/sellerdesk-backend/pkg/logger"
)

// ReportUpload accepts a PDF sale report and creates the pending sale parsed
// out of it.
func ReportUpload(svc reports.Service, logg *logger.Logger, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		sellerID, err := validators.ParseUUIDParam(r, "sellerID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		file, err := validators.FormFile(r, "report", maxUploadBytes)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		defer file.Close()

		detail, err := svc.Upload(ctx, reports.UploadInput{
			SellerID:    sellerID,
			Filename:    file.Filename,
			ContentType: file.ContentType,
			File:        file.File,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}
