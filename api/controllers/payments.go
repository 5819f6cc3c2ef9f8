package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sellerdesk/sellerdesk-backend/api/responses"
	"github.com/sellerdesk/sellerdesk-backend/api/validators"
	"github.com/sellerdesk/sellerdesk-backend/internal/payments"
	"github.com/sellerdesk/sellerdesk-backend/pkg/enums"
	pkgerrors "github.com/sellerdesk/sellerdesk-backend/pkg/errors"
	"github.com/sellerdesk/sellerdesk-backend/pkg/logger"
)

type registerPaymentPayload struct {
	SaleID string  `json:"sale_id" validate:"required,uuid"`
	Amount string  `json:"amount" validate:"required"`
	Method string  `json:"method" validate:"required"`
	Notes  *string `json:"notes" validate:"omitempty,max=1000"`
}

// PaymentsRegister records a payment against a sale. The endpoint accepts
// JSON, or multipart/form-data when a receipt file rides along.
func PaymentsRegister(svc payments.Service, logg *logger.Logger, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		sellerID, err := validators.ParseUUIDParam(r, "sellerID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := payments.RegisterInput{SellerID: sellerID}

		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			receipt, formErr := validators.OptionalFormFile(r, "receipt", maxUploadBytes)
			if formErr != nil {
				responses.WriteError(ctx, logg, w, formErr)
				return
			}
			defer receipt.Close()

			payload := registerPaymentPayload{
				SaleID: r.FormValue("sale_id"),
				Amount: r.FormValue("amount"),
				Method: r.FormValue("method"),
			}
			if notes := strings.TrimSpace(r.FormValue("notes")); notes != "" {
				payload.Notes = &notes
			}
			if err := fillRegisterInput(&input, payload); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if receipt != nil {
				input.Receipt = &payments.ReceiptUpload{
					Filename:    receipt.Filename,
					ContentType: receipt.ContentType,
					Body:        receipt.File,
				}
			}
		} else {
			var payload registerPaymentPayload
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if err := fillRegisterInput(&input, payload); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}

		payment, err := svc.Register(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payment)
	}
}

func fillRegisterInput(input *payments.RegisterInput, payload registerPaymentPayload) error {
	saleID, err := validators.ParseUUID(payload.SaleID, "sale_id")
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(payload.Amount))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "amount must be a decimal number")
	}
	method, err := enums.ParsePaymentMethod(payload.Method)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}

	input.SaleID = saleID
	input.Amount = amount
	input.Method = method
	input.Notes = payload.Notes
	return nil
}

// PaymentsDelete removes a payment and reopens the sale's balance.
func PaymentsDelete(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		sellerID, err := validators.ParseUUIDParam(r, "sellerID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		saleID, err := validators.ParseUUIDParam(r, "saleID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		paymentID, err := validators.ParseUUIDParam(r, "paymentID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, sellerID, saleID, paymentID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
