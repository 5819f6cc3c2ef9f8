package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellerdesk/sellerdesk-backend/api/responses"
	"github.com/sellerdesk/sellerdesk-backend/api/validators"
	"github.com/sellerdesk/sellerdesk-backend/internal/profile"
	"github.com/sellerdesk/sellerdesk-backend/internal/sales"
	pkgerrors "github.com/sellerdesk/sellerdesk-backend/pkg/errors"
	"github.com/sellerdesk/sellerdesk-backend/pkg/logger"
	"github.com/sellerdesk/sellerdesk-backend/pkg/pagination"
)

type createTVSalePayload struct {
	TVSerialNumber string  `json:"tv_serial_number" validate:"required,max=64"`
	TVModel        string  `json:"tv_model" validate:"required,max=128"`
	Price          string  `json:"price" validate:"required"`
	ShippingCost   string  `json:"shipping_cost"`
	CustomerName   *string `json:"customer_name" validate:"omitempty,max=255"`
	OrderNumber    *string `json:"order_number" validate:"omitempty,max=64"`
	OrderDate      *string `json:"order_date"`
}

// SalesList returns one page of the seller's sales with the optional
// page-local filters and sort applied.
func SalesList(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		sellerID, err := validators.ParseUUIDParam(r, "sellerID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 0, 0, 1<<30)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		size, err := validators.ParseQueryInt(r, "size", pagination.DefaultSize, 1, pagination.MaxSize)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		status, err := validators.ParseQuerySaleStatus(r, "status")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		dateFrom, err := validators.ParseQueryDate(r, "date_from")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		dateTo, err := validators.ParseQueryDate(r, "date_to")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		priceMin, err := validators.ParseQueryDecimal(r, "price_min")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		priceMax, err := validators.ParseQueryDecimal(r, "price_max")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		sortKey, err := validators.ParseQuerySortKey(r, "sort")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := sales.ListInput{
			SellerID: sellerID,
			Page:     pagination.Params{Page: page, Size: size},
			Status:   status,
			Search:   validators.SanitizeString(r.URL.Query().Get("search"), 255),
			DateFrom: dateFrom,
			DateTo:   dateTo,
			PriceMin: priceMin,
			PriceMax: priceMax,
			SortKey:  sortKey,
		}

		list, err := svc.List(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// SalesDetail returns one sale with its payment history and action gates.
func SalesDetail(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
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

		detail, err := svc.Detail(ctx, sellerID, saleID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// SalesDelete removes a sale and its payments when its status allows it.
func SalesDelete(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
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

		if err := svc.Delete(ctx, sellerID, saleID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// SalesCreateTV records a manually entered TV sale.
func SalesCreateTV(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		sellerID, err := validators.ParseUUIDParam(r, "sellerID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload createTVSalePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		price, err := decimal.NewFromString(strings.TrimSpace(payload.Price))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price must be a decimal number"))
			return
		}
		shipping := decimal.Zero
		if raw := strings.TrimSpace(payload.ShippingCost); raw != "" {
			shipping, err = decimal.NewFromString(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "shipping_cost must be a decimal number"))
				return
			}
		}

		var orderDate *time.Time
		if payload.OrderDate != nil && strings.TrimSpace(*payload.OrderDate) != "" {
			parsed, parseErr := time.Parse("2006-01-02", strings.TrimSpace(*payload.OrderDate))
			if parseErr != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order_date must use YYYY-MM-DD"))
				return
			}
			orderDate = &parsed
		}

		input := sales.CreateTVSaleInput{
			SellerID:       sellerID,
			TVSerialNumber: strings.TrimSpace(payload.TVSerialNumber),
			TVModel:        strings.TrimSpace(payload.TVModel),
			Price:          price,
			Shipping:       shipping,
			CustomerName:   payload.CustomerName,
			OrderNumber:    payload.OrderNumber,
			OrderDate:      orderDate,
		}

		detail, err := svc.CreateTVSale(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

// CommissionStats aggregates earned and pending commissions for the seller.
func CommissionStats(svc sales.Service, profiles profile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil || profiles == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "commission service unavailable"))
			return
		}

		sellerID, err := validators.ParseUUIDParam(r, "sellerID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		defaultPct := profiles.CommissionPercentage(ctx, sellerID)
		stats, err := svc.CommissionStats(ctx, sellerID, defaultPct)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
