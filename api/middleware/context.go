package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sellerdesk/sellerdesk-backend/pkg/logger"
)

type contextKey string

const sellerIDKey contextKey = "sellerID"

// WithSellerID stores the seller identifier on the request context.
func WithSellerID(ctx context.Context, sellerID string) context.Context {
	return context.WithValue(ctx, sellerIDKey, sellerID)
}

// SellerIDFromContext returns the seller identifier set by SellerContext,
// or "" when the route carries no seller segment.
func SellerIDFromContext(ctx context.Context) string {
	value, _ := ctx.Value(sellerIDKey).(string)
	return value
}

// SellerContext lifts the {sellerID} route param onto the context and tags
// the request logger with it.
func SellerContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if sellerID := chi.URLParam(r, "sellerID"); sellerID != "" {
				ctx = WithSellerID(ctx, sellerID)
				if logg != nil {
					ctx = logg.WithSellerID(ctx, sellerID)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
