package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sellerdesk/sellerdesk-backend/api/controllers"
	"github.com/sellerdesk/sellerdesk-backend/api/middleware"
	"github.com/sellerdesk/sellerdesk-backend/internal/payments"
	"github.com/sellerdesk/sellerdesk-backend/internal/profile"
	"github.com/sellerdesk/sellerdesk-backend/internal/reports"
	"github.com/sellerdesk/sellerdesk-backend/internal/sales"
	"github.com/sellerdesk/sellerdesk-backend/pkg/config"
	"github.com/sellerdesk/sellerdesk-backend/pkg/logger"
	pkgredis "github.com/sellerdesk/sellerdesk-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers. RedisClient and
// Gatherer may be nil; idempotency replay and /metrics are then disabled.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	RedisClient *pkgredis.Client
	Gatherer    prometheus.Gatherer

	Sales    sales.Service
	Payments payments.Service
	Reports  reports.Service
	Profiles profile.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	maxUploadBytes := int64(cfg.Receipts.MaxUploadMB) << 20

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DB,
			"redis":    redisPinger(deps.RedisClient),
		}))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/sellers/{sellerID}", func(r chi.Router) {
		r.Use(middleware.SellerContext(logg))
		if deps.RedisClient != nil {
			r.Use(middleware.Idempotency(deps.RedisClient, logg))
		}

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.SalesList(deps.Sales, logg))
			r.Get("/{saleID}", controllers.SalesDetail(deps.Sales, logg))
			r.Delete("/{saleID}", controllers.SalesDelete(deps.Sales, logg))
			r.Delete("/{saleID}/payments/{paymentID}", controllers.PaymentsDelete(deps.Payments, logg))
		})

		r.Post("/payments", controllers.PaymentsRegister(deps.Payments, logg, maxUploadBytes))
		r.Post("/tv-sales", controllers.SalesCreateTV(deps.Sales, logg))
		r.Post("/report-uploads", controllers.ReportUpload(deps.Reports, logg, maxUploadBytes))
		r.Get("/profile", controllers.ProfileGet(deps.Profiles, logg))
		r.Get("/commission-stats", controllers.CommissionStats(deps.Sales, deps.Profiles, logg))
	})

	return r
}

// redisPinger keeps a nil *Client from turning into a non-nil interface.
func redisPinger(client *pkgredis.Client) controllers.Pinger {
	if client == nil {
		return nil
	}
	return client
}
