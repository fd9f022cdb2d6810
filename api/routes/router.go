package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/davenolan/littleshop-backend/api/controllers"
	"github.com/davenolan/littleshop-backend/api/middleware"
	couponsvc "github.com/davenolan/littleshop-backend/internal/coupons"
	itemsvc "github.com/davenolan/littleshop-backend/internal/items"
	merchantsvc "github.com/davenolan/littleshop-backend/internal/merchants"
	"github.com/davenolan/littleshop-backend/pkg/config"
	"github.com/davenolan/littleshop-backend/pkg/db"
	"github.com/davenolan/littleshop-backend/pkg/logger"
	"github.com/davenolan/littleshop-backend/pkg/metrics"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	merchantService merchantsvc.Service,
	itemService itemsvc.Service,
	couponService couponsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/merchants", func(r chi.Router) {
			r.Get("/", controllers.ListMerchants(merchantService, logg))
			r.Post("/", controllers.CreateMerchant(merchantService, logg))

			// literal routes before the id wildcard
			r.Get("/sorted", controllers.SortedMerchants(merchantService, logg))
			r.Get("/find", controllers.FindMerchant(merchantService, logg))
			r.Get("/find_all", controllers.FindAllMerchants(merchantService, logg))

			r.Route("/{merchantId}", func(r chi.Router) {
				r.Get("/", controllers.GetMerchant(merchantService, logg))
				r.Patch("/", controllers.UpdateMerchant(merchantService, logg))
				r.Delete("/", controllers.DeleteMerchant(merchantService, logg))
				r.Get("/items", controllers.MerchantItems(itemService, logg))
				r.Get("/customers", controllers.MerchantCustomers(merchantService, logg))
				r.Get("/invoices", controllers.MerchantInvoices(merchantService, logg))
				r.Get("/coupons", controllers.MerchantCoupons(couponService, logg))
			})
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ListItems(itemService, logg))
			r.Post("/", controllers.CreateItem(itemService, logg))

			r.Get("/find", controllers.FindItem(itemService, logg))
			r.Get("/find_all", controllers.FindAllItems(itemService, logg))

			r.Route("/{itemId}", func(r chi.Router) {
				r.Get("/", controllers.GetItem(itemService, logg))
				r.Patch("/", controllers.UpdateItem(itemService, logg))
				r.Delete("/", controllers.DeleteItem(itemService, logg))
				r.Get("/merchant", controllers.ItemMerchant(itemService, logg))
			})
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", controllers.ListCoupons(couponService, logg))
			r.Post("/", controllers.CreateCoupon(couponService, logg))

			r.Route("/{couponId}", func(r chi.Router) {
				r.Get("/", controllers.GetCoupon(couponService, logg))
				r.Patch("/toggle", controllers.ToggleCoupon(couponService, logg))
			})
		})
	})

	return r
}
