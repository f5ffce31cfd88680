package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wassel-ops/wassel-backend/api/controllers"
	invoicecontrollers "github.com/wassel-ops/wassel-backend/api/controllers/invoices"
	payoutcontrollers "github.com/wassel-ops/wassel-backend/api/controllers/payouts"
	pricingcontrollers "github.com/wassel-ops/wassel-backend/api/controllers/pricing"
	"github.com/wassel-ops/wassel-backend/api/middleware"
	invoicesvc "github.com/wassel-ops/wassel-backend/internal/invoices"
	payoutsvc "github.com/wassel-ops/wassel-backend/internal/payouts"
	pricingsvc "github.com/wassel-ops/wassel-backend/internal/pricing"
	"github.com/wassel-ops/wassel-backend/pkg/config"
	"github.com/wassel-ops/wassel-backend/pkg/db"
	"github.com/wassel-ops/wassel-backend/pkg/enums"
	"github.com/wassel-ops/wassel-backend/pkg/logger"
	pkgredis "github.com/wassel-ops/wassel-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	pricingService pricingsvc.Service,
	payoutsService payoutsvc.Service,
	invoicesService invoicesvc.Service,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1", func(r chi.Router) {
			r.Post("/pricing/resolve", pricingcontrollers.Resolve(pricingService, logg))

			r.Route("/payouts", func(r chi.Router) {
				r.Get("/", payoutcontrollers.ListEligible(payoutsService, logg))
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", invoicecontrollers.List(invoicesService, logg))
				r.Get("/{invoiceID}", invoicecontrollers.Get(invoicesService, logg))

				// Claiming and settling move money; operators only.
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(logg, enums.RoleAdmin, enums.RoleOps))
					r.Post("/", invoicecontrollers.Create(invoicesService, logg))
					r.Post("/{invoiceID}/settle", invoicecontrollers.Settle(invoicesService, logg))
				})
			})
		})

		r.Route("/admin/v1", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.RoleAdmin, enums.RoleOps))
			r.Get("/ping", controllers.AdminPing())

			r.Get("/payouts", payoutcontrollers.ListGrouped(payoutsService, logg))

			r.Route("/pricing", func(r chi.Router) {
				r.Get("/global", pricingcontrollers.GetGlobal(pricingService, logg))
				r.Get("/zone-rules", pricingcontrollers.ListZoneRules(pricingService, logg))
				r.Get("/package-types", pricingcontrollers.ListPackageTypes(pricingService, logg))

				// Rule edits are admin-only; ops read but never write.
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(logg, enums.RoleAdmin))
					r.Put("/global", pricingcontrollers.SetGlobal(pricingService, logg))
					r.Post("/zone-rules", pricingcontrollers.UpsertZoneRule(pricingService, logg))
					r.Delete("/zone-rules/{ruleID}", pricingcontrollers.DeleteZoneRule(pricingService, logg))
					r.Put("/package-types", pricingcontrollers.UpsertPackageType(pricingService, logg))
				})
			})

			r.Route("/clients/{clientID}/pricing", func(r chi.Router) {
				r.Get("/", pricingcontrollers.GetClientConfiguration(pricingService, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(logg, enums.RoleAdmin))
					r.Put("/default", pricingcontrollers.UpsertClientDefault(pricingService, logg))
					r.Post("/zone-rules", pricingcontrollers.UpsertClientZoneRule(pricingService, logg))
					r.Delete("/zone-rules/{ruleID}", pricingcontrollers.DeleteClientZoneRule(pricingService, logg))
					r.Put("/package-extras", pricingcontrollers.UpsertClientPackageExtra(pricingService, logg))
					r.Delete("/", pricingcontrollers.DeleteClientConfiguration(pricingService, logg))
				})
			})
		})
	})

	return r
}
