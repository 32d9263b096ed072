package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/quantora/fund-management-backend/internal/api/handlers"
	custommiddleware "github.com/quantora/fund-management-backend/internal/api/middleware"
	"github.com/quantora/fund-management-backend/internal/config"
	"github.com/quantora/fund-management-backend/internal/service"
)

// Services bundles the service dependencies of the router.
type Services struct {
	System    *service.SystemService
	Position  *service.PositionService
	Nav       *service.NavService
	Cost      *service.CostService
	FundShare *service.FundShareService
	Investor  *service.InvestorService
	Snapshot  *service.SnapshotService
	Price     *service.PriceService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config) (http.Handler, error) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// Identity middleware
	identity, err := custommiddleware.NewIdentityMiddleware(cfg.Identity.FernetKey)
	if err != nil {
		return nil, err
	}
	r.Use(identity.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/position", func(r chi.Router) {
			positionHandler := handlers.NewPositionHandler(svc.Position)
			r.Get("/", positionHandler.Positions)
			r.Get("/trade", positionHandler.Trades)
			r.With(identity.RequireAdmin).Post("/trade", positionHandler.CreateTrade)
			r.With(identity.RequireAdmin).Post("/settle", positionHandler.Settle)
		})

		r.Route("/valuation", func(r chi.Router) {
			valuationHandler := handlers.NewValuationHandler(svc.Nav)
			r.Get("/", valuationHandler.History)
			r.Get("/latest", valuationHandler.Latest)
			r.With(identity.RequireAdmin).Post("/run", valuationHandler.RunPipeline)
		})

		r.Route("/cost", func(r chi.Router) {
			costHandler := handlers.NewCostHandler(svc.Cost)
			r.Get("/", costHandler.Costs)
		})

		r.Route("/fundshare", func(r chi.Router) {
			fundShareHandler := handlers.NewFundShareHandler(svc.FundShare)
			r.With(identity.RequireAdmin).Post("/subscribe", fundShareHandler.Subscribe)
			r.With(identity.RequireAdmin).Post("/redeem", fundShareHandler.Redeem)
			r.Get("/trade", fundShareHandler.Trades)

			r.Route("/request", func(r chi.Router) {
				r.With(identity.RequireIdentity).Post("/", fundShareHandler.CreateRequest)
				r.With(identity.RequireAdmin).Get("/", fundShareHandler.PendingRequests)

				r.Route("/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.With(identity.RequireAdmin).Post("/approve", fundShareHandler.ApproveRequest)
					r.With(identity.RequireAdmin).Post("/reject", fundShareHandler.RejectRequest)
				})
			})
		})

		r.Route("/investor", func(r chi.Router) {
			investorHandler := handlers.NewInvestorHandler(svc.Investor)
			r.Get("/", investorHandler.Investors)
			r.With(identity.RequireAdmin).Post("/", investorHandler.CreateInvestor)
			r.Get("/summary", investorHandler.Summaries)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", investorHandler.GetInvestor)
				r.Get("/summary", investorHandler.GetSummary)
			})
		})

		r.Route("/fund", func(r chi.Router) {
			investorHandler := handlers.NewInvestorHandler(svc.Investor)
			r.Get("/info", investorHandler.FundInfo)
		})

		r.Route("/snapshot", func(r chi.Router) {
			snapshotHandler := handlers.NewSnapshotHandler(svc.Snapshot)
			r.Get("/", snapshotHandler.Snapshots)
			r.With(identity.RequireAdmin).Post("/rebuild", snapshotHandler.Rebuild)
		})

		r.Route("/price", func(r chi.Router) {
			priceHandler := handlers.NewPriceHandler(svc.Price)
			r.With(identity.RequireAdmin).Post("/refresh", priceHandler.Refresh)
			r.Get("/{ticker}", priceHandler.History)
		})
	})

	return r, nil
}
