package handlers

import (
	"net/http"

	"gamebank/config"
	"gamebank/ledger"
	"gamebank/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

// Routes builds the full router: the public game-play surface under /rpc,
// banker login under /auth, and the banker-only administrative group.
func Routes(cfg *config.Config, db *gorm.DB, service *ledger.Service) http.Handler {
	ledgerHandler := NewLedgerHandler(cfg, service)
	adminHandler := NewAdminHandler(cfg, service)
	authHandler := NewAuthHandler(cfg, db)
	exportHandler := NewExportHandler(cfg, service)

	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	router.Post("/auth/login", authHandler.Login)
	router.Post("/auth/logout", authHandler.Logout)

	router.Route("/rpc", func(r chi.Router) {
		// Game play, one route per named operation.
		r.Post("/add_cash", ledgerHandler.AddCash)
		r.Post("/remove_cash", ledgerHandler.RemoveCash)
		r.Post("/transfer_cash", ledgerHandler.TransferCash)
		r.Post("/purchase_property", ledgerHandler.PurchaseProperty)
		r.Post("/remove_property_from_team", ledgerHandler.RemovePropertyFromTeam)
		r.Get("/get_team_summary", ledgerHandler.TeamSummary)
		r.Get("/get_available_properties", ledgerHandler.AvailableProperties)
		r.Get("/get_team_leaderboard", ledgerHandler.Leaderboard)

		// Banker only
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireBanker)
			r.Post("/add_properties_bulk", adminHandler.AddPropertiesBulk)
			r.Post("/edit_team", adminHandler.EditTeam)
			r.Post("/remove_team", adminHandler.RemoveTeam)
			r.Post("/reset_all_tables", adminHandler.ResetAllTables)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireBanker)
		r.Get("/export/ledger.csv", exportHandler.LedgerCSV)
	})

	return router
}
