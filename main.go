package main

import (
	"net/http"

	"gamebank/config"
	"gamebank/database"
	"gamebank/handlers"
	"gamebank/ledger"
	"gamebank/middleware"

	log "github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize JWT secret
	middleware.SetJWTSecret(cfg.JWTSecret)

	// Initialize database
	if err := database.Init(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Audit trail: every committed mutation gets a structured log line.
	ledger.InitEvents()
	if err := ledger.Subscribe(func(event ledger.Event) {
		fields := log.Fields{
			"operation": event.Operation,
			"team_id":   event.TeamID,
			"amount":    event.Amount,
		}
		if event.OtherTeamID != nil {
			fields["other_team_id"] = *event.OtherTeamID
		}
		if event.PropertyName != "" {
			fields["property"] = event.PropertyName
		}
		log.WithFields(fields).Info("Ledger operation committed")
	}); err != nil {
		log.Fatalf("Failed to subscribe audit logger: %v", err)
	}

	service := ledger.NewService(database.GetDB(), cfg)
	router := handlers.Routes(cfg, database.GetDB(), service)

	log.Infof("Game bank listening on port %s", cfg.ServerPort)
	log.Fatal(http.ListenAndServe(":"+cfg.ServerPort, router))
}
