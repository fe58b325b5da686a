package handlers

import (
	"net/http"

	"gamebank/config"
	"gamebank/ledger"
	"gamebank/models"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"
)

// ExportHandler lets the banker download the full ledger history as CSV,
// for settling arguments after the game.
type ExportHandler struct {
	config  *config.Config
	service *ledger.Service
}

func NewExportHandler(cfg *config.Config, service *ledger.Service) *ExportHandler {
	return &ExportHandler{
		config:  cfg,
		service: service,
	}
}

type ledgerCSVRow struct {
	Timestamp    string `csv:"timestamp"`
	Operation    string `csv:"operation"`
	TeamID       string `csv:"team_id"`
	OtherTeamID  string `csv:"other_team_id"`
	PropertyName string `csv:"property_name"`
	Amount       string `csv:"amount"`
}

func (h *ExportHandler) LedgerCSV(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.History(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	rows := make([]ledgerCSVRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, toCSVRow(entry))
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=gamebank_ledger.csv")

	if err := gocsv.Marshal(&rows, w); err != nil {
		log.WithError(err).Error("Failed to write ledger CSV")
	}
}

func toCSVRow(entry models.LedgerEntry) ledgerCSVRow {
	row := ledgerCSVRow{
		Timestamp: entry.CreatedAt.Format("2006-01-02 15:04:05"),
		Operation: entry.Operation,
		Amount:    entry.Amount.String(),
	}
	if entry.TeamID != nil {
		row.TeamID = formatUint(*entry.TeamID)
	}
	if entry.OtherTeamID != nil {
		row.OtherTeamID = formatUint(*entry.OtherTeamID)
	}
	if entry.PropertyName != nil {
		row.PropertyName = *entry.PropertyName
	}
	return row
}
